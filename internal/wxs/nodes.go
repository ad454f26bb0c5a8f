// Package wxs models the generated WiX source document and renders it.
package wxs

import (
	"fmt"
	"strings"
)

// Directory is one directory in the installation tree.
type Directory struct {
	ID         string
	Name       string
	Dirs       []*Directory
	Components []*Component
}

// Component wraps exactly one file; the file is always the key path.
type Component struct {
	ID   string
	GUID string
	File *File
}

// File is the installed payload of a component.
type File struct {
	ID       string
	Name     string
	Source   string
	KeyPath  bool
	Shortcut *Shortcut
}

// Shortcut is the optional Start-Menu entry attached to one file per build.
type Shortcut struct {
	ID        string
	Name      string
	Directory string
	Advertise bool
	Icon      string
}

// Tree is the walked install tree that hangs under INSTALLDIR, plus the
// flat feature membership and the shortcut result of the walk. Shortcut is
// nil when the configured target was never seen, so the orchestrator can
// warn about it.
type Tree struct {
	Dirs       []*Directory
	Components []*Component
	Refs       []string
	Shortcut   *Shortcut
}

// ProgramFilesFolderID returns the WiX id of the program-files directory
// for the target architecture.
func ProgramFilesFolderID(x64 bool) string {
	if x64 {
		return "ProgramFiles64Folder"
	}
	return "ProgramFilesFolder"
}

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"'", "&apos;",
	`"`, "&quot;",
)

// escapeAttr makes a value safe inside a quoted XML attribute.
func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}

func writeDirectory(sb *strings.Builder, dir *Directory, depth int) {
	indent := strings.Repeat("    ", depth)

	if len(dir.Components) == 0 && len(dir.Dirs) == 0 {
		// Empty directories still need a full chain in the document.
		sb.WriteString(fmt.Sprintf("%s<Directory Id='%s' Name='%s'/>\n", indent, dir.ID, escapeAttr(dir.Name)))
		return
	}

	sb.WriteString(fmt.Sprintf("%s<Directory Id='%s' Name='%s'>\n", indent, dir.ID, escapeAttr(dir.Name)))
	for _, comp := range dir.Components {
		writeComponent(sb, comp, depth+1)
	}
	for _, child := range dir.Dirs {
		writeDirectory(sb, child, depth+1)
	}
	sb.WriteString(fmt.Sprintf("%s</Directory>\n", indent))
}

func writeComponent(sb *strings.Builder, comp *Component, depth int) {
	indent := strings.Repeat("    ", depth)

	sb.WriteString(fmt.Sprintf("%s<Component Id='%s' Guid='%s'>\n", indent, comp.ID, comp.GUID))

	file := comp.File
	keyPath := ""
	if file.KeyPath {
		keyPath = " KeyPath='yes'"
	}
	if file.Shortcut != nil {
		sb.WriteString(fmt.Sprintf("%s    <File Id='%s' Name='%s' DiskId='1' Source='%s'%s>\n",
			indent, file.ID, escapeAttr(file.Name), escapeAttr(file.Source), keyPath))
		writeShortcut(sb, file.Shortcut, depth+2)
		sb.WriteString(fmt.Sprintf("%s    </File>\n", indent))
	} else {
		sb.WriteString(fmt.Sprintf("%s    <File Id='%s' Name='%s' DiskId='1' Source='%s'%s/>\n",
			indent, file.ID, escapeAttr(file.Name), escapeAttr(file.Source), keyPath))
	}

	sb.WriteString(fmt.Sprintf("%s</Component>\n", indent))
}

func writeShortcut(sb *strings.Builder, sc *Shortcut, depth int) {
	indent := strings.Repeat("    ", depth)

	advertise := "no"
	if sc.Advertise {
		advertise = "yes"
	}
	icon := ""
	if sc.Icon != "" {
		icon = fmt.Sprintf(" Icon='%s'", escapeAttr(sc.Icon))
	}
	sb.WriteString(fmt.Sprintf("%s<Shortcut Id='%s' Directory='%s' Name='%s' Advertise='%s'%s/>\n",
		indent, sc.ID, sc.Directory, escapeAttr(sc.Name), advertise, icon))
}
