// Package walker turns a source directory into the installer node tree.
package walker

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"msigen/internal/config"
	"msigen/internal/ident"
	"msigen/internal/wxs"
)

// Walker holds the per-run inputs of the traversal. The traversal itself
// carries no state beyond the Tree accumulator it returns.
type Walker struct {
	namespace      uuid.UUID
	productName    string
	rootPath       string // logical path of INSTALLDIR
	shortcutTarget string // logical path of the shortcut target, "" when none
}

// New creates a walker for the given configuration. Logical paths are
// rooted at "<ProgramFilesFolderId>/<ProductName>" so identifiers differ
// between 32- and 64-bit layouts of the same tree.
func New(cfg *config.Config) *Walker {
	rootPath := wxs.ProgramFilesFolderID(cfg.X64) + "/" + cfg.Name

	w := &Walker{
		namespace:   cfg.UpgradeCode,
		productName: cfg.Name,
		rootPath:    rootPath,
	}
	if cfg.Shortcut != "" {
		target := strings.ReplaceAll(cfg.Shortcut, "\\", "/")
		w.shortcutTarget = rootPath + "/" + strings.ToUpper(target)
	}
	return w
}

// Walk traverses sourceDir depth first and returns the resulting tree.
// Sibling entries are sorted by name so the document is reproducible for a
// given tree; identifiers never depend on order, only on logical paths.
func (w *Walker) Walk(sourceDir string) (*wxs.Tree, error) {
	absDir, err := filepath.Abs(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", sourceDir, err)
	}

	tree := &wxs.Tree{}
	tree.Dirs, tree.Components, err = w.walkDir(absDir, w.rootPath, tree)
	if err != nil {
		return nil, err
	}
	return tree, nil
}

func (w *Walker) walkDir(path, logicalPath string, tree *wxs.Tree) ([]*wxs.Directory, []*wxs.Component, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	var dirs []*wxs.Directory
	var comps []*wxs.Component
	for _, entry := range entries {
		fullPath := filepath.Join(path, entry.Name())
		idPath := logicalPath + "/" + strings.ToUpper(entry.Name())

		if entry.IsDir() {
			child := &wxs.Directory{
				ID:   ident.Token(ident.RoleDirectory, w.namespace, idPath),
				Name: entry.Name(),
			}
			child.Dirs, child.Components, err = w.walkDir(fullPath, idPath, tree)
			if err != nil {
				return nil, nil, err
			}
			dirs = append(dirs, child)
			continue
		}

		comp := &wxs.Component{
			ID:   ident.Token(ident.RoleComponent, w.namespace, idPath),
			GUID: ident.GUID(w.namespace, idPath),
			File: &wxs.File{
				ID:      ident.Token(ident.RoleFile, w.namespace, idPath),
				Name:    entry.Name(),
				Source:  fullPath,
				KeyPath: true,
			},
		}
		tree.Refs = append(tree.Refs, comp.ID)

		if w.shortcutTarget != "" && tree.Shortcut == nil && idPath == w.shortcutTarget {
			comp.File.Shortcut = &wxs.Shortcut{
				ID:        ident.Token(ident.RoleShortcut, w.namespace, idPath),
				Name:      w.productName,
				Directory: "ProgramMenuFolder",
				Advertise: true,
			}
			tree.Shortcut = comp.File.Shortcut
		}

		comps = append(comps, comp)
	}

	return dirs, comps, nil
}
