package wxs

import (
	_ "embed"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aymerick/raymond"

	"msigen/internal/config"
)

//go:embed templates/product.wxs
var productTemplate string

// DefaultIconID is used when an icon is supplied but no shortcut exists.
const DefaultIconID = "app.ico"

// Build assembles the complete WXS document for one run. iconDLL is the
// path of the generated icon resource library; it is only read when the
// configuration carries an icon.
func Build(cfg *config.Config, tree *Tree, iconDLL string) (string, error) {
	// The icon id must be assigned before the directory tree is emitted,
	// since the shortcut element references it.
	iconBlock := iconXML(cfg, tree, iconDLL)

	ctx := map[string]interface{}{
		"PRODUCT_NAME":   cfg.Name,
		"MANUFACTURER":   cfg.Manufacturer,
		"VERSION":        cfg.Version,
		"UPGRADE_CODE":   cfg.UpgradeCode.String(),
		"CODEPAGE":       strconv.Itoa(cfg.Codepage),
		"LANGUAGE":       strconv.Itoa(cfg.Language),
		"ICON":           iconBlock,
		"DIRECTORIES":    directoriesXML(cfg, tree),
		"COMPONENT_REFS": componentRefsXML(tree.Refs),
		"UI":             uiXML(cfg.UICulture != ""),
		"WIX_VARIABLES":  variablesXML(cfg.Variables),
	}

	out, err := raymond.Render(productTemplate, ctx)
	if err != nil {
		return "", fmt.Errorf("rendering document: %w", err)
	}
	return out, nil
}

// directoriesXML emits the fixed chain TARGETDIR -> program files ->
// INSTALLDIR with the walked tree nested inside, plus the Start-Menu
// folder when a shortcut exists (advertised installs fail without it).
func directoriesXML(cfg *config.Config, tree *Tree) string {
	var sb strings.Builder

	sb.WriteString("        <Directory Id='TARGETDIR' Name='SourceDir'>\n")
	sb.WriteString(fmt.Sprintf("            <Directory Id='%s' Name='ProgramFiles'>\n", ProgramFilesFolderID(cfg.X64)))

	if len(tree.Components) == 0 && len(tree.Dirs) == 0 {
		sb.WriteString(fmt.Sprintf("                <Directory Id='INSTALLDIR' Name='%s'/>\n", escapeAttr(cfg.Name)))
	} else {
		sb.WriteString(fmt.Sprintf("                <Directory Id='INSTALLDIR' Name='%s'>\n", escapeAttr(cfg.Name)))
		for _, comp := range tree.Components {
			writeComponent(&sb, comp, 5)
		}
		for _, dir := range tree.Dirs {
			writeDirectory(&sb, dir, 5)
		}
		sb.WriteString("                </Directory>\n")
	}

	sb.WriteString("            </Directory>\n")
	if tree.Shortcut != nil {
		sb.WriteString("            <Directory Id='ProgramMenuFolder' Name='All Programs'/>\n")
	}
	sb.WriteString("        </Directory>\n")

	return sb.String()
}

func componentRefsXML(refs []string) string {
	var sb strings.Builder
	for _, ref := range refs {
		sb.WriteString(fmt.Sprintf("            <ComponentRef Id='%s'/>\n", ref))
	}
	return sb.String()
}

// uiXML emits either the install-dir UI wiring or a plain ARPNOMODIFY
// property. There is no repair/modify path in this installer, so "modify"
// is disabled either way; with the UI present it has to happen as a
// post-validation SetProperty.
func uiXML(withUI bool) string {
	if withUI {
		return "        <Property Id='WIXUI_INSTALLDIR' Value='INSTALLDIR'/>\n" +
			"        <UIRef Id='WixUI_InstallDir'/>\n" +
			"        <SetProperty Id='ARPNOMODIFY' Value='1' After='InstallValidate' Sequence='execute'/>\n"
	}
	return "        <Property Id='ARPNOMODIFY' Value='yes'/>\n"
}

func variablesXML(vars []config.Variable) string {
	var sb strings.Builder
	for _, v := range vars {
		sb.WriteString(fmt.Sprintf("        <WixVariable Id='%s' Value='%s'/>\n",
			escapeAttr(v.Name), escapeAttr(v.Value)))
	}
	return sb.String()
}

// iconXML emits the Icon and ARPPRODUCTICON entries and assigns the icon
// id to the shortcut. Shortcut icon ids must carry the same extension as
// the shortcut target, a quirk of the installer format.
func iconXML(cfg *config.Config, tree *Tree, iconDLL string) string {
	if cfg.Icon == "" {
		return ""
	}

	iconID := DefaultIconID
	if tree.Shortcut != nil {
		iconID = "Icon_Shortcut" + strings.ToUpper(filepath.Ext(cfg.Shortcut))
		tree.Shortcut.Icon = iconID
	}

	return fmt.Sprintf("        <Icon Id='%s' SourceFile='%s'/>\n", escapeAttr(iconID), escapeAttr(iconDLL)) +
		fmt.Sprintf("        <Property Id='ARPPRODUCTICON' Value='%s'/>\n", escapeAttr(iconID))
}
