package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"msigen/internal/cli"
	"msigen/internal/config"
	"msigen/internal/diag"
	"msigen/internal/icodll"
	"msigen/internal/source"
	"msigen/internal/toolchain"
	"msigen/internal/walker"
	"msigen/internal/wxs"
)

// Version is set via ldflags at build time
var Version = "1.0.0-dev"

var (
	flagOutputMSI    string
	flagOutputWXS    string
	flagUpgradeCode  string
	flagVersion      string
	flagName         string
	flagManufacturer string
	flagShortcut     string
	flagCodepage     int
	flagLanguage     int
	flagIcon         string
	flagWithUI       string
	flagX64          bool
	flagVariables    []string
	flagWixDir       string
	flagNoColor      bool
)

var rootCmd = &cobra.Command{
	Use:   "msigen [flags] SOURCEDIR|SOURCE.ZIP",
	Short: "Generate a simple MSI installer from a directory of files",
	Long: `msigen builds a one-feature MSI installer from a directory (or zip
archive) of files. Every file becomes its own component with a stable,
upgrade-code-derived identifier, so re-running over the same tree with the
same upgrade code produces the same component identities across versions.

The generated WiX document is compiled with candle/light (plus an advisory
smoke validation pass) on Windows, or with wixl elsewhere.

Examples:
  msigen -o setup.msi --name "My Application" ./dist
  msigen -o setup.msi --name "My Application" --upgrade-code 5f9c2a6e-... \
      --version 1.4.0 --shortcut bin/app.exe --icon app.ico dist.zip`,
	Args:         cobra.ExactArgs(1),
	RunE:         runBuild,
	SilenceUsage: true,
}

func init() {
	rootCmd.Flags().StringVarP(&flagOutputMSI, "output-msi", "o", "", "Path of the MSI to produce (required)")
	rootCmd.Flags().StringVar(&flagOutputWXS, "output-wxs", "", "Also write the generated WiX document here")
	rootCmd.Flags().StringVar(&flagUpgradeCode, "upgrade-code", "", "Upgrade code UUID (generated with a warning if omitted)")
	rootCmd.Flags().StringVar(&flagVersion, "version", "", "Product version (defaults to "+config.DefaultVersion+" with a warning)")
	rootCmd.Flags().StringVar(&flagName, "name", "", "Product name (required)")
	rootCmd.Flags().StringVar(&flagManufacturer, "manufacturer", "", "Manufacturer (defaults to the product name)")
	rootCmd.Flags().StringVar(&flagShortcut, "shortcut", "", "Install-relative path of the file to create a Start-Menu shortcut for")
	rootCmd.Flags().IntVar(&flagCodepage, "codepage", 1252, "Installer codepage")
	rootCmd.Flags().IntVar(&flagLanguage, "language", 0, "Installer language id")
	rootCmd.Flags().StringVar(&flagIcon, "icon", "", "Path of an .ico file used as product/shortcut icon")
	rootCmd.Flags().StringVar(&flagWithUI, "with-ui", "", "Enable the install-directory UI for the given culture (e.g. en-us)")
	rootCmd.Flags().BoolVar(&flagX64, "x64", false, "Build a 64-bit installer")
	rootCmd.Flags().StringArrayVarP(&flagVariables, "variable", "d", nil, "NAME=VALUE WiX variable (repeatable)")
	rootCmd.Flags().StringVar(&flagWixDir, "wix-dir", "", "Directory containing the WiX tools (default: $WIX/bin, then PATH)")
	rootCmd.Flags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")

	rootCmd.MarkFlagRequired("output-msi")
	rootCmd.MarkFlagRequired("name")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cli.Error(err.Error()))
		os.Exit(1)
	}
}

func runBuild(cmd *cobra.Command, args []string) error {
	if flagNoColor {
		cli.DisableColors()
	}
	d := diag.New(os.Stderr)

	cfg := &config.Config{
		OutputMSI:    flagOutputMSI,
		OutputWXS:    flagOutputWXS,
		Version:      flagVersion,
		Name:         flagName,
		Manufacturer: flagManufacturer,
		Shortcut:     flagShortcut,
		Codepage:     flagCodepage,
		Language:     flagLanguage,
		Icon:         flagIcon,
		UICulture:    flagWithUI,
		X64:          flagX64,
		Variables:    config.ParseVariables(flagVariables),
		Source:       args[0],
		WixDir:       flagWixDir,
	}
	if flagUpgradeCode != "" {
		uc, err := uuid.Parse(flagUpgradeCode)
		if err != nil {
			return fmt.Errorf("invalid --upgrade-code %q: %w", flagUpgradeCode, err)
		}
		cfg.UpgradeCode = uc
	}
	cfg.ApplyDefaults(d)

	return build(cmd.Context(), cfg, d)
}

// build runs the whole batch pipeline inside one scoped temp directory,
// which is removed on every exit path.
func build(ctx context.Context, cfg *config.Config, d *diag.Collector) error {
	tmpDir, err := os.MkdirTemp("", "msigen-")
	if err != nil {
		return fmt.Errorf("creating work directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	srcDir, err := source.Acquire(cfg.Source, tmpDir)
	if err != nil {
		return err
	}

	tree, err := walker.New(cfg).Walk(srcDir)
	if err != nil {
		return err
	}
	fmt.Printf("Packaging %s: %d component(s)\n", cli.Filename(cfg.Source), len(tree.Refs))

	if cfg.Shortcut != "" && tree.Shortcut == nil {
		d.Errorf("couldn't create shortcut %s: file not found", cfg.Shortcut)
	}

	iconDLL := ""
	if cfg.Icon != "" {
		iconDLL = filepath.Join(tmpDir, "appico.dll")
		if err := icodll.Convert(cfg.Icon, iconDLL); err != nil {
			return fmt.Errorf("converting icon: %w", err)
		}
	}

	doc, err := wxs.Build(cfg, tree, iconDLL)
	if err != nil {
		return err
	}

	wxsPath := filepath.Join(tmpDir, toolchain.WxsName)
	if err := os.WriteFile(wxsPath, []byte(doc), 0644); err != nil {
		return fmt.Errorf("writing wxs: %w", err)
	}
	if cfg.OutputWXS != "" {
		if err := toolchain.CopyFile(wxsPath, cfg.OutputWXS); err != nil {
			return err
		}
		fmt.Printf("Written: %s\n", cli.Filename(cfg.OutputWXS))
	}

	msiPath, err := toolchain.New(cfg, tmpDir, d).Build(ctx)
	if err != nil {
		return err
	}
	if err := toolchain.CopyFile(msiPath, cfg.OutputMSI); err != nil {
		return err
	}

	fmt.Printf("%s %s\n", cli.Success("Built:"), cli.Filename(cfg.OutputMSI))
	return nil
}
