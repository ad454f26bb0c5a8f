// Package toolchain drives the external WiX tools that turn the generated
// document into an installer binary.
//
// On Windows this is the three-stage candle/light/smoke pipeline; smoke is
// advisory only, so its failure degrades to a warning. Everywhere else a
// single wixl invocation does the whole job. All stages run inside the
// caller's scoped build directory and are attempted exactly once.
package toolchain

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"

	"msigen/internal/config"
	"msigen/internal/diag"
)

// Fixed names inside the build directory.
const (
	WxsName    = "app.wxs"
	wixobjName = "app.wixobj"
	MsiName    = "app.msi"
)

// Runner invokes the toolchain for one build directory.
type Runner struct {
	buildDir  string
	platform  string
	uiCulture string
	wixDir    string
	goos      string
	diag      *diag.Collector

	execCC func(context.Context, string, ...string) *exec.Cmd // test override
}

// Opt mutates a Runner during construction.
type Opt func(*Runner)

// WithExec overrides how commands are constructed, for tests.
func WithExec(fn func(context.Context, string, ...string) *exec.Cmd) Opt {
	return func(r *Runner) { r.execCC = fn }
}

// WithHostOS overrides the platform switch, for tests.
func WithHostOS(goos string) Opt {
	return func(r *Runner) { r.goos = goos }
}

// New creates a runner for buildDir, which must already contain WxsName.
// Tool lookup order: --wix-dir, the WIX environment variable's bin
// directory, then PATH.
func New(cfg *config.Config, buildDir string, d *diag.Collector, opts ...Opt) *Runner {
	wixDir := cfg.WixDir
	if wixDir == "" {
		if w := os.Getenv("WIX"); w != "" {
			wixDir = filepath.Join(w, "bin")
		}
	}

	r := &Runner{
		buildDir:  buildDir,
		platform:  cfg.Platform(),
		uiCulture: cfg.UICulture,
		wixDir:    wixDir,
		goos:      runtime.GOOS,
		diag:      d,
		execCC:    exec.CommandContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Build compiles the document and returns the path of the built MSI inside
// the build directory. Mandatory stage failures propagate; validation
// failures are recorded as warnings.
func (r *Runner) Build(ctx context.Context) (string, error) {
	if r.goos == "windows" {
		return r.buildWindows(ctx)
	}
	return r.buildWixl(ctx)
}

func (r *Runner) buildWindows(ctx context.Context) (string, error) {
	if _, err := r.execOut(ctx, r.tool("candle"),
		"-nologo",
		"-arch", r.platform,
		"-out", wixobjName,
		WxsName,
	); err != nil {
		return "", errors.Wrap(err, "compiling wxs")
	}

	lightArgs := []string{"-nologo", "-sval"}
	if r.uiCulture != "" {
		lightArgs = append(lightArgs, "-ext", "WixUIExtension", "-cultures:"+r.uiCulture)
	}
	lightArgs = append(lightArgs, "-out", MsiName, wixobjName)
	if _, err := r.execOut(ctx, r.tool("light"), lightArgs...); err != nil {
		return "", errors.Wrap(err, "linking msi")
	}

	// ICE61 fires for AllowDowngrades, ICE40 for the REINSTALLMODE
	// override; both are deliberate here.
	if _, err := r.execOut(ctx, r.tool("smoke"),
		"-nologo",
		"-sice:ICE61",
		"-sice:ICE40",
		MsiName,
	); err != nil {
		r.diag.Warnf("MSI validation failed: %v", err)
	}

	return filepath.Join(r.buildDir, MsiName), nil
}

func (r *Runner) buildWixl(ctx context.Context) (string, error) {
	if _, err := r.execOut(ctx, r.tool("wixl"), WxsName); err != nil {
		return "", errors.Wrap(err, "running wixl")
	}
	return filepath.Join(r.buildDir, MsiName), nil
}

func (r *Runner) tool(name string) string {
	if r.wixDir != "" {
		return filepath.Join(r.wixDir, name)
	}
	return name
}

func (r *Runner) execOut(ctx context.Context, argv0 string, args ...string) (string, error) {
	cmd := r.execCC(ctx, argv0, args...)
	cmd.Dir = r.buildDir

	r.diag.Debugf("execing %s", strings.Join(cmd.Args, " "))

	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	cmd.Stdout, cmd.Stderr = stdout, stderr
	if err := cmd.Run(); err != nil {
		return "", errors.Wrapf(err, "run command %s %v\nstdout=%s\nstderr=%s",
			argv0, args, stdout, stderr)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// CopyFile copies src to dst byte for byte, creating or truncating dst.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "opening %s", src)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return errors.Wrapf(err, "creating %s", dst)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return errors.Wrapf(err, "copying to %s", dst)
	}
	return out.Close()
}
