// Package config holds the resolved build configuration.
package config

import (
	"strings"

	"github.com/google/uuid"

	"msigen/internal/diag"
)

// DefaultVersion is substituted (with a warning) when no version is given.
const DefaultVersion = "0.0.1"

// Variable is a user-supplied NAME=VALUE pair emitted as a WixVariable.
type Variable struct {
	Name  string
	Value string
}

// Config is the full set of resolved options for one build. Treated as
// immutable once ApplyDefaults has run.
type Config struct {
	OutputMSI    string // required destination for the built installer
	OutputWXS    string // optional destination for the generated document
	UpgradeCode  uuid.UUID
	Version      string
	Name         string // required product name
	Manufacturer string
	Shortcut     string // install-root-relative path of the shortcut target
	Codepage     int
	Language     int
	Icon         string // path to an .ico file
	UICulture    string // non-empty enables the install-dir UI
	X64          bool
	Variables    []Variable
	Source       string // source directory or zip archive
	WixDir       string // optional directory containing the WiX tools
}

// ApplyDefaults fills in the optional fields the same way every run:
// manufacturer falls back to the product name, while a missing version or
// upgrade code is generated with a warning. A regenerated upgrade code
// breaks upgrade detection across builds, so the warning prints the value
// in flag form for the user to pin.
func (c *Config) ApplyDefaults(d *diag.Collector) {
	if c.Manufacturer == "" {
		c.Manufacturer = c.Name
	}

	if c.UpgradeCode == uuid.Nil {
		c.UpgradeCode = uuid.New()
		d.Warnf("no UpgradeCode specified, generating one for you: --upgrade-code=%s", c.UpgradeCode)
	}

	if c.Version == "" {
		c.Version = DefaultVersion
		d.Warnf("no version specified, generating one for you: --version=%s", c.Version)
	}
}

// Platform returns the WiX architecture name for the target.
func (c *Config) Platform() string {
	if c.X64 {
		return "x64"
	}
	return "x86"
}

// ParseVariable splits a NAME=VALUE argument. A missing '=' is tolerated:
// the whole argument becomes the name and the value is empty.
func ParseVariable(s string) Variable {
	name, value, _ := strings.Cut(s, "=")
	return Variable{Name: name, Value: value}
}

// ParseVariables converts a repeated --variable flag list.
func ParseVariables(args []string) []Variable {
	if len(args) == 0 {
		return nil
	}
	vars := make([]Variable, 0, len(args))
	for _, a := range args {
		vars = append(vars, ParseVariable(a))
	}
	return vars
}
