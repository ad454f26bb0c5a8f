// Package ident derives stable WiX identifiers from logical install paths.
//
// Every element id in the generated document is a function of the upgrade
// code (acting as a UUIDv5 namespace) and the upper-cased, slash-joined
// logical path of the entry, so re-running the tool over the same tree with
// the same upgrade code reproduces the identical document ids. WiX ids must
// start with a letter and contain no hyphens, hence the role prefix and the
// compact hex form.
package ident

import (
	"strings"

	"github.com/google/uuid"
)

// Role tags split the single hash space into the separate identifier
// namespaces the WiX schema requires.
type Role string

const (
	RoleDirectory Role = "Dir"
	RoleComponent Role = "Comp"
	RoleFile      Role = "File"
	RoleShortcut  Role = "Shortcut"
)

// UUID returns the version-5 UUID of logicalPath within the namespace.
func UUID(namespace uuid.UUID, logicalPath string) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte(logicalPath))
}

// Token returns the WiX id for logicalPath in the given role, e.g.
// "Comp_1b4db7eb4b7600c1f7e4f9dd1d2c3a4d".
func Token(role Role, namespace uuid.UUID, logicalPath string) string {
	return string(role) + "_" + Hex(UUID(namespace, logicalPath))
}

// GUID returns the canonical dashed form used for component identities.
func GUID(namespace uuid.UUID, logicalPath string) string {
	return UUID(namespace, logicalPath).String()
}

// Hex formats a UUID as 32 lowercase hex digits with no separators.
func Hex(u uuid.UUID) string {
	return strings.ReplaceAll(u.String(), "-", "")
}
