package propstore

import "strings"

const (
	// PropNameMax is the maximum property name length including the
	// terminating NUL.
	PropNameMax = 32

	// PropValueMax is the maximum mutable property value length
	// including the terminating NUL. Read-only long values are not
	// bounded by this constant; they are limited only by area capacity.
	PropValueMax = 92

	// ReadOnlyPrefix marks a property name as read-only: once added, its
	// value never changes and it may exceed PropValueMax.
	ReadOnlyPrefix = "ro."
)

// isReadOnly reports whether name falls under the read-only namespace.
func isReadOnly(name string) bool {
	return strings.HasPrefix(name, ReadOnlyPrefix)
}
