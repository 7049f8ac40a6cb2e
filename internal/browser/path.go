package browser

import (
	"path"
	"strings"
)

// Root is the device storage root.
const Root = "/"

// Resolve builds the full path of child under dir: dir, a separator if dir
// does not already end in one, then child.
func Resolve(dir, child string) string {
	if dir == "" {
		dir = Root
	}
	if !strings.HasSuffix(dir, "/") {
		dir += "/"
	}
	return dir + child
}

// Parent returns the directory containing p. One trailing separator is
// ignored, and a parent that would be empty is "/".
func Parent(p string) string {
	if IsRoot(p) {
		return Root
	}
	if strings.HasSuffix(p, "/") && len(p) > 1 {
		p = p[:len(p)-1]
	}
	i := strings.LastIndex(p, "/")
	if i <= 0 {
		return Root
	}
	return p[:i]
}

// IsRoot reports whether p is the storage root ("/" or empty).
func IsRoot(p string) bool {
	return p == "" || p == Root
}

// CanGoUp reports whether the "go up" affordance is shown for p.
func CanGoUp(p string) bool {
	return !IsRoot(p)
}

// Clean makes p absolute and resolves it lexically: duplicate separators
// collapse, "." and ".." segments are applied and never climb above the
// root, and a trailing separator is dropped except on the root.
func Clean(p string) string {
	return path.Clean(Root + p)
}

// Base returns the last segment of p.
func Base(p string) string {
	p = strings.TrimRight(p, "/")
	return p[strings.LastIndex(p, "/")+1:]
}
