// Package browser presents the device's storage as a navigable tree using
// only the flat "list children of path" endpoint. It owns the navigation
// state, orders listings directories-first, discards responses that arrive
// after the operator navigated elsewhere, and implements recursive delete
// and paced bulk download.
package browser

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"kilocam/internal/confirm"
	"kilocam/internal/device"
	"kilocam/internal/errors"
	"kilocam/internal/log"
)

// API is the part of the device client the browser uses.
type API interface {
	List(ctx context.Context, path string) ([]device.Entry, error)
	Delete(ctx context.Context, path string) error
}

// Nav identifies one navigation request. Seq increases with every request
// so a response can be matched against the navigation that asked for it.
type Nav struct {
	Path string
	Seq  uint64
}

// CanGoUp reports whether the "go up" control is visible.
func (n Nav) CanGoUp() bool {
	return CanGoUp(n.Path)
}

// Listing is the outcome of fetching one directory.
type Listing struct {
	Nav     Nav
	Entries []device.Entry
	Err     error
}

// Browser holds the directory currently shown and the latest navigation
// request. It is safe for use from multiple goroutines.
type Browser struct {
	api API

	mu      sync.Mutex
	pending Nav // most recent request
	shown   Nav // directory whose rows are displayed
	entries []device.Entry
}

// New returns a browser at the root with no rows loaded.
func New(api API) *Browser {
	return &Browser{
		api:     api,
		pending: Nav{Path: Root},
		shown:   Nav{Path: Root},
	}
}

// Nav returns the directory whose rows are displayed.
func (b *Browser) Nav() Nav {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.shown
}

// Path returns the path of the displayed directory.
func (b *Browser) Path() string {
	return b.Nav().Path
}

// Pending returns the most recent navigation request.
func (b *Browser) Pending() Nav {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending
}

// Entries returns a copy of the displayed rows, directories first.
func (b *Browser) Entries() []device.Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]device.Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Navigate records a request to show path and returns its token. Any
// listing issued for an earlier token becomes stale.
func (b *Browser) Navigate(path string) Nav {
	if IsRoot(path) {
		path = Root
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = Nav{Path: path, Seq: b.pending.Seq + 1}
	return b.pending
}

// Fetch lists the directory named by nav. It does not touch browser state.
func (b *Browser) Fetch(ctx context.Context, nav Nav) Listing {
	entries, err := b.api.List(ctx, nav.Path)
	return Listing{Nav: nav, Entries: entries, Err: err}
}

// Apply installs a listing. A listing for anything but the latest request
// is dropped with errors.ErrStale. A failed listing leaves the displayed
// rows and directory untouched and returns the failure.
func (b *Browser) Apply(l Listing) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if l.Nav.Seq != b.pending.Seq {
		log.LogWithFields(log.F("path", l.Nav.Path), log.F("seq", l.Nav.Seq)).Debug("discarding stale listing")
		return errors.ErrStale
	}
	if l.Err != nil {
		log.LogWithFields(log.F("path", l.Nav.Path)).Warnf("listing failed: %v", l.Err)
		return errors.Wrapf(l.Err, "list %s", l.Nav.Path)
	}

	b.shown = l.Nav
	b.entries = SortDirsFirst(l.Entries)
	return nil
}

// Load navigates to path and applies the result.
func (b *Browser) Load(ctx context.Context, path string) error {
	return b.Apply(b.Fetch(ctx, b.Navigate(path)))
}

// Open descends into the child directory name of the displayed directory.
func (b *Browser) Open(ctx context.Context, name string) error {
	return b.Load(ctx, Resolve(b.Path(), name))
}

// Up moves to the parent directory. At the root it does nothing.
func (b *Browser) Up(ctx context.Context) error {
	current := b.Path()
	if IsRoot(current) {
		return nil
	}
	return b.Load(ctx, Parent(current))
}

// Refresh re-lists the displayed directory.
func (b *Browser) Refresh(ctx context.Context) error {
	return b.Load(ctx, b.Path())
}

// SortDirsFirst returns entries with every directory before every file,
// keeping server order within each group.
func SortDirsFirst(entries []device.Entry) []device.Entry {
	out := make([]device.Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].IsDir && !out[j].IsDir
	})
	return out
}

// Target is something the operator may delete.
type Target struct {
	Path  string
	IsDir bool
}

// TargetOf resolves a displayed entry to a delete target.
func (b *Browser) TargetOf(e device.Entry) Target {
	return Target{Path: Resolve(b.Path(), e.Name), IsDir: e.IsDir}
}

// Prompt is the confirmation question for deleting t. It names the path and
// says whether the delete is recursive.
func (t Target) Prompt() string {
	if t.IsDir {
		return fmt.Sprintf("Delete Directory (Recursive!): %s?", t.Path)
	}
	return fmt.Sprintf("Delete File: %s?", t.Path)
}

// Delete removes t after the operator confirms. Declining returns
// errors.ErrDeclined and sends nothing. On success the displayed directory
// is re-listed, unless the operator navigated elsewhere meanwhile; a failed
// re-list keeps the rows and does not make the delete a failure. On failure
// nothing is re-listed.
//
// A failed directory delete is checked by re-listing the directory: if it
// vanished or its direct children changed, the error is of kind
// PartialDelete, otherwise DeleteFailed.
func (b *Browser) Delete(ctx context.Context, t Target, c confirm.Confirmer) error {
	if !c.Confirm(t.Prompt()) {
		return errors.ErrDeclined
	}
	start := b.Pending()

	var before []device.Entry
	var beforeErr error
	if t.IsDir {
		before, beforeErr = b.api.List(ctx, t.Path)
	}

	if err := b.api.Delete(ctx, t.Path); err != nil {
		log.LogWithFields(log.F("path", t.Path), log.F("recursive", t.IsDir)).Warnf("delete failed: %v", err)
		if t.IsDir && beforeErr == nil && b.changedSince(ctx, t.Path, before) {
			return errors.NewBrowseError("recursive delete incomplete", t.Path, errors.PartialDelete, err)
		}
		return errors.NewBrowseError("delete failed", t.Path, errors.DeleteFailed, err)
	}

	log.LogWithFields(log.F("path", t.Path), log.F("recursive", t.IsDir)).Info("deleted")
	nav, ok := b.renavigate(start)
	if !ok {
		log.LogWithFields(log.F("path", t.Path)).Debug("navigation moved on, not re-listing after delete")
		return nil
	}
	if err := b.Apply(b.Fetch(ctx, nav)); err != nil && !errors.IsStale(err) {
		log.LogWithFields(log.F("path", nav.Path)).Warnf("re-list after delete failed: %v", err)
	}
	return nil
}

// renavigate issues a new request for the displayed directory, but only if
// start is still the latest request and it names that directory.
func (b *Browser) renavigate(start Nav) (Nav, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending != start || start.Path != b.shown.Path {
		return Nav{}, false
	}
	b.pending = Nav{Path: start.Path, Seq: start.Seq + 1}
	return b.pending, true
}

// changedSince reports whether dir no longer lists the same children.
// An unreachable device proves nothing and counts as unchanged.
func (b *Browser) changedSince(ctx context.Context, dir string, before []device.Entry) bool {
	after, err := b.api.List(ctx, dir)
	if err != nil {
		return errors.IsDeviceReported(err)
	}
	if len(after) != len(before) {
		return true
	}
	for i := range after {
		if after[i] != before[i] {
			return true
		}
	}
	return false
}
