package browser_test

import (
	"context"
	"sync"
	"testing"

	"kilocam/internal/browser"
	"kilocam/internal/confirm"
	"kilocam/internal/device"
	"kilocam/internal/errors"
	"kilocam/pkg/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedAPI answers List from a fixed table and counts calls.
type scriptedAPI struct {
	mu      sync.Mutex
	dirs    map[string][]device.Entry
	lists   []string
	deletes []string
}

func (s *scriptedAPI) List(ctx context.Context, path string) ([]device.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists = append(s.lists, path)
	entries, ok := s.dirs[path]
	if !ok {
		return nil, errors.NewDeviceReportedError("/list", 404, "Not a directory")
	}
	return entries, nil
}

func (s *scriptedAPI) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, path)
	return nil
}

func newBrowser(t *testing.T) (*browser.Browser, *testutils.FakeDevice) {
	t.Helper()
	fd := testutils.NewFakeDevice(t)
	return browser.New(device.NewClient(fd.URL())), fd
}

func names(entries []device.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func TestSortDirsFirst(t *testing.T) {
	in := []device.Entry{
		{Name: "b.jpg"},
		{Name: "run_0002", IsDir: true},
		{Name: "a.jpg"},
		{Name: "run_0001", IsDir: true},
	}
	out := browser.SortDirsFirst(in)
	assert.Equal(t, []string{"run_0002", "run_0001", "b.jpg", "a.jpg"}, names(out))
	assert.Equal(t, "b.jpg", in[0].Name, "input must not be reordered")
}

func TestLoadRoot(t *testing.T) {
	b, fd := newBrowser(t)
	fd.AddFile("/config.txt", "x")
	fd.AddDir("/2024-01-01")

	require.NoError(t, b.Load(context.Background(), "/"))
	assert.Equal(t, "/", b.Path())
	assert.False(t, b.Nav().CanGoUp())
	assert.Equal(t, []string{"2024-01-01", "config.txt"}, names(b.Entries()))
}

func TestOpenAndUp(t *testing.T) {
	b, fd := newBrowser(t)
	fd.AddFile("/2024-01-01/images/IMG_0001.jpg", "abc")
	ctx := context.Background()

	require.NoError(t, b.Load(ctx, "/"))
	require.NoError(t, b.Open(ctx, "2024-01-01"))
	assert.Equal(t, "/2024-01-01", b.Path())
	assert.True(t, b.Nav().CanGoUp())

	require.NoError(t, b.Open(ctx, "images"))
	assert.Equal(t, "/2024-01-01/images", b.Path())
	assert.Equal(t, "/2024-01-01/images", fd.LastQuery("/list").Get("path"))

	require.NoError(t, b.Up(ctx))
	require.NoError(t, b.Up(ctx))
	assert.Equal(t, "/", b.Path())

	before := len(fd.Requests("/list"))
	require.NoError(t, b.Up(ctx))
	assert.Len(t, fd.Requests("/list"), before, "up at root must not list")
}

func TestStaleListingIsDiscarded(t *testing.T) {
	api := &scriptedAPI{dirs: map[string][]device.Entry{
		"/a": {{Name: "from-a.jpg"}},
		"/b": {{Name: "from-b.jpg"}},
	}}
	b := browser.New(api)
	ctx := context.Background()

	navA := b.Navigate("/a")
	navB := b.Navigate("/b")

	// B answers first, then A's late response arrives.
	require.NoError(t, b.Apply(b.Fetch(ctx, navB)))
	err := b.Apply(b.Fetch(ctx, navA))
	assert.True(t, errors.IsStale(err))

	assert.Equal(t, "/b", b.Path())
	assert.Equal(t, []string{"from-b.jpg"}, names(b.Entries()))
}

func TestFailedListingKeepsRows(t *testing.T) {
	b, fd := newBrowser(t)
	fd.AddFile("/run_0001/a.jpg", "a")
	fd.AddDir("/broken")
	fd.FailList("/broken")
	ctx := context.Background()

	require.NoError(t, b.Load(ctx, "/run_0001"))
	err := b.Load(ctx, "/broken")
	require.Error(t, err)
	assert.True(t, errors.IsDeviceReported(err))

	assert.Equal(t, "/run_0001", b.Path())
	assert.Equal(t, []string{"a.jpg"}, names(b.Entries()))
}

func TestDeletePrompt(t *testing.T) {
	assert.Equal(t, "Delete Directory (Recursive!): /run_0001?", browser.Target{Path: "/run_0001", IsDir: true}.Prompt())
	assert.Equal(t, "Delete File: /run_0001/a.jpg?", browser.Target{Path: "/run_0001/a.jpg"}.Prompt())
}

func TestDeleteFile(t *testing.T) {
	b, fd := newBrowser(t)
	fd.AddFile("/run_0001/a.jpg", "a")
	fd.AddFile("/run_0001/b.jpg", "b")
	ctx := context.Background()
	require.NoError(t, b.Load(ctx, "/run_0001"))

	rec := &confirm.Recorder{Answer: true}
	target := b.TargetOf(b.Entries()[0])
	require.NoError(t, b.Delete(ctx, target, rec))

	assert.Equal(t, []string{"Delete File: /run_0001/a.jpg?"}, rec.Prompts)
	assert.False(t, fd.Exists("/run_0001/a.jpg"))
	assert.Equal(t, []string{"b.jpg"}, names(b.Entries()), "listing is refreshed")
}

func TestDeleteDirectoryIsRecursive(t *testing.T) {
	b, fd := newBrowser(t)
	fd.AddFile("/run_0001/images/a.jpg", "a")
	fd.AddFile("/run_0001/log.txt", "l")
	fd.AddFile("/keep.txt", "k")
	ctx := context.Background()
	require.NoError(t, b.Load(ctx, "/"))

	err := b.Delete(ctx, browser.Target{Path: "/run_0001", IsDir: true}, confirm.Yes)
	require.NoError(t, err)

	assert.False(t, fd.Exists("/run_0001"))
	assert.False(t, fd.Exists("/run_0001/images/a.jpg"))
	assert.False(t, fd.Exists("/run_0001/log.txt"))
	assert.Equal(t, []string{"keep.txt"}, names(b.Entries()))
}

func TestDeclinedDeleteSendsNothing(t *testing.T) {
	b, fd := newBrowser(t)
	fd.AddFile("/a.jpg", "a")

	err := b.Delete(context.Background(), browser.Target{Path: "/a.jpg"}, confirm.No)
	assert.ErrorIs(t, err, errors.ErrDeclined)
	assert.Empty(t, fd.Requests("/delete"))
	assert.True(t, fd.Exists("/a.jpg"))
}

func TestDeleteFailures(t *testing.T) {
	t.Run("untouched directory is delete failed", func(t *testing.T) {
		b, fd := newBrowser(t)
		fd.AddFile("/run_0001/a.jpg", "a")
		fd.FailDelete("/run_0001")
		ctx := context.Background()
		require.NoError(t, b.Load(ctx, "/"))
		listsBefore := len(fd.Requests("/list"))

		err := b.Delete(ctx, browser.Target{Path: "/run_0001", IsDir: true}, confirm.Yes)
		require.Error(t, err)
		assert.True(t, errors.IsDeleteFailed(err))
		assert.False(t, errors.IsPartialDelete(err))

		// listed before and after, but no refresh of the displayed directory
		for _, r := range fd.Requests("/list")[listsBefore:] {
			assert.Equal(t, "/run_0001", r.URL.Query().Get("path"))
		}
	})

	t.Run("half removed directory is partial delete", func(t *testing.T) {
		b, fd := newBrowser(t)
		fd.AddFile("/run_0001/a.jpg", "a")
		fd.AddFile("/run_0001/b.jpg", "b")
		fd.PartialDelete("/run_0001")
		ctx := context.Background()

		err := b.Delete(ctx, browser.Target{Path: "/run_0001", IsDir: true}, confirm.Yes)
		require.Error(t, err)
		assert.True(t, errors.IsPartialDelete(err))

		var be *errors.BrowseError
		require.True(t, errors.As(err, &be))
		assert.Equal(t, "/run_0001", be.Path())
	})

	t.Run("file delete failure", func(t *testing.T) {
		b, fd := newBrowser(t)
		fd.AddFile("/a.jpg", "a")
		fd.FailDelete("/a.jpg")

		err := b.Delete(context.Background(), browser.Target{Path: "/a.jpg"}, confirm.Yes)
		assert.True(t, errors.IsDeleteFailed(err))
		assert.Empty(t, fd.Requests("/list"))
	})
}

func TestDeleteSucceedsWhenRelistFails(t *testing.T) {
	b, fd := newBrowser(t)
	fd.AddFile("/a.jpg", "a")
	fd.AddFile("/b.jpg", "b")
	ctx := context.Background()
	require.NoError(t, b.Load(ctx, "/"))
	fd.FailList("/")

	err := b.Delete(ctx, browser.Target{Path: "/a.jpg"}, confirm.Yes)
	require.NoError(t, err)

	assert.False(t, fd.Exists("/a.jpg"))
	assert.Equal(t, "/", b.Path())
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, names(b.Entries()), "failed re-list keeps the rows")
}

func TestDeleteDoesNotOverrideNewerNavigation(t *testing.T) {
	b, fd := newBrowser(t)
	fd.AddFile("/a.jpg", "a")
	fd.AddFile("/x/inside.jpg", "i")
	ctx := context.Background()
	require.NoError(t, b.Load(ctx, "/"))

	// the operator moves to /x while the delete is on its way
	navX := b.Navigate("/x")
	listingX := b.Fetch(ctx, navX)
	listsBefore := len(fd.Requests("/list"))

	require.NoError(t, b.Delete(ctx, browser.Target{Path: "/a.jpg"}, confirm.Yes))
	assert.False(t, fd.Exists("/a.jpg"))
	assert.Len(t, fd.Requests("/list"), listsBefore, "no re-list once navigation moved on")

	require.NoError(t, b.Apply(listingX))
	assert.Equal(t, "/x", b.Path())
	assert.Equal(t, []string{"inside.jpg"}, names(b.Entries()))
}

func TestDeleteRelistsDisplayedDirectory(t *testing.T) {
	api := &scriptedAPI{dirs: map[string][]device.Entry{
		"/":  {{Name: "a.jpg"}},
		"/y": {{Name: "from-y.jpg"}},
	}}
	b := browser.New(api)
	ctx := context.Background()
	require.NoError(t, b.Load(ctx, "/"))

	require.NoError(t, b.Delete(ctx, browser.Target{Path: "/a.jpg"}, confirm.Yes))
	assert.Equal(t, []string{"/a.jpg"}, api.deletes)
	assert.Equal(t, []string{"/", "/"}, api.lists, "re-listed the displayed directory")

	require.NoError(t, b.Load(ctx, "/y"))
	assert.Equal(t, "/y", b.Path())
}

// deepFailAPI removes a nested file on delete, then reports failure while
// the directory's own children are unchanged.
type deepFailAPI struct {
	scriptedAPI
}

func (d *deepFailAPI) Delete(ctx context.Context, path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deletes = append(d.deletes, path)
	d.dirs[path+"/images"] = nil
	return errors.NewDeviceReportedError("/delete", 500, "Delete Failed")
}

func TestFailedDeleteComparesDirectChildrenOnly(t *testing.T) {
	api := &deepFailAPI{scriptedAPI{dirs: map[string][]device.Entry{
		"/run":        {{Name: "images", IsDir: true}, {Name: "log.txt", Size: 3}},
		"/run/images": {{Name: "a.jpg", Size: 1}},
	}}}
	b := browser.New(api)

	err := b.Delete(context.Background(), browser.Target{Path: "/run", IsDir: true}, confirm.Yes)

	assert.True(t, errors.IsDeleteFailed(err))
	assert.False(t, errors.IsPartialDelete(err))
	assert.Equal(t, []string{"/run", "/run"}, api.lists)
}
