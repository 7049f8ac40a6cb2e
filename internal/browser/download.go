package browser

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"kilocam/internal/device"
	"kilocam/internal/errors"
	"kilocam/internal/log"

	"github.com/gobwas/glob"
	"golang.org/x/sync/errgroup"
)

// DefaultPacing is the delay between consecutive download triggers.
const DefaultPacing = 500 * time.Millisecond

// FetchAPI is the part of the device client bulk download uses.
type FetchAPI interface {
	List(ctx context.Context, path string) ([]device.Entry, error)
	Fetch(ctx context.Context, path string, w io.Writer) (int64, error)
}

// Queue is the ordered set of file paths one "download all" will fetch.
// It lives only for the duration of that action.
type Queue struct {
	Dir   string
	Paths []string
}

// Len returns the number of queued files.
func (q *Queue) Len() int {
	return len(q.Paths)
}

// Result is the outcome of one file download.
type Result struct {
	Path  string // device path
	Local string // written file
	Bytes int64
	Err   error
}

// Downloader fetches every file of a directory, spacing the triggers so
// the device (and anything in between) is not flooded.
type Downloader struct {
	api      FetchAPI
	dest     string
	interval time.Duration
	match    glob.Glob

	// OnTrigger, when set, is called as each download is fired.
	OnTrigger func(index int, path string, at time.Time)
	// OnResult, when set, is called as each download finishes.
	OnResult func(Result)
}

// NewDownloader writes into dest with the given pacing interval.
func NewDownloader(api FetchAPI, dest string, interval time.Duration) *Downloader {
	if interval <= 0 {
		interval = DefaultPacing
	}
	return &Downloader{api: api, dest: dest, interval: interval}
}

// Interval returns the pacing interval.
func (d *Downloader) Interval() time.Duration {
	return d.interval
}

// SetMatch restricts downloads to file names matching a glob such as
// "*.{jpg,jpeg}". An empty pattern matches everything.
func (d *Downloader) SetMatch(pattern string) error {
	if pattern == "" {
		d.match = nil
		return nil
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return fmt.Errorf("invalid match pattern %q: %w", pattern, err)
	}
	d.match = g
	return nil
}

// Prompt is the confirmation question for downloading everything in dir.
func Prompt(dir string) string {
	return fmt.Sprintf("Download all files in %s? This will open multiple downloads.", dir)
}

// Plan lists dir and queues its files in listing order. Directories are
// skipped. A directory without files yields errors.ErrNothingToDownload.
func (d *Downloader) Plan(ctx context.Context, dir string) (*Queue, error) {
	entries, err := d.api.List(ctx, dir)
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", dir)
	}

	q := &Queue{Dir: dir}
	for _, e := range entries {
		if e.IsDir {
			continue
		}
		if d.match != nil && !d.match.Match(e.Name) {
			continue
		}
		q.Paths = append(q.Paths, Resolve(dir, e.Name))
	}
	if len(q.Paths) == 0 {
		return nil, errors.ErrNothingToDownload
	}
	return q, nil
}

// Run fires one download per queued path, each at least the pacing
// interval after the previous one. Downloads run independently: once fired
// they finish even if ctx is cancelled; cancelling ctx only discards the
// triggers not yet fired. Run waits for every fired download.
func (d *Downloader) Run(ctx context.Context, q *Queue) ([]Result, error) {
	if err := os.MkdirAll(d.dest, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}

	results := make([]Result, len(q.Paths))
	fired := 0
	var g errgroup.Group
	detached := context.WithoutCancel(ctx)

	for i, p := range q.Paths {
		i, p := i, p
		if i > 0 {
			timer := time.NewTimer(d.interval)
			select {
			case <-ctx.Done():
				timer.Stop()
				log.Infof("download of %s stopped after %d of %d files", q.Dir, fired, len(q.Paths))
				return results[:fired], g.Wait()
			case <-timer.C:
			}
		}

		if d.OnTrigger != nil {
			d.OnTrigger(i, p, time.Now())
		}
		g.Go(func() error {
			results[i] = d.fetchOne(detached, p)
			if d.OnResult != nil {
				d.OnResult(results[i])
			}
			return nil
		})
		fired++
	}
	g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return results, errors.Newf("%d of %d downloads failed", failed, len(results))
	}
	return results, nil
}

// DownloadAll plans and runs a bulk download of dir.
func (d *Downloader) DownloadAll(ctx context.Context, dir string) ([]Result, error) {
	q, err := d.Plan(ctx, dir)
	if err != nil {
		return nil, err
	}
	return d.Run(ctx, q)
}

func (d *Downloader) fetchOne(ctx context.Context, p string) Result {
	res := Result{Path: p}
	name := Base(p)
	if name == "" || name == "." || name == ".." {
		res.Err = errors.NewBrowseError("refusing to write", p, errors.InvalidPath, nil)
		return res
	}
	res.Local = filepath.Join(d.dest, name)

	f, err := os.Create(res.Local)
	if err != nil {
		res.Err = err
		return res
	}
	res.Bytes, res.Err = d.api.Fetch(ctx, p, f)
	if cerr := f.Close(); res.Err == nil {
		res.Err = cerr
	}
	if res.Err != nil {
		os.Remove(res.Local)
		log.LogWithFields(log.F("path", p)).Warnf("download failed: %v", res.Err)
		return res
	}
	log.LogWithFields(log.F("path", p), log.F("bytes", res.Bytes)).Debug("downloaded")
	return res
}
