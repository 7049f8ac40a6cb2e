package testutils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path"
	"strings"
	"sync"
	"testing"

	"kilocam/internal/device"
)

// FakeDevice is an in-memory KiloCam serving the device HTTP API over
// httptest. Directory listings come back in insertion order so callers can
// check client-side ordering.
type FakeDevice struct {
	Server *httptest.Server

	mu       sync.Mutex
	status   device.Status
	photo    []byte
	files    map[string][]byte
	children map[string][]string // dir path -> child names in insertion order
	requests []*http.Request

	failList      map[string]bool
	failDelete    map[string]bool
	partialDelete map[string]bool
	failPath      map[string]bool
}

// NewFakeDevice starts a fake device and closes it when the test ends.
func NewFakeDevice(t *testing.T) *FakeDevice {
	t.Helper()
	fd := &FakeDevice{
		status: device.Status{
			Name:     "camOne",
			Storage:  "12.3 MB used / 3.7 GB",
			Time:     "2024-06-01 12:00:00",
			Interval: 300,
			LightPWM: 1500,
			LightDur: 1000,
		},
		photo:         testJPEG(8, 6),
		files:         make(map[string][]byte),
		children:      map[string][]string{"/": {}},
		failList:      make(map[string]bool),
		failDelete:    make(map[string]bool),
		partialDelete: make(map[string]bool),
		failPath:      make(map[string]bool),
	}
	fd.Server = httptest.NewServer(http.HandlerFunc(fd.serve))
	t.Cleanup(fd.Server.Close)
	return fd
}

// URL is the base URL to hand to device.NewClient.
func (fd *FakeDevice) URL() string {
	return fd.Server.URL
}

// SetStatus replaces the snapshot served by /status.
func (fd *FakeDevice) SetStatus(s device.Status) {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	fd.status = s
}

// AddDir creates a directory and any missing parents.
func (fd *FakeDevice) AddDir(p string) {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	fd.addDir(p)
}

// AddFile creates a file and any missing parent directories.
func (fd *FakeDevice) AddFile(p string, content string) {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	parent, name := path.Split(p)
	parent = cleanDir(parent)
	fd.addDir(parent)
	if _, exists := fd.files[p]; !exists {
		fd.children[parent] = append(fd.children[parent], name)
	}
	fd.files[p] = []byte(content)
}

func (fd *FakeDevice) addDir(p string) {
	p = cleanDir(p)
	if _, ok := fd.children[p]; ok {
		return
	}
	parent, name := path.Split(p)
	parent = cleanDir(parent)
	fd.addDir(parent)
	fd.children[parent] = append(fd.children[parent], name)
	fd.children[p] = []string{}
}

// Exists reports whether a file or directory is present.
func (fd *FakeDevice) Exists(p string) bool {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	if _, ok := fd.files[p]; ok {
		return true
	}
	_, ok := fd.children[cleanDir(p)]
	return ok
}

// FailList makes /list for dir answer 500.
func (fd *FakeDevice) FailList(dir string) {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	fd.failList[dir] = true
}

// FailDelete makes /delete for p answer 500 without removing anything.
func (fd *FakeDevice) FailDelete(p string) {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	fd.failDelete[p] = true
}

// PartialDelete makes /delete for directory p remove only its first child
// and then answer 500.
func (fd *FakeDevice) PartialDelete(p string) {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	fd.partialDelete[p] = true
}

// FailFetch makes GET on a file path answer 500.
func (fd *FakeDevice) FailFetch(p string) {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	fd.failPath[p] = true
}

// Requests returns the requests received for an endpoint path, in order.
func (fd *FakeDevice) Requests(endpoint string) []*http.Request {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	var out []*http.Request
	for _, r := range fd.requests {
		if r.URL.Path == endpoint {
			out = append(out, r)
		}
	}
	return out
}

// LastQuery returns the query of the most recent request to endpoint.
func (fd *FakeDevice) LastQuery(endpoint string) url.Values {
	reqs := fd.Requests(endpoint)
	if len(reqs) == 0 {
		return nil
	}
	return reqs[len(reqs)-1].URL.Query()
}

// Photo returns the bytes served by /capture.
func (fd *FakeDevice) Photo() []byte {
	return fd.photo
}

func (fd *FakeDevice) serve(w http.ResponseWriter, r *http.Request) {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	fd.requests = append(fd.requests, r)
	q := r.URL.Query()

	switch r.URL.Path {
	case "/status":
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(fd.status)
	case "/set-time":
		fmt.Fprintf(w, "Time set to %s (tz %s)", q.Get("time"), q.Get("tz"))
	case "/save-config":
		if n := q.Get("name"); n != "" {
			fd.status.Name = n
		}
		fmt.Sscanf(q.Get("interval"), "%d", &fd.status.Interval)
		fmt.Sscanf(q.Get("lightPwm"), "%d", &fd.status.LightPWM)
		fmt.Sscanf(q.Get("lightDur"), "%d", &fd.status.LightDur)
		fmt.Fprint(w, "Settings Saved")
	case "/control":
		switch q.Get("action") {
		case "start":
			fmt.Fprint(w, "Collection started: /run_0003")
		case "shutdown":
			fmt.Fprint(w, "Shutting down")
		case "light":
			fmt.Fprint(w, "Light ON")
		default:
			http.Error(w, "Unknown action", http.StatusBadRequest)
		}
	case "/capture":
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(fd.photo)
	case "/list":
		fd.serveList(w, q.Get("path"))
	case "/delete":
		fd.serveDelete(w, q.Get("path"))
	default:
		fd.serveFile(w, r.URL.Path)
	}
}

func (fd *FakeDevice) serveList(w http.ResponseWriter, dir string) {
	if dir == "" {
		dir = "/"
	}
	dir = cleanDir(dir)
	if fd.failList[dir] {
		http.Error(w, "Failed to open directory", http.StatusInternalServerError)
		return
	}
	names, ok := fd.children[dir]
	if !ok {
		http.Error(w, "Not a directory", http.StatusNotFound)
		return
	}

	entries := make([]device.Entry, 0, len(names))
	for _, name := range names {
		full := join(dir, name)
		if data, isFile := fd.files[full]; isFile {
			entries = append(entries, device.Entry{Name: name, Size: int64(len(data))})
		} else {
			entries = append(entries, device.Entry{Name: name, IsDir: true})
		}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

func (fd *FakeDevice) serveDelete(w http.ResponseWriter, p string) {
	if fd.failDelete[p] {
		http.Error(w, "Delete Failed", http.StatusInternalServerError)
		return
	}
	if fd.partialDelete[p] {
		if names := fd.children[cleanDir(p)]; len(names) > 0 {
			fd.remove(join(cleanDir(p), names[0]))
		}
		http.Error(w, "Delete Failed", http.StatusInternalServerError)
		return
	}
	if !fd.remove(p) {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	fmt.Fprint(w, "Deleted")
}

// remove deletes p and, for directories, all descendants.
func (fd *FakeDevice) remove(p string) bool {
	if _, ok := fd.files[p]; ok {
		delete(fd.files, p)
		fd.unlink(p)
		return true
	}
	dir := cleanDir(p)
	names, ok := fd.children[dir]
	if !ok || dir == "/" {
		return false
	}
	for _, name := range append([]string(nil), names...) {
		fd.remove(join(dir, name))
	}
	delete(fd.children, dir)
	fd.unlink(dir)
	return true
}

func (fd *FakeDevice) unlink(p string) {
	parent, name := path.Split(p)
	parent = cleanDir(parent)
	names := fd.children[parent]
	for i, n := range names {
		if n == name {
			fd.children[parent] = append(names[:i:i], names[i+1:]...)
			return
		}
	}
}

func (fd *FakeDevice) serveFile(w http.ResponseWriter, p string) {
	if fd.failPath[p] {
		http.Error(w, "Read error", http.StatusInternalServerError)
		return
	}
	data, ok := fd.files[p]
	if !ok {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Write(data)
}

func cleanDir(p string) string {
	if p == "" {
		return "/"
	}
	p = path.Clean("/" + p)
	return p
}

func join(dir, name string) string {
	if strings.HasSuffix(dir, "/") {
		return dir + name
	}
	return dir + "/" + name
}

func testJPEG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 40), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	jpeg.Encode(&buf, img, nil)
	return buf.Bytes()
}
