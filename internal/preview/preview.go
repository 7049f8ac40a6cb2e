// Package preview turns the bytes returned by a capture into something an
// operator can look at: decoded dimensions, a terminal thumbnail and a file
// on disk. A new capture always replaces the previous preview.
package preview

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"kilocam/internal/log"

	"github.com/charmbracelet/lipgloss"
	"github.com/gabriel-vasile/mimetype"
	"github.com/nfnt/resize"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
)

func init() {
	exif.RegisterParsers(mknote.All...)
}

// DefaultWidth is the thumbnail width in terminal columns.
const DefaultWidth = 48

// Preview is one captured photo.
type Preview struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
	Format      string // as reported by the image decoder: "jpeg", "png", ...

	// From EXIF, when the camera wrote any.
	Taken  time.Time
	Camera string
}

// New inspects data without fully decoding it. Bytes that are not a known
// image format still produce a Preview with zero dimensions so they can be
// saved as-is. A missing or generic content type is sniffed from the data.
func New(data []byte, contentType string) *Preview {
	if contentType == "" || strings.HasPrefix(contentType, "application/octet-stream") {
		contentType = mimetype.Detect(data).String()
	}
	p := &Preview{Data: data, ContentType: contentType}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		log.Debugf("capture is not a decodable image: %v", err)
		return p
	}
	p.Width, p.Height, p.Format = cfg.Width, cfg.Height, format
	p.readExif()
	return p
}

// readExif fills Taken and Camera. Photos without EXIF are common (the
// device may not write it) and leave both empty.
func (p *Preview) readExif() {
	x, err := exif.Decode(bytes.NewReader(p.Data))
	if err != nil {
		log.Debugf("no EXIF data in capture: %v", err)
		return
	}
	if t, err := x.DateTime(); err == nil {
		p.Taken = t
	}
	if tag, err := x.Get(exif.Model); err == nil {
		if model, err := tag.StringVal(); err == nil {
			p.Camera = strings.TrimSpace(model)
		}
	}
}

// Decodable reports whether the bytes are an image this build can decode.
func (p *Preview) Decodable() bool {
	return p.Format != ""
}

// Image decodes the photo.
func (p *Preview) Image() (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(p.Data))
	if err != nil {
		return nil, fmt.Errorf("decode capture: %w", err)
	}
	return img, nil
}

// Summary is a one-line description such as "640x480 jpeg, 23 kB", with the
// EXIF capture time appended when known.
func (p *Preview) Summary(size func(int64) string) string {
	if !p.Decodable() {
		return fmt.Sprintf("%s, %s", orUnknown(p.ContentType), size(int64(len(p.Data))))
	}
	s := fmt.Sprintf("%dx%d %s, %s", p.Width, p.Height, p.Format, size(int64(len(p.Data))))
	if !p.Taken.IsZero() {
		s += ", taken " + p.Taken.Format("2006-01-02 15:04:05")
	}
	return s
}

// Thumbnail renders the photo width columns wide using upper half blocks,
// two pixel rows per text line.
func (p *Preview) Thumbnail(width int) (string, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	img, err := p.Image()
	if err != nil {
		return "", err
	}
	small := resize.Resize(uint(width), 0, img, resize.Bilinear)
	b := small.Bounds()

	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			top := hex(small.At(x, y))
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(top))
			if y+1 < b.Max.Y {
				style = style.Background(lipgloss.Color(hex(small.At(x, y+1))))
			}
			sb.WriteString(style.Render("▀"))
		}
		if y+2 < b.Max.Y {
			sb.WriteByte('\n')
		}
	}
	return sb.String(), nil
}

// Extension picks a file extension from the decoded format, then from the
// content type.
func (p *Preview) Extension() string {
	switch {
	case p.Format == "jpeg", strings.Contains(p.ContentType, "jpeg"):
		return ".jpg"
	case p.Format == "png", strings.Contains(p.ContentType, "png"):
		return ".png"
	case p.Format == "gif", strings.Contains(p.ContentType, "gif"):
		return ".gif"
	}
	base, _, _ := strings.Cut(p.ContentType, ";")
	if m := mimetype.Lookup(strings.TrimSpace(base)); m != nil && m.Extension() != "" {
		return m.Extension()
	}
	return ".bin"
}

// Save writes the photo as dir/capture<ext>, replacing any earlier capture
// regardless of its extension, and returns the written path.
func (p *Preview) Save(dir string) (string, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "kilocam")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create preview directory: %w", err)
	}

	old, _ := filepath.Glob(filepath.Join(dir, "capture.*"))
	for _, f := range old {
		if err := os.Remove(f); err != nil {
			log.Warnf("could not remove previous preview %s: %v", f, err)
		}
	}

	path := filepath.Join(dir, "capture"+p.Extension())
	if err := os.WriteFile(path, p.Data, 0644); err != nil {
		return "", fmt.Errorf("failed to write preview: %w", err)
	}
	return path, nil
}

func hex(c interface{ RGBA() (r, g, b, a uint32) }) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown type"
	}
	return s
}
