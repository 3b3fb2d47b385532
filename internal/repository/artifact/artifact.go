// Package artifact stores uploaded files and serves them back by name.
package artifact

import (
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kailas-cloud/tagdex/internal/domain"
)

// PublicPrefix is the URL prefix under which stored artifacts are served.
const PublicPrefix = "/uploads/"

const (
	maxBaseRunes = 80
	fallbackName = "upload.bin"
)

// Object is an opened artifact ready to be streamed.
type Object struct {
	Content     io.ReadSeekCloser
	Size        int64
	ContentType string
	ModTime     time.Time
}

// PublicPath returns the URL path for a stored name.
func PublicPath(name string) string {
	return PublicPrefix + name
}

// SafeName derives a collision-resistant storage name from an uploaded filename:
// the base is cut to 80 runes, characters outside [a-zA-Z0-9_.-] become '_',
// and "_<unix millis>" is inserted before the extension.
func SafeName(filename string, now time.Time) string {
	filename = filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	if filename == "" || filename == "." || filename == "/" {
		filename = fallbackName
	}

	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	if utf8.RuneCountInString(base) > maxBaseRunes {
		base = string([]rune(base)[:maxBaseRunes])
	}

	return sanitize(base) + "_" + strconv.FormatInt(now.UnixMilli(), 10) + sanitize(ext)
}

func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isSafe(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func isSafe(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
		r == '_' || r == '-' || r == '.'
}

// validName reports whether name could have come from SafeName.
func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	for _, r := range name {
		if !isSafe(r) {
			return false
		}
	}
	return true
}

func checkName(name string) error {
	if !validName(name) {
		return domain.ErrNotFound
	}
	return nil
}
