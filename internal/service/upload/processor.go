// Package upload persists incoming files and turns them into prompt text.
package upload

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

var (
	// ErrUnsafeFilename is returned when sanitizing leaves no usable name.
	ErrUnsafeFilename = errors.New("filename contains no safe characters")
	// ErrMalformedEncoding is returned when a text-like file is not valid UTF-8.
	ErrMalformedEncoding = errors.New("file content is not valid UTF-8")
)

// allowedExtensions is the upload allow-list, keyed by the lowercase
// substring after the final dot.
var allowedExtensions = map[string]bool{
	"txt": true, "pdf": true, "png": true, "jpg": true, "jpeg": true,
	"gif": true, "py": true, "js": true, "html": true, "css": true,
}

var textExtensions = map[string]bool{
	"txt": true, "py": true, "js": true, "html": true, "css": true,
}

var imageExtensions = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "gif": true,
}

// Allowed reports whether the filename's final extension is accepted.
func Allowed(filename string) bool {
	ext := extension(filename)
	return ext != "" && allowedExtensions[ext]
}

func extension(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 {
		return ""
	}
	return strings.ToLower(filename[idx+1:])
}

// Processor saves accepted uploads under a dedicated directory and
// extracts a textual representation for the prompt.
type Processor struct {
	dir string
}

// NewProcessor ensures the upload directory exists.
func NewProcessor(dir string) (*Processor, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &Processor{dir: dir}, nil
}

// Dir returns the upload directory path.
func (p *Processor) Dir() string {
	return p.dir
}

// Process persists the file under a sanitized name, then returns its
// textual representation: verbatim UTF-8 text for text-like types, a
// placeholder naming the file otherwise. Callers must check Allowed
// first; Process trusts the extension.
func (p *Processor) Process(filename string, data []byte) (string, error) {
	safe := SanitizeFilename(filename)
	if safe == "" {
		return "", ErrUnsafeFilename
	}

	if err := os.WriteFile(filepath.Join(p.dir, safe), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to save upload %s: %w", safe, err)
	}

	ext := extension(safe)
	switch {
	case textExtensions[ext]:
		if !utf8.Valid(data) {
			return "", ErrMalformedEncoding
		}
		return string(data), nil
	case imageExtensions[ext]:
		return fmt.Sprintf("[Image uploaded: %s]", safe), nil
	case ext == "pdf":
		return fmt.Sprintf("[PDF uploaded: %s]", safe), nil
	default:
		return fmt.Sprintf("[File uploaded: %s]", safe), nil
	}
}

// SanitizeFilename strips path components and maps anything outside
// [A-Za-z0-9._-] to underscores, so the result is always safe to join
// with the upload directory.
func SanitizeFilename(filename string) string {
	// Drop any directory part, whichever separator the client used.
	if idx := strings.LastIndexAny(filename, `/\`); idx >= 0 {
		filename = filename[idx+1:]
	}

	var b strings.Builder
	for _, r := range filename {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}

	safe := strings.Trim(b.String(), "._")
	return safe
}
