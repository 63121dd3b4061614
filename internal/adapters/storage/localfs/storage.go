package localfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Storage keeps images on local disk under a base directory. References are
// relative paths; PublicURL maps them under /uploads/ for the file server.
type Storage struct {
	dir string
}

func New(dir string) *Storage { return &Storage{dir: dir} }

func sanitizeFileName(name string) string {
	name = filepath.Base(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}

func (s *Storage) SaveImage(_ context.Context, filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("archivo vacío")
	}
	name := uuid.New().String()[:8] + "_" + sanitizeFileName(filename)
	full := filepath.Join(s.dir, name)
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(full, data, 0644); err != nil {
		return "", err
	}
	return name, nil
}

func (s *Storage) FetchImage(_ context.Context, ref string) ([]byte, error) {
	// refs are always relative names produced by SaveImage
	return os.ReadFile(filepath.Join(s.dir, filepath.Base(ref)))
}

func (s *Storage) PublicURL(_ context.Context, ref string) (string, error) {
	return "/uploads/" + filepath.Base(ref), nil
}
