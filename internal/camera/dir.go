package camera

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"motion_security/internal/models"
	"motion_security/internal/service"
)

// DirSource replays the images of a directory in lexical order, one per
// frame interval. The stream ends with io.EOF after the last file.
type DirSource struct {
	dir      string
	interval time.Duration
}

func NewDirSource(dir string, interval time.Duration) *DirSource {
	return &DirSource{dir: dir, interval: interval}
}

func (s *DirSource) Open(ctx context.Context) (service.FrameStream, error) {
	files, err := imageFiles(s.dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("camera: no images in %s", s.dir)
	}
	return &dirStream{files: files, interval: s.interval}, nil
}

func imageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("camera: read dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png":
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

type dirStream struct {
	files    []string
	next     int
	interval time.Duration
	last     time.Time
}

func (st *dirStream) Next(ctx context.Context) (models.Frame, error) {
	if st.next >= len(st.files) {
		return models.Frame{}, io.EOF
	}
	if err := pace(ctx, st.last, st.interval); err != nil {
		return models.Frame{}, err
	}
	st.last = time.Now()

	path := st.files[st.next]
	st.next++
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Frame{}, fmt.Errorf("camera: read frame: %w", err)
	}
	return describe(data, uint64(st.next), st.last), nil
}

func (st *dirStream) Close() error { return nil }
