package recognizer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"motion_security/internal/logger"
	"motion_security/internal/models"
)

const defaultColor = "white"

var (
	ErrEmptyName    = errors.New("recognizer: name must not be empty")
	ErrInvalidName  = errors.New("recognizer: name must not contain '_' or path separators")
	ErrUnknownColor = errors.New("recognizer: unsupported colour")
)

// DirSource loads registered identities from image files named
// <name>_<color>[_<timestamp>].jpg|png. A file without a colour part gets white.
type DirSource struct {
	dir string
	enc Encoder
	log *logger.Logger
	now func() time.Time
}

func NewDirSource(dir string, enc Encoder, log *logger.Logger) *DirSource {
	return &DirSource{dir: dir, enc: enc, log: logger.OrNop(log), now: time.Now}
}

func (s *DirSource) LoadRegistered(ctx context.Context) ([]models.RegisteredIdentity, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read registered dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !isImage(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	ids := make([]models.RegisteredIdentity, 0, len(names))
	for _, fn := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := os.ReadFile(filepath.Join(s.dir, fn))
		if err != nil {
			s.log.Warnw("registered_face_unreadable", "file", fn, "err", err)
			continue
		}
		enc, err := Encode(ctx, s.enc, img)
		if errors.Is(err, ErrNoFace) {
			s.log.Warnw("registered_face_skipped", "file", fn, "reason", "no face")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", fn, err)
		}
		name, color := parseFileName(fn)
		ids = append(ids, models.RegisteredIdentity{Name: name, PreferredColor: color, Encoding: enc})
	}
	return ids, nil
}

// Register validates the image and stores it under the registered dir.
// Unsupported colours are refused unless force is set.
func (s *DirSource) Register(ctx context.Context, name, color string, img []byte, force bool) (string, error) {
	name = strings.TrimSpace(name)
	color = strings.ToLower(strings.TrimSpace(color))
	if name == "" {
		return "", ErrEmptyName
	}
	if strings.ContainsAny(name, `_/\`) {
		return "", ErrInvalidName
	}
	if color == "" {
		color = defaultColor
	}
	if strings.Contains(color, "_") || (!force && !models.IsSupportedColor(color)) {
		return "", fmt.Errorf("%w: %q", ErrUnknownColor, color)
	}

	if _, err := Encode(ctx, s.enc, img); err != nil {
		return "", err
	}

	data, err := toJPEG(img)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create registered dir: %w", err)
	}
	path := filepath.Join(s.dir, fmt.Sprintf("%s_%s_%s.jpg", name, color, s.now().Format("20060102_150405")))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write registered face: %w", err)
	}
	s.log.Infow("face_registered", "name", name, "color", color, "path", path)
	return path, nil
}

func toJPEG(img []byte) ([]byte, error) {
	decoded, format, err := image.Decode(bytes.NewReader(img))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if format == "jpeg" {
		return img, nil
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, decoded, &jpeg.Options{Quality: 95}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func isImage(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

func parseFileName(fn string) (name, color string) {
	stem := strings.TrimSuffix(fn, filepath.Ext(fn))
	parts := strings.Split(stem, "_")
	if len(parts) < 2 || parts[1] == "" {
		return parts[0], defaultColor
	}
	return parts[0], parts[1]
}
