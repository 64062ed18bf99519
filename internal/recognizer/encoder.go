// Package recognizer matches faces in camera frames against the registered
// identities. Face location and encoding run in a sidecar reached over HTTP.
package recognizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"motion_security/internal/config"
	"motion_security/internal/models"
)

var ErrNoFace = errors.New("recognizer: no face found in image")

// Face is one located face and its encoding.
type Face struct {
	Box      models.Box
	Encoding []float64
}

type Encoder interface {
	// LocateAndEncodeAll returns every face found in img, possibly none.
	LocateAndEncodeAll(ctx context.Context, img []byte) ([]Face, error)
}

// Encode returns the encoding of the first face in img.
func Encode(ctx context.Context, enc Encoder, img []byte) ([]float64, error) {
	faces, err := enc.LocateAndEncodeAll(ctx, img)
	if err != nil {
		return nil, err
	}
	if len(faces) == 0 {
		return nil, ErrNoFace
	}
	return faces[0].Encoding, nil
}

type encodeResponse struct {
	Faces []struct {
		Box      [4]int    `json:"box"` // top, right, bottom, left
		Encoding []float64 `json:"encoding"`
	} `json:"faces"`
}

// HTTPEncoder posts raw image bytes to <url>/encode.
type HTTPEncoder struct {
	endpoint string
	client   *http.Client
}

func NewHTTPEncoder(cfg config.RecognizerConfig) *HTTPEncoder {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPEncoder{
		endpoint: strings.TrimRight(cfg.URL, "/") + "/encode",
		client:   &http.Client{Timeout: timeout},
	}
}

func (e *HTTPEncoder) LocateAndEncodeAll(ctx context.Context, img []byte) ([]Face, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(img))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("encode request: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out encodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode encode response: %w", err)
	}

	faces := make([]Face, 0, len(out.Faces))
	for _, f := range out.Faces {
		faces = append(faces, Face{
			Box:      models.Box{Top: f.Box[0], Right: f.Box[1], Bottom: f.Box[2], Left: f.Box[3]},
			Encoding: f.Encoding,
		})
	}
	return faces, nil
}
