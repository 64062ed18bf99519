package recognizer

import (
	"context"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"motion_security/internal/models"
)

// Matcher turns located faces into recognition results. A face matches its
// nearest identity only when that distance is under the threshold and the
// runner-up is at least minGap further away.
type Matcher struct {
	enc       Encoder
	threshold float64
	minGap    float64
}

func NewMatcher(enc Encoder, threshold, minGap float64) *Matcher {
	return &Matcher{enc: enc, threshold: threshold, minGap: minGap}
}

func (m *Matcher) Recognize(ctx context.Context, frame models.Frame, set *models.FaceSet) ([]models.RecognitionResult, error) {
	faces, err := m.enc.LocateAndEncodeAll(ctx, frame.Data)
	if err != nil {
		return nil, err
	}

	results := make([]models.RecognitionResult, 0, len(faces))
	for _, f := range faces {
		results = append(results, m.match(f, set))
	}
	return results, nil
}

type candidate struct {
	idx  int
	dist float64
}

func (m *Matcher) match(f Face, set *models.FaceSet) models.RecognitionResult {
	res := models.RecognitionResult{Region: f.Box, Distance: math.Inf(1), ConfidenceGap: math.Inf(1)}

	cands := make([]candidate, 0, set.Len())
	for i := 0; i < set.Len(); i++ {
		reg := set.At(i).Encoding
		if len(reg) == 0 || len(reg) != len(f.Encoding) {
			continue
		}
		cands = append(cands, candidate{idx: i, dist: floats.Distance(f.Encoding, reg, 2)})
	}
	if len(cands) == 0 {
		return res
	}

	sort.SliceStable(cands, func(a, b int) bool { return cands[a].dist < cands[b].dist })

	best := cands[0]
	res.Distance = best.dist
	if len(cands) > 1 {
		res.ConfidenceGap = cands[1].dist - best.dist
	}
	if best.dist < m.threshold && res.ConfidenceGap >= m.minGap {
		res.Identity = set.At(best.idx)
	}
	return res
}
