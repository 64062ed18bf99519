package models

import "time"

// RegisteredIdentity is a known person with a preferred light colour.
type RegisteredIdentity struct {
	Name           string    `json:"name"`
	PreferredColor string    `json:"preferred_color"`
	Encoding       []float64 `json:"-"`
}

// FaceSet is an immutable batch of registered identities. It is swapped as a
// whole and never modified after construction.
type FaceSet struct {
	identities []RegisteredIdentity
	loadedAt   time.Time
}

// NewFaceSet copies ids into a new set.
func NewFaceSet(ids []RegisteredIdentity, loadedAt time.Time) *FaceSet {
	cp := make([]RegisteredIdentity, len(ids))
	copy(cp, ids)
	return &FaceSet{identities: cp, loadedAt: loadedAt}
}

// Len returns the number of identities; a nil set is empty.
func (s *FaceSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.identities)
}

// At returns the i-th identity. Callers must not modify its encoding.
func (s *FaceSet) At(i int) *RegisteredIdentity {
	return &s.identities[i]
}

func (s *FaceSet) LoadedAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.loadedAt
}

// Box is a face region in frame coordinates.
type Box struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// RecognitionResult is the recognizer's verdict for one face in one frame.
// Identity is nil when the face did not match anyone confidently.
type RecognitionResult struct {
	Region        Box
	Identity      *RegisteredIdentity
	Distance      float64
	ConfidenceGap float64
}

// Frame is one image pulled from the camera. Data is not modified once the
// frame has been handed out.
type Frame struct {
	Data      []byte
	Width     int
	Height    int
	Timestamp time.Time
	Seq       uint64
}
