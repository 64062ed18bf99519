package service

import (
	"context"

	"motion_security/internal/models"
)

// IdentityService exposes the recognition cache to the API.
type IdentityService struct {
	cache *RecognitionCache
}

func NewIdentityService(cache *RecognitionCache) *IdentityService {
	return &IdentityService{cache: cache}
}

// List returns the identities of the current snapshot without encodings.
func (s *IdentityService) List(ctx context.Context) []models.RegisteredIdentity {
	set := s.cache.Current()
	out := make([]models.RegisteredIdentity, 0, set.Len())
	for i := 0; i < set.Len(); i++ {
		id := set.At(i)
		out = append(out, models.RegisteredIdentity{Name: id.Name, PreferredColor: id.PreferredColor})
	}
	return out
}

// Reload forces a cache refresh and returns the resulting size.
func (s *IdentityService) Reload(ctx context.Context) (int, error) {
	set, err := s.cache.Load(ctx)
	return set.Len(), err
}
