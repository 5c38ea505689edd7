package service

import (
	"context"

	"cinevault/internal/domain"
)

type AdminService struct {
	*base
}

// Counts возвращает число строк каждой сущности. includeDeleted учитывает мягко удаленные.
func (s *AdminService) Counts(ctx context.Context, includeDeleted bool) (map[domain.Entity]int, error) {
	out := make(map[domain.Entity]int, len(domain.Entities))
	for _, e := range domain.Entities {
		n, err := s.store.Count(ctx, e, includeDeleted)
		if err != nil {
			return nil, s.translate(ctx, "count "+string(e), err, storeMessages{})
		}
		out[e] = n
	}
	return out, nil
}
