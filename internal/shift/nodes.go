package shift

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"go-mes/internal/ancestry"
	"go-mes/internal/audit"
)

func ShiftFetcher(repo Repository) ancestry.Fetcher {
	return func(ctx context.Context, id string) (ancestry.Node, error) {
		sh, err := repo.FindByID(ctx, id, audit.IncludeDeleted)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ancestry.ErrNodeNotFound
			}
			return nil, err
		}
		return sh, nil
	}
}

// RegisterChains wires the shift chain. Shifts hang directly off a
// plant, so the walk is a single hop.
func RegisterChains(r *ancestry.Resolver, repo Repository) {
	r.RegisterFetcher(ancestry.LevelShift, ShiftFetcher(repo))
	r.RegisterChain(ancestry.LevelShift, ancestry.LevelPlant)
}
