package hierarchy

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"go-mes/internal/ancestry"
	"go-mes/internal/audit"
)

// Fetchers bridge the repository into the ancestry resolver. Walks read
// with IncludeDeleted: liveness handling is the resolver's job, and the
// raw walk needs deleted ancestors to stay navigable.

func PlantFetcher(repo Repository) ancestry.Fetcher {
	return func(ctx context.Context, id string) (ancestry.Node, error) {
		p, err := repo.FindPlantByID(ctx, id, audit.IncludeDeleted)
		return nodeOrNotFound(p, err)
	}
}

func ZoneFetcher(repo Repository) ancestry.Fetcher {
	return func(ctx context.Context, id string) (ancestry.Node, error) {
		z, err := repo.FindZoneByID(ctx, id, audit.IncludeDeleted)
		return nodeOrNotFound(z, err)
	}
}

func LoopFetcher(repo Repository) ancestry.Fetcher {
	return func(ctx context.Context, id string) (ancestry.Node, error) {
		lp, err := repo.FindLoopByID(ctx, id, audit.IncludeDeleted)
		return nodeOrNotFound(lp, err)
	}
}

func LineFetcher(repo Repository) ancestry.Fetcher {
	return func(ctx context.Context, id string) (ancestry.Node, error) {
		ln, err := repo.FindLineByID(ctx, id, audit.IncludeDeleted)
		return nodeOrNotFound(ln, err)
	}
}

func CellFetcher(repo Repository) ancestry.Fetcher {
	return func(ctx context.Context, id string) (ancestry.Node, error) {
		c, err := repo.FindCellByID(ctx, id, audit.IncludeDeleted)
		return nodeOrNotFound(c, err)
	}
}

func nodeOrNotFound(node ancestry.Node, err error) (ancestry.Node, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ancestry.ErrNodeNotFound
		}
		return nil, err
	}
	return node, nil
}

// RegisterChains wires the fixed hop lists for the five levels.
func RegisterChains(r *ancestry.Resolver, repo Repository) {
	r.RegisterFetcher(ancestry.LevelPlant, PlantFetcher(repo))
	r.RegisterFetcher(ancestry.LevelZone, ZoneFetcher(repo))
	r.RegisterFetcher(ancestry.LevelLoop, LoopFetcher(repo))
	r.RegisterFetcher(ancestry.LevelLine, LineFetcher(repo))
	r.RegisterFetcher(ancestry.LevelCell, CellFetcher(repo))

	r.RegisterChain(ancestry.LevelZone, ancestry.LevelPlant)
	r.RegisterChain(ancestry.LevelLoop, ancestry.LevelZone, ancestry.LevelPlant)
	r.RegisterChain(ancestry.LevelLine, ancestry.LevelLoop, ancestry.LevelZone, ancestry.LevelPlant)
	r.RegisterChain(ancestry.LevelCell, ancestry.LevelLine, ancestry.LevelLoop, ancestry.LevelZone, ancestry.LevelPlant)
}
