package production

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"go-mes/internal/ancestry"
	"go-mes/internal/audit"
)

func ProductionFetcher(repo Repository) ancestry.Fetcher {
	return func(ctx context.Context, id string) (ancestry.Node, error) {
		p, err := repo.FindByID(ctx, id, audit.IncludeDeleted)
		return nodeOrNotFound(p, err)
	}
}

func LossFetcher(repo Repository) ancestry.Fetcher {
	return func(ctx context.Context, id string) (ancestry.Node, error) {
		ls, err := repo.FindLossByID(ctx, id, audit.IncludeDeleted)
		return nodeOrNotFound(ls, err)
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

// RegisterChains wires the production side of the event graph. A Loss
// reaches the hierarchy through its Production, so Production is a hop
// level as well as an origin.
func RegisterChains(r *ancestry.Resolver, repo Repository) {
	r.RegisterFetcher(ancestry.LevelProduction, ProductionFetcher(repo))
	r.RegisterFetcher(ancestry.LevelLoss, LossFetcher(repo))

	r.RegisterChain(ancestry.LevelProduction,
		ancestry.LevelLine, ancestry.LevelLoop, ancestry.LevelZone, ancestry.LevelPlant)
	r.RegisterChain(ancestry.LevelLoss,
		ancestry.LevelProduction, ancestry.LevelLine, ancestry.LevelLoop, ancestry.LevelZone, ancestry.LevelPlant)
}
