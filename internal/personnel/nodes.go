package personnel

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"go-mes/internal/ancestry"
	"go-mes/internal/audit"
)

func MemberFetcher(repo Repository) ancestry.Fetcher {
	return func(ctx context.Context, id string) (ancestry.Node, error) {
		m, err := repo.FindMemberByUserID(ctx, id, audit.IncludeDeleted)
		return nodeOrNotFound(m, err)
	}
}

func TeamLeaderFetcher(repo Repository) ancestry.Fetcher {
	return func(ctx context.Context, id string) (ancestry.Node, error) {
		t, err := repo.FindTeamLeaderByUserID(ctx, id, audit.IncludeDeleted)
		return nodeOrNotFound(t, err)
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

// RegisterChains wires the personnel chains. Member and TeamLeader are
// also hop levels for the event graph, so their fetchers register here.
func RegisterChains(r *ancestry.Resolver, repo Repository) {
	r.RegisterFetcher(ancestry.LevelMember, MemberFetcher(repo))
	r.RegisterFetcher(ancestry.LevelTeamLeader, TeamLeaderFetcher(repo))

	r.RegisterChain(ancestry.LevelMember,
		ancestry.LevelCell, ancestry.LevelLine, ancestry.LevelLoop, ancestry.LevelZone, ancestry.LevelPlant)
	r.RegisterChain(ancestry.LevelTeamLeader,
		ancestry.LevelLine, ancestry.LevelLoop, ancestry.LevelZone, ancestry.LevelPlant)
	r.RegisterChain(ancestry.LevelPlanner, ancestry.LevelPlant)
	r.RegisterChain(ancestry.LevelPlantAdmin, ancestry.LevelPlant)
}
