package ancestry

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Resolver walks fixed parent chains. Each origin level registers its
// ordered hop list exactly once at wiring time; null and deleted
// handling live here instead of being repeated per entity type.
type Resolver struct {
	mu       sync.RWMutex
	fetchers map[Level]Fetcher
	chains   map[Level][]Level
}

func New() *Resolver {
	return &Resolver{
		fetchers: make(map[Level]Fetcher),
		chains:   make(map[Level][]Level),
	}
}

// RegisterFetcher binds the lookup for one level.
func (r *Resolver) RegisterFetcher(level Level, f Fetcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetchers[level] = f
}

// RegisterChain binds the ordered hop list for an origin level, from
// the origin's direct parent up to the root.
func (r *Resolver) RegisterChain(origin Level, hops ...Level) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chains[origin] = hops
}

// Walk resolves the ancestor of origin at the target level.
//
// Each hop is a fresh read of current state; the walk holds no locks
// across hops. Under a concurrent reparent the returned path may be
// consistent with no single point in time. That relaxed consistency is
// the documented contract, not a bug.
//
// A never-assigned reference stops the walk with UnresolvedAt set. In
// Live mode the first soft-deleted ancestor does the same. A reference
// whose row cannot be found is returned as *IntegrityError.
func (r *Resolver) Walk(ctx context.Context, origin Node, target Level, mode Mode) (Result, error) {
	r.mu.RLock()
	hops, ok := r.chains[origin.AncestryLevel()]
	r.mu.RUnlock()
	if !ok {
		return Result{}, fmt.Errorf("ancestry: no chain registered for level %s", origin.AncestryLevel())
	}

	end := -1
	for i, lvl := range hops {
		if lvl == target {
			end = i
			break
		}
	}
	if end < 0 {
		return Result{}, fmt.Errorf("ancestry: level %s is not an ancestor of %s", target, origin.AncestryLevel())
	}

	var links []Link
	cur := origin
	for i, lvl := range hops[:end+1] {
		id, ok := cur.AncestryParent()
		if !ok {
			return Result{Links: links, UnresolvedAt: lvl}, nil
		}

		node, err := r.fetch(ctx, lvl, id)
		if err != nil {
			if errors.Is(err, ErrNodeNotFound) {
				return Result{Links: links}, &IntegrityError{Hop: lvl, Index: i, ID: id, Err: err}
			}
			return Result{Links: links}, err
		}

		if mode == Live && node.AncestryDeleted() {
			return Result{Links: links, UnresolvedAt: lvl}, nil
		}

		links = append(links, Link{Level: lvl, ID: id, Node: node})
		cur = node
	}

	return Result{Links: links, Target: cur}, nil
}

func (r *Resolver) fetch(ctx context.Context, lvl Level, id string) (Node, error) {
	r.mu.RLock()
	f, ok := r.fetchers[lvl]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("ancestry: no fetcher registered for level %s", lvl)
	}
	return f(ctx, id)
}
