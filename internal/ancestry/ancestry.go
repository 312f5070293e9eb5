// Package ancestry resolves the fixed parent chains of the plant
// hierarchy. Entities store only their direct parent reference; every
// higher-level attribution (which Zone a Loss belongs to, which Plant a
// Cell sits in) is computed here on read, never cached.
package ancestry

import (
	"context"
	"errors"
	"fmt"
)

// Level identifies a position on a parent chain. The five hierarchy
// levels are joined by the event/personnel levels that anchor into
// them, plus the two attendance origins (a single Attendance record
// has two disjoint chains that must never merge).
type Level string

const (
	LevelPlant Level = "PLANT"
	LevelZone  Level = "ZONE"
	LevelLoop  Level = "LOOP"
	LevelLine  Level = "LINE"
	LevelCell  Level = "CELL"

	LevelShift      Level = "SHIFT"
	LevelProduction Level = "PRODUCTION"
	LevelLoss       Level = "LOSS"

	LevelMember     Level = "MEMBER"
	LevelTeamLeader Level = "TEAM_LEADER"
	LevelPlanner    Level = "PLANNER"
	LevelPlantAdmin Level = "PLANT_ADMIN"

	LevelAttendanceAssigned Level = "ATTENDANCE_ASSIGNED"
	LevelAttendanceWorking  Level = "ATTENDANCE_WORKING"
)

// Node is one step on a chain. AncestryParent returns the id of the
// next node up, or ok=false when the reference was never assigned.
type Node interface {
	AncestryLevel() Level
	AncestryParent() (id string, ok bool)
	AncestryDeleted() bool
}

// Fetcher loads the node of its level by id. Implementations return
// ErrNodeNotFound (possibly wrapped) when the row does not exist, so
// the resolver can distinguish corruption from storage failure.
type Fetcher func(ctx context.Context, id string) (Node, error)

// ErrNodeNotFound is returned by Fetchers for a missing row.
var ErrNodeNotFound = errors.New("ancestry: node not found")

// Mode selects how the walk treats soft-deleted ancestors.
type Mode int

const (
	// Raw keeps walking through deleted ancestors; they stay navigable
	// for historical attribution.
	Raw Mode = iota
	// Live stops at the first deleted ancestor and reports the chain
	// unresolved at that level.
	Live
)

// Link is one resolved hop, in walk order from the origin upward.
type Link struct {
	Level Level
	ID    string
	Node  Node
}

// Result is the outcome of a walk. Unresolved is a normal state, not
// an error: the chain legitimately ended before the target level.
type Result struct {
	Links        []Link
	Target       Node
	UnresolvedAt Level
}

func (r Result) Resolved() bool { return r.Target != nil }

// IntegrityError reports a mandatory reference that points at a row
// which does not exist. This indicates upstream corruption; the
// resolver only surfaces it, it does not diagnose or repair.
type IntegrityError struct {
	Hop   Level
	Index int
	ID    string
	Err   error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("ancestry: integrity violation at hop %d (%s): id %q not found", e.Index, e.Hop, e.ID)
}

func (e *IntegrityError) Unwrap() error { return e.Err }
