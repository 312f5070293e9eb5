package hierarchy

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"go-mes/internal/ancestry"
	"go-mes/internal/audit"
	"go-mes/internal/events"
	hierarchyerrors "go-mes/internal/hierarchy/errors"
	"go-mes/internal/messaging/kafka"
	"go-mes/internal/shared/apperror"
	"go-mes/internal/shared/contextutil"
)

// PlantOptionsKey caches the live plant list; the lifecycle consumer
// drops it whenever a plant changes.
const PlantOptionsKey = "hierarchy:options:plants"

type Service interface {
	CreatePlant(ctx context.Context, req CreatePlantRequest) (NodeResponse, error)
	CreateZone(ctx context.Context, req CreateNodeRequest) (NodeResponse, error)
	CreateLoop(ctx context.Context, req CreateNodeRequest) (NodeResponse, error)
	CreateLine(ctx context.Context, req CreateNodeRequest) (NodeResponse, error)
	CreateCell(ctx context.Context, req CreateNodeRequest) (NodeResponse, error)

	Rename(ctx context.Context, level, id string, req RenameRequest) (NodeResponse, error)
	Reparent(ctx context.Context, level, id string, req ReparentRequest) (NodeResponse, error)
	SoftDelete(ctx context.Context, level, id string) error
	Get(ctx context.Context, level, id string, liveness audit.Liveness) (NodeResponse, error)
	ListPlants(ctx context.Context, liveness audit.Liveness) ([]NodeResponse, error)
	ListChildren(ctx context.Context, level, parentID string, liveness audit.Liveness) ([]NodeResponse, error)
	Resolve(ctx context.Context, level, id, target string, mode ancestry.Mode) (ancestry.ResultView, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	outbox   kafka.OutboxRepository
	resolver *ancestry.Resolver
	clock    audit.Clock
	rdb      *redis.Client
	sf       *singleflight.Group
	logger   *zap.Logger
}

func NewService(db *sql.DB, repo Repository, resolver *ancestry.Resolver, clock audit.Clock) Service {
	return NewServiceWithOutbox(db, repo, resolver, clock, nil, nil)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	resolver *ancestry.Resolver,
	clock audit.Clock,
	outboxRepo kafka.OutboxRepository,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("hierarchy.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("hierarchy.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		outbox:   outboxRepo,
		resolver: resolver,
		clock:    clock,
		rdb:      rdb,
		sf:       &singleflight.Group{},
		logger:   l,
	}
}

// ParseLevel maps the path segment onto a hierarchy level.
func ParseLevel(s string) (ancestry.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PLANT", "PLANTS":
		return ancestry.LevelPlant, nil
	case "ZONE", "ZONES":
		return ancestry.LevelZone, nil
	case "LOOP", "LOOPS":
		return ancestry.LevelLoop, nil
	case "LINE", "LINES":
		return ancestry.LevelLine, nil
	case "CELL", "CELLS":
		return ancestry.LevelCell, nil
	default:
		return "", hierarchyerrors.ErrUnknownLevel
	}
}

func (s *service) CreatePlant(ctx context.Context, req CreatePlantRequest) (NodeResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return NodeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := s.clock.Now()

	p := &Plant{
		ID:     uuid.New(),
		Name:   req.Name,
		Fields: audit.NewFields(now),
	}
	if err := qtx.CreatePlant(ctx, p); err != nil {
		return NodeResponse{}, err
	}

	if err := s.emit(ctx, tx, events.HierarchyNodeCreated, ancestry.LevelPlant, p.ID.String(), p.Name, "", now); err != nil {
		return NodeResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return NodeResponse{}, err
	}
	return plantResponse(*p), nil
}

func (s *service) CreateZone(ctx context.Context, req CreateNodeRequest) (NodeResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return NodeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := s.clock.Now()

	parentID, err := s.liveParent(func() error {
		_, err := qtx.FindPlantByID(ctx, req.ParentID, audit.LiveOnly)
		return err
	}, req.ParentID)
	if err != nil {
		return NodeResponse{}, err
	}

	z := &Zone{
		ID:      uuid.New(),
		Name:    req.Name,
		PlantID: parentID,
		Fields:  audit.NewFields(now),
	}
	if err := qtx.CreateZone(ctx, z); err != nil {
		return NodeResponse{}, err
	}

	if err := s.emit(ctx, tx, events.HierarchyNodeCreated, ancestry.LevelZone, z.ID.String(), z.Name, req.ParentID, now); err != nil {
		return NodeResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return NodeResponse{}, err
	}
	return zoneResponse(*z), nil
}

func (s *service) CreateLoop(ctx context.Context, req CreateNodeRequest) (NodeResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return NodeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := s.clock.Now()

	parentID, err := s.liveParent(func() error {
		_, err := qtx.FindZoneByID(ctx, req.ParentID, audit.LiveOnly)
		return err
	}, req.ParentID)
	if err != nil {
		return NodeResponse{}, err
	}

	lp := &Loop{
		ID:     uuid.New(),
		Name:   req.Name,
		ZoneID: parentID,
		Fields: audit.NewFields(now),
	}
	if err := qtx.CreateLoop(ctx, lp); err != nil {
		return NodeResponse{}, err
	}

	if err := s.emit(ctx, tx, events.HierarchyNodeCreated, ancestry.LevelLoop, lp.ID.String(), lp.Name, req.ParentID, now); err != nil {
		return NodeResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return NodeResponse{}, err
	}
	return loopResponse(*lp), nil
}

func (s *service) CreateLine(ctx context.Context, req CreateNodeRequest) (NodeResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return NodeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := s.clock.Now()

	parentID, err := s.liveParent(func() error {
		_, err := qtx.FindLoopByID(ctx, req.ParentID, audit.LiveOnly)
		return err
	}, req.ParentID)
	if err != nil {
		return NodeResponse{}, err
	}

	ln := &Line{
		ID:     uuid.New(),
		Name:   req.Name,
		LoopID: parentID,
		Fields: audit.NewFields(now),
	}
	if err := qtx.CreateLine(ctx, ln); err != nil {
		return NodeResponse{}, err
	}

	if err := s.emit(ctx, tx, events.HierarchyNodeCreated, ancestry.LevelLine, ln.ID.String(), ln.Name, req.ParentID, now); err != nil {
		return NodeResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return NodeResponse{}, err
	}
	return lineResponse(*ln), nil
}

func (s *service) CreateCell(ctx context.Context, req CreateNodeRequest) (NodeResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return NodeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := s.clock.Now()

	parentID, err := s.liveParent(func() error {
		_, err := qtx.FindLineByID(ctx, req.ParentID, audit.LiveOnly)
		return err
	}, req.ParentID)
	if err != nil {
		return NodeResponse{}, err
	}

	c := &Cell{
		ID:     uuid.New(),
		Name:   req.Name,
		LineID: parentID,
		Fields: audit.NewFields(now),
	}
	if err := qtx.CreateCell(ctx, c); err != nil {
		return NodeResponse{}, err
	}

	if err := s.emit(ctx, tx, events.HierarchyNodeCreated, ancestry.LevelCell, c.ID.String(), c.Name, req.ParentID, now); err != nil {
		return NodeResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return NodeResponse{}, err
	}
	return cellResponse(*c), nil
}

// liveParent enforces the create-time contract: the parent must exist
// and be live. Reparenting is deliberately looser, see Reparent.
func (s *service) liveParent(find func() error, raw string) (*uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperror.Validation("parent_id is not a valid id")
	}
	if err := find(); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, hierarchyerrors.ErrParentNotFound
		}
		return nil, err
	}
	return &id, nil
}

func (s *service) Rename(ctx context.Context, level, id string, req RenameRequest) (NodeResponse, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return NodeResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return NodeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := s.clock.Now()

	var resp NodeResponse
	switch lvl {
	case ancestry.LevelPlant:
		p, err := qtx.FindPlantByID(ctx, id, audit.IncludeDeleted)
		if err != nil {
			return NodeResponse{}, notFound(err)
		}
		p.Name = req.Name
		p.Touch(now)
		if err := qtx.UpdatePlant(ctx, p); err != nil {
			return NodeResponse{}, err
		}
		resp = plantResponse(*p)
	case ancestry.LevelZone:
		z, err := qtx.FindZoneByID(ctx, id, audit.IncludeDeleted)
		if err != nil {
			return NodeResponse{}, notFound(err)
		}
		z.Name = req.Name
		z.Touch(now)
		if err := qtx.UpdateZone(ctx, z); err != nil {
			return NodeResponse{}, err
		}
		resp = zoneResponse(*z)
	case ancestry.LevelLoop:
		lp, err := qtx.FindLoopByID(ctx, id, audit.IncludeDeleted)
		if err != nil {
			return NodeResponse{}, notFound(err)
		}
		lp.Name = req.Name
		lp.Touch(now)
		if err := qtx.UpdateLoop(ctx, lp); err != nil {
			return NodeResponse{}, err
		}
		resp = loopResponse(*lp)
	case ancestry.LevelLine:
		ln, err := qtx.FindLineByID(ctx, id, audit.IncludeDeleted)
		if err != nil {
			return NodeResponse{}, notFound(err)
		}
		ln.Name = req.Name
		ln.Touch(now)
		if err := qtx.UpdateLine(ctx, ln); err != nil {
			return NodeResponse{}, err
		}
		resp = lineResponse(*ln)
	case ancestry.LevelCell:
		c, err := qtx.FindCellByID(ctx, id, audit.IncludeDeleted)
		if err != nil {
			return NodeResponse{}, notFound(err)
		}
		c.Name = req.Name
		c.Touch(now)
		if err := qtx.UpdateCell(ctx, c); err != nil {
			return NodeResponse{}, err
		}
		resp = cellResponse(*c)
	}

	if err := s.emit(ctx, tx, events.HierarchyNodeRenamed, lvl, id, req.Name, "", now); err != nil {
		return NodeResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return NodeResponse{}, err
	}
	return resp, nil
}

// Reparent moves a node under a new parent. The new parent must exist
// but may be soft-deleted: historical reorganizations keep resolvable
// context, and the live walk reports the deletion instead.
func (s *service) Reparent(ctx context.Context, level, id string, req ReparentRequest) (NodeResponse, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return NodeResponse{}, err
	}
	if lvl == ancestry.LevelPlant {
		return NodeResponse{}, apperror.Validation("a plant is the hierarchy root and has no parent")
	}

	newParent, err := uuid.Parse(req.ParentID)
	if err != nil {
		return NodeResponse{}, apperror.Validation("parent_id is not a valid id")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return NodeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := s.clock.Now()

	var resp NodeResponse
	switch lvl {
	case ancestry.LevelZone:
		if _, err := qtx.FindPlantByID(ctx, req.ParentID, audit.IncludeDeleted); err != nil {
			return NodeResponse{}, parentMissing(err)
		}
		z, err := qtx.FindZoneByID(ctx, id, audit.IncludeDeleted)
		if err != nil {
			return NodeResponse{}, notFound(err)
		}
		z.PlantID = &newParent
		z.Touch(now)
		if err := qtx.UpdateZone(ctx, z); err != nil {
			return NodeResponse{}, err
		}
		resp = zoneResponse(*z)
	case ancestry.LevelLoop:
		if _, err := qtx.FindZoneByID(ctx, req.ParentID, audit.IncludeDeleted); err != nil {
			return NodeResponse{}, parentMissing(err)
		}
		lp, err := qtx.FindLoopByID(ctx, id, audit.IncludeDeleted)
		if err != nil {
			return NodeResponse{}, notFound(err)
		}
		lp.ZoneID = &newParent
		lp.Touch(now)
		if err := qtx.UpdateLoop(ctx, lp); err != nil {
			return NodeResponse{}, err
		}
		resp = loopResponse(*lp)
	case ancestry.LevelLine:
		if _, err := qtx.FindLoopByID(ctx, req.ParentID, audit.IncludeDeleted); err != nil {
			return NodeResponse{}, parentMissing(err)
		}
		ln, err := qtx.FindLineByID(ctx, id, audit.IncludeDeleted)
		if err != nil {
			return NodeResponse{}, notFound(err)
		}
		ln.LoopID = &newParent
		ln.Touch(now)
		if err := qtx.UpdateLine(ctx, ln); err != nil {
			return NodeResponse{}, err
		}
		resp = lineResponse(*ln)
	case ancestry.LevelCell:
		if _, err := qtx.FindLineByID(ctx, req.ParentID, audit.IncludeDeleted); err != nil {
			return NodeResponse{}, parentMissing(err)
		}
		c, err := qtx.FindCellByID(ctx, id, audit.IncludeDeleted)
		if err != nil {
			return NodeResponse{}, notFound(err)
		}
		c.LineID = &newParent
		c.Touch(now)
		if err := qtx.UpdateCell(ctx, c); err != nil {
			return NodeResponse{}, err
		}
		resp = cellResponse(*c)
	}

	if err := s.emit(ctx, tx, events.HierarchyNodeReparented, lvl, id, "", req.ParentID, now); err != nil {
		return NodeResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return NodeResponse{}, err
	}
	return resp, nil
}

// SoftDelete marks the node deleted. Repeat deletion is a no-op
// success; descendants are left untouched on purpose — cascading is a
// caller decision, never automatic.
func (s *service) SoftDelete(ctx context.Context, level, id string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := s.clock.Now()

	var alreadyDeleted bool
	switch lvl {
	case ancestry.LevelPlant:
		p, err := qtx.FindPlantByID(ctx, id, audit.IncludeDeleted)
		if err != nil {
			return notFound(err)
		}
		alreadyDeleted = p.IsDeleted
		p.SoftDelete(now)
		if !alreadyDeleted {
			if err := qtx.UpdatePlant(ctx, p); err != nil {
				return err
			}
		}
	case ancestry.LevelZone:
		z, err := qtx.FindZoneByID(ctx, id, audit.IncludeDeleted)
		if err != nil {
			return notFound(err)
		}
		alreadyDeleted = z.IsDeleted
		z.SoftDelete(now)
		if !alreadyDeleted {
			if err := qtx.UpdateZone(ctx, z); err != nil {
				return err
			}
		}
	case ancestry.LevelLoop:
		lp, err := qtx.FindLoopByID(ctx, id, audit.IncludeDeleted)
		if err != nil {
			return notFound(err)
		}
		alreadyDeleted = lp.IsDeleted
		lp.SoftDelete(now)
		if !alreadyDeleted {
			if err := qtx.UpdateLoop(ctx, lp); err != nil {
				return err
			}
		}
	case ancestry.LevelLine:
		ln, err := qtx.FindLineByID(ctx, id, audit.IncludeDeleted)
		if err != nil {
			return notFound(err)
		}
		alreadyDeleted = ln.IsDeleted
		ln.SoftDelete(now)
		if !alreadyDeleted {
			if err := qtx.UpdateLine(ctx, ln); err != nil {
				return err
			}
		}
	case ancestry.LevelCell:
		c, err := qtx.FindCellByID(ctx, id, audit.IncludeDeleted)
		if err != nil {
			return notFound(err)
		}
		alreadyDeleted = c.IsDeleted
		c.SoftDelete(now)
		if !alreadyDeleted {
			if err := qtx.UpdateCell(ctx, c); err != nil {
				return err
			}
		}
	}

	if alreadyDeleted {
		s.logger.Debug("soft delete no-op, node already deleted",
			zap.String("level", string(lvl)),
			zap.String("node_id", id),
		)
		return tx.Commit()
	}

	if err := s.emit(ctx, tx, events.HierarchyNodeSoftDeleted, lvl, id, "", "", now); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *service) Get(ctx context.Context, level, id string, liveness audit.Liveness) (NodeResponse, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return NodeResponse{}, err
	}

	switch lvl {
	case ancestry.LevelPlant:
		p, err := s.repo.FindPlantByID(ctx, id, liveness)
		if err != nil {
			return NodeResponse{}, notFound(err)
		}
		return plantResponse(*p), nil
	case ancestry.LevelZone:
		z, err := s.repo.FindZoneByID(ctx, id, liveness)
		if err != nil {
			return NodeResponse{}, notFound(err)
		}
		return zoneResponse(*z), nil
	case ancestry.LevelLoop:
		lp, err := s.repo.FindLoopByID(ctx, id, liveness)
		if err != nil {
			return NodeResponse{}, notFound(err)
		}
		return loopResponse(*lp), nil
	case ancestry.LevelLine:
		ln, err := s.repo.FindLineByID(ctx, id, liveness)
		if err != nil {
			return NodeResponse{}, notFound(err)
		}
		return lineResponse(*ln), nil
	default:
		c, err := s.repo.FindCellByID(ctx, id, liveness)
		if err != nil {
			return NodeResponse{}, notFound(err)
		}
		return cellResponse(*c), nil
	}
}

// ListPlants serves the live plant list from cache; a cold key
// collapses concurrent reads into one DB query via singleflight. The
// include-deleted variant always hits the DB.
func (s *service) ListPlants(ctx context.Context, liveness audit.Liveness) ([]NodeResponse, error) {
	if liveness == audit.IncludeDeleted {
		return s.listPlantsFromDB(ctx, liveness)
	}

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, PlantOptionsKey).Result(); err == nil {
			var resp []NodeResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(PlantOptionsKey, func() (interface{}, error) {
		resp, err := s.listPlantsFromDB(ctx, audit.LiveOnly)
		if err != nil {
			return nil, err
		}
		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, PlantOptionsKey, jsonData, 1*time.Hour)
			}
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]NodeResponse), nil
}

func (s *service) listPlantsFromDB(ctx context.Context, liveness audit.Liveness) ([]NodeResponse, error) {
	plants, err := s.repo.ListPlants(ctx, liveness)
	if err != nil {
		return nil, err
	}
	res := make([]NodeResponse, len(plants))
	for i, p := range plants {
		res[i] = plantResponse(p)
	}
	return res, nil
}

// ListChildren lists nodes of the given level directly under parentID.
func (s *service) ListChildren(ctx context.Context, level, parentID string, liveness audit.Liveness) ([]NodeResponse, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	switch lvl {
	case ancestry.LevelZone:
		rows, err := s.repo.ListZonesByPlant(ctx, parentID, liveness)
		if err != nil {
			return nil, err
		}
		res := make([]NodeResponse, len(rows))
		for i, z := range rows {
			res[i] = zoneResponse(z)
		}
		return res, nil
	case ancestry.LevelLoop:
		rows, err := s.repo.ListLoopsByZone(ctx, parentID, liveness)
		if err != nil {
			return nil, err
		}
		res := make([]NodeResponse, len(rows))
		for i, lp := range rows {
			res[i] = loopResponse(lp)
		}
		return res, nil
	case ancestry.LevelLine:
		rows, err := s.repo.ListLinesByLoop(ctx, parentID, liveness)
		if err != nil {
			return nil, err
		}
		res := make([]NodeResponse, len(rows))
		for i, ln := range rows {
			res[i] = lineResponse(ln)
		}
		return res, nil
	case ancestry.LevelCell:
		rows, err := s.repo.ListCellsByLine(ctx, parentID, liveness)
		if err != nil {
			return nil, err
		}
		res := make([]NodeResponse, len(rows))
		for i, c := range rows {
			res[i] = cellResponse(c)
		}
		return res, nil
	default:
		return nil, apperror.Validation("plants have no parent to list under")
	}
}

// Resolve walks the origin's ancestor chain. The origin is loaded with
// IncludeDeleted so historical records stay attributable.
func (s *service) Resolve(ctx context.Context, level, id, target string, mode ancestry.Mode) (ancestry.ResultView, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return ancestry.ResultView{}, err
	}
	targetLvl, err := ParseLevel(target)
	if err != nil {
		return ancestry.ResultView{}, err
	}

	var origin ancestry.Node
	switch lvl {
	case ancestry.LevelPlant:
		p, ferr := s.repo.FindPlantByID(ctx, id, audit.IncludeDeleted)
		if ferr != nil {
			return ancestry.ResultView{}, notFound(ferr)
		}
		origin = p
	case ancestry.LevelZone:
		z, ferr := s.repo.FindZoneByID(ctx, id, audit.IncludeDeleted)
		if ferr != nil {
			return ancestry.ResultView{}, notFound(ferr)
		}
		origin = z
	case ancestry.LevelLoop:
		lp, ferr := s.repo.FindLoopByID(ctx, id, audit.IncludeDeleted)
		if ferr != nil {
			return ancestry.ResultView{}, notFound(ferr)
		}
		origin = lp
	case ancestry.LevelLine:
		ln, ferr := s.repo.FindLineByID(ctx, id, audit.IncludeDeleted)
		if ferr != nil {
			return ancestry.ResultView{}, notFound(ferr)
		}
		origin = ln
	default:
		c, ferr := s.repo.FindCellByID(ctx, id, audit.IncludeDeleted)
		if ferr != nil {
			return ancestry.ResultView{}, notFound(ferr)
		}
		origin = c
	}

	res, err := s.resolver.Walk(ctx, origin, targetLvl, mode)
	if err != nil {
		return ancestry.ResultView{}, MapResolveError(err)
	}
	return ancestry.ViewOf(res), nil
}

// MapResolveError converts resolver failures into the API taxonomy.
func MapResolveError(err error) error {
	var integrity *ancestry.IntegrityError
	if errors.As(err, &integrity) {
		return apperror.Wrap(err,
			apperror.CodeIntegrityViolation,
			"Mandatory reference broken at "+string(integrity.Hop),
			500,
		)
	}
	return err
}

func (s *service) emit(
	ctx context.Context,
	tx *sql.Tx,
	eventType string,
	level ancestry.Level,
	nodeID, name, parentID string,
	now time.Time,
) error {
	if s.outbox == nil {
		return nil
	}

	payload, err := json.Marshal(events.HierarchyNodeEvent{
		EventType:  eventType,
		Level:      string(level),
		NodeID:     nodeID,
		Name:       name,
		ParentID:   parentID,
		OccurredAt: now,
	})
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "hierarchy_node",
		AggregateID:   nodeID,
		EventType:     eventType,
		Topic:         events.HierarchyLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return hierarchyerrors.ErrNodeNotFound
	}
	return err
}

func parentMissing(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return hierarchyerrors.ErrParentNotFound
	}
	return err
}

func plantResponse(p Plant) NodeResponse {
	return nodeResponse(p.ID.String(), ancestry.LevelPlant, p.Name, nil, p.Fields)
}

func zoneResponse(z Zone) NodeResponse {
	return nodeResponse(z.ID.String(), ancestry.LevelZone, z.Name, z.PlantID, z.Fields)
}

func loopResponse(lp Loop) NodeResponse {
	return nodeResponse(lp.ID.String(), ancestry.LevelLoop, lp.Name, lp.ZoneID, lp.Fields)
}

func lineResponse(ln Line) NodeResponse {
	return nodeResponse(ln.ID.String(), ancestry.LevelLine, ln.Name, ln.LoopID, ln.Fields)
}

func cellResponse(c Cell) NodeResponse {
	return nodeResponse(c.ID.String(), ancestry.LevelCell, c.Name, c.LineID, c.Fields)
}

func nodeResponse(id string, level ancestry.Level, name string, parent *uuid.UUID, f audit.Fields) NodeResponse {
	resp := NodeResponse{
		ID:        id,
		Level:     string(level),
		Name:      name,
		IsDeleted: f.IsDeleted,
		CreatedAt: f.CreatedAt.Format(time.RFC3339),
		UpdatedAt: f.UpdatedAt.Format(time.RFC3339),
	}
	if parent != nil {
		v := parent.String()
		resp.ParentID = &v
	}
	if f.DeletedAt != nil {
		v := f.DeletedAt.Format(time.RFC3339)
		resp.DeletedAt = &v
	}
	return resp
}
