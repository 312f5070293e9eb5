package hierarchy_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"go-mes/internal/ancestry"
	"go-mes/internal/audit"
	"go-mes/internal/hierarchy"
	hierarchyerrors "go-mes/internal/hierarchy/errors"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// fakeRepo keeps everything in maps; liveness filtering mirrors the
// gorm scope the real repository applies.
type fakeRepo struct {
	plants map[string]*hierarchy.Plant
	zones  map[string]*hierarchy.Zone
	loops  map[string]*hierarchy.Loop
	lines  map[string]*hierarchy.Line
	cells  map[string]*hierarchy.Cell

	zoneUpdates int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		plants: map[string]*hierarchy.Plant{},
		zones:  map[string]*hierarchy.Zone{},
		loops:  map[string]*hierarchy.Loop{},
		lines:  map[string]*hierarchy.Line{},
		cells:  map[string]*hierarchy.Cell{},
	}
}

func (r *fakeRepo) WithTx(tx *sql.Tx) hierarchy.Repository { return r }

func visible(deleted bool, l audit.Liveness) bool {
	return l == audit.IncludeDeleted || !deleted
}

func (r *fakeRepo) CreatePlant(_ context.Context, p *hierarchy.Plant) error {
	r.plants[p.ID.String()] = p
	return nil
}

func (r *fakeRepo) FindPlantByID(_ context.Context, id string, l audit.Liveness) (*hierarchy.Plant, error) {
	p, ok := r.plants[id]
	if !ok || !visible(p.IsDeleted, l) {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *fakeRepo) ListPlants(_ context.Context, l audit.Liveness) ([]hierarchy.Plant, error) {
	var out []hierarchy.Plant
	for _, p := range r.plants {
		if visible(p.IsDeleted, l) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeRepo) UpdatePlant(_ context.Context, p *hierarchy.Plant) error {
	r.plants[p.ID.String()] = p
	return nil
}

func (r *fakeRepo) CreateZone(_ context.Context, z *hierarchy.Zone) error {
	r.zones[z.ID.String()] = z
	return nil
}

func (r *fakeRepo) FindZoneByID(_ context.Context, id string, l audit.Liveness) (*hierarchy.Zone, error) {
	z, ok := r.zones[id]
	if !ok || !visible(z.IsDeleted, l) {
		return nil, gorm.ErrRecordNotFound
	}
	return z, nil
}

func (r *fakeRepo) ListZonesByPlant(_ context.Context, plantID string, l audit.Liveness) ([]hierarchy.Zone, error) {
	var out []hierarchy.Zone
	for _, z := range r.zones {
		if z.PlantID != nil && z.PlantID.String() == plantID && visible(z.IsDeleted, l) {
			out = append(out, *z)
		}
	}
	return out, nil
}

func (r *fakeRepo) UpdateZone(_ context.Context, z *hierarchy.Zone) error {
	r.zones[z.ID.String()] = z
	r.zoneUpdates++
	return nil
}

func (r *fakeRepo) CreateLoop(_ context.Context, lp *hierarchy.Loop) error {
	r.loops[lp.ID.String()] = lp
	return nil
}

func (r *fakeRepo) FindLoopByID(_ context.Context, id string, l audit.Liveness) (*hierarchy.Loop, error) {
	lp, ok := r.loops[id]
	if !ok || !visible(lp.IsDeleted, l) {
		return nil, gorm.ErrRecordNotFound
	}
	return lp, nil
}

func (r *fakeRepo) ListLoopsByZone(_ context.Context, zoneID string, l audit.Liveness) ([]hierarchy.Loop, error) {
	var out []hierarchy.Loop
	for _, lp := range r.loops {
		if lp.ZoneID != nil && lp.ZoneID.String() == zoneID && visible(lp.IsDeleted, l) {
			out = append(out, *lp)
		}
	}
	return out, nil
}

func (r *fakeRepo) UpdateLoop(_ context.Context, lp *hierarchy.Loop) error {
	r.loops[lp.ID.String()] = lp
	return nil
}

func (r *fakeRepo) CreateLine(_ context.Context, ln *hierarchy.Line) error {
	r.lines[ln.ID.String()] = ln
	return nil
}

func (r *fakeRepo) FindLineByID(_ context.Context, id string, l audit.Liveness) (*hierarchy.Line, error) {
	ln, ok := r.lines[id]
	if !ok || !visible(ln.IsDeleted, l) {
		return nil, gorm.ErrRecordNotFound
	}
	return ln, nil
}

func (r *fakeRepo) ListLinesByLoop(_ context.Context, loopID string, l audit.Liveness) ([]hierarchy.Line, error) {
	var out []hierarchy.Line
	for _, ln := range r.lines {
		if ln.LoopID != nil && ln.LoopID.String() == loopID && visible(ln.IsDeleted, l) {
			out = append(out, *ln)
		}
	}
	return out, nil
}

func (r *fakeRepo) UpdateLine(_ context.Context, ln *hierarchy.Line) error {
	r.lines[ln.ID.String()] = ln
	return nil
}

func (r *fakeRepo) CreateCell(_ context.Context, c *hierarchy.Cell) error {
	r.cells[c.ID.String()] = c
	return nil
}

func (r *fakeRepo) FindCellByID(_ context.Context, id string, l audit.Liveness) (*hierarchy.Cell, error) {
	c, ok := r.cells[id]
	if !ok || !visible(c.IsDeleted, l) {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *fakeRepo) ListCellsByLine(_ context.Context, lineID string, l audit.Liveness) ([]hierarchy.Cell, error) {
	var out []hierarchy.Cell
	for _, c := range r.cells {
		if c.LineID != nil && c.LineID.String() == lineID && visible(c.IsDeleted, l) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeRepo) UpdateCell(_ context.Context, c *hierarchy.Cell) error {
	r.cells[c.ID.String()] = c
	return nil
}

type serviceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	repo    *fakeRepo
	service hierarchy.Service
	now     time.Time
}

func setupServiceTest(t *testing.T) *serviceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := newFakeRepo()
	resolver := ancestry.New()
	hierarchy.RegisterChains(resolver, repo)

	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	svc := hierarchy.NewService(db, repo, resolver, fixedClock{now})

	return &serviceDeps{db: db, sqlMock: sqlMock, repo: repo, service: svc, now: now}
}

func (d *serviceDeps) seedPlant(name string) *hierarchy.Plant {
	p := &hierarchy.Plant{ID: uuid.New(), Name: name, Fields: audit.NewFields(d.now)}
	d.repo.plants[p.ID.String()] = p
	return p
}

func (d *serviceDeps) seedZone(name string, plantID uuid.UUID) *hierarchy.Zone {
	z := &hierarchy.Zone{ID: uuid.New(), Name: name, PlantID: &plantID, Fields: audit.NewFields(d.now)}
	d.repo.zones[z.ID.String()] = z
	return z
}

func TestHierarchyService_CreateZone(t *testing.T) {
	ctx := context.Background()

	t.Run("success under live plant", func(t *testing.T) {
		deps := setupServiceTest(t)
		plant := deps.seedPlant("P1")

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		resp, err := deps.service.CreateZone(ctx, hierarchy.CreateNodeRequest{
			Name:     "Z1",
			ParentID: plant.ID.String(),
		})

		assert.NoError(t, err)
		assert.Equal(t, "ZONE", resp.Level)
		require.NotNil(t, resp.ParentID)
		assert.Equal(t, plant.ID.String(), *resp.ParentID)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("missing parent is rejected", func(t *testing.T) {
		deps := setupServiceTest(t)

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.CreateZone(ctx, hierarchy.CreateNodeRequest{
			Name:     "Z1",
			ParentID: uuid.New().String(),
		})

		assert.ErrorIs(t, err, hierarchyerrors.ErrParentNotFound)
	})

	t.Run("deleted parent is rejected", func(t *testing.T) {
		deps := setupServiceTest(t)
		plant := deps.seedPlant("P1")
		plant.SoftDelete(deps.now)

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.CreateZone(ctx, hierarchy.CreateNodeRequest{
			Name:     "Z1",
			ParentID: plant.ID.String(),
		})

		assert.ErrorIs(t, err, hierarchyerrors.ErrParentNotFound)
	})
}

func TestHierarchyService_Reparent(t *testing.T) {
	ctx := context.Background()

	t.Run("moves zone under new plant", func(t *testing.T) {
		deps := setupServiceTest(t)
		p1 := deps.seedPlant("P1")
		p2 := deps.seedPlant("P2")
		z := deps.seedZone("Z1", p1.ID)

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		resp, err := deps.service.Reparent(ctx, "zone", z.ID.String(), hierarchy.ReparentRequest{
			ParentID: p2.ID.String(),
		})

		assert.NoError(t, err)
		require.NotNil(t, resp.ParentID)
		assert.Equal(t, p2.ID.String(), *resp.ParentID)
	})

	t.Run("deleted target parent is allowed", func(t *testing.T) {
		deps := setupServiceTest(t)
		p1 := deps.seedPlant("P1")
		p2 := deps.seedPlant("P2")
		p2.SoftDelete(deps.now)
		z := deps.seedZone("Z1", p1.ID)

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		resp, err := deps.service.Reparent(ctx, "zone", z.ID.String(), hierarchy.ReparentRequest{
			ParentID: p2.ID.String(),
		})

		assert.NoError(t, err)
		require.NotNil(t, resp.ParentID)
		assert.Equal(t, p2.ID.String(), *resp.ParentID)
	})

	t.Run("absent target parent is rejected", func(t *testing.T) {
		deps := setupServiceTest(t)
		p1 := deps.seedPlant("P1")
		z := deps.seedZone("Z1", p1.ID)

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.Reparent(ctx, "zone", z.ID.String(), hierarchy.ReparentRequest{
			ParentID: uuid.New().String(),
		})

		assert.ErrorIs(t, err, hierarchyerrors.ErrParentNotFound)
	})

	t.Run("plant has no parent", func(t *testing.T) {
		deps := setupServiceTest(t)
		p1 := deps.seedPlant("P1")

		_, err := deps.service.Reparent(ctx, "plant", p1.ID.String(), hierarchy.ReparentRequest{
			ParentID: uuid.New().String(),
		})

		assert.Error(t, err)
	})
}

func TestHierarchyService_SoftDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("idempotent", func(t *testing.T) {
		deps := setupServiceTest(t)
		p1 := deps.seedPlant("P1")
		z := deps.seedZone("Z1", p1.ID)

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()
		require.NoError(t, deps.service.SoftDelete(ctx, "zone", z.ID.String()))

		firstDeletedAt := deps.repo.zones[z.ID.String()].DeletedAt
		require.NotNil(t, firstDeletedAt)
		updatesAfterFirst := deps.repo.zoneUpdates

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()
		require.NoError(t, deps.service.SoftDelete(ctx, "zone", z.ID.String()))

		assert.Equal(t, updatesAfterFirst, deps.repo.zoneUpdates, "second delete must not write")
		assert.Equal(t, firstDeletedAt, deps.repo.zones[z.ID.String()].DeletedAt)
	})

	t.Run("unknown node", func(t *testing.T) {
		deps := setupServiceTest(t)

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		err := deps.service.SoftDelete(ctx, "zone", uuid.New().String())
		assert.ErrorIs(t, err, hierarchyerrors.ErrNodeNotFound)
	})
}

func TestHierarchyService_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("zone resolves to plant", func(t *testing.T) {
		deps := setupServiceTest(t)
		p1 := deps.seedPlant("P1")
		z := deps.seedZone("Z1", p1.ID)

		view, err := deps.service.Resolve(ctx, "zone", z.ID.String(), "plant", ancestry.Live)

		assert.NoError(t, err)
		assert.True(t, view.Resolved)
		require.NotNil(t, view.Target)
		assert.Equal(t, p1.ID.String(), view.Target.ID)
	})

	t.Run("live walk stops at deleted plant", func(t *testing.T) {
		deps := setupServiceTest(t)
		p1 := deps.seedPlant("P1")
		z := deps.seedZone("Z1", p1.ID)
		p1.SoftDelete(deps.now)

		view, err := deps.service.Resolve(ctx, "zone", z.ID.String(), "plant", ancestry.Live)

		assert.NoError(t, err)
		assert.False(t, view.Resolved)
		assert.Equal(t, "PLANT", view.UnresolvedAt)
	})

	t.Run("raw walk keeps the deleted plant", func(t *testing.T) {
		deps := setupServiceTest(t)
		p1 := deps.seedPlant("P1")
		z := deps.seedZone("Z1", p1.ID)
		p1.SoftDelete(deps.now)

		view, err := deps.service.Resolve(ctx, "zone", z.ID.String(), "plant", ancestry.Raw)

		assert.NoError(t, err)
		assert.True(t, view.Resolved)
		require.NotNil(t, view.Target)
		assert.Equal(t, p1.ID.String(), view.Target.ID)
	})

	t.Run("unknown level", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.Resolve(ctx, "warehouse", uuid.New().String(), "plant", ancestry.Live)
		assert.ErrorIs(t, err, hierarchyerrors.ErrUnknownLevel)
	})
}
