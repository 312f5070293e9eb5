package personnel_test

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
	"go-mes/internal/personnel"
	personnelerrors "go-mes/internal/personnel/errors"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fakeRepo struct {
	users       map[string]*personnel.User
	admins      map[string]*personnel.Admin
	plantAdmins map[string]*personnel.PlantAdmin
	planners    map[string]*personnel.Planner
	teamLeaders map[string]*personnel.TeamLeader
	members     map[string]*personnel.Member
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:       map[string]*personnel.User{},
		admins:      map[string]*personnel.Admin{},
		plantAdmins: map[string]*personnel.PlantAdmin{},
		planners:    map[string]*personnel.Planner{},
		teamLeaders: map[string]*personnel.TeamLeader{},
		members:     map[string]*personnel.Member{},
	}
}

func (r *fakeRepo) WithTx(tx *sql.Tx) personnel.Repository { return r }

func visible(deleted bool, l audit.Liveness) bool {
	return l == audit.IncludeDeleted || !deleted
}

func (r *fakeRepo) CreateUser(_ context.Context, u *personnel.User) error {
	r.users[u.SapID] = u
	return nil
}

func (r *fakeRepo) FindUserBySapID(_ context.Context, sapID string, l audit.Liveness) (*personnel.User, error) {
	u, ok := r.users[sapID]
	if !ok || !visible(u.IsDeleted, l) {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *fakeRepo) ListUsers(_ context.Context, l audit.Liveness) ([]personnel.User, error) {
	var out []personnel.User
	for _, u := range r.users {
		if visible(u.IsDeleted, l) {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeRepo) UpdateUser(_ context.Context, u *personnel.User) error {
	r.users[u.SapID] = u
	return nil
}

func (r *fakeRepo) CreateAdmin(_ context.Context, a *personnel.Admin) error {
	r.admins[a.UserID] = a
	return nil
}

func (r *fakeRepo) CreatePlantAdmin(_ context.Context, pa *personnel.PlantAdmin) error {
	r.plantAdmins[pa.UserID] = pa
	return nil
}

func (r *fakeRepo) CreatePlanner(_ context.Context, p *personnel.Planner) error {
	r.planners[p.UserID] = p
	return nil
}

func (r *fakeRepo) CreateTeamLeader(_ context.Context, t *personnel.TeamLeader) error {
	r.teamLeaders[t.UserID] = t
	return nil
}

func (r *fakeRepo) CreateMember(_ context.Context, m *personnel.Member) error {
	r.members[m.UserID] = m
	return nil
}

func (r *fakeRepo) FindPlannerByUserID(_ context.Context, sapID string, l audit.Liveness) (*personnel.Planner, error) {
	p, ok := r.planners[sapID]
	if !ok || !visible(p.IsDeleted, l) {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *fakeRepo) FindTeamLeaderByUserID(_ context.Context, sapID string, l audit.Liveness) (*personnel.TeamLeader, error) {
	t, ok := r.teamLeaders[sapID]
	if !ok || !visible(t.IsDeleted, l) {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (r *fakeRepo) FindMemberByUserID(_ context.Context, sapID string, l audit.Liveness) (*personnel.Member, error) {
	m, ok := r.members[sapID]
	if !ok || !visible(m.IsDeleted, l) {
		return nil, gorm.ErrRecordNotFound
	}
	return m, nil
}

func (r *fakeRepo) FindAdminByUserID(_ context.Context, sapID string, l audit.Liveness) (*personnel.Admin, error) {
	a, ok := r.admins[sapID]
	if !ok || !visible(a.IsDeleted, l) {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (r *fakeRepo) FindPlantAdminByUserID(_ context.Context, sapID string, l audit.Liveness) (*personnel.PlantAdmin, error) {
	pa, ok := r.plantAdmins[sapID]
	if !ok || !visible(pa.IsDeleted, l) {
		return nil, gorm.ErrRecordNotFound
	}
	return pa, nil
}

func (r *fakeRepo) SpecializationKind(_ context.Context, sapID string) (string, *string, bool, error) {
	if _, ok := r.admins[sapID]; ok {
		return personnel.KindAdmin, nil, true, nil
	}
	if pa, ok := r.plantAdmins[sapID]; ok {
		return personnel.KindPlantAdmin, strRef(pa.PlantID), true, nil
	}
	if p, ok := r.planners[sapID]; ok {
		return personnel.KindPlanner, strRef(p.PlantID), true, nil
	}
	if tl, ok := r.teamLeaders[sapID]; ok {
		return personnel.KindTeamLeader, strRef(tl.LineID), true, nil
	}
	if m, ok := r.members[sapID]; ok {
		return personnel.KindMember, strRef(m.CellID), true, nil
	}
	return "", nil, false, nil
}

func strRef(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	v := id.String()
	return &v
}

// fakeHierarchy backs only the anchor lookups; everything else panics
// if reached.
type fakeHierarchy struct {
	hierarchy.Repository
	plants map[string]*hierarchy.Plant
	lines  map[string]*hierarchy.Line
	cells  map[string]*hierarchy.Cell
}

func newFakeHierarchy() *fakeHierarchy {
	return &fakeHierarchy{
		plants: map[string]*hierarchy.Plant{},
		lines:  map[string]*hierarchy.Line{},
		cells:  map[string]*hierarchy.Cell{},
	}
}

func (f *fakeHierarchy) FindPlantByID(_ context.Context, id string, l audit.Liveness) (*hierarchy.Plant, error) {
	p, ok := f.plants[id]
	if !ok || !visible(p.IsDeleted, l) {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (f *fakeHierarchy) FindLineByID(_ context.Context, id string, l audit.Liveness) (*hierarchy.Line, error) {
	ln, ok := f.lines[id]
	if !ok || !visible(ln.IsDeleted, l) {
		return nil, gorm.ErrRecordNotFound
	}
	return ln, nil
}

func (f *fakeHierarchy) FindCellByID(_ context.Context, id string, l audit.Liveness) (*hierarchy.Cell, error) {
	c, ok := f.cells[id]
	if !ok || !visible(c.IsDeleted, l) {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

type serviceDeps struct {
	sqlMock   sqlmock.Sqlmock
	repo      *fakeRepo
	hierarchy *fakeHierarchy
	service   personnel.Service
	now       time.Time
}

func setupServiceTest(t *testing.T) *serviceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := newFakeRepo()
	hier := newFakeHierarchy()
	resolver := ancestry.New()
	hierarchy.RegisterChains(resolver, hier)
	personnel.RegisterChains(resolver, repo)

	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	svc := personnel.NewService(db, repo, hier, resolver, fixedClock{now})

	return &serviceDeps{sqlMock: sqlMock, repo: repo, hierarchy: hier, service: svc, now: now}
}

func (d *serviceDeps) seedUser(sapID, role string) *personnel.User {
	u := &personnel.User{SapID: sapID, Name: "Somebody", Role: role, Credential: "x", Fields: audit.NewFields(d.now)}
	d.repo.users[sapID] = u
	return u
}

func TestPersonnelService_CreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		resp, err := deps.service.CreateUser(ctx, personnel.CreateUserRequest{
			SapID:      "10000001",
			Name:       "Ayu",
			Role:       "planner",
			Credential: "secret",
		})

		assert.NoError(t, err)
		assert.Equal(t, "10000001", resp.SapID)
		assert.Equal(t, personnel.RolePlanner, resp.Role, "role tag is normalized to upper case")
	})

	t.Run("unknown role tag", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.CreateUser(ctx, personnel.CreateUserRequest{
			SapID:      "10000001",
			Name:       "Ayu",
			Role:       "SUPERVISOR",
			Credential: "secret",
		})

		assert.ErrorIs(t, err, personnelerrors.ErrUnknownRole)
	})
}

func TestPersonnelService_AttachSpecialization(t *testing.T) {
	ctx := context.Background()

	t.Run("plant admin attaches to live plant", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.seedUser("10000001", personnel.RolePlantAdmin)
		plantID := uuid.New()
		deps.hierarchy.plants[plantID.String()] = &hierarchy.Plant{ID: plantID, Name: "P1", Fields: audit.NewFields(deps.now)}

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		resp, err := deps.service.AttachSpecialization(ctx, "10000001", personnel.AttachSpecializationRequest{
			Kind:     personnel.KindPlantAdmin,
			AnchorID: plantID.String(),
		})

		assert.NoError(t, err)
		require.NotNil(t, resp.Specialization)
		assert.Equal(t, personnel.KindPlantAdmin, resp.Specialization.Kind)
		require.NotNil(t, resp.Specialization.AnchorID)
		assert.Equal(t, plantID.String(), *resp.Specialization.AnchorID)
	})

	t.Run("kind must match the role tag", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.seedUser("10000001", personnel.RoleMember)

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.AttachSpecialization(ctx, "10000001", personnel.AttachSpecializationRequest{
			Kind: personnel.KindPlanner,
		})

		assert.ErrorIs(t, err, personnelerrors.ErrRoleMismatch)
	})

	t.Run("admin kind covers super admin tag", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.seedUser("10000001", personnel.RoleSuperAdmin)

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		resp, err := deps.service.AttachSpecialization(ctx, "10000001", personnel.AttachSpecializationRequest{
			Kind: personnel.KindAdmin,
		})

		assert.NoError(t, err)
		require.NotNil(t, resp.Specialization)
		assert.Nil(t, resp.Specialization.AnchorID, "global admins are unanchored")
	})

	t.Run("second attach is rejected", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.seedUser("10000001", personnel.RoleMember)
		cellID := uuid.New()
		deps.hierarchy.cells[cellID.String()] = &hierarchy.Cell{ID: cellID, Name: "C1", Fields: audit.NewFields(deps.now)}

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()
		_, err := deps.service.AttachSpecialization(ctx, "10000001", personnel.AttachSpecializationRequest{
			Kind:     personnel.KindMember,
			AnchorID: cellID.String(),
		})
		require.NoError(t, err)

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()
		_, err = deps.service.AttachSpecialization(ctx, "10000001", personnel.AttachSpecializationRequest{
			Kind:     personnel.KindMember,
			AnchorID: cellID.String(),
		})

		assert.ErrorIs(t, err, personnelerrors.ErrAlreadySpecialized)
	})

	t.Run("deleted anchor is rejected", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.seedUser("10000001", personnel.RolePlanner)
		plantID := uuid.New()
		p := &hierarchy.Plant{ID: plantID, Name: "P1", Fields: audit.NewFields(deps.now)}
		p.SoftDelete(deps.now)
		deps.hierarchy.plants[plantID.String()] = p

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.AttachSpecialization(ctx, "10000001", personnel.AttachSpecializationRequest{
			Kind:     personnel.KindPlanner,
			AnchorID: plantID.String(),
		})

		assert.ErrorIs(t, err, personnelerrors.ErrAnchorNotFound)
	})
}

func TestPersonnelService_SoftDeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("idempotent", func(t *testing.T) {
		deps := setupServiceTest(t)
		u := deps.seedUser("10000001", personnel.RoleMember)

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()
		require.NoError(t, deps.service.SoftDeleteUser(ctx, "10000001"))

		firstDeletedAt := u.DeletedAt
		require.NotNil(t, firstDeletedAt)

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()
		require.NoError(t, deps.service.SoftDeleteUser(ctx, "10000001"))

		assert.Equal(t, firstDeletedAt, u.DeletedAt)
	})
}

func TestPersonnelService_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("planner resolves to plant", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.seedUser("10000001", personnel.RolePlanner)
		plantID := uuid.New()
		deps.hierarchy.plants[plantID.String()] = &hierarchy.Plant{ID: plantID, Name: "P1", Fields: audit.NewFields(deps.now)}
		deps.repo.planners["10000001"] = &personnel.Planner{
			UserID:  "10000001",
			PlantID: &plantID,
			Fields:  audit.NewFields(deps.now),
		}

		view, err := deps.service.Resolve(ctx, "10000001", "plant", ancestry.Live)

		assert.NoError(t, err)
		assert.True(t, view.Resolved)
		require.NotNil(t, view.Target)
		assert.Equal(t, plantID.String(), view.Target.ID)
	})

	t.Run("member with deleted cell is unresolved on live walk", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.seedUser("10000002", personnel.RoleMember)
		cellID := uuid.New()
		cell := &hierarchy.Cell{ID: cellID, Name: "C1", Fields: audit.NewFields(deps.now)}
		cell.SoftDelete(deps.now)
		deps.hierarchy.cells[cellID.String()] = cell
		deps.repo.members["10000002"] = &personnel.Member{
			UserID: "10000002",
			CellID: &cellID,
			Fields: audit.NewFields(deps.now),
		}

		view, err := deps.service.Resolve(ctx, "10000002", "cell", ancestry.Live)

		assert.NoError(t, err)
		assert.False(t, view.Resolved)
		assert.Equal(t, "CELL", view.UnresolvedAt)
	})

	t.Run("no specialization", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.seedUser("10000001", personnel.RolePlanner)

		_, err := deps.service.Resolve(ctx, "10000001", "plant", ancestry.Live)
		assert.ErrorIs(t, err, personnelerrors.ErrSpecializationNotFound)
	})
}
