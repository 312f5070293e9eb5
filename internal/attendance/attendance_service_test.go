package attendance_test

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
	"go-mes/internal/attendance"
	attendanceerrors "go-mes/internal/attendance/errors"
	"go-mes/internal/audit"
	"go-mes/internal/hierarchy"
	"go-mes/internal/personnel"
	"go-mes/internal/shift"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func visible(deleted bool, l audit.Liveness) bool {
	return l == audit.IncludeDeleted || !deleted
}

type fakeRepo struct {
	attendances map[string]*attendance.Attendance
	types       map[int]*attendance.AttendanceType
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		attendances: map[string]*attendance.Attendance{},
		types:       map[int]*attendance.AttendanceType{},
	}
}

func (r *fakeRepo) WithTx(_ *sql.Tx) attendance.Repository { return r }

func (r *fakeRepo) Create(_ context.Context, a *attendance.Attendance) error {
	r.attendances[a.ID.String()] = a
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id string, l audit.Liveness) (*attendance.Attendance, error) {
	a, ok := r.attendances[id]
	if !ok || !visible(a.IsDeleted, l) {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (r *fakeRepo) ListByShift(_ context.Context, shiftID string, l audit.Liveness) ([]attendance.Attendance, error) {
	var rows []attendance.Attendance
	for _, a := range r.attendances {
		if a.ShiftID != nil && a.ShiftID.String() == shiftID && visible(a.IsDeleted, l) {
			rows = append(rows, *a)
		}
	}
	return rows, nil
}

func (r *fakeRepo) ListByMember(_ context.Context, memberID string, l audit.Liveness) ([]attendance.Attendance, error) {
	var rows []attendance.Attendance
	for _, a := range r.attendances {
		if a.MemberID != nil && *a.MemberID == memberID && visible(a.IsDeleted, l) {
			rows = append(rows, *a)
		}
	}
	return rows, nil
}

func (r *fakeRepo) Update(_ context.Context, a *attendance.Attendance) error {
	r.attendances[a.ID.String()] = a
	return nil
}

func (r *fakeRepo) CreateType(_ context.Context, at *attendance.AttendanceType) error {
	r.types[at.ID] = at
	return nil
}

func (r *fakeRepo) FindTypeByID(_ context.Context, id int, l audit.Liveness) (*attendance.AttendanceType, error) {
	at, ok := r.types[id]
	if !ok || !visible(at.IsDeleted, l) {
		return nil, gorm.ErrRecordNotFound
	}
	return at, nil
}

func (r *fakeRepo) ListTypes(_ context.Context, l audit.Liveness) ([]attendance.AttendanceType, error) {
	var rows []attendance.AttendanceType
	for _, at := range r.types {
		if visible(at.IsDeleted, l) {
			rows = append(rows, *at)
		}
	}
	return rows, nil
}

func (r *fakeRepo) UpdateType(_ context.Context, at *attendance.AttendanceType) error {
	r.types[at.ID] = at
	return nil
}

type fakeHierarchy struct {
	hierarchy.Repository
	plants map[string]*hierarchy.Plant
	zones  map[string]*hierarchy.Zone
	loops  map[string]*hierarchy.Loop
	lines  map[string]*hierarchy.Line
	cells  map[string]*hierarchy.Cell
}

func newFakeHierarchy() *fakeHierarchy {
	return &fakeHierarchy{
		plants: map[string]*hierarchy.Plant{},
		zones:  map[string]*hierarchy.Zone{},
		loops:  map[string]*hierarchy.Loop{},
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

func (f *fakeHierarchy) FindZoneByID(_ context.Context, id string, l audit.Liveness) (*hierarchy.Zone, error) {
	z, ok := f.zones[id]
	if !ok || !visible(z.IsDeleted, l) {
		return nil, gorm.ErrRecordNotFound
	}
	return z, nil
}

func (f *fakeHierarchy) FindLoopByID(_ context.Context, id string, l audit.Liveness) (*hierarchy.Loop, error) {
	lp, ok := f.loops[id]
	if !ok || !visible(lp.IsDeleted, l) {
		return nil, gorm.ErrRecordNotFound
	}
	return lp, nil
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

type fakeShiftRepo struct {
	shift.Repository
	shifts map[string]*shift.Shift
}

func (f *fakeShiftRepo) FindByID(_ context.Context, id string, l audit.Liveness) (*shift.Shift, error) {
	sh, ok := f.shifts[id]
	if !ok || !visible(sh.IsDeleted, l) {
		return nil, gorm.ErrRecordNotFound
	}
	return sh, nil
}

type fakePersonnel struct {
	personnel.Repository
	members     map[string]*personnel.Member
	teamLeaders map[string]*personnel.TeamLeader
}

func (f *fakePersonnel) FindMemberByUserID(_ context.Context, sapID string, l audit.Liveness) (*personnel.Member, error) {
	m, ok := f.members[sapID]
	if !ok || !visible(m.IsDeleted, l) {
		return nil, gorm.ErrRecordNotFound
	}
	return m, nil
}

func (f *fakePersonnel) FindTeamLeaderByUserID(_ context.Context, sapID string, l audit.Liveness) (*personnel.TeamLeader, error) {
	tl, ok := f.teamLeaders[sapID]
	if !ok || !visible(tl.IsDeleted, l) {
		return nil, gorm.ErrRecordNotFound
	}
	return tl, nil
}

type serviceDeps struct {
	sqlMock   sqlmock.Sqlmock
	repo      *fakeRepo
	hierarchy *fakeHierarchy
	shifts    *fakeShiftRepo
	personnel *fakePersonnel
	service   attendance.Service
	now       time.Time
}

func setupServiceTest(t *testing.T) *serviceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := newFakeRepo()
	hier := newFakeHierarchy()
	shifts := &fakeShiftRepo{shifts: map[string]*shift.Shift{}}
	pers := &fakePersonnel{
		members:     map[string]*personnel.Member{},
		teamLeaders: map[string]*personnel.TeamLeader{},
	}
	resolver := ancestry.New()
	hierarchy.RegisterChains(resolver, hier)
	personnel.RegisterChains(resolver, pers)
	attendance.RegisterChains(resolver)

	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	svc := attendance.NewService(db, repo, hier, shifts, pers, resolver, fixedClock{now}, nil)

	return &serviceDeps{
		sqlMock:   sqlMock,
		repo:      repo,
		hierarchy: hier,
		shifts:    shifts,
		personnel: pers,
		service:   svc,
		now:       now,
	}
}

// seedBranch builds plant -> zone -> loop -> line -> cell and returns
// the plant and cell ids.
func (d *serviceDeps) seedBranch(prefix string) (plantID, cellID uuid.UUID) {
	plantID = uuid.New()
	zoneID := uuid.New()
	loopID := uuid.New()
	lineID := uuid.New()
	cellID = uuid.New()
	d.hierarchy.plants[plantID.String()] = &hierarchy.Plant{ID: plantID, Name: prefix + "-P", Fields: audit.NewFields(d.now)}
	d.hierarchy.zones[zoneID.String()] = &hierarchy.Zone{ID: zoneID, Name: prefix + "-Z", PlantID: &plantID, Fields: audit.NewFields(d.now)}
	d.hierarchy.loops[loopID.String()] = &hierarchy.Loop{ID: loopID, Name: prefix + "-LP", ZoneID: &zoneID, Fields: audit.NewFields(d.now)}
	d.hierarchy.lines[lineID.String()] = &hierarchy.Line{ID: lineID, Name: prefix + "-L", LoopID: &loopID, Fields: audit.NewFields(d.now)}
	d.hierarchy.cells[cellID.String()] = &hierarchy.Cell{ID: cellID, Name: prefix + "-C", LineID: &lineID, Fields: audit.NewFields(d.now)}
	return plantID, cellID
}

func (d *serviceDeps) seedMember(sapID string, cellID uuid.UUID) {
	d.personnel.members[sapID] = &personnel.Member{
		UserID: sapID,
		CellID: &cellID,
		Fields: audit.NewFields(d.now),
	}
}

func (d *serviceDeps) seedShift(plantID uuid.UUID) uuid.UUID {
	id := uuid.New()
	plannerID := "30000001"
	d.shifts.shifts[id.String()] = &shift.Shift{
		ID:          id,
		Date:        time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		DayNight:    shift.DayNightDay,
		Designation: shift.DesignationA,
		PlantID:     &plantID,
		PlannerID:   &plannerID,
		Fields:      audit.NewFields(d.now),
	}
	return id
}

func (d *serviceDeps) seedAttendance(memberID string, shiftID, workingCellID uuid.UUID) *attendance.Attendance {
	teamLeaderID := "20000001"
	typeID := 1
	a := &attendance.Attendance{
		ID:               uuid.New(),
		MemberID:         &memberID,
		ShiftID:          &shiftID,
		TeamLeaderID:     &teamLeaderID,
		AttendanceTypeID: &typeID,
		WorkingCellID:    &workingCellID,
		Fields:           audit.NewFields(d.now),
	}
	d.repo.attendances[a.ID.String()] = a
	return a
}

func TestAttendanceService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("records attendance against a working cell", func(t *testing.T) {
		deps := setupServiceTest(t)
		plantID, homeCellID := deps.seedBranch("home")
		_, workingCellID := deps.seedBranch("work")
		deps.seedMember("10000001", homeCellID)
		shiftID := deps.seedShift(plantID)
		deps.personnel.teamLeaders["20000001"] = &personnel.TeamLeader{UserID: "20000001", Fields: audit.NewFields(deps.now)}
		deps.repo.types[1] = &attendance.AttendanceType{ID: 1, Title: "Present", Color: "#00FF00", Fields: audit.NewFields(deps.now)}
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		resp, err := deps.service.Create(ctx, attendance.CreateAttendanceRequest{
			MemberID:         "10000001",
			ShiftID:          shiftID.String(),
			TeamLeaderID:     "20000001",
			AttendanceTypeID: 1,
			WorkingCellID:    workingCellID.String(),
		})

		require.NoError(t, err)
		require.NotNil(t, resp.WorkingCellID)
		assert.Equal(t, workingCellID.String(), *resp.WorkingCellID)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("rejects a deleted working cell", func(t *testing.T) {
		deps := setupServiceTest(t)
		plantID, homeCellID := deps.seedBranch("home")
		_, workingCellID := deps.seedBranch("work")
		deps.hierarchy.cells[workingCellID.String()].SoftDelete(deps.now)
		deps.seedMember("10000001", homeCellID)
		shiftID := deps.seedShift(plantID)
		deps.personnel.teamLeaders["20000001"] = &personnel.TeamLeader{UserID: "20000001", Fields: audit.NewFields(deps.now)}
		deps.repo.types[1] = &attendance.AttendanceType{ID: 1, Title: "Present", Color: "#00FF00", Fields: audit.NewFields(deps.now)}
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.Create(ctx, attendance.CreateAttendanceRequest{
			MemberID:         "10000001",
			ShiftID:          shiftID.String(),
			TeamLeaderID:     "20000001",
			AttendanceTypeID: 1,
			WorkingCellID:    workingCellID.String(),
		})

		assert.ErrorIs(t, err, attendanceerrors.ErrWorkingCellNotFound)
	})

	t.Run("rejects an unknown member", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.Create(ctx, attendance.CreateAttendanceRequest{
			MemberID:         "99999999",
			ShiftID:          uuid.New().String(),
			TeamLeaderID:     "20000001",
			AttendanceTypeID: 1,
			WorkingCellID:    uuid.New().String(),
		})

		assert.ErrorIs(t, err, attendanceerrors.ErrMemberNotFound)
	})
}

func TestAttendanceService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("re-points the working cell even when deleted", func(t *testing.T) {
		deps := setupServiceTest(t)
		plantID, homeCellID := deps.seedBranch("home")
		_, workingCellID := deps.seedBranch("work")
		deps.seedMember("10000001", homeCellID)
		shiftID := deps.seedShift(plantID)
		a := deps.seedAttendance("10000001", shiftID, workingCellID)

		_, nextCellID := deps.seedBranch("next")
		deps.hierarchy.cells[nextCellID.String()].SoftDelete(deps.now)
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		resp, err := deps.service.Update(ctx, a.ID.String(), attendance.UpdateAttendanceRequest{
			WorkingCellID: nextCellID.String(),
		})

		require.NoError(t, err)
		require.NotNil(t, resp.WorkingCellID)
		assert.Equal(t, nextCellID.String(), *resp.WorkingCellID)
	})

	t.Run("rejects an absent working cell", func(t *testing.T) {
		deps := setupServiceTest(t)
		plantID, homeCellID := deps.seedBranch("home")
		_, workingCellID := deps.seedBranch("work")
		deps.seedMember("10000001", homeCellID)
		shiftID := deps.seedShift(plantID)
		a := deps.seedAttendance("10000001", shiftID, workingCellID)
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.Update(ctx, a.ID.String(), attendance.UpdateAttendanceRequest{
			WorkingCellID: uuid.New().String(),
		})

		assert.ErrorIs(t, err, attendanceerrors.ErrWorkingCellNotFound)
	})
}

func TestAttendanceService_Resolve(t *testing.T) {
	ctx := context.Background()

	// A member borrowed by another plant: the home cell and the cell
	// actually worked sit under different plants, and the two walks
	// must land on different roots.
	t.Run("assigned and working walks land on different plants", func(t *testing.T) {
		deps := setupServiceTest(t)
		homePlantID, homeCellID := deps.seedBranch("home")
		workPlantID, workingCellID := deps.seedBranch("work")
		deps.seedMember("10000001", homeCellID)
		shiftID := deps.seedShift(homePlantID)
		a := deps.seedAttendance("10000001", shiftID, workingCellID)

		assigned, err := deps.service.ResolveAssigned(ctx, a.ID.String(), "plant", ancestry.Live)
		require.NoError(t, err)
		require.True(t, assigned.Resolved)
		require.NotNil(t, assigned.Target)
		assert.Equal(t, homePlantID.String(), assigned.Target.ID)

		working, err := deps.service.ResolveWorking(ctx, a.ID.String(), "plant", ancestry.Live)
		require.NoError(t, err)
		require.True(t, working.Resolved)
		require.NotNil(t, working.Target)
		assert.Equal(t, workPlantID.String(), working.Target.ID)

		assert.NotEqual(t, assigned.Target.ID, working.Target.ID)
	})

	t.Run("assigned walk resolves the member hop", func(t *testing.T) {
		deps := setupServiceTest(t)
		plantID, homeCellID := deps.seedBranch("home")
		deps.seedMember("10000001", homeCellID)
		shiftID := deps.seedShift(plantID)
		a := deps.seedAttendance("10000001", shiftID, homeCellID)

		view, err := deps.service.ResolveAssigned(ctx, a.ID.String(), "member", ancestry.Live)

		require.NoError(t, err)
		assert.True(t, view.Resolved)
		require.NotNil(t, view.Target)
		assert.Equal(t, "10000001", view.Target.ID)
	})

	t.Run("working walk has no member hop", func(t *testing.T) {
		deps := setupServiceTest(t)
		plantID, homeCellID := deps.seedBranch("home")
		deps.seedMember("10000001", homeCellID)
		shiftID := deps.seedShift(plantID)
		a := deps.seedAttendance("10000001", shiftID, homeCellID)

		_, err := deps.service.ResolveWorking(ctx, a.ID.String(), "member", ancestry.Live)

		assert.Error(t, err)
	})

	t.Run("live assigned walk stops at a deleted home cell", func(t *testing.T) {
		deps := setupServiceTest(t)
		plantID, homeCellID := deps.seedBranch("home")
		deps.hierarchy.cells[homeCellID.String()].SoftDelete(deps.now)
		deps.seedMember("10000001", homeCellID)
		shiftID := deps.seedShift(plantID)
		a := deps.seedAttendance("10000001", shiftID, homeCellID)

		view, err := deps.service.ResolveAssigned(ctx, a.ID.String(), "plant", ancestry.Live)

		require.NoError(t, err)
		assert.False(t, view.Resolved)
		assert.Equal(t, "CELL", view.UnresolvedAt)
	})
}

func TestAttendanceService_Types(t *testing.T) {
	ctx := context.Background()

	t.Run("list skips deleted types", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.types[1] = &attendance.AttendanceType{ID: 1, Title: "Present", Color: "#00FF00", Fields: audit.NewFields(deps.now)}
		gone := &attendance.AttendanceType{ID: 2, Title: "Retired", Color: "#888888", Fields: audit.NewFields(deps.now)}
		gone.SoftDelete(deps.now)
		deps.repo.types[2] = gone

		rows, err := deps.service.ListTypes(ctx)

		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, 1, rows[0].ID)
	})

	t.Run("repeating a delete is a no-op", func(t *testing.T) {
		deps := setupServiceTest(t)
		at := &attendance.AttendanceType{ID: 1, Title: "Present", Color: "#00FF00", Fields: audit.NewFields(deps.now)}
		deps.repo.types[1] = at

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()
		require.NoError(t, deps.service.SoftDeleteType(ctx, 1))
		require.NotNil(t, at.DeletedAt)
		firstDeletedAt := *at.DeletedAt

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()
		require.NoError(t, deps.service.SoftDeleteType(ctx, 1))

		assert.Equal(t, firstDeletedAt, *at.DeletedAt)
	})
}
