package attendance

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"go-mes/internal/ancestry"
	attendanceerrors "go-mes/internal/attendance/errors"
	"go-mes/internal/audit"
	"go-mes/internal/hierarchy"
	"go-mes/internal/personnel"
	"go-mes/internal/shift"
)

const AttendanceTypeOptionsKey = "attendance_types:options"

type Service interface {
	Create(ctx context.Context, req CreateAttendanceRequest) (AttendanceResponse, error)
	Get(ctx context.Context, id string, liveness audit.Liveness) (AttendanceResponse, error)
	ListByShift(ctx context.Context, shiftID string, liveness audit.Liveness) ([]AttendanceResponse, error)
	ListByMember(ctx context.Context, memberID string, liveness audit.Liveness) ([]AttendanceResponse, error)
	Update(ctx context.Context, id string, req UpdateAttendanceRequest) (AttendanceResponse, error)
	SoftDelete(ctx context.Context, id string) error

	// ResolveAssigned walks through the member's home cell;
	// ResolveWorking walks from the cell actually worked. The two
	// walks are independent and may land on different plants.
	ResolveAssigned(ctx context.Context, id, target string, mode ancestry.Mode) (ancestry.ResultView, error)
	ResolveWorking(ctx context.Context, id, target string, mode ancestry.Mode) (ancestry.ResultView, error)

	CreateType(ctx context.Context, req CreateAttendanceTypeRequest) (AttendanceTypeResponse, error)
	ListTypes(ctx context.Context) ([]AttendanceTypeResponse, error)
	SoftDeleteType(ctx context.Context, id int) error
}

type service struct {
	db            *sql.DB
	repo          Repository
	hierarchyRepo hierarchy.Repository
	shiftRepo     shift.Repository
	personnelRepo personnel.Repository
	resolver      *ancestry.Resolver
	clock         audit.Clock
	rdb           *redis.Client
	sf            *singleflight.Group
	logger        *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	hierarchyRepo hierarchy.Repository,
	shiftRepo shift.Repository,
	personnelRepo personnel.Repository,
	resolver *ancestry.Resolver,
	clock audit.Clock,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	return &service{
		db:            db,
		repo:          repo,
		hierarchyRepo: hierarchyRepo,
		shiftRepo:     shiftRepo,
		personnelRepo: personnelRepo,
		resolver:      resolver,
		clock:         clock,
		rdb:           rdb,
		sf:            &singleflight.Group{},
		logger:        l,
	}
}

// Create validates every reference independently. In particular the
// working cell check says nothing about the member's home cell, and
// the home cell is never consulted here.
func (s *service) Create(ctx context.Context, req CreateAttendanceRequest) (AttendanceResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := s.clock.Now()

	if _, err := s.personnelRepo.FindMemberByUserID(ctx, req.MemberID, audit.LiveOnly); err != nil {
		return AttendanceResponse{}, mapLookup(err, attendanceerrors.ErrMemberNotFound)
	}
	shiftID, err := uuid.Parse(req.ShiftID)
	if err != nil {
		return AttendanceResponse{}, attendanceerrors.ErrShiftNotFound
	}
	if _, err := s.shiftRepo.FindByID(ctx, req.ShiftID, audit.LiveOnly); err != nil {
		return AttendanceResponse{}, mapLookup(err, attendanceerrors.ErrShiftNotFound)
	}
	if _, err := s.personnelRepo.FindTeamLeaderByUserID(ctx, req.TeamLeaderID, audit.LiveOnly); err != nil {
		return AttendanceResponse{}, mapLookup(err, attendanceerrors.ErrTeamLeaderNotFound)
	}
	if _, err := qtx.FindTypeByID(ctx, req.AttendanceTypeID, audit.LiveOnly); err != nil {
		return AttendanceResponse{}, mapLookup(err, attendanceerrors.ErrTypeRefMissing)
	}
	workingCellID, err := uuid.Parse(req.WorkingCellID)
	if err != nil {
		return AttendanceResponse{}, attendanceerrors.ErrWorkingCellNotFound
	}
	if _, err := s.hierarchyRepo.FindCellByID(ctx, req.WorkingCellID, audit.LiveOnly); err != nil {
		return AttendanceResponse{}, mapLookup(err, attendanceerrors.ErrWorkingCellNotFound)
	}

	memberID := req.MemberID
	teamLeaderID := req.TeamLeaderID
	typeID := req.AttendanceTypeID
	a := &Attendance{
		ID:               uuid.New(),
		MemberID:         &memberID,
		ShiftID:          &shiftID,
		TeamLeaderID:     &teamLeaderID,
		AttendanceTypeID: &typeID,
		WorkingCellID:    &workingCellID,
		Fields:           audit.NewFields(now),
	}
	if err := qtx.Create(ctx, a); err != nil {
		return AttendanceResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return AttendanceResponse{}, err
	}

	s.logger.Info("attendance recorded",
		zap.String("attendance_id", a.ID.String()),
		zap.String("member_id", req.MemberID),
		zap.String("working_cell_id", req.WorkingCellID),
	)
	return attendanceResponse(*a), nil
}

func (s *service) Get(ctx context.Context, id string, liveness audit.Liveness) (AttendanceResponse, error) {
	a, err := s.repo.FindByID(ctx, id, liveness)
	if err != nil {
		return AttendanceResponse{}, notFound(err)
	}
	return attendanceResponse(*a), nil
}

func (s *service) ListByShift(ctx context.Context, shiftID string, liveness audit.Liveness) ([]AttendanceResponse, error) {
	rows, err := s.repo.ListByShift(ctx, shiftID, liveness)
	if err != nil {
		return nil, err
	}
	return attendanceResponses(rows), nil
}

func (s *service) ListByMember(ctx context.Context, memberID string, liveness audit.Liveness) ([]AttendanceResponse, error) {
	rows, err := s.repo.ListByMember(ctx, memberID, liveness)
	if err != nil {
		return nil, err
	}
	return attendanceResponses(rows), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateAttendanceRequest) (AttendanceResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := s.clock.Now()

	a, err := qtx.FindByID(ctx, id, audit.IncludeDeleted)
	if err != nil {
		return AttendanceResponse{}, notFound(err)
	}

	if req.TeamLeaderID != "" {
		if _, err := s.personnelRepo.FindTeamLeaderByUserID(ctx, req.TeamLeaderID, audit.LiveOnly); err != nil {
			return AttendanceResponse{}, mapLookup(err, attendanceerrors.ErrTeamLeaderNotFound)
		}
		v := req.TeamLeaderID
		a.TeamLeaderID = &v
	}
	if req.AttendanceTypeID != nil {
		if _, err := qtx.FindTypeByID(ctx, *req.AttendanceTypeID, audit.LiveOnly); err != nil {
			return AttendanceResponse{}, mapLookup(err, attendanceerrors.ErrTypeRefMissing)
		}
		a.AttendanceTypeID = req.AttendanceTypeID
	}
	if req.WorkingCellID != "" {
		// Re-pointing the working cell is a reparent, so a deleted
		// cell is acceptable as long as it exists.
		cellID, perr := uuid.Parse(req.WorkingCellID)
		if perr != nil {
			return AttendanceResponse{}, attendanceerrors.ErrWorkingCellNotFound
		}
		if _, err := s.hierarchyRepo.FindCellByID(ctx, req.WorkingCellID, audit.IncludeDeleted); err != nil {
			return AttendanceResponse{}, mapLookup(err, attendanceerrors.ErrWorkingCellNotFound)
		}
		a.WorkingCellID = &cellID
	}

	a.Touch(now)
	if err := qtx.Update(ctx, a); err != nil {
		return AttendanceResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return AttendanceResponse{}, err
	}
	return attendanceResponse(*a), nil
}

func (s *service) SoftDelete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := s.clock.Now()

	a, err := qtx.FindByID(ctx, id, audit.IncludeDeleted)
	if err != nil {
		return notFound(err)
	}
	if a.IsDeleted {
		return tx.Commit()
	}

	a.SoftDelete(now)
	if err := qtx.Update(ctx, a); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *service) ResolveAssigned(ctx context.Context, id, target string, mode ancestry.Mode) (ancestry.ResultView, error) {
	return s.resolve(ctx, id, target, mode, (*Attendance).AssignedOrigin)
}

func (s *service) ResolveWorking(ctx context.Context, id, target string, mode ancestry.Mode) (ancestry.ResultView, error) {
	return s.resolve(ctx, id, target, mode, (*Attendance).WorkingOrigin)
}

func (s *service) resolve(
	ctx context.Context,
	id, target string,
	mode ancestry.Mode,
	origin func(*Attendance) ancestry.Node,
) (ancestry.ResultView, error) {
	targetLvl, err := parseTarget(target)
	if err != nil {
		return ancestry.ResultView{}, err
	}

	a, err := s.repo.FindByID(ctx, id, audit.IncludeDeleted)
	if err != nil {
		return ancestry.ResultView{}, notFound(err)
	}

	res, err := s.resolver.Walk(ctx, origin(a), targetLvl, mode)
	if err != nil {
		return ancestry.ResultView{}, hierarchy.MapResolveError(err)
	}
	return ancestry.ViewOf(res), nil
}

// --- AttendanceType ---

func (s *service) CreateType(ctx context.Context, req CreateAttendanceTypeRequest) (AttendanceTypeResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AttendanceTypeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := s.clock.Now()

	at := &AttendanceType{
		ID:     req.ID,
		Title:  req.Title,
		Color:  req.Color,
		Fields: audit.NewFields(now),
	}
	if err := qtx.CreateType(ctx, at); err != nil {
		if isUniqueViolation(err) {
			return AttendanceTypeResponse{}, attendanceerrors.ErrAttendanceTypeExists
		}
		return AttendanceTypeResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return AttendanceTypeResponse{}, err
	}

	s.invalidateTypeCache(ctx)
	return typeResponse(*at), nil
}

func (s *service) ListTypes(ctx context.Context) ([]AttendanceTypeResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, AttendanceTypeOptionsKey).Result(); err == nil {
			var resp []AttendanceTypeResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(AttendanceTypeOptionsKey, func() (interface{}, error) {
		rows, err := s.repo.ListTypes(ctx, audit.LiveOnly)
		if err != nil {
			return nil, err
		}

		resp := make([]AttendanceTypeResponse, len(rows))
		for i, at := range rows {
			resp[i] = typeResponse(at)
		}

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, AttendanceTypeOptionsKey, jsonData, 1*time.Hour)
			}
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]AttendanceTypeResponse), nil
}

func (s *service) SoftDeleteType(ctx context.Context, id int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := s.clock.Now()

	at, err := qtx.FindTypeByID(ctx, id, audit.IncludeDeleted)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return attendanceerrors.ErrAttendanceTypeNotFound
		}
		return err
	}
	if at.IsDeleted {
		return tx.Commit()
	}

	at.SoftDelete(now)
	if err := qtx.UpdateType(ctx, at); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.invalidateTypeCache(ctx)
	return nil
}

func (s *service) invalidateTypeCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, AttendanceTypeOptionsKey).Err(); err != nil {
		s.logger.Error("failed to invalidate attendance type cache",
			zap.Error(err),
			zap.String("key", AttendanceTypeOptionsKey),
		)
	}
}

func parseTarget(s string) (ancestry.Level, error) {
	if strings.EqualFold(strings.TrimSpace(s), "member") ||
		strings.EqualFold(strings.TrimSpace(s), "members") {
		return ancestry.LevelMember, nil
	}
	return hierarchy.ParseLevel(s)
}

func mapLookup(err, missing error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return missing
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return attendanceerrors.ErrAttendanceNotFound
	}
	return err
}

func attendanceResponses(rows []Attendance) []AttendanceResponse {
	res := make([]AttendanceResponse, len(rows))
	for i, a := range rows {
		res[i] = attendanceResponse(a)
	}
	return res
}

func attendanceResponse(a Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:               a.ID.String(),
		MemberID:         a.MemberID,
		TeamLeaderID:     a.TeamLeaderID,
		AttendanceTypeID: a.AttendanceTypeID,
		IsDeleted:        a.IsDeleted,
		CreatedAt:        a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        a.UpdatedAt.Format(time.RFC3339),
	}
	if a.ShiftID != nil {
		v := a.ShiftID.String()
		resp.ShiftID = &v
	}
	if a.WorkingCellID != nil {
		v := a.WorkingCellID.String()
		resp.WorkingCellID = &v
	}
	return resp
}

func typeResponse(at AttendanceType) AttendanceTypeResponse {
	return AttendanceTypeResponse{
		ID:        at.ID,
		Title:     at.Title,
		Color:     at.Color,
		IsDeleted: at.IsDeleted,
	}
}
