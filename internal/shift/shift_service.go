package shift

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-mes/internal/ancestry"
	"go-mes/internal/audit"
	"go-mes/internal/hierarchy"
	"go-mes/internal/personnel"
	shifterrors "go-mes/internal/shift/errors"
)

const dateLayout = "2006-01-02"

type Service interface {
	Create(ctx context.Context, req CreateShiftRequest) (ShiftResponse, error)
	Get(ctx context.Context, id string, liveness audit.Liveness) (ShiftResponse, error)
	ListByPlant(ctx context.Context, plantID string, liveness audit.Liveness) ([]ShiftResponse, error)
	ListByDate(ctx context.Context, date string, liveness audit.Liveness) ([]ShiftResponse, error)
	Update(ctx context.Context, id string, req UpdateShiftRequest) (ShiftResponse, error)
	SoftDelete(ctx context.Context, id string) error
	Resolve(ctx context.Context, id, target string, mode ancestry.Mode) (ancestry.ResultView, error)
}

type service struct {
	db            *sql.DB
	repo          Repository
	hierarchyRepo hierarchy.Repository
	personnelRepo personnel.Repository
	resolver      *ancestry.Resolver
	clock         audit.Clock
	logger        *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	hierarchyRepo hierarchy.Repository,
	personnelRepo personnel.Repository,
	resolver *ancestry.Resolver,
	clock audit.Clock,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("shift.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("shift.service")
	}
	return &service{
		db:            db,
		repo:          repo,
		hierarchyRepo: hierarchyRepo,
		personnelRepo: personnelRepo,
		resolver:      resolver,
		clock:         clock,
		logger:        l,
	}
}

func (s *service) Create(ctx context.Context, req CreateShiftRequest) (ShiftResponse, error) {
	if !ValidDayNight(req.DayNight) {
		return ShiftResponse{}, shifterrors.ErrInvalidDayNight
	}
	if !ValidDesignation(req.Designation) {
		return ShiftResponse{}, shifterrors.ErrInvalidDesignation
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return ShiftResponse{}, shifterrors.ErrInvalidDate
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ShiftResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := s.clock.Now()

	plantID, err := uuid.Parse(req.PlantID)
	if err != nil {
		return ShiftResponse{}, shifterrors.ErrPlantNotFound
	}
	if _, err := s.hierarchyRepo.FindPlantByID(ctx, req.PlantID, audit.LiveOnly); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ShiftResponse{}, shifterrors.ErrPlantNotFound
		}
		return ShiftResponse{}, err
	}
	if _, err := s.personnelRepo.FindPlannerByUserID(ctx, req.PlannerID, audit.LiveOnly); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ShiftResponse{}, shifterrors.ErrPlannerNotFound
		}
		return ShiftResponse{}, err
	}

	plannerID := req.PlannerID
	sh := &Shift{
		ID:          uuid.New(),
		Date:        date,
		DayNight:    req.DayNight,
		Designation: req.Designation,
		PlantID:     &plantID,
		PlannerID:   &plannerID,
		Fields:      audit.NewFields(now),
	}
	if err := qtx.Create(ctx, sh); err != nil {
		return ShiftResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return ShiftResponse{}, err
	}

	s.logger.Info("shift created",
		zap.String("shift_id", sh.ID.String()),
		zap.String("date", req.Date),
		zap.String("shift", req.Designation),
	)
	return shiftResponse(*sh), nil
}

func (s *service) Get(ctx context.Context, id string, liveness audit.Liveness) (ShiftResponse, error) {
	sh, err := s.repo.FindByID(ctx, id, liveness)
	if err != nil {
		return ShiftResponse{}, notFound(err)
	}
	return shiftResponse(*sh), nil
}

func (s *service) ListByPlant(ctx context.Context, plantID string, liveness audit.Liveness) ([]ShiftResponse, error) {
	rows, err := s.repo.ListByPlant(ctx, plantID, liveness)
	if err != nil {
		return nil, err
	}
	res := make([]ShiftResponse, len(rows))
	for i, sh := range rows {
		res[i] = shiftResponse(sh)
	}
	return res, nil
}

func (s *service) ListByDate(ctx context.Context, date string, liveness audit.Liveness) ([]ShiftResponse, error) {
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, shifterrors.ErrInvalidDate
	}
	rows, err := s.repo.ListByDate(ctx, day, liveness)
	if err != nil {
		return nil, err
	}
	res := make([]ShiftResponse, len(rows))
	for i, sh := range rows {
		res[i] = shiftResponse(sh)
	}
	return res, nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateShiftRequest) (ShiftResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ShiftResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := s.clock.Now()

	sh, err := qtx.FindByID(ctx, id, audit.IncludeDeleted)
	if err != nil {
		return ShiftResponse{}, notFound(err)
	}

	if req.Date != "" {
		date, perr := time.Parse(dateLayout, req.Date)
		if perr != nil {
			return ShiftResponse{}, shifterrors.ErrInvalidDate
		}
		sh.Date = date
	}
	if req.DayNight != "" {
		if !ValidDayNight(req.DayNight) {
			return ShiftResponse{}, shifterrors.ErrInvalidDayNight
		}
		sh.DayNight = req.DayNight
	}
	if req.Designation != "" {
		if !ValidDesignation(req.Designation) {
			return ShiftResponse{}, shifterrors.ErrInvalidDesignation
		}
		sh.Designation = req.Designation
	}

	sh.Touch(now)
	if err := qtx.Update(ctx, sh); err != nil {
		return ShiftResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return ShiftResponse{}, err
	}
	return shiftResponse(*sh), nil
}

// SoftDelete marks the shift deleted; repeating it is a no-op success.
func (s *service) SoftDelete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := s.clock.Now()

	sh, err := qtx.FindByID(ctx, id, audit.IncludeDeleted)
	if err != nil {
		return notFound(err)
	}
	if sh.IsDeleted {
		s.logger.Debug("soft delete no-op, shift already deleted", zap.String("shift_id", id))
		return tx.Commit()
	}

	sh.SoftDelete(now)
	if err := qtx.Update(ctx, sh); err != nil {
		return err
	}
	return tx.Commit()
}

// Resolve walks from the shift to an ancestor level. The origin loads
// with IncludeDeleted so historical shifts stay attributable.
func (s *service) Resolve(ctx context.Context, id, target string, mode ancestry.Mode) (ancestry.ResultView, error) {
	targetLvl, err := hierarchy.ParseLevel(target)
	if err != nil {
		return ancestry.ResultView{}, err
	}

	sh, err := s.repo.FindByID(ctx, id, audit.IncludeDeleted)
	if err != nil {
		return ancestry.ResultView{}, notFound(err)
	}

	res, err := s.resolver.Walk(ctx, sh, targetLvl, mode)
	if err != nil {
		return ancestry.ResultView{}, hierarchy.MapResolveError(err)
	}
	return ancestry.ViewOf(res), nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shifterrors.ErrShiftNotFound
	}
	return err
}

func shiftResponse(sh Shift) ShiftResponse {
	resp := ShiftResponse{
		ID:          sh.ID.String(),
		Date:        sh.Date.Format(dateLayout),
		DayNight:    sh.DayNight,
		Designation: sh.Designation,
		IsDeleted:   sh.IsDeleted,
		CreatedAt:   sh.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   sh.UpdatedAt.Format(time.RFC3339),
	}
	if sh.PlantID != nil {
		v := sh.PlantID.String()
		resp.PlantID = &v
	}
	if sh.PlannerID != nil {
		v := *sh.PlannerID
		resp.PlannerID = &v
	}
	return resp
}
