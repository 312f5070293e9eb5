package production

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
	"go-mes/internal/audit"
	"go-mes/internal/hierarchy"
	"go-mes/internal/personnel"
	productionerrors "go-mes/internal/production/errors"
	"go-mes/internal/shift"
)

const LossReasonOptionsKey = "loss_reasons:options"

type Service interface {
	Create(ctx context.Context, req CreateProductionRequest) (ProductionResponse, error)
	Get(ctx context.Context, id string, liveness audit.Liveness) (ProductionResponse, error)
	ListByLine(ctx context.Context, lineID string, liveness audit.Liveness) ([]ProductionResponse, error)
	ListByShift(ctx context.Context, shiftID string, liveness audit.Liveness) ([]ProductionResponse, error)
	Update(ctx context.Context, id string, req UpdateProductionRequest) (ProductionResponse, error)
	SoftDelete(ctx context.Context, id string) error
	Resolve(ctx context.Context, id, target string, mode ancestry.Mode) (ancestry.ResultView, error)

	CreateLoss(ctx context.Context, req CreateLossRequest) (LossResponse, error)
	GetLoss(ctx context.Context, id string, liveness audit.Liveness) (LossResponse, error)
	ListLossesByProduction(ctx context.Context, productionID string, liveness audit.Liveness) ([]LossResponse, error)
	SoftDeleteLoss(ctx context.Context, id string) error
	ResolveLoss(ctx context.Context, id, target string, mode ancestry.Mode) (ancestry.ResultView, error)

	CreateLossReason(ctx context.Context, req CreateLossReasonRequest) (LossReasonResponse, error)
	ListLossReasons(ctx context.Context) ([]LossReasonResponse, error)
	SoftDeleteLossReason(ctx context.Context, id int) error
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
	l := zap.L().Named("production.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("production.service")
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

func (s *service) Create(ctx context.Context, req CreateProductionRequest) (ProductionResponse, error) {
	if !ValidHour(req.Hour) {
		return ProductionResponse{}, productionerrors.ErrInvalidHour
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ProductionResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := s.clock.Now()

	lineID, err := uuid.Parse(req.LineID)
	if err != nil {
		return ProductionResponse{}, productionerrors.ErrLineNotFound
	}
	if _, err := s.hierarchyRepo.FindLineByID(ctx, req.LineID, audit.LiveOnly); err != nil {
		return ProductionResponse{}, mapLookup(err, productionerrors.ErrLineNotFound)
	}
	shiftID, err := uuid.Parse(req.ShiftID)
	if err != nil {
		return ProductionResponse{}, productionerrors.ErrShiftNotFound
	}
	if _, err := s.shiftRepo.FindByID(ctx, req.ShiftID, audit.LiveOnly); err != nil {
		return ProductionResponse{}, mapLookup(err, productionerrors.ErrShiftNotFound)
	}
	if _, err := s.personnelRepo.FindPlannerByUserID(ctx, req.PlannerID, audit.LiveOnly); err != nil {
		return ProductionResponse{}, mapLookup(err, productionerrors.ErrPlannerNotFound)
	}

	var teamLeaderID *string
	if req.TeamLeaderID != "" {
		if _, err := s.personnelRepo.FindTeamLeaderByUserID(ctx, req.TeamLeaderID, audit.LiveOnly); err != nil {
			return ProductionResponse{}, mapLookup(err, productionerrors.ErrTeamLeaderNotFound)
		}
		v := req.TeamLeaderID
		teamLeaderID = &v
	}

	plannerID := req.PlannerID
	p := &Production{
		ID:           uuid.New(),
		Plan:         req.Plan,
		Achievement:  req.Achievement,
		Scraps:       req.Scraps,
		Defects:      req.Defects,
		Flash:        req.Flash,
		Hour:         req.Hour,
		LineID:       &lineID,
		ShiftID:      &shiftID,
		PlannerID:    &plannerID,
		TeamLeaderID: teamLeaderID,
		Fields:       audit.NewFields(now),
	}
	if err := qtx.Create(ctx, p); err != nil {
		return ProductionResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return ProductionResponse{}, err
	}

	s.logger.Info("production recorded",
		zap.String("production_id", p.ID.String()),
		zap.String("line_id", req.LineID),
		zap.String("hour", req.Hour),
	)
	return productionResponse(*p), nil
}

func (s *service) Get(ctx context.Context, id string, liveness audit.Liveness) (ProductionResponse, error) {
	p, err := s.repo.FindByID(ctx, id, liveness)
	if err != nil {
		return ProductionResponse{}, productionNotFound(err)
	}
	return productionResponse(*p), nil
}

func (s *service) ListByLine(ctx context.Context, lineID string, liveness audit.Liveness) ([]ProductionResponse, error) {
	rows, err := s.repo.ListByLine(ctx, lineID, liveness)
	if err != nil {
		return nil, err
	}
	return productionResponses(rows), nil
}

func (s *service) ListByShift(ctx context.Context, shiftID string, liveness audit.Liveness) ([]ProductionResponse, error) {
	rows, err := s.repo.ListByShift(ctx, shiftID, liveness)
	if err != nil {
		return nil, err
	}
	return productionResponses(rows), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateProductionRequest) (ProductionResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ProductionResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := s.clock.Now()

	p, err := qtx.FindByID(ctx, id, audit.IncludeDeleted)
	if err != nil {
		return ProductionResponse{}, productionNotFound(err)
	}

	if req.Plan != nil {
		p.Plan = *req.Plan
	}
	if req.Achievement != nil {
		p.Achievement = *req.Achievement
	}
	if req.Scraps != nil {
		p.Scraps = *req.Scraps
	}
	if req.Defects != nil {
		p.Defects = *req.Defects
	}
	if req.Flash != nil {
		p.Flash = *req.Flash
	}
	if req.Hour != "" {
		if !ValidHour(req.Hour) {
			return ProductionResponse{}, productionerrors.ErrInvalidHour
		}
		p.Hour = req.Hour
	}

	p.Touch(now)
	if err := qtx.Update(ctx, p); err != nil {
		return ProductionResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return ProductionResponse{}, err
	}
	return productionResponse(*p), nil
}

// SoftDelete marks the record deleted; repeating it is a no-op
// success. Attached losses stay untouched.
func (s *service) SoftDelete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := s.clock.Now()

	p, err := qtx.FindByID(ctx, id, audit.IncludeDeleted)
	if err != nil {
		return productionNotFound(err)
	}
	if p.IsDeleted {
		return tx.Commit()
	}

	p.SoftDelete(now)
	if err := qtx.Update(ctx, p); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *service) Resolve(ctx context.Context, id, target string, mode ancestry.Mode) (ancestry.ResultView, error) {
	targetLvl, err := parseTarget(target)
	if err != nil {
		return ancestry.ResultView{}, err
	}

	p, err := s.repo.FindByID(ctx, id, audit.IncludeDeleted)
	if err != nil {
		return ancestry.ResultView{}, productionNotFound(err)
	}

	res, err := s.resolver.Walk(ctx, p, targetLvl, mode)
	if err != nil {
		return ancestry.ResultView{}, hierarchy.MapResolveError(err)
	}
	return ancestry.ViewOf(res), nil
}

// --- Loss ---

func (s *service) CreateLoss(ctx context.Context, req CreateLossRequest) (LossResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LossResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := s.clock.Now()

	productionID, err := uuid.Parse(req.ProductionID)
	if err != nil {
		return LossResponse{}, productionerrors.ErrProductionRefMissing
	}
	if _, err := qtx.FindByID(ctx, req.ProductionID, audit.LiveOnly); err != nil {
		return LossResponse{}, mapLookup(err, productionerrors.ErrProductionRefMissing)
	}
	if _, err := qtx.FindLossReasonByID(ctx, req.LossReasonID, audit.LiveOnly); err != nil {
		return LossResponse{}, mapLookup(err, productionerrors.ErrLossReasonRefMissing)
	}

	reasonID := req.LossReasonID
	ls := &Loss{
		ID:           uuid.New(),
		Amount:       req.Amount,
		ProductionID: &productionID,
		LossReasonID: &reasonID,
		Fields:       audit.NewFields(now),
	}
	if err := qtx.CreateLoss(ctx, ls); err != nil {
		return LossResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return LossResponse{}, err
	}
	return lossResponse(*ls), nil
}

func (s *service) GetLoss(ctx context.Context, id string, liveness audit.Liveness) (LossResponse, error) {
	ls, err := s.repo.FindLossByID(ctx, id, liveness)
	if err != nil {
		return LossResponse{}, lossNotFound(err)
	}
	return lossResponse(*ls), nil
}

func (s *service) ListLossesByProduction(ctx context.Context, productionID string, liveness audit.Liveness) ([]LossResponse, error) {
	rows, err := s.repo.ListLossesByProduction(ctx, productionID, liveness)
	if err != nil {
		return nil, err
	}
	res := make([]LossResponse, len(rows))
	for i, ls := range rows {
		res[i] = lossResponse(ls)
	}
	return res, nil
}

func (s *service) SoftDeleteLoss(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := s.clock.Now()

	ls, err := qtx.FindLossByID(ctx, id, audit.IncludeDeleted)
	if err != nil {
		return lossNotFound(err)
	}
	if ls.IsDeleted {
		return tx.Commit()
	}

	ls.SoftDelete(now)
	if err := qtx.UpdateLoss(ctx, ls); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *service) ResolveLoss(ctx context.Context, id, target string, mode ancestry.Mode) (ancestry.ResultView, error) {
	targetLvl, err := parseTarget(target)
	if err != nil {
		return ancestry.ResultView{}, err
	}

	ls, err := s.repo.FindLossByID(ctx, id, audit.IncludeDeleted)
	if err != nil {
		return ancestry.ResultView{}, lossNotFound(err)
	}

	res, err := s.resolver.Walk(ctx, ls, targetLvl, mode)
	if err != nil {
		return ancestry.ResultView{}, hierarchy.MapResolveError(err)
	}
	return ancestry.ViewOf(res), nil
}

// --- LossReason ---

func (s *service) CreateLossReason(ctx context.Context, req CreateLossReasonRequest) (LossReasonResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LossReasonResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := s.clock.Now()

	lr := &LossReason{
		ID:         req.ID,
		Title:      req.Title,
		Department: req.Department,
		Fields:     audit.NewFields(now),
	}
	if err := qtx.CreateLossReason(ctx, lr); err != nil {
		if isUniqueViolation(err) {
			return LossReasonResponse{}, productionerrors.ErrLossReasonExists
		}
		return LossReasonResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return LossReasonResponse{}, err
	}

	s.invalidateLossReasonCache(ctx)
	return lossReasonResponse(*lr), nil
}

// ListLossReasons serves reference data from cache. Stampedes on a
// cold key collapse into one DB read via singleflight.
func (s *service) ListLossReasons(ctx context.Context) ([]LossReasonResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, LossReasonOptionsKey).Result(); err == nil {
			var resp []LossReasonResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(LossReasonOptionsKey, func() (interface{}, error) {
		rows, err := s.repo.ListLossReasons(ctx, audit.LiveOnly)
		if err != nil {
			return nil, err
		}

		resp := make([]LossReasonResponse, len(rows))
		for i, lr := range rows {
			resp[i] = lossReasonResponse(lr)
		}

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, LossReasonOptionsKey, jsonData, 1*time.Hour)
			}
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]LossReasonResponse), nil
}

func (s *service) SoftDeleteLossReason(ctx context.Context, id int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := s.clock.Now()

	lr, err := qtx.FindLossReasonByID(ctx, id, audit.IncludeDeleted)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return productionerrors.ErrLossReasonNotFound
		}
		return err
	}
	if lr.IsDeleted {
		return tx.Commit()
	}

	lr.SoftDelete(now)
	if err := qtx.UpdateLossReason(ctx, lr); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.invalidateLossReasonCache(ctx)
	return nil
}

func (s *service) invalidateLossReasonCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, LossReasonOptionsKey).Err(); err != nil {
		s.logger.Error("failed to invalidate loss reason cache",
			zap.Error(err),
			zap.String("key", LossReasonOptionsKey),
		)
	}
}

func parseTarget(s string) (ancestry.Level, error) {
	if strings.EqualFold(strings.TrimSpace(s), "production") ||
		strings.EqualFold(strings.TrimSpace(s), "productions") {
		return ancestry.LevelProduction, nil
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

func productionNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return productionerrors.ErrProductionNotFound
	}
	return err
}

func lossNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return productionerrors.ErrLossNotFound
	}
	return err
}

func productionResponses(rows []Production) []ProductionResponse {
	res := make([]ProductionResponse, len(rows))
	for i, p := range rows {
		res[i] = productionResponse(p)
	}
	return res
}

func productionResponse(p Production) ProductionResponse {
	resp := ProductionResponse{
		ID:          p.ID.String(),
		Plan:        p.Plan,
		Achievement: p.Achievement,
		Scraps:      p.Scraps,
		Defects:     p.Defects,
		Flash:       p.Flash,
		Hour:        p.Hour,
		IsDeleted:   p.IsDeleted,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339),
	}
	if p.LineID != nil {
		v := p.LineID.String()
		resp.LineID = &v
	}
	if p.ShiftID != nil {
		v := p.ShiftID.String()
		resp.ShiftID = &v
	}
	resp.PlannerID = p.PlannerID
	resp.TeamLeaderID = p.TeamLeaderID
	return resp
}

func lossResponse(ls Loss) LossResponse {
	resp := LossResponse{
		ID:           ls.ID.String(),
		Amount:       ls.Amount,
		LossReasonID: ls.LossReasonID,
		IsDeleted:    ls.IsDeleted,
		CreatedAt:    ls.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    ls.UpdatedAt.Format(time.RFC3339),
	}
	if ls.ProductionID != nil {
		v := ls.ProductionID.String()
		resp.ProductionID = &v
	}
	return resp
}

func lossReasonResponse(lr LossReason) LossReasonResponse {
	return LossReasonResponse{
		ID:         lr.ID,
		Title:      lr.Title,
		Department: lr.Department,
		IsDeleted:  lr.IsDeleted,
	}
}
