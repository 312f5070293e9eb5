package personnel

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-mes/internal/ancestry"
	"go-mes/internal/audit"
	"go-mes/internal/events"
	"go-mes/internal/hierarchy"
	"go-mes/internal/messaging/kafka"
	personnelerrors "go-mes/internal/personnel/errors"
	"go-mes/internal/shared/contextutil"
)

type Service interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (UserResponse, error)
	AttachSpecialization(ctx context.Context, sapID string, req AttachSpecializationRequest) (UserResponse, error)
	GetUser(ctx context.Context, sapID string, liveness audit.Liveness) (UserResponse, error)
	ListUsers(ctx context.Context, liveness audit.Liveness) ([]UserResponse, error)
	UpdateUser(ctx context.Context, sapID string, req UpdateUserRequest) (UserResponse, error)
	SoftDeleteUser(ctx context.Context, sapID string) error
	Resolve(ctx context.Context, sapID, target string, mode ancestry.Mode) (ancestry.ResultView, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	hierarchy hierarchy.Repository
	outbox    kafka.OutboxRepository
	resolver  *ancestry.Resolver
	clock     audit.Clock
	logger    *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	hierarchyRepo hierarchy.Repository,
	resolver *ancestry.Resolver,
	clock audit.Clock,
) Service {
	return NewServiceWithOutbox(db, repo, hierarchyRepo, resolver, clock, nil)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	hierarchyRepo hierarchy.Repository,
	resolver *ancestry.Resolver,
	clock audit.Clock,
	outboxRepo kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("personnel.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("personnel.service")
	}
	return &service{
		db:        db,
		repo:      repo,
		hierarchy: hierarchyRepo,
		outbox:    outboxRepo,
		resolver:  resolver,
		clock:     clock,
		logger:    l,
	}
}

func (s *service) CreateUser(ctx context.Context, req CreateUserRequest) (UserResponse, error) {
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if !ValidRole(role) {
		return UserResponse{}, personnelerrors.ErrUnknownRole
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return UserResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := s.clock.Now()

	u := &User{
		SapID:      req.SapID,
		Name:       req.Name,
		Role:       role,
		Credential: req.Credential,
		Fields:     audit.NewFields(now),
	}
	if err := qtx.CreateUser(ctx, u); err != nil {
		if isUniqueViolation(err) {
			return UserResponse{}, personnelerrors.ErrUserAlreadyExists
		}
		return UserResponse{}, err
	}

	if s.outbox != nil {
		payload, err := json.Marshal(events.UserCreatedEvent{
			EventType:  events.UserCreated,
			SapID:      u.SapID,
			Role:       u.Role,
			OccurredAt: now,
		})
		if err != nil {
			return UserResponse{}, err
		}
		err = s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
			ID:            uuid.New().String(),
			RequestID:     contextutil.GetRequestID(ctx),
			AggregateType: "user",
			AggregateID:   u.SapID,
			EventType:     events.UserCreated,
			Topic:         events.PersonnelLifecycleTopic,
			Payload:       payload,
			Status:        kafka.OutboxStatusPending,
		})
		if err != nil {
			return UserResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return UserResponse{}, err
	}

	s.logger.Info("user created",
		zap.String("request_id", contextutil.GetRequestID(ctx)),
		zap.String("sap_id", u.SapID),
		zap.String("role", u.Role),
	)
	return userResponse(*u, nil), nil
}

// AttachSpecialization creates the single role record for a user. The
// kind has to match the user's role tag, a second attach fails, and an
// anchored kind needs a live anchor at attach time.
func (s *service) AttachSpecialization(ctx context.Context, sapID string, req AttachSpecializationRequest) (UserResponse, error) {
	kind := strings.ToUpper(strings.TrimSpace(req.Kind))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return UserResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := s.clock.Now()

	u, err := qtx.FindUserBySapID(ctx, sapID, audit.LiveOnly)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return UserResponse{}, personnelerrors.ErrUserNotFound
		}
		return UserResponse{}, err
	}

	if !kindMatchesRole(kind, u.Role) {
		return UserResponse{}, personnelerrors.ErrRoleMismatch
	}

	if _, _, exists, err := qtx.SpecializationKind(ctx, sapID); err != nil {
		return UserResponse{}, err
	} else if exists {
		return UserResponse{}, personnelerrors.ErrAlreadySpecialized
	}

	var anchor *string
	switch kind {
	case KindAdmin:
		if err := qtx.CreateAdmin(ctx, &Admin{UserID: sapID, Fields: audit.NewFields(now)}); err != nil {
			return UserResponse{}, err
		}
	case KindPlantAdmin:
		anchorID, err := s.liveAnchor(ctx, req.AnchorID, func(id string) error {
			_, err := s.hierarchy.FindPlantByID(ctx, id, audit.LiveOnly)
			return err
		})
		if err != nil {
			return UserResponse{}, err
		}
		if err := qtx.CreatePlantAdmin(ctx, &PlantAdmin{UserID: sapID, PlantID: anchorID, Fields: audit.NewFields(now)}); err != nil {
			return UserResponse{}, err
		}
		anchor = uuidRef(anchorID)
	case KindPlanner:
		anchorID, err := s.liveAnchor(ctx, req.AnchorID, func(id string) error {
			_, err := s.hierarchy.FindPlantByID(ctx, id, audit.LiveOnly)
			return err
		})
		if err != nil {
			return UserResponse{}, err
		}
		if err := qtx.CreatePlanner(ctx, &Planner{UserID: sapID, PlantID: anchorID, Fields: audit.NewFields(now)}); err != nil {
			return UserResponse{}, err
		}
		anchor = uuidRef(anchorID)
	case KindTeamLeader:
		anchorID, err := s.liveAnchor(ctx, req.AnchorID, func(id string) error {
			_, err := s.hierarchy.FindLineByID(ctx, id, audit.LiveOnly)
			return err
		})
		if err != nil {
			return UserResponse{}, err
		}
		if err := qtx.CreateTeamLeader(ctx, &TeamLeader{UserID: sapID, LineID: anchorID, Fields: audit.NewFields(now)}); err != nil {
			return UserResponse{}, err
		}
		anchor = uuidRef(anchorID)
	case KindMember:
		anchorID, err := s.liveAnchor(ctx, req.AnchorID, func(id string) error {
			_, err := s.hierarchy.FindCellByID(ctx, id, audit.LiveOnly)
			return err
		})
		if err != nil {
			return UserResponse{}, err
		}
		if err := qtx.CreateMember(ctx, &Member{UserID: sapID, CellID: anchorID, Fields: audit.NewFields(now)}); err != nil {
			return UserResponse{}, err
		}
		anchor = uuidRef(anchorID)
	default:
		return UserResponse{}, personnelerrors.ErrRoleMismatch
	}

	if err := tx.Commit(); err != nil {
		return UserResponse{}, err
	}

	return userResponse(*u, &SpecializationResponse{Kind: kind, AnchorID: anchor}), nil
}

// kindMatchesRole: ADMIN covers both global-admin tags; the anchored
// kinds require an exact tag match.
func kindMatchesRole(kind, role string) bool {
	switch kind {
	case KindAdmin:
		return role == RoleSuperAdmin || role == RoleAdmin
	default:
		return kind == role
	}
}

func (s *service) liveAnchor(ctx context.Context, raw string, find func(id string) error) (*uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, personnelerrors.ErrAnchorNotFound
	}
	if err := find(raw); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, personnelerrors.ErrAnchorNotFound
		}
		return nil, err
	}
	return &id, nil
}

func (s *service) GetUser(ctx context.Context, sapID string, liveness audit.Liveness) (UserResponse, error) {
	u, err := s.repo.FindUserBySapID(ctx, sapID, liveness)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return UserResponse{}, personnelerrors.ErrUserNotFound
		}
		return UserResponse{}, err
	}

	kind, anchor, exists, err := s.repo.SpecializationKind(ctx, sapID)
	if err != nil {
		return UserResponse{}, err
	}

	var spec *SpecializationResponse
	if exists {
		spec = &SpecializationResponse{Kind: kind, AnchorID: anchor}
	}
	return userResponse(*u, spec), nil
}

func (s *service) ListUsers(ctx context.Context, liveness audit.Liveness) ([]UserResponse, error) {
	users, err := s.repo.ListUsers(ctx, liveness)
	if err != nil {
		return nil, err
	}
	res := make([]UserResponse, len(users))
	for i, u := range users {
		res[i] = userResponse(u, nil)
	}
	return res, nil
}

func (s *service) UpdateUser(ctx context.Context, sapID string, req UpdateUserRequest) (UserResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return UserResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := s.clock.Now()

	u, err := qtx.FindUserBySapID(ctx, sapID, audit.IncludeDeleted)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return UserResponse{}, personnelerrors.ErrUserNotFound
		}
		return UserResponse{}, err
	}

	u.Name = req.Name
	if req.Credential != "" {
		u.Credential = req.Credential
	}
	u.Touch(now)

	if err := qtx.UpdateUser(ctx, u); err != nil {
		return UserResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return UserResponse{}, err
	}
	return userResponse(*u, nil), nil
}

func (s *service) SoftDeleteUser(ctx context.Context, sapID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := s.clock.Now()

	u, err := qtx.FindUserBySapID(ctx, sapID, audit.IncludeDeleted)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return personnelerrors.ErrUserNotFound
		}
		return err
	}

	if !u.IsDeleted {
		u.SoftDelete(now)
		if err := qtx.UpdateUser(ctx, u); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Resolve walks the hierarchy from the user's anchored specialization.
func (s *service) Resolve(ctx context.Context, sapID, target string, mode ancestry.Mode) (ancestry.ResultView, error) {
	targetLvl, err := hierarchy.ParseLevel(target)
	if err != nil {
		return ancestry.ResultView{}, err
	}

	kind, _, exists, err := s.repo.SpecializationKind(ctx, sapID)
	if err != nil {
		return ancestry.ResultView{}, err
	}
	if !exists {
		return ancestry.ResultView{}, personnelerrors.ErrSpecializationNotFound
	}

	var origin ancestry.Node
	switch kind {
	case KindMember:
		m, ferr := s.repo.FindMemberByUserID(ctx, sapID, audit.IncludeDeleted)
		if ferr != nil {
			return ancestry.ResultView{}, ferr
		}
		origin = m
	case KindTeamLeader:
		t, ferr := s.repo.FindTeamLeaderByUserID(ctx, sapID, audit.IncludeDeleted)
		if ferr != nil {
			return ancestry.ResultView{}, ferr
		}
		origin = t
	case KindPlanner:
		p, ferr := s.repo.FindPlannerByUserID(ctx, sapID, audit.IncludeDeleted)
		if ferr != nil {
			return ancestry.ResultView{}, ferr
		}
		origin = p
	case KindPlantAdmin:
		pa, ferr := s.repo.FindPlantAdminByUserID(ctx, sapID, audit.IncludeDeleted)
		if ferr != nil {
			return ancestry.ResultView{}, ferr
		}
		origin = pa
	default:
		// Global admins are unanchored; there is nothing to resolve.
		return ancestry.ResultView{}, personnelerrors.ErrSpecializationNotFound
	}

	res, err := s.resolver.Walk(ctx, origin, targetLvl, mode)
	if err != nil {
		return ancestry.ResultView{}, hierarchy.MapResolveError(err)
	}
	return ancestry.ViewOf(res), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(strings.ToLower(err.Error()), "duplicate key value")
}

func userResponse(u User, spec *SpecializationResponse) UserResponse {
	return UserResponse{
		SapID:          u.SapID,
		Name:           u.Name,
		Role:           u.Role,
		IsDeleted:      u.IsDeleted,
		CreatedAt:      u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      u.UpdatedAt.Format(time.RFC3339),
		Specialization: spec,
	}
}
