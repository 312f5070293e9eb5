package personnel

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/gorm"

	"go-mes/internal/audit"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository

	CreateUser(ctx context.Context, u *User) error
	FindUserBySapID(ctx context.Context, sapID string, l audit.Liveness) (*User, error)
	ListUsers(ctx context.Context, l audit.Liveness) ([]User, error)
	UpdateUser(ctx context.Context, u *User) error

	CreateAdmin(ctx context.Context, a *Admin) error
	CreatePlantAdmin(ctx context.Context, pa *PlantAdmin) error
	CreatePlanner(ctx context.Context, p *Planner) error
	CreateTeamLeader(ctx context.Context, t *TeamLeader) error
	CreateMember(ctx context.Context, m *Member) error

	FindPlannerByUserID(ctx context.Context, sapID string, l audit.Liveness) (*Planner, error)
	FindTeamLeaderByUserID(ctx context.Context, sapID string, l audit.Liveness) (*TeamLeader, error)
	FindMemberByUserID(ctx context.Context, sapID string, l audit.Liveness) (*Member, error)
	FindPlantAdminByUserID(ctx context.Context, sapID string, l audit.Liveness) (*PlantAdmin, error)
	FindAdminByUserID(ctx context.Context, sapID string, l audit.Liveness) (*Admin, error)

	// SpecializationKind reports which specialization record exists for
	// the user, regardless of liveness. ok is false when none exists.
	SpecializationKind(ctx context.Context, sapID string) (kind string, anchorID *string, ok bool, err error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) CreateUser(ctx context.Context, u *User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *repository) FindUserBySapID(ctx context.Context, sapID string, l audit.Liveness) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).
		Scopes(audit.Scope(l)).
		Where("sap_id = ?", sapID).
		First(&u).Error
	return &u, err
}

func (r *repository) ListUsers(ctx context.Context, l audit.Liveness) ([]User, error) {
	var rows []User
	err := r.db.WithContext(ctx).
		Scopes(audit.Scope(l)).
		Order("sap_id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) UpdateUser(ctx context.Context, u *User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *repository) CreateAdmin(ctx context.Context, a *Admin) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *repository) CreatePlantAdmin(ctx context.Context, pa *PlantAdmin) error {
	return r.db.WithContext(ctx).Create(pa).Error
}

func (r *repository) CreatePlanner(ctx context.Context, p *Planner) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *repository) CreateTeamLeader(ctx context.Context, t *TeamLeader) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *repository) CreateMember(ctx context.Context, m *Member) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *repository) FindPlannerByUserID(ctx context.Context, sapID string, l audit.Liveness) (*Planner, error) {
	var p Planner
	err := r.db.WithContext(ctx).
		Scopes(audit.Scope(l)).
		Where("user_id = ?", sapID).
		First(&p).Error
	return &p, err
}

func (r *repository) FindTeamLeaderByUserID(ctx context.Context, sapID string, l audit.Liveness) (*TeamLeader, error) {
	var t TeamLeader
	err := r.db.WithContext(ctx).
		Scopes(audit.Scope(l)).
		Where("user_id = ?", sapID).
		First(&t).Error
	return &t, err
}

func (r *repository) FindMemberByUserID(ctx context.Context, sapID string, l audit.Liveness) (*Member, error) {
	var m Member
	err := r.db.WithContext(ctx).
		Scopes(audit.Scope(l)).
		Where("user_id = ?", sapID).
		First(&m).Error
	return &m, err
}

func (r *repository) FindPlantAdminByUserID(ctx context.Context, sapID string, l audit.Liveness) (*PlantAdmin, error) {
	var pa PlantAdmin
	err := r.db.WithContext(ctx).
		Scopes(audit.Scope(l)).
		Where("user_id = ?", sapID).
		First(&pa).Error
	return &pa, err
}

func (r *repository) FindAdminByUserID(ctx context.Context, sapID string, l audit.Liveness) (*Admin, error) {
	var a Admin
	err := r.db.WithContext(ctx).
		Scopes(audit.Scope(l)).
		Where("user_id = ?", sapID).
		First(&a).Error
	return &a, err
}

func (r *repository) SpecializationKind(ctx context.Context, sapID string) (string, *string, bool, error) {
	if _, err := r.FindAdminByUserID(ctx, sapID, audit.IncludeDeleted); err == nil {
		return KindAdmin, nil, true, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, false, err
	}

	if pa, err := r.FindPlantAdminByUserID(ctx, sapID, audit.IncludeDeleted); err == nil {
		return KindPlantAdmin, uuidRef(pa.PlantID), true, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, false, err
	}

	if p, err := r.FindPlannerByUserID(ctx, sapID, audit.IncludeDeleted); err == nil {
		return KindPlanner, uuidRef(p.PlantID), true, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, false, err
	}

	if t, err := r.FindTeamLeaderByUserID(ctx, sapID, audit.IncludeDeleted); err == nil {
		return KindTeamLeader, uuidRef(t.LineID), true, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, false, err
	}

	if m, err := r.FindMemberByUserID(ctx, sapID, audit.IncludeDeleted); err == nil {
		return KindMember, uuidRef(m.CellID), true, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, false, err
	}

	return "", nil, false, nil
}
