package production

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"go-mes/internal/audit"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository

	Create(ctx context.Context, p *Production) error
	FindByID(ctx context.Context, id string, l audit.Liveness) (*Production, error)
	ListByLine(ctx context.Context, lineID string, l audit.Liveness) ([]Production, error)
	ListByShift(ctx context.Context, shiftID string, l audit.Liveness) ([]Production, error)
	Update(ctx context.Context, p *Production) error

	CreateLoss(ctx context.Context, ls *Loss) error
	FindLossByID(ctx context.Context, id string, l audit.Liveness) (*Loss, error)
	ListLossesByProduction(ctx context.Context, productionID string, l audit.Liveness) ([]Loss, error)
	UpdateLoss(ctx context.Context, ls *Loss) error

	CreateLossReason(ctx context.Context, lr *LossReason) error
	FindLossReasonByID(ctx context.Context, id int, l audit.Liveness) (*LossReason, error)
	ListLossReasons(ctx context.Context, l audit.Liveness) ([]LossReason, error)
	UpdateLossReason(ctx context.Context, lr *LossReason) error
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

// --- Production ---

func (r *repository) Create(ctx context.Context, p *Production) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *repository) FindByID(ctx context.Context, id string, l audit.Liveness) (*Production, error) {
	var p Production
	err := r.db.WithContext(ctx).
		Scopes(audit.Scope(l)).
		Where("id = ?", id).
		First(&p).Error
	return &p, err
}

func (r *repository) ListByLine(ctx context.Context, lineID string, l audit.Liveness) ([]Production, error) {
	var rows []Production
	err := r.db.WithContext(ctx).
		Scopes(audit.Scope(l)).
		Where("line_id = ?", lineID).
		Order("hour ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListByShift(ctx context.Context, shiftID string, l audit.Liveness) ([]Production, error) {
	var rows []Production
	err := r.db.WithContext(ctx).
		Scopes(audit.Scope(l)).
		Where("shift_id = ?", shiftID).
		Order("hour ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) Update(ctx context.Context, p *Production) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// --- Loss ---

func (r *repository) CreateLoss(ctx context.Context, ls *Loss) error {
	return r.db.WithContext(ctx).Create(ls).Error
}

func (r *repository) FindLossByID(ctx context.Context, id string, l audit.Liveness) (*Loss, error) {
	var ls Loss
	err := r.db.WithContext(ctx).
		Scopes(audit.Scope(l)).
		Where("id = ?", id).
		First(&ls).Error
	return &ls, err
}

func (r *repository) ListLossesByProduction(ctx context.Context, productionID string, l audit.Liveness) ([]Loss, error) {
	var rows []Loss
	err := r.db.WithContext(ctx).
		Scopes(audit.Scope(l)).
		Where("production_id = ?", productionID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) UpdateLoss(ctx context.Context, ls *Loss) error {
	return r.db.WithContext(ctx).Save(ls).Error
}

// --- LossReason ---

func (r *repository) CreateLossReason(ctx context.Context, lr *LossReason) error {
	return r.db.WithContext(ctx).Create(lr).Error
}

func (r *repository) FindLossReasonByID(ctx context.Context, id int, l audit.Liveness) (*LossReason, error) {
	var lr LossReason
	err := r.db.WithContext(ctx).
		Scopes(audit.Scope(l)).
		Where("id = ?", id).
		First(&lr).Error
	return &lr, err
}

func (r *repository) ListLossReasons(ctx context.Context, l audit.Liveness) ([]LossReason, error) {
	var rows []LossReason
	err := r.db.WithContext(ctx).
		Scopes(audit.Scope(l)).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) UpdateLossReason(ctx context.Context, lr *LossReason) error {
	return r.db.WithContext(ctx).Save(lr).Error
}
