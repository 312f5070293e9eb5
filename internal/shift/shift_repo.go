package shift

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"

	"go-mes/internal/audit"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository

	Create(ctx context.Context, sh *Shift) error
	FindByID(ctx context.Context, id string, l audit.Liveness) (*Shift, error)
	ListByPlant(ctx context.Context, plantID string, l audit.Liveness) ([]Shift, error)
	ListByDate(ctx context.Context, date time.Time, l audit.Liveness) ([]Shift, error)
	Update(ctx context.Context, sh *Shift) error
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

func (r *repository) Create(ctx context.Context, sh *Shift) error {
	return r.db.WithContext(ctx).Create(sh).Error
}

func (r *repository) FindByID(ctx context.Context, id string, l audit.Liveness) (*Shift, error) {
	var sh Shift
	err := r.db.WithContext(ctx).
		Scopes(audit.Scope(l)).
		Where("id = ?", id).
		First(&sh).Error
	return &sh, err
}

func (r *repository) ListByPlant(ctx context.Context, plantID string, l audit.Liveness) ([]Shift, error) {
	var rows []Shift
	err := r.db.WithContext(ctx).
		Scopes(audit.Scope(l)).
		Where("plant_id = ?", plantID).
		Order("date DESC, shift ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListByDate(ctx context.Context, date time.Time, l audit.Liveness) ([]Shift, error) {
	var rows []Shift
	err := r.db.WithContext(ctx).
		Scopes(audit.Scope(l)).
		Where("date = ?", date).
		Order("shift ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) Update(ctx context.Context, sh *Shift) error {
	return r.db.WithContext(ctx).Save(sh).Error
}
