package attendance

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"go-mes/internal/audit"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository

	Create(ctx context.Context, a *Attendance) error
	FindByID(ctx context.Context, id string, l audit.Liveness) (*Attendance, error)
	ListByShift(ctx context.Context, shiftID string, l audit.Liveness) ([]Attendance, error)
	ListByMember(ctx context.Context, memberID string, l audit.Liveness) ([]Attendance, error)
	Update(ctx context.Context, a *Attendance) error

	CreateType(ctx context.Context, at *AttendanceType) error
	FindTypeByID(ctx context.Context, id int, l audit.Liveness) (*AttendanceType, error)
	ListTypes(ctx context.Context, l audit.Liveness) ([]AttendanceType, error)
	UpdateType(ctx context.Context, at *AttendanceType) error
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

func (r *repository) Create(ctx context.Context, a *Attendance) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *repository) FindByID(ctx context.Context, id string, l audit.Liveness) (*Attendance, error) {
	var a Attendance
	err := r.db.WithContext(ctx).
		Scopes(audit.Scope(l)).
		Where("id = ?", id).
		First(&a).Error
	return &a, err
}

func (r *repository) ListByShift(ctx context.Context, shiftID string, l audit.Liveness) ([]Attendance, error) {
	var rows []Attendance
	err := r.db.WithContext(ctx).
		Scopes(audit.Scope(l)).
		Where("shift_id = ?", shiftID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListByMember(ctx context.Context, memberID string, l audit.Liveness) ([]Attendance, error) {
	var rows []Attendance
	err := r.db.WithContext(ctx).
		Scopes(audit.Scope(l)).
		Where("member_id = ?", memberID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) Update(ctx context.Context, a *Attendance) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *repository) CreateType(ctx context.Context, at *AttendanceType) error {
	return r.db.WithContext(ctx).Create(at).Error
}

func (r *repository) FindTypeByID(ctx context.Context, id int, l audit.Liveness) (*AttendanceType, error) {
	var at AttendanceType
	err := r.db.WithContext(ctx).
		Scopes(audit.Scope(l)).
		Where("id = ?", id).
		First(&at).Error
	return &at, err
}

func (r *repository) ListTypes(ctx context.Context, l audit.Liveness) ([]AttendanceType, error) {
	var rows []AttendanceType
	err := r.db.WithContext(ctx).
		Scopes(audit.Scope(l)).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) UpdateType(ctx context.Context, at *AttendanceType) error {
	return r.db.WithContext(ctx).Save(at).Error
}
