package hierarchy

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"go-mes/internal/audit"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository

	CreatePlant(ctx context.Context, p *Plant) error
	FindPlantByID(ctx context.Context, id string, l audit.Liveness) (*Plant, error)
	ListPlants(ctx context.Context, l audit.Liveness) ([]Plant, error)
	UpdatePlant(ctx context.Context, p *Plant) error

	CreateZone(ctx context.Context, z *Zone) error
	FindZoneByID(ctx context.Context, id string, l audit.Liveness) (*Zone, error)
	ListZonesByPlant(ctx context.Context, plantID string, l audit.Liveness) ([]Zone, error)
	UpdateZone(ctx context.Context, z *Zone) error

	CreateLoop(ctx context.Context, lp *Loop) error
	FindLoopByID(ctx context.Context, id string, l audit.Liveness) (*Loop, error)
	ListLoopsByZone(ctx context.Context, zoneID string, l audit.Liveness) ([]Loop, error)
	UpdateLoop(ctx context.Context, lp *Loop) error

	CreateLine(ctx context.Context, ln *Line) error
	FindLineByID(ctx context.Context, id string, l audit.Liveness) (*Line, error)
	ListLinesByLoop(ctx context.Context, loopID string, l audit.Liveness) ([]Line, error)
	UpdateLine(ctx context.Context, ln *Line) error

	CreateCell(ctx context.Context, c *Cell) error
	FindCellByID(ctx context.Context, id string, l audit.Liveness) (*Cell, error)
	ListCellsByLine(ctx context.Context, lineID string, l audit.Liveness) ([]Cell, error)
	UpdateCell(ctx context.Context, c *Cell) error
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

// --- Plant ---

func (r *repository) CreatePlant(ctx context.Context, p *Plant) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *repository) FindPlantByID(ctx context.Context, id string, l audit.Liveness) (*Plant, error) {
	var p Plant
	err := r.db.WithContext(ctx).
		Scopes(audit.Scope(l)).
		Where("id = ?", id).
		First(&p).Error
	return &p, err
}

func (r *repository) ListPlants(ctx context.Context, l audit.Liveness) ([]Plant, error) {
	var rows []Plant
	err := r.db.WithContext(ctx).
		Scopes(audit.Scope(l)).
		Order("name ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) UpdatePlant(ctx context.Context, p *Plant) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// --- Zone ---

func (r *repository) CreateZone(ctx context.Context, z *Zone) error {
	return r.db.WithContext(ctx).Create(z).Error
}

func (r *repository) FindZoneByID(ctx context.Context, id string, l audit.Liveness) (*Zone, error) {
	var z Zone
	err := r.db.WithContext(ctx).
		Scopes(audit.Scope(l)).
		Where("id = ?", id).
		First(&z).Error
	return &z, err
}

func (r *repository) ListZonesByPlant(ctx context.Context, plantID string, l audit.Liveness) ([]Zone, error) {
	var rows []Zone
	err := r.db.WithContext(ctx).
		Scopes(audit.Scope(l)).
		Where("plant_id = ?", plantID).
		Order("name ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) UpdateZone(ctx context.Context, z *Zone) error {
	return r.db.WithContext(ctx).Save(z).Error
}

// --- Loop ---

func (r *repository) CreateLoop(ctx context.Context, lp *Loop) error {
	return r.db.WithContext(ctx).Create(lp).Error
}

func (r *repository) FindLoopByID(ctx context.Context, id string, l audit.Liveness) (*Loop, error) {
	var lp Loop
	err := r.db.WithContext(ctx).
		Scopes(audit.Scope(l)).
		Where("id = ?", id).
		First(&lp).Error
	return &lp, err
}

func (r *repository) ListLoopsByZone(ctx context.Context, zoneID string, l audit.Liveness) ([]Loop, error) {
	var rows []Loop
	err := r.db.WithContext(ctx).
		Scopes(audit.Scope(l)).
		Where("zone_id = ?", zoneID).
		Order("name ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) UpdateLoop(ctx context.Context, lp *Loop) error {
	return r.db.WithContext(ctx).Save(lp).Error
}

// --- Line ---

func (r *repository) CreateLine(ctx context.Context, ln *Line) error {
	return r.db.WithContext(ctx).Create(ln).Error
}

func (r *repository) FindLineByID(ctx context.Context, id string, l audit.Liveness) (*Line, error) {
	var ln Line
	err := r.db.WithContext(ctx).
		Scopes(audit.Scope(l)).
		Where("id = ?", id).
		First(&ln).Error
	return &ln, err
}

func (r *repository) ListLinesByLoop(ctx context.Context, loopID string, l audit.Liveness) ([]Line, error) {
	var rows []Line
	err := r.db.WithContext(ctx).
		Scopes(audit.Scope(l)).
		Where("loop_id = ?", loopID).
		Order("name ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) UpdateLine(ctx context.Context, ln *Line) error {
	return r.db.WithContext(ctx).Save(ln).Error
}

// --- Cell ---

func (r *repository) CreateCell(ctx context.Context, c *Cell) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *repository) FindCellByID(ctx context.Context, id string, l audit.Liveness) (*Cell, error) {
	var c Cell
	err := r.db.WithContext(ctx).
		Scopes(audit.Scope(l)).
		Where("id = ?", id).
		First(&c).Error
	return &c, err
}

func (r *repository) ListCellsByLine(ctx context.Context, lineID string, l audit.Liveness) ([]Cell, error) {
	var rows []Cell
	err := r.db.WithContext(ctx).
		Scopes(audit.Scope(l)).
		Where("line_id = ?", lineID).
		Order("name ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) UpdateCell(ctx context.Context, c *Cell) error {
	return r.db.WithContext(ctx).Save(c).Error
}
