package hierarchy

import (
	"github.com/google/uuid"

	"go-mes/internal/ancestry"
	"go-mes/internal/audit"
)

// The five levels form a strict tree: Plant > Zone > Loop > Line >
// Cell. A child holds exactly one parent reference and nothing caches
// transitive ancestors; those are resolved on read.
//
// Parent columns are nullable on purpose. Creation requires a live
// parent, but a reference can legitimately point at a soft-deleted row
// after a reorganization, and resolution has to surface that rather
// than hide it.

type Plant struct {
	ID   uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name string    `gorm:"column:name;size:255;not null;index"`
	audit.Fields
}

func (Plant) TableName() string { return "plants" }

type Zone struct {
	ID      uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Name    string     `gorm:"column:name;size:255;not null;index"`
	PlantID *uuid.UUID `gorm:"column:plant_id;type:uuid;index"`
	audit.Fields
}

func (Zone) TableName() string { return "zones" }

type Loop struct {
	ID     uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Name   string     `gorm:"column:name;size:255;not null;index"`
	ZoneID *uuid.UUID `gorm:"column:zone_id;type:uuid;index"`
	audit.Fields
}

func (Loop) TableName() string { return "loops" }

type Line struct {
	ID     uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Name   string     `gorm:"column:name;size:255;not null;index"`
	LoopID *uuid.UUID `gorm:"column:loop_id;type:uuid;index"`
	audit.Fields
}

func (Line) TableName() string { return "lines" }

type Cell struct {
	ID     uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Name   string     `gorm:"column:name;size:255;not null;index"`
	LineID *uuid.UUID `gorm:"column:line_id;type:uuid;index"`
	audit.Fields
}

func (Cell) TableName() string { return "cells" }

// ancestry.Node implementations

func (p *Plant) AncestryLevel() ancestry.Level  { return ancestry.LevelPlant }
func (p *Plant) AncestryParent() (string, bool) { return "", false }
func (p *Plant) AncestryDeleted() bool          { return p.IsDeleted }

func (z *Zone) AncestryLevel() ancestry.Level { return ancestry.LevelZone }
func (z *Zone) AncestryParent() (string, bool) {
	return refID(z.PlantID)
}
func (z *Zone) AncestryDeleted() bool { return z.IsDeleted }

func (l *Loop) AncestryLevel() ancestry.Level { return ancestry.LevelLoop }
func (l *Loop) AncestryParent() (string, bool) {
	return refID(l.ZoneID)
}
func (l *Loop) AncestryDeleted() bool { return l.IsDeleted }

func (l *Line) AncestryLevel() ancestry.Level { return ancestry.LevelLine }
func (l *Line) AncestryParent() (string, bool) {
	return refID(l.LoopID)
}
func (l *Line) AncestryDeleted() bool { return l.IsDeleted }

func (c *Cell) AncestryLevel() ancestry.Level { return ancestry.LevelCell }
func (c *Cell) AncestryParent() (string, bool) {
	return refID(c.LineID)
}
func (c *Cell) AncestryDeleted() bool { return c.IsDeleted }

func refID(id *uuid.UUID) (string, bool) {
	if id == nil {
		return "", false
	}
	return id.String(), true
}
