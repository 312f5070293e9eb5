package shift

import (
	"time"

	"github.com/google/uuid"

	"go-mes/internal/ancestry"
	"go-mes/internal/audit"
)

// Closed enumerations. The literal values are shared with existing
// data and must be preserved exactly.
const (
	DayNightDay   = "DAY"
	DayNightNight = "NIGHT"
)

const (
	DesignationA = "SHIFT-A"
	DesignationB = "SHIFT-B"
	DesignationC = "SHIFT-C"
)

func ValidDayNight(v string) bool {
	return v == DayNightDay || v == DayNightNight
}

func ValidDesignation(v string) bool {
	switch v {
	case DesignationA, DesignationB, DesignationC:
		return true
	}
	return false
}

type Shift struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Date        time.Time  `gorm:"column:date;type:date;not null;index"`
	DayNight    string     `gorm:"column:day_night;size:10;not null"`
	Designation string     `gorm:"column:shift;size:10;not null"`
	PlantID     *uuid.UUID `gorm:"column:plant_id;type:uuid;index"`
	PlannerID   *string    `gorm:"column:planner_id;size:50;index"`
	audit.Fields
}

func (Shift) TableName() string { return "shifts" }

func (s *Shift) AncestryLevel() ancestry.Level { return ancestry.LevelShift }
func (s *Shift) AncestryParent() (string, bool) {
	if s.PlantID == nil {
		return "", false
	}
	return s.PlantID.String(), true
}
func (s *Shift) AncestryDeleted() bool { return s.IsDeleted }
