package production

import (
	"github.com/google/uuid"

	"go-mes/internal/ancestry"
	"go-mes/internal/audit"
)

// Hour-of-shift slots. Twelve fixed labels shared with existing data;
// the literal values must be preserved exactly.
const (
	Hour01 = "HOUR-01"
	Hour02 = "HOUR-02"
	Hour03 = "HOUR-03"
	Hour04 = "HOUR-04"
	Hour05 = "HOUR-05"
	Hour06 = "HOUR-06"
	Hour07 = "HOUR-07"
	Hour08 = "HOUR-08"
	Hour09 = "HOUR-09"
	Hour10 = "HOUR-10"
	Hour11 = "HOUR-11"
	Hour12 = "HOUR-12"
)

func ValidHour(v string) bool {
	switch v {
	case Hour01, Hour02, Hour03, Hour04, Hour05, Hour06,
		Hour07, Hour08, Hour09, Hour10, Hour11, Hour12:
		return true
	}
	return false
}

type Production struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Plan         int        `gorm:"column:plan;not null"`
	Achievement  int        `gorm:"column:achievement;not null"`
	Scraps       int        `gorm:"column:scraps;not null"`
	Defects      int        `gorm:"column:defects;not null"`
	Flash        int        `gorm:"column:flash;not null"`
	Hour         string     `gorm:"column:hour;size:10;not null"`
	LineID       *uuid.UUID `gorm:"column:line_id;type:uuid;index"`
	ShiftID      *uuid.UUID `gorm:"column:shift_id;type:uuid;index"`
	PlannerID    *string    `gorm:"column:planner_id;size:50"`
	TeamLeaderID *string    `gorm:"column:team_leader_id;size:50"`
	audit.Fields
}

func (Production) TableName() string { return "productions" }

func (p *Production) AncestryLevel() ancestry.Level { return ancestry.LevelProduction }
func (p *Production) AncestryParent() (string, bool) {
	if p.LineID == nil {
		return "", false
	}
	return p.LineID.String(), true
}
func (p *Production) AncestryDeleted() bool { return p.IsDeleted }

// LossReason is reference data. The ID is assigned by the caller so it
// can stay aligned with plant-floor reason codes.
type LossReason struct {
	ID         int    `gorm:"column:id;primaryKey"`
	Title      string `gorm:"column:title;size:100;not null"`
	Department string `gorm:"column:department;size:100;not null"`
	audit.Fields
}

func (LossReason) TableName() string { return "loss_reasons" }

type Loss struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Amount       int        `gorm:"column:amount;not null"`
	ProductionID *uuid.UUID `gorm:"column:production_id;type:uuid;index"`
	LossReasonID *int       `gorm:"column:loss_reason_id"`
	audit.Fields
}

func (Loss) TableName() string { return "losses" }

func (l *Loss) AncestryLevel() ancestry.Level { return ancestry.LevelLoss }
func (l *Loss) AncestryParent() (string, bool) {
	if l.ProductionID == nil {
		return "", false
	}
	return l.ProductionID.String(), true
}
func (l *Loss) AncestryDeleted() bool { return l.IsDeleted }
