package personnel

import (
	"github.com/google/uuid"

	"go-mes/internal/ancestry"
	"go-mes/internal/audit"
)

// Role tags are a closed set; the literal values are shared with
// existing data and must not change.
const (
	RoleSuperAdmin = "SUPER_ADMIN"
	RoleAdmin      = "ADMIN"
	RolePlantAdmin = "PLANT_ADMIN"
	RolePlanner    = "PLANNER"
	RoleTeamLeader = "TEAM_LEADER"
	RoleMember     = "MEMBER"
)

func ValidRole(role string) bool {
	switch role {
	case RoleSuperAdmin, RoleAdmin, RolePlantAdmin, RolePlanner, RoleTeamLeader, RoleMember:
		return true
	}
	return false
}

// Specialization kinds. ADMIN serves both the SUPER_ADMIN and ADMIN
// role tags (global, unanchored); the rest match their tag exactly.
const (
	KindAdmin      = "ADMIN"
	KindPlantAdmin = "PLANT_ADMIN"
	KindPlanner    = "PLANNER"
	KindTeamLeader = "TEAM_LEADER"
	KindMember     = "MEMBER"
)

// User is keyed by the organization-assigned SAP ID. The credential is
// stored opaque; hashing and verification belong to the identity
// collaborator.
type User struct {
	SapID      string `gorm:"column:sap_id;primaryKey;size:50"`
	Name       string `gorm:"column:name;size:255;index"`
	Role       string `gorm:"column:role;size:20;not null"`
	Credential string `gorm:"column:credential;type:text;not null"`
	audit.Fields
}

func (User) TableName() string { return "users" }

type Admin struct {
	UserID string `gorm:"column:user_id;primaryKey;size:50"`
	audit.Fields
}

func (Admin) TableName() string { return "admins" }

type PlantAdmin struct {
	UserID  string     `gorm:"column:user_id;primaryKey;size:50"`
	PlantID *uuid.UUID `gorm:"column:plant_id;type:uuid;index"`
	audit.Fields
}

func (PlantAdmin) TableName() string { return "plant_admins" }

type Planner struct {
	UserID  string     `gorm:"column:user_id;primaryKey;size:50"`
	PlantID *uuid.UUID `gorm:"column:plant_id;type:uuid;index"`
	audit.Fields
}

func (Planner) TableName() string { return "planners" }

type TeamLeader struct {
	UserID string     `gorm:"column:user_id;primaryKey;size:50"`
	LineID *uuid.UUID `gorm:"column:line_id;type:uuid;index"`
	audit.Fields
}

func (TeamLeader) TableName() string { return "team_leaders" }

type Member struct {
	UserID string     `gorm:"column:user_id;primaryKey;size:50"`
	CellID *uuid.UUID `gorm:"column:cell_id;type:uuid;index"`
	audit.Fields
}

func (Member) TableName() string { return "members" }

// ancestry.Node implementations for the anchored specializations.

func (m *Member) AncestryLevel() ancestry.Level { return ancestry.LevelMember }
func (m *Member) AncestryParent() (string, bool) {
	return refID(m.CellID)
}
func (m *Member) AncestryDeleted() bool { return m.IsDeleted }

func (t *TeamLeader) AncestryLevel() ancestry.Level { return ancestry.LevelTeamLeader }
func (t *TeamLeader) AncestryParent() (string, bool) {
	return refID(t.LineID)
}
func (t *TeamLeader) AncestryDeleted() bool { return t.IsDeleted }

func (p *Planner) AncestryLevel() ancestry.Level { return ancestry.LevelPlanner }
func (p *Planner) AncestryParent() (string, bool) {
	return refID(p.PlantID)
}
func (p *Planner) AncestryDeleted() bool { return p.IsDeleted }

func (p *PlantAdmin) AncestryLevel() ancestry.Level { return ancestry.LevelPlantAdmin }
func (p *PlantAdmin) AncestryParent() (string, bool) {
	return refID(p.PlantID)
}
func (p *PlantAdmin) AncestryDeleted() bool { return p.IsDeleted }

func refID(id *uuid.UUID) (string, bool) {
	if id == nil {
		return "", false
	}
	return id.String(), true
}

func uuidRef(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	v := id.String()
	return &v
}
