package attendance

import (
	"github.com/google/uuid"

	"go-mes/internal/ancestry"
	"go-mes/internal/audit"
)

// AttendanceType is reference data. The ID is assigned by the caller
// so it can stay aligned with payroll attendance codes.
type AttendanceType struct {
	ID    int    `gorm:"column:id;primaryKey"`
	Title string `gorm:"column:title;size:100;not null"`
	Color string `gorm:"column:color;size:20;not null"`
	audit.Fields
}

func (AttendanceType) TableName() string { return "attendance_types" }

// Attendance records one member's presence for one shift. The working
// cell is where the member actually worked that shift and is tracked
// independently of the member's home cell.
type Attendance struct {
	ID               uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	MemberID         *string    `gorm:"column:member_id;size:50;index"`
	ShiftID          *uuid.UUID `gorm:"column:shift_id;type:uuid;index"`
	TeamLeaderID     *string    `gorm:"column:team_leader_id;size:50"`
	AttendanceTypeID *int       `gorm:"column:attendance_type_id"`
	WorkingCellID    *uuid.UUID `gorm:"column:working_cell_id;type:uuid;index"`
	audit.Fields
}

func (Attendance) TableName() string { return "attendances" }

// AssignedOrigin exposes the attendance as a walk origin whose first
// hop is the member. From there the walk follows the member's home
// cell up the hierarchy.
func (a *Attendance) AssignedOrigin() ancestry.Node { return assignedOrigin{a} }

// WorkingOrigin exposes the attendance as a walk origin whose first
// hop is the working cell. The two origins never share hops: an
// attendance resolves to two plants when the member worked away from
// their home cell.
func (a *Attendance) WorkingOrigin() ancestry.Node { return workingOrigin{a} }

type assignedOrigin struct{ a *Attendance }

func (o assignedOrigin) AncestryLevel() ancestry.Level { return ancestry.LevelAttendanceAssigned }
func (o assignedOrigin) AncestryParent() (string, bool) {
	if o.a.MemberID == nil {
		return "", false
	}
	return *o.a.MemberID, true
}
func (o assignedOrigin) AncestryDeleted() bool { return o.a.IsDeleted }

type workingOrigin struct{ a *Attendance }

func (o workingOrigin) AncestryLevel() ancestry.Level { return ancestry.LevelAttendanceWorking }
func (o workingOrigin) AncestryParent() (string, bool) {
	if o.a.WorkingCellID == nil {
		return "", false
	}
	return o.a.WorkingCellID.String(), true
}
func (o workingOrigin) AncestryDeleted() bool { return o.a.IsDeleted }
