package attendance

type CreateAttendanceRequest struct {
	MemberID         string `json:"member_id" binding:"required"`
	ShiftID          string `json:"shift_id" binding:"required,uuid"`
	TeamLeaderID     string `json:"team_leader_id" binding:"required"`
	AttendanceTypeID int    `json:"attendance_type_id" binding:"required"`
	WorkingCellID    string `json:"working_cell_id" binding:"required,uuid"`
}

type UpdateAttendanceRequest struct {
	TeamLeaderID     string `json:"team_leader_id"`
	AttendanceTypeID *int   `json:"attendance_type_id"`
	WorkingCellID    string `json:"working_cell_id" binding:"omitempty,uuid"`
}

type AttendanceResponse struct {
	ID               string  `json:"id"`
	MemberID         *string `json:"member_id,omitempty"`
	ShiftID          *string `json:"shift_id,omitempty"`
	TeamLeaderID     *string `json:"team_leader_id,omitempty"`
	AttendanceTypeID *int    `json:"attendance_type_id,omitempty"`
	WorkingCellID    *string `json:"working_cell_id,omitempty"`
	IsDeleted        bool    `json:"is_deleted"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

type CreateAttendanceTypeRequest struct {
	ID    int    `json:"id" binding:"required"`
	Title string `json:"title" binding:"required"`
	Color string `json:"color" binding:"required"`
}

type AttendanceTypeResponse struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Color     string `json:"color"`
	IsDeleted bool   `json:"is_deleted"`
}
