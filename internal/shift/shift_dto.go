package shift

type CreateShiftRequest struct {
	Date        string `json:"date" binding:"required"`
	DayNight    string `json:"day_night" binding:"required"`
	Designation string `json:"shift" binding:"required"`
	PlantID     string `json:"plant_id" binding:"required,uuid"`
	PlannerID   string `json:"planner_id" binding:"required"`
}

type UpdateShiftRequest struct {
	Date        string `json:"date"`
	DayNight    string `json:"day_night"`
	Designation string `json:"shift"`
}

type ShiftResponse struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	DayNight    string  `json:"day_night"`
	Designation string  `json:"shift"`
	PlantID     *string `json:"plant_id,omitempty"`
	PlannerID   *string `json:"planner_id,omitempty"`
	IsDeleted   bool    `json:"is_deleted"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}
