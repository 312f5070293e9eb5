package production

type CreateProductionRequest struct {
	Plan         int    `json:"plan" binding:"gte=0"`
	Achievement  int    `json:"achievement" binding:"gte=0"`
	Scraps       int    `json:"scraps" binding:"gte=0"`
	Defects      int    `json:"defects" binding:"gte=0"`
	Flash        int    `json:"flash" binding:"gte=0"`
	Hour         string `json:"hour" binding:"required"`
	LineID       string `json:"line_id" binding:"required,uuid"`
	ShiftID      string `json:"shift_id" binding:"required,uuid"`
	PlannerID    string `json:"planner_id" binding:"required"`
	TeamLeaderID string `json:"team_leader_id"`
}

type UpdateProductionRequest struct {
	Plan        *int   `json:"plan" binding:"omitempty,gte=0"`
	Achievement *int   `json:"achievement" binding:"omitempty,gte=0"`
	Scraps      *int   `json:"scraps" binding:"omitempty,gte=0"`
	Defects     *int   `json:"defects" binding:"omitempty,gte=0"`
	Flash       *int   `json:"flash" binding:"omitempty,gte=0"`
	Hour        string `json:"hour"`
}

type ProductionResponse struct {
	ID           string  `json:"id"`
	Plan         int     `json:"plan"`
	Achievement  int     `json:"achievement"`
	Scraps       int     `json:"scraps"`
	Defects      int     `json:"defects"`
	Flash        int     `json:"flash"`
	Hour         string  `json:"hour"`
	LineID       *string `json:"line_id,omitempty"`
	ShiftID      *string `json:"shift_id,omitempty"`
	PlannerID    *string `json:"planner_id,omitempty"`
	TeamLeaderID *string `json:"team_leader_id,omitempty"`
	IsDeleted    bool    `json:"is_deleted"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

type CreateLossRequest struct {
	Amount       int    `json:"amount" binding:"gte=0"`
	ProductionID string `json:"production_id" binding:"required,uuid"`
	LossReasonID int    `json:"loss_reason_id" binding:"required"`
}

type LossResponse struct {
	ID           string  `json:"id"`
	Amount       int     `json:"amount"`
	ProductionID *string `json:"production_id,omitempty"`
	LossReasonID *int    `json:"loss_reason_id,omitempty"`
	IsDeleted    bool    `json:"is_deleted"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

type CreateLossReasonRequest struct {
	ID         int    `json:"id" binding:"required"`
	Title      string `json:"title" binding:"required"`
	Department string `json:"department" binding:"required"`
}

type LossReasonResponse struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	Department string `json:"department"`
	IsDeleted  bool   `json:"is_deleted"`
}
