package hierarchy

type CreatePlantRequest struct {
	Name string `json:"name" binding:"required"`
}

type CreateNodeRequest struct {
	Name     string `json:"name" binding:"required"`
	ParentID string `json:"parent_id" binding:"required,uuid"`
}

type RenameRequest struct {
	Name string `json:"name" binding:"required"`
}

type ReparentRequest struct {
	ParentID string `json:"parent_id" binding:"required,uuid"`
}

type NodeResponse struct {
	ID        string  `json:"id"`
	Level     string  `json:"level"`
	Name      string  `json:"name"`
	ParentID  *string `json:"parent_id,omitempty"`
	IsDeleted bool    `json:"is_deleted"`
	DeletedAt *string `json:"deleted_at,omitempty"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}
