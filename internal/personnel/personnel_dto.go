package personnel

type CreateUserRequest struct {
	SapID      string `json:"sap_id" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Role       string `json:"role" binding:"required"`
	Credential string `json:"credential" binding:"required"`
}

type UpdateUserRequest struct {
	Name       string `json:"name" binding:"required"`
	Credential string `json:"credential"`
}

type AttachSpecializationRequest struct {
	Kind     string `json:"kind" binding:"required"`
	AnchorID string `json:"anchor_id"`
}

type SpecializationResponse struct {
	Kind     string  `json:"kind"`
	AnchorID *string `json:"anchor_id,omitempty"`
}

type UserResponse struct {
	SapID          string                  `json:"sap_id"`
	Name           string                  `json:"name"`
	Role           string                  `json:"role"`
	IsDeleted      bool                    `json:"is_deleted"`
	CreatedAt      string                  `json:"created_at"`
	UpdatedAt      string                  `json:"updated_at"`
	Specialization *SpecializationResponse `json:"specialization,omitempty"`
}
