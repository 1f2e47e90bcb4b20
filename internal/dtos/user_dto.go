package dtos

type RoleUpdateRequest struct {
	Role string `json:"role" binding:"required"`
}
