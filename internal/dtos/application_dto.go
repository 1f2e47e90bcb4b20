package dtos

import "github.com/google/uuid"

type ApplicationCreationRequest struct {
	JobID       uuid.UUID `json:"job_id" binding:"required"`
	CoverLetter *string   `json:"cover_letter"`
	ResumeURL   *string   `json:"resume_url" binding:"omitempty,url"`
}

// StatusUpdateRequest carries the raw status; the service decides whether it is valid.
type StatusUpdateRequest struct {
	Status string `json:"status" binding:"required"`
}

type NotificationListQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}
