package dtos

type JobCreationRequest struct {
	CompanyName string `json:"company_name" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`

	// Optional Fields
	JobType  string  `json:"job_type" binding:"omitempty,oneof=full_time part_time contract internship"`
	Location *string `json:"location"`
}

// JobUpdateRequest is a partial update; absent fields keep their value.
type JobUpdateRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1"`
	Description *string `json:"description" binding:"omitempty,min=1"`
	JobType     *string `json:"job_type" binding:"omitempty,oneof=full_time part_time contract internship"`
	Location    *string `json:"location"`
	IsActive    *bool   `json:"is_active"`
}

type JobListQuery struct {
	JobType string `form:"job_type" binding:"omitempty,oneof=full_time part_time contract internship"`
}
