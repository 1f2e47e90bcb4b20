package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile mirrors the auth user. Only the role and email are read here.
type Profile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Email    string  `gorm:"not null" json:"email"`
	FullName *string `json:"full_name"`
	Role     Role    `gorm:"type:text;not null;default:'job_seeker'" json:"role"`
}

type Company struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	EmployerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_companies_employer_name" json:"employer_id"`
	Name       string    `gorm:"not null;uniqueIndex:idx_companies_employer_name" json:"name"`

	Jobs []Job `json:"jobs,omitempty"`
}

type Job struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	// Foreign Key
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index" json:"company_id"`
	// Association: GORM needs Preload() to fill this
	Company *Company `json:"company,omitempty"`

	EmployerID  uuid.UUID `gorm:"type:uuid;index" json:"employer_id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	JobType     string    `json:"job_type"`
	Location    *string   `json:"location"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
}

// Application is one job seeker's submission against one job.
// The composite unique index enforces one application per (job, applicant).
type Application struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	JobID       uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_applications_job_seeker" json:"job_id"`
	JobSeekerID uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_applications_job_seeker;index" json:"job_seeker_id"`
	Status      ApplicationStatus `gorm:"type:text;not null;default:'pending'" json:"status"`
	CoverLetter *string           `gorm:"type:text" json:"cover_letter"`
	ResumeURL   *string           `json:"resume_url"`
	AppliedAt   time.Time         `gorm:"not null" json:"applied_at"`
	ReviewedAt  *time.Time        `json:"reviewed_at"`

	Job *Job `json:"job,omitempty"`
}

type Notification struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Title     string    `gorm:"not null" json:"title"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Type      string    `json:"type"`
	Link      *string   `json:"link"`
	IsRead    bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
