package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/justsurfingit/job-board/internal/models"
	"gorm.io/gorm"
)

// ApplicationFilter narrows ListApplications. A zero filter lists everything.
type ApplicationFilter struct {
	JobSeekerID *uuid.UUID
	EmployerID  *uuid.UUID
}

// ApplicationStore is the durable store of applications and the job/company
// rows they hang off. Lookups return ErrNotFound for missing rows and
// InsertApplication returns ErrConflict on a (job, applicant) collision.
type ApplicationStore interface {
	GetApplication(ctx context.Context, id uuid.UUID) (*models.Application, error)
	GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
	GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error)
	HasApplied(ctx context.Context, jobID, jobSeekerID uuid.UUID) (bool, error)
	InsertApplication(ctx context.Context, app *models.Application) error
	UpdateApplicationStatus(ctx context.Context, id uuid.UUID, status models.ApplicationStatus, reviewedAt *time.Time) error
	ListApplications(ctx context.Context, filter ApplicationFilter) ([]models.Application, error)
}

// JobUpdate lists the job columns to change; nil fields are left alone.
type JobUpdate struct {
	Title       *string
	Description *string
	JobType     *string
	Location    *string
	IsActive    *bool
}

func (u JobUpdate) columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if u.Title != nil {
		cols["title"] = *u.Title
	}
	if u.Description != nil {
		cols["description"] = *u.Description
	}
	if u.JobType != nil {
		cols["job_type"] = *u.JobType
	}
	if u.Location != nil {
		cols["location"] = *u.Location
	}
	if u.IsActive != nil {
		cols["is_active"] = *u.IsActive
	}
	return cols
}

// JobStore backs job posting and browsing. FindOrCreateCompany is keyed on
// (employer, name).
type JobStore interface {
	FindOrCreateCompany(ctx context.Context, employerID uuid.UUID, name string) (*models.Company, error)
	InsertJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
	GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error)
	HasApplied(ctx context.Context, jobID, jobSeekerID uuid.UUID) (bool, error)
	// ListActiveJobs returns active jobs newest first, with their company.
	// An empty jobType matches every type.
	ListActiveJobs(ctx context.Context, jobType string) ([]models.Job, error)
	UpdateJob(ctx context.Context, id uuid.UUID, update JobUpdate) error
}

type NotificationStore interface {
	InsertNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	// MarkRead returns ErrNotFound when no notification with that id belongs to userID.
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type ProfileStore interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

type UserStore interface {
	ProfileStore
	UpdateRole(ctx context.Context, id uuid.UUID, role models.Role) error
}

// GormStore implements the store interfaces on top of Postgres.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	}
	return err
}

func (s *GormStore) GetApplication(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	var app models.Application
	if err := s.DB.WithContext(ctx).First(&app, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &app, nil
}

func (s *GormStore) GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var job models.Job
	if err := s.DB.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &job, nil
}

func (s *GormStore) GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	var company models.Company
	if err := s.DB.WithContext(ctx).First(&company, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &company, nil
}

func (s *GormStore) HasApplied(ctx context.Context, jobID, jobSeekerID uuid.UUID) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Application{}).
		Where("job_id = ? AND job_seeker_id = ?", jobID, jobSeekerID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *GormStore) InsertApplication(ctx context.Context, app *models.Application) error {
	return translate(s.DB.WithContext(ctx).Create(app).Error)
}

func (s *GormStore) UpdateApplicationStatus(ctx context.Context, id uuid.UUID, status models.ApplicationStatus, reviewedAt *time.Time) error {
	res := s.DB.WithContext(ctx).Model(&models.Application{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      status,
			"reviewed_at": reviewedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) ListApplications(ctx context.Context, filter ApplicationFilter) ([]models.Application, error) {
	q := s.DB.WithContext(ctx).Model(&models.Application{}).Preload("Job")
	if filter.JobSeekerID != nil {
		q = q.Where("applications.job_seeker_id = ?", *filter.JobSeekerID)
	}
	if filter.EmployerID != nil {
		q = q.Joins("JOIN jobs ON jobs.id = applications.job_id").
			Joins("JOIN companies ON companies.id = jobs.company_id").
			Where("companies.employer_id = ?", *filter.EmployerID)
	}

	var apps []models.Application
	if err := q.Order("applications.applied_at DESC").Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func (s *GormStore) FindOrCreateCompany(ctx context.Context, employerID uuid.UUID, name string) (*models.Company, error) {
	var company models.Company
	// it creates an entry if it doesn't already exist
	err := s.DB.WithContext(ctx).
		Where(models.Company{EmployerID: employerID, Name: name}).
		FirstOrCreate(&company).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// lost the insert race on idx_companies_employer_name; the row exists now
		company = models.Company{}
		err = s.DB.WithContext(ctx).
			Where(models.Company{EmployerID: employerID, Name: name}).
			First(&company).Error
	}
	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (s *GormStore) InsertJob(ctx context.Context, job *models.Job) error {
	return s.DB.WithContext(ctx).Create(job).Error
}

func (s *GormStore) ListActiveJobs(ctx context.Context, jobType string) ([]models.Job, error) {
	q := s.DB.WithContext(ctx).Preload("Company").Where("is_active = ?", true)
	if jobType != "" {
		q = q.Where("job_type = ?", jobType)
	}
	var jobs []models.Job
	if err := q.Order("created_at DESC").Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (s *GormStore) UpdateJob(ctx context.Context, id uuid.UUID, update JobUpdate) error {
	cols := update.columns()
	if len(cols) == 0 {
		return nil
	}
	res := s.DB.WithContext(ctx).Model(&models.Job{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) InsertNotification(ctx context.Context, n *models.Notification) error {
	return translate(s.DB.WithContext(ctx).Create(n).Error)
}

func (s *GormStore) ListNotifications(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	var out []models.Notification
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *GormStore) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (s *GormStore) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	res := s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (s *GormStore) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	if err := s.DB.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *GormStore) UpdateRole(ctx context.Context, id uuid.UUID, role models.Role) error {
	res := s.DB.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

var (
	_ ApplicationStore  = (*GormStore)(nil)
	_ JobStore          = (*GormStore)(nil)
	_ NotificationStore = (*GormStore)(nil)
	_ UserStore         = (*GormStore)(nil)
)
