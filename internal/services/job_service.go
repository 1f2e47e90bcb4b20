package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/justsurfingit/job-board/internal/models"
	"github.com/sirupsen/logrus"
)

type JobService struct {
	Store JobStore
}

func NewJobService(store JobStore) *JobService {
	return &JobService{
		Store: store,
	}
}

type NewJob struct {
	CompanyName string
	Title       string
	Description string
	JobType     string
	Location    *string
}

// CreateJob posts a job under one of the employer's companies, creating the
// company the first time its name is used.
func (s *JobService) CreateJob(ctx context.Context, actor models.Actor, req NewJob) (*models.Job, error) {
	if actor.Role != models.RoleEmployer {
		return nil, ErrForbidden
	}

	company, err := s.Store.FindOrCreateCompany(ctx, actor.ID, req.CompanyName)
	if err != nil {
		return nil, storageFailure("find or create company", err)
	}

	job := &models.Job{
		ID:          uuid.New(),
		CompanyID:   company.ID,
		EmployerID:  actor.ID,
		Title:       req.Title,
		Description: req.Description,
		JobType:     req.JobType,
		Location:    req.Location,
		IsActive:    true,
	}
	if err := s.Store.InsertJob(ctx, job); err != nil {
		return nil, storageFailure("insert job", err)
	}
	job.Company = company

	logrus.WithFields(logrus.Fields{
		"job_id":     job.ID,
		"company_id": company.ID,
	}).Info("job created")
	return job, nil
}

// ListJobs returns the active jobs, newest first. jobType narrows to one type
// when set.
func (s *JobService) ListJobs(ctx context.Context, jobType string) ([]models.Job, error) {
	jobs, err := s.Store.ListActiveJobs(ctx, jobType)
	if err != nil {
		return nil, storageFailure("list jobs", err)
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	return jobs, nil
}

// JobDetail is one job with its company, plus whether the calling job
// seeker has already applied.
type JobDetail struct {
	Job        *models.Job `json:"job"`
	HasApplied bool        `json:"has_applied"`
}

func (s *JobService) GetJob(ctx context.Context, actor models.Actor, id uuid.UUID) (*JobDetail, error) {
	job, err := s.loadJob(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &JobDetail{Job: job}
	if actor.Role == models.RoleJobSeeker {
		applied, err := s.Store.HasApplied(ctx, job.ID, actor.ID)
		if err != nil {
			return nil, storageFailure("check existing application", err)
		}
		detail.HasApplied = applied
	}
	return detail, nil
}

// UpdateJob edits a job. Only the owning employer or an admin may, and
// deactivating a job this way is how it leaves the public list.
func (s *JobService) UpdateJob(ctx context.Context, actor models.Actor, id uuid.UUID, update JobUpdate) (*models.Job, error) {
	job, err := s.loadJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManage(actor, job.Company) {
		return nil, ErrForbidden
	}

	if err := s.Store.UpdateJob(ctx, id, update); err != nil {
		return nil, lookupFailure("update job", err)
	}
	logrus.WithFields(logrus.Fields{
		"job_id":   id,
		"actor_id": actor.ID,
	}).Info("job updated")

	return s.loadJob(ctx, id)
}

func (s *JobService) loadJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	job, err := s.Store.GetJob(ctx, id)
	if err != nil {
		return nil, lookupFailure("load job", err)
	}
	company, err := s.Store.GetCompany(ctx, job.CompanyID)
	if err != nil {
		return nil, lookupFailure("load company", err)
	}
	job.Company = company
	return job, nil
}
