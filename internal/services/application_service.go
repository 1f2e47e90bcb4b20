package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/justsurfingit/job-board/internal/models"
	"github.com/sirupsen/logrus"
)

// Notifier is the side-effect sink used by the lifecycle service.
type Notifier interface {
	Deliver(ctx context.Context, n *models.Notification) error
}

// ApplicationService owns the application status lifecycle: who may move an
// application, what the move persists, and which notification it fires.
type ApplicationService struct {
	Store    ApplicationStore
	Notifier Notifier
	Now      func() time.Time
}

func NewApplicationService(store ApplicationStore, notifier Notifier) *ApplicationService {
	return &ApplicationService{
		Store:    store,
		Notifier: notifier,
		Now:      time.Now,
	}
}

type NewApplication struct {
	JobID       uuid.UUID
	ApplicantID uuid.UUID
	CoverLetter *string
	ResumeURL   *string
}

// CreateApplication files a pending application and tells the job's employer.
// The duplicate pre-check is backed by a unique index, so a racing second
// insert also comes back as ErrConflict.
func (s *ApplicationService) CreateApplication(ctx context.Context, req NewApplication) (*models.Application, error) {
	log := logrus.WithFields(logrus.Fields{
		"job_id":       req.JobID,
		"applicant_id": req.ApplicantID,
	})

	applied, err := s.Store.HasApplied(ctx, req.JobID, req.ApplicantID)
	if err != nil {
		return nil, storageFailure("check existing application", err)
	}
	if applied {
		return nil, ErrConflict
	}

	app := &models.Application{
		ID:          uuid.New(),
		JobID:       req.JobID,
		JobSeekerID: req.ApplicantID,
		Status:      models.StatusPending,
		CoverLetter: req.CoverLetter,
		ResumeURL:   req.ResumeURL,
		AppliedAt:   s.Now(),
	}
	if err := s.Store.InsertApplication(ctx, app); err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, ErrConflict
		}
		return nil, storageFailure("insert application", err)
	}
	log = log.WithField("application_id", app.ID)
	log.Info("application created")

	job, company, err := s.loadOwnership(ctx, app.JobID)
	if err != nil {
		log.WithError(err).Info("job employer not resolvable, skipping notification")
		return app, nil
	}
	// the application is already stored; a client hanging up must not drop the notification
	if err := s.Notifier.Deliver(context.WithoutCancel(ctx), newApplicationNotification(company.EmployerID, job)); err != nil {
		log.WithError(err).Warn("failed to record new application notification")
	}
	return app, nil
}

// RequestTransition moves an application to target on behalf of actor.
// Nothing is written unless actor is an admin or the job's owning employer.
func (s *ApplicationService) RequestTransition(ctx context.Context, applicationID uuid.UUID, actor models.Actor, target models.ApplicationStatus) (*models.Application, error) {
	if !target.Valid() {
		return nil, ErrInvalidStatus
	}
	log := logrus.WithFields(logrus.Fields{
		"application_id": applicationID,
		"actor_id":       actor.ID,
		"status":         target,
	})

	app, err := s.Store.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, lookupFailure("load application", err)
	}
	job, company, err := s.loadOwnership(ctx, app.JobID)
	if err != nil {
		return nil, err
	}
	if !canManage(actor, company) {
		log.Warn("transition refused")
		return nil, ErrForbidden
	}

	var reviewedAt *time.Time
	if target != models.StatusPending {
		now := s.Now()
		reviewedAt = &now
	}
	if err := s.Store.UpdateApplicationStatus(ctx, app.ID, target, reviewedAt); err != nil {
		return nil, lookupFailure("update application status", err)
	}
	log.WithField("from", app.Status).Info("application status updated")
	app.Status = target
	app.ReviewedAt = reviewedAt

	if n, ok := statusNotification(app, job); ok {
		if err := s.Notifier.Deliver(context.WithoutCancel(ctx), n); err != nil {
			log.WithError(err).Warn("failed to record status notification")
		}
	}
	return app, nil
}

// ListApplications returns the applications visible to actor, newest first.
func (s *ApplicationService) ListApplications(ctx context.Context, actor models.Actor) ([]models.Application, error) {
	var filter ApplicationFilter
	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleEmployer:
		filter.EmployerID = &actor.ID
	case models.RoleJobSeeker:
		filter.JobSeekerID = &actor.ID
	default:
		return nil, ErrForbidden
	}

	apps, err := s.Store.ListApplications(ctx, filter)
	if err != nil {
		return nil, storageFailure("list applications", err)
	}
	if apps == nil {
		apps = []models.Application{}
	}
	return apps, nil
}

func (s *ApplicationService) loadOwnership(ctx context.Context, jobID uuid.UUID) (*models.Job, *models.Company, error) {
	job, err := s.Store.GetJob(ctx, jobID)
	if err != nil {
		return nil, nil, lookupFailure("load job", err)
	}
	company, err := s.Store.GetCompany(ctx, job.CompanyID)
	if err != nil {
		return nil, nil, lookupFailure("load company", err)
	}
	return job, company, nil
}

func canManage(actor models.Actor, company *models.Company) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleEmployer:
		return company.EmployerID == actor.ID
	}
	return false
}

func lookupFailure(op string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	return storageFailure(op, err)
}
