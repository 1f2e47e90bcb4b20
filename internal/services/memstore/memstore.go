// Package memstore is an in-memory implementation of the service store
// interfaces, used by tests and local experiments.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/justsurfingit/job-board/internal/models"
	"github.com/justsurfingit/job-board/internal/services"
)

type Store struct {
	mu            sync.Mutex
	profiles      map[uuid.UUID]models.Profile
	companies     map[uuid.UUID]models.Company
	jobs          map[uuid.UUID]models.Job
	applications  map[uuid.UUID]models.Application
	notifications []models.Notification

	// Fail* make the matching operation return the error, for failure paths.
	FailInsertApplication  error
	FailUpdateStatus       error
	FailInsertNotification error
	FailList               error
}

func New() *Store {
	return &Store{
		profiles:     map[uuid.UUID]models.Profile{},
		companies:    map[uuid.UUID]models.Company{},
		jobs:         map[uuid.UUID]models.Job{},
		applications: map[uuid.UUID]models.Application{},
	}
}

func (s *Store) AddProfile(p models.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p
}

func (s *Store) AddCompany(c models.Company) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companies[c.ID] = c
}

func (s *Store) AddJob(j models.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[j.ID] = j
}

func (s *Store) AddApplication(a models.Application) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applications[a.ID] = a
}

// Application returns a copy of the stored row.
func (s *Store) Application(id uuid.UUID) (models.Application, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.applications[id]
	return a, ok
}

func (s *Store) ApplicationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.applications)
}

// Notifications returns every stored notification in insert order.
func (s *Store) Notifications() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Notification(nil), s.notifications...)
}

func (s *Store) GetApplication(_ context.Context, id uuid.UUID) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.applications[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	return &a, nil
}

func (s *Store) GetJob(_ context.Context, id uuid.UUID) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	return &j, nil
}

func (s *Store) GetCompany(_ context.Context, id uuid.UUID) (*models.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.companies[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	return &c, nil
}

func (s *Store) HasApplied(_ context.Context, jobID, jobSeekerID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasApplied(jobID, jobSeekerID), nil
}

func (s *Store) hasApplied(jobID, jobSeekerID uuid.UUID) bool {
	for _, a := range s.applications {
		if a.JobID == jobID && a.JobSeekerID == jobSeekerID {
			return true
		}
	}
	return false
}

func (s *Store) InsertApplication(_ context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailInsertApplication != nil {
		return s.FailInsertApplication
	}
	if s.hasApplied(app.JobID, app.JobSeekerID) {
		return services.ErrConflict
	}
	s.applications[app.ID] = *app
	return nil
}

func (s *Store) UpdateApplicationStatus(_ context.Context, id uuid.UUID, status models.ApplicationStatus, reviewedAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailUpdateStatus != nil {
		return s.FailUpdateStatus
	}
	a, ok := s.applications[id]
	if !ok {
		return services.ErrNotFound
	}
	a.Status = status
	a.ReviewedAt = reviewedAt
	s.applications[id] = a
	return nil
}

func (s *Store) ListApplications(_ context.Context, filter services.ApplicationFilter) ([]models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailList != nil {
		return nil, s.FailList
	}
	var out []models.Application
	for _, a := range s.applications {
		if filter.JobSeekerID != nil && a.JobSeekerID != *filter.JobSeekerID {
			continue
		}
		job, hasJob := s.jobs[a.JobID]
		if filter.EmployerID != nil {
			if !hasJob || s.companies[job.CompanyID].EmployerID != *filter.EmployerID {
				continue
			}
		}
		if hasJob {
			a.Job = &job
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppliedAt.After(out[j].AppliedAt) })
	return out, nil
}

func (s *Store) FindOrCreateCompany(_ context.Context, employerID uuid.UUID, name string) (*models.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.companies {
		if c.EmployerID == employerID && c.Name == name {
			return &c, nil
		}
	}
	c := models.Company{ID: uuid.New(), EmployerID: employerID, Name: name}
	s.companies[c.ID] = c
	return &c, nil
}

func (s *Store) InsertJob(_ context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	s.jobs[job.ID] = *job
	return nil
}

func (s *Store) ListActiveJobs(_ context.Context, jobType string) ([]models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailList != nil {
		return nil, s.FailList
	}
	var out []models.Job
	for _, j := range s.jobs {
		if !j.IsActive || (jobType != "" && j.JobType != jobType) {
			continue
		}
		if c, ok := s.companies[j.CompanyID]; ok {
			j.Company = &c
		}
		out = append(out, j)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) UpdateJob(_ context.Context, id uuid.UUID, u services.JobUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return services.ErrNotFound
	}
	if u.Title != nil {
		j.Title = *u.Title
	}
	if u.Description != nil {
		j.Description = *u.Description
	}
	if u.JobType != nil {
		j.JobType = *u.JobType
	}
	if u.Location != nil {
		loc := *u.Location
		j.Location = &loc
	}
	if u.IsActive != nil {
		j.IsActive = *u.IsActive
	}
	s.jobs[id] = j
	return nil
}

// CompanyCount is the number of stored companies.
func (s *Store) CompanyCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.companies)
}

func (s *Store) InsertNotification(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailInsertNotification != nil {
		return s.FailInsertNotification
	}
	s.notifications = append(s.notifications, *n)
	return nil
}

func (s *Store) ListNotifications(_ context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailList != nil {
		return nil, s.FailList
	}
	var out []models.Notification
	for i := len(s.notifications) - 1; i >= 0; i-- {
		if s.notifications[i].UserID == userID {
			out = append(out, s.notifications[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) CountUnread(_ context.Context, userID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, x := range s.notifications {
		if x.UserID == userID && !x.IsRead {
			n++
		}
	}
	return n, nil
}

func (s *Store) MarkRead(_ context.Context, userID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id && s.notifications[i].UserID == userID {
			s.notifications[i].IsRead = true
			return nil
		}
	}
	return services.ErrNotFound
}

func (s *Store) MarkAllRead(_ context.Context, userID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for i := range s.notifications {
		if s.notifications[i].UserID == userID && !s.notifications[i].IsRead {
			s.notifications[i].IsRead = true
			n++
		}
	}
	return n, nil
}

func (s *Store) GetProfile(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	return &p, nil
}

func (s *Store) UpdateRole(_ context.Context, id uuid.UUID, role models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return services.ErrNotFound
	}
	p.Role = role
	s.profiles[id] = p
	return nil
}

var (
	_ services.ApplicationStore  = (*Store)(nil)
	_ services.JobStore          = (*Store)(nil)
	_ services.NotificationStore = (*Store)(nil)
	_ services.UserStore         = (*Store)(nil)
)
