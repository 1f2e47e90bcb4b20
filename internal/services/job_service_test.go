package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/justsurfingit/job-board/internal/models"
	"github.com/justsurfingit/job-board/internal/services"
	"github.com/justsurfingit/job-board/internal/services/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateJobReusesCompany(t *testing.T) {
	store := memstore.New()
	svc := services.NewJobService(store)
	employer := models.Actor{ID: uuid.New(), Role: models.RoleEmployer}
	ctx := context.Background()

	first, err := svc.CreateJob(ctx, employer, services.NewJob{CompanyName: "Acme", Title: "Backend Intern"})
	require.NoError(t, err)
	second, err := svc.CreateJob(ctx, employer, services.NewJob{CompanyName: "Acme", Title: "SRE"})
	require.NoError(t, err)

	assert.Equal(t, first.CompanyID, second.CompanyID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 1, store.CompanyCount())

	// same name, different employer
	other := models.Actor{ID: uuid.New(), Role: models.RoleEmployer}
	third, err := svc.CreateJob(ctx, other, services.NewJob{CompanyName: "Acme", Title: "SRE"})
	require.NoError(t, err)
	assert.NotEqual(t, first.CompanyID, third.CompanyID)

	company, err := store.GetCompany(ctx, third.CompanyID)
	require.NoError(t, err)
	assert.Equal(t, other.ID, company.EmployerID)
}

func TestCreateJobRequiresEmployer(t *testing.T) {
	svc := services.NewJobService(memstore.New())

	for _, role := range []models.Role{models.RoleJobSeeker, models.RoleAdmin} {
		_, err := svc.CreateJob(context.Background(), models.Actor{ID: uuid.New(), Role: role}, services.NewJob{CompanyName: "Acme", Title: "x"})
		assert.ErrorIs(t, err, services.ErrForbidden, role)
	}
}

func TestListJobsOnlyActive(t *testing.T) {
	store := memstore.New()
	svc := services.NewJobService(store)
	company := models.Company{ID: uuid.New(), EmployerID: uuid.New(), Name: "Acme"}
	store.AddCompany(company)

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	older := models.Job{ID: uuid.New(), CompanyID: company.ID, Title: "Backend Intern", JobType: "internship", IsActive: true, CreatedAt: base}
	newer := models.Job{ID: uuid.New(), CompanyID: company.ID, Title: "SRE", JobType: "full_time", IsActive: true, CreatedAt: base.Add(time.Hour)}
	closed := models.Job{ID: uuid.New(), CompanyID: company.ID, Title: "Filled", JobType: "full_time", CreatedAt: base.Add(2 * time.Hour)}
	for _, j := range []models.Job{older, newer, closed} {
		store.AddJob(j)
	}

	jobs, err := svc.ListJobs(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, newer.ID, jobs[0].ID)
	assert.Equal(t, older.ID, jobs[1].ID)
	require.NotNil(t, jobs[0].Company)
	assert.Equal(t, "Acme", jobs[0].Company.Name)

	jobs, err = svc.ListJobs(context.Background(), "internship")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, older.ID, jobs[0].ID)

	jobs, err = svc.ListJobs(context.Background(), "contract")
	require.NoError(t, err)
	assert.NotNil(t, jobs)
	assert.Empty(t, jobs)
}

func TestGetJobReportsHasApplied(t *testing.T) {
	f := newFixture(t)
	svc := services.NewJobService(f.store)
	ctx := context.Background()

	detail, err := svc.GetJob(ctx, f.applicant, f.job.ID)
	require.NoError(t, err)
	assert.False(t, detail.HasApplied)
	assert.Equal(t, "Acme", detail.Job.Company.Name)

	f.apply(t)
	detail, err = svc.GetJob(ctx, f.applicant, f.job.ID)
	require.NoError(t, err)
	assert.True(t, detail.HasApplied)

	// only job seekers apply
	detail, err = svc.GetJob(ctx, f.employer, f.job.ID)
	require.NoError(t, err)
	assert.False(t, detail.HasApplied)

	_, err = svc.GetJob(ctx, f.applicant, uuid.New())
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestUpdateJobOwnerOrAdmin(t *testing.T) {
	f := newFixture(t)
	svc := services.NewJobService(f.store)
	ctx := context.Background()

	title := "Backend Engineer"
	job, err := svc.UpdateJob(ctx, f.employer, f.job.ID, services.JobUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", job.Title)

	inactive := false
	_, err = svc.UpdateJob(ctx, f.other, f.job.ID, services.JobUpdate{IsActive: &inactive})
	assert.ErrorIs(t, err, services.ErrForbidden)
	_, err = svc.UpdateJob(ctx, f.applicant, f.job.ID, services.JobUpdate{IsActive: &inactive})
	assert.ErrorIs(t, err, services.ErrForbidden)

	active := true
	job, err = svc.UpdateJob(ctx, f.admin, f.job.ID, services.JobUpdate{IsActive: &active})
	require.NoError(t, err)
	assert.True(t, job.IsActive)
	assert.Equal(t, "Backend Engineer", job.Title)

	_, err = svc.UpdateJob(ctx, f.admin, uuid.New(), services.JobUpdate{IsActive: &active})
	assert.ErrorIs(t, err, services.ErrNotFound)
}
