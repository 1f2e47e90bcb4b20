package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/justsurfingit/job-board/internal/models"
	"github.com/justsurfingit/job-board/internal/services"
	"github.com/justsurfingit/job-board/internal/services/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func newClock() *clock { return &clock{t: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)} }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	store     *memstore.Store
	clock     *clock
	apps      *services.ApplicationService
	employer  models.Actor
	other     models.Actor
	admin     models.Actor
	applicant models.Actor
	company   models.Company
	job       models.Job
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:     memstore.New(),
		clock:     newClock(),
		employer:  models.Actor{ID: uuid.New(), Role: models.RoleEmployer},
		other:     models.Actor{ID: uuid.New(), Role: models.RoleEmployer},
		admin:     models.Actor{ID: uuid.New(), Role: models.RoleAdmin},
		applicant: models.Actor{ID: uuid.New(), Role: models.RoleJobSeeker},
	}
	f.company = models.Company{ID: uuid.New(), EmployerID: f.employer.ID, Name: "Acme"}
	f.job = models.Job{ID: uuid.New(), CompanyID: f.company.ID, EmployerID: f.employer.ID, Title: "Backend Intern"}
	f.store.AddCompany(f.company)
	f.store.AddJob(f.job)
	f.store.AddCompany(models.Company{ID: uuid.New(), EmployerID: f.other.ID, Name: "Other Co"})

	notifications := services.NewNotificationService(f.store)
	notifications.Now = f.clock.Now
	f.apps = services.NewApplicationService(f.store, notifications)
	f.apps.Now = f.clock.Now
	return f
}

func (f *fixture) apply(t *testing.T) *models.Application {
	t.Helper()
	app, err := f.apps.CreateApplication(context.Background(), services.NewApplication{
		JobID:       f.job.ID,
		ApplicantID: f.applicant.ID,
	})
	require.NoError(t, err)
	return app
}

func (f *fixture) notificationsFor(id uuid.UUID) []models.Notification {
	var out []models.Notification
	for _, n := range f.store.Notifications() {
		if n.UserID == id {
			out = append(out, n)
		}
	}
	return out
}

func TestApplyThenShortlistEndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	app := f.apply(t)
	assert.Equal(t, models.StatusPending, app.Status)
	assert.Nil(t, app.ReviewedAt)
	assert.Equal(t, f.clock.Now(), app.AppliedAt)

	employerInbox := f.notificationsFor(f.employer.ID)
	require.Len(t, employerInbox, 1)
	assert.Equal(t, "Someone applied for Backend Intern", employerInbox[0].Message)
	assert.Equal(t, "New Application Received", employerInbox[0].Title)
	assert.False(t, employerInbox[0].IsRead)

	f.clock.Advance(time.Hour)
	updated, err := f.apps.RequestTransition(ctx, app.ID, f.employer, models.StatusShortlisted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusShortlisted, updated.Status)
	require.NotNil(t, updated.ReviewedAt)
	assert.Equal(t, f.clock.Now(), *updated.ReviewedAt)

	stored, _ := f.store.Application(app.ID)
	assert.Equal(t, models.StatusShortlisted, stored.Status)
	assert.Equal(t, app.AppliedAt, stored.AppliedAt)

	applicantInbox := f.notificationsFor(f.applicant.ID)
	require.Len(t, applicantInbox, 1)
	assert.Equal(t, "Great news! You've been shortlisted for Backend Intern", applicantInbox[0].Message)
	assert.Equal(t, "application_update", applicantInbox[0].Type)

	_, err = f.apps.RequestTransition(ctx, app.ID, f.other, models.StatusRejected)
	assert.ErrorIs(t, err, services.ErrForbidden)
	after, _ := f.store.Application(app.ID)
	assert.Equal(t, stored, after)
	assert.Len(t, f.notificationsFor(f.applicant.ID), 1)
}

func TestRequestTransitionForbidden(t *testing.T) {
	f := newFixture(t)
	app := f.apply(t)
	before := len(f.store.Notifications())

	for _, actor := range []models.Actor{f.other, f.applicant, {ID: f.employer.ID, Role: models.RoleJobSeeker}} {
		_, err := f.apps.RequestTransition(context.Background(), app.ID, actor, models.StatusAccepted)
		assert.ErrorIs(t, err, services.ErrForbidden)
	}

	stored, _ := f.store.Application(app.ID)
	assert.Equal(t, models.StatusPending, stored.Status)
	assert.Nil(t, stored.ReviewedAt)
	assert.Len(t, f.store.Notifications(), before)
}

func TestAdminMayTransitionAnyApplication(t *testing.T) {
	f := newFixture(t)
	app := f.apply(t)

	updated, err := f.apps.RequestTransition(context.Background(), app.ID, f.admin, models.StatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, updated.Status)

	inbox := f.notificationsFor(f.applicant.ID)
	require.Len(t, inbox, 1)
	assert.Equal(t, "Congratulations! Your application for Backend Intern has been accepted", inbox[0].Message)
}

func TestRepeatedTransitionRestampsReviewedAt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.apply(t)

	first, err := f.apps.RequestTransition(ctx, app.ID, f.employer, models.StatusReviewed)
	require.NoError(t, err)
	firstStamp := *first.ReviewedAt

	f.clock.Advance(10 * time.Minute)
	second, err := f.apps.RequestTransition(ctx, app.ID, f.employer, models.StatusReviewed)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReviewed, second.Status)
	assert.True(t, second.ReviewedAt.After(firstStamp))
	assert.Len(t, f.notificationsFor(f.applicant.ID), 2)
}

func TestAnyStatusMayFollowAnyOther(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.apply(t)

	path := []models.ApplicationStatus{
		models.StatusAccepted, models.StatusRejected, models.StatusShortlisted,
		models.StatusPending, models.StatusReviewed,
	}
	for _, st := range path {
		updated, err := f.apps.RequestTransition(ctx, app.ID, f.employer, st)
		require.NoError(t, err, st)
		assert.Equal(t, st, updated.Status)
		assert.Equal(t, st == models.StatusPending, updated.ReviewedAt == nil, st)
	}
}

func TestTransitionToPendingSendsNothing(t *testing.T) {
	f := newFixture(t)
	app := f.apply(t)
	before := len(f.store.Notifications())

	updated, err := f.apps.RequestTransition(context.Background(), app.ID, f.employer, models.StatusPending)
	require.NoError(t, err)
	assert.Nil(t, updated.ReviewedAt)
	assert.Len(t, f.store.Notifications(), before)
}

func TestRequestTransitionInvalidStatus(t *testing.T) {
	f := newFixture(t)
	app := f.apply(t)

	_, err := f.apps.RequestTransition(context.Background(), app.ID, f.employer, models.ApplicationStatus("hired"))
	assert.ErrorIs(t, err, services.ErrInvalidStatus)

	stored, _ := f.store.Application(app.ID)
	assert.Equal(t, models.StatusPending, stored.Status)
}

func TestRequestTransitionNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.apps.RequestTransition(ctx, uuid.New(), f.admin, models.StatusReviewed)
	assert.ErrorIs(t, err, services.ErrNotFound)

	orphanJob := models.Application{ID: uuid.New(), JobID: uuid.New(), JobSeekerID: f.applicant.ID, Status: models.StatusPending}
	f.store.AddApplication(orphanJob)
	_, err = f.apps.RequestTransition(ctx, orphanJob.ID, f.admin, models.StatusReviewed)
	assert.ErrorIs(t, err, services.ErrNotFound)

	job := models.Job{ID: uuid.New(), CompanyID: uuid.New(), Title: "Ghost"}
	f.store.AddJob(job)
	orphanCompany := models.Application{ID: uuid.New(), JobID: job.ID, JobSeekerID: f.applicant.ID, Status: models.StatusPending}
	f.store.AddApplication(orphanCompany)
	_, err = f.apps.RequestTransition(ctx, orphanCompany.ID, f.admin, models.StatusReviewed)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestRequestTransitionStorageFailure(t *testing.T) {
	f := newFixture(t)
	app := f.apply(t)
	before := len(f.store.Notifications())

	dbErr := errors.New("connection reset by peer")
	f.store.FailUpdateStatus = dbErr

	_, err := f.apps.RequestTransition(context.Background(), app.ID, f.employer, models.StatusRejected)
	assert.ErrorIs(t, err, services.ErrStorage)
	assert.ErrorIs(t, err, dbErr)
	assert.Len(t, f.store.Notifications(), before)
}

func TestNotificationFailureDoesNotUndoTransition(t *testing.T) {
	f := newFixture(t)
	app := f.apply(t)
	f.store.FailInsertNotification = errors.New("notifications table locked")

	updated, err := f.apps.RequestTransition(context.Background(), app.ID, f.employer, models.StatusShortlisted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusShortlisted, updated.Status)

	stored, _ := f.store.Application(app.ID)
	assert.Equal(t, models.StatusShortlisted, stored.Status)
}

func TestCreateApplicationConflict(t *testing.T) {
	f := newFixture(t)
	f.apply(t)

	_, err := f.apps.CreateApplication(context.Background(), services.NewApplication{
		JobID:       f.job.ID,
		ApplicantID: f.applicant.ID,
	})
	assert.ErrorIs(t, err, services.ErrConflict)
	assert.Equal(t, 1, f.store.ApplicationCount())
}

func TestCreateApplicationUniqueViolationIsConflict(t *testing.T) {
	f := newFixture(t)
	f.store.FailInsertApplication = services.ErrConflict

	_, err := f.apps.CreateApplication(context.Background(), services.NewApplication{
		JobID:       f.job.ID,
		ApplicantID: f.applicant.ID,
	})
	assert.ErrorIs(t, err, services.ErrConflict)
	assert.NotErrorIs(t, err, services.ErrStorage)
}

func TestCreateApplicationWithoutResolvableEmployer(t *testing.T) {
	f := newFixture(t)
	job := models.Job{ID: uuid.New(), CompanyID: uuid.New(), Title: "Orphan"}
	f.store.AddJob(job)
	cover := "Hello"

	app, err := f.apps.CreateApplication(context.Background(), services.NewApplication{
		JobID:       job.ID,
		ApplicantID: f.applicant.ID,
		CoverLetter: &cover,
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello", *app.CoverLetter)
	assert.Empty(t, f.store.Notifications())
}

func TestCreateApplicationStorageFailure(t *testing.T) {
	f := newFixture(t)
	f.store.FailInsertApplication = errors.New("disk full")

	_, err := f.apps.CreateApplication(context.Background(), services.NewApplication{
		JobID:       f.job.ID,
		ApplicantID: f.applicant.ID,
	})
	var se *services.StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "insert application", se.Op)
	assert.Empty(t, f.store.Notifications())
}

func TestListApplicationsByRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mine := f.apply(t)

	otherJob := models.Job{ID: uuid.New(), CompanyID: uuid.New(), Title: "Elsewhere"}
	f.store.AddJob(otherJob)
	otherSeeker := uuid.New()
	f.store.AddApplication(models.Application{ID: uuid.New(), JobID: otherJob.ID, JobSeekerID: otherSeeker, Status: models.StatusPending})

	seekerApps, err := f.apps.ListApplications(ctx, f.applicant)
	require.NoError(t, err)
	require.Len(t, seekerApps, 1)
	assert.Equal(t, mine.ID, seekerApps[0].ID)
	require.NotNil(t, seekerApps[0].Job)
	assert.Equal(t, "Backend Intern", seekerApps[0].Job.Title)

	employerApps, err := f.apps.ListApplications(ctx, f.employer)
	require.NoError(t, err)
	require.Len(t, employerApps, 1)
	assert.Equal(t, mine.ID, employerApps[0].ID)

	none, err := f.apps.ListApplications(ctx, f.other)
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.NotNil(t, none)

	all, err := f.apps.ListApplications(ctx, f.admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

type ctxRecorder struct {
	errs []error
}

func (r *ctxRecorder) Deliver(ctx context.Context, _ *models.Notification) error {
	r.errs = append(r.errs, ctx.Err())
	return nil
}

func TestNotificationsOutliveCancelledRequest(t *testing.T) {
	f := newFixture(t)
	rec := &ctxRecorder{}
	f.apps.Notifier = rec

	ctx, cancel := context.WithCancel(context.Background())
	app, err := f.apps.CreateApplication(ctx, services.NewApplication{JobID: f.job.ID, ApplicantID: f.applicant.ID})
	require.NoError(t, err)

	// client gone before the status change
	cancel()
	_, err = f.apps.RequestTransition(ctx, app.ID, f.employer, models.StatusAccepted)
	require.NoError(t, err)

	require.Len(t, rec.errs, 2)
	for _, e := range rec.errs {
		assert.NoError(t, e)
	}
}
