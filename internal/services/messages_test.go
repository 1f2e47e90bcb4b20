package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/justsurfingit/job-board/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusMessage(t *testing.T) {
	cases := map[models.ApplicationStatus]string{
		models.StatusReviewed:    "Your application for Backend Intern has been reviewed",
		models.StatusShortlisted: "Great news! You've been shortlisted for Backend Intern",
		models.StatusAccepted:    "Congratulations! Your application for Backend Intern has been accepted",
		models.StatusRejected:    "Your application for Backend Intern has been reviewed",
	}
	for status, want := range cases {
		got, ok := statusMessage(status, "Backend Intern")
		assert.True(t, ok, status)
		assert.Equal(t, want, got)
	}

	_, ok := statusMessage(models.StatusPending, "Backend Intern")
	assert.False(t, ok)
	_, ok = statusMessage(models.ApplicationStatus("hired"), "Backend Intern")
	assert.False(t, ok)
}

func TestStatusNotificationAddressedToApplicant(t *testing.T) {
	app := &models.Application{JobSeekerID: uuid.New(), Status: models.StatusShortlisted}
	job := &models.Job{Title: "Backend Intern"}

	n, ok := statusNotification(app, job)
	require.True(t, ok)
	assert.Equal(t, app.JobSeekerID, n.UserID)
	assert.Equal(t, "Application Status Update", n.Title)
	assert.Equal(t, "application_update", n.Type)
	require.NotNil(t, n.Link)
	assert.Equal(t, "/dashboard?tab=applications", *n.Link)
}

func TestNewApplicationNotification(t *testing.T) {
	employer := uuid.New()
	n := newApplicationNotification(employer, &models.Job{Title: "Data Analyst"})

	assert.Equal(t, employer, n.UserID)
	assert.Equal(t, "Someone applied for Data Analyst", n.Message)
	assert.Equal(t, "application", n.Type)
	assert.Equal(t, "/employer/applications", *n.Link)
}

func TestEmailCompose(t *testing.T) {
	s := NewEmailService(nil, nil, "Job Board <noreply@example.com>", "https://jobs.example.com/")
	link := "/dashboard?tab=applications"
	msg := s.compose("seeker@example.com", &models.Notification{
		Title:   "Application Status Update",
		Message: "Your application for Backend Intern has been reviewed",
		Link:    &link,
	})

	assert.Contains(t, msg, "From: Job Board <noreply@example.com>\r\n")
	assert.Contains(t, msg, "To: seeker@example.com\r\n")
	assert.Contains(t, msg, "Subject: Application Status Update\r\n")
	assert.Contains(t, msg, "\r\n\r\nYour application for Backend Intern has been reviewed")
	assert.Contains(t, msg, "https://jobs.example.com/dashboard?tab=applications")
}

func TestRetryStopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := retry(ctx, 3, time.Hour, func() error {
		calls++
		cancel()
		return errors.New("503 backend unavailable")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestRetrySucceedsAfterTransientError(t *testing.T) {
	calls := 0
	err := retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("connection reset")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}
