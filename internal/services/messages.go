package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/justsurfingit/job-board/internal/models"
)

const (
	statusUpdateTitle = "Application Status Update"
	statusUpdateType  = "application_update"
	statusUpdateLink  = "/dashboard?tab=applications"

	newApplicationTitle = "New Application Received"
	newApplicationType  = "application"
	newApplicationLink  = "/employer/applications"
)

// statusMessage returns the applicant-facing text for a transition into
// status. A transition back to pending has no message.
func statusMessage(status models.ApplicationStatus, jobTitle string) (string, bool) {
	switch status {
	case models.StatusPending:
		return "", false
	case models.StatusReviewed:
		return fmt.Sprintf("Your application for %s has been reviewed", jobTitle), true
	case models.StatusShortlisted:
		return fmt.Sprintf("Great news! You've been shortlisted for %s", jobTitle), true
	case models.StatusAccepted:
		return fmt.Sprintf("Congratulations! Your application for %s has been accepted", jobTitle), true
	case models.StatusRejected:
		return fmt.Sprintf("Your application for %s has been reviewed", jobTitle), true
	}
	return "", false
}

func statusNotification(app *models.Application, job *models.Job) (*models.Notification, bool) {
	msg, ok := statusMessage(app.Status, job.Title)
	if !ok {
		return nil, false
	}
	link := statusUpdateLink
	return &models.Notification{
		UserID:  app.JobSeekerID,
		Title:   statusUpdateTitle,
		Message: msg,
		Type:    statusUpdateType,
		Link:    &link,
	}, true
}

func newApplicationNotification(employerID uuid.UUID, job *models.Job) *models.Notification {
	link := newApplicationLink
	return &models.Notification{
		UserID:  employerID,
		Title:   newApplicationTitle,
		Message: fmt.Sprintf("Someone applied for %s", job.Title),
		Type:    newApplicationType,
		Link:    &link,
	}
}
