package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the stage of an application.
type Status string

const (
	StatusSubmitted     Status = "Submitted"
	StatusInterviewing  Status = "Interviewing"
	StatusRejected      Status = "Rejected"
	StatusOfferReceived Status = "Offer Received"
)

// Statuses lists every valid status in pipeline order.
var Statuses = []Status{StatusSubmitted, StatusInterviewing, StatusRejected, StatusOfferReceived}

// ParseStatus accepts a status name case-insensitively; "offer" is
// accepted as a shorthand for Offer Received.
func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if equalFold(string(st), s) {
			return st, nil
		}
	}
	if equalFold(s, "offer") {
		return StatusOfferReceived, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Application is a job application and its interview journal.
type Application struct {
	ID             string         `json:"id"`
	Company        string         `json:"company"`
	Position       string         `json:"position"`
	Status         Status         `json:"status"`
	SubmissionDate time.Time      `json:"submissionDate"`
	ResumeID       string         `json:"resumeId,omitempty"`
	Notes          []string       `json:"notes"`
	JournalEntries []JournalEntry `json:"journalEntries"`
	JobURL         string         `json:"jobUrl,omitempty"`
	JobDescription string         `json:"jobDescription,omitempty"`
	CoverLetter    string         `json:"coverLetter,omitempty"`
}

// NewApplication returns a Submitted application with a fresh identity.
func NewApplication(company, position string, submitted time.Time) Application {
	return Application{
		ID:             uuid.NewString(),
		Company:        company,
		Position:       position,
		Status:         StatusSubmitted,
		SubmissionDate: submitted.UTC(),
		Notes:          []string{},
		JournalEntries: []JournalEntry{},
	}
}

func (a Application) RecordID() string { return a.ID }

// JournalEntry is an interview note owned by its Application.
type JournalEntry struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	Content   string    `json:"content"`
	Questions []string  `json:"questions"`
	Outcome   string    `json:"outcome"`
}

func NewJournalEntry(date time.Time, content string, questions []string, outcome string) JournalEntry {
	if questions == nil {
		questions = []string{}
	}
	return JournalEntry{
		ID:        uuid.NewString(),
		Date:      date.UTC(),
		Content:   content,
		Questions: questions,
		Outcome:   outcome,
	}
}
