// Package store defines the persisted record and conversation collaborators
// and their Postgres implementation.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Role distinguishes the two user populations.
type Role string

const (
	RoleStudent Role = "student"
	RoleCompany Role = "company"
)

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleCompany
}

// Student is a job-seeker profile. Optional fields are empty strings when the
// profile is incomplete; callers never see nulls.
type Student struct {
	ID         uuid.UUID
	Name       string
	Email      string
	University string
	Degree     string
	Year       string
	ResumeURL  string
}

// Company is a hiring-organization profile.
type Company struct {
	ID    uuid.UUID
	Name  string
	Email string
}

// Internship is a job posting owned by a company.
type Internship struct {
	ID           uuid.UUID
	CompanyID    uuid.UUID
	Title        string
	Description  string
	Salary       string
	Technologies []string
	Type         string
	Duration     string
}

// Turn is a single conversation message. Role is "user" or "assistant".
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// RecordStore reads domain records. A missing record is reported as a nil
// result, not an error; errors are reserved for infrastructure failures.
type RecordStore interface {
	Student(ctx context.Context, id uuid.UUID) (*Student, error)
	Company(ctx context.Context, id uuid.UUID) (*Company, error)
	Students(ctx context.Context) ([]Student, error)
	Internships(ctx context.Context) ([]Internship, error)
	CompanyInternships(ctx context.Context, companyID uuid.UUID) ([]Internship, error)
}

// ConversationStore persists per-user chat history.
type ConversationStore interface {
	// Append adds turns to the user's history as a single atomic update,
	// creating the history row if it does not exist yet.
	Append(ctx context.Context, userID uuid.UUID, turns []Turn) error

	// Recent returns up to limit of the newest turns, ordered oldest to
	// newest. A user with no history yields an empty slice.
	Recent(ctx context.Context, userID uuid.UUID, limit int) ([]Turn, error)
}
