package model

import (
	"time"

	"github.com/google/uuid"
)

// Subject represents an academic subject in the catalog.
type Subject struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateSubjectRequest is the payload for creating a subject.
type CreateSubjectRequest struct {
	Name string `json:"name" binding:"required,min=2,max=100"`
}
