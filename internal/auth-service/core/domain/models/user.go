package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	Phone        string
	PasswordHash []byte
	Role         string
	Star         float64
	Priority     float64
	IsActive     bool
	DateCreated  time.Time
	DateUpdated  time.Time
}
