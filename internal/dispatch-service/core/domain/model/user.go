package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleCustomer Role = "Customer"
	RoleDriver   Role = "Driver"
	RoleAdmin    Role = "Admin"
)

const (
	// PriorityStep is subtracted from a driver's priority for every missed
	// assignment.
	PriorityStep = 0.1

	// PriorityWarningLevel is the score at or below which a warning event is
	// emitted on each further miss.
	PriorityWarningLevel = 1.0

	DefaultDriverPriority   = 4.0
	DefaultCustomerPriority = 2.0
)

type User struct {
	ID             uuid.UUID
	Name           string
	Email          string
	Phone          string
	Star           float64
	Priority       float64
	IsActive       bool
	IsDeleted      bool
	TotalRequest   int
	DeclineRequest int
	DateCreated    time.Time
	DateUpdated    time.Time
}

// DriverStatus is the single online/free row a driver owns. The relationship
// is one-to-one; repositories key it by driver id.
type DriverStatus struct {
	ID          uuid.UUID
	DriverID    uuid.UUID
	IsOnline    bool
	IsFree      bool
	DateUpdated time.Time
}

// DriverPenalty is the outcome of applying one missed assignment to a
// driver's priority score.
type DriverPenalty struct {
	Priority    float64
	Banned      bool
	Warned      bool
	Deactivated bool
}

// ApplyDriverMiss decays a priority score by one step. Scores are kept on a
// one-decimal grid so the zero floor is exact. A driver is banned the moment
// the score lands on zero; while the score sits at or below the warning
// level a warning fires on every further miss. Deactivation happens only on
// the miss that first brings an active driver to zero.
func ApplyDriverMiss(priority float64, isActive bool) DriverPenalty {
	p := priority
	if p > 0 {
		p = math.Round((p-PriorityStep)*10) / 10
		if p < 0 {
			p = 0
		}
	}

	penalty := DriverPenalty{Priority: p}
	if p == 0 {
		penalty.Banned = true
		penalty.Deactivated = isActive
	} else if p <= PriorityWarningLevel {
		penalty.Warned = true
	}
	return penalty
}
