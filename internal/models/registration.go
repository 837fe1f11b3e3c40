package models

import "time"

type RegistrationStatus string

const (
	RegistrationStatusPending  RegistrationStatus = "pending"
	RegistrationStatusApproved RegistrationStatus = "approved"
	RegistrationStatusRejected RegistrationStatus = "rejected"
)

type Registration struct {
	ID          string
	Name        string
	FathersName string
	Email       string
	Phone       string
	ParentPhone string
	Gender      string
	DateOfBirth time.Time
	BloodGroup  string
	Address     string

	AadharNumber string
	AadharFront  string
	AadharBack   string
	PhotoURL     string

	Role      string
	AgeGroup  string
	Positions []string

	Experience  string
	ClubDetails string
	Message     string
	Newsletter  bool

	Status          RegistrationStatus
	ApprovedBy      *string
	ApprovedAt      *time.Time
	RejectedAt      *time.Time
	RejectionReason *string

	RegisteredAt time.Time
}

// AgeGroupLabels are the fixed bands used by the list filter, computed from
// date of birth with calendar-year arithmetic.
var AgeGroupLabels = []string{"under-10", "10-14", "14-16", "16-19", "19-25", "over-25"}
