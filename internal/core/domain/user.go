package domain

import (
	"slices"
	"strings"
	"time"
)

// Role identifies what an account is allowed to do.
type Role string

const (
	RolePatient   Role = "patient"
	RoleCaregiver Role = "caregiver"
	RoleHospital  Role = "hospital"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleCaregiver, RoleHospital, RoleAdmin:
		return true
	}
	return false
}

// User models an account together with its linking lists.
//
// Caregivers is populated for patients, Patients and PendingApprovals for
// caregivers and hospitals.
type User struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	Role             Role      `json:"role"`
	Caregivers       []string  `json:"caregivers"`
	Patients         []string  `json:"patients"`
	PendingApprovals []string  `json:"pendingApprovals"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// HasPending reports whether patientID is waiting for this user's approval.
func (u *User) HasPending(patientID string) bool {
	return slices.Contains(u.PendingApprovals, patientID)
}

// HasPatient reports whether patientID is already linked to this user.
func (u *User) HasPatient(patientID string) bool {
	return slices.Contains(u.Patients, patientID)
}

// HasCaregiver reports whether caregiverID is linked to this user.
func (u *User) HasCaregiver(caregiverID string) bool {
	return slices.Contains(u.Caregivers, caregiverID)
}

// UserSummary is the minimal projection exposed to other users.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Summary projects u down to the fields other users may see.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// IsValidID reports whether id has the shape of a stored identifier: 24
// lowercase or uppercase hex characters.
func IsValidID(id string) bool {
	if len(id) != 24 {
		return false
	}
	for _, c := range id {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// ValidateID returns a validation error naming field when id is empty or
// malformed.
func ValidateID(field, id string) error {
	if id == "" {
		return Invalid("%s is required", field)
	}
	if !IsValidID(id) {
		return Invalid("%s is not a valid id", field)
	}
	return nil
}

// NormalizeEmail is the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
