package models

// RoleType defines the role carried in an access token
type RoleType string

const (
	RoleStudent    RoleType = "STUDENT"
	RoleInstructor RoleType = "INSTRUCTOR" // Advisors may act on any student's records
)
