package domain

import (
	"errors"
	"time"
)

// EmployeeStatus represents the employment state of an employee.
type EmployeeStatus string

const (
	StatusActive   EmployeeStatus = "active"
	StatusVacation EmployeeStatus = "vacation"
	StatusInactive EmployeeStatus = "inactive"
)

// Valid reports whether s is a known employment status.
func (s EmployeeStatus) Valid() bool {
	switch s {
	case StatusActive, StatusVacation, StatusInactive:
		return true
	}
	return false
}

// EducationLevel is the closed set of recognised education levels.
type EducationLevel string

const (
	EducationHighSchool     EducationLevel = "high_school"
	EducationTechnical      EducationLevel = "technical"
	EducationProfessional   EducationLevel = "professional"
	EducationSpecialization EducationLevel = "specialization"
	EducationMasters        EducationLevel = "masters"
	EducationDoctorate      EducationLevel = "doctorate"
)

var ErrEmployeeNotFound = errors.New("employee not found")
var ErrDocumentExists = errors.New("document already registered")
var ErrEmployeeEmailExists = errors.New("employee email already registered")
var ErrEmployeeHasAccount = errors.New("employee already has an account")
var ErrEmailMismatch = errors.New("email does not match employee record")
var ErrInvalidStatus = errors.New("invalid employee status")
var ErrDepartmentNotFound = errors.New("department not found")

// Employee is the business-domain personnel record.
type Employee struct {
	ID             int            `json:"id"`
	Document       string         `json:"document"`
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	BirthDate      time.Time      `json:"birth_date"`
	Address        string         `json:"address"`
	Phone          string         `json:"phone"`
	Email          string         `json:"email"`
	Position       string         `json:"position"`
	Salary         float64        `json:"salary"`
	HireDate       time.Time      `json:"hire_date"`
	Status         EmployeeStatus `json:"status"`
	EducationLevel EducationLevel `json:"education_level"`
	Profile        string         `json:"profile,omitempty"`
	DepartmentID   int            `json:"department_id"`
	// PrincipalID is set once the employee has registered an account.
	PrincipalID *int      `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FullName returns the display name used in documents and notifications.
func (e *Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// HasAccount reports whether the employee is linked to a principal.
func (e *Employee) HasAccount() bool {
	return e.PrincipalID != nil
}

// Department groups employees into an organisational unit.
type Department struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// DashboardStats is the aggregated view shown on the admin dashboard.
type DashboardStats struct {
	TotalEmployees  int            `json:"total_employees"`
	ActiveEmployees int            `json:"active_employees"`
	OnVacation      int            `json:"on_vacation"`
	ByDepartment    map[string]int `json:"by_department"`
}
