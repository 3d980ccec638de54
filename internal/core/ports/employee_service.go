package ports

import (
	"context"
	"time"

	"github.com/talentoplus/hr-system/internal/core/domain"
)

// CreateEmployeeInput carries all data needed to create an employee record.
type CreateEmployeeInput struct {
	Document       string
	FirstName      string
	LastName       string
	BirthDate      time.Time
	Address        string
	Phone          string
	Email          string
	Position       string
	Salary         float64
	HireDate       time.Time
	Status         string
	EducationLevel string
	Profile        string
	DepartmentID   int
	// Password, when non-empty, opens an account for the employee at
	// creation time.
	Password string
}

// UpdateEmployeeInput carries the mutable fields of an employee record.
// Nil pointers leave the current value untouched.
type UpdateEmployeeInput struct {
	FirstName    *string
	LastName     *string
	Address      *string
	Phone        *string
	Position     *string
	Salary       *float64
	Status       *string
	Profile      *string
	DepartmentID *int
}

// EmployeeService defines use-case operations for employee records.
type EmployeeService interface {
	List(ctx context.Context) ([]domain.Employee, error)
	GetByID(ctx context.Context, id int) (*domain.Employee, error)
	Create(ctx context.Context, input CreateEmployeeInput) (*domain.Employee, error)
	Update(ctx context.Context, id int, input UpdateEmployeeInput) error
	Delete(ctx context.Context, id int) error
	DashboardStats(ctx context.Context) (*domain.DashboardStats, error)
}

// DepartmentService defines use-case operations for departments.
type DepartmentService interface {
	List(ctx context.Context) ([]domain.Department, error)
}
