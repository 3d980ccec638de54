package ports

import (
	"context"

	"github.com/talentoplus/hr-system/internal/core/domain"
)

// EmployeeRepository defines the persistence contract for employee records.
type EmployeeRepository interface {
	FindAll(ctx context.Context) ([]domain.Employee, error)
	FindByID(ctx context.Context, id int) (*domain.Employee, error)
	FindByDocument(ctx context.Context, document string) (*domain.Employee, error)
	ExistsByDocument(ctx context.Context, document string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, e *domain.Employee) (*domain.Employee, error)
	Update(ctx context.Context, e *domain.Employee) error
	Delete(ctx context.Context, id int) error
	Stats(ctx context.Context) (*domain.DashboardStats, error)
}

// DepartmentRepository defines the persistence contract for departments.
type DepartmentRepository interface {
	FindAll(ctx context.Context) ([]domain.Department, error)
	FindByID(ctx context.Context, id int) (*domain.Department, error)
	Create(ctx context.Context, d *domain.Department) (*domain.Department, error)
}
