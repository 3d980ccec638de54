package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/talentoplus/hr-system/internal/core/domain"
	"github.com/talentoplus/hr-system/internal/core/ports"
)

type employeeService struct {
	repo        ports.EmployeeRepository
	departments ports.DepartmentRepository
	principals  ports.PrincipalRepository
	hasher      ports.PasswordHasher
	log         zerolog.Logger
}

// NewEmployeeService returns an EmployeeService implementation.
func NewEmployeeService(
	repo ports.EmployeeRepository,
	departments ports.DepartmentRepository,
	principals ports.PrincipalRepository,
	hasher ports.PasswordHasher,
	log zerolog.Logger,
) ports.EmployeeService {
	return &employeeService{
		repo:        repo,
		departments: departments,
		principals:  principals,
		hasher:      hasher,
		log:         log,
	}
}

func (s *employeeService) List(ctx context.Context) ([]domain.Employee, error) {
	return s.repo.FindAll(ctx)
}

func (s *employeeService) GetByID(ctx context.Context, id int) (*domain.Employee, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *employeeService) Create(ctx context.Context, input ports.CreateEmployeeInput) (*domain.Employee, error) {
	status := domain.EmployeeStatus(input.Status)
	if status == "" {
		status = domain.StatusActive
	}
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	if _, err := s.departments.FindByID(ctx, input.DepartmentID); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByDocument(ctx, input.Document)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDocumentExists
	}
	exists, err = s.repo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrEmployeeEmailExists
	}

	now := time.Now().UTC()
	employee := &domain.Employee{
		Document:       input.Document,
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		BirthDate:      input.BirthDate,
		Address:        input.Address,
		Phone:          input.Phone,
		Email:          input.Email,
		Position:       input.Position,
		Salary:         input.Salary,
		HireDate:       input.HireDate,
		Status:         status,
		EducationLevel: domain.EducationLevel(input.EducationLevel),
		Profile:        input.Profile,
		DepartmentID:   input.DepartmentID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	created, err := s.repo.Create(ctx, employee)
	if err != nil {
		return nil, fmt.Errorf("create employee: %w", err)
	}

	// An initial password opens an account for the new employee right away.
	if input.Password != "" {
		if err := s.openAccount(ctx, created, input.Password); err != nil {
			return nil, err
		}
	}

	s.log.Info().Int("employee_id", created.ID).Str("document", created.Document).Msg("employee created")
	return created, nil
}

func (s *employeeService) openAccount(ctx context.Context, employee *domain.Employee, password string) error {
	taken, err := s.principals.ExistsByEmail(ctx, employee.Email)
	if err != nil {
		return err
	}
	if taken {
		return domain.ErrEmailTaken
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	principal, err := s.principals.Create(ctx, &domain.Principal{
		Email:        employee.Email,
		PasswordHash: hash,
		Role:         domain.RoleEmployee,
		EmployeeID:   &employee.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return err
	}

	employee.PrincipalID = &principal.ID
	return s.repo.Update(ctx, employee)
}

func (s *employeeService) Update(ctx context.Context, id int, input ports.UpdateEmployeeInput) error {
	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if input.FirstName != nil {
		employee.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		employee.LastName = *input.LastName
	}
	if input.Address != nil {
		employee.Address = *input.Address
	}
	if input.Phone != nil {
		employee.Phone = *input.Phone
	}
	if input.Position != nil {
		employee.Position = *input.Position
	}
	if input.Salary != nil {
		employee.Salary = *input.Salary
	}
	if input.Status != nil {
		status := domain.EmployeeStatus(*input.Status)
		if !status.Valid() {
			return domain.ErrInvalidStatus
		}
		employee.Status = status
	}
	if input.Profile != nil {
		employee.Profile = *input.Profile
	}
	if input.DepartmentID != nil {
		if _, err := s.departments.FindByID(ctx, *input.DepartmentID); err != nil {
			return err
		}
		employee.DepartmentID = *input.DepartmentID
	}
	employee.UpdatedAt = time.Now().UTC()

	return s.repo.Update(ctx, employee)
}

func (s *employeeService) Delete(ctx context.Context, id int) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *employeeService) DashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	return s.repo.Stats(ctx)
}

type departmentService struct {
	repo ports.DepartmentRepository
}

// NewDepartmentService returns a DepartmentService implementation.
func NewDepartmentService(repo ports.DepartmentRepository) ports.DepartmentService {
	return &departmentService{repo: repo}
}

func (s *departmentService) List(ctx context.Context) ([]domain.Department, error) {
	return s.repo.FindAll(ctx)
}
