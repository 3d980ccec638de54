package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/talentoplus/hr-system/internal/api/metrics"
	"github.com/talentoplus/hr-system/internal/core/domain"
	"github.com/talentoplus/hr-system/internal/core/ports"
)

// EmployeeHandler handles HTTP requests for employee records.
type EmployeeHandler struct {
	employees   ports.EmployeeService
	departments ports.DepartmentRepository
	renderer    ports.ResumeRenderer
}

func NewEmployeeHandler(employees ports.EmployeeService, departments ports.DepartmentRepository, renderer ports.ResumeRenderer) *EmployeeHandler {
	return &EmployeeHandler{employees: employees, departments: departments, renderer: renderer}
}

type createEmployeeRequest struct {
	Document       string  `json:"document" validate:"required"`
	FirstName      string  `json:"first_name" validate:"required"`
	LastName       string  `json:"last_name" validate:"required"`
	BirthDate      string  `json:"birth_date"`
	Address        string  `json:"address"`
	Phone          string  `json:"phone"`
	Email          string  `json:"email" validate:"required,email"`
	Position       string  `json:"position" validate:"required"`
	Salary         float64 `json:"salary" validate:"gte=0"`
	HireDate       string  `json:"hire_date"`
	Status         string  `json:"status" validate:"omitempty,oneof=active vacation inactive"`
	EducationLevel string  `json:"education_level"`
	Profile        string  `json:"profile"`
	DepartmentID   int     `json:"department_id" validate:"required,gt=0"`
	Password       string  `json:"password" validate:"omitempty,min=6"`
}

type updateEmployeeRequest struct {
	FirstName    *string  `json:"first_name"`
	LastName     *string  `json:"last_name"`
	Address      *string  `json:"address"`
	Phone        *string  `json:"phone"`
	Position     *string  `json:"position"`
	Salary       *float64 `json:"salary" validate:"omitempty,gte=0"`
	Status       *string  `json:"status" validate:"omitempty,oneof=active vacation inactive"`
	Profile      *string  `json:"profile"`
	DepartmentID *int     `json:"department_id" validate:"omitempty,gt=0"`
}

// List handles GET /api/employees (admin only).
//
// @Summary      List all employees
// @Tags         employees
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Employee
// @Failure      403  {object}  map[string]string
// @Router       /employees [get]
func (h *EmployeeHandler) List(c echo.Context) error {
	employees, err := h.employees.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, employees)
}

// Get handles GET /api/employees/:id. Admins may read any record, employees
// only the one linked to their own account.
//
// @Summary      Get an employee by id
// @Tags         employees
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Employee id"
// @Success      200  {object}  domain.Employee
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /employees/{id} [get]
func (h *EmployeeHandler) Get(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid employee id")
	}

	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	if !claims.canAccessEmployee(id) {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
	}

	employee, err := h.employees.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, employee)
}

// Me handles GET /api/employees/me — the record linked to the caller.
//
// @Summary      Get the caller's employee record
// @Tags         employees
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Employee
// @Failure      401  {object}  map[string]string
// @Router       /employees/me [get]
func (h *EmployeeHandler) Me(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	if claims.EmployeeID == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "token not linked to an employee record")
	}

	employee, err := h.employees.GetByID(c.Request().Context(), *claims.EmployeeID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, employee)
}

// MyResume handles GET /api/employees/me/resume — a downloadable résumé
// document for the caller's own record.
//
// @Summary      Download the caller's résumé
// @Tags         employees
// @Produce      octet-stream
// @Security     BearerAuth
// @Success      200  {file}    binary
// @Failure      401  {object}  map[string]string
// @Router       /employees/me/resume [get]
func (h *EmployeeHandler) MyResume(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	if claims.EmployeeID == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "token not linked to an employee record")
	}

	ctx := c.Request().Context()
	employee, err := h.employees.GetByID(ctx, *claims.EmployeeID)
	if err != nil {
		return err
	}

	departmentName := "unassigned"
	if department, derr := h.departments.FindByID(ctx, employee.DepartmentID); derr == nil {
		departmentName = department.Name
	}

	doc, err := h.renderer.Render(ctx, employee, departmentName)
	if err != nil {
		return fmt.Errorf("render resume: %w", err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="resume-%d.txt"`, employee.ID))
	return c.Blob(http.StatusOK, echo.MIMETextPlainCharsetUTF8, doc)
}

// Create handles POST /api/employees (admin only).
//
// @Summary      Create an employee
// @Tags         employees
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createEmployeeRequest  true  "Employee details"
// @Success      201   {object}  domain.Employee
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /employees [post]
func (h *EmployeeHandler) Create(c echo.Context) error {
	var req createEmployeeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	birthDate, err := parseDate(req.BirthDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "birth_date must be YYYY-MM-DD")
	}
	hireDate, err := parseDate(req.HireDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "hire_date must be YYYY-MM-DD")
	}

	created, err := h.employees.Create(c.Request().Context(), ports.CreateEmployeeInput{
		Document:       req.Document,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		BirthDate:      birthDate,
		Address:        req.Address,
		Phone:          req.Phone,
		Email:          req.Email,
		Position:       req.Position,
		Salary:         req.Salary,
		HireDate:       hireDate,
		Status:         req.Status,
		EducationLevel: req.EducationLevel,
		Profile:        req.Profile,
		DepartmentID:   req.DepartmentID,
		Password:       req.Password,
	})
	if err != nil {
		return err
	}

	metrics.EmployeesCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, created)
}

// Update handles PUT /api/employees/:id (admin only).
//
// @Summary      Update an employee
// @Tags         employees
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  int                    true  "Employee id"
// @Param        body  body  updateEmployeeRequest  true  "Fields to update"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /employees/{id} [put]
func (h *EmployeeHandler) Update(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid employee id")
	}

	var req updateEmployeeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.employees.Update(c.Request().Context(), id, ports.UpdateEmployeeInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Address:      req.Address,
		Phone:        req.Phone,
		Position:     req.Position,
		Salary:       req.Salary,
		Status:       req.Status,
		Profile:      req.Profile,
		DepartmentID: req.DepartmentID,
	}); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// Delete handles DELETE /api/employees/:id (admin only).
//
// @Summary      Delete an employee
// @Tags         employees
// @Security     BearerAuth
// @Param        id  path  int  true  "Employee id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /employees/{id} [delete]
func (h *EmployeeHandler) Delete(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid employee id")
	}

	if err := h.employees.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Stats handles GET /api/employees/stats (admin only).
//
// @Summary      Dashboard statistics
// @Tags         employees
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.DashboardStats
// @Router       /employees/stats [get]
func (h *EmployeeHandler) Stats(c echo.Context) error {
	stats, err := h.employees.DashboardStats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// parseDate accepts YYYY-MM-DD; an empty string yields the zero time.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}
