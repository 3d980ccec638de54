package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/talentoplus/hr-system/internal/core/ports"
)

type DepartmentHandler struct {
	departments ports.DepartmentService
}

func NewDepartmentHandler(departments ports.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{departments: departments}
}

// List handles GET /api/departments.
//
// @Summary      List departments
// @Tags         departments
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Department
// @Router       /departments [get]
func (h *DepartmentHandler) List(c echo.Context) error {
	departments, err := h.departments.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, departments)
}
