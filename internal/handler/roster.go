package handler // handler package contains roster proxy handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// GetStudents handles GET /v1/classes/:id/students and proxies the class
// roster from the school API with normalized statuses. Response caching
// for this route is applied at the router level.
func (h *SeatingHandler) GetStudents(c echo.Context) error {
	classID := c.Param("id")
	if classID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "class id is required"})
	}
	roster, err := h.Roster.Students(c.Request().Context(), classID)
	if err != nil {
		return rosterError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"class_id": classID,
		"students": roster,
		"count":    len(roster),
	})
}
