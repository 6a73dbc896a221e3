package handler // handler package contains attendance handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/classdeck/seating-planner/internal/attendance"
	"github.com/classdeck/seating-planner/internal/middleware"
	"github.com/classdeck/seating-planner/internal/model"
)

// AttendanceHandler bundles the dependencies for attendance endpoints.
type AttendanceHandler struct {
	Service *attendance.Service
	Roster  RosterAPI
}

// NewAttendanceHandler wires an AttendanceHandler.
func NewAttendanceHandler(svc *attendance.Service, roster RosterAPI) *AttendanceHandler {
	return &AttendanceHandler{Service: svc, Roster: roster}
}

// rosterFor resolves the class id and roster for an attendance request.
// On failure it writes the error response itself and reports ok=false;
// callers must stop without touching the response again.
func (h *AttendanceHandler) rosterFor(c echo.Context) (classID string, roster []model.Student, ok bool) {
	classID = c.Param("id")
	if classID == "" {
		_ = c.JSON(http.StatusBadRequest, map[string]string{"error": "class id is required"})
		return "", nil, false
	}
	roster, err := h.Roster.Students(c.Request().Context(), classID)
	if err != nil {
		_ = rosterError(c, err)
		return "", nil, false
	}
	return classID, roster, true
}

// GetAttendance handles GET /v1/classes/:id/attendance. The first request
// of the day reconstructs the cache from the behavior feed; later ones
// serve the optimistic cache. A failed reconstruction is soft: the
// response carries stale data plus a warning instead of failing.
func (h *AttendanceHandler) GetAttendance(c echo.Context) error {
	classID, roster, ok := h.rosterFor(c)
	if !ok {
		return nil
	}
	warning := ""
	if err := h.Service.Load(c.Request().Context(), classID, roster, middleware.CurrentTimezone(c)); err != nil {
		log.Printf("attendance: load class %s: %v", classID, err)
		warning = "attendance may be out of date"
	}
	body := echo.Map{
		"class_id":   classID,
		"attendance": h.Service.Snapshot(classID),
		"syncing":    h.Service.Syncing(classID),
	}
	if warning != "" {
		body["warning"] = warning
	}
	return c.JSON(http.StatusOK, body)
}

// ToggleAttendance handles POST /v1/classes/:id/attendance/:studentId with
// body {present: bool}. The mark is applied optimistically and rolled back
// when the school API rejects it.
func (h *AttendanceHandler) ToggleAttendance(c echo.Context) error {
	classID, roster, ok := h.rosterFor(c)
	if !ok {
		return nil
	}
	studentID := c.Param("studentId")
	var target *model.Student
	for i := range roster {
		if roster[i].ID.String() == studentID {
			target = &roster[i]
			break
		}
	}
	if target == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "student not in this class"})
	}
	var body struct {
		Present *bool `json:"present"`
	}
	if err := c.Bind(&body); err != nil || body.Present == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "present is required"})
	}

	opts := attendance.Options{
		TeacherID: middleware.CurrentUserID(c),
		UserZone:  middleware.CurrentTimezone(c),
	}
	state, err := h.Service.SetAttendance(c.Request().Context(), classID, *target, *body.Present, opts)
	if err != nil {
		if errors.Is(err, attendance.ErrNoBehaviorType) {
			return c.JSON(http.StatusConflict, map[string]string{"error": "no behavior type available for attendance"})
		}
		// the optimistic mark was rolled back; report the upstream message
		return c.JSON(http.StatusBadGateway, echo.Map{
			"error":       err.Error(),
			"rolled_back": true,
			"state":       state,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"student_id": studentID, "state": state})
}

// MarkAll handles POST /v1/classes/:id/attendance/mark-all with body
// {present: bool}. Failures for individual students are counted, not
// fatal.
func (h *AttendanceHandler) MarkAll(c echo.Context) error {
	classID, roster, ok := h.rosterFor(c)
	if !ok {
		return nil
	}
	var body struct {
		Present *bool `json:"present"`
	}
	if err := c.Bind(&body); err != nil || body.Present == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "present is required"})
	}
	opts := attendance.Options{
		TeacherID: middleware.CurrentUserID(c),
		UserZone:  middleware.CurrentTimezone(c),
	}
	succeeded, failed := h.Service.MarkAll(c.Request().Context(), classID, roster, *body.Present, opts)
	return c.JSON(http.StatusOK, echo.Map{
		"class_id":  classID,
		"succeeded": succeeded,
		"failed":    failed,
	})
}

// RandomStudent handles GET /v1/classes/:id/attendance/random and picks
// one present student.
func (h *AttendanceHandler) RandomStudent(c echo.Context) error {
	classID, roster, ok := h.rosterFor(c)
	if !ok {
		return nil
	}
	// make sure the day's cache exists before drawing
	if err := h.Service.Load(c.Request().Context(), classID, roster, middleware.CurrentTimezone(c)); err != nil {
		log.Printf("attendance: load class %s: %v", classID, err)
	}
	pick, ok := h.Service.RandomPresent(classID, roster)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no students are present"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"student_id":   pick.ID.String(),
		"student_name": pick.StudentName,
	})
}
