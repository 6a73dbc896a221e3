package handler // handler package contains editing-session handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/classdeck/seating-planner/internal/middleware"
	"github.com/classdeck/seating-planner/internal/model"
	"github.com/classdeck/seating-planner/internal/repository"
	"github.com/classdeck/seating-planner/internal/session"
)

// layoutBody is the wire shape of a working layout returned to the client.
func layoutBody(l model.Layout) echo.Map {
	return echo.Map{
		"seats":        l.Seats,
		"markers":      l.Markers,
		"orientations": l.Orientations,
		"width":        l.Width,
		"height":       l.Height,
		"dirty":        l.Dirty,
	}
}

// OpenSession handles POST /v1/classes/:id/seating/session. It fetches the
// roster, loads any saved arrangement the caller may use, and opens a
// fresh editing session seeded from them.
func (h *SeatingHandler) OpenSession(c echo.Context) error {
	classID := c.Param("id")
	if classID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "class id is required"})
	}
	userID := middleware.CurrentUserID(c)
	if userID == 0 {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	var body struct {
		CanvasWidth int `json:"canvas_width"`
	}
	// body is optional; binding failures just mean no viewport hint
	_ = c.Bind(&body)

	roster, err := h.Roster.Students(c.Request().Context(), classID)
	if err != nil {
		return rosterError(c, err)
	}
	if len(roster) == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "class has no students"})
	}

	canSave := middleware.CanArrangeSeats(middleware.CurrentRole(c))
	var remote *model.SavedLayout
	if canSave {
		remote = h.loadRemote(c.Request().Context(), classID)
	}

	sess := h.Sessions.Open(session.OpenParams{
		ClassID:     classID,
		UserID:      userID,
		Roster:      roster,
		Remote:      remote,
		CanSave:     canSave,
		CanvasWidth: body.CanvasWidth,
	})
	l, err := h.Sessions.Layout(sess.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not open session"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"session_id": sess.ID,
		"can_save":   sess.CanSave,
		"layout":     layoutBody(l),
	})
}

// GetSession handles GET /v1/seating/sessions/:sid.
func (h *SeatingHandler) GetSession(c echo.Context) error {
	l, err := h.Sessions.Layout(c.Param("sid"))
	if err != nil {
		return sessionError(c, err)
	}
	return c.JSON(http.StatusOK, layoutBody(l))
}

// Pointer handles POST /v1/seating/sessions/:sid/pointer, one pointer
// event per call.
func (h *SeatingHandler) Pointer(c echo.Context) error {
	var ev session.PointerEvent
	if err := c.Bind(&ev); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	switch ev.Phase {
	case "down", "move", "up":
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "phase must be down, move or up"})
	}
	res, err := h.Sessions.Pointer(c.Param("sid"), ev)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return sessionError(c, err)
		}
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	l, err := h.Sessions.Layout(c.Param("sid"))
	if err != nil {
		return sessionError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"result": res,
		"layout": layoutBody(l),
	})
}

// RotateMarker handles POST /v1/seating/sessions/:sid/markers/:kind/rotate.
func (h *SeatingHandler) RotateMarker(c echo.Context) error {
	kind := model.MarkerKind(c.Param("kind"))
	switch kind {
	case model.MarkerTeacher, model.MarkerScreen, model.MarkerDoor:
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown marker kind"})
	}
	if err := h.Sessions.Rotate(c.Param("sid"), kind); err != nil {
		return sessionError(c, err)
	}
	l, err := h.Sessions.Layout(c.Param("sid"))
	if err != nil {
		return sessionError(c, err)
	}
	return c.JSON(http.StatusOK, layoutBody(l))
}

// ResetSession handles POST /v1/seating/sessions/:sid/reset.
func (h *SeatingHandler) ResetSession(c echo.Context) error {
	if err := h.Sessions.Reset(c.Param("sid")); err != nil {
		return sessionError(c, err)
	}
	l, err := h.Sessions.Layout(c.Param("sid"))
	if err != nil {
		return sessionError(c, err)
	}
	return c.JSON(http.StatusOK, layoutBody(l))
}

// SaveSession handles POST /v1/seating/sessions/:sid/save.
func (h *SeatingHandler) SaveSession(c echo.Context) error {
	version, err := h.Sessions.Save(c.Request().Context(), c.Param("sid"))
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return sessionError(c, err)
		}
		if errors.Is(err, repository.ErrForbidden) {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "your role may not save seating layouts"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not save seating layout"})
	}
	return c.JSON(http.StatusOK, echo.Map{"version": version})
}

func sessionError(c echo.Context, err error) error {
	if errors.Is(err, session.ErrSessionNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "editing session not found"})
	}
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "session operation failed"})
}
