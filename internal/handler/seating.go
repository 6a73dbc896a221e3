package handler // handler package contains seating layout handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/classdeck/seating-planner/internal/middleware"
	"github.com/classdeck/seating-planner/internal/model"
	"github.com/classdeck/seating-planner/internal/queue"
	"github.com/classdeck/seating-planner/internal/repository"
	queue_publisher "github.com/classdeck/seating-planner/internal/service"
	"github.com/classdeck/seating-planner/internal/session"
	"github.com/classdeck/seating-planner/internal/upstream"
)

// RosterAPI is the slice of the school API client the seating handlers
// need.
type RosterAPI interface {
	Students(ctx context.Context, classID string) ([]model.Student, error)
}

// LayoutStore is the layout repository surface the handlers use,
// satisfied by *repository.LayoutRepo.
type LayoutStore interface {
	GetByClass(ctx context.Context, classID string) (*repository.LayoutRecord, error)
	Upsert(ctx context.Context, classID string, items []model.LayoutItem, meta model.RoomMeta, updatedBy int64) (int64, error)
	UpsertVersioned(ctx context.Context, classID string, items []model.LayoutItem, meta model.RoomMeta, updatedBy, baseVersion int64) (int64, error)
	DeleteByClass(ctx context.Context, classID string) error
}

// SeatingHandler bundles the dependencies for layout and editing-session
// endpoints.
type SeatingHandler struct {
	Layouts  LayoutStore
	Sessions *session.Store
	Roster   RosterAPI
}

// NewSeatingHandler wires a SeatingHandler.
func NewSeatingHandler(layouts LayoutStore, sessions *session.Store, roster RosterAPI) *SeatingHandler {
	return &SeatingHandler{Layouts: layouts, Sessions: sessions, Roster: roster}
}

// GetLayout handles GET /v1/classes/:id/seating-layout and returns the
// saved arrangement for a class.
func (h *SeatingHandler) GetLayout(c echo.Context) error {
	classID := c.Param("id")
	if classID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "class id is required"})
	}
	rec, err := h.Layouts.GetByClass(c.Request().Context(), classID)
	if err != nil {
		if errors.Is(err, repository.ErrLayoutNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "no seating layout saved for this class"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not load seating layout"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"class_id":   rec.ClassID,
		"items":      rec.Items,
		"room_meta":  rec.RoomMeta,
		"version":    rec.Version,
		"updated_at": rec.UpdatedAt,
	})
}

// SaveLayout handles PUT /v1/classes/:id/seating-layout, a direct save of
// client-supplied positions without an editing session. The route is role
// gated; the handler validates the payload shape only.
func (h *SeatingHandler) SaveLayout(c echo.Context) error {
	classID := c.Param("id")
	if classID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "class id is required"})
	}
	userID := middleware.CurrentUserID(c)
	if userID == 0 {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	var body struct {
		Items       []model.LayoutItem `json:"items"`
		RoomMeta    model.RoomMeta     `json:"room_meta"`
		BaseVersion *int64             `json:"base_version"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if len(body.Items) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "items is required"})
	}
	for _, item := range body.Items {
		if item.StudentID == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "every item needs a student_id"})
		}
	}
	var (
		version int64
		err     error
	)
	if body.BaseVersion != nil {
		// client opted into optimistic concurrency
		version, err = h.Layouts.UpsertVersioned(c.Request().Context(), classID, body.Items, body.RoomMeta, userID, *body.BaseVersion)
	} else {
		version, err = h.Layouts.Upsert(c.Request().Context(), classID, body.Items, body.RoomMeta, userID)
	}
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, map[string]string{"error": "seating layout was changed by someone else"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not save seating layout"})
	}
	// event failures must not fail the save
	_ = queue_publisher.PublishLayoutSaved(c.Request().Context(), queue.LayoutSavedEvent{
		ClassID:   classID,
		SavedBy:   userID,
		SeatCount: len(body.Items),
		Version:   version,
	})
	return c.JSON(http.StatusOK, echo.Map{"class_id": classID, "version": version})
}

// DeleteLayout handles DELETE /v1/classes/:id/seating-layout and drops the
// saved arrangement so the class falls back to the generated one.
func (h *SeatingHandler) DeleteLayout(c echo.Context) error {
	classID := c.Param("id")
	if classID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "class id is required"})
	}
	if err := h.Layouts.DeleteByClass(c.Request().Context(), classID); err != nil {
		if errors.Is(err, repository.ErrLayoutNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "no seating layout saved for this class"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not delete seating layout"})
	}
	return c.NoContent(http.StatusNoContent)
}

// loadRemote fetches a class's saved arrangement for session bootstrap.
// Missing or unreadable layouts degrade to nil so editing always starts,
// mirroring how the dashboard falls back to a generated arrangement.
func (h *SeatingHandler) loadRemote(ctx context.Context, classID string) *model.SavedLayout {
	rec, err := h.Layouts.GetByClass(ctx, classID)
	if err != nil {
		return nil
	}
	return &model.SavedLayout{
		Items:     rec.Items,
		RoomMeta:  rec.RoomMeta,
		Version:   int(rec.Version),
		UpdatedAt: rec.UpdatedAt,
	}
}

// rosterError translates a school API failure into the teacher-facing
// response.
func rosterError(c echo.Context, err error) error {
	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusUnauthorized, http.StatusForbidden:
			return c.JSON(http.StatusForbidden, map[string]string{"error": "not allowed to view this class"})
		case http.StatusNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": "class not found"})
		}
		return c.JSON(http.StatusBadGateway, map[string]string{"error": apiErr.Message})
	}
	return c.JSON(http.StatusBadGateway, map[string]string{"error": "school API unavailable"})
}
