package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/classdeck/seating-planner/internal/model"
	"github.com/classdeck/seating-planner/internal/repository"
	"github.com/classdeck/seating-planner/internal/session"
)

type fakeRoster struct {
	students []model.Student
	err      error
}

func (f *fakeRoster) Students(context.Context, string) ([]model.Student, error) {
	return f.students, f.err
}

type fakeLayouts struct {
	upserts int
	version int64 // current stored version; 0 means nothing saved
	deletes int
}

func (f *fakeLayouts) GetByClass(context.Context, string) (*repository.LayoutRecord, error) {
	return nil, repository.ErrLayoutNotFound
}

func (f *fakeLayouts) Upsert(context.Context, string, []model.LayoutItem, model.RoomMeta, int64) (int64, error) {
	f.upserts++
	f.version++
	return f.version, nil
}

func (f *fakeLayouts) UpsertVersioned(_ context.Context, _ string, _ []model.LayoutItem, _ model.RoomMeta, _ int64, baseVersion int64) (int64, error) {
	if baseVersion != f.version {
		return 0, repository.ErrConflict
	}
	f.upserts++
	f.version++
	return f.version, nil
}

func (f *fakeLayouts) DeleteByClass(context.Context, string) error {
	if f.version == 0 {
		return repository.ErrLayoutNotFound
	}
	f.deletes++
	f.version = 0
	return nil
}

func newTestHandler(canArrange bool) (*SeatingHandler, *fakeLayouts, func(method, path, body string) (echo.Context, *httptest.ResponseRecorder)) {
	layouts := &fakeLayouts{}
	roster := &fakeRoster{students: []model.Student{
		{ID: "1", StudentName: "Amina"},
		{ID: "2", StudentName: "Baraka"},
	}}
	h := &SeatingHandler{
		Layouts:  layouts,
		Sessions: session.NewStore(layouts, nil),
		Roster:   roster,
	}

	e := echo.New()
	mkCtx := func(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, path, nil)
		} else {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		}
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set("user_id", float64(7))
		if canArrange {
			c.Set("role", "TEACHER")
		} else {
			c.Set("role", "STUDENT")
		}
		return c, rec
	}
	return h, layouts, mkCtx
}

func openTestSession(t *testing.T, h *SeatingHandler, mkCtx func(string, string, string) (echo.Context, *httptest.ResponseRecorder)) string {
	t.Helper()
	c, rec := mkCtx(http.MethodPost, "/v1/classes/c1/seating/session", "")
	c.SetParamNames("id")
	c.SetParamValues("c1")
	if err := h.OpenSession(c); err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("OpenSession status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.SessionID == "" {
		t.Fatal("no session id in response")
	}
	return body.SessionID
}

func TestOpenSessionReturnsLayout(t *testing.T) {
	h, _, mkCtx := newTestHandler(true)
	sid := openTestSession(t, h, mkCtx)

	c, rec := mkCtx(http.MethodGet, "/v1/seating/sessions/"+sid, "")
	c.SetParamNames("sid")
	c.SetParamValues(sid)
	if err := h.GetSession(c); err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	var body struct {
		Seats []model.Seat `json:"seats"`
		Dirty bool         `json:"dirty"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Seats) != 2 || body.Dirty {
		t.Errorf("layout = %+v, want 2 clean seats", body)
	}
}

func TestPointerEndpointRejectsBadPhase(t *testing.T) {
	h, _, mkCtx := newTestHandler(true)
	sid := openTestSession(t, h, mkCtx)

	c, rec := mkCtx(http.MethodPost, "/v1/seating/sessions/"+sid+"/pointer", `{"phase":"hover"}`)
	c.SetParamNames("sid")
	c.SetParamValues(sid)
	if err := h.Pointer(c); err != nil {
		t.Fatalf("Pointer: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSaveSessionForbiddenWithoutArrangingRole(t *testing.T) {
	h, layouts, mkCtx := newTestHandler(false)
	sid := openTestSession(t, h, mkCtx)

	c, rec := mkCtx(http.MethodPost, "/v1/seating/sessions/"+sid+"/save", "")
	c.SetParamNames("sid")
	c.SetParamValues(sid)
	if err := h.SaveSession(c); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
	if layouts.upserts != 0 {
		t.Error("repository written for a read-only viewer")
	}
}

func TestSaveSessionPersists(t *testing.T) {
	h, layouts, mkCtx := newTestHandler(true)
	sid := openTestSession(t, h, mkCtx)

	c, rec := mkCtx(http.MethodPost, "/v1/seating/sessions/"+sid+"/save", "")
	c.SetParamNames("sid")
	c.SetParamValues(sid)
	if err := h.SaveSession(c); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	if rec.Code != http.StatusOK || layouts.upserts != 1 {
		t.Errorf("status = %d upserts = %d", rec.Code, layouts.upserts)
	}
}

func TestGetSessionUnknownID(t *testing.T) {
	h, _, mkCtx := newTestHandler(true)
	c, rec := mkCtx(http.MethodGet, "/v1/seating/sessions/nope", "")
	c.SetParamNames("sid")
	c.SetParamValues("nope")
	if err := h.GetSession(c); err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
