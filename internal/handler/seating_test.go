package handler

import (
	"net/http"
	"testing"
)

func TestSaveLayoutStaleVersionConflict(t *testing.T) {
	h, layouts, mkCtx := newTestHandler(true)
	layouts.version = 3 // someone else already saved

	body := `{"items": [{"student_id": "1", "x": 90, "y": 150}], "base_version": 2}`
	c, rec := mkCtx(http.MethodPut, "/v1/classes/c1/seating-layout", body)
	c.SetParamNames("id")
	c.SetParamValues("c1")
	if err := h.SaveLayout(c); err != nil {
		t.Fatalf("SaveLayout: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
	if layouts.upserts != 0 {
		t.Error("stale save must not write")
	}
}

func TestSaveLayoutMatchingVersionSucceeds(t *testing.T) {
	h, layouts, mkCtx := newTestHandler(true)
	layouts.version = 2

	body := `{"items": [{"student_id": "1", "x": 90, "y": 150}], "base_version": 2}`
	c, rec := mkCtx(http.MethodPut, "/v1/classes/c1/seating-layout", body)
	c.SetParamNames("id")
	c.SetParamValues("c1")
	if err := h.SaveLayout(c); err != nil {
		t.Fatalf("SaveLayout: %v", err)
	}
	if rec.Code != http.StatusOK || layouts.upserts != 1 {
		t.Errorf("status = %d upserts = %d, want a saved layout", rec.Code, layouts.upserts)
	}
}

func TestDeleteLayout(t *testing.T) {
	h, layouts, mkCtx := newTestHandler(true)
	layouts.version = 1

	c, rec := mkCtx(http.MethodDelete, "/v1/classes/c1/seating-layout", "")
	c.SetParamNames("id")
	c.SetParamValues("c1")
	if err := h.DeleteLayout(c); err != nil {
		t.Fatalf("DeleteLayout: %v", err)
	}
	if rec.Code != http.StatusNoContent || layouts.deletes != 1 {
		t.Errorf("status = %d deletes = %d", rec.Code, layouts.deletes)
	}

	// deleting again finds nothing
	c, rec = mkCtx(http.MethodDelete, "/v1/classes/c1/seating-layout", "")
	c.SetParamNames("id")
	c.SetParamValues("c1")
	if err := h.DeleteLayout(c); err != nil {
		t.Fatalf("DeleteLayout: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
