package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStudentsPlainAndWrapped(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"plain array", `[{"id": 7, "student_name": "Amira", "status": "ACTIVE"}]`},
		{"data envelope", `{"data": [{"id": "7", "student_name": "Amira", "status": ""}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/classes/9/students" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := New(srv.URL, "tok", nil)
			students, err := c.Students(context.Background(), "9")
			if err != nil {
				t.Fatalf("Students: %v", err)
			}
			if len(students) != 1 || students[0].ID.String() != "7" {
				t.Fatalf("students = %+v", students)
			}
			if students[0].Status != "active" {
				t.Errorf("status = %q, want normalized active", students[0].Status)
			}
		})
	}
}

func TestErrorMessageFallbackChain(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"msg field", `{"msg": "no such class"}`, "no such class"},
		{"message field", `{"message": "denied"}`, "denied"},
		{"nested data.message", `{"data": {"message": "deep"}}`, "deep"},
		{"nothing usable", `{"status": "error"}`, "school API request failed"},
		{"not json", `<html>boom</html>`, "school API request failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractMessage([]byte(tt.body)); got != tt.want {
				t.Errorf("extractMessage = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAPIErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message": "forbidden"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "", nil)
	_, err := c.Students(context.Background(), "1")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !IsStatus(err, http.StatusUnauthorized, http.StatusForbidden) {
		t.Errorf("IsStatus(401|403) = false for %v", err)
	}
	if IsStatus(err, http.StatusNotFound) {
		t.Errorf("IsStatus(404) = true for %v", err)
	}
}

func TestCreateBehaviorRecordReturnsID(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"top-level id", `{"id": 42}`, "42"},
		{"data id", `{"data": {"id": "43"}}`, "43"},
		{"no id", `{}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/behaviours" {
					t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
				}
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := New(srv.URL, "", nil)
			id, err := c.CreateBehaviorRecord(context.Background(), BehaviorRecordPayload{
				StudentID: 7, BehaviourID: 1, Description: "x", Date: "2026-01-05",
			})
			if err != nil {
				t.Fatalf("CreateBehaviorRecord: %v", err)
			}
			if id != tt.want {
				t.Errorf("id = %q, want %q", id, tt.want)
			}
		})
	}
}
