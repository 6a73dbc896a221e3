// Package upstream is the HTTP client for the school API that owns
// rosters, behavior types and behavior records. The service only ever
// consumes these as simple request/response contracts; all attendance
// writes go through the generic behavior-record channel.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/classdeck/seating-planner/internal/metrics"
	"github.com/classdeck/seating-planner/internal/model"
)

// APIError is a failed upstream call with the HTTP status and the best
// human-readable message the payload offered.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream: %s (status %d)", e.Message, e.Status)
}

// IsStatus reports whether err is an APIError with one of the statuses.
func IsStatus(err error, statuses ...int) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	for _, s := range statuses {
		if apiErr.Status == s {
			return true
		}
	}
	return false
}

const behaviorTypesCacheKey = "upstream:behavior-types"
const behaviorTypesCacheTTL = 60 * time.Second

// Client talks to the school API. A nil redis client disables the
// behavior-type list cache; every call then goes to the network.
type Client struct {
	base  string
	token string
	http  *http.Client
	rdb   *redis.Client
}

// New builds a client for the given base URL. The token, when set, is sent
// as a bearer credential on every request.
func New(base, token string, rdb *redis.Client) *Client {
	return &Client{
		base:  strings.TrimRight(base, "/"),
		token: token,
		http:  &http.Client{Timeout: 15 * time.Second},
		rdb:   rdb,
	}
}

// Students fetches the roster of a class, normalizing each student's
// status.
func (c *Client) Students(ctx context.Context, classID string) ([]model.Student, error) {
	var out []model.Student
	if err := c.get(ctx, "students", fmt.Sprintf("/classes/%s/students", classID), &out); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Status = model.NormalizeStatus(out[i].Status)
	}
	return out, nil
}

// BehaviorRecords fetches a student's full behavior history.
func (c *Client) BehaviorRecords(ctx context.Context, studentID string) ([]model.BehaviorRecord, error) {
	var out []model.BehaviorRecord
	if err := c.get(ctx, "behavior-records", fmt.Sprintf("/students/%s/behaviours", studentID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// BehaviorTypes returns the remote behavior-type list, served from the
// redis cache when fresh.
func (c *Client) BehaviorTypes(ctx context.Context) ([]model.BehaviorType, error) {
	if c.rdb != nil {
		if raw, err := c.rdb.Get(ctx, behaviorTypesCacheKey).Bytes(); err == nil {
			var cached []model.BehaviorType
			if json.Unmarshal(raw, &cached) == nil {
				return cached, nil
			}
		}
	}
	var out []model.BehaviorType
	if err := c.get(ctx, "behavior-types", "/behaviour-types", &out); err != nil {
		return nil, err
	}
	if c.rdb != nil {
		if raw, err := json.Marshal(out); err == nil {
			c.rdb.Set(ctx, behaviorTypesCacheKey, raw, behaviorTypesCacheTTL)
		}
	}
	return out, nil
}

// InvalidateBehaviorTypes drops the cached type list so a freshly created
// type becomes visible on the next fetch.
func (c *Client) InvalidateBehaviorTypes(ctx context.Context) {
	if c.rdb != nil {
		c.rdb.Del(ctx, behaviorTypesCacheKey)
	}
}

// BehaviorTypePayload is the create-on-demand body. Points and Color are
// optional; the retry path strips them.
type BehaviorTypePayload struct {
	Name   string   `json:"name"`
	Points *float64 `json:"points,omitempty"`
	Color  string   `json:"color,omitempty"`
}

// CreateBehaviorType creates a behavior type and returns its id.
func (c *Client) CreateBehaviorType(ctx context.Context, payload BehaviorTypePayload) (string, error) {
	var out struct {
		ID   model.FlexID `json:"id"`
		Data struct {
			ID model.FlexID `json:"id"`
		} `json:"data"`
	}
	if err := c.post(ctx, "behavior-types", "/behaviour-types", payload, &out); err != nil {
		return "", err
	}
	if out.ID != "" {
		return out.ID.String(), nil
	}
	return out.Data.ID.String(), nil
}

// BehaviorRecordPayload is the attendance write channel's body. TeacherID
// is included only when known.
type BehaviorRecordPayload struct {
	StudentID   int64  `json:"student_id"`
	BehaviourID int64  `json:"behaviour_id"`
	Description string `json:"description"`
	Date        string `json:"date"`
	TeacherID   int64  `json:"teacher_id,omitempty"`
}

// CreateBehaviorRecord appends a behavior record and returns the new
// record id when the API reports one.
func (c *Client) CreateBehaviorRecord(ctx context.Context, payload BehaviorRecordPayload) (string, error) {
	var out struct {
		ID   model.FlexID `json:"id"`
		Data struct {
			ID model.FlexID `json:"id"`
		} `json:"data"`
	}
	if err := c.post(ctx, "behavior-records", "/behaviours", payload, &out); err != nil {
		return "", err
	}
	if out.ID != "" {
		return out.ID.String(), nil
	}
	return out.Data.ID.String(), nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, out interface{}) error {
	return c.do(ctx, endpoint, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, endpoint, path string, body, out interface{}) error {
	return c.do(ctx, endpoint, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, endpoint, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(endpoint, "error").Inc()
		return &APIError{Status: 0, Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(endpoint, "error").Inc()
		return &APIError{Status: resp.StatusCode, Message: err.Error()}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.UpstreamRequests.WithLabelValues(endpoint, "error").Inc()
		return &APIError{Status: resp.StatusCode, Message: extractMessage(raw)}
	}
	metrics.UpstreamRequests.WithLabelValues(endpoint, "ok").Inc()

	if out == nil || len(raw) == 0 {
		return nil
	}
	// Some deployments wrap list/object responses in {"data": ...}.
	if err := json.Unmarshal(raw, out); err == nil {
		return nil
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Data) > 0 {
		return json.Unmarshal(envelope.Data, out)
	}
	return &APIError{Status: resp.StatusCode, Message: "unexpected response shape"}
}

// extractMessage digs a human-readable error out of whichever payload
// field is populated: msg, message, data.message, then a generic fallback.
func extractMessage(raw []byte) string {
	var payload struct {
		Msg     string `json:"msg"`
		Message string `json:"message"`
		Data    struct {
			Message string `json:"message"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		if payload.Msg != "" {
			return payload.Msg
		}
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Data.Message != "" {
			return payload.Data.Message
		}
	}
	return "school API request failed"
}
