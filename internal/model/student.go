package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// FlexID is an identifier that the upstream school API serializes sometimes
// as a JSON string and sometimes as a JSON number. It always normalizes to
// a plain string so the rest of the service can treat ids as opaque.
type FlexID string

// UnmarshalJSON accepts both `"42"` and `42`.
func (f *FlexID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == "" {
		*f = ""
		return nil
	}
	if s[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*f = FlexID(strings.TrimSpace(v))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexID(n.String())
	return nil
}

// String returns the id as a plain string.
func (f FlexID) String() string { return string(f) }

// Int returns the id as an integer when it is numeric, else 0. The upstream
// behavior endpoints expect numeric ids in write payloads.
func (f FlexID) Int() int64 {
	n, err := strconv.ParseInt(string(f), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Student is a member of a class roster. The roster is owned by the
// upstream school API; this service treats students as read-only input.
//
// Fields:
//
//	ID          – opaque student identifier.
//	StudentName – display name.
//	UserName    – login name shown on seat cards.
//	Email       – contact address (may be empty).
//	ClassID     – class the student belongs to.
//	Status      – active | inactive | suspended.
type Student struct {
	ID          FlexID `json:"id"`
	StudentName string `json:"student_name"`
	UserName    string `json:"user_name"`
	Email       string `json:"email"`
	ClassID     FlexID `json:"class_id"`
	Status      string `json:"status"`
}

// NormalizeStatus maps arbitrary upstream status strings onto the three
// values the dashboard understands, defaulting to "active".
func NormalizeStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inactive":
		return "inactive"
	case "suspended":
		return "suspended"
	default:
		return "active"
	}
}
