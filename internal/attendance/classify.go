// Package attendance keeps the per-student present/absent state for
// "today" in sync with the upstream behavior-record feed. Attendance has
// no first-class upstream entity: records are recognized and classified
// by text matching over the behavior-type name and the record description,
// and ordered by a best-effort event time.
package attendance

import (
	"strings"
	"time"

	"github.com/classdeck/seating-planner/internal/model"
)

// normalizeText lower-cases and collapses whitespace, underscores and
// hyphens to single spaces so that matching is case/space/punctuation
// insensitive.
func normalizeText(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// isAttendanceRecord reports whether a behavior record is carrying an
// attendance signal, judged over its type name and description.
func isAttendanceRecord(rec model.BehaviorRecord, typeName string) bool {
	name := normalizeText(typeName)
	desc := normalizeText(rec.Description)
	return strings.Contains(name, "attendance") ||
		strings.Contains(name, "absent") ||
		strings.Contains(name, "present") ||
		strings.Contains(desc, "[attendance]") ||
		strings.Contains(desc, "attendance absent") ||
		strings.Contains(desc, "attendance present")
}

// isAbsentRecord classifies an attendance record as absent; anything else
// that passed isAttendanceRecord counts as present.
func isAbsentRecord(rec model.BehaviorRecord, typeName string) bool {
	return strings.Contains(normalizeText(typeName), "absent") ||
		strings.Contains(normalizeText(rec.Description), "attendance absent")
}

// timeLayouts are the formats the upstream feed has been seen using for
// created_at/updated_at and for the timestamp label after " @ " in
// descriptions.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"1/2/2006, 3:04:05 PM",
	"2006-01-02",
}

func parsePositive(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if ms := t.UnixMilli(); ms > 0 {
				return ms
			}
		}
	}
	return 0
}

// eventTime resolves when an attendance record happened, in unix
// milliseconds: the creation/update timestamp when parseable and
// positive, else a timestamp embedded after the literal " @ " separator
// in the description, else the record's plain date. Zero when nothing
// parses.
func eventTime(rec model.BehaviorRecord) int64 {
	created := rec.CreatedAt
	if created == "" {
		created = rec.UpdatedAt
	}
	if ms := parsePositive(created); ms > 0 {
		return ms
	}
	if idx := strings.LastIndex(rec.Description, " @ "); idx >= 0 {
		if ms := parsePositive(rec.Description[idx+len(" @ "):]); ms > 0 {
			return ms
		}
	}
	return parsePositive(rec.Date)
}
