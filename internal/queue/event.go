// Package queue defines message payloads exchanged over the message broker.
package queue

// AttendanceMarkedEvent is published after an attendance mark is confirmed
// by the school API. It contains enough information for downstream consumers
// to log, notify, or trigger analytics without calling the school API again.
type AttendanceMarkedEvent struct {
	ClassID     string `json:"class_id"`
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
	Present     bool   `json:"present"`
	RecordID    string `json:"record_id"`
	Date        string `json:"date"`
	MarkedBy    int64  `json:"marked_by"`
	MarkedAt    string `json:"marked_at"`
}

// LayoutSavedEvent is published when a class seating layout is persisted.
type LayoutSavedEvent struct {
	ClassID   string `json:"class_id"`
	SavedBy   int64  `json:"saved_by"`
	SeatCount int    `json:"seat_count"`
	Version   int64  `json:"version"`
	SavedAt   string `json:"saved_at"`
}
