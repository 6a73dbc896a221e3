package model

// BehaviorType is a remote-defined category used to tag behavior records
// with a point value and a display color (e.g. "Attendance Present").
type BehaviorType struct {
	ID     FlexID  `json:"id"`
	Name   string  `json:"name"`
	Points float64 `json:"points"`
	Color  string  `json:"color"`
}

// BehaviorRecord is one entry in a student's append-only behavior log.
// Attendance is not a first-class upstream entity; it piggybacks on this
// feed and is recognized by text-matching heuristics over the type name
// and description.
type BehaviorRecord struct {
	ID          FlexID `json:"id"`
	BehaviourID FlexID `json:"behaviour_id"`
	Description string `json:"description"`
	Date        string `json:"date"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// AttendanceState is the cached present/absent flag for one student for
// "today". RecordID points at the upstream behavior record backing the
// latest mark, when one is known.
type AttendanceState struct {
	IsPresent bool   `json:"is_present"`
	RecordID  string `json:"record_id,omitempty"`
}
