package attendance

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/classdeck/seating-planner/internal/metrics"
	"github.com/classdeck/seating-planner/internal/model"
	"github.com/classdeck/seating-planner/internal/queue"
	"github.com/classdeck/seating-planner/internal/upstream"
)

// API is the slice of the upstream client the synchronizer needs. Tests
// substitute a fake.
type API interface {
	BehaviorRecords(ctx context.Context, studentID string) ([]model.BehaviorRecord, error)
	BehaviorTypes(ctx context.Context) ([]model.BehaviorType, error)
	CreateBehaviorType(ctx context.Context, payload upstream.BehaviorTypePayload) (string, error)
	CreateBehaviorRecord(ctx context.Context, payload upstream.BehaviorRecordPayload) (string, error)
	InvalidateBehaviorTypes(ctx context.Context)
}

// ErrNoBehaviorType is returned only when every fallback in the
// behavior-type resolution chain has been exhausted.
var ErrNoBehaviorType = errors.New("attendance behavior type not available")

// Options tune a single toggle. Silent suppresses the per-student summary
// invalidation and event (the bulk path aggregates those); SkipSyncFlag
// leaves the class-level syncing indicator alone.
type Options struct {
	Silent       bool
	SkipSyncFlag bool
	TeacherID    int64
	UserZone     string
}

type classCache struct {
	date      string
	loadKey   string
	byStudent map[string]model.AttendanceState
	syncing   int
}

// Service owns the attendance caches, one per class, for the current day.
// The cache is not persisted: it is reconstructed from the behavior feed
// at the start of each session and mutated optimistically afterwards.
type Service struct {
	api         API
	rdb         *redis.Client
	publish     func(ctx context.Context, ev queue.AttendanceMarkedEvent)
	defaultZone string

	mu      sync.Mutex
	classes map[string]*classCache
}

// NewService wires the synchronizer. rdb may be nil (no summary
// invalidation signal); publish may be nil (no events).
func NewService(api API, rdb *redis.Client, publish func(ctx context.Context, ev queue.AttendanceMarkedEvent), defaultZone string) *Service {
	return &Service{
		api:         api,
		rdb:         rdb,
		publish:     publish,
		defaultZone: defaultZone,
		classes:     make(map[string]*classCache),
	}
}

func (s *Service) class(classID string) *classCache {
	if c, ok := s.classes[classID]; ok {
		return c
	}
	c := &classCache{byStudent: make(map[string]model.AttendanceState)}
	s.classes[classID] = c
	return c
}

// Load reconstructs today's cache for a class from the upstream feed:
// per student, the latest attendance-classified record of the day wins;
// students with none default to present. The load runs once per distinct
// roster + behavior-type-set combination and re-runs when "today" rolls
// over. Errors are non-fatal: existing cache state is left alone and the
// error is surfaced as a soft warning by the caller.
func (s *Service) Load(ctx context.Context, classID string, roster []model.Student, userZone string) error {
	types, err := s.api.BehaviorTypes(ctx)
	if err != nil {
		return err
	}
	today := Today(userZone, s.defaultZone)

	ids := make([]string, 0, len(roster))
	for _, st := range roster {
		ids = append(ids, st.ID.String())
	}
	typeIDs := make([]string, 0, len(types))
	for _, t := range types {
		typeIDs = append(typeIDs, t.ID.String())
	}
	loadKey := strings.Join(ids, ",") + "|" + today + "|" + strings.Join(typeIDs, ",")

	s.mu.Lock()
	c := s.class(classID)
	if c.loadKey == loadKey {
		s.mu.Unlock()
		return nil
	}
	c.syncing++
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		c.syncing--
		s.mu.Unlock()
	}()

	typeNameByID := make(map[string]string, len(types))
	for _, t := range types {
		typeNameByID[t.ID.String()] = t.Name
	}

	rows := make(map[string]model.AttendanceState, len(roster))
	for _, st := range roster {
		records, err := s.api.BehaviorRecords(ctx, st.ID.String())
		if err != nil {
			return err
		}
		var latest *model.BehaviorRecord
		var latestAt int64 = -1
		for i := range records {
			rec := records[i]
			if len(rec.Date) < 10 || rec.Date[:10] != today {
				continue
			}
			if !isAttendanceRecord(rec, typeNameByID[rec.BehaviourID.String()]) {
				continue
			}
			if at := eventTime(rec); at >= latestAt {
				latest = &records[i]
				latestAt = at
			}
		}
		state := model.AttendanceState{IsPresent: true}
		if latest != nil {
			state.IsPresent = !isAbsentRecord(*latest, typeNameByID[latest.BehaviourID.String()])
			state.RecordID = latest.ID.String()
		}
		rows[st.ID.String()] = state
	}

	s.mu.Lock()
	c.date = today
	c.loadKey = loadKey
	for id, state := range rows {
		c.byStudent[id] = state
	}
	s.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the class cache.
func (s *Service) Snapshot(classID string) map[string]model.AttendanceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.class(classID)
	out := make(map[string]model.AttendanceState, len(c.byStudent))
	for k, v := range c.byStudent {
		out[k] = v
	}
	return out
}

// Syncing reports whether a non-silent operation is in flight for the
// class.
func (s *Service) Syncing(classID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.class(classID).syncing > 0
}

// SetAttendance optimistically marks one student present or absent: the
// cache is updated immediately, the mark is persisted as a behavior
// record, and a failed persist rolls the cache entry back to its
// pre-toggle snapshot. Cache writes are last-write-wins per student; two
// overlapping toggles for the same student race and the later-resolving
// one stands.
func (s *Service) SetAttendance(ctx context.Context, classID string, student model.Student, markPresent bool, opts Options) (model.AttendanceState, error) {
	studentID := student.ID.String()

	s.mu.Lock()
	c := s.class(classID)
	prev, hadPrev := c.byStudent[studentID]
	if !opts.SkipSyncFlag {
		c.syncing++
	}
	s.mu.Unlock()
	if !opts.SkipSyncFlag {
		defer func() {
			s.mu.Lock()
			c.syncing--
			s.mu.Unlock()
		}()
	}

	// unknown students count as present before the toggle
	snapshot := model.AttendanceState{IsPresent: true}
	if hadPrev {
		snapshot = prev
	}

	var newRecordID string
	cmd := Command{
		Apply: func() {
			s.mu.Lock()
			c.byStudent[studentID] = model.AttendanceState{
				IsPresent: markPresent,
				RecordID:  snapshot.RecordID, // kept until the remote confirms
			}
			s.mu.Unlock()
		},
		Commit: func(ctx context.Context) error {
			typeID, err := s.ensureBehaviorTypeID(ctx, markPresent)
			if err != nil {
				return err
			}
			mark := "Absent"
			if markPresent {
				mark = "Present"
			}
			payload := upstream.BehaviorRecordPayload{
				StudentID:   student.ID.Int(),
				BehaviourID: typeIDToInt(typeID),
				Description: "[Attendance] " + mark + " @ " + TimestampLabel(opts.UserZone, s.defaultZone),
				Date:        Today(opts.UserZone, s.defaultZone),
				TeacherID:   opts.TeacherID,
			}
			newRecordID, err = s.api.CreateBehaviorRecord(ctx, payload)
			return err
		},
		Rollback: func() {
			s.mu.Lock()
			c.byStudent[studentID] = snapshot
			s.mu.Unlock()
		},
	}

	if err := cmd.Run(ctx); err != nil {
		metrics.AttendanceMarks.WithLabelValues("rolled_back").Inc()
		return snapshot, err
	}
	metrics.AttendanceMarks.WithLabelValues("committed").Inc()

	state := model.AttendanceState{IsPresent: markPresent, RecordID: snapshot.RecordID}
	if newRecordID != "" {
		state.RecordID = newRecordID
	}
	s.mu.Lock()
	c.byStudent[studentID] = state
	s.mu.Unlock()

	if !opts.Silent {
		s.InvalidateSummary(ctx, classID)
		s.emit(ctx, classID, student, markPresent, state.RecordID, opts)
	}
	return state, nil
}

// MarkAll sequentially toggles every roster member. Serial execution is a
// simplicity/ordering choice: it avoids hammering the school API and
// keeps failure attribution per student. A failing step does not abort
// the rest; each toggle independently rolls back on its own failure. One
// aggregate invalidation fires at the end.
func (s *Service) MarkAll(ctx context.Context, classID string, roster []model.Student, markPresent bool, opts Options) (succeeded, failed int) {
	s.mu.Lock()
	c := s.class(classID)
	c.syncing++
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		c.syncing--
		s.mu.Unlock()
	}()

	each := opts
	each.Silent = true
	each.SkipSyncFlag = true
	for _, st := range roster {
		if _, err := s.SetAttendance(ctx, classID, st, markPresent, each); err != nil {
			log.Printf("attendance: mark-all: student %s: %v", st.ID, err)
			failed++
			continue
		}
		succeeded++
	}
	s.InvalidateSummary(ctx, classID)
	return succeeded, failed
}

// PresentStudents filters the roster to students whose cached state is
// not explicitly absent: a student never loaded counts present.
func (s *Service) PresentStudents(classID string, roster []model.Student) []model.Student {
	cache := s.Snapshot(classID)
	out := make([]model.Student, 0, len(roster))
	for _, st := range roster {
		if state, ok := cache[st.ID.String()]; ok && !state.IsPresent {
			continue
		}
		out = append(out, st)
	}
	return out
}

// RandomPresent draws one present student uniformly, or false when no one
// is present.
func (s *Service) RandomPresent(classID string, roster []model.Student) (model.Student, bool) {
	present := s.PresentStudents(classID, roster)
	if len(present) == 0 {
		return model.Student{}, false
	}
	return present[rand.Intn(len(present))], true
}

// InvalidateSummary drops the cached class points summary so leaderboard
// aggregates reflect any side effects of the new records.
func (s *Service) InvalidateSummary(ctx context.Context, classID string) {
	if s.rdb == nil {
		return
	}
	s.rdb.Del(ctx, "summary:class:"+classID)
}

func (s *Service) emit(ctx context.Context, classID string, student model.Student, present bool, recordID string, opts Options) {
	if s.publish == nil {
		return
	}
	s.publish(ctx, queue.AttendanceMarkedEvent{
		ClassID:     classID,
		StudentID:   student.ID.String(),
		StudentName: student.StudentName,
		Present:     present,
		RecordID:    recordID,
		Date:        Today(opts.UserZone, s.defaultZone),
		MarkedBy:    opts.TeacherID,
	})
}

// ensureBehaviorTypeID resolves the behavior-type id used to tag a new
// attendance record, walking the fallback chain: an existing type whose
// name matches, then a zero-point type, then any type, then creating a
// minimal one (retrying without optional fields), then one refetch of the
// list. Only exhausting all of that errors.
func (s *Service) ensureBehaviorTypeID(ctx context.Context, markPresent bool) (string, error) {
	want := "attendance absent"
	bare := "absent"
	color := "volcano"
	name := "Attendance Absent"
	if markPresent {
		want = "attendance present"
		bare = "present"
		color = "green"
		name = "Attendance Present"
	}

	types, err := s.api.BehaviorTypes(ctx)
	if err != nil {
		return "", err
	}
	for _, t := range types {
		n := normalizeText(t.Name)
		if strings.Contains(n, want) || n == bare {
			return t.ID.String(), nil
		}
	}
	for _, t := range types {
		if t.Points == 0 && t.ID != "" {
			return t.ID.String(), nil
		}
	}
	if len(types) > 0 && types[0].ID != "" {
		return types[0].ID.String(), nil
	}

	zero := 0.0
	createdID, err := s.api.CreateBehaviorType(ctx, upstream.BehaviorTypePayload{
		Name: name, Points: &zero, Color: color,
	})
	if err != nil || createdID == "" {
		// retry without the optional fields
		createdID, _ = s.api.CreateBehaviorType(ctx, upstream.BehaviorTypePayload{Name: name})
	}
	if createdID != "" {
		s.api.InvalidateBehaviorTypes(ctx)
		return createdID, nil
	}

	// creation yielded no usable id: refetch the list once and search it
	s.api.InvalidateBehaviorTypes(ctx)
	refreshed, err := s.api.BehaviorTypes(ctx)
	if err != nil {
		return "", err
	}
	for _, t := range refreshed {
		if normalizeText(t.Name) == want {
			return t.ID.String(), nil
		}
	}
	return "", ErrNoBehaviorType
}

func typeIDToInt(id string) int64 {
	return model.FlexID(id).Int()
}
