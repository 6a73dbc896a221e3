// Package session hosts server-side seating editing sessions. A session
// pins one user's working copy of a class layout together with its drag
// state; pointer events posted by the client drive the gesture controller
// against that copy until the user saves or abandons it.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/classdeck/seating-planner/internal/geometry"
	"github.com/classdeck/seating-planner/internal/gesture"
	"github.com/classdeck/seating-planner/internal/layout"
	"github.com/classdeck/seating-planner/internal/metrics"
	"github.com/classdeck/seating-planner/internal/model"
	"github.com/classdeck/seating-planner/internal/queue"
	"github.com/classdeck/seating-planner/internal/repository"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("editing session not found")

// sessionTTL is how long an idle session survives before it is pruned.
const sessionTTL = 30 * time.Minute

// LayoutStore is the slice of the layout repository the store needs.
type LayoutStore interface {
	Upsert(ctx context.Context, classID string, items []model.LayoutItem, meta model.RoomMeta, updatedBy int64) (int64, error)
}

// Session is one user's editing workspace for one class.
type Session struct {
	ID      string
	ClassID string
	UserID  int64
	CanSave bool

	layout    model.Layout
	roster    []model.Student
	ctrl      *gesture.Controller
	gen       uint64 // bumped on every layout mutation
	lastTouch time.Time
}

// PointerEvent is one pointer message from the client, already projected
// into canvas coordinates.
type PointerEvent struct {
	Phase  string  `json:"phase"`  // down | move | up
	Target string  `json:"target"` // seat | marker (down only)
	ID     string  `json:"id"`     // student id or marker kind (down only)
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// PointerResult reports what a pointer event did to the session.
type PointerResult struct {
	Moved  bool   `json:"moved"`
	Click  bool   `json:"click"`
	SeatID string `json:"seat_id,omitempty"`
	Marker string `json:"marker,omitempty"`
}

// Store owns all live sessions, keyed by id, with at most one session per
// (class, user) pair.
type Store struct {
	repo    LayoutStore
	publish func(ctx context.Context, ev queue.LayoutSavedEvent)
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	byOwner  map[string]string // "classID|userID" -> session id
}

// NewStore wires a session store. publish may be nil.
func NewStore(repo LayoutStore, publish func(ctx context.Context, ev queue.LayoutSavedEvent)) *Store {
	return &Store{
		repo:     repo,
		publish:  publish,
		now:      time.Now,
		sessions: make(map[string]*Session),
		byOwner:  make(map[string]string),
	}
}

// OpenParams carries everything needed to start editing a class.
type OpenParams struct {
	ClassID     string
	UserID      int64
	Roster      []model.Student
	Remote      *model.SavedLayout // nil when no arrangement is saved or readable
	CanSave     bool
	CanvasWidth int // viewport hint; clamped to the supported minimum
}

// Open starts (or restarts) the caller's editing session for a class and
// returns it with a freshly initialized layout. An existing session for
// the same (class, user) pair is replaced.
func (s *Store) Open(p OpenParams) *Session {
	width := p.CanvasWidth
	if width < geometry.MinCanvasWidth {
		width = geometry.BaseCanvasWidth
	}

	sess := &Session{
		ID:      uuid.NewString(),
		ClassID: p.ClassID,
		UserID:  p.UserID,
		CanSave: p.CanSave,
		layout:  layout.Initialize(p.Roster, p.Remote, p.CanSave, width, geometry.CanvasHeight),
		roster:  p.Roster,
		ctrl:    gesture.New(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
	owner := ownerKey(p.ClassID, p.UserID)
	if old, ok := s.byOwner[owner]; ok {
		delete(s.sessions, old)
	}
	sess.lastTouch = s.now()
	s.sessions[sess.ID] = sess
	s.byOwner[owner] = sess.ID
	return sess
}

// Pointer dispatches one pointer event into the session's gesture
// controller and returns what happened.
func (s *Store) Pointer(sid string, ev PointerEvent) (PointerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.getLocked(sid)
	if err != nil {
		return PointerResult{}, err
	}
	pt := geometry.Point{X: ev.X, Y: ev.Y}

	switch ev.Phase {
	case "down":
		switch ev.Target {
		case "seat":
			sess.ctrl.StartSeat(ev.ID, pt, seatTopLeft(sess.layout, ev.ID))
		case "marker":
			kind := model.MarkerKind(ev.ID)
			if m, ok := sess.layout.Markers[kind]; ok {
				sess.ctrl.StartMarker(kind, pt, geometry.Point{X: float64(m.X), Y: float64(m.Y)})
			}
		default:
			return PointerResult{}, fmt.Errorf("unknown pointer target %q", ev.Target)
		}
		return PointerResult{}, nil
	case "move":
		next, moved := sess.ctrl.Move(sess.layout, pt)
		if moved {
			sess.layout = next
			sess.gen++
		}
		return PointerResult{Moved: moved}, nil
	case "up":
		out := sess.ctrl.End()
		return PointerResult{
			Click:  out.Click,
			SeatID: out.SeatID,
			Marker: string(out.MarkerKind),
		}, nil
	default:
		return PointerResult{}, fmt.Errorf("unknown pointer phase %q", ev.Phase)
	}
}

// Rotate toggles a room marker between its horizontal and vertical
// footprint.
func (s *Store) Rotate(sid string, kind model.MarkerKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.getLocked(sid)
	if err != nil {
		return err
	}
	sess.layout = layout.ToggleOrientation(sess.layout, kind)
	sess.gen++
	return nil
}

// Reset discards the working copy and regenerates the automatic
// arrangement for the session's roster.
func (s *Store) Reset(sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.getLocked(sid)
	if err != nil {
		return err
	}
	sess.layout = layout.Reset(sess.layout, sess.roster)
	sess.gen++
	return nil
}

// Save persists the working copy. Callers without arranging rights get
// ErrForbidden and the repository is never touched for them.
func (s *Store) Save(ctx context.Context, sid string) (int64, error) {
	s.mu.Lock()
	sess, err := s.getLocked(sid)
	if err != nil {
		s.mu.Unlock()
		return 0, err
	}
	if !sess.CanSave {
		s.mu.Unlock()
		return 0, repository.ErrForbidden
	}
	saved := layout.ToSaved(sess.layout)
	classID, userID := sess.ClassID, sess.UserID
	seatCount := len(saved.Items)
	gen := sess.gen
	s.mu.Unlock()

	version, err := s.repo.Upsert(ctx, classID, saved.Items, saved.RoomMeta, userID)
	if err != nil {
		return 0, err
	}
	metrics.LayoutSaves.Inc()

	s.mu.Lock()
	// edits that landed while the write was in flight keep their dirty flag
	if cur, ok := s.sessions[sid]; ok && cur.gen == gen {
		cur.layout.Dirty = false
	}
	s.mu.Unlock()

	if s.publish != nil {
		s.publish(ctx, queue.LayoutSavedEvent{
			ClassID:   classID,
			SavedBy:   userID,
			SeatCount: seatCount,
			Version:   version,
		})
	}
	return version, nil
}

// Layout returns a snapshot of the session's working copy.
func (s *Store) Layout(sid string) (model.Layout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.getLocked(sid)
	if err != nil {
		return model.Layout{}, err
	}
	return sess.layout.CloneMaps(), nil
}

// Close drops a session.
func (s *Store) Close(sid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[sid]; ok {
		delete(s.byOwner, ownerKey(sess.ClassID, sess.UserID))
		delete(s.sessions, sid)
	}
}

func (s *Store) getLocked(sid string) (*Session, error) {
	sess, ok := s.sessions[sid]
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.lastTouch = s.now()
	return sess, nil
}

func (s *Store) pruneLocked() {
	cutoff := s.now().Add(-sessionTTL)
	for sid, sess := range s.sessions {
		if sess.lastTouch.Before(cutoff) {
			delete(s.byOwner, ownerKey(sess.ClassID, sess.UserID))
			delete(s.sessions, sid)
		}
	}
}

func ownerKey(classID string, userID int64) string {
	return fmt.Sprintf("%s|%d", classID, userID)
}

func seatTopLeft(l model.Layout, studentID string) geometry.Point {
	for _, seat := range l.Seats {
		if seat.StudentID == studentID {
			return geometry.Point{X: float64(seat.X), Y: float64(seat.Y)}
		}
	}
	return geometry.Point{}
}
