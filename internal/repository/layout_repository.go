package repository // repository defines data access for saved seating layouts

import (
	"context"       // context allows query cancellation and timeouts
	"database/sql"  // sql provides DB primitives
	"encoding/json" // layouts are stored as JSON documents
	"errors"        // errors for sentinel definitions

	"github.com/classdeck/seating-planner/internal/model"
)

// LayoutRecord is one persisted seating arrangement for a class. Items and
// RoomMeta are stored as JSON columns; Version increments on every save so
// stale writers can be detected.
type LayoutRecord struct {
	ClassID   string // class the arrangement belongs to
	Items     []model.LayoutItem
	RoomMeta  model.RoomMeta
	Version   int64 // bumped by every upsert
	UpdatedBy int64 // user id of the last writer
	CreatedAt string
	UpdatedAt string
}

// ErrLayoutNotFound is returned when a class has no saved arrangement yet.
var ErrLayoutNotFound = errors.New("seating layout not found")

// LayoutRepo provides methods to work with seating layouts in the database.
type LayoutRepo struct {
	db *sql.DB
}

// NewLayoutRepo constructs a LayoutRepo with the given DB handle.
func NewLayoutRepo(db *sql.DB) *LayoutRepo {
	return &LayoutRepo{db: db}
}

// GetByClass retrieves the saved arrangement for a class.
func (r *LayoutRepo) GetByClass(ctx context.Context, classID string) (*LayoutRecord, error) {
	const q = `SELECT class_id, items_json, room_meta_json, version, updated_by, created_at, updated_at
	           FROM class_seating_layouts WHERE class_id = ?`
	var (
		rec      LayoutRecord
		itemsRaw []byte
		metaRaw  []byte
	)
	err := r.db.QueryRowContext(ctx, q, classID).
		Scan(&rec.ClassID, &itemsRaw, &metaRaw, &rec.Version, &rec.UpdatedBy, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLayoutNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(itemsRaw, &rec.Items); err != nil {
		return nil, err
	}
	if len(metaRaw) > 0 {
		if err := json.Unmarshal(metaRaw, &rec.RoomMeta); err != nil {
			return nil, err
		}
	}
	return &rec, nil
}

// Upsert inserts the arrangement for a class or replaces the existing one,
// bumping its version. The new version is returned.
func (r *LayoutRepo) Upsert(ctx context.Context, classID string, items []model.LayoutItem, meta model.RoomMeta, updatedBy int64) (int64, error) {
	itemsRaw, err := json.Marshal(items)
	if err != nil {
		return 0, err
	}
	metaRaw, err := json.Marshal(meta)
	if err != nil {
		return 0, err
	}
	const q = `INSERT INTO class_seating_layouts (class_id, items_json, room_meta_json, version, updated_by)
	           VALUES (?, ?, ?, 1, ?)
	           ON DUPLICATE KEY UPDATE
	             items_json = VALUES(items_json),
	             room_meta_json = VALUES(room_meta_json),
	             version = version + 1,
	             updated_by = VALUES(updated_by),
	             updated_at = CURRENT_TIMESTAMP`
	if _, err := r.db.ExecContext(ctx, q, classID, itemsRaw, metaRaw, updatedBy); err != nil {
		return 0, err
	}

	// read the version back; the insert path and the update path land on
	// different values and ExecContext cannot tell us which one happened
	var version int64
	const vq = `SELECT version FROM class_seating_layouts WHERE class_id = ?`
	if err := r.db.QueryRowContext(ctx, vq, classID).Scan(&version); err != nil {
		return 0, err
	}
	return version, nil
}

// UpsertVersioned writes the arrangement only when the stored version still
// equals baseVersion. baseVersion 0 means the class must have no saved
// arrangement yet. Returns ErrConflict when another writer got there first.
func (r *LayoutRepo) UpsertVersioned(ctx context.Context, classID string, items []model.LayoutItem, meta model.RoomMeta, updatedBy, baseVersion int64) (int64, error) {
	itemsRaw, err := json.Marshal(items)
	if err != nil {
		return 0, err
	}
	metaRaw, err := json.Marshal(meta)
	if err != nil {
		return 0, err
	}
	if baseVersion <= 0 {
		const q = `INSERT IGNORE INTO class_seating_layouts (class_id, items_json, room_meta_json, version, updated_by)
		           VALUES (?, ?, ?, 1, ?)`
		res, err := r.db.ExecContext(ctx, q, classID, itemsRaw, metaRaw, updatedBy)
		if err != nil {
			return 0, err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return 0, ErrConflict
		}
		return 1, nil
	}
	const q = `UPDATE class_seating_layouts
	           SET items_json = ?, room_meta_json = ?, version = version + 1,
	               updated_by = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE class_id = ? AND version = ?`
	res, err := r.db.ExecContext(ctx, q, itemsRaw, metaRaw, updatedBy, classID, baseVersion)
	if err != nil {
		return 0, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, ErrConflict
	}
	return baseVersion + 1, nil
}

// DeleteByClass removes a class's saved arrangement. Returns
// ErrLayoutNotFound when there was nothing to delete.
func (r *LayoutRepo) DeleteByClass(ctx context.Context, classID string) error {
	const q = `DELETE FROM class_seating_layouts WHERE class_id = ?`
	res, err := r.db.ExecContext(ctx, q, classID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrLayoutNotFound
	}
	return nil
}
