package sqlite

import (
	"database/sql"
	"time"

	"github.com/diabetree-app/diabetree/internal/domain"
)

// ─── Reading Store ──────────────────────────────────────────────────────────

// InsertReading appends a reading for the owner.
func (d *DB) InsertReading(owner string, r domain.Reading) error {
	_, err := d.db.Exec(
		`INSERT INTO readings (id, owner, value, timestamp, meal_context, activity_context, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, owner, r.Value, r.Timestamp.UTC().Unix(),
		r.MealContext, r.ActivityContext, r.Notes,
	)
	return err
}

// ListReadings returns all readings for the owner, most recent first.
func (d *DB) ListReadings(owner string) ([]domain.Reading, error) {
	rows, err := d.db.Query(
		`SELECT id, value, timestamp, meal_context, activity_context, notes
		 FROM readings WHERE owner = ? ORDER BY timestamp DESC`, owner,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReadings(rows)
}

// ListReadingsSince returns readings with timestamp >= since, ascending.
func (d *DB) ListReadingsSince(owner string, since time.Time) ([]domain.Reading, error) {
	rows, err := d.db.Query(
		`SELECT id, value, timestamp, meal_context, activity_context, notes
		 FROM readings WHERE owner = ? AND timestamp >= ? ORDER BY timestamp ASC`,
		owner, since.UTC().Unix(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReadings(rows)
}

// DeleteReading removes a single reading.
func (d *DB) DeleteReading(owner, id string) error {
	result, err := d.db.Exec(`DELETE FROM readings WHERE owner = ? AND id = ?`, owner, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return domain.ErrReadingNotFound
	}
	return nil
}

// DeleteAllReadings removes every reading for the owner and returns how
// many were deleted.
func (d *DB) DeleteAllReadings(owner string) (int64, error) {
	result, err := d.db.Exec(`DELETE FROM readings WHERE owner = ?`, owner)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ReadingCount returns the owner's total reading count.
func (d *DB) ReadingCount(owner string) (int64, error) {
	var count int64
	err := d.db.QueryRow(`SELECT COUNT(*) FROM readings WHERE owner = ?`, owner).Scan(&count)
	return count, err
}

// TotalReadings returns the reading count across all owners.
func (d *DB) TotalReadings() (int64, error) {
	var count int64
	err := d.db.QueryRow(`SELECT COUNT(*) FROM readings`).Scan(&count)
	return count, err
}

func scanReadings(rows *sql.Rows) ([]domain.Reading, error) {
	var readings []domain.Reading
	for rows.Next() {
		var r domain.Reading
		var ts int64
		if err := rows.Scan(&r.ID, &r.Value, &ts, &r.MealContext, &r.ActivityContext, &r.Notes); err != nil {
			return nil, err
		}
		r.Timestamp = time.Unix(ts, 0).UTC()
		readings = append(readings, r)
	}
	return readings, rows.Err()
}
