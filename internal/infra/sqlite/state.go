package sqlite

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/diabetree-app/diabetree/internal/domain"
)

// Progress KV keys owned by the engine. Each is independently loadable;
// CommitEvaluation writes them together.
const (
	keyStage            = "stage"
	keyStageProgress    = "stage_progress"
	keyCoinBalance      = "coin_balance"
	keyMaxStage         = "max_stage_reached"
	keyEquipped         = "equipped_collectible"
	keyMissionID        = "mission_id"
	keyMissionCompleted = "mission_completed"
	keyMissionDate      = "mission_checked_date"
)

// ─── Progress Key-Value ─────────────────────────────────────────────────────

// SetProgress stores a progression key-value pair.
func (d *DB) SetProgress(owner, key, value string) error {
	_, err := d.db.Exec(
		`INSERT INTO progress (owner, key, value) VALUES (?, ?, ?)
		 ON CONFLICT(owner, key) DO UPDATE SET value=excluded.value`,
		owner, key, value,
	)
	return err
}

// GetProgress retrieves a progression value by key. Returns "" if the
// key is not set.
func (d *DB) GetProgress(owner, key string) (string, error) {
	var value string
	err := d.db.QueryRow(
		`SELECT value FROM progress WHERE owner = ? AND key = ?`, owner, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// LoadProgress assembles the owner's full progress state, falling back
// to defaults for anything not yet persisted.
func (d *DB) LoadProgress(owner string) (domain.ProgressState, error) {
	state := domain.DefaultProgressState()

	kv := make(map[string]string)
	rows, err := d.db.Query(`SELECT key, value FROM progress WHERE owner = ?`, owner)
	if err != nil {
		return state, err
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return state, err
		}
		kv[k] = v
	}
	if err := rows.Err(); err != nil {
		return state, err
	}

	if v, ok := kv[keyStage]; ok {
		state.Stage, _ = strconv.Atoi(v)
	}
	if v, ok := kv[keyStageProgress]; ok {
		state.StageProgress, _ = strconv.ParseFloat(v, 64)
	}
	if v, ok := kv[keyCoinBalance]; ok {
		state.CoinBalance, _ = strconv.ParseInt(v, 10, 64)
	}
	if v, ok := kv[keyMaxStage]; ok {
		state.MaxStageReached, _ = strconv.Atoi(v)
	}
	if v, ok := kv[keyEquipped]; ok && v != "" {
		state.EquippedCollectibleID = v
	}
	state.DailyMission = domain.DailyMissionState{
		CurrentMissionID: kv[keyMissionID],
		IsCompleted:      kv[keyMissionCompleted] == "1",
		LastCheckedDate:  kv[keyMissionDate],
	}

	unlocked, err := d.unlockedAchievementSet(owner)
	if err != nil {
		return state, err
	}
	state.UnlockedAchievementIDs = unlocked

	return state, nil
}

// CommitEvaluation persists one evaluation's merged output in a single
// transaction. Either the whole snapshot lands or none of it does — no
// reader ever observes a partially updated progress state.
func (d *DB) CommitEvaluation(owner string, snap domain.EvaluationSnapshot) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	p := snap.Progress
	pairs := map[string]string{
		keyStage:            strconv.Itoa(p.Stage),
		keyStageProgress:    strconv.FormatFloat(p.StageProgress, 'f', -1, 64),
		keyCoinBalance:      strconv.FormatInt(p.CoinBalance, 10),
		keyMaxStage:         strconv.Itoa(p.MaxStageReached),
		keyEquipped:         p.EquippedCollectibleID,
		keyMissionID:        p.DailyMission.CurrentMissionID,
		keyMissionCompleted: boolStr(p.DailyMission.IsCompleted),
		keyMissionDate:      p.DailyMission.LastCheckedDate,
	}
	for k, v := range pairs {
		if _, err := tx.Exec(
			`INSERT INTO progress (owner, key, value) VALUES (?, ?, ?)
			 ON CONFLICT(owner, key) DO UPDATE SET value=excluded.value`,
			owner, k, v,
		); err != nil {
			return fmt.Errorf("save %s: %w", k, err)
		}
	}

	now := time.Now().Unix()
	for _, id := range snap.NewlyUnlocked {
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO achievements (owner, id, unlocked_at) VALUES (?, ?, ?)`,
			owner, id, now,
		); err != nil {
			return fmt.Errorf("unlock achievement %s: %w", id, err)
		}
	}

	if k := snap.RewardedMission; k != nil {
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO rewarded_missions (owner, mission_id, day, rewarded_at) VALUES (?, ?, ?, ?)`,
			owner, k.MissionID, k.Date, now,
		); err != nil {
			return fmt.Errorf("record mission reward: %w", err)
		}
	}

	return tx.Commit()
}

// ResetProgress clears all progression state back to defaults. Readings
// are left untouched — they belong to the reading store.
func (d *DB) ResetProgress(owner string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM progress WHERE owner = ?`,
		`DELETE FROM achievements WHERE owner = ?`,
		`DELETE FROM rewarded_missions WHERE owner = ?`,
		`DELETE FROM collectibles WHERE owner = ?`,
		`DELETE FROM notifications WHERE owner = ?`,
	} {
		if _, err := tx.Exec(stmt, owner); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
	}

	return tx.Commit()
}

// ─── Achievements ───────────────────────────────────────────────────────────

// unlockedAchievementSet returns the ids unlocked by the owner.
func (d *DB) unlockedAchievementSet(owner string) (map[string]bool, error) {
	rows, err := d.db.Query(`SELECT id FROM achievements WHERE owner = ?`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	unlocked := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		unlocked[id] = true
	}
	return unlocked, rows.Err()
}

// ListUnlockedAchievements returns unlock records, newest first.
func (d *DB) ListUnlockedAchievements(owner string) ([]domain.UnlockedAchievement, error) {
	rows, err := d.db.Query(
		`SELECT id, unlocked_at FROM achievements WHERE owner = ? ORDER BY unlocked_at DESC`,
		owner,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var unlocks []domain.UnlockedAchievement
	for rows.Next() {
		var u domain.UnlockedAchievement
		var at int64
		if err := rows.Scan(&u.ID, &at); err != nil {
			return nil, err
		}
		u.UnlockedAt = time.Unix(at, 0).UTC()
		unlocks = append(unlocks, u)
	}
	return unlocks, rows.Err()
}

// ─── Rewarded Missions ──────────────────────────────────────────────────────

// IsMissionRewarded reports whether the (missionID, day) pair has
// already paid out for the owner.
func (d *DB) IsMissionRewarded(owner, missionID, day string) (bool, error) {
	var count int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM rewarded_missions WHERE owner = ? AND mission_id = ? AND day = ?`,
		owner, missionID, day,
	).Scan(&count)
	return count > 0, err
}

// ─── Coin Balance ───────────────────────────────────────────────────────────

// Balance returns the owner's current coin balance.
func (d *DB) Balance(owner string) (int64, error) {
	v, err := d.GetProgress(owner, keyCoinBalance)
	if err != nil || v == "" {
		return 0, err
	}
	return strconv.ParseInt(v, 10, 64)
}

// AdjustBalance applies a delta to the balance in one transaction and
// returns the new balance. A delta that would take the balance negative
// returns domain.ErrInsufficientFunds with no state change.
func (d *DB) AdjustBalance(owner string, delta int64) (int64, error) {
	return d.adjustBalanceOwning(owner, delta, "")
}

// PurchaseCollectible atomically checks funds, debits the price, and
// records ownership of the item. Returns the new balance.
func (d *DB) PurchaseCollectible(owner, itemID string, price int64) (int64, error) {
	return d.adjustBalanceOwning(owner, -price, itemID)
}

func (d *DB) adjustBalanceOwning(owner string, delta int64, ownItemID string) (int64, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var stored string
	err = tx.QueryRow(
		`SELECT value FROM progress WHERE owner = ? AND key = ?`, owner, keyCoinBalance,
	).Scan(&stored)
	if err != nil && err != sql.ErrNoRows {
		return 0, err
	}
	var balance int64
	if stored != "" {
		balance, err = strconv.ParseInt(stored, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse balance: %w", err)
		}
	}

	newBalance := balance + delta
	if newBalance < 0 {
		return balance, fmt.Errorf("%w: have %d, need %d", domain.ErrInsufficientFunds, balance, -delta)
	}

	if _, err := tx.Exec(
		`INSERT INTO progress (owner, key, value) VALUES (?, ?, ?)
		 ON CONFLICT(owner, key) DO UPDATE SET value=excluded.value`,
		owner, keyCoinBalance, strconv.FormatInt(newBalance, 10),
	); err != nil {
		return 0, fmt.Errorf("save balance: %w", err)
	}

	if ownItemID != "" {
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO collectibles (owner, id, acquired_at) VALUES (?, ?, ?)`,
			owner, ownItemID, time.Now().Unix(),
		); err != nil {
			return 0, fmt.Errorf("record collectible: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return newBalance, nil
}

// ─── Collectibles ───────────────────────────────────────────────────────────

// OwnedCollectibles returns the owner's collectible ids. The default
// tree is always owned.
func (d *DB) OwnedCollectibles(owner string) ([]string, error) {
	rows, err := d.db.Query(
		`SELECT id FROM collectibles WHERE owner = ? ORDER BY acquired_at ASC`, owner,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	owned := []string{domain.DefaultCollectibleID}
	seen := map[string]bool{domain.DefaultCollectibleID: true}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		if !seen[id] {
			owned = append(owned, id)
			seen[id] = true
		}
	}
	return owned, rows.Err()
}

// EquipCollectible sets the equipped collectible id.
func (d *DB) EquipCollectible(owner, id string) error {
	return d.SetProgress(owner, keyEquipped, id)
}

// ─── Notifications ──────────────────────────────────────────────────────────

// InsertNotification appends a notification to the log.
func (d *DB) InsertNotification(owner string, n domain.Notification) (int64, error) {
	result, err := d.db.Exec(
		`INSERT INTO notifications (owner, type, title, body, created_at, shown)
		 VALUES (?, ?, ?, ?, ?, 0)`,
		owner, string(n.Type), n.Title, n.Body, n.CreatedAt.Unix(),
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// ListPendingNotifications returns unshown notifications, oldest first.
func (d *DB) ListPendingNotifications(owner string, limit int) ([]domain.Notification, error) {
	rows, err := d.db.Query(
		`SELECT id, type, title, body, created_at, shown
		 FROM notifications WHERE owner = ? AND shown = 0 ORDER BY created_at ASC LIMIT ?`,
		owner, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifs []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var createdAt int64
		if err := rows.Scan(&n.ID, &n.Type, &n.Title, &n.Body, &createdAt, &n.Shown); err != nil {
			return nil, err
		}
		n.CreatedAt = time.Unix(createdAt, 0).UTC()
		notifs = append(notifs, n)
	}
	return notifs, rows.Err()
}

// MarkNotificationShown marks a notification as shown.
func (d *DB) MarkNotificationShown(id int64) error {
	_, err := d.db.Exec(`UPDATE notifications SET shown = 1 WHERE id = ?`, id)
	return err
}

func boolStr(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
