package notify_test

import (
	"testing"

	"github.com/diabetree-app/diabetree/internal/app/notify"
	"github.com/diabetree-app/diabetree/internal/domain"
	"github.com/diabetree-app/diabetree/internal/infra/sqlite"
)

const owner = "default"

func testDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dir := t.TempDir()
	db, err := sqlite.Open(dir)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNotify_RecordsEveryTransition(t *testing.T) {
	svc := notify.NewService(testDB(t))

	svc.Notify(owner, domain.Transition{Type: domain.TransitionLevelUp, FromStage: 1, ToStage: 2})
	svc.Notify(owner, domain.Transition{Type: domain.TransitionAchievementUnlocked, AchievementID: "first_reading", RewardCoins: 10})
	svc.Notify(owner, domain.Transition{Type: domain.TransitionMissionCompleted, MissionID: "daily_first_reading", RewardCoins: 5})

	pending, err := svc.Pending(owner, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(pending))
	}
	if pending[0].Type != domain.TransitionLevelUp {
		t.Errorf("expected oldest first, got %s", pending[0].Type)
	}
	if pending[0].Title == "" || pending[0].Body == "" {
		t.Errorf("notification missing rendered text: %+v", pending[0])
	}
}

func TestNotify_MarkShownDrainsQueue(t *testing.T) {
	svc := notify.NewService(testDB(t))

	svc.Notify(owner, domain.Transition{Type: domain.TransitionLevelUp, FromStage: 1, ToStage: 2})
	pending, err := svc.Pending(owner, 10)
	if err != nil || len(pending) != 1 {
		t.Fatalf("setup: pending=%v err=%v", pending, err)
	}

	if err := svc.MarkShown(pending[0].ID); err != nil {
		t.Fatalf("mark shown: %v", err)
	}
	pending, err = svc.Pending(owner, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("shown notification still pending: %v", pending)
	}
}
