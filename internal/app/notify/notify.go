// Package notify implements the notification sink: a SQLite-backed log
// of transition messages a presentation layer drains and marks shown.
package notify

import (
	"fmt"
	"log"
	"time"

	"github.com/diabetree-app/diabetree/internal/domain"
	"github.com/diabetree-app/diabetree/internal/infra/sqlite"
)

// Service records every transition the engine reports. The sink is
// fire-and-forget — a write failure is logged, never surfaced, so a
// flaky notification log cannot fail an evaluation.
type Service struct {
	db *sqlite.DB
}

// NewService creates a notification service.
func NewService(db *sqlite.DB) *Service {
	return &Service{db: db}
}

// Notify implements domain.NotificationSink.
func (s *Service) Notify(owner string, t domain.Transition) {
	title, body := render(t)
	_, err := s.db.InsertNotification(owner, domain.Notification{
		Type:      t.Type,
		Title:     title,
		Body:      body,
		CreatedAt: time.Now(),
	})
	if err != nil {
		log.Printf("[notify] drop %s notification: %v", t.Type, err)
	}
}

// Pending returns unshown notifications, oldest first.
func (s *Service) Pending(owner string, limit int) ([]domain.Notification, error) {
	return s.db.ListPendingNotifications(owner, limit)
}

// MarkShown marks a notification as shown.
func (s *Service) MarkShown(id int64) error {
	return s.db.MarkNotificationShown(id)
}

// render turns a transition into a user-facing title and body.
func render(t domain.Transition) (string, string) {
	switch t.Type {
	case domain.TransitionLevelUp:
		return "Your tree grew!",
			fmt.Sprintf("Your tree reached stage %d. Keep up the good work!", t.ToStage)
	case domain.TransitionLevelDown:
		return "Your tree needs attention",
			fmt.Sprintf("Your tree dropped back to stage %d. Recent readings matter most.", t.ToStage)
	case domain.TransitionAchievementUnlocked:
		return "Achievement unlocked!",
			fmt.Sprintf("You earned %q (+%d coins).", t.AchievementID, t.RewardCoins)
	case domain.TransitionMissionCompleted:
		return "Daily mission complete!",
			fmt.Sprintf("Mission %q done (+%d coins).", t.MissionID, t.RewardCoins)
	case domain.TransitionInsufficientFunds:
		return "Not enough coins",
			fmt.Sprintf("That costs %d coins but you have %d.", t.Requested, t.Available)
	default:
		return string(t.Type), ""
	}
}
