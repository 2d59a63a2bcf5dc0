package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/JustJay7/fir-manager/internal/apperr"
	"github.com/JustJay7/fir-manager/internal/database"
	"github.com/JustJay7/fir-manager/internal/events"
	"github.com/JustJay7/fir-manager/pkg/logger"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// Common action labels. Any label is accepted.
const (
	ActionStatusChange  = "status_change"
	ActionRejected      = "rejected"
	ActionOverdue       = "overdue"
	ActionReassigned    = "reassigned"
	ActionTeamUpdated   = "team_updated"
	ActionEvidenceAdded = "evidence_added"
)

// adminActions also notify every admin
var adminActions = map[string]bool{
	ActionRejected:     true,
	ActionStatusChange: true,
	ActionOverdue:      true,
}

// Notifier fans FIR actions out to the people working the case
type Notifier struct {
	db        *gorm.DB
	publisher events.Publisher
	logger    *logger.Logger
}

func New(db *gorm.DB, publisher events.Publisher, logger *logger.Logger) *Notifier {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Notifier{db: db, publisher: publisher, logger: logger}
}

// Recipients computes who hears about an action: owner and team, plus
// adminIDs for admin actions, never the actor. The result is deduplicated
// and keeps first-seen order.
func Recipients(fir *database.FIR, action string, actorID uint, adminIDs []uint) []uint {
	ids := append([]uint{fir.OfficerID}, fir.TeamIDs()...)
	if adminActions[action] {
		ids = append(ids, adminIDs...)
	}
	return lo.Without(lo.Uniq(ids), actorID, 0)
}

// FormatMessage renders "FIR <number>: <action> by <actor>"
func FormatMessage(fir *database.FIR, action string, actor *database.User) string {
	name := "system"
	if actor != nil && actor.Username != "" {
		name = actor.Username
	}
	return fmt.Sprintf("FIR %s: %s by %s", fir.FIRNumber, strings.ReplaceAll(action, "_", " "), name)
}

// Notify creates one notification per recipient. A nil actor means the
// system (overdue sweeps). Repeated calls are not deduplicated.
// fir.Team must be loaded.
func (n *Notifier) Notify(ctx context.Context, fir *database.FIR, action string, actor *database.User) ([]database.Notification, error) {
	var actorID uint
	if actor != nil {
		actorID = actor.ID
	}

	var adminIDs []uint
	if adminActions[action] {
		if err := n.db.WithContext(ctx).Model(&database.User{}).
			Where("role = ? AND active = ?", database.RoleAdmin, true).
			Order("id").
			Pluck("id", &adminIDs).Error; err != nil {
			return nil, fmt.Errorf("failed to load admins: %w", err)
		}
	}

	recipients := Recipients(fir, action, actorID, adminIDs)
	if len(recipients) == 0 {
		return nil, nil
	}

	message := FormatMessage(fir, action, actor)
	link := fir.DetailLink()
	notifications := lo.Map(recipients, func(id uint, _ int) database.Notification {
		return database.Notification{UserID: id, Message: message, Link: link}
	})

	if err := n.db.WithContext(ctx).Create(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to create notifications: %w", err)
	}

	n.logger.Info("Notifications created",
		"fir", fir.FIRNumber,
		"action", action,
		"recipients", len(notifications),
	)

	evts := lo.Map(notifications, func(note database.Notification, _ int) events.Event {
		return events.Event{
			Type:      events.TypeNotificationCreated,
			FIRNumber: fir.FIRNumber,
			FIRID:     fir.ID,
			ActorID:   actorID,
			Attributes: map[string]string{
				"action":          action,
				"recipient_id":    strconv.FormatUint(uint64(note.UserID), 10),
				"notification_id": strconv.FormatUint(uint64(note.ID), 10),
			},
		}
	})
	if err := n.publisher.Publish(ctx, evts...); err != nil {
		n.logger.Warn("Failed to publish notification events", "fir", fir.FIRNumber, "error", err)
	}

	return notifications, nil
}

// List returns a user's notifications, newest first
func (n *Notifier) List(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]database.Notification, error) {
	var notifications []database.Notification
	q := n.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("read = ?", false)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Order("created_at DESC, id DESC").Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// UnreadCount counts a user's unread notifications
func (n *Notifier) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := n.db.WithContext(ctx).Model(&database.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkRead flips the read flag. Notifications of other users are reported
// as not found.
func (n *Notifier) MarkRead(ctx context.Context, userID, notificationID uint) (*database.Notification, error) {
	var note database.Notification
	err := n.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", notificationID, userID).
		First(&note).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("notification", notificationID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load notification: %w", err)
	}

	if !note.Read {
		if err := n.db.WithContext(ctx).Model(&note).Update("read", true).Error; err != nil {
			return nil, fmt.Errorf("failed to mark notification read: %w", err)
		}
		note.Read = true
	}
	return &note, nil
}

// MarkAllRead marks every unread notification of the user and returns how many changed
func (n *Notifier) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	res := n.db.WithContext(ctx).Model(&database.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", res.Error)
	}
	return res.RowsAffected, nil
}
