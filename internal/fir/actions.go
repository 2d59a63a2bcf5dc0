package fir

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JustJay7/fir-manager/internal/access"
	"github.com/JustJay7/fir-manager/internal/apperr"
	"github.com/JustJay7/fir-manager/internal/database"
	"github.com/JustJay7/fir-manager/internal/events"
	"github.com/JustJay7/fir-manager/internal/notify"
	"github.com/JustJay7/fir-manager/internal/workflow"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// ChangeStatus applies a workflow transition. A rejected transition returns
// the unchanged FIR together with a *workflow.TransitionError.
func (s *Service) ChangeStatus(ctx context.Context, actor *database.User, id uint, to workflow.Status) (*database.FIR, error) {
	fir, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	from := fir.Status
	if err := workflow.Transition(from, to); err != nil {
		s.logger.Info("Status transition rejected", "fir", fir.FIRNumber, "from", from, "to", to)
		current, detailErr := s.detail(ctx, fir.ID)
		if detailErr != nil {
			return nil, detailErr
		}
		return current, err
	}

	if err := s.updateStatus(ctx, fir.ID, from, to); err != nil {
		var te *workflow.TransitionError
		if !errors.As(err, &te) {
			return nil, err
		}
		s.logger.Info("Status changed concurrently", "fir", fir.FIRNumber, "expected", from, "found", te.From, "to", to)
		current, detailErr := s.detail(ctx, fir.ID)
		if detailErr != nil {
			return nil, detailErr
		}
		return current, err
	}
	fir.Status = to
	s.InvalidateDashboards()

	s.logger.Info("Status changed", "fir", fir.FIRNumber, "from", from, "to", to, "user", actor.Username)

	action := notify.ActionStatusChange
	if to == workflow.Rejected {
		action = notify.ActionRejected
	}
	s.notify(ctx, fir, action, actor)

	s.publish(ctx, events.Event{
		Type:       events.TypeFIRStatusChanged,
		FIRNumber:  fir.FIRNumber,
		FIRID:      fir.ID,
		ActorID:    actor.ID,
		Attributes: map[string]string{"from": string(from), "to": string(to)},
	})

	return s.detail(ctx, fir.ID)
}

// updateStatus moves the FIR from → to only if it is still in from. When
// another change got there first it reports a *workflow.TransitionError
// from the status actually stored.
func (s *Service) updateStatus(ctx context.Context, id uint, from, to workflow.Status) error {
	res := s.db.WithContext(ctx).Model(&database.FIR{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return fmt.Errorf("failed to update status: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var current database.FIR
	if err := s.db.WithContext(ctx).Select("status").First(&current, id).Error; err != nil {
		return apperr.FromQuery(err, "fir", id)
	}
	return &workflow.TransitionError{From: current.Status, To: to, Allowed: workflow.Allowed(current.Status)}
}

// Reassign hands the FIR to another officer. Only admins may reassign.
func (s *Service) Reassign(ctx context.Context, actor *database.User, id, officerID uint) (*database.FIR, error) {
	if !access.For(actor).IsAdmin() {
		return nil, access.ErrForbidden
	}
	fir, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	officers, err := s.activeOfficers(ctx, []uint{officerID})
	if err != nil {
		return nil, err
	}
	officer := officers[0]

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&database.FIR{}).Where("id = ?", fir.ID).Update("officer_id", officer.ID).Error; err != nil {
			return fmt.Errorf("failed to reassign fir: %w", err)
		}
		// the owner is never also a team member
		if err := tx.Where("fir_id = ? AND user_id = ?", fir.ID, officer.ID).Delete(&database.TeamMember{}).Error; err != nil {
			return fmt.Errorf("failed to update team: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.InvalidateDashboards()

	s.logger.Info("FIR reassigned", "fir", fir.FIRNumber, "from", fir.OfficerID, "to", officer.ID)

	if updated, err := database.FindFIR(ctx, s.db, fir.ID); err == nil {
		s.notify(ctx, updated, notify.ActionReassigned, actor)
	}
	return s.detail(ctx, fir.ID)
}

// SetTeam replaces the investigation team. The owner and admins may do
// this; members must be active police officers. The owner is dropped from
// the list.
func (s *Service) SetTeam(ctx context.Context, actor *database.User, id uint, memberIDs []uint) (*database.FIR, error) {
	fir, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !access.For(actor).IsAdmin() && fir.OfficerID != actor.ID {
		return nil, access.ErrForbidden
	}

	memberIDs = lo.Without(lo.Uniq(memberIDs), fir.OfficerID, 0)
	if _, err := s.activeOfficers(ctx, memberIDs); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("fir_id = ?", fir.ID).Delete(&database.TeamMember{}).Error; err != nil {
			return fmt.Errorf("failed to clear team: %w", err)
		}
		if len(memberIDs) == 0 {
			return nil
		}
		members := lo.Map(memberIDs, func(uid uint, _ int) database.TeamMember {
			return database.TeamMember{FIRID: fir.ID, UserID: uid}
		})
		if err := tx.Create(&members).Error; err != nil {
			return fmt.Errorf("failed to save team: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.InvalidateDashboards()

	s.logger.Info("Team updated", "fir", fir.FIRNumber, "members", len(memberIDs))

	if updated, err := database.FindFIR(ctx, s.db, fir.ID); err == nil {
		s.notify(ctx, updated, notify.ActionTeamUpdated, actor)
	}
	return s.detail(ctx, fir.ID)
}

// SetDeadline sets or, with nil, clears the investigation deadline. The
// owner and admins may do this.
func (s *Service) SetDeadline(ctx context.Context, actor *database.User, id uint, deadline *time.Time) (*database.FIR, error) {
	fir, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !access.For(actor).IsAdmin() && fir.OfficerID != actor.ID {
		return nil, access.ErrForbidden
	}
	if deadline != nil {
		utc := deadline.UTC()
		deadline = &utc
	}

	if err := s.db.WithContext(ctx).Model(&database.FIR{}).Where("id = ?", fir.ID).
		Update("investigation_deadline", deadline).Error; err != nil {
		return nil, fmt.Errorf("failed to set deadline: %w", err)
	}
	s.InvalidateDashboards()
	return s.detail(ctx, fir.ID)
}

// Overdue lists investigations whose deadline has passed
func (s *Service) Overdue(ctx context.Context) ([]database.FIR, error) {
	var firs []database.FIR
	err := overdueScope(s.db.WithContext(ctx).Model(&database.FIR{}), s.now()).
		Preload("Team").
		Order("investigation_deadline").
		Find(&firs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load overdue firs: %w", err)
	}
	return firs, nil
}

// NotifyOverdue sends an overdue notification for every overdue FIR and
// returns how many FIRs were notified. Each run notifies again.
func (s *Service) NotifyOverdue(ctx context.Context) (int, error) {
	firs, err := s.Overdue(ctx)
	if err != nil {
		return 0, err
	}

	notified := 0
	for i := range firs {
		if err := ctx.Err(); err != nil {
			return notified, err
		}
		if _, err := s.notifier.Notify(ctx, &firs[i], notify.ActionOverdue, nil); err != nil {
			s.logger.Error("Failed to notify overdue fir", "fir", firs[i].FIRNumber, "error", err)
			continue
		}
		notified++
	}

	s.logger.Info("Overdue sweep finished", "overdue", len(firs), "notified", notified)
	return notified, nil
}

// activeOfficers loads the users and checks each is an active police officer
func (s *Service) activeOfficers(ctx context.Context, ids []uint) ([]database.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []database.User
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to load officers: %w", err)
	}
	byID := lo.KeyBy(users, func(u database.User) uint { return u.ID })

	out := make([]database.User, 0, len(ids))
	for _, id := range ids {
		u, ok := byID[id]
		if !ok {
			return nil, apperr.NotFound("user", id)
		}
		if u.Role != database.RolePoliceOfficer || !u.Active {
			return nil, apperr.Invalid("user %s is not an active police officer", u.Username)
		}
		out = append(out, u)
	}
	return out, nil
}

func (s *Service) notify(ctx context.Context, fir *database.FIR, action string, actor *database.User) {
	if s.notifier == nil {
		return
	}
	if _, err := s.notifier.Notify(ctx, fir, action, actor); err != nil {
		s.logger.Error("Failed to send notifications", "fir", fir.FIRNumber, "action", action, "error", err)
	}
}
