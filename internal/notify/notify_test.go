package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/JustJay7/fir-manager/internal/apperr"
	"github.com/JustJay7/fir-manager/internal/database"
	"github.com/JustJay7/fir-manager/internal/events"
	"github.com/JustJay7/fir-manager/internal/testutil"
	"github.com/JustJay7/fir-manager/internal/workflow"
	"github.com/JustJay7/fir-manager/pkg/logger"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRecipients(t *testing.T) {
	fir := &database.FIR{
		OfficerID: 1,
		Team:      []database.TeamMember{{UserID: 2}, {UserID: 3}, {UserID: 1}},
	}
	admins := []uint{9, 2}

	tests := []struct {
		name    string
		action  string
		actorID uint
		want    []uint
	}{
		{name: "Plain action from admin", action: ActionReassigned, actorID: 9, want: []uint{1, 2, 3}},
		{name: "Owner is actor", action: ActionTeamUpdated, actorID: 1, want: []uint{2, 3}},
		{name: "Team member is actor", action: ActionTeamUpdated, actorID: 3, want: []uint{1, 2}},
		{name: "Status change adds admins", action: ActionStatusChange, actorID: 1, want: []uint{2, 3, 9}},
		{name: "Rejected adds admins", action: ActionRejected, actorID: 3, want: []uint{1, 2, 9}},
		{name: "Overdue from system", action: ActionOverdue, actorID: 0, want: []uint{1, 2, 3, 9}},
		{name: "Admin actor excluded from admins", action: ActionStatusChange, actorID: 9, want: []uint{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Recipients(fir, tt.action, tt.actorID, admins)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Recipients() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFormatMessage(t *testing.T) {
	fir := &database.FIR{FIRNumber: "FIR-20240101-ABC123"}
	actor := &database.User{Username: "insp.rao"}

	assert.Equal(t, "FIR FIR-20240101-ABC123: status change by insp.rao", FormatMessage(fir, ActionStatusChange, actor))
	assert.Equal(t, "FIR FIR-20240101-ABC123: overdue by system", FormatMessage(fir, ActionOverdue, nil))
}

type fixture struct {
	db       *gorm.DB
	notifier *Notifier
	events   *events.Recorder
	owner    *database.User
	member   *database.User
	admin    *database.User
	fir      *database.FIR
}

func setup(t *testing.T) *fixture {
	db := testutil.NewDB(t)
	station := testutil.Station(t, db, "Central")
	owner := testutil.Officer(t, db, "owner", station)
	member := testutil.Officer(t, db, "member", station)
	testutil.Officer(t, db, "bystander", station)
	admin := testutil.Admin(t, db, "admin")
	fir := testutil.FIR(t, db, owner, station, workflow.Submitted, member)

	rec := &events.Recorder{}
	return &fixture{
		db:       db,
		notifier: New(db, rec, logger.NewNop()),
		events:   rec,
		owner:    owner,
		member:   member,
		admin:    admin,
		fir:      fir,
	}
}

func TestNotifyPersistsPerRecipient(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	created, err := f.notifier.Notify(ctx, f.fir, ActionStatusChange, f.owner)
	require.NoError(t, err)
	require.Len(t, created, 2)

	var stored []database.Notification
	require.NoError(t, f.db.Order("user_id").Find(&stored).Error)
	require.Len(t, stored, 2)
	assert.Equal(t, f.member.ID, stored[0].UserID)
	assert.Equal(t, f.admin.ID, stored[1].UserID)
	for _, n := range stored {
		assert.Equal(t, "FIR "+f.fir.FIRNumber+": status change by owner", n.Message)
		assert.Equal(t, f.fir.DetailLink(), n.Link)
		assert.False(t, n.Read)
	}

	assert.Len(t, f.events.OfType(events.TypeNotificationCreated), 2)
}

func TestNotifyIsNotDeduplicated(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.notifier.Notify(ctx, f.fir, ActionReassigned, f.admin)
	require.NoError(t, err)
	_, err = f.notifier.Notify(ctx, f.fir, ActionReassigned, f.admin)
	require.NoError(t, err)

	var count int64
	f.db.Model(&database.Notification{}).Where("user_id = ?", f.owner.ID).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestNotifyNoRecipients(t *testing.T) {
	db := testutil.NewDB(t)
	station := testutil.Station(t, db, "North")
	owner := testutil.Officer(t, db, "solo", station)
	fir := testutil.FIR(t, db, owner, station, workflow.Draft)

	n := New(db, nil, logger.NewNop())
	created, err := n.Notify(context.Background(), fir, ActionTeamUpdated, owner)
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestInbox(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.notifier.Notify(ctx, f.fir, ActionReassigned, f.admin)
	require.NoError(t, err)
	_, err = f.notifier.Notify(ctx, f.fir, ActionTeamUpdated, f.admin)
	require.NoError(t, err)

	list, err := f.notifier.List(ctx, f.owner.ID, false, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Contains(t, list[0].Message, "team updated")

	unread, err := f.notifier.UnreadCount(ctx, f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	note, err := f.notifier.MarkRead(ctx, f.owner.ID, list[0].ID)
	require.NoError(t, err)
	assert.True(t, note.Read)

	unreadList, err := f.notifier.List(ctx, f.owner.ID, true, 0)
	require.NoError(t, err)
	assert.Len(t, unreadList, 1)

	// someone else's notification
	_, err = f.notifier.MarkRead(ctx, f.member.ID, list[1].ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	changed, err := f.notifier.MarkAllRead(ctx, f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)

	unread, err = f.notifier.UnreadCount(ctx, f.owner.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)
}
