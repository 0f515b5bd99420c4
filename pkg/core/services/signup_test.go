package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/avwhitney/stagehand/pkg/core/model"
	"github.com/avwhitney/stagehand/pkg/core/roster"
)

func newTestService(store *fakeStore, chat *fakeChat) *Service {
	return NewService(
		store,
		store,
		chat,
		roster.DefaultStyles(),
		Defaults{NeededBookers: 1, NeededDoors: 2, NeededSound: 1},
		nil,
		time.UTC,
		zap.NewNop(),
	)
}

func publishedEvent(id, cardRef string, mode model.Mode) model.Event {
	return model.Event{
		ID:            id,
		Summary:       "Friday Show",
		StartTime:     time.Now().UTC().Add(48 * time.Hour),
		ThreadRef:     cardRef,
		Mode:          mode,
		NeededBookers: 1,
		NeededDoors:   2,
		NeededSound:   1,
	}
}

func TestRequestRoleAssignsAndUpdatesCard(t *testing.T) {
	store := newFakeStore()
	chat := newFakeChat()
	store.addEvent(publishedEvent("evt1", "card-1", model.ModeStandard))
	service := newTestService(store, chat)

	snap, err := service.RequestRole(context.Background(), "evt1", "userA", model.RoleDoor)
	require.NoError(t, err)

	require.Len(t, snap.Signups, 1)
	assert.Equal(t, model.RoleDoor, snap.Signups[0].Role)
	assert.False(t, snap.AlreadyAssigned)
	assert.Equal(t, 1, snap.Needed.Doors)
	assert.Equal(t, []string{"card-1"}, chat.updateCalls)
	assert.Equal(t, []string{"card-1/userA"}, chat.addedMembers)
}

func TestRequestRoleUnknownEvent(t *testing.T) {
	service := newTestService(newFakeStore(), newFakeChat())

	_, err := service.RequestRole(context.Background(), "missing", "userA", model.RoleDoor)
	roleErr, ok := AsRoleError(err)
	require.True(t, ok)
	assert.Equal(t, KindEventNotFound, roleErr.Kind)
}

func TestRequestRoleUnpublishedEvent(t *testing.T) {
	store := newFakeStore()
	store.addEvent(publishedEvent("evt1", "", model.ModeStandard))
	service := newTestService(store, newFakeChat())

	_, err := service.RequestRole(context.Background(), "evt1", "userA", model.RoleDoor)
	roleErr, ok := AsRoleError(err)
	require.True(t, ok)
	assert.Equal(t, KindEventNotFound, roleErr.Kind)
}

func TestRequestRoleIllegalForMode(t *testing.T) {
	store := newFakeStore()
	store.addEvent(publishedEvent("evt1", "card-1", model.ModeFestival))
	service := newTestService(store, newFakeChat())

	_, err := service.RequestRole(context.Background(), "evt1", "userA", model.RoleTrainingDoor)
	roleErr, ok := AsRoleError(err)
	require.True(t, ok)
	assert.Equal(t, KindIllegalForMode, roleErr.Kind)
	assert.Contains(t, roleErr.Message, "festival")

	signups, err := store.ListSignupsByEvent(context.Background(), "evt1")
	require.NoError(t, err)
	assert.Empty(t, signups)
}

func TestRequestRoleClosedSignups(t *testing.T) {
	store := newFakeStore()
	store.addEvent(publishedEvent("evt1", "card-1", model.ModeNone))
	service := newTestService(store, newFakeChat())

	for _, role := range []model.Role{model.RoleBooker, model.RoleDoor, model.RoleAttending} {
		_, err := service.RequestRole(context.Background(), "evt1", "userA", role)
		roleErr, ok := AsRoleError(err)
		require.True(t, ok)
		assert.Equal(t, KindIllegalForMode, roleErr.Kind)
	}
}

func TestRequestRoleSameRoleIsNoOp(t *testing.T) {
	store := newFakeStore()
	chat := newFakeChat()
	store.addEvent(publishedEvent("evt1", "card-1", model.ModeStandard))
	service := newTestService(store, chat)

	_, err := service.RequestRole(context.Background(), "evt1", "userA", model.RoleSound)
	require.NoError(t, err)

	snap, err := service.RequestRole(context.Background(), "evt1", "userA", model.RoleSound)
	require.NoError(t, err)

	assert.True(t, snap.AlreadyAssigned)
	require.Len(t, snap.Signups, 1)
	// No second card rewrite and no second thread add
	assert.Len(t, chat.updateCalls, 1)
	assert.Len(t, chat.addedMembers, 1)
}

func TestRequestRoleReplacesExistingRole(t *testing.T) {
	store := newFakeStore()
	store.addEvent(publishedEvent("evt1", "card-1", model.ModeStandard))
	service := newTestService(store, newFakeChat())

	_, err := service.RequestRole(context.Background(), "evt1", "userA", model.RoleDoor)
	require.NoError(t, err)
	_, err = service.RequestRole(context.Background(), "evt1", "userB", model.RoleDoor)
	require.NoError(t, err)

	snap, err := service.RequestRole(context.Background(), "evt1", "userA", model.RoleSound)
	require.NoError(t, err)

	require.Len(t, snap.Signups, 2)
	byUser := make(map[string]model.Role)
	for _, s := range snap.Signups {
		byUser[s.UserID] = s.Role
	}
	assert.Equal(t, model.RoleSound, byUser["userA"])
	assert.Equal(t, model.RoleDoor, byUser["userB"])
}

func TestRequestRoleThreadAddFailureTolerated(t *testing.T) {
	store := newFakeStore()
	chat := newFakeChat()
	chat.addErr = errors.New("thread gone")
	store.addEvent(publishedEvent("evt1", "card-1", model.ModeStandard))
	service := newTestService(store, chat)

	snap, err := service.RequestRole(context.Background(), "evt1", "userA", model.RoleDoor)
	require.NoError(t, err)
	require.Len(t, snap.Signups, 1)

	// The signup landed despite the thread failure
	stored, err := store.GetSignup(context.Background(), "evt1", "userA")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, model.RoleDoor, stored.Role)
}

func TestRequestRoleStoreFailureSurfacesAsStorage(t *testing.T) {
	store := newFakeStore()
	store.addEvent(publishedEvent("evt1", "card-1", model.ModeStandard))
	store.signupErr = errors.New("connection refused")
	service := newTestService(store, newFakeChat())

	_, err := service.RequestRole(context.Background(), "evt1", "userA", model.RoleDoor)
	roleErr, ok := AsRoleError(err)
	require.True(t, ok)
	assert.Equal(t, KindStorage, roleErr.Kind)
	assert.Contains(t, roleErr.Message, "try again")
}

func TestRemoveRole(t *testing.T) {
	store := newFakeStore()
	chat := newFakeChat()
	store.addEvent(publishedEvent("evt1", "card-1", model.ModeStandard))
	service := newTestService(store, chat)

	_, err := service.RequestRole(context.Background(), "evt1", "userA", model.RoleDoor)
	require.NoError(t, err)

	snap, err := service.RemoveRole(context.Background(), "evt1", "userA")
	require.NoError(t, err)

	assert.Empty(t, snap.Signups)
	assert.Equal(t, 2, snap.Needed.Doors)
	assert.Equal(t, []string{"card-1/userA"}, chat.removedMembers)
}

func TestRemoveRoleNotSignedUp(t *testing.T) {
	store := newFakeStore()
	store.addEvent(publishedEvent("evt1", "card-1", model.ModeStandard))
	service := newTestService(store, newFakeChat())

	_, err := service.RemoveRole(context.Background(), "evt1", "userA")
	roleErr, ok := AsRoleError(err)
	require.True(t, ok)
	assert.Equal(t, KindNotSignedUp, roleErr.Kind)
	assert.Equal(t, "You aren't in the thread.", roleErr.Message)
}

func TestAdminAssignRole(t *testing.T) {
	store := newFakeStore()
	store.addEvent(publishedEvent("evt1", "card-1", model.ModeStandard))
	service := newTestService(store, newFakeChat())

	snap, err := service.AdminAssignRole(context.Background(), "card-1", "userB", model.RoleBooker, true)
	require.NoError(t, err)
	require.Len(t, snap.Signups, 1)
	assert.Equal(t, "userB", snap.Signups[0].UserID)
}

func TestAdminAssignRoleUnauthorized(t *testing.T) {
	store := newFakeStore()
	store.addEvent(publishedEvent("evt1", "card-1", model.ModeStandard))
	service := newTestService(store, newFakeChat())

	_, err := service.AdminAssignRole(context.Background(), "card-1", "userB", model.RoleBooker, false)
	roleErr, ok := AsRoleError(err)
	require.True(t, ok)
	assert.Equal(t, KindUnauthorized, roleErr.Kind)
}

func TestRequestRoleByCardSeesModeChangedDuringLookup(t *testing.T) {
	store := newFakeStore()
	store.addEvent(publishedEvent("evt1", "card-1", model.ModeStandard))
	service := newTestService(store, newFakeChat())

	ctx := context.Background()

	// A mode change lands between the card lookup and the event lock;
	// the legality check must observe the new mode, not the looked-up one
	store.afterThreadRefLookup = func() {
		store.afterThreadRefLookup = nil
		_, err := service.SetMode(ctx, "card-1", model.ModeMeeting, true)
		require.NoError(t, err)
	}

	_, err := service.RequestRoleByCard(ctx, "card-1", "userA", model.RoleDoor)
	roleErr, ok := AsRoleError(err)
	require.True(t, ok)
	assert.Equal(t, KindIllegalForMode, roleErr.Kind)

	signups, err := store.ListSignupsByEvent(ctx, "evt1")
	require.NoError(t, err)
	assert.Empty(t, signups)
	for _, s := range signups {
		assert.True(t, roster.IsLegal(model.ModeMeeting, s.Role))
	}
}

func TestAdminAssignRoleSeesModeChangedDuringLookup(t *testing.T) {
	store := newFakeStore()
	store.addEvent(publishedEvent("evt1", "card-1", model.ModeStandard))
	service := newTestService(store, newFakeChat())

	ctx := context.Background()
	store.afterThreadRefLookup = func() {
		store.afterThreadRefLookup = nil
		_, err := service.SetMode(ctx, "card-1", model.ModeFestival, true)
		require.NoError(t, err)
	}

	_, err := service.AdminAssignRole(ctx, "card-1", "userB", model.RoleTrainingDoor, true)
	roleErr, ok := AsRoleError(err)
	require.True(t, ok)
	assert.Equal(t, KindIllegalForMode, roleErr.Kind)

	signups, err := store.ListSignupsByEvent(ctx, "evt1")
	require.NoError(t, err)
	assert.Empty(t, signups)
}

func TestAdminAssignRoleUnknownCard(t *testing.T) {
	service := newTestService(newFakeStore(), newFakeChat())

	_, err := service.AdminAssignRole(context.Background(), "card-404", "userB", model.RoleBooker, true)
	roleErr, ok := AsRoleError(err)
	require.True(t, ok)
	assert.Equal(t, KindCardNotFound, roleErr.Kind)
}
