package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avwhitney/stagehand/pkg/core/model"
)

func TestPublishCardsPostsForUnpublished(t *testing.T) {
	store := newFakeStore()
	chat := newFakeChat()
	store.addEvent(publishedEvent("evt1", "", model.ModeStandard))
	service := newTestService(store, chat)

	result, err := service.PublishCards(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 0, result.Healed)
	assert.Equal(t, 1, chat.postedCards)

	event, err := store.GetEvent(context.Background(), "evt1")
	require.NoError(t, err)
	assert.True(t, event.Published())
}

func TestPublishCardsSkipsLiveCards(t *testing.T) {
	store := newFakeStore()
	chat := newFakeChat()
	store.addEvent(publishedEvent("evt1", "card-1", model.ModeStandard))
	service := newTestService(store, chat)

	result, err := service.PublishCards(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 0, chat.postedCards)
}

func TestPublishCardsIgnoresPastEvents(t *testing.T) {
	store := newFakeStore()
	chat := newFakeChat()
	past := publishedEvent("evt-old", "", model.ModeStandard)
	past.StartTime = time.Now().UTC().Add(-24 * time.Hour)
	store.addEvent(past)
	service := newTestService(store, chat)

	result, err := service.PublishCards(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 0, chat.postedCards)
}

func TestPublishCardsChatFailuresSurfaceAsStorage(t *testing.T) {
	store := newFakeStore()
	chat := newFakeChat()
	chat.postErr = assert.AnError
	store.addEvent(publishedEvent("evt1", "", model.ModeStandard))
	service := newTestService(store, chat)

	_, err := service.PublishCards(context.Background())
	roleErr, ok := AsRoleError(err)
	require.True(t, ok)
	assert.Equal(t, KindStorage, roleErr.Kind)

	chat.postErr = nil
	chat.existsErr = assert.AnError
	store.addEvent(publishedEvent("evt2", "card-2", model.ModeStandard))

	_, err = service.PublishCards(context.Background())
	roleErr, ok = AsRoleError(err)
	require.True(t, ok)
	assert.Equal(t, KindStorage, roleErr.Kind)
}

func TestPublishCardsHealsMissingCard(t *testing.T) {
	store := newFakeStore()
	chat := newFakeChat()
	store.addEvent(publishedEvent("evt1", "card-old", model.ModeStandard))
	chat.missingCards["card-old"] = true
	service := newTestService(store, chat)

	// These signups point at the deleted card and must not survive
	err := store.UpsertSignup(context.Background(), &model.Signup{
		ID: "s1", EventID: "evt1", UserID: "userA", Role: model.RoleDoor, CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	result, err := service.PublishCards(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Healed)
	assert.Equal(t, 1, result.Created)

	event, err := store.GetEvent(context.Background(), "evt1")
	require.NoError(t, err)
	assert.True(t, event.Published())
	assert.NotEqual(t, "card-old", event.ThreadRef)

	signups, err := store.ListSignupsByEvent(context.Background(), "evt1")
	require.NoError(t, err)
	assert.Empty(t, signups)
}
