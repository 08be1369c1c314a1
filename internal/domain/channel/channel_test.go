package channel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley/parley/internal/domain/channel"
	"github.com/parley/parley/internal/domain/errs"
	"github.com/parley/parley/internal/domain/uuid"
)

func TestDirectChannelID_OrderIndependent(t *testing.T) {
	a := uuid.NewUUID()
	b := uuid.NewUUID()

	assert.Equal(t, channel.DirectChannelID(a, b), channel.DirectChannelID(b, a))
}

func TestDirectChannelID_Deterministic(t *testing.T) {
	a := uuid.UUID("aaa")
	b := uuid.UUID("bbb")

	assert.Equal(t, uuid.UUID("aaa--bbb"), channel.DirectChannelID(a, b))
	assert.Equal(t, uuid.UUID("aaa--bbb"), channel.DirectChannelID(b, a))
}

func TestSplitDirectChannelID(t *testing.T) {
	a := uuid.NewUUID()
	b := uuid.NewUUID()
	id := channel.DirectChannelID(a, b)

	first, second, err := channel.SplitDirectChannelID(id)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{a, b}, []uuid.UUID{first, second})

	_, _, err = channel.SplitDirectChannelID(uuid.UUID("no-separator"))
	require.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestNewGroupChannel(t *testing.T) {
	owner := uuid.NewUUID()

	ch, err := channel.NewGroupChannel("backend", "backend team", owner)
	require.NoError(t, err)

	assert.False(t, ch.ID().IsZero())
	assert.Equal(t, channel.TypeGroup, ch.Type())
	assert.Equal(t, "backend", ch.Name())
	assert.Equal(t, owner, ch.CreatedByID())
	assert.False(t, ch.IsDirect())
}

func TestNewGroupChannel_Invalid(t *testing.T) {
	_, err := channel.NewGroupChannel("", "desc", uuid.NewUUID())
	require.ErrorIs(t, err, errs.ErrInvalidInput)

	_, err = channel.NewGroupChannel("name", "desc", "")
	require.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestNewDirectChannel(t *testing.T) {
	a := uuid.NewUUID()
	b := uuid.NewUUID()

	ch, err := channel.NewDirectChannel(a, b, a)
	require.NoError(t, err)

	assert.Equal(t, channel.DirectChannelID(a, b), ch.ID())
	assert.Equal(t, channel.TypeDirect, ch.Type())
	assert.True(t, ch.IsDirect())
	assert.Empty(t, ch.Name())
}

func TestNewDirectChannel_SamePair(t *testing.T) {
	a := uuid.NewUUID()

	_, err := channel.NewDirectChannel(a, a, a)
	require.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestChannel_UpdateDetails(t *testing.T) {
	owner := uuid.NewUUID()
	ch, err := channel.NewGroupChannel("old", "old desc", owner)
	require.NoError(t, err)

	require.NoError(t, ch.UpdateDetails("new", "new desc"))
	assert.Equal(t, "new", ch.Name())
	assert.Equal(t, "new desc", ch.Description())

	require.ErrorIs(t, ch.UpdateDetails("", "desc"), errs.ErrInvalidInput)
}

func TestChannel_UpdateDetails_DirectRejected(t *testing.T) {
	a := uuid.NewUUID()
	b := uuid.NewUUID()
	ch, err := channel.NewDirectChannel(a, b, a)
	require.NoError(t, err)

	require.ErrorIs(t, ch.UpdateDetails("name", ""), errs.ErrInvalidState)
}

func TestChannel_OtherUserID(t *testing.T) {
	a := uuid.NewUUID()
	b := uuid.NewUUID()
	ch, err := channel.NewDirectChannel(a, b, a)
	require.NoError(t, err)

	other, err := ch.OtherUserID(a)
	require.NoError(t, err)
	assert.Equal(t, b, other)

	other, err = ch.OtherUserID(b)
	require.NoError(t, err)
	assert.Equal(t, a, other)
}
