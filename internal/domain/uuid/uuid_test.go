package uuid_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley/parley/internal/domain/uuid"
)

func TestNewUUID(t *testing.T) {
	id := uuid.NewUUID()

	assert.False(t, id.IsZero())
	assert.NotEqual(t, id, uuid.NewUUID())
}

func TestParseUUID(t *testing.T) {
	id := uuid.NewUUID()

	parsed, err := uuid.ParseUUID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = uuid.ParseUUID("not-a-uuid")
	require.Error(t, err)
}

func TestMustParseUUID_PanicsOnInvalid(t *testing.T) {
	assert.Panics(t, func() {
		uuid.MustParseUUID("broken")
	})
}

func TestNewTimestampID(t *testing.T) {
	first := uuid.NewTimestampID()
	second := uuid.NewTimestampID()

	assert.False(t, first.IsZero())
	assert.NotEqual(t, first, second)

	// "<unix-millis>-<uuid>"
	parts := strings.SplitN(first.String(), "-", 2)
	require.Len(t, parts, 2)
	_, err := uuid.ParseUUID(parts[1])
	require.NoError(t, err)
}

func TestUUID_IsZero(t *testing.T) {
	var zero uuid.UUID
	assert.True(t, zero.IsZero())
	assert.False(t, uuid.NewUUID().IsZero())
}
