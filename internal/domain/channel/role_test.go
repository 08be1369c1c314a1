package channel_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/parley/parley/internal/domain/channel"
)

func TestRole_Rank(t *testing.T) {
	assert.InDelta(t, 0, channel.RoleOwner.Rank(), 0)
	assert.InDelta(t, 1, channel.RoleAdmin.Rank(), 0)
	assert.InDelta(t, 2, channel.RoleModerator.Rank(), 0)
	assert.True(t, math.IsInf(channel.RoleMember.Rank(), 1))
	assert.True(t, math.IsInf(channel.RoleViewer.Rank(), 1))
}

func TestRole_IsRanked(t *testing.T) {
	assert.True(t, channel.RoleOwner.IsRanked())
	assert.True(t, channel.RoleAdmin.IsRanked())
	assert.True(t, channel.RoleModerator.IsRanked())
	assert.False(t, channel.RoleMember.IsRanked())
	assert.False(t, channel.RoleViewer.IsRanked())
}

func TestRole_Outranks(t *testing.T) {
	assert.True(t, channel.RoleOwner.Outranks(channel.RoleAdmin))
	assert.True(t, channel.RoleAdmin.Outranks(channel.RoleModerator))
	assert.True(t, channel.RoleModerator.Outranks(channel.RoleMember))
	assert.False(t, channel.RoleAdmin.Outranks(channel.RoleAdmin), "equal rank does not outrank")
	assert.False(t, channel.RoleMember.Outranks(channel.RoleViewer), "unranked roles never outrank")
	assert.False(t, channel.RoleViewer.Outranks(channel.RoleMember))
}

func TestRole_IsValid(t *testing.T) {
	for _, r := range []channel.Role{
		channel.RoleOwner, channel.RoleAdmin, channel.RoleModerator,
		channel.RoleMember, channel.RoleViewer,
	} {
		assert.True(t, r.IsValid(), r)
	}
	assert.False(t, channel.Role("SUPERVISOR").IsValid())
	assert.False(t, channel.Role("").IsValid())
}
