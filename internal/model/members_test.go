package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeMemberIDs(t *testing.T) {
	t.Run("sorts and dedupes", func(t *testing.T) {
		got := NormalizeMemberIDs([]string{"u3", "u1", "u3", "u2", "u1"})
		assert.Equal(t, []string{"u1", "u2", "u3"}, got)
	})

	t.Run("trims whitespace and drops empties", func(t *testing.T) {
		got := NormalizeMemberIDs([]string{" u2 ", "", "u1", "  "})
		assert.Equal(t, []string{"u1", "u2"}, got)
	})

	t.Run("nil input yields empty slice", func(t *testing.T) {
		got := NormalizeMemberIDs(nil)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestJoinSplitMemberIDs(t *testing.T) {
	joined := JoinMemberIDs([]string{"u2", "u1", "u2"})
	assert.Equal(t, "u1,u2", joined)

	assert.Equal(t, []string{"u1", "u2"}, SplitMemberIDs("u1,u2"))
	assert.Empty(t, SplitMemberIDs(""))
}

func TestSameMembers(t *testing.T) {
	assert.True(t, SameMembers([]string{"u1", "u2"}, []string{"u2", "u1"}))
	assert.True(t, SameMembers(nil, []string{}))
	assert.False(t, SameMembers([]string{"u1"}, []string{"u1", "u2"}))
	assert.False(t, SameMembers([]string{"u1"}, []string{"u3"}))
}

func TestSetMembersKeepsRepresentationsAligned(t *testing.T) {
	p := NewProject("p1", "c1", "Deck build")
	p.MarkSynced(p.CreatedAt)

	p.SetMembers([]string{"u2", "u1", "u1"})

	assert.Equal(t, []string{"u1", "u2"}, p.Members)
	assert.Equal(t, "u1,u2", p.MemberIDList)
	assert.True(t, p.NeedsSync, "membership change must mark the project dirty")
}
