package relay

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryPresenceLastWriteWins(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPresence()

	assert.NoError(t, p.Set(ctx, "7", "sess1"))
	assert.NoError(t, p.Set(ctx, "7", "sess2"))

	sid, err := p.SessionFor(ctx, "7")
	assert.NoError(t, err)
	assert.Equal(t, "sess2", sid)

	// The replaced session no longer owns the identity.
	identity, err := p.IdentityFor(ctx, "sess1")
	assert.NoError(t, err)
	assert.Equal(t, "", identity)
}

func TestMemoryPresenceRemoveBySession(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPresence()

	assert.NoError(t, p.Set(ctx, "7", "sess1"))

	identity, err := p.RemoveBySession(ctx, "sess1")
	assert.NoError(t, err)
	assert.Equal(t, "7", identity)

	sid, err := p.SessionFor(ctx, "7")
	assert.NoError(t, err)
	assert.Equal(t, "", sid)

	// Removing an untracked session is a no-op, not an error.
	identity, err = p.RemoveBySession(ctx, "sess1")
	assert.NoError(t, err)
	assert.Equal(t, "", identity)
}

func TestMemoryPresenceStaleSessionRemovalKeepsCurrentMapping(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPresence()

	assert.NoError(t, p.Set(ctx, "7", "sess1"))
	assert.NoError(t, p.Set(ctx, "7", "sess2"))

	// Disconnect of the replaced session must not take the identity offline.
	identity, err := p.RemoveBySession(ctx, "sess1")
	assert.NoError(t, err)
	assert.Equal(t, "", identity)

	sid, err := p.SessionFor(ctx, "7")
	assert.NoError(t, err)
	assert.Equal(t, "sess2", sid)
}
