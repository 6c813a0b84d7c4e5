// SPDX-License-Identifier: GPL-3.0-only

package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIPKindAllowsThreePerWindow(t *testing.T) {
	l := New()
	defer l.Stop()

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("203.0.113.7", KindIP), "request %d should be allowed", i+1)
	}
	assert.False(t, l.Allow("203.0.113.7", KindIP), "4th request should be denied")
}

func TestEmailKindAllowsOnePerWindow(t *testing.T) {
	l := New()
	defer l.Stop()

	assert.True(t, l.Allow("user@example.com", KindEmail))
	assert.False(t, l.Allow("user@example.com", KindEmail))
}

func TestIdentifiersAreIndependent(t *testing.T) {
	l := New()
	defer l.Stop()

	assert.True(t, l.Allow("a@example.com", KindEmail))
	assert.True(t, l.Allow("b@example.com", KindEmail))
	assert.False(t, l.Allow("a@example.com", KindEmail))
}

func TestKindsAreIndependent(t *testing.T) {
	l := New()
	defer l.Stop()

	// The same identifier string keyed under different kinds must not
	// share a counter.
	assert.True(t, l.Allow("shared", KindEmail))
	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("shared", KindIP))
	}
	assert.False(t, l.Allow("shared", KindIP))
	assert.False(t, l.Allow("shared", KindEmail))
}

func TestExpiredWindowResets(t *testing.T) {
	l := NewWithConfigs(map[Kind]Config{
		KindIP: {Limit: 1, Window: 20 * time.Millisecond},
	})
	defer l.Stop()

	assert.True(t, l.Allow("203.0.113.7", KindIP))
	assert.False(t, l.Allow("203.0.113.7", KindIP))

	time.Sleep(30 * time.Millisecond)
	assert.True(t, l.Allow("203.0.113.7", KindIP), "new window should allow again")
}

func TestUnknownKindPanics(t *testing.T) {
	l := NewWithConfigs(map[Kind]Config{
		KindIP: {Limit: 1, Window: time.Hour},
	})
	defer l.Stop()

	assert.Panics(t, func() { l.Allow("x", KindEmail) })
}

func TestSweepRemovesExpiredEntries(t *testing.T) {
	l := NewWithConfigs(map[Kind]Config{
		KindIP: {Limit: 1, Window: 10 * time.Millisecond},
	})
	defer l.Stop()

	l.Allow("a", KindIP)
	l.Allow("b", KindIP)
	time.Sleep(20 * time.Millisecond)
	l.sweep()

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Empty(t, l.tables[KindIP])
}
