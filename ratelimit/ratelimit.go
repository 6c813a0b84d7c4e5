// SPDX-License-Identifier: GPL-3.0-only

// Package ratelimit implements the fixed-window counters guarding the
// waitlist signup endpoint. State is in-process and per instance:
// multiple replicas each enforce their own counts, and everything is
// lost on restart. That is an accepted limitation of an
// abuse-mitigation heuristic, not a correctness mechanism.
package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

type Kind int

const (
	// KindIP allows 3 requests per hour per client address.
	KindIP Kind = iota
	// KindEmail allows 1 request per 24 hours per submitted email.
	KindEmail
)

func (k Kind) String() string {
	switch k {
	case KindIP:
		return "ip"
	case KindEmail:
		return "email"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

type Config struct {
	Limit  int
	Window time.Duration
}

type entry struct {
	count     int
	resetTime time.Time
}

type Limiter struct {
	mu      sync.Mutex
	configs map[Kind]Config
	tables  map[Kind]map[string]*entry
	stop    chan struct{}
	once    sync.Once
}

// New returns a limiter with the default windows: 3 requests per hour
// for IPs, 1 request per 24 hours for emails.
func New() *Limiter {
	return NewWithConfigs(map[Kind]Config{
		KindIP:    {Limit: 3, Window: time.Hour},
		KindEmail: {Limit: 1, Window: 24 * time.Hour},
	})
}

func NewWithConfigs(configs map[Kind]Config) *Limiter {
	tables := make(map[Kind]map[string]*entry, len(configs))
	for kind := range configs {
		tables[kind] = make(map[string]*entry)
	}
	return &Limiter{
		configs: configs,
		tables:  tables,
		stop:    make(chan struct{}),
	}
}

// Allow reports whether a request for the given identifier may proceed
// and consumes one slot from its window when it may. An expired window
// is replaced with a fresh one. Passing a kind the limiter was not
// configured with is a programmer error and panics.
func (l *Limiter) Allow(identifier string, kind Kind) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	config, ok := l.configs[kind]
	if !ok {
		panic(fmt.Sprintf("ratelimit: unknown kind %s", kind))
	}
	table := l.tables[kind]

	now := time.Now()
	e, exists := table[identifier]
	if !exists || e.resetTime.Before(now) {
		table[identifier] = &entry{count: 1, resetTime: now.Add(config.Window)}
		return true
	}

	if e.count >= config.Limit {
		return false
	}

	e.count++
	return true
}

// StartSweeper removes expired entries on the given interval. The sweep
// is memory hygiene only, Allow already treats expired entries as
// absent.
func (l *Limiter) StartSweeper(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.sweep()
			case <-l.stop:
				return
			}
		}
	}()
}

func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}

func (l *Limiter) sweep() {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, table := range l.tables {
		for identifier, e := range table {
			if e.resetTime.Before(now) {
				delete(table, identifier)
			}
		}
	}
}
