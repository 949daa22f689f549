package services

import (
	"math"
	"sync"
	"time"
)

const ThrottleCooldownCapSeconds = 30

type throttleEntry struct {
	failCount     int
	cooldownUntil time.Time
}

// LoginThrottle slows down repeated failed logins per user: after n
// consecutive failures the user waits min(30, 2^n) seconds.
type LoginThrottle struct {
	mu      sync.Mutex
	entries map[int64]*throttleEntry
	now     func() time.Time
}

func NewLoginThrottle() *LoginThrottle {
	return &LoginThrottle{entries: make(map[int64]*throttleEntry), now: time.Now}
}

// WaitSeconds returns how many seconds the user must wait before trying again (0 if no cooldown).
func (t *LoginThrottle) WaitSeconds(userID int64) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[userID]
	if !ok {
		return 0
	}
	if now := t.now(); now.Before(e.cooldownUntil) {
		return int(e.cooldownUntil.Sub(now).Seconds()) + 1 // round up
	}
	return 0
}

// RecordFailed increments the fail count and restarts the cooldown.
func (t *LoginThrottle) RecordFailed(userID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[userID]
	if !ok {
		e = &throttleEntry{}
		t.entries[userID] = e
	}
	e.failCount++
	e.cooldownUntil = t.now().Add(time.Duration(CooldownSecondsForFailCount(e.failCount)) * time.Second)
}

// RecordSuccess forgets the user's failures.
func (t *LoginThrottle) RecordSuccess(userID int64) {
	t.mu.Lock()
	delete(t.entries, userID)
	t.mu.Unlock()
}

// CooldownSecondsForFailCount returns min(30, 2^failCount).
func CooldownSecondsForFailCount(failCount int) int {
	if failCount >= 5 {
		return ThrottleCooldownCapSeconds
	}
	s := int(math.Pow(2, float64(failCount)))
	if s > ThrottleCooldownCapSeconds {
		return ThrottleCooldownCapSeconds
	}
	return s
}
