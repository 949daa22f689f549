package services

import (
	"testing"
	"time"
)

func TestCooldownSecondsForFailCount(t *testing.T) {
	tests := []struct {
		failCount int
		want      int
	}{
		{0, 1},   // 2^0=1
		{1, 2},   // 2^1=2
		{2, 4},   // 2^2=4
		{3, 8},   // 2^3=8
		{4, 16},  // 2^4=16
		{5, 30},  // 2^5=32 -> cap 30
		{6, 30},  // 2^6=64 -> cap 30
		{10, 30}, // cap 30
		{2000, 30},
	}
	for _, tt := range tests {
		got := CooldownSecondsForFailCount(tt.failCount)
		if got != tt.want {
			t.Errorf("CooldownSecondsForFailCount(%d) = %d, want %d", tt.failCount, got, tt.want)
		}
	}
}

func TestLoginThrottle(t *testing.T) {
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	th := NewLoginThrottle()
	th.now = func() time.Time { return now }
	const user int64 = 42

	// 1) No history means no wait
	if wait := th.WaitSeconds(user); wait != 0 {
		t.Errorf("fresh user: wait = %d, want 0", wait)
	}

	// 2) Failed attempt sets a 2s cooldown
	th.RecordFailed(user)
	if wait := th.WaitSeconds(user); wait != 3 {
		t.Errorf("after one fail: wait = %d, want 3 (2s rounded up)", wait)
	}

	// 3) After cooldown expires, wait becomes 0
	now = now.Add(2 * time.Second)
	if wait := th.WaitSeconds(user); wait != 0 {
		t.Errorf("after cooldown expired: wait = %d, want 0", wait)
	}

	// 4) Cooldown caps at 30s
	for i := 0; i < 8; i++ {
		th.RecordFailed(user)
	}
	if wait := th.WaitSeconds(user); wait > ThrottleCooldownCapSeconds+1 || wait < ThrottleCooldownCapSeconds {
		t.Errorf("after many fails: wait = %d, want ~%d", wait, ThrottleCooldownCapSeconds)
	}

	// 5) Other users are unaffected
	if wait := th.WaitSeconds(user + 1); wait != 0 {
		t.Errorf("other user: wait = %d, want 0", wait)
	}

	// 6) Success resets
	th.RecordSuccess(user)
	if wait := th.WaitSeconds(user); wait != 0 {
		t.Errorf("after success: wait = %d, want 0", wait)
	}
}
