package bot

import (
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrAdminDisabled = errors.New("admin commands are disabled")
	ErrWrongPassword = errors.New("wrong password")
)

// adminSessions tracks which Telegram users have logged in as admin.
type adminSessions struct {
	hash []byte
	mu   sync.RWMutex
	in   map[int64]bool
}

func newAdminSessions(hash string) *adminSessions {
	return &adminSessions{hash: []byte(hash), in: make(map[int64]bool)}
}

func (a *adminSessions) login(userID int64, password string) error {
	if len(a.hash) == 0 {
		return ErrAdminDisabled
	}
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(password)); err != nil {
		return ErrWrongPassword
	}
	a.mu.Lock()
	a.in[userID] = true
	a.mu.Unlock()
	return nil
}

func (a *adminSessions) logout(userID int64) {
	a.mu.Lock()
	delete(a.in, userID)
	a.mu.Unlock()
}

func (a *adminSessions) isAdmin(userID int64) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.in[userID]
}
