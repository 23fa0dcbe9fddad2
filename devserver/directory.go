package devserver

import (
	"errors"
	"strings"
	"sync"

	"github.com/MrEthical07/goSession/session"
)

var (
	ErrEmailTaken = errors.New("email already registered")
	ErrNotFound   = errors.New("account not found")
)

type account struct {
	user session.Session
	hash string
}

// Directory is the in-memory account table.
type Directory struct {
	mu      sync.RWMutex
	byID    map[string]*account
	byEmail map[string]string
}

func NewDirectory() *Directory {
	return &Directory{
		byID:    make(map[string]*account),
		byEmail: make(map[string]string),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create adds an account. Emails are unique case-insensitively.
func (d *Directory) Create(user session.Session, hash string) error {
	key := normalizeEmail(user.Email)

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.byEmail[key]; ok {
		return ErrEmailTaken
	}
	d.byID[user.ID] = &account{user: user, hash: hash}
	d.byEmail[key] = user.ID
	return nil
}

// ByEmail returns the account for email.
func (d *Directory) ByEmail(email string) (session.Session, string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	id, ok := d.byEmail[normalizeEmail(email)]
	if !ok {
		return session.Session{}, "", ErrNotFound
	}
	a := d.byID[id]
	return a.user, a.hash, nil
}

// ByID returns the profile for id.
func (d *Directory) ByID(id string) (session.Session, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	a, ok := d.byID[id]
	if !ok {
		return session.Session{}, ErrNotFound
	}
	return a.user, nil
}

// Update applies patch to the profile for id and returns the result.
func (d *Directory) Update(id string, patch session.Patch) (session.Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	a, ok := d.byID[id]
	if !ok {
		return session.Session{}, ErrNotFound
	}

	updated := patch.Apply(a.user)
	oldKey, newKey := normalizeEmail(a.user.Email), normalizeEmail(updated.Email)
	if oldKey != newKey {
		if _, taken := d.byEmail[newKey]; taken {
			return session.Session{}, ErrEmailTaken
		}
		delete(d.byEmail, oldKey)
		d.byEmail[newKey] = id
	}
	a.user = updated
	return updated, nil
}

// Len returns the number of accounts.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.byID)
}
