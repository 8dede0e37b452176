package repository

import (
	"context"
	"sync"

	"github.com/carepredict/authapi/internal/model"
)

// MemoryStore is an in-process user store for development and tests.
// Check-and-insert runs under one lock, so concurrent signups cannot both
// claim the same email or username.
type MemoryStore struct {
	mu         sync.RWMutex
	byID       map[string]*model.User
	byEmail    map[string]string
	byUsername map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:       make(map[string]*model.User),
		byEmail:    make(map[string]string),
		byUsername: make(map[string]string),
	}
}

// CreateUser stores a copy of user.
func (m *MemoryStore) CreateUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byEmail[user.Email]; ok {
		return ErrEmailExists
	}
	if _, ok := m.byUsername[user.Username]; ok {
		return ErrUsernameExists
	}

	stored := *user
	m.byID[user.ID] = &stored
	m.byEmail[user.Email] = user.ID
	m.byUsername[user.Username] = user.ID
	return nil
}

// GetUserByID retrieves a user by ID.
func (m *MemoryStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lookup(id)
}

// GetUserByEmail retrieves a user by email.
func (m *MemoryStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lookup(m.byEmail[email])
}

// GetUserByUsername retrieves a user by username.
func (m *MemoryStore) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lookup(m.byUsername[username])
}

// DeleteUser removes a user by ID. It exists for administrative tooling and tests.
func (m *MemoryStore) DeleteUser(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.byID[id]
	if !ok {
		return ErrUserNotFound
	}
	delete(m.byID, id)
	delete(m.byEmail, user.Email)
	delete(m.byUsername, user.Username)
	return nil
}

// Ping always succeeds.
func (m *MemoryStore) Ping(context.Context) error {
	return nil
}

func (m *MemoryStore) lookup(id string) (*model.User, error) {
	user, ok := m.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}
