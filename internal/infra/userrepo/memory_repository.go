package userrepo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yanqian/findmy/internal/domain/auth"
)

// MemoryRepository keeps users in process memory when no database is configured.
type MemoryRepository struct {
	mu        sync.RWMutex
	users     map[int64]auth.User
	byEmail   map[string]int64
	bySubject map[string]int64
	seq       int64
}

// NewMemoryRepository constructs an empty store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:     make(map[int64]auth.User),
		byEmail:   make(map[string]int64),
		bySubject: make(map[string]int64),
	}
}

// Create stores a user; email and Google subject are unique.
func (r *MemoryRepository) Create(_ context.Context, in auth.NewUser) (auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[in.Email]; exists {
		return auth.User{}, auth.ErrEmailExists
	}
	if _, taken := r.bySubject[in.GoogleSubject]; in.GoogleSubject != "" && taken {
		return auth.User{}, auth.ErrSubjectTaken
	}
	r.seq++
	user := auth.User{
		ID:            r.seq,
		Email:         in.Email,
		Nickname:      in.Nickname,
		PasswordHash:  in.PasswordHash,
		GoogleSubject: in.GoogleSubject,
		CreatedAt:     time.Now().UTC(),
	}
	r.users[user.ID] = user
	r.byEmail[user.Email] = user.ID
	if user.GoogleSubject != "" {
		r.bySubject[user.GoogleSubject] = user.ID
	}
	return user, nil
}

// GetByEmail returns a user by email.
func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (auth.User, bool, error) {
	return r.lookup(r.byEmail, email)
}

// GetByGoogleSubject returns the user bound to a Google account.
func (r *MemoryRepository) GetByGoogleSubject(_ context.Context, subject string) (auth.User, bool, error) {
	return r.lookup(r.bySubject, subject)
}

// GetByID fetches by ID.
func (r *MemoryRepository) GetByID(_ context.Context, id int64) (auth.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	return user, ok, nil
}

// LinkGoogle binds subject to the user.
func (r *MemoryRepository) LinkGoogle(_ context.Context, userID int64, subject string) (auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return auth.User{}, fmt.Errorf("user %d not found", userID)
	}
	if owner, taken := r.bySubject[subject]; taken && owner != userID {
		return auth.User{}, auth.ErrSubjectTaken
	}
	if user.GoogleSubject != "" {
		delete(r.bySubject, user.GoogleSubject)
	}
	user.GoogleSubject = subject
	r.users[userID] = user
	r.bySubject[subject] = userID
	return user, nil
}

func (r *MemoryRepository) lookup(index map[string]int64, key string) (auth.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := index[key]
	if !ok {
		return auth.User{}, false, nil
	}
	return r.users[id], true, nil
}

var _ auth.Repository = (*MemoryRepository)(nil)
