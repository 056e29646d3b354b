package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hay-kot/lingo/internal/core/kv"
)

const (
	sessionKey    = "auth:session"
	profilePrefix = "profile:"
)

// Profile is the per-user record written at sign-up.
type Profile struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Sessions persists the signed-in user and user profiles in a kv.Store.
type Sessions struct {
	store kv.Store
}

func NewSessions(store kv.Store) *Sessions {
	return &Sessions{store: store}
}

func (s *Sessions) Save(ctx context.Context, u User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.store.Set(ctx, sessionKey, string(data)); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *Sessions) Current(ctx context.Context) (User, error) {
	entry, err := s.store.Get(ctx, sessionKey)
	if errors.Is(err, kv.ErrKeyNotFound) {
		return User{}, newError(ReasonNotSignedIn, nil)
	}
	if err != nil {
		return User{}, newError(ReasonProvider, fmt.Errorf("load session: %w", err))
	}

	var u User
	if err := json.Unmarshal([]byte(entry.Value), &u); err != nil || u.UID == "" {
		return User{}, newError(ReasonNotSignedIn, errors.New("stored session is unreadable"))
	}
	return u, nil
}

func (s *Sessions) Clear(ctx context.Context) error {
	err := s.store.Delete(ctx, sessionKey)
	if err != nil && !errors.Is(err, kv.ErrKeyNotFound) {
		return newError(ReasonProvider, fmt.Errorf("clear session: %w", err))
	}
	return nil
}

// SaveProfile stores p, stamping CreatedAt when unset.
func (s *Sessions) SaveProfile(ctx context.Context, p Profile) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	if err := s.store.Set(ctx, profilePrefix+p.UID, string(data)); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// Profile returns the profile for uid. Returns kv.ErrKeyNotFound if absent.
func (s *Sessions) Profile(ctx context.Context, uid string) (Profile, error) {
	entry, err := s.store.Get(ctx, profilePrefix+uid)
	if err != nil {
		return Profile{}, err
	}
	var p Profile
	if err := json.Unmarshal([]byte(entry.Value), &p); err != nil {
		return Profile{}, fmt.Errorf("parse profile %s: %w", uid, err)
	}
	return p, nil
}
