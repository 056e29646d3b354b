package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hay-kot/lingo/internal/core/kv"
)

const userPrefix = "auth:user:"

type account struct {
	UID          string    `json:"uid"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Local keeps accounts in the kv store with bcrypt password hashes. It is
// meant for offline use and tests, not for protecting shared data.
type Local struct {
	store    kv.Store
	sessions *Sessions
	cost     int
}

var _ Provider = (*Local)(nil)

func NewLocal(store kv.Store) *Local {
	return &Local{store: store, sessions: NewSessions(store), cost: bcrypt.DefaultCost}
}

func (l *Local) Name() string { return "local" }

func (l *Local) SignUp(ctx context.Context, email, password string) (User, error) {
	email = NormalizeEmail(email)
	if err := validateCredentials(email, password, true); err != nil {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), l.cost)
	if err != nil {
		return User{}, newError(ReasonWeakPassword, err)
	}

	acct := account{
		UID:          uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	data, err := json.Marshal(acct)
	if err != nil {
		return User{}, newError(ReasonProvider, err)
	}

	errTaken := newError(ReasonEmailInUse, fmt.Errorf("%s is already registered", email))
	if u, ok := l.store.(kv.Updater); ok {
		err = u.Update(ctx, userPrefix+email, func(_ string, found bool) (string, error) {
			if found {
				return "", errTaken
			}
			return string(data), nil
		})
	} else {
		if _, getErr := l.store.Get(ctx, userPrefix+email); getErr == nil {
			err = errTaken
		} else {
			err = l.store.Set(ctx, userPrefix+email, string(data))
		}
	}
	if err != nil {
		if HasReason(err, ReasonEmailInUse) {
			return User{}, err
		}
		return User{}, newError(ReasonProvider, fmt.Errorf("save account: %w", err))
	}

	if err := l.sessions.SaveProfile(ctx, Profile{UID: acct.UID, Email: email, CreatedAt: acct.CreatedAt}); err != nil {
		return User{}, newError(ReasonProvider, err)
	}
	return l.startSession(ctx, acct)
}

func (l *Local) SignIn(ctx context.Context, email, password string) (User, error) {
	email = NormalizeEmail(email)
	if err := validateCredentials(email, password, false); err != nil {
		return User{}, err
	}

	errBadLogin := newError(ReasonInvalidCredentials, errors.New("email or password is incorrect"))

	entry, err := l.store.Get(ctx, userPrefix+email)
	if errors.Is(err, kv.ErrKeyNotFound) {
		return User{}, errBadLogin
	}
	if err != nil {
		return User{}, newError(ReasonProvider, err)
	}

	var acct account
	if err := json.Unmarshal([]byte(entry.Value), &acct); err != nil {
		return User{}, newError(ReasonProvider, fmt.Errorf("parse account: %w", err))
	}
	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)) != nil {
		return User{}, errBadLogin
	}
	return l.startSession(ctx, acct)
}

func (l *Local) SignOut(ctx context.Context) error {
	return l.sessions.Clear(ctx)
}

func (l *Local) CurrentUser(ctx context.Context) (User, error) {
	return l.sessions.Current(ctx)
}

func (l *Local) startSession(ctx context.Context, acct account) (User, error) {
	u := User{UID: acct.UID, Email: acct.Email, Provider: l.Name(), SignedIn: time.Now().UTC()}
	if err := l.sessions.Save(ctx, u); err != nil {
		return User{}, newError(ReasonProvider, err)
	}
	return u, nil
}
