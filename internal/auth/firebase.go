package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hay-kot/lingo/internal/core/kv"
)

// DefaultFirebaseURL is the Identity Toolkit REST base.
const DefaultFirebaseURL = "https://identitytoolkit.googleapis.com/v1"

// Firebase authenticates with Firebase email/password accounts through the
// Identity Toolkit REST API. The signed-in user is kept in the kv store.
type Firebase struct {
	baseURL  string
	apiKey   string
	client   *http.Client
	sessions *Sessions
}

var _ Provider = (*Firebase)(nil)

func NewFirebase(baseURL, apiKey string, store kv.Store) *Firebase {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = DefaultFirebaseURL
	}
	return &Firebase{
		baseURL:  baseURL,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 30 * time.Second},
		sessions: NewSessions(store),
	}
}

func (f *Firebase) Name() string { return "firebase" }

type firebaseRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type firebaseResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
}

type firebaseError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (f *Firebase) SignUp(ctx context.Context, email, password string) (User, error) {
	email = NormalizeEmail(email)
	if err := validateCredentials(email, password, true); err != nil {
		return User{}, err
	}

	resp, err := f.call(ctx, "accounts:signUp", email, password)
	if err != nil {
		return User{}, err
	}

	u := f.user(resp)
	if err := f.sessions.SaveProfile(ctx, Profile{UID: u.UID, Email: u.Email}); err != nil {
		return User{}, newError(ReasonProvider, err)
	}
	if err := f.sessions.Save(ctx, u); err != nil {
		return User{}, newError(ReasonProvider, err)
	}
	return u, nil
}

func (f *Firebase) SignIn(ctx context.Context, email, password string) (User, error) {
	email = NormalizeEmail(email)
	if err := validateCredentials(email, password, false); err != nil {
		return User{}, err
	}

	resp, err := f.call(ctx, "accounts:signInWithPassword", email, password)
	if err != nil {
		return User{}, err
	}

	u := f.user(resp)
	if err := f.sessions.Save(ctx, u); err != nil {
		return User{}, newError(ReasonProvider, err)
	}
	return u, nil
}

func (f *Firebase) SignOut(ctx context.Context) error {
	return f.sessions.Clear(ctx)
}

func (f *Firebase) CurrentUser(ctx context.Context) (User, error) {
	return f.sessions.Current(ctx)
}

func (f *Firebase) user(resp firebaseResponse) User {
	return User{
		UID:      resp.LocalID,
		Email:    resp.Email,
		Provider: f.Name(),
		IDToken:  resp.IDToken,
		SignedIn: time.Now().UTC(),
	}
}

func (f *Firebase) call(ctx context.Context, method, email, password string) (firebaseResponse, error) {
	if f.apiKey == "" {
		return firebaseResponse{}, newError(ReasonProvider, errors.New("firebase api key is not configured"))
	}

	body, err := json.Marshal(firebaseRequest{Email: email, Password: password, ReturnSecureToken: true})
	if err != nil {
		return firebaseResponse{}, newError(ReasonProvider, err)
	}

	endpoint := f.baseURL + "/" + method + "?key=" + url.QueryEscape(f.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return firebaseResponse{}, newError(ReasonProvider, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return firebaseResponse{}, newError(ReasonProvider, fmt.Errorf("send %s: %w", method, err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return firebaseResponse{}, newError(ReasonProvider, fmt.Errorf("read %s: %w", method, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var fe firebaseError
		if json.Unmarshal(respBody, &fe) == nil && fe.Error.Message != "" {
			return firebaseResponse{}, newError(firebaseReason(fe.Error.Message), errors.New(fe.Error.Message))
		}
		return firebaseResponse{}, newError(ReasonProvider, fmt.Errorf("%s status %d", method, resp.StatusCode))
	}

	var parsed firebaseResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return firebaseResponse{}, newError(ReasonProvider, fmt.Errorf("decode %s: %w", method, err))
	}
	if parsed.LocalID == "" {
		return firebaseResponse{}, newError(ReasonProvider, fmt.Errorf("%s response missing localId", method))
	}
	return parsed, nil
}

// firebaseReason maps Identity Toolkit error codes. Messages may carry a
// suffix ("WEAK_PASSWORD : Password should be at least 6 characters").
func firebaseReason(message string) Reason {
	code, _, _ := strings.Cut(message, " ")
	switch code {
	case "EMAIL_EXISTS":
		return ReasonEmailInUse
	case "INVALID_EMAIL":
		return ReasonInvalidEmail
	case "WEAK_PASSWORD":
		return ReasonWeakPassword
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "USER_DISABLED":
		return ReasonInvalidCredentials
	default:
		return ReasonProvider
	}
}
