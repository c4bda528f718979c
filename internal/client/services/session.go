// Package services contains the application services of the Bill Board
// client. This file defines the session manager: sign-up, email verification,
// sign-in, onboarding and sign-out, composed from an identity provider and the
// profile API.
package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode"

	"github.com/dmitrijs2005/billboard/internal/client/client"
	"github.com/dmitrijs2005/billboard/internal/client/identity"
	"github.com/dmitrijs2005/billboard/internal/client/models"
	"github.com/dmitrijs2005/billboard/internal/common"
	"github.com/dmitrijs2005/billboard/internal/logging"
)

// User-facing messages.
const (
	MsgSignUpRequired    = "Username, email, and password are required."
	MsgSignInRequired    = "Username and password are required."
	MsgPasswordMismatch  = "Passwords do not match."
	MsgCodeRequired      = "Enter the verification code."
	MsgSignUpFailed      = "Sign up failed. Please try again."
	MsgSignInFailed      = "Sign in failed. Please try again."
	MsgVerifyFailed      = "Verification failed. Please try again."
	MsgResendFailed      = "Could not resend the code. Please try again."
	MsgNoPendingUser     = "No pending sign up. Please register first."
	MsgMissingSession    = "missing session, signed in locally"
	MsgProfileSyncFailed = "Could not save your profile, signed in locally."
	MsgNotSignedIn       = "You are not signed in."
	MsgAlreadySignedIn   = "You are already signed in. Please log out first."
	MsgDeleteFailed      = "Could not delete the account. Please try again."
)

// ProfileStore is the part of the API the session manager depends on.
// client.Client satisfies it.
type ProfileStore interface {
	GetProfile(ctx context.Context, token string) (*models.Profile, error)
	PutProfile(ctx context.Context, token string, profile models.ProfileInput) (*models.Profile, error)
	DeleteAccount(ctx context.Context, token string) error
}

// Phase is the coarse session state shown to the presentation layer.
type Phase int

const (
	PhaseAnonymous Phase = iota
	PhaseRegistering
	PhasePendingVerification
	PhaseAuthenticating
	PhasePendingOnboarding
	PhaseOnboarded
)

func (p Phase) String() string {
	switch p {
	case PhaseRegistering:
		return "registering"
	case PhasePendingVerification:
		return "pending verification"
	case PhaseAuthenticating:
		return "authenticating"
	case PhasePendingOnboarding:
		return "pending onboarding"
	case PhaseOnboarded:
		return "onboarded"
	default:
		return "anonymous"
	}
}

// User is the signed-in, onboarded user.
type User struct {
	Username string
}

// Result is the outcome of a session operation. Operations never return Go
// errors; failures are reported with OK=false and a displayable Error.
// Err keeps the underlying cause for callers that want to match it.
type Result struct {
	OK              bool
	NeedsOnboarding bool
	// SignedIn is true when the operation left the session holding a token.
	SignedIn bool
	Error    string
	Err      error
}

// Snapshot is a consistent copy of the session state.
type Snapshot struct {
	User            *User
	PendingUsername string
	PendingEmail    string
	AuthToken       string
	Phase           Phase
}

type pendingIdentity struct {
	username string
	email    string
	password string
}

// SessionManager owns the authentication and onboarding state. It is safe for
// concurrent use. The state lock is never held during backend calls.
type SessionManager struct {
	identity identity.Provider
	profiles ProfileStore
	log      logging.Logger

	mu        sync.RWMutex
	user      *User
	pending   *pendingIdentity
	token     string
	busy      Phase
	listeners []func(Snapshot)
}

// NewSessionManager returns an anonymous session.
func NewSessionManager(idp identity.Provider, profiles ProfileStore, log logging.Logger) *SessionManager {
	return &SessionManager{
		identity: idp,
		profiles: profiles,
		log:      log.With("component", "session"),
	}
}

// Subscribe registers fn to be called with a fresh snapshot after every state
// change. Listeners run synchronously on the goroutine that made the change,
// outside the state lock.
func (s *SessionManager) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Snapshot returns the current state.
func (s *SessionManager) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// State returns the current phase.
func (s *SessionManager) State() Phase {
	return s.Snapshot().Phase
}

// AuthToken returns the bearer token, or "" when not signed in.
func (s *SessionManager) AuthToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *SessionManager) snapshotLocked() Snapshot {
	snap := Snapshot{AuthToken: s.token, Phase: s.phaseLocked()}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	if s.pending != nil {
		snap.PendingUsername = s.pending.username
		snap.PendingEmail = s.pending.email
	}
	return snap
}

func (s *SessionManager) phaseLocked() Phase {
	switch {
	case s.busy != PhaseAnonymous:
		return s.busy
	case s.user != nil:
		return PhaseOnboarded
	case s.token != "":
		return PhasePendingOnboarding
	case s.pending != nil:
		return PhasePendingVerification
	default:
		return PhaseAnonymous
	}
}

// update applies fn under the write lock and then notifies listeners.
func (s *SessionManager) update(fn func()) {
	s.mu.Lock()
	fn()
	snap := s.snapshotLocked()
	listeners := append([]func(Snapshot){}, s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}

func (s *SessionManager) setBusy(p Phase) {
	s.update(func() { s.busy = p })
}

func fail(msg string, err error) Result {
	return Result{Error: msg, Err: err}
}

// SignUp registers a new account. On success the normalized identity and the
// password are staged until the email is verified. A session held at that
// point is dropped: the staged identity and the token must belong to the same
// user.
func (s *SessionManager) SignUp(ctx context.Context, username, email, password string) Result {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(email) == "" || password == "" {
		return fail(MsgSignUpRequired, common.ErrorValidation)
	}

	username = common.NormalizeIdentifier(username)
	email = common.NormalizeIdentifier(email)

	s.setBusy(PhaseRegistering)
	err := s.identity.Register(ctx, username, password, map[string]string{identity.AttributeEmail: email})
	if err != nil {
		s.setBusy(PhaseAnonymous)
		s.log.Warn(ctx, "sign up failed", "username", username, "kind", identity.KindOf(err).String(), "error", err)
		msg := MsgSignUpFailed
		if identity.KindOf(err) == identity.KindUsernameExists {
			msg = identity.UserMessage(err, MsgSignUpFailed)
		}
		return fail(msg, err)
	}

	dropped := false
	s.update(func() {
		dropped = s.token != ""
		s.busy = PhaseAnonymous
		s.token = ""
		s.user = nil
		s.pending = &pendingIdentity{username: username, email: email, password: password}
	})
	if dropped {
		s.log.Info(ctx, "previous session dropped by sign up", "username", username)
	}
	s.log.Info(ctx, "signed up, awaiting verification", "username", username)
	return Result{OK: true}
}

// ConfirmSignUp verifies the pending registration with code. When the
// password from SignUp is still staged it signs in right away.
func (s *SessionManager) ConfirmSignUp(ctx context.Context, code string) Result {
	code = strings.TrimSpace(code)
	if code == "" {
		return fail(MsgCodeRequired, common.ErrorValidation)
	}

	s.mu.RLock()
	var pending pendingIdentity
	hasPending := s.pending != nil
	if hasPending {
		pending = *s.pending
	}
	signedIn := s.token != ""
	s.mu.RUnlock()

	if signedIn {
		return fail(MsgAlreadySignedIn, common.ErrSignedIn)
	}
	if !hasPending {
		return fail(MsgNoPendingUser, common.ErrNoPendingUser)
	}

	if err := s.identity.ConfirmRegistration(ctx, pending.username, code); err != nil {
		s.log.Warn(ctx, "verification failed", "username", pending.username, "kind", identity.KindOf(err).String(), "error", err)
		return fail(identity.UserMessage(err, MsgVerifyFailed), err)
	}

	s.update(func() {
		if s.pending != nil && s.pending.username == pending.username {
			s.pending.password = ""
		}
	})
	s.log.Info(ctx, "email verified", "username", pending.username)

	if pending.password == "" {
		return Result{OK: true}
	}

	inner := s.SignIn(ctx, pending.username, pending.password)
	if !inner.OK {
		// The account is verified; only the automatic sign-in failed.
		return Result{OK: true, Error: inner.Error, Err: inner.Err}
	}
	return Result{OK: true, NeedsOnboarding: inner.NeedsOnboarding, SignedIn: true}
}

// ResendCode asks the identity provider to send a new verification code for
// the pending registration.
func (s *SessionManager) ResendCode(ctx context.Context) Result {
	s.mu.RLock()
	username := ""
	if s.pending != nil {
		username = s.pending.username
	}
	signedIn := s.token != ""
	s.mu.RUnlock()

	if signedIn {
		return fail(MsgAlreadySignedIn, common.ErrSignedIn)
	}
	if username == "" {
		return fail(MsgNoPendingUser, common.ErrNoPendingUser)
	}

	if err := s.identity.ResendConfirmationCode(ctx, username); err != nil {
		s.log.Warn(ctx, "resend code failed", "username", username, "error", err)
		return fail(identity.UserMessage(err, MsgResendFailed), err)
	}
	return Result{OK: true}
}

// SignIn authenticates and then decides from the stored profile whether the
// user still has to be onboarded. A failed profile fetch routes to onboarding.
func (s *SessionManager) SignIn(ctx context.Context, username, password string) Result {
	if strings.TrimSpace(username) == "" || password == "" {
		return fail(MsgSignInRequired, common.ErrorValidation)
	}
	username = common.NormalizeIdentifier(username)

	s.setBusy(PhaseAuthenticating)
	cred, err := s.identity.Authenticate(ctx, username, password)
	if err != nil {
		s.setBusy(PhaseAnonymous)
		s.log.Warn(ctx, "sign in failed", "username", username, "kind", identity.KindOf(err).String(), "error", err)
		return fail(identity.UserMessage(err, MsgSignInFailed), err)
	}

	email := strings.TrimSpace(cred.Claims.Email)
	s.update(func() {
		s.busy = PhaseAnonymous
		s.token = cred.IDToken
		s.user = nil
		if email == "" && s.pending != nil && s.pending.username == username {
			email = s.pending.email
		}
		s.pending = &pendingIdentity{username: username, email: email}
	})

	profile, err := s.profiles.GetProfile(ctx, cred.IDToken)
	if err != nil {
		if !errors.Is(err, client.ErrNotFound) {
			s.log.Warn(ctx, "profile fetch failed, routing to onboarding", "username", username, "error", err)
		}
		return Result{OK: true, NeedsOnboarding: true, SignedIn: true}
	}
	if !profile.Onboarded {
		return Result{OK: true, NeedsOnboarding: true, SignedIn: true}
	}

	s.update(func() {
		if s.token == cred.IDToken {
			s.promoteLocked(username)
		}
	})
	s.log.Info(ctx, "signed in", "username", username)
	return Result{OK: true, SignedIn: true}
}

// promoteLocked turns the pending identity into the signed-in user.
func (s *SessionManager) promoteLocked(username string) {
	s.user = &User{Username: username}
	s.pending = nil
}

// CompleteOnboarding stores the onboarding answers with onboarded=true. Blank
// demographic values are dropped. The user is promoted locally even when the
// write cannot be made or fails, and the result then reports OK=false.
func (s *SessionManager) CompleteOnboarding(ctx context.Context, demographics map[string]string, interests []string) Result {
	s.mu.RLock()
	var pending pendingIdentity
	hasPending := s.pending != nil && s.pending.username != ""
	if hasPending {
		pending = *s.pending
	}
	token := s.token
	s.mu.RUnlock()

	if !hasPending {
		return fail(MsgNoPendingUser, common.ErrNoPendingUser)
	}

	promote := func() {
		s.update(func() {
			if s.pending != nil && s.pending.username == pending.username {
				s.promoteLocked(pending.username)
			}
		})
	}

	if token == "" {
		promote()
		s.log.Warn(ctx, "onboarding without session, promoted locally", "username", pending.username)
		return Result{Error: MsgMissingSession, Err: common.ErrMissingSession}
	}

	input := models.ProfileInput{
		Username:     pending.username,
		Email:        pending.email,
		Interests:    models.NormalizeInterests(interests),
		Demographics: models.FilterDemographics(demographics),
		Onboarded:    true,
	}
	if _, err := s.profiles.PutProfile(ctx, token, input); err != nil {
		promote()
		s.log.Error(ctx, "profile write failed, promoted locally", "username", pending.username, "error", err)
		return Result{Error: MsgProfileSyncFailed, Err: err, SignedIn: true}
	}

	promote()
	s.log.Info(ctx, "onboarding complete", "username", pending.username)
	return Result{OK: true, SignedIn: true}
}

// SignOut clears the whole session. It never fails and may be called any
// number of times.
func (s *SessionManager) SignOut() {
	s.update(func() {
		s.user = nil
		s.pending = nil
		s.token = ""
		s.busy = PhaseAnonymous
	})
}

// DeleteAccount deletes the server-side profile and saved bills of the
// signed-in user, then signs out.
func (s *SessionManager) DeleteAccount(ctx context.Context) Result {
	token := s.AuthToken()
	if token == "" {
		return fail(MsgNotSignedIn, common.ErrNotSignedIn)
	}

	if err := s.profiles.DeleteAccount(ctx, token); err != nil {
		s.log.Error(ctx, "delete account failed", "error", err)
		return fail(MsgDeleteFailed, err)
	}

	s.SignOut()
	s.log.Info(ctx, "account deleted")
	return Result{OK: true}
}

// ValidateSignUpForm checks the sign-up form before any network call and
// returns the message to show, or "" when the form is acceptable.
func ValidateSignUpForm(username, email, password, confirm string) string {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(email) == "" || password == "" {
		return MsgSignUpRequired
	}
	if password != confirm {
		return MsgPasswordMismatch
	}
	return ""
}

// PasswordChecks reports which password rules are met.
type PasswordChecks struct {
	Length bool
	Upper  bool
	Lower  bool
	Number bool
	Symbol bool
}

// OK reports whether every rule is met.
func (c PasswordChecks) OK() bool {
	return c.Length && c.Upper && c.Lower && c.Number && c.Symbol
}

// MinPasswordLength is the minimum password length accepted by the user pool.
const MinPasswordLength = 8

// CheckPassword evaluates password against the user pool's policy.
func CheckPassword(password string) PasswordChecks {
	var c PasswordChecks
	c.Length = len([]rune(password)) >= MinPasswordLength
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			c.Upper = true
		case unicode.IsLower(r):
			c.Lower = true
		case unicode.IsDigit(r):
			c.Number = true
		case !unicode.IsSpace(r) && !unicode.IsLetter(r):
			c.Symbol = true
		}
	}
	return c
}
