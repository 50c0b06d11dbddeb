package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/org-directory/internal/auth"
	"github.com/spec-kit/org-directory/internal/domain"
	"github.com/spec-kit/org-directory/internal/events"
	"github.com/spec-kit/org-directory/internal/repository"
	apperrors "github.com/spec-kit/org-directory/pkg/util/errorutil"
)

// MsgInvalidCredentials is the single login failure message. Unknown emails and
// wrong passwords are indistinguishable to the caller.
const MsgInvalidCredentials = "invalid credentials"

// compared against when the email is unknown so both failure paths do the same work
const decoyPassword = "decoy-password-never-stored"

// LoginResult is returned by a successful login.
type LoginResult struct {
	Session   domain.Session
	Token     string
	ExpiresAt time.Time
}

// SessionService tracks the single active session. The persisted CurrentSession
// record is the source of truth, so a restarted process rehydrates from it.
type SessionService struct {
	deps   Dependencies
	tokens *auth.TokenManager
}

// NewSessionService builds the service.
func NewSessionService(deps Dependencies, tokens *auth.TokenManager) *SessionService {
	return &SessionService{deps: deps.withDefaults(), tokens: tokens}
}

// Login authenticates credentials and replaces the current session.
func (s *SessionService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var session domain.Session
	var previous *domain.Session

	err := s.deps.Store.Update(ctx, func(snap *repository.Snapshot) error {
		user, ok := repository.UserCollection(snap.Users).GetByEmail(email)
		if !ok {
			auth.PasswordMatches(decoyPassword, password)
			return apperrors.NewUnauthorized(MsgInvalidCredentials)
		}
		if !auth.PasswordMatches(user.Password, password) {
			return apperrors.NewUnauthorized(MsgInvalidCredentials)
		}

		previous = snap.Session
		session = domain.Session{
			ID:        s.deps.IDs(),
			User:      user.Public(),
			StartedAt: s.deps.Clock(),
		}
		snap.Session = &session
		return nil
	})
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeUnauthorized) {
			s.deps.Logger.Info("login rejected")
		}
		return nil, apperrors.MapError(err)
	}

	token, exp, err := s.tokens.GenerateToken(session)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	actor := domain.ActorOf(session.User)
	if previous != nil {
		s.deps.publish(ctx, events.EventSessionEnded, previous.User.ID, domain.ActorOf(previous.User), events.SessionPayload{SessionID: previous.ID})
	}
	s.deps.Logger.Info("session started", zap.String("user_id", session.User.ID), zap.String("session_id", session.ID))
	s.deps.publish(ctx, events.EventSessionStarted, session.User.ID, actor, events.SessionPayload{SessionID: session.ID})

	return &LoginResult{Session: session, Token: token, ExpiresAt: exp}, nil
}

// Logout clears the current session. Logging out while anonymous is a no-op.
func (s *SessionService) Logout(ctx context.Context) error {
	var ended *domain.Session
	err := s.deps.Store.Update(ctx, func(snap *repository.Snapshot) error {
		ended = snap.Session
		snap.Session = nil
		return nil
	})
	if err != nil {
		return apperrors.MapError(err)
	}
	if ended == nil {
		return nil
	}

	s.deps.Logger.Info("session ended", zap.String("user_id", ended.User.ID), zap.String("session_id", ended.ID))
	s.deps.publish(ctx, events.EventSessionEnded, ended.User.ID, domain.ActorOf(ended.User), events.SessionPayload{SessionID: ended.ID})
	return nil
}

// Current returns the persisted session, or nil when anonymous.
func (s *SessionService) Current(ctx context.Context) (*domain.Session, error) {
	snap, err := s.deps.Store.Load(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return snap.Session, nil
}

// Restore reports the session found in storage at process start.
func (s *SessionService) Restore(ctx context.Context) (*domain.Session, error) {
	session, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		s.deps.Logger.Info("no session to restore")
		return nil, nil
	}
	s.deps.Logger.Info("session restored", zap.String("user_id", session.User.ID), zap.String("session_id", session.ID))
	return session, nil
}

// ErrNoActiveSession is returned when a refresh targets an anonymous store.
var ErrNoActiveSession = errors.New("no active session")

// RefreshFromProfileUpdate replaces the session user with updated when the
// session belongs to that user. UserService applies the same rule inside its own
// transaction; this entry point serves callers that changed a user out of band.
func (s *SessionService) RefreshFromProfileUpdate(ctx context.Context, updated domain.User) error {
	err := s.deps.Store.Update(ctx, func(snap *repository.Snapshot) error {
		if snap.Session == nil {
			return ErrNoActiveSession
		}
		if !refreshSessionUser(snap, updated) {
			return apperrors.NewForbidden("session belongs to another user")
		}
		return nil
	})
	if errors.Is(err, ErrNoActiveSession) {
		return apperrors.NewUnauthorized(ErrNoActiveSession.Error())
	}
	return apperrors.MapError(err)
}

// refreshSessionUser swaps the session user for updated when ids match.
func refreshSessionUser(snap *repository.Snapshot, updated domain.User) bool {
	if snap.Session == nil || snap.Session.User.ID != updated.ID {
		return false
	}
	session := *snap.Session
	session.User = updated.Public()
	snap.Session = &session
	return true
}
