package application

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/cohesia-portal/internal/domain/entity"
	repo "github.com/oksasatya/cohesia-portal/internal/domain/repository"
	"github.com/oksasatya/cohesia-portal/pkg/helpers"
)

// SessionService issues, resolves and destroys server-side sessions. The
// cookie carries only a signed session id; the record lives in Store.
type SessionService struct {
	Store  repo.SessionStore
	Signer *helpers.SessionSigner
	TTL    time.Duration
	Logger *logrus.Logger

	now func() time.Time
}

// IssuedSession is what the HTTP layer needs to set the cookie.
type IssuedSession struct {
	Token     string
	ExpiresAt time.Time
}

func NewSessionService(store repo.SessionStore, signer *helpers.SessionSigner, ttl time.Duration, logger *logrus.Logger) *SessionService {
	return &SessionService{Store: store, Signer: signer, TTL: ttl, Logger: logger, now: time.Now}
}

// Establish creates a fresh session for u. Any session referenced by previous
// is destroyed first so a login never reuses an existing id.
func (s *SessionService) Establish(ctx context.Context, u *entity.User, previous string) (IssuedSession, error) {
	if previous != "" {
		if err := s.Destroy(ctx, previous); err != nil && s.Logger != nil {
			s.Logger.WithError(err).Warn("destroy previous session failed")
		}
	}

	sid, err := helpers.GenSessionID()
	if err != nil {
		return IssuedSession{}, fmt.Errorf("generate session id: %w", err)
	}
	now := s.now().UTC()
	exp := now.Add(s.TTL)
	sess := entity.Session{
		UserID:    u.EmployeeID,
		Role:      u.Role,
		Name:      u.Name,
		IssuedAt:  now,
		ExpiresAt: exp,
	}
	if err := s.Store.Save(ctx, sid, sess, s.TTL); err != nil {
		return IssuedSession{}, err
	}
	token, err := s.Signer.Sign(sid, exp)
	if err != nil {
		_ = s.Store.Delete(ctx, sid)
		return IssuedSession{}, fmt.Errorf("sign session: %w", err)
	}
	return IssuedSession{Token: token, ExpiresAt: exp}, nil
}

// Resolve returns the live session for token, or nil when the token is empty,
// forged, expired or unknown.
func (s *SessionService) Resolve(ctx context.Context, token string) (*entity.Session, error) {
	if token == "" {
		return nil, nil
	}
	sid, err := s.Signer.Parse(token)
	if err != nil {
		return nil, nil
	}
	sess, err := s.Store.Get(ctx, sid)
	if err != nil || sess == nil {
		return nil, err
	}
	if sess.Expired(s.now()) {
		_ = s.Store.Delete(ctx, sid)
		return nil, nil
	}
	return sess, nil
}

// Destroy removes the session referenced by token. Unknown or invalid tokens
// are not an error.
func (s *SessionService) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	sid, err := s.Signer.Parse(token)
	if err != nil {
		return nil
	}
	return s.Store.Delete(ctx, sid)
}
