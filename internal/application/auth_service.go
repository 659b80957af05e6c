package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/cohesia-portal/internal/domain/entity"
	repo "github.com/oksasatya/cohesia-portal/internal/domain/repository"
	"github.com/oksasatya/cohesia-portal/pkg/events"
	"github.com/oksasatya/cohesia-portal/pkg/helpers"
)

// EventPublisher sends audit events somewhere durable. Implemented by
// helpers.RabbitPublisher.
type EventPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

type AuthService struct {
	Users         repo.UserRepository
	Sessions      *SessionService
	Events        EventPublisher
	Logger        *logrus.Logger
	HashPasswords bool

	now func() time.Time
}

func NewAuthService(users repo.UserRepository, sessions *SessionService, events EventPublisher, logger *logrus.Logger, hashPasswords bool) *AuthService {
	return &AuthService{
		Users:         users,
		Sessions:      sessions,
		Events:        events,
		Logger:        logger,
		HashPasswords: hashPasswords,
		now:           time.Now,
	}
}

// Identity is returned by both login flows.
type Identity struct {
	Role       entity.Role `json:"role"`
	Name       string      `json:"name"`
	EmployeeID string      `json:"employeeId"`
}

// VerifiedUser is the non-secret profile returned by VerifyUser.
type VerifiedUser struct {
	Name        string      `json:"name"`
	EmployeeID  string      `json:"employeeId"`
	Role        entity.Role `json:"role"`
	PhoneNumber string      `json:"phoneNumber"`
}

// RegisteredUser is the subset echoed back after registration.
type RegisteredUser struct {
	Name       string      `json:"name"`
	EmployeeID string      `json:"employeeId"`
	Role       entity.Role `json:"role"`
}

type RegisterInput struct {
	Name        string
	EmployeeID  string
	PhoneNumber string
	Password    string
	Role        string
}

func identityOf(u *entity.User) *Identity {
	return &Identity{Role: u.Role, Name: u.Name, EmployeeID: u.EmployeeID}
}

// lookup returns the user or (nil, nil) when the id is unknown.
func (s *AuthService) lookup(ctx context.Context, employeeID string) (*entity.User, error) {
	u, err := s.Users.FindByEmployeeID(ctx, employeeID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, newError(ErrInternal, MsgInternal, err)
	}
	return u, nil
}

// Login checks employeeID/password and establishes a session. Unknown ids and
// wrong passwords produce the same error so callers cannot enumerate users.
func (s *AuthService) Login(ctx context.Context, employeeID, password, current string) (*Identity, IssuedSession, error) {
	if employeeID == "" || password == "" {
		return nil, IssuedSession{}, newError(ErrValidation, MsgCredentialsRequired, nil)
	}
	u, err := s.lookup(ctx, employeeID)
	if err != nil {
		return nil, IssuedSession{}, err
	}
	if u == nil || !helpers.PasswordMatches(u.Password, password) {
		s.publish(ctx, events.New(ctx, events.LoginFailed, employeeID, "", ""))
		return nil, IssuedSession{}, newError(ErrAuth, MsgInvalidCredentials, nil)
	}

	issued, err := s.Sessions.Establish(ctx, u, current)
	if err != nil {
		return nil, IssuedSession{}, newError(ErrInternal, MsgInternal, err)
	}
	s.publish(ctx, events.New(ctx, events.LoginSucceeded, u.EmployeeID, u.Name, u.Role.String()))
	return identityOf(u), issued, nil
}

// OTPLogin establishes a session from an employee id alone. No password or
// one-time code is checked here; the code exchange happens on the client.
func (s *AuthService) OTPLogin(ctx context.Context, employeeID, current string) (*Identity, IssuedSession, error) {
	if employeeID == "" {
		return nil, IssuedSession{}, newError(ErrValidation, MsgEmployeeIDRequired, nil)
	}
	u, err := s.lookup(ctx, employeeID)
	if err != nil {
		return nil, IssuedSession{}, err
	}
	if u == nil {
		return nil, IssuedSession{}, newError(ErrAuth, MsgInvalidEmployeeID, nil)
	}

	issued, err := s.Sessions.Establish(ctx, u, current)
	if err != nil {
		return nil, IssuedSession{}, newError(ErrInternal, MsgInternal, err)
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"employee_id": u.EmployeeID, "role": u.Role}).Info("otp login successful")
	}
	s.publish(ctx, events.New(ctx, events.OTPLogin, u.EmployeeID, u.Name, u.Role.String()))
	return identityOf(u), issued, nil
}

// VerifyUser returns the profile of an existing employee without creating a session.
func (s *AuthService) VerifyUser(ctx context.Context, employeeID string) (*VerifiedUser, error) {
	if employeeID == "" {
		return nil, newError(ErrValidation, MsgEmployeeIDRequired, nil)
	}
	u, err := s.lookup(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, newError(ErrNotFound, MsgEmployeeNotFound, nil)
	}
	return &VerifiedUser{Name: u.Name, EmployeeID: u.EmployeeID, Role: u.Role, PhoneNumber: u.PhoneNumber}, nil
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*RegisteredUser, error) {
	if in.Name == "" || in.EmployeeID == "" || in.PhoneNumber == "" || in.Password == "" || in.Role == "" {
		return nil, newError(ErrValidation, MsgAllFieldsRequired, nil)
	}
	existing, err := s.lookup(ctx, in.EmployeeID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, newError(ErrConflict, MsgEmployeeIDExists, nil)
	}

	password := in.Password
	if s.HashPasswords {
		h, err := helpers.HashPassword(in.Password)
		if err != nil {
			return nil, newError(ErrInternal, MsgInternal, err)
		}
		password = h
	}

	u := entity.User{
		Name:        in.Name,
		EmployeeID:  in.EmployeeID,
		PhoneNumber: in.PhoneNumber,
		Password:    password,
		Role:        entity.Role(in.Role),
		CreatedAt:   entity.FormatTimestamp(s.now()),
	}
	if err := s.Users.Append(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, newError(ErrConflict, MsgEmployeeIDExists, err)
		}
		return nil, newError(ErrInternal, MsgSaveFailed, err)
	}

	s.publish(ctx, events.New(ctx, events.UserRegistered, u.EmployeeID, u.Name, u.Role.String()))
	return &RegisteredUser{Name: u.Name, EmployeeID: u.EmployeeID, Role: u.Role}, nil
}

// Logout destroys the session referenced by token. sess may be nil.
func (s *AuthService) Logout(ctx context.Context, token string, sess *entity.Session) error {
	if err := s.Sessions.Destroy(ctx, token); err != nil {
		return newError(ErrInternal, MsgLogoutFailed, err)
	}
	if sess != nil {
		s.publish(ctx, events.New(ctx, events.Logout, sess.UserID, sess.Name, sess.Role.String()))
	}
	return nil
}

// ListUsers returns every user without credentials.
func (s *AuthService) ListUsers(ctx context.Context) ([]entity.Profile, error) {
	users, err := s.Users.ReadAll(ctx)
	if err != nil {
		return nil, newError(ErrInternal, MsgInternal, err)
	}
	out := make([]entity.Profile, 0, len(users))
	for _, u := range users {
		out = append(out, u.Profile())
	}
	return out, nil
}

func (s *AuthService) publish(ctx context.Context, evt events.AuthEvent) {
	if s.Events == nil {
		return
	}
	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := s.Events.PublishJSON(c, evt); err != nil {
		helpers.LogWarn(s.Logger, "publish auth event failed", err, logrus.Fields{"type": evt.Type, "employee_id": evt.EmployeeID})
	}
}
