package application

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/cohesia-portal/internal/domain/entity"
	"github.com/oksasatya/cohesia-portal/internal/domain/repository"
	"github.com/oksasatya/cohesia-portal/internal/infrastructure/jsonfile"
	"github.com/oksasatya/cohesia-portal/internal/infrastructure/session"
	"github.com/oksasatya/cohesia-portal/pkg/events"
	"github.com/oksasatya/cohesia-portal/pkg/helpers"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []events.AuthEvent
	err    error
}

func (f *fakePublisher) PublishJSON(_ context.Context, body any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if evt, ok := body.(events.AuthEvent); ok {
		f.events = append(f.events, evt)
	}
	return f.err
}

func (f *fakePublisher) types() []events.Type {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]events.Type, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	svc      *AuthService
	sessions *SessionService
	store    *session.MemoryStore
	users    *jsonfile.UserRepository
	pub      *fakePublisher
}

func newFixture(t *testing.T, usersJSON string) *fixture {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	if usersJSON != "" {
		require.NoError(t, os.WriteFile(path, []byte(usersJSON), 0o644))
	}
	users := jsonfile.NewUserRepository(path, nil)
	store := session.NewMemoryStore()
	sessions := NewSessionService(store, helpers.NewSessionSigner("test-secret", "test"), 24*time.Hour, nil)
	pub := &fakePublisher{}
	return &fixture{
		svc:      NewAuthService(users, sessions, pub, nil, false),
		sessions: sessions,
		store:    store,
		users:    users,
		pub:      pub,
	}
}

const annStore = `{"users":[{"employeeId":"E1","password":"p","role":"HR","name":"Ann","phoneNumber":"555-0100"}]}`

func requireKind(t *testing.T, err error, kind error, msg string) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, kind)
	require.Equal(t, msg, Message(err))
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("success establishes a session", func(t *testing.T) {
		f := newFixture(t, annStore)
		id, issued, err := f.svc.Login(ctx, "E1", "p", "")
		require.NoError(t, err)
		assert.Equal(t, &Identity{Role: entity.RoleHR, Name: "Ann", EmployeeID: "E1"}, id)
		require.NotEmpty(t, issued.Token)

		sess, err := f.sessions.Resolve(ctx, issued.Token)
		require.NoError(t, err)
		require.NotNil(t, sess)
		assert.Equal(t, "E1", sess.UserID)
		assert.Equal(t, entity.RoleHR, sess.Role)
		assert.Equal(t, "Ann", sess.Name)
		assert.WithinDuration(t, time.Now().Add(24*time.Hour), sess.ExpiresAt, time.Minute)
		assert.Equal(t, []events.Type{events.LoginSucceeded}, f.pub.types())
	})

	t.Run("missing fields", func(t *testing.T) {
		f := newFixture(t, annStore)
		_, _, err := f.svc.Login(ctx, "E1", "", "")
		requireKind(t, err, ErrValidation, MsgCredentialsRequired)
		_, _, err = f.svc.Login(ctx, "", "p", "")
		requireKind(t, err, ErrValidation, MsgCredentialsRequired)
	})

	t.Run("wrong password and unknown id are indistinguishable", func(t *testing.T) {
		f := newFixture(t, annStore)
		_, _, errWrong := f.svc.Login(ctx, "E1", "nope", "")
		_, _, errUnknown := f.svc.Login(ctx, "E404", "p", "")
		requireKind(t, errWrong, ErrAuth, MsgInvalidCredentials)
		requireKind(t, errUnknown, ErrAuth, MsgInvalidCredentials)
		assert.Equal(t, errWrong.Error(), errUnknown.Error())
		assert.Equal(t, 0, f.store.Len())
		assert.Equal(t, []events.Type{events.LoginFailed, events.LoginFailed}, f.pub.types())
	})

	t.Run("role comparison input is verbatim", func(t *testing.T) {
		f := newFixture(t, `{"users":[{"employeeId":"E2","password":"p","role":"hr","name":"Bo"}]}`)
		id, _, err := f.svc.Login(ctx, "E2", "p", "")
		require.NoError(t, err)
		assert.Equal(t, entity.Role("hr"), id.Role)
	})

	t.Run("relogin rotates the session", func(t *testing.T) {
		f := newFixture(t, annStore)
		_, first, err := f.svc.Login(ctx, "E1", "p", "")
		require.NoError(t, err)
		_, second, err := f.svc.Login(ctx, "E1", "p", first.Token)
		require.NoError(t, err)

		old, err := f.sessions.Resolve(ctx, first.Token)
		require.NoError(t, err)
		assert.Nil(t, old)
		assert.Equal(t, 1, f.store.Len())

		cur, err := f.sessions.Resolve(ctx, second.Token)
		require.NoError(t, err)
		assert.NotNil(t, cur)
	})

	t.Run("bcrypt stored password", func(t *testing.T) {
		hash, err := helpers.HashPassword("p")
		require.NoError(t, err)
		doc, _ := json.Marshal(map[string]any{"users": []map[string]string{{"employeeId": "E3", "password": hash, "role": "employee", "name": "Cy"}}})
		f := newFixture(t, string(doc))

		_, _, err = f.svc.Login(ctx, "E3", "p", "")
		require.NoError(t, err)
		_, _, err = f.svc.Login(ctx, "E3", hash, "")
		requireKind(t, err, ErrAuth, MsgInvalidCredentials)
	})

	t.Run("publisher failure does not fail login", func(t *testing.T) {
		f := newFixture(t, annStore)
		f.pub.err = errors.New("broker down")
		_, _, err := f.svc.Login(ctx, "E1", "p", "")
		require.NoError(t, err)
	})
}

func TestOTPLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("known id needs no password", func(t *testing.T) {
		f := newFixture(t, annStore)
		id, issued, err := f.svc.OTPLogin(ctx, "E1", "")
		require.NoError(t, err)
		assert.Equal(t, "Ann", id.Name)

		sess, err := f.sessions.Resolve(ctx, issued.Token)
		require.NoError(t, err)
		require.NotNil(t, sess)
		assert.Equal(t, "E1", sess.UserID)
		assert.Equal(t, []events.Type{events.OTPLogin}, f.pub.types())
	})

	t.Run("missing id", func(t *testing.T) {
		f := newFixture(t, annStore)
		_, _, err := f.svc.OTPLogin(ctx, "", "")
		requireKind(t, err, ErrValidation, MsgEmployeeIDRequired)
	})

	t.Run("unknown id", func(t *testing.T) {
		f := newFixture(t, annStore)
		_, _, err := f.svc.OTPLogin(ctx, "E404", "")
		requireKind(t, err, ErrAuth, MsgInvalidEmployeeID)
	})
}

func TestVerifyUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, annStore)

	u, err := f.svc.VerifyUser(ctx, "E1")
	require.NoError(t, err)
	assert.Equal(t, &VerifiedUser{Name: "Ann", EmployeeID: "E1", Role: entity.RoleHR, PhoneNumber: "555-0100"}, u)
	assert.Equal(t, 0, f.store.Len(), "verify must not create a session")

	_, err = f.svc.VerifyUser(ctx, "")
	requireKind(t, err, ErrValidation, MsgEmployeeIDRequired)

	_, err = f.svc.VerifyUser(ctx, "E404")
	requireKind(t, err, ErrNotFound, MsgEmployeeNotFound)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	in := RegisterInput{Name: "Dee", EmployeeID: "E9", PhoneNumber: "555", Password: "pw", Role: "employee"}

	t.Run("appends with createdAt and echoes safe subset", func(t *testing.T) {
		f := newFixture(t, "")
		fixed := time.Date(2024, 2, 3, 4, 5, 6, 789_123_456, time.UTC)
		f.svc.now = func() time.Time { return fixed }

		out, err := f.svc.Register(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, &RegisteredUser{Name: "Dee", EmployeeID: "E9", Role: entity.RoleEmployee}, out)

		stored, err := f.users.FindByEmployeeID(ctx, "E9")
		require.NoError(t, err)
		assert.Equal(t, "pw", stored.Password)
		assert.Equal(t, "2024-02-03T04:05:06.789Z", stored.CreatedAt)
		assert.Equal(t, []events.Type{events.UserRegistered}, f.pub.types())
	})

	t.Run("createdAt keeps three fractional digits", func(t *testing.T) {
		f := newFixture(t, "")
		f.svc.now = func() time.Time { return time.Date(2024, 2, 3, 4, 5, 6, 0, time.FixedZone("WIB", 7*3600)) }

		_, err := f.svc.Register(ctx, in)
		require.NoError(t, err)
		stored, err := f.users.FindByEmployeeID(ctx, "E9")
		require.NoError(t, err)
		assert.Equal(t, "2024-02-02T21:05:06.000Z", stored.CreatedAt)
	})

	t.Run("missing field", func(t *testing.T) {
		f := newFixture(t, "")
		bad := in
		bad.PhoneNumber = ""
		_, err := f.svc.Register(ctx, bad)
		requireKind(t, err, ErrValidation, MsgAllFieldsRequired)
	})

	t.Run("duplicate leaves store unchanged", func(t *testing.T) {
		f := newFixture(t, "")
		_, err := f.svc.Register(ctx, in)
		require.NoError(t, err)

		dup := in
		dup.Name = "Impostor"
		_, err = f.svc.Register(ctx, dup)
		requireKind(t, err, ErrConflict, MsgEmployeeIDExists)

		users, err := f.users.ReadAll(ctx)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "Dee", users[0].Name)
	})

	t.Run("hashing enabled stores bcrypt and login still works", func(t *testing.T) {
		f := newFixture(t, "")
		f.svc.HashPasswords = true
		_, err := f.svc.Register(ctx, in)
		require.NoError(t, err)

		stored, err := f.users.FindByEmployeeID(ctx, "E9")
		require.NoError(t, err)
		assert.True(t, helpers.IsBcryptHash(stored.Password))

		_, _, err = f.svc.Login(ctx, "E9", "pw", "")
		require.NoError(t, err)
	})

	t.Run("write failure", func(t *testing.T) {
		f := newFixture(t, "")
		f.svc.Users = jsonfile.NewUserRepository(filepath.Join(t.TempDir(), "nope", "users.json"), nil)
		_, err := f.svc.Register(ctx, in)
		requireKind(t, err, ErrInternal, MsgSaveFailed)
	})
}

type failingSessionStore struct{ repository.SessionStore }

func (failingSessionStore) Delete(context.Context, string) error { return errors.New("store down") }

func TestLogout(t *testing.T) {
	ctx := context.Background()

	t.Run("destroys the session", func(t *testing.T) {
		f := newFixture(t, annStore)
		_, issued, err := f.svc.Login(ctx, "E1", "p", "")
		require.NoError(t, err)
		sess, err := f.sessions.Resolve(ctx, issued.Token)
		require.NoError(t, err)

		require.NoError(t, f.svc.Logout(ctx, issued.Token, sess))

		sess, err = f.sessions.Resolve(ctx, issued.Token)
		require.NoError(t, err)
		assert.Nil(t, sess)
		assert.Equal(t, []events.Type{events.LoginSucceeded, events.Logout}, f.pub.types())
	})

	t.Run("without a session", func(t *testing.T) {
		f := newFixture(t, annStore)
		require.NoError(t, f.svc.Logout(ctx, "", nil))
	})

	t.Run("store failure", func(t *testing.T) {
		f := newFixture(t, annStore)
		_, issued, err := f.svc.Login(ctx, "E1", "p", "")
		require.NoError(t, err)
		f.sessions.Store = failingSessionStore{f.store}

		err = f.svc.Logout(ctx, issued.Token, nil)
		requireKind(t, err, ErrInternal, MsgLogoutFailed)
	})
}

func TestListUsers_OmitsPasswords(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, annStore)

	profiles, err := f.svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 1)

	b, err := json.Marshal(profiles)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "password")
	assert.NotContains(t, string(b), "createdAt", "legacy record has no createdAt")
	assert.Contains(t, string(b), `"phoneNumber":"555-0100"`)
}

func TestSessionService_Resolve(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, annStore)

	sess, err := f.sessions.Resolve(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, sess)

	sess, err = f.sessions.Resolve(ctx, "forged")
	require.NoError(t, err)
	assert.Nil(t, sess)

	_, issued, err := f.svc.Login(ctx, "E1", "p", "")
	require.NoError(t, err)

	f.sessions.now = func() time.Time { return time.Now().Add(25 * time.Hour) }
	sess, err = f.sessions.Resolve(ctx, issued.Token)
	require.NoError(t, err)
	assert.Nil(t, sess, "sessions expire 24h after issuance")
}
