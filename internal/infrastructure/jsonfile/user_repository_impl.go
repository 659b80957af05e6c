package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/cohesia-portal/internal/domain/entity"
	"github.com/oksasatya/cohesia-portal/internal/domain/repository"
)

// ErrUnreadable is returned by Append when the users file exists but cannot be
// parsed. Rewriting it would discard whatever it holds.
var ErrUnreadable = errors.New("users file is unreadable")

// Snapshotter receives a copy of the users document after every successful write.
type Snapshotter interface {
	Snapshot(ctx context.Context, name string, data []byte) error
}

type document struct {
	Users []json.RawMessage `json:"users"`
}

// record is one element of the users array. raw is written back verbatim;
// user is only set when the element decodes to a usable account.
type record struct {
	raw  json.RawMessage
	user *entity.User
}

// UserRepository keeps users in a single JSON document shaped {"users": [...]}.
// All access goes through one mutex so concurrent registrations cannot lose updates.
type UserRepository struct {
	path     string
	logger   *logrus.Logger
	snapshot Snapshotter

	mu sync.Mutex
}

func NewUserRepository(path string, logger *logrus.Logger) *UserRepository {
	return &UserRepository{path: path, logger: logger}
}

// WithSnapshotter enables post-write snapshots.
func (r *UserRepository) WithSnapshotter(s Snapshotter) *UserRepository {
	r.snapshot = s
	return r
}

// Path returns the backing file path.
func (r *UserRepository) Path() string { return r.path }

// ReadAll returns every usable record. An unreadable document reads as empty.
func (r *UserRepository) ReadAll(ctx context.Context) ([]entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		r.logError("error reading users file", err)
		return []entity.User{}, nil
	}
	users := make([]entity.User, 0, len(records))
	for _, rec := range records {
		if rec.user != nil {
			users = append(users, *rec.user)
		}
	}
	return users, nil
}

func (r *UserRepository) FindByEmployeeID(ctx context.Context, employeeID string) (*entity.User, error) {
	users, err := r.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].EmployeeID == employeeID {
			u := users[i]
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

// Append adds u after every existing element, which is written back as it was
// read, including elements ReadAll skips.
func (r *UserRepository) Append(ctx context.Context, u entity.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		r.logError("refusing to rewrite users file", err)
		return err
	}
	for _, rec := range records {
		if rec.user != nil && rec.user.EmployeeID == u.EmployeeID {
			return repository.ErrDuplicate
		}
	}

	fresh, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	raws := make([]json.RawMessage, 0, len(records)+1)
	for _, rec := range records {
		raws = append(raws, rec.raw)
	}
	raws = append(raws, fresh)

	data, err := json.MarshalIndent(document{Users: raws}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}
	if err := writeFileAtomic(r.path, data); err != nil {
		r.logError("error writing users file", err)
		return err
	}

	if r.snapshot != nil {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := r.snapshot.Snapshot(sctx, filepath.Base(r.path), data); err != nil && r.logger != nil {
			r.logger.WithError(err).WithField("path", r.path).Warn("users snapshot failed")
		}
	}
	return nil
}

// load reads the document. A missing or empty file, or a missing or null
// users field, is an empty store. Anything else that cannot be parsed wraps
// ErrUnreadable. Caller holds mu.
func (r *UserRepository) load() ([]record, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("%w: not a JSON object: %v", ErrUnreadable, err)
	}
	list, ok := top["users"]
	if !ok || bytes.Equal(bytes.TrimSpace(list), []byte("null")) {
		return nil, nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(list, &raws); err != nil {
		return nil, fmt.Errorf("%w: users is not an array: %v", ErrUnreadable, err)
	}

	records := make([]record, 0, len(raws))
	for i, raw := range raws {
		u, ok := decodeUser(raw)
		if !ok && r.logger != nil {
			r.logger.WithFields(logrus.Fields{"path": r.path, "index": i}).Warn("skipping unusable user record")
		}
		records = append(records, record{raw: raw, user: u})
	}
	return records, nil
}

// decodeUser reads one element field by field so a single odd value does not
// hide the account. employeeId, password and role must be JSON strings, as
// they are compared verbatim; display fields also accept numbers.
func decodeUser(raw json.RawMessage) (*entity.User, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, false
	}
	id, ok := stringField(fields["employeeId"])
	if !ok || id == "" {
		return nil, false
	}
	password, _ := stringField(fields["password"])
	role, _ := stringField(fields["role"])
	return &entity.User{
		Name:        textField(fields["name"]),
		EmployeeID:  id,
		PhoneNumber: textField(fields["phoneNumber"]),
		Password:    password,
		Role:        entity.Role(role),
		CreatedAt:   textField(fields["createdAt"]),
	}, true
}

func stringField(raw json.RawMessage) (string, bool) {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return "", false
	}
	return s, true
}

// textField returns strings as-is and numbers in their literal form.
func textField(raw json.RawMessage) string {
	if s, ok := stringField(raw); ok {
		return s
	}
	var n json.Number
	if len(raw) == 0 || json.Unmarshal(raw, &n) != nil {
		return ""
	}
	return n.String()
}

func (r *UserRepository) logError(msg string, err error) {
	if r.logger == nil {
		return
	}
	e := r.logger.WithField("path", r.path)
	if err != nil {
		e = e.WithError(err)
	}
	e.Warn(msg)
}

// writeFileAtomic writes to a temp file in the target directory and renames it
// into place, so readers see either the old or the new document.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
