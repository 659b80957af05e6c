// Package events defines the audit events the portal emits on authentication
// activity and the request metadata attached to them.
package events

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type Type string

const (
	LoginSucceeded Type = "login_succeeded"
	LoginFailed    Type = "login_failed"
	OTPLogin       Type = "otp_login"
	UserRegistered Type = "user_registered"
	Logout         Type = "logout"
)

// AuthEvent is the JSON payload put on the event queue.
type AuthEvent struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	EmployeeID string    `json:"employeeId,omitempty"`
	Name       string    `json:"name,omitempty"`
	Role       string    `json:"role,omitempty"`
	RequestID  string    `json:"requestId,omitempty"`
	IP         string    `json:"ip,omitempty"`
	UserAgent  string    `json:"userAgent,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Meta is request metadata copied into every event.
type Meta struct {
	RequestID string
	IP        string
	UserAgent string
}

type metaKey struct{}

func WithMeta(ctx context.Context, m Meta) context.Context {
	return context.WithValue(ctx, metaKey{}, m)
}

func MetaFrom(ctx context.Context) Meta {
	m, _ := ctx.Value(metaKey{}).(Meta)
	return m
}

var (
	idMu      sync.Mutex
	idEntropy = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a ULID for t. IDs sort by time, which keeps the event index
// in insertion order.
func NewID(t time.Time) string {
	idMu.Lock()
	defer idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), idEntropy).String()
}

// New builds an event of type t stamped with a fresh id, the current time and
// any metadata found in ctx.
func New(ctx context.Context, t Type, employeeID, name, role string) AuthEvent {
	m := MetaFrom(ctx)
	now := time.Now().UTC()
	return AuthEvent{
		ID:         NewID(now),
		Type:       t,
		EmployeeID: employeeID,
		Name:       name,
		Role:       role,
		RequestID:  m.RequestID,
		IP:         m.IP,
		UserAgent:  m.UserAgent,
		OccurredAt: now,
	}
}
