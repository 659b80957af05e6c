package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/cohesia-portal/internal/domain/entity"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate employee id")
)

// UserRepository defines the operations on the user store.
//
// ReadAll treats a missing or malformed backing document as an empty store.
// Append must reject an EmployeeID that already exists with ErrDuplicate.
type UserRepository interface {
	ReadAll(ctx context.Context) ([]entity.User, error)
	FindByEmployeeID(ctx context.Context, employeeID string) (*entity.User, error)
	Append(ctx context.Context, u entity.User) error
}
