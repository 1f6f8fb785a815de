// Package storage defines the persistence interface for user records.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/ruslat/internal/models"
)

// ErrNotFound is returned when a user does not exist.
var ErrNotFound = errors.New("user not found")

// Storage defines user persistence operations. ListUsers returns users in
// their stored order, which is the order lookups report matches in.
type Storage interface {
	UpsertUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context) ([]*models.User, error)

	// ReplaceUsers atomically replaces the whole user set.
	ReplaceUsers(ctx context.Context, users []*models.User) error

	CountUsers(ctx context.Context) (int64, error)

	Close() error
}
