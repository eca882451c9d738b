// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// Repositories groups the per-entity repositories bound to one *gorm.DB,
// which is either the pool or an open transaction.
type Repositories struct {
	Users       UserRepository
	Credentials CredentialRepository
	Ads         AdRepository
	Comments    CommentRepository
}

// New builds every repository on db.
func New(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:       NewUserRepository(db),
		Credentials: NewCredentialRepository(db),
		Ads:         NewAdRepository(db),
		Comments:    NewCommentRepository(db),
	}
}

// Transactor runs fn with repositories bound to a single transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(repos *Repositories) error) error
}

type gormTransactor struct {
	db *gorm.DB
}

// NewTransactor returns a Transactor backed by db.
func NewTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db: db}
}

func (t *gormTransactor) WithinTransaction(ctx context.Context, fn func(repos *Repositories) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
