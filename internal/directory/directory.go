// Package directory is the admin-managed reference data: police stations
// and user accounts. Both share one generic repository.
package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/JustJay7/fir-manager/internal/access"
	"github.com/JustJay7/fir-manager/internal/apperr"
	"github.com/JustJay7/fir-manager/pkg/logger"
	"gorm.io/gorm"
)

// Resource describes one record type of the directory
type Resource[T any] struct {
	Name  string
	Order string

	// Fields maps accepted update keys to columns
	Fields map[string]string

	// Validate checks a record before it is written. id is 0 on create.
	Validate func(ctx context.Context, tx *gorm.DB, id uint, record *T) error

	// InUse returns a reason the record cannot be deleted, or ""
	InUse func(ctx context.Context, tx *gorm.DB, id uint) (string, error)
}

// Repo is admin-only CRUD over a Resource
type Repo[T any] struct {
	db     *gorm.DB
	res    Resource[T]
	logger *logger.Logger
}

func New[T any](db *gorm.DB, res Resource[T], logger *logger.Logger) *Repo[T] {
	if res.Order == "" {
		res.Order = "id"
	}
	return &Repo[T]{db: db, res: res, logger: logger}
}

func (r *Repo[T]) Name() string { return r.res.Name }

func (r *Repo[T]) List(ctx context.Context, p access.Policy) ([]T, error) {
	if !p.IsAdmin() {
		return nil, access.ErrForbidden
	}
	var out []T
	if err := r.db.WithContext(ctx).Order(r.res.Order).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list %ss: %w", r.res.Name, err)
	}
	return out, nil
}

func (r *Repo[T]) Get(ctx context.Context, p access.Policy, id uint) (*T, error) {
	if !p.IsAdmin() {
		return nil, access.ErrForbidden
	}
	return r.find(ctx, r.db, id)
}

func (r *Repo[T]) Create(ctx context.Context, p access.Policy, record *T) error {
	if !p.IsAdmin() {
		return access.ErrForbidden
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if r.res.Validate != nil {
			if err := r.res.Validate(ctx, tx, 0, record); err != nil {
				return err
			}
		}
		if err := tx.Create(record).Error; err != nil {
			return fmt.Errorf("failed to create %s: %w", r.res.Name, err)
		}
		r.logger.Info("Directory record created", "resource", r.res.Name, "by", p.UserID())
		return nil
	})
}

// Update applies the accepted keys of changes and returns the stored record.
// Unknown keys are rejected.
func (r *Repo[T]) Update(ctx context.Context, p access.Policy, id uint, changes map[string]interface{}) (*T, error) {
	if !p.IsAdmin() {
		return nil, access.ErrForbidden
	}

	columns := make(map[string]interface{}, len(changes))
	for key, value := range changes {
		column, ok := r.res.Fields[key]
		if !ok {
			return nil, apperr.Invalid("%s field %q cannot be updated", r.res.Name, key)
		}
		columns[column] = value
	}

	var updated *T
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := r.find(ctx, tx, id)
		if err != nil {
			return err
		}
		if len(columns) > 0 {
			if err := tx.Model(record).Updates(columns).Error; err != nil {
				return fmt.Errorf("failed to update %s: %w", r.res.Name, err)
			}
			if record, err = r.find(ctx, tx, id); err != nil {
				return err
			}
		}
		if r.res.Validate != nil {
			if err := r.res.Validate(ctx, tx, id, record); err != nil {
				return err
			}
		}
		updated = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete soft-deletes the record unless something still depends on it
func (r *Repo[T]) Delete(ctx context.Context, p access.Policy, id uint) error {
	if !p.IsAdmin() {
		return access.ErrForbidden
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := r.find(ctx, tx, id)
		if err != nil {
			return err
		}
		if r.res.InUse != nil {
			reason, err := r.res.InUse(ctx, tx, id)
			if err != nil {
				return err
			}
			if reason != "" {
				return apperr.Conflict("%s %d %s", r.res.Name, id, reason)
			}
		}
		if err := tx.Delete(record).Error; err != nil {
			return fmt.Errorf("failed to delete %s: %w", r.res.Name, err)
		}
		r.logger.Info("Directory record deleted", "resource", r.res.Name, "id", id, "by", p.UserID())
		return nil
	})
}

func (r *Repo[T]) find(ctx context.Context, db *gorm.DB, id uint) (*T, error) {
	var record T
	err := db.WithContext(ctx).First(&record, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound(r.res.Name, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s %d: %w", r.res.Name, id, err)
	}
	return &record, nil
}
