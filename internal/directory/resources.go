package directory

import (
	"context"
	"fmt"
	"strings"

	"github.com/JustJay7/fir-manager/internal/apperr"
	"github.com/JustJay7/fir-manager/internal/database"
	"github.com/JustJay7/fir-manager/pkg/logger"
	"gorm.io/gorm"
)

// Stations manages police stations. A station with FIRs cannot be deleted.
func Stations(db *gorm.DB, logger *logger.Logger) *Repo[database.Station] {
	return New(db, Resource[database.Station]{
		Name:  "station",
		Order: "name, id",
		Fields: map[string]string{
			"name":           "name",
			"location":       "location",
			"contact_number": "contact_number",
		},
		Validate: func(_ context.Context, _ *gorm.DB, _ uint, s *database.Station) error {
			s.Name = strings.TrimSpace(s.Name)
			if s.Name == "" {
				return apperr.Invalid("station name is required")
			}
			return nil
		},
		InUse: func(ctx context.Context, tx *gorm.DB, id uint) (string, error) {
			return countReason(ctx, tx, &database.FIR{}, "station_id = ?", id, "has FIRs")
		},
	}, logger)
}

// Users manages accounts. A user who owns FIRs cannot be deleted; deactivate
// them with {"active": false} instead.
func Users(db *gorm.DB, logger *logger.Logger) *Repo[database.User] {
	return New(db, Resource[database.User]{
		Name:  "user",
		Order: "username",
		Fields: map[string]string{
			"full_name":  "full_name",
			"email":      "email",
			"role":       "role",
			"station_id": "station_id",
			"active":     "active",
		},
		Validate: validateUser,
		InUse: func(ctx context.Context, tx *gorm.DB, id uint) (string, error) {
			return countReason(ctx, tx, &database.FIR{}, "officer_id = ?", id, "owns FIRs")
		},
	}, logger)
}

func validateUser(ctx context.Context, tx *gorm.DB, id uint, u *database.User) error {
	u.Username = strings.TrimSpace(u.Username)
	if u.Username == "" {
		return apperr.Invalid("username is required")
	}
	if u.Role != database.RoleAdmin && u.Role != database.RolePoliceOfficer {
		return apperr.Invalid("unknown role %q", u.Role)
	}

	// soft-deleted accounts still hold their username
	var taken int64
	if err := tx.WithContext(ctx).Unscoped().Model(&database.User{}).
		Where("username = ? AND id <> ?", u.Username, id).
		Count(&taken).Error; err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if taken > 0 {
		return apperr.Conflict("username %s is taken", u.Username)
	}

	if u.StationID != nil {
		var stations int64
		if err := tx.WithContext(ctx).Model(&database.Station{}).Where("id = ?", *u.StationID).Count(&stations).Error; err != nil {
			return fmt.Errorf("failed to check station: %w", err)
		}
		if stations == 0 {
			return apperr.NotFound("station", *u.StationID)
		}
	}
	return nil
}

func countReason(ctx context.Context, tx *gorm.DB, model interface{}, query string, id uint, reason string) (string, error) {
	var n int64
	if err := tx.WithContext(ctx).Model(model).Where(query, id).Count(&n).Error; err != nil {
		return "", fmt.Errorf("failed to check references: %w", err)
	}
	if n > 0 {
		return fmt.Sprintf("%s (%d)", reason, n), nil
	}
	return "", nil
}
