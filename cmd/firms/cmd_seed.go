package main

import (
	"errors"
	"fmt"

	"github.com/JustJay7/fir-manager/internal/apperr"
	"github.com/JustJay7/fir-manager/internal/database"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	seedUsername string
	seedFullName string
	seedEmail    string
)

var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Create the first admin account",
	Long: `User management is admin-only through the API, so the first admin is
created here. Running it again with an existing username is an error.`,
	RunE: runSeedAdmin,
}

func init() {
	seedAdminCmd.Flags().StringVar(&seedUsername, "username", "", "Admin username (required)")
	seedAdminCmd.Flags().StringVar(&seedFullName, "full-name", "", "Display name")
	seedAdminCmd.Flags().StringVar(&seedEmail, "email", "", "Contact email")
	_ = seedAdminCmd.MarkFlagRequired("username")
}

func runSeedAdmin(cmd *cobra.Command, _ []string) error {
	b, err := openBase()
	if err != nil {
		return err
	}
	defer b.close()

	admin, err := seedAdmin(b.db, seedUsername, seedFullName, seedEmail)
	if err != nil {
		return err
	}

	b.log.Info("Admin created", "username", admin.Username, "id", admin.ID)
	fmt.Fprintf(cmd.OutOrStdout(), "Created admin %s (id=%d). Send X-User-ID: %d\n", admin.Username, admin.ID, admin.ID)
	return nil
}

func seedAdmin(db *gorm.DB, username, fullName, email string) (*database.User, error) {
	if username == "" {
		return nil, apperr.Invalid("username is required")
	}

	var existing database.User
	err := db.Unscoped().Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil, apperr.Conflict("username %s is taken", username)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	admin := &database.User{
		Username: username,
		FullName: fullName,
		Email:    email,
		Role:     database.RoleAdmin,
		Active:   true,
	}
	if err := db.Create(admin).Error; err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}
	return admin, nil
}
