// Package testutil seeds in-memory databases for package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/JustJay7/fir-manager/internal/database"
	"github.com/JustJay7/fir-manager/internal/workflow"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NewDB returns a migrated in-memory database closed at test cleanup
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.OpenInMemory()
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func Station(t testing.TB, db *gorm.DB, name string) *database.Station {
	t.Helper()
	s := &database.Station{Name: name, Location: name + " Road", ContactNumber: "100"}
	if err := db.Create(s).Error; err != nil {
		t.Fatalf("failed to seed station: %v", err)
	}
	return s
}

func Officer(t testing.TB, db *gorm.DB, username string, station *database.Station) *database.User {
	t.Helper()
	u := &database.User{Username: username, FullName: username, Role: database.RolePoliceOfficer, Active: true}
	if station != nil {
		u.StationID = &station.ID
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("failed to seed officer: %v", err)
	}
	return u
}

func Admin(t testing.TB, db *gorm.DB, username string) *database.User {
	t.Helper()
	u := &database.User{Username: username, FullName: username, Role: database.RoleAdmin, Active: true}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}
	return u
}

var firSeq int

// FIR seeds an FIR owned by officer in status with the given team. The
// returned FIR has Team loaded.
func FIR(t testing.TB, db *gorm.DB, officer *database.User, station *database.Station, status workflow.Status, team ...*database.User) *database.FIR {
	t.Helper()
	firSeq++
	f := &database.FIR{
		FIRNumber:           fmt.Sprintf("FIR-20240101-T%05d", firSeq),
		ComplainantName:     "Asha Verma",
		ComplainantContact:  "9800000000",
		IncidentDescription: "Mobile phone snatched near the market",
		IncidentDate:        datatypes.Date(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		IncidentLocation:    "Main Market",
		Status:              status,
		Priority:            database.PriorityMedium,
		OfficerID:           officer.ID,
		StationID:           station.ID,
	}
	if err := db.Create(f).Error; err != nil {
		t.Fatalf("failed to seed fir: %v", err)
	}
	for _, m := range team {
		member := database.TeamMember{FIRID: f.ID, UserID: m.ID}
		if err := db.Create(&member).Error; err != nil {
			t.Fatalf("failed to seed team member: %v", err)
		}
	}
	if err := db.Preload("Team").First(f, f.ID).Error; err != nil {
		t.Fatalf("failed to reload fir: %v", err)
	}
	return f
}
