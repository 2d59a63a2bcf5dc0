package fir

import (
	"context"
	"fmt"

	"github.com/JustJay7/fir-manager/internal/access"
	"github.com/JustJay7/fir-manager/internal/cache"
	"github.com/JustJay7/fir-manager/internal/database"
	"github.com/JustJay7/fir-manager/internal/workflow"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const recentLimit = 5

// Dashboard summarises the FIRs visible to a user
type Dashboard struct {
	Scope      string                    `json:"scope"`
	Total      int64                     `json:"total"`
	ByStatus   map[workflow.Status]int64 `json:"by_status"`
	ByPriority map[string]int64          `json:"by_priority"`
	Pending    int64                     `json:"pending"`
	Overdue    int64                     `json:"overdue"`
	Recent     []database.FIR            `json:"recent"`

	// Admin only
	Stations *int64 `json:"stations,omitempty"`
	Officers *int64 `json:"officers,omitempty"`

	// Officer only
	Owned *int64 `json:"owned,omitempty"`
}

// Dashboard returns the admin or officer dashboard for the actor
func (s *Service) Dashboard(ctx context.Context, actor *database.User) (*Dashboard, error) {
	policy := access.For(actor)
	switch {
	case policy.IsAdmin():
		return s.AdminDashboard(ctx)
	case policy.IsOfficer():
		return s.OfficerDashboard(ctx, actor.ID)
	default:
		return nil, access.ErrForbidden
	}
}

// AdminDashboard covers every FIR plus station and officer counts
func (s *Service) AdminDashboard(ctx context.Context) (*Dashboard, error) {
	return s.dashboards.GetOrLoad(cache.AdminDashboardKey(), func() (*Dashboard, error) {
		var stations, officers int64
		d, err := s.buildDashboard(ctx, "admin", func(db *gorm.DB) *gorm.DB { return db },
			func(g *errgroup.Group, db *gorm.DB) {
				g.Go(func() error {
					return db.Model(&database.Station{}).Count(&stations).Error
				})
				g.Go(func() error {
					return db.Model(&database.User{}).
						Where("role = ? AND active = ?", database.RolePoliceOfficer, true).
						Count(&officers).Error
				})
			})
		if err != nil {
			return nil, err
		}
		d.Stations = &stations
		d.Officers = &officers
		return d, nil
	})
}

// OfficerDashboard covers FIRs the officer owns or is on the team of
func (s *Service) OfficerDashboard(ctx context.Context, userID uint) (*Dashboard, error) {
	return s.dashboards.GetOrLoad(cache.OfficerDashboardKey(userID), func() (*Dashboard, error) {
		var owned int64
		scope := func(db *gorm.DB) *gorm.DB { return scopeToOfficer(db, s.db.WithContext(ctx), userID) }
		d, err := s.buildDashboard(ctx, "officer", scope, func(g *errgroup.Group, db *gorm.DB) {
			g.Go(func() error {
				return db.Model(&database.FIR{}).Where("officer_id = ?", userID).Count(&owned).Error
			})
		})
		if err != nil {
			return nil, err
		}
		d.Owned = &owned
		return d, nil
	})
}

type statusCount struct {
	Status workflow.Status
	Count  int64
}

type priorityCount struct {
	Priority string
	Count    int64
}

// buildDashboard runs the shared aggregates concurrently. extra may add
// queries to the group; they must write to their own variables.
func (s *Service) buildDashboard(ctx context.Context, scopeName string, scope func(*gorm.DB) *gorm.DB, extra func(*errgroup.Group, *gorm.DB)) (*Dashboard, error) {
	g, gctx := errgroup.WithContext(ctx)
	db := s.db.WithContext(gctx)
	firs := func() *gorm.DB { return scope(db.Model(&database.FIR{})) }

	var (
		statuses   []statusCount
		priorities []priorityCount
		overdue    int64
		recent     []database.FIR
	)

	g.Go(func() error {
		return firs().Select("status, COUNT(*) AS count").Group("status").Scan(&statuses).Error
	})
	g.Go(func() error {
		return firs().Select("priority, COUNT(*) AS count").Group("priority").Scan(&priorities).Error
	})
	g.Go(func() error {
		return overdueScope(firs(), s.now()).Count(&overdue).Error
	})
	g.Go(func() error {
		return firs().Preload("Officer").Preload("Station").
			Order("created_at DESC, id DESC").Limit(recentLimit).Find(&recent).Error
	})
	if extra != nil {
		extra(g, db)
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build %s dashboard: %w", scopeName, err)
	}

	d := &Dashboard{
		Scope:      scopeName,
		ByStatus:   make(map[workflow.Status]int64, len(workflow.All())),
		ByPriority: make(map[string]int64, len(priorities)),
		Overdue:    overdue,
		Recent:     recent,
	}
	for _, st := range workflow.All() {
		d.ByStatus[st] = 0
	}
	for _, c := range statuses {
		d.ByStatus[c.Status] = c.Count
		d.Total += c.Count
	}
	for _, c := range priorities {
		d.ByPriority[c.Priority] = c.Count
	}
	d.Pending = d.ByStatus[workflow.Draft] + d.ByStatus[workflow.Submitted] + d.ByStatus[workflow.UnderInvestigation]
	return d, nil
}
