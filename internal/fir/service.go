// Package fir implements the FIR lifecycle: registration, updates, status
// workflow, team assignment, deadlines, listing and dashboards.
package fir

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JustJay7/fir-manager/internal/access"
	"github.com/JustJay7/fir-manager/internal/apperr"
	"github.com/JustJay7/fir-manager/internal/cache"
	"github.com/JustJay7/fir-manager/internal/database"
	"github.com/JustJay7/fir-manager/internal/events"
	"github.com/JustJay7/fir-manager/internal/notify"
	"github.com/JustJay7/fir-manager/internal/workflow"
	"github.com/JustJay7/fir-manager/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var priorities = map[string]bool{
	database.PriorityLow:      true,
	database.PriorityMedium:   true,
	database.PriorityHigh:     true,
	database.PriorityCritical: true,
}

// Service owns every FIR mutation
type Service struct {
	db         *gorm.DB
	notifier   *notify.Notifier
	publisher  events.Publisher
	dashboards *cache.Cache[*Dashboard]
	logger     *logger.Logger
	now        func() time.Time
}

func NewService(db *gorm.DB, notifier *notify.Notifier, publisher events.Publisher, dashboards *cache.Cache[*Dashboard], logger *logger.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if dashboards == nil {
		dashboards = cache.New[*Dashboard](100, time.Minute)
	}
	return &Service{
		db:         db,
		notifier:   notifier,
		publisher:  publisher,
		dashboards: dashboards,
		logger:     logger,
		now:        time.Now,
	}
}

// CacheStats reports dashboard cache usage
func (s *Service) CacheStats() cache.CacheStats {
	return s.dashboards.Stats()
}

// NewNumber returns FIR-YYYYMMDD-XXXXXX with six random uppercase hex digits
func NewNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return fmt.Sprintf("FIR-%s-%s", now.Format("20060102"), suffix)
}

type CreateInput struct {
	ComplainantName       string
	ComplainantContact    string
	IncidentDescription   string
	IncidentDate          time.Time
	IncidentLocation      string
	Priority              string
	InvestigationDeadline *time.Time
}

// Create registers a draft FIR owned by the officer at the officer's station
func (s *Service) Create(ctx context.Context, actor *database.User, in CreateInput) (*database.FIR, error) {
	if !access.For(actor).IsOfficer() {
		return nil, access.ErrForbidden
	}
	if actor.StationID == nil {
		return nil, apperr.Invalid("officer %s is not attached to a station", actor.Username)
	}
	if strings.TrimSpace(in.ComplainantName) == "" {
		return nil, apperr.Invalid("complainant name is required")
	}
	if strings.TrimSpace(in.IncidentDescription) == "" {
		return nil, apperr.Invalid("incident description is required")
	}
	if in.IncidentDate.IsZero() {
		return nil, apperr.Invalid("incident date is required")
	}
	if in.Priority == "" {
		in.Priority = database.PriorityMedium
	}
	if in.InvestigationDeadline != nil {
		utc := in.InvestigationDeadline.UTC()
		in.InvestigationDeadline = &utc
	}
	if !priorities[in.Priority] {
		return nil, apperr.Invalid("unknown priority %q", in.Priority)
	}

	now := s.now()
	fir := &database.FIR{
		FIRNumber:             NewNumber(now),
		ComplainantName:       strings.TrimSpace(in.ComplainantName),
		ComplainantContact:    in.ComplainantContact,
		IncidentDescription:   in.IncidentDescription,
		IncidentDate:          datatypes.Date(in.IncidentDate),
		IncidentLocation:      in.IncidentLocation,
		Status:                workflow.Draft,
		Priority:              in.Priority,
		InvestigationDeadline: in.InvestigationDeadline,
		OfficerID:             actor.ID,
		StationID:             *actor.StationID,
	}
	if err := s.db.WithContext(ctx).Create(fir).Error; err != nil {
		return nil, fmt.Errorf("failed to create fir: %w", err)
	}

	s.logger.Info("FIR registered", "fir", fir.FIRNumber, "officer", actor.Username)
	s.publish(ctx, events.Event{
		Type:      events.TypeFIRCreated,
		FIRNumber: fir.FIRNumber,
		FIRID:     fir.ID,
		ActorID:   actor.ID,
	})
	s.InvalidateDashboards()

	return s.detail(ctx, fir.ID)
}

// Get returns the FIR with its officer, station, team and suggestions
func (s *Service) Get(ctx context.Context, actor *database.User, id uint) (*database.FIR, error) {
	fir, err := s.detail(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Require(access.For(actor), fir); err != nil {
		return nil, err
	}
	return fir, nil
}

// UpdateInput carries the descriptive fields. Nil fields are left alone.
type UpdateInput struct {
	ComplainantName     *string
	ComplainantContact  *string
	IncidentDescription *string
	IncidentDate        *time.Time
	IncidentLocation    *string
	Priority            *string
}

// Update edits descriptive fields. Status, ownership, team and deadline
// have their own operations.
func (s *Service) Update(ctx context.Context, actor *database.User, id uint, in UpdateInput) (*database.FIR, error) {
	fir, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if in.ComplainantName != nil {
		if strings.TrimSpace(*in.ComplainantName) == "" {
			return nil, apperr.Invalid("complainant name cannot be empty")
		}
		changes["complainant_name"] = strings.TrimSpace(*in.ComplainantName)
	}
	if in.ComplainantContact != nil {
		changes["complainant_contact"] = *in.ComplainantContact
	}
	if in.IncidentDescription != nil {
		if strings.TrimSpace(*in.IncidentDescription) == "" {
			return nil, apperr.Invalid("incident description cannot be empty")
		}
		changes["incident_description"] = *in.IncidentDescription
	}
	if in.IncidentDate != nil {
		changes["incident_date"] = datatypes.Date(*in.IncidentDate)
	}
	if in.IncidentLocation != nil {
		changes["incident_location"] = *in.IncidentLocation
	}
	if in.Priority != nil {
		if !priorities[*in.Priority] {
			return nil, apperr.Invalid("unknown priority %q", *in.Priority)
		}
		changes["priority"] = *in.Priority
	}

	if len(changes) > 0 {
		if err := s.db.WithContext(ctx).Model(&database.FIR{}).Where("id = ?", fir.ID).Updates(changes).Error; err != nil {
			return nil, fmt.Errorf("failed to update fir: %w", err)
		}
		s.InvalidateDashboards()
	}
	return s.detail(ctx, fir.ID)
}

// Filter narrows List. Zero values do not filter.
type Filter struct {
	Status    workflow.Status
	StationID uint
	OfficerID uint
	Priority  string
	Search    string
	Overdue   bool
	Limit     int
	Offset    int
}

// List returns FIRs newest first with the total before paging. Officers
// only see FIRs they own or work on.
func (s *Service) List(ctx context.Context, actor *database.User, f Filter) ([]database.FIR, int64, error) {
	policy := access.For(actor)
	if !policy.IsAdmin() && !policy.IsOfficer() {
		return nil, 0, access.ErrForbidden
	}
	if f.Status != "" && !workflow.Valid(f.Status) {
		return nil, 0, apperr.Invalid("unknown status %q", f.Status)
	}

	q := s.db.WithContext(ctx).Model(&database.FIR{})
	if policy.IsOfficer() {
		q = scopeToOfficer(q, s.db.WithContext(ctx), actor.ID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.StationID != 0 {
		q = q.Where("station_id = ?", f.StationID)
	}
	if f.OfficerID != 0 {
		q = q.Where("officer_id = ?", f.OfficerID)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("(LOWER(fir_number) LIKE ? OR LOWER(complainant_name) LIKE ?)", like, like)
	}
	if f.Overdue {
		q = overdueScope(q, s.now())
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count firs: %w", err)
	}

	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	var firs []database.FIR
	err := q.Preload("Officer").Preload("Station").Preload("Team.User").
		Order("created_at DESC, id DESC").
		Find(&firs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list firs: %w", err)
	}
	return firs, total, nil
}

// scopeToOfficer keeps FIRs the user owns or is on the team of
func scopeToOfficer(q, db *gorm.DB, userID uint) *gorm.DB {
	teamFIRs := db.Model(&database.TeamMember{}).Select("fir_id").Where("user_id = ?", userID)
	return q.Where("(officer_id = ? OR id IN (?))", userID, teamFIRs)
}

func overdueScope(q *gorm.DB, now time.Time) *gorm.DB {
	return q.Where("status = ? AND investigation_deadline IS NOT NULL AND investigation_deadline < ?",
		workflow.UnderInvestigation, now.UTC())
}

// load fetches the FIR with its team and checks access
func (s *Service) load(ctx context.Context, actor *database.User, id uint) (*database.FIR, error) {
	fir, err := database.FindFIR(ctx, s.db, id)
	if err != nil {
		return nil, apperr.FromQuery(err, "fir", id)
	}
	if err := access.Require(access.For(actor), fir); err != nil {
		return nil, err
	}
	return fir, nil
}

func (s *Service) detail(ctx context.Context, id uint) (*database.FIR, error) {
	var fir database.FIR
	err := s.db.WithContext(ctx).
		Preload("Officer").
		Preload("Station").
		Preload("Team.User").
		Preload("LegalSuggestions").
		First(&fir, id).Error
	if err != nil {
		return nil, apperr.FromQuery(err, "fir", id)
	}
	return &fir, nil
}

func (s *Service) publish(ctx context.Context, evt events.Event) {
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("Failed to publish event", "type", evt.Type, "fir", evt.FIRNumber, "error", err)
	}
}

// InvalidateDashboards drops every cached dashboard
func (s *Service) InvalidateDashboards() {
	s.dashboards.DeletePrefix(cache.DashboardPrefix)
}
