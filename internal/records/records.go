// Package records manages the investigation records attached to an FIR:
// evidence files, witness statements, court hearings and notes.
package records

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JustJay7/fir-manager/internal/ai"
	"github.com/JustJay7/fir-manager/internal/apperr"
	"github.com/JustJay7/fir-manager/internal/database"
	"github.com/JustJay7/fir-manager/internal/notify"
	"github.com/JustJay7/fir-manager/internal/storage"
	"github.com/JustJay7/fir-manager/pkg/logger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Options configures a Recorder. Transcriber and Extractor may be nil.
type Options struct {
	Store       storage.Store
	Transcriber ai.Transcriber
	Extractor   ai.TextExtractor
	Notifier    *notify.Notifier

	MaxUploadSize int64
	// Language is the default transcription language
	Language string
}

type Recorder struct {
	db          *gorm.DB
	store       storage.Store
	transcriber ai.Transcriber
	extractor   ai.TextExtractor
	notifier    *notify.Notifier
	maxUpload   int64
	language    string
	logger      *logger.Logger
}

func NewRecorder(db *gorm.DB, opts Options, logger *logger.Logger) *Recorder {
	language := opts.Language
	if language == "" {
		language = "en-US"
	}
	return &Recorder{
		db:          db,
		store:       opts.Store,
		transcriber: opts.Transcriber,
		extractor:   opts.Extractor,
		notifier:    opts.Notifier,
		maxUpload:   opts.MaxUploadSize,
		language:    language,
		logger:      logger,
	}
}

type WitnessInput struct {
	Name      string `json:"name" binding:"required"`
	Contact   string `json:"contact"`
	Address   string `json:"address"`
	Statement string `json:"statement"`
}

func (r *Recorder) AddWitness(ctx context.Context, actor *database.User, firID uint, in WitnessInput) (*database.Witness, error) {
	if _, err := r.load(ctx, actor, firID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Invalid("witness name is required")
	}

	w := &database.Witness{
		FIRID:        firID,
		Name:         strings.TrimSpace(in.Name),
		Contact:      in.Contact,
		Address:      in.Address,
		Statement:    in.Statement,
		RecordedByID: actor.ID,
	}
	if err := r.db.WithContext(ctx).Create(w).Error; err != nil {
		return nil, fmt.Errorf("failed to save witness: %w", err)
	}
	return w, nil
}

func (r *Recorder) ListWitnesses(ctx context.Context, actor *database.User, firID uint) ([]database.Witness, error) {
	if _, err := r.load(ctx, actor, firID); err != nil {
		return nil, err
	}
	var out []database.Witness
	if err := r.db.WithContext(ctx).Where("fir_id = ?", firID).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list witnesses: %w", err)
	}
	return out, nil
}

type HearingInput struct {
	HearingDate time.Time `json:"hearing_date" binding:"required"`
	CourtName   string    `json:"court_name" binding:"required"`
	JudgeName   string    `json:"judge_name"`
	Purpose     string    `json:"purpose"`
	Outcome     string    `json:"outcome"`
}

func (r *Recorder) AddHearing(ctx context.Context, actor *database.User, firID uint, in HearingInput) (*database.CourtHearing, error) {
	if _, err := r.load(ctx, actor, firID); err != nil {
		return nil, err
	}
	if in.HearingDate.IsZero() {
		return nil, apperr.Invalid("hearing date is required")
	}
	if strings.TrimSpace(in.CourtName) == "" {
		return nil, apperr.Invalid("court name is required")
	}

	h := &database.CourtHearing{
		FIRID:       firID,
		HearingDate: datatypes.Date(in.HearingDate),
		CourtName:   strings.TrimSpace(in.CourtName),
		JudgeName:   in.JudgeName,
		Purpose:     in.Purpose,
		Outcome:     in.Outcome,
		CreatedByID: actor.ID,
	}
	if err := r.db.WithContext(ctx).Create(h).Error; err != nil {
		return nil, fmt.Errorf("failed to save hearing: %w", err)
	}
	return h, nil
}

// ListHearings returns hearings in date order
func (r *Recorder) ListHearings(ctx context.Context, actor *database.User, firID uint) ([]database.CourtHearing, error) {
	if _, err := r.load(ctx, actor, firID); err != nil {
		return nil, err
	}
	var out []database.CourtHearing
	if err := r.db.WithContext(ctx).Where("fir_id = ?", firID).Order("hearing_date, id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list hearings: %w", err)
	}
	return out, nil
}

func (r *Recorder) AddNote(ctx context.Context, actor *database.User, firID uint, content string) (*database.InvestigationNote, error) {
	if _, err := r.load(ctx, actor, firID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperr.Invalid("note content is required")
	}

	n := &database.InvestigationNote{FIRID: firID, AuthorID: actor.ID, Content: content}
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return nil, fmt.Errorf("failed to save note: %w", err)
	}
	return n, nil
}

// ListNotes returns notes newest first
func (r *Recorder) ListNotes(ctx context.Context, actor *database.User, firID uint) ([]database.InvestigationNote, error) {
	if _, err := r.load(ctx, actor, firID); err != nil {
		return nil, err
	}
	var out []database.InvestigationNote
	if err := r.db.WithContext(ctx).Where("fir_id = ?", firID).Order("created_at DESC, id DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return out, nil
}
