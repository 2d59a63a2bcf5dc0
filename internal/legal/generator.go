package legal

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/JustJay7/fir-manager/internal/ai"
	"github.com/JustJay7/fir-manager/internal/database"
	"github.com/JustJay7/fir-manager/internal/events"
	"github.com/JustJay7/fir-manager/pkg/logger"
	"gorm.io/gorm"
)

const (
	// DefaultSection and DefaultConfidence stand in when classification fails
	DefaultSection    = "IPC 302"
	DefaultConfidence = 0.75

	// ModelConfidence is used when the classifier does not report a score
	ModelConfidence = 0.85

	TranslationFailedPrefix = "[Translation failed] "
	FallbackDescription     = "AI-generated legal suggestion"
)

// Generator produces the legal suggestion of an FIR from its incident description
type Generator struct {
	db         *gorm.DB
	translator ai.Translator
	classifier ai.Classifier
	catalog    *Catalog
	target     string
	publisher  events.Publisher
	logger     *logger.Logger
}

// NewGenerator wires the generator. targetLanguage defaults to "en".
func NewGenerator(db *gorm.DB, translator ai.Translator, classifier ai.Classifier, catalog *Catalog, targetLanguage string, publisher events.Publisher, logger *logger.Logger) *Generator {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if targetLanguage == "" {
		targetLanguage = "en"
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Generator{
		db:         db,
		translator: translator,
		classifier: classifier,
		catalog:    catalog,
		target:     targetLanguage,
		publisher:  publisher,
		logger:     logger,
	}
}

// SafeTranslate translates text to the target language. It never fails:
// blank input gives "", errors give the original text behind a marker.
func (g *Generator) SafeTranslate(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	if g.translator == nil {
		return TranslationFailedPrefix + text
	}

	translated, err := g.translator.Translate(ctx, text, "auto", g.target)
	if err != nil {
		g.logger.Warn("Translation failed", "error", err)
		return TranslationFailedPrefix + text
	}
	return translated
}

// SafePredict classifies text. It never fails: blank input, an unavailable
// classifier or an error give the default pair.
func (g *Generator) SafePredict(ctx context.Context, text string) ai.Prediction {
	fallback := ai.Prediction{Section: DefaultSection, Confidence: DefaultConfidence}
	if strings.TrimSpace(text) == "" || g.classifier == nil {
		return fallback
	}

	p, err := g.classifier.Predict(ctx, text)
	if err != nil {
		g.logger.Warn("Prediction failed", "error", err)
		return fallback
	}
	if strings.TrimSpace(p.Section) == "" {
		return fallback
	}
	if p.Confidence <= 0 || p.Confidence > 1 {
		p.Confidence = ModelConfidence
	}
	return p
}

// Generate replaces the FIR's suggestions with a single fresh one. External
// service failures are absorbed; only storage errors are returned.
func (g *Generator) Generate(ctx context.Context, fir *database.FIR) (*database.LegalSuggestion, error) {
	translated := g.SafeTranslate(ctx, fir.IncidentDescription)
	prediction := g.SafePredict(ctx, translated)
	section, _ := g.catalog.Lookup(prediction.Section)

	description := translated
	if description == "" {
		description = FallbackDescription
	}

	suggestion := &database.LegalSuggestion{
		FIRID:           fir.ID,
		IPCSection:      section.Code,
		ActName:         section.Act,
		Description:     description,
		ConfidenceScore: prediction.Confidence,
	}

	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("fir_id = ?", fir.ID).Delete(&database.LegalSuggestion{}).Error; err != nil {
			return fmt.Errorf("failed to clear suggestions: %w", err)
		}
		if err := tx.Create(suggestion).Error; err != nil {
			return fmt.Errorf("failed to save suggestion: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	g.logger.Info("Legal suggestion generated",
		"fir", fir.FIRNumber,
		"section", suggestion.IPCSection,
		"confidence", suggestion.ConfidenceScore,
	)

	if err := g.publisher.Publish(ctx, events.Event{
		Type:      events.TypeSuggestionGenerated,
		FIRNumber: fir.FIRNumber,
		FIRID:     fir.ID,
		Attributes: map[string]string{
			"section":    suggestion.IPCSection,
			"confidence": strconv.FormatFloat(suggestion.ConfidenceScore, 'f', 2, 64),
		},
	}); err != nil {
		g.logger.Warn("Failed to publish suggestion event", "fir", fir.FIRNumber, "error", err)
	}

	return suggestion, nil
}

// List returns the current suggestions of an FIR
func (g *Generator) List(ctx context.Context, firID uint) ([]database.LegalSuggestion, error) {
	var out []database.LegalSuggestion
	if err := g.db.WithContext(ctx).Where("fir_id = ?", firID).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list suggestions: %w", err)
	}
	return out, nil
}
