package records

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/JustJay7/fir-manager/internal/access"
	"github.com/JustJay7/fir-manager/internal/apperr"
	"github.com/JustJay7/fir-manager/internal/database"
	"github.com/JustJay7/fir-manager/internal/notify"
	"github.com/JustJay7/fir-manager/internal/storage"
	"github.com/samber/lo"
)

var extensionTypes = map[string]string{
	".jpg": database.EvidencePhoto, ".jpeg": database.EvidencePhoto, ".png": database.EvidencePhoto,
	".gif": database.EvidencePhoto, ".bmp": database.EvidencePhoto, ".webp": database.EvidencePhoto,
	".heic": database.EvidencePhoto,

	".mp4": database.EvidenceVideo, ".mov": database.EvidenceVideo, ".avi": database.EvidenceVideo,
	".mkv": database.EvidenceVideo, ".webm": database.EvidenceVideo,

	".wav": database.EvidenceAudio, ".mp3": database.EvidenceAudio, ".m4a": database.EvidenceAudio,
	".ogg": database.EvidenceAudio, ".flac": database.EvidenceAudio, ".mpeg": database.EvidenceAudio,

	".pdf": database.EvidenceDocument, ".doc": database.EvidenceDocument, ".docx": database.EvidenceDocument,
	".txt": database.EvidenceDocument, ".odt": database.EvidenceDocument, ".rtf": database.EvidenceDocument,
}

// EvidenceType classifies a file by extension, case-insensitively
func EvidenceType(filename string) string {
	if t, ok := extensionTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return t
	}
	return database.EvidenceOther
}

var evidenceTypes = []string{
	database.EvidencePhoto, database.EvidenceVideo, database.EvidenceAudio,
	database.EvidenceDocument, database.EvidenceOther,
}

// resolveType returns the caller's explicit type, or the one inferred from
// the file name when none was given
func resolveType(explicit, filename string) (string, error) {
	t := strings.ToLower(strings.TrimSpace(explicit))
	if t == "" {
		return EvidenceType(filename), nil
	}
	if !lo.Contains(evidenceTypes, t) {
		return "", apperr.Invalid("unknown evidence type %q", explicit)
	}
	return t, nil
}

// EvidenceUpload is one uploaded file
type EvidenceUpload struct {
	FileName    string
	Content     io.Reader
	Description string

	// EvidenceType overrides the type inferred from FileName
	EvidenceType string

	// Transcribe requests speech-to-text for audio files
	Transcribe bool
	Language   string
}

// AddEvidence stores the file and records it against the FIR. Audio can be
// transcribed and photos have their text extracted. Either failing leaves
// the transcription empty.
func (r *Recorder) AddEvidence(ctx context.Context, actor *database.User, firID uint, upload EvidenceUpload) (*database.Evidence, error) {
	fir, err := r.load(ctx, actor, firID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(upload.FileName) == "" || upload.Content == nil {
		return nil, apperr.Invalid("a file is required")
	}
	evidenceType, err := resolveType(upload.EvidenceType, upload.FileName)
	if err != nil {
		return nil, err
	}

	content := upload.Content
	if r.maxUpload > 0 {
		content = io.LimitReader(content, r.maxUpload+1)
	}

	ref, size, err := r.store.Save(ctx, upload.FileName, content)
	if err != nil {
		return nil, fmt.Errorf("failed to store evidence: %w", err)
	}
	if r.maxUpload > 0 && size > r.maxUpload {
		r.discard(ctx, ref)
		return nil, apperr.Invalid("file exceeds the %d byte upload limit", r.maxUpload)
	}

	evidence := &database.Evidence{
		FIRID:        fir.ID,
		FileRef:      ref,
		FileName:     upload.FileName,
		Size:         size,
		EvidenceType: evidenceType,
		Description:  upload.Description,
		UploadedByID: actor.ID,
	}

	switch {
	case evidence.EvidenceType == database.EvidenceAudio && upload.Transcribe:
		language := lo.Ternary(upload.Language != "", upload.Language, r.language)
		evidence.Transcription = r.transcribe(ctx, ref, upload.FileName, language)
		if evidence.Transcription != "" {
			evidence.TranscriptionLanguage = language
		}
	case evidence.EvidenceType == database.EvidencePhoto:
		evidence.Transcription = r.extractText(ctx, ref, upload.FileName)
	}

	if err := r.db.WithContext(ctx).Create(evidence).Error; err != nil {
		r.discard(ctx, ref)
		return nil, fmt.Errorf("failed to save evidence: %w", err)
	}

	r.logger.Info("Evidence added",
		"fir", fir.FIRNumber,
		"type", evidence.EvidenceType,
		"size", size,
		"user", actor.Username,
	)

	if r.notifier != nil {
		if _, err := r.notifier.Notify(ctx, fir, notify.ActionEvidenceAdded, actor); err != nil {
			r.logger.Warn("Failed to notify evidence upload", "fir", fir.FIRNumber, "error", err)
		}
	}

	return evidence, nil
}

func (r *Recorder) transcribe(ctx context.Context, ref, filename, language string) string {
	if r.transcriber == nil {
		return ""
	}
	rc, err := r.store.Open(ctx, ref)
	if err != nil {
		r.logger.Warn("Failed to reopen audio for transcription", "ref", ref, "error", err)
		return ""
	}
	defer rc.Close()

	text, err := r.transcriber.Transcribe(ctx, rc, filename, language)
	if err != nil {
		r.logger.Warn("Transcription failed", "ref", ref, "error", err)
		return ""
	}
	return strings.TrimSpace(text)
}

func (r *Recorder) extractText(ctx context.Context, ref, filename string) string {
	if r.extractor == nil {
		return ""
	}
	rc, err := r.store.Open(ctx, ref)
	if err != nil {
		r.logger.Warn("Failed to reopen image for text extraction", "ref", ref, "error", err)
		return ""
	}
	defer rc.Close()

	text, err := r.extractor.ExtractText(ctx, rc, filename)
	if err != nil {
		r.logger.Warn("Text extraction failed", "ref", ref, "error", err)
		return ""
	}
	return strings.TrimSpace(text)
}

func (r *Recorder) discard(ctx context.Context, ref string) {
	if err := r.store.Delete(ctx, ref); err != nil {
		r.logger.Warn("Failed to remove stored file", "ref", ref, "error", err)
	}
}

// ListEvidence returns the FIR's evidence, oldest first
func (r *Recorder) ListEvidence(ctx context.Context, actor *database.User, firID uint) ([]database.Evidence, error) {
	if _, err := r.load(ctx, actor, firID); err != nil {
		return nil, err
	}
	var out []database.Evidence
	if err := r.db.WithContext(ctx).Where("fir_id = ?", firID).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list evidence: %w", err)
	}
	return out, nil
}

// OpenEvidence returns the evidence record and its content. The caller
// closes the reader.
func (r *Recorder) OpenEvidence(ctx context.Context, actor *database.User, firID, evidenceID uint) (*database.Evidence, io.ReadCloser, error) {
	if _, err := r.load(ctx, actor, firID); err != nil {
		return nil, nil, err
	}

	var evidence database.Evidence
	err := r.db.WithContext(ctx).Where("id = ? AND fir_id = ?", evidenceID, firID).First(&evidence).Error
	if err != nil {
		return nil, nil, apperr.FromQuery(err, "evidence", evidenceID)
	}

	rc, err := r.store.Open(ctx, evidence.FileRef)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, apperr.NotFound("evidence file", evidence.FileRef)
	}
	if err != nil {
		return nil, nil, err
	}
	return &evidence, rc, nil
}

// load fetches the FIR and checks the actor may work on it
func (r *Recorder) load(ctx context.Context, actor *database.User, firID uint) (*database.FIR, error) {
	fir, err := database.FindFIR(ctx, r.db, firID)
	if err != nil {
		return nil, apperr.FromQuery(err, "fir", firID)
	}
	if err := access.Require(access.For(actor), fir); err != nil {
		return nil, err
	}
	return fir, nil
}
