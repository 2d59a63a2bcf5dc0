package api

import (
	"mime"
	"net/http"

	"github.com/JustJay7/fir-manager/internal/records"
	"github.com/gin-gonic/gin"
)

type hearingRequest struct {
	HearingDate string `json:"hearing_date" binding:"required"`
	CourtName   string `json:"court_name" binding:"required"`
	JudgeName   string `json:"judge_name"`
	Purpose     string `json:"purpose"`
	Outcome     string `json:"outcome"`
}

// AddEvidence accepts a multipart upload in the "file" field
func (h *Handlers) AddEvidence(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "a file is required")
		return
	}
	file, err := fh.Open()
	if err != nil {
		badRequest(c, "unreadable upload")
		return
	}
	defer file.Close()

	evidence, err := h.records.AddEvidence(c.Request.Context(), currentUser(c), id, records.EvidenceUpload{
		FileName:     fh.Filename,
		Content:      file,
		Description:  c.PostForm("description"),
		EvidenceType: c.PostForm("evidence_type"),
		Transcribe:   c.PostForm("transcribe") == "true",
		Language:     c.PostForm("language"),
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    evidence,
	})
}

// ListEvidence returns the FIR's evidence
func (h *Handlers) ListEvidence(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	list, err := h.records.ListEvidence(c.Request.Context(), currentUser(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    list,
	})
}

// EvidenceFile streams a stored evidence file
func (h *Handlers) EvidenceFile(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	eid, ok := idParam(c, "eid")
	if !ok {
		return
	}

	evidence, rc, err := h.records.OpenEvidence(c.Request.Context(), currentUser(c), id, eid)
	if err != nil {
		h.fail(c, err)
		return
	}
	defer rc.Close()

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": evidence.FileName})
	c.DataFromReader(http.StatusOK, evidence.Size, "application/octet-stream", rc, map[string]string{
		"Content-Disposition": disposition,
	})
}

// AddWitness records a witness statement
func (h *Handlers) AddWitness(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req records.WitnessInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	w, err := h.records.AddWitness(c.Request.Context(), currentUser(c), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    w,
	})
}

// ListWitnesses returns the FIR's witnesses
func (h *Handlers) ListWitnesses(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	list, err := h.records.ListWitnesses(c.Request.Context(), currentUser(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    list,
	})
}

// AddHearing schedules or records a court hearing
func (h *Handlers) AddHearing(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req hearingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	date, err := parseDate("hearing_date", req.HearingDate)
	if err != nil {
		h.fail(c, err)
		return
	}

	hearing, err := h.records.AddHearing(c.Request.Context(), currentUser(c), id, records.HearingInput{
		HearingDate: date,
		CourtName:   req.CourtName,
		JudgeName:   req.JudgeName,
		Purpose:     req.Purpose,
		Outcome:     req.Outcome,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    hearing,
	})
}

// ListHearings returns the FIR's hearings by date
func (h *Handlers) ListHearings(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	list, err := h.records.ListHearings(c.Request.Context(), currentUser(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    list,
	})
}

// AddNote appends an investigation note
func (h *Handlers) AddNote(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	note, err := h.records.AddNote(c.Request.Context(), currentUser(c), id, req.Content)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    note,
	})
}

// ListNotes returns the FIR's notes, newest first
func (h *Handlers) ListNotes(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	list, err := h.records.ListNotes(c.Request.Context(), currentUser(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    list,
	})
}

