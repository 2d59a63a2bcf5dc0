package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/JustJay7/fir-manager/internal/fir"
	"github.com/JustJay7/fir-manager/internal/report"
	"github.com/JustJay7/fir-manager/internal/workflow"
	"github.com/gin-gonic/gin"
)

type createFIRRequest struct {
	ComplainantName       string     `json:"complainant_name" binding:"required"`
	ComplainantContact    string     `json:"complainant_contact"`
	IncidentDescription   string     `json:"incident_description" binding:"required"`
	IncidentDate          string     `json:"incident_date" binding:"required"`
	IncidentLocation      string     `json:"incident_location"`
	Priority              string     `json:"priority"`
	InvestigationDeadline *time.Time `json:"investigation_deadline"`
}

type updateFIRRequest struct {
	ComplainantName     *string `json:"complainant_name"`
	ComplainantContact  *string `json:"complainant_contact"`
	IncidentDescription *string `json:"incident_description"`
	IncidentDate        *string `json:"incident_date"`
	IncidentLocation    *string `json:"incident_location"`
	Priority            *string `json:"priority"`
}

// ListFIRs returns the FIRs visible to the user, newest first
func (h *Handlers) ListFIRs(c *gin.Context) {
	filter, ok := listFilter(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	filter.Limit = limit
	filter.Offset = (page - 1) * limit

	firs, total, err := h.firs.List(c.Request.Context(), currentUser(c), filter)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    firs,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// ExportCSV downloads every FIR matching the list filters
func (h *Handlers) ExportCSV(c *gin.Context) {
	filter, ok := listFilter(c)
	if !ok {
		return
	}
	firs, _, err := h.firs.List(c.Request.Context(), currentUser(c), filter)
	if err != nil {
		h.fail(c, err)
		return
	}

	data, err := report.CSV(firs)
	if err != nil {
		h.fail(c, err)
		return
	}

	filename := fmt.Sprintf("firs-%s.csv", time.Now().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// CreateFIR registers a draft FIR for the current officer
func (h *Handlers) CreateFIR(c *gin.Context) {
	var req createFIRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	incidentDate, err := parseDate("incident_date", req.IncidentDate)
	if err != nil {
		h.fail(c, err)
		return
	}

	created, err := h.firs.Create(c.Request.Context(), currentUser(c), fir.CreateInput{
		ComplainantName:       req.ComplainantName,
		ComplainantContact:    req.ComplainantContact,
		IncidentDescription:   req.IncidentDescription,
		IncidentDate:          incidentDate,
		IncidentLocation:      req.IncidentLocation,
		Priority:              req.Priority,
		InvestigationDeadline: req.InvestigationDeadline,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    created,
	})
}

// GetFIR returns one FIR with its allowed next statuses
func (h *Handlers) GetFIR(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	f, err := h.firs.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"data":         f,
		"next_actions": workflow.Allowed(f.Status),
		"overdue":      f.IsOverdue(time.Now()),
	})
}

// UpdateFIR edits descriptive fields
func (h *Handlers) UpdateFIR(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req updateFIRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	in := fir.UpdateInput{
		ComplainantName:     req.ComplainantName,
		ComplainantContact:  req.ComplainantContact,
		IncidentDescription: req.IncidentDescription,
		IncidentLocation:    req.IncidentLocation,
		Priority:            req.Priority,
	}
	if req.IncidentDate != nil {
		d, err := parseDate("incident_date", *req.IncidentDate)
		if err != nil {
			h.fail(c, err)
			return
		}
		if d.IsZero() {
			badRequest(c, "incident_date cannot be empty")
			return
		}
		in.IncidentDate = &d
	}

	updated, err := h.firs.Update(c.Request.Context(), currentUser(c), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    updated,
	})
}

// ChangeStatus applies a workflow transition. Rejected transitions answer
// 409 with the unchanged FIR.
func (h *Handlers) ChangeStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status workflow.Status `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if !workflow.Valid(req.Status) {
		badRequest(c, fmt.Sprintf("unknown status %q", req.Status))
		return
	}

	f, err := h.firs.ChangeStatus(c.Request.Context(), currentUser(c), id, req.Status)
	var terr *workflow.TransitionError
	if errors.As(err, &terr) {
		c.JSON(http.StatusConflict, gin.H{
			"success":             false,
			"transition_rejected": true,
			"error":               terr.Error(),
			"allowed":             terr.Allowed,
			"data":                f,
		})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    f,
	})
}

// Reassign moves an FIR to another officer (admin only)
func (h *Handlers) Reassign(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		OfficerID uint `json:"officer_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	f, err := h.firs.Reassign(c.Request.Context(), currentUser(c), id, req.OfficerID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    f,
	})
}

// SetTeam replaces the investigation team
func (h *Handlers) SetTeam(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		MemberIDs []uint `json:"member_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	f, err := h.firs.SetTeam(c.Request.Context(), currentUser(c), id, req.MemberIDs)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    f,
	})
}

// SetDeadline sets or clears the investigation deadline
func (h *Handlers) SetDeadline(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Deadline *time.Time `json:"deadline"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	f, err := h.firs.SetDeadline(c.Request.Context(), currentUser(c), id, req.Deadline)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    f,
	})
}

// GenerateSuggestions replaces the FIR's legal suggestions
func (h *Handlers) GenerateSuggestions(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	f, err := h.firs.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	suggestion, err := h.legal.Generate(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    suggestion,
	})
}

// ListSuggestions returns the FIR's current legal suggestions
func (h *Handlers) ListSuggestions(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if _, err := h.firs.Get(c.Request.Context(), currentUser(c), id); err != nil {
		h.fail(c, err)
		return
	}

	suggestions, err := h.legal.List(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    suggestions,
	})
}

// ReportHTML renders the printable FIR report
func (h *Handlers) ReportHTML(c *gin.Context) {
	d, ok := h.reportDetail(c)
	if !ok {
		return
	}
	html, err := report.RenderHTML(d)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

// ReportPDF prints the FIR report to PDF
func (h *Handlers) ReportPDF(c *gin.Context) {
	if h.pdf == nil {
		h.fail(c, report.ErrPDFDisabled)
		return
	}
	d, ok := h.reportDetail(c)
	if !ok {
		return
	}
	html, err := report.RenderHTML(d)
	if err != nil {
		h.fail(c, err)
		return
	}

	data, err := h.pdf.Render(c.Request.Context(), html)
	if err != nil {
		h.fail(c, err)
		return
	}

	filename := d.FIR.FIRNumber + ".pdf"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

func (h *Handlers) reportDetail(c *gin.Context) (report.Detail, bool) {
	id, ok := idParam(c, "id")
	if !ok {
		return report.Detail{}, false
	}
	ctx := c.Request.Context()
	actor := currentUser(c)

	f, err := h.firs.Get(ctx, actor, id)
	if err != nil {
		h.fail(c, err)
		return report.Detail{}, false
	}
	d := report.Detail{FIR: f, GeneratedAt: time.Now()}

	if d.Evidence, err = h.records.ListEvidence(ctx, actor, id); err != nil {
		h.fail(c, err)
		return report.Detail{}, false
	}
	if d.Witnesses, err = h.records.ListWitnesses(ctx, actor, id); err != nil {
		h.fail(c, err)
		return report.Detail{}, false
	}
	if d.Hearings, err = h.records.ListHearings(ctx, actor, id); err != nil {
		h.fail(c, err)
		return report.Detail{}, false
	}
	if d.Notes, err = h.records.ListNotes(ctx, actor, id); err != nil {
		h.fail(c, err)
		return report.Detail{}, false
	}
	return d, true
}

// listFilter reads the shared list and export query parameters
func listFilter(c *gin.Context) (fir.Filter, bool) {
	f := fir.Filter{
		Status:   workflow.Status(c.Query("status")),
		Priority: c.Query("priority"),
		Search:   c.Query("q"),
		Overdue:  c.Query("overdue") == "true",
	}
	for name, dst := range map[string]*uint{
		"station_id": &f.StationID,
		"officer_id": &f.OfficerID,
	} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			badRequest(c, "invalid "+name)
			return f, false
		}
		*dst = uint(v)
	}
	return f, true
}
