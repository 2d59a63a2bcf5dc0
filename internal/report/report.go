// Package report renders FIRs as CSV exports, printable HTML and PDF.
package report

import (
	"bytes"
	"embed"
	"encoding/csv"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/JustJay7/fir-manager/internal/database"
	"github.com/JustJay7/fir-manager/internal/workflow"
	"github.com/samber/lo"
	"gorm.io/datatypes"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"label": func(s workflow.Status) string { return workflow.Label(s) },
	"badge": func(s workflow.Status) string { return workflow.Badge(s) },
	"date":  func(v interface{}) string { return formatDate(toTime(v)) },
	"when":  func(v interface{}) string { return formatTime(toTime(v)) },
	"percent": func(f float64) string {
		return fmt.Sprintf("%.0f%%", f*100)
	},
}).ParseFS(templateFS, "templates/*.html"))

var csvHeader = []string{
	"FIR Number", "Status", "Priority", "Complainant", "Contact",
	"Incident Date", "Location", "Officer", "Station", "Team",
	"Investigation Deadline", "Created At",
}

// CSV exports FIRs one row each. Officer, Station and Team.User should be
// loaded; missing relations render empty.
func CSV(firs []database.FIR) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, f := range firs {
		team := lo.FilterMap(f.Team, func(m database.TeamMember, _ int) (string, bool) {
			return m.User.Username, m.User.Username != ""
		})
		deadline := ""
		if f.InvestigationDeadline != nil {
			deadline = formatTime(*f.InvestigationDeadline)
		}
		row := []string{
			f.FIRNumber,
			workflow.Label(f.Status),
			f.Priority,
			f.ComplainantName,
			f.ComplainantContact,
			formatDate(time.Time(f.IncidentDate)),
			f.IncidentLocation,
			f.Officer.Username,
			f.Station.Name,
			strings.Join(team, "; "),
			deadline,
			formatTime(f.CreatedAt),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.Bytes(), nil
}

// Detail is everything printed on an FIR report
type Detail struct {
	FIR         *database.FIR
	Evidence    []database.Evidence
	Witnesses   []database.Witness
	Hearings    []database.CourtHearing
	Notes       []database.InvestigationNote
	GeneratedAt time.Time
}

// RenderHTML renders the printable FIR report
func RenderHTML(d Detail) ([]byte, error) {
	if d.FIR == nil {
		return nil, fmt.Errorf("report needs an fir")
	}
	if d.GeneratedAt.IsZero() {
		d.GeneratedAt = time.Now()
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "fir.html", d); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return buf.Bytes(), nil
}

// toTime accepts the time shapes found on the models
func toTime(v interface{}) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case *time.Time:
		if t != nil {
			return *t
		}
	case datatypes.Date:
		return time.Time(t)
	case *datatypes.Date:
		if t != nil {
			return time.Time(*t)
		}
	}
	return time.Time{}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04 MST")
}
