package api

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JustJay7/fir-manager/internal/ai"
	"github.com/JustJay7/fir-manager/internal/cache"
	"github.com/JustJay7/fir-manager/internal/database"
	"github.com/JustJay7/fir-manager/internal/directory"
	"github.com/JustJay7/fir-manager/internal/events"
	"github.com/JustJay7/fir-manager/internal/fir"
	"github.com/JustJay7/fir-manager/internal/legal"
	"github.com/JustJay7/fir-manager/internal/notify"
	"github.com/JustJay7/fir-manager/internal/records"
	"github.com/JustJay7/fir-manager/internal/storage"
	"github.com/JustJay7/fir-manager/internal/testutil"
	"github.com/JustJay7/fir-manager/internal/workflow"
	"github.com/JustJay7/fir-manager/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type echoTranslator struct{}

func (echoTranslator) Translate(_ context.Context, text, _, _ string) (string, error) {
	return text, nil
}

type fixedClassifier struct{}

func (fixedClassifier) Predict(context.Context, string) (ai.Prediction, error) {
	return ai.Prediction{Section: "379", Confidence: 0.9}, nil
}

type stubPDF struct{ err error }

func (s stubPDF) Render(_ context.Context, html []byte) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return append([]byte("%PDF-1.4 "), html[:16]...), nil
}

type testEnv struct {
	router   *gin.Engine
	db       *gorm.DB
	station  *database.Station
	owner    *database.User
	member   *database.User
	outsider *database.User
	admin    *database.User
}

func setupTestRouter(t *testing.T, pdf PDFRenderer) testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	log := logger.NewNop()

	store, err := storage.NewLocal(t.TempDir(), log)
	require.NoError(t, err)

	publisher := &events.Recorder{}
	notifier := notify.New(db, publisher, log)
	firs := fir.NewService(db, notifier, publisher, cache.New[*fir.Dashboard](10, time.Minute), log)

	router := gin.New()
	SetupRoutes(router, Deps{
		DB:       db,
		FIRs:     firs,
		Records:  records.NewRecorder(db, records.Options{Store: store, Notifier: notifier, MaxUploadSize: 1 << 20}, log),
		Legal:    legal.NewGenerator(db, echoTranslator{}, fixedClassifier{}, legal.DefaultCatalog(), "en", publisher, log),
		Notifier: notifier,
		Stations: directory.Stations(db, log),
		Users:    directory.Users(db, log),
		PDF:      pdf,
		Logger:   log,
	})

	station := testutil.Station(t, db, "Central")
	return testEnv{
		router:   router,
		db:       db,
		station:  station,
		owner:    testutil.Officer(t, db, "rsingh", station),
		member:   testutil.Officer(t, db, "pkumar", station),
		outsider: testutil.Officer(t, db, "avyas", station),
		admin:    testutil.Admin(t, db, "chief"),
	}
}

func (e testEnv) do(t *testing.T, method, path string, user *database.User, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		req.Header.Set(UserHeader, fmt.Sprint(user.ID))
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func firPath(f *database.FIR, suffix string) string {
	return fmt.Sprintf("/api/firs/%d%s", f.ID, suffix)
}

func TestHealthCheck(t *testing.T) {
	env := setupTestRouter(t, nil)

	w := env.do(t, http.MethodGet, "/api/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, true, resp["database"])
	assert.Equal(t, false, resp["ai"])
	assert.Equal(t, false, resp["pdf"])
}

func TestIdentity(t *testing.T) {
	env := setupTestRouter(t, nil)
	require.NoError(t, env.db.Model(env.outsider).Update("active", false).Error)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not a number", "abc", http.StatusUnauthorized},
		{"unknown user", "9999", http.StatusUnauthorized},
		{"inactive user", fmt.Sprint(env.outsider.ID), http.StatusUnauthorized},
		{"active user", fmt.Sprint(env.owner.ID), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
			if tt.header != "" {
				req.Header.Set(UserHeader, tt.header)
			}
			w := httptest.NewRecorder()
			env.router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestCreateAndGetFIR(t *testing.T) {
	env := setupTestRouter(t, nil)

	w := env.do(t, http.MethodPost, "/api/firs", env.owner, map[string]interface{}{
		"complainant_name":     "Asha Verma",
		"incident_description": "Chain snatching near the bus stand",
		"incident_date":        "2024-03-14",
		"incident_location":    "Bus stand",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	data := decode(t, w)["data"].(map[string]interface{})
	assert.Regexp(t, `^FIR-\d{8}-[0-9A-F]{6}$`, data["fir_number"])
	assert.Equal(t, "draft", data["status"])
	assert.Equal(t, "medium", data["priority"])
	assert.Equal(t, float64(env.station.ID), data["station_id"])

	id := uint(data["ID"].(float64))
	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/firs/%d", id), env.owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, []interface{}{"submitted"}, resp["next_actions"])
	assert.Equal(t, false, resp["overdue"])

	// admins do not register FIRs
	w = env.do(t, http.MethodPost, "/api/firs", env.admin, map[string]interface{}{
		"complainant_name":     "Asha Verma",
		"incident_description": "x",
		"incident_date":        "2024-03-14",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, "/api/firs", env.owner, map[string]interface{}{
		"complainant_name":     "Asha Verma",
		"incident_description": "x",
		"incident_date":        "14/03/2024",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFIRAccess(t *testing.T) {
	env := setupTestRouter(t, nil)
	f := testutil.FIR(t, env.db, env.owner, env.station, workflow.Draft, env.member)

	tests := []struct {
		name string
		user *database.User
		path string
		want int
	}{
		{"owner", env.owner, firPath(f, ""), http.StatusOK},
		{"team member", env.member, firPath(f, ""), http.StatusOK},
		{"admin", env.admin, firPath(f, ""), http.StatusOK},
		{"other officer", env.outsider, firPath(f, ""), http.StatusForbidden},
		{"other officer records", env.outsider, firPath(f, "/witnesses"), http.StatusForbidden},
		{"missing fir", env.owner, "/api/firs/9999", http.StatusNotFound},
		{"bad id", env.owner, "/api/firs/abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodGet, tt.path, tt.user, nil)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestChangeStatus(t *testing.T) {
	env := setupTestRouter(t, nil)
	f := testutil.FIR(t, env.db, env.owner, env.station, workflow.Draft, env.member)

	// draft cannot skip submission
	w := env.do(t, http.MethodPost, firPath(f, "/status"), env.owner, gin.H{"status": "under_investigation"})
	require.Equal(t, http.StatusConflict, w.Code)
	resp := decode(t, w)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, true, resp["transition_rejected"])
	assert.Equal(t, []interface{}{"submitted"}, resp["allowed"])
	assert.Equal(t, "draft", resp["data"].(map[string]interface{})["status"])

	w = env.do(t, http.MethodPost, firPath(f, "/status"), env.owner, gin.H{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, firPath(f, "/status"), env.owner, gin.H{"status": "submitted"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "submitted", decode(t, w)["data"].(map[string]interface{})["status"])

	// the team member hears about it, the actor does not
	w = env.do(t, http.MethodGet, "/api/notifications", env.member, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode(t, w)
	list := resp["data"].([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, float64(1), resp["unread"])
	note := list[0].(map[string]interface{})
	assert.Equal(t, fmt.Sprintf("FIR %s: status change by rsingh", f.FIRNumber), note["message"])
	assert.Equal(t, f.DetailLink(), note["link"])

	w = env.do(t, http.MethodGet, "/api/notifications", env.owner, nil)
	assert.Empty(t, decode(t, w)["data"])

	// only the recipient can mark it read
	noteID := uint(note["ID"].(float64))
	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/notifications/%d/read", noteID), env.owner, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/notifications/%d/read", noteID), env.member, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["data"].(map[string]interface{})["read"])

	w = env.do(t, http.MethodPost, "/api/notifications/read-all", env.member, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decode(t, w)["updated"])
}

func TestReassignAndTeam(t *testing.T) {
	env := setupTestRouter(t, nil)
	f := testutil.FIR(t, env.db, env.owner, env.station, workflow.Submitted, env.member)

	w := env.do(t, http.MethodPost, firPath(f, "/reassign"), env.owner, gin.H{"officer_id": env.outsider.ID})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, firPath(f, "/reassign"), env.admin, gin.H{"officer_id": env.admin.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, firPath(f, "/reassign"), env.admin, gin.H{"officer_id": env.member.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(env.member.ID), data["officer_id"])
	assert.Empty(t, data["team"])

	w = env.do(t, http.MethodPut, firPath(f, "/team"), env.member, gin.H{"member_ids": []uint{env.owner.ID, env.outsider.ID}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	team := decode(t, w)["data"].(map[string]interface{})["team"].([]interface{})
	assert.Len(t, team, 2)

	w = env.do(t, http.MethodPut, firPath(f, "/team"), env.member, gin.H{"member_ids": []uint{9999}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeadlineAndOverdueFilter(t *testing.T) {
	env := setupTestRouter(t, nil)
	late := testutil.FIR(t, env.db, env.owner, env.station, workflow.UnderInvestigation)
	testutil.FIR(t, env.db, env.owner, env.station, workflow.UnderInvestigation)

	w := env.do(t, http.MethodPut, firPath(late, "/deadline"), env.owner, gin.H{"deadline": "2020-01-01T00:00:00Z"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/firs?overdue=true", env.owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	list := resp["data"].([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, late.FIRNumber, list[0].(map[string]interface{})["fir_number"])
	assert.Equal(t, float64(1), resp["pagination"].(map[string]interface{})["total"])

	w = env.do(t, http.MethodPut, firPath(late, "/deadline"), env.member, gin.H{"deadline": nil})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListScopedToOfficer(t *testing.T) {
	env := setupTestRouter(t, nil)
	testutil.FIR(t, env.db, env.owner, env.station, workflow.Draft)
	testutil.FIR(t, env.db, env.outsider, env.station, workflow.Draft, env.owner)
	testutil.FIR(t, env.db, env.outsider, env.station, workflow.Draft)

	total := func(user *database.User, query string) float64 {
		w := env.do(t, http.MethodGet, "/api/firs"+query, user, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		return decode(t, w)["pagination"].(map[string]interface{})["total"].(float64)
	}
	assert.Equal(t, float64(2), total(env.owner, ""))
	assert.Equal(t, float64(3), total(env.admin, ""))
	assert.Equal(t, float64(2), total(env.admin, fmt.Sprintf("?officer_id=%d", env.outsider.ID)))
	assert.Equal(t, float64(0), total(env.admin, "?status=closed"))

	w := env.do(t, http.MethodGet, "/api/firs?station_id=x", env.admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportCSV(t *testing.T) {
	env := setupTestRouter(t, nil)
	testutil.FIR(t, env.db, env.owner, env.station, workflow.Draft, env.member)
	testutil.FIR(t, env.db, env.outsider, env.station, workflow.Closed)

	w := env.do(t, http.MethodGet, "/api/firs/export.csv", env.owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")

	rows, err := csv.NewReader(w.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "rsingh", rows[1][7])
	assert.Equal(t, "Central", rows[1][8])
	assert.Equal(t, "pkumar", rows[1][9])
}

func TestLegalSuggestions(t *testing.T) {
	env := setupTestRouter(t, nil)
	f := testutil.FIR(t, env.db, env.owner, env.station, workflow.Submitted)

	for i := 0; i < 2; i++ {
		w := env.do(t, http.MethodPost, firPath(f, "/legal-suggestions"), env.owner, nil)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		data := decode(t, w)["data"].(map[string]interface{})
		assert.Equal(t, "IPC 379", data["ipc_section"])
		assert.Equal(t, 0.9, data["confidence_score"])
	}

	// regenerating replaces the previous suggestion
	w := env.do(t, http.MethodGet, firPath(f, "/legal-suggestions"), env.owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 1)

	w = env.do(t, http.MethodPost, firPath(f, "/legal-suggestions"), env.outsider, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRecordsEndpoints(t *testing.T) {
	env := setupTestRouter(t, nil)
	f := testutil.FIR(t, env.db, env.owner, env.station, workflow.UnderInvestigation, env.member)

	w := env.do(t, http.MethodPost, firPath(f, "/witnesses"), env.member, gin.H{"name": "Ravi", "statement": "Saw two men"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = env.do(t, http.MethodPost, firPath(f, "/witnesses"), env.member, gin.H{"statement": "no name"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.do(t, http.MethodGet, firPath(f, "/witnesses"), env.owner, nil)
	assert.Len(t, decode(t, w)["data"], 1)

	w = env.do(t, http.MethodPost, firPath(f, "/hearings"), env.owner, gin.H{"hearing_date": "2024-05-02", "court_name": "Sessions Court"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = env.do(t, http.MethodPost, firPath(f, "/hearings"), env.owner, gin.H{"hearing_date": "May 2", "court_name": "Sessions Court"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.do(t, http.MethodGet, firPath(f, "/hearings"), env.owner, nil)
	assert.Len(t, decode(t, w)["data"], 1)

	w = env.do(t, http.MethodPost, firPath(f, "/notes"), env.owner, gin.H{"content": "Checked CCTV"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = env.do(t, http.MethodGet, firPath(f, "/notes"), env.member, nil)
	assert.Len(t, decode(t, w)["data"], 1)
}

func TestEvidenceUploadAndDownload(t *testing.T) {
	env := setupTestRouter(t, nil)
	f := testutil.FIR(t, env.db, env.owner, env.station, workflow.UnderInvestigation, env.member)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "statement scan.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("scanned statement"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("description", "Signed statement"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, firPath(f, "/evidence"), &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(UserHeader, fmt.Sprint(env.owner.ID))
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "document", data["evidence_type"])
	assert.Equal(t, float64(len("scanned statement")), data["size"])
	eid := uint(data["ID"].(float64))

	w = env.do(t, http.MethodGet, fmt.Sprintf("%s/%d/file", firPath(f, "/evidence"), eid), env.member, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "scanned statement", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "statement scan.pdf")

	w = env.do(t, http.MethodGet, fmt.Sprintf("%s/%d/file", firPath(f, "/evidence"), eid), env.outsider, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// the owner uploaded, so only the team member is told
	w = env.do(t, http.MethodGet, "/api/notifications", env.member, nil)
	assert.Len(t, decode(t, w)["data"], 1)

	w = env.do(t, http.MethodPost, firPath(f, "/evidence"), env.owner, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEvidenceUploadExplicitType(t *testing.T) {
	env := setupTestRouter(t, nil)
	f := testutil.FIR(t, env.db, env.owner, env.station, workflow.UnderInvestigation)

	upload := func(evidenceType string) *httptest.ResponseRecorder {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		part, err := mw.CreateFormFile("file", "scan.pdf")
		require.NoError(t, err)
		_, err = part.Write([]byte("scanned photo"))
		require.NoError(t, err)
		require.NoError(t, mw.WriteField("evidence_type", evidenceType))
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, firPath(f, "/evidence"), &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set(UserHeader, fmt.Sprint(env.owner.ID))
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)
		return w
	}

	w := upload("photo")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "photo", decode(t, w)["data"].(map[string]interface{})["evidence_type"])

	w = upload("hologram")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])
}

func TestReports(t *testing.T) {
	env := setupTestRouter(t, stubPDF{})
	f := testutil.FIR(t, env.db, env.owner, env.station, workflow.Submitted)

	w := env.do(t, http.MethodGet, firPath(f, "/report"), env.owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "First Information Report "+f.FIRNumber)

	w = env.do(t, http.MethodGet, firPath(f, "/report.pdf"), env.owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), f.FIRNumber+".pdf")

	w = env.do(t, http.MethodGet, firPath(f, "/report.pdf"), env.outsider, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	failing := setupTestRouter(t, stubPDF{err: errors.New("browser crashed")})
	g := testutil.FIR(t, failing.db, failing.owner, failing.station, workflow.Submitted)
	w = failing.do(t, http.MethodGet, firPath(g, "/report.pdf"), failing.owner, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decode(t, w)["error"])

	disabled := setupTestRouter(t, nil)
	h := testutil.FIR(t, disabled.db, disabled.owner, disabled.station, workflow.Submitted)
	w = disabled.do(t, http.MethodGet, firPath(h, "/report.pdf"), disabled.owner, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestDirectory(t *testing.T) {
	env := setupTestRouter(t, nil)
	testutil.FIR(t, env.db, env.owner, env.station, workflow.Draft)

	w := env.do(t, http.MethodGet, "/api/stations", env.owner, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, "/api/stations", env.admin, gin.H{"name": "North", "location": "Sector 9"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	north := uint(decode(t, w)["data"].(map[string]interface{})["ID"].(float64))

	w = env.do(t, http.MethodGet, "/api/stations", env.admin, nil)
	assert.Len(t, decode(t, w)["data"], 2)

	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/users/%d", env.outsider.ID), env.admin, gin.H{"station_id": north})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(north), decode(t, w)["data"].(map[string]interface{})["station_id"])

	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/users/%d", env.outsider.ID), env.admin, gin.H{"username": "renamed"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/users", env.admin, gin.H{"username": "rsingh", "role": "police_officer"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// stations and owners with FIRs stay
	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/stations/%d", env.station.ID), env.admin, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", env.owner.ID), env.admin, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/stations/%d", north), env.admin, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/stations/%d", north), env.admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
