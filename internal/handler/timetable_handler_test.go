package handler

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable/internal/middleware"
	"github.com/noah-isme/sma-timetable/internal/models"
	"github.com/noah-isme/sma-timetable/internal/repository"
	"github.com/noah-isme/sma-timetable/internal/service"
	"github.com/noah-isme/sma-timetable/pkg/export"
)

const cookieName = "timetable_session"

type testClient struct {
	t      *testing.T
	router *gin.Engine
	cookie *http.Cookie
}

func newTestClient(t *testing.T, strict bool) *testClient {
	t.Helper()
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	logger := zap.NewNop()
	sessions := service.NewSessionService(repository.NewMemorySessionRepository(), metrics, time.Hour, nil, logger)
	generator := service.NewTimetableService(service.TimetableConfig{
		Days:            []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
		PeriodsPerDay:   4,
		StrictConflicts: strict,
	}, rand.New(rand.NewSource(11)), metrics, logger)
	exporter := service.NewExportService(export.NewPDFExporter(), metrics, logger)
	tokens := service.NewSessionTokenService("test-secret", time.Hour)

	r := gin.New()
	RegisterRoutes(r, Routes{
		Timetable:     NewTimetableHandler(sessions, generator, exporter, logger),
		Ops:           NewMetricsHandler(metrics, nil),
		Session:       middleware.Session(tokens, middleware.SessionCookie{Name: cookieName}, logger),
		EnableMetrics: true,
	})
	return &testClient{t: t, router: r}
}

func (tc *testClient) do(req *http.Request) *httptest.ResponseRecorder {
	if tc.cookie != nil {
		req.AddCookie(tc.cookie)
	}
	w := httptest.NewRecorder()
	tc.router.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		if ck.Name == cookieName {
			tc.cookie = ck
		}
	}
	return w
}

func (tc *testClient) get(path string) *httptest.ResponseRecorder {
	return tc.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (tc *testClient) postForm(values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return tc.do(req)
}

func (tc *testClient) entries() []models.Entry {
	tc.t.Helper()
	w := tc.get("/api/v1/entries")
	require.Equal(tc.t, http.StatusOK, w.Code)
	var body struct {
		Data []models.Entry `json:"data"`
	}
	require.NoError(tc.t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Data
}

func TestIndexRendersEmptyList(t *testing.T) {
	tc := newTestClient(t, false)
	w := tc.get("/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No teachers added yet.")
	assert.NotNil(t, tc.cookie)
}

func TestSubmitAddsEntry(t *testing.T) {
	tc := newTestClient(t, false)
	w := tc.postForm(url.Values{"teacher": {"Alice"}, "subject": {"Math"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Alice")
	assert.Equal(t, []models.Entry{{Teacher: "Alice", Subject: "Math"}}, tc.entries())
}

func TestSubmitRejectsEmptyTeacher(t *testing.T) {
	tc := newTestClient(t, false)
	w := tc.postForm(url.Values{"teacher": {""}, "subject": {"Math"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, tc.entries())
}

func TestSubmitEditsInPlace(t *testing.T) {
	tc := newTestClient(t, false)
	tc.postForm(url.Values{"teacher": {"Alice"}, "subject": {"Math"}})
	tc.postForm(url.Values{"teacher": {"Bob"}, "subject": {"Science"}})

	w := tc.get("/?edit=1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="edit_index" value="1"`)

	tc.postForm(url.Values{"teacher": {"Carol"}, "subject": {"History"}, "edit_index": {"1"}})
	assert.Equal(t, []models.Entry{
		{Teacher: "Alice", Subject: "Math"},
		{Teacher: "Carol", Subject: "History"},
	}, tc.entries())

	tc.postForm(url.Values{"teacher": {"Dan"}, "subject": {"Art"}, "edit_index": {"9"}})
	assert.Len(t, tc.entries(), 3)
}

func TestDeleteOutOfRangeRedirects(t *testing.T) {
	tc := newTestClient(t, false)
	tc.postForm(url.Values{"teacher": {"Alice"}, "subject": {"Math"}})
	tc.postForm(url.Values{"teacher": {"Bob"}, "subject": {"Science"}})

	w := tc.get("/delete/5")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.Len(t, tc.entries(), 2)

	w = tc.get("/delete/abc")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Len(t, tc.entries(), 2)

	tc.get("/delete/0")
	assert.Equal(t, []models.Entry{{Teacher: "Bob", Subject: "Science"}}, tc.entries())
}

func TestGenerateWithoutEntries(t *testing.T) {
	tc := newTestClient(t, false)
	w := tc.get("/generate")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "No teachers added!", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Empty(t, w.Header().Get("Content-Disposition"))
}

func TestGenerateReturnsPDFAndClearsSession(t *testing.T) {
	tc := newTestClient(t, false)
	tc.postForm(url.Values{"teacher": {"Alice"}, "subject": {"Math"}})
	tc.postForm(url.Values{"teacher": {"Bob"}, "subject": {"Science"}})

	w := tc.get("/generate")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="timetable.pdf"`, w.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))

	assert.Empty(t, tc.entries())
	assert.Contains(t, tc.get("/").Body.String(), "No teachers added yet.")
}

func TestSessionsDoNotShareEntries(t *testing.T) {
	first := newTestClient(t, false)
	first.postForm(url.Values{"teacher": {"Alice"}, "subject": {"Math"}})

	second := &testClient{t: t, router: first.router}
	assert.Empty(t, second.entries())
	assert.Len(t, first.entries(), 1)
}

func TestEntriesAPI(t *testing.T) {
	tc := newTestClient(t, false)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/entries", strings.NewReader(`{"teacher":"Alice","subject":"Math"}`))
	req.Header.Set("Content-Type", "application/json")
	require.Equal(t, http.StatusOK, tc.do(req).Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/entries", strings.NewReader(`{"teacher":"","subject":"Math"}`))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusBadRequest, tc.do(req).Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/entries", strings.NewReader(`{"teacher":`))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusBadRequest, tc.do(req).Code)

	w := tc.do(httptest.NewRequest(http.MethodDelete, "/api/v1/entries/3", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, tc.entries(), 1)

	w = tc.do(httptest.NewRequest(http.MethodDelete, "/api/v1/entries/0", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, tc.entries())
}

func TestPreview(t *testing.T) {
	tc := newTestClient(t, false)
	w := tc.get("/api/v1/timetable/preview")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "NO_ENTRIES")

	tc.postForm(url.Values{"teacher": {"Alice"}, "subject": {"Math"}})
	tc.postForm(url.Values{"teacher": {"Bob"}, "subject": {"Science"}})

	w = tc.get("/api/v1/timetable/preview")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data models.TimetableSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 20, body.Data.TotalSlots)
	require.Len(t, body.Data.Timetable.Grid, 5)
	for _, day := range body.Data.Timetable.Days {
		assert.Len(t, body.Data.Timetable.Grid[day], 4)
	}
	assert.Len(t, tc.entries(), 2, "preview must not clear the session")
}

func TestStrictPreviewKeepsTeachersOncePerDay(t *testing.T) {
	tc := newTestClient(t, true)
	tc.postForm(url.Values{"teacher": {"Alice"}, "subject": {"Math"}})
	tc.postForm(url.Values{"teacher": {"Alice"}, "subject": {"Physics"}})

	w := tc.get("/api/v1/timetable/preview")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data models.TimetableSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Data.Strict)
	assert.Equal(t, 15, body.Data.FreeSlots)
}
