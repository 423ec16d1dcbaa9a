package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursereport/internal/config"
	"coursereport/internal/shared/testutil"
	"coursereport/pkg/contracts/domain"
)

// createTestLogger creates a logger that discards output for testing
func createTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func newTestApplication(t *testing.T, mutate func(*config.Config)) *Application {
	t.Helper()

	cfg := config.Default()
	cfg.Report.Title = "Сертификаты по областям"
	if mutate != nil {
		mutate(cfg)
	}

	app, err := NewApplicationWithConfig(cfg, createTestLogger())
	require.NoError(t, err)
	t.Cleanup(func() {
		app.Services.Sessions.Stop()
		app.Services.Datasets.Stop()
		_ = app.OTelProviders.Shutdown(context.Background())
	})
	return app
}

func upload(t *testing.T, app *Application, sessionID, fileName string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/reports/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if sessionID != "" {
		req.Header.Set("X-Session-ID", sessionID)
	}
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	return w
}

func analyze(app *Application, sessionID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/reports/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Session-ID", sessionID)
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	return w
}

func TestNewApplicationWithConfig(t *testing.T) {
	app := newTestApplication(t, nil)

	assert.NotNil(t, app.Router)
	assert.NotNil(t, app.Server)
	assert.NotNil(t, app.Services.Report)
	assert.NotNil(t, app.Services.Health)
	assert.Equal(t, ":8080", app.Server.Addr)

	_, err := NewApplicationWithConfig(nil, createTestLogger())
	assert.Error(t, err)
}

func TestApplication_ReportFlow(t *testing.T) {
	app := newTestApplication(t, nil)

	w := upload(t, app, "", "students.xlsx", testutil.BuildWorkbook(t, testutil.CourseExportRows))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var uploaded struct {
		Status string             `json:"status"`
		Data   domain.DatasetInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &uploaded))
	sessionID := uploaded.Data.SessionID
	require.NotEmpty(t, sessionID)
	assert.Equal(t, sessionID, w.Header().Get("X-Session-ID"))
	assert.Equal(t, 5, uploaded.Data.Rows)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	t.Run("analyze all courses", func(t *testing.T) {
		w := analyze(app, sessionID, `{}`)
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Status string        `json:"status"`
			Data   domain.Report `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Сертификаты по областям", body.Data.Title)
		assert.Equal(t, domain.Totals{Total: 5, WithCert: 3, NoCert: 2}, body.Data.Totals)
		require.NotEmpty(t, body.Data.Regions)
		assert.Equal(t, "Москва", body.Data.Regions[0].Region)
	})

	t.Run("analyze unknown course", func(t *testing.T) {
		w := analyze(app, sessionID, `{"course_id":"999"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"empty"`)
	})

	t.Run("export csv", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/reports/export?course_id=52&format=csv", nil)
		req.Header.Set("X-Session-ID", sessionID)
		w := httptest.NewRecorder()
		app.Router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Disposition"), "report_52.csv")
		assert.Contains(t, w.Body.String(), "Москва")
	})

	t.Run("export xlsx", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/reports/export", nil)
		req.Header.Set("X-Session-ID", sessionID)
		w := httptest.NewRecorder()
		app.Router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Disposition"), "report_all.xlsx")
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))
	})

	t.Run("reset forgets the dataset", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/reports/session", nil)
		req.Header.Set("X-Session-ID", sessionID)
		w := httptest.NewRecorder()
		app.Router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		w = analyze(app, sessionID, `{}`)
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestApplication_UploadErrors(t *testing.T) {
	app := newTestApplication(t, func(cfg *config.Config) {
		cfg.Server.MaxUploadBytes = 64 << 10
	})

	tests := []struct {
		name       string
		fileName   string
		content    []byte
		wantStatus int
		wantType   string
	}{
		{"not a workbook", "students.xlsx", []byte("plain text"), http.StatusUnprocessableEntity, "/errors/data/unreadable"},
		{"missing columns", "students.xlsx", testutil.BuildWorkbook(t, [][]string{{"courses.id", "Область"}, {"1", "Москва"}}), http.StatusUnprocessableEntity, "/errors/data/missing-columns"},
		{"wrong extension", "students.csv", []byte("a,b"), http.StatusBadRequest, "/errors/validation"},
		{"too large", "students.xlsx", bytes.Repeat([]byte("x"), 65<<10), http.StatusRequestEntityTooLarge, "/errors/payload-too-large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := upload(t, app, "", tt.fileName, tt.content)
			assert.Equal(t, tt.wantStatus, w.Code)

			var problem map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
			assert.Equal(t, tt.wantType, problem["type"])
			assert.NotEmpty(t, problem["trace_id"])
		})
	}
}

func TestApplication_setupRouter(t *testing.T) {
	app := newTestApplication(t, nil)

	tests := []struct {
		method     string
		path       string
		wantStatus int
	}{
		{http.MethodGet, "/api/health", http.StatusOK},
		{http.MethodGet, "/api/health/live", http.StatusOK},
		{http.MethodGet, "/api/health/ready", http.StatusOK},
		{http.MethodGet, "/api/version", http.StatusOK},
		{http.MethodGet, "/api/reports/stats", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/api/unknown", http.StatusNotFound},
		{http.MethodPut, "/api/reports/upload", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			app.Router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestApplication_RateLimit(t *testing.T) {
	app := newTestApplication(t, func(cfg *config.Config) {
		cfg.Security.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 1}
	})

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestApplication_StartStop(t *testing.T) {
	app := newTestApplication(t, func(cfg *config.Config) {
		cfg.Server.Host = "127.0.0.1"
		cfg.Server.Port = 0
		cfg.Server.ShutdownTimeout = 2 * time.Second
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, app.Start(ctx, cancel))
	require.NoError(t, app.Stop(context.Background()))
}
