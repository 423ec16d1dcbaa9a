package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "coursereport/internal/errors"
)

type analyzeInput struct {
	CourseID string `json:"course_id" validate:"max=8,courseid"`
	Format   string `json:"format" validate:"omitempty,oneof=xlsx csv"`
}

func TestValidationMiddleware_ValidateStruct(t *testing.T) {
	m := NewValidationMiddleware(discardLogger(), newErrorHandler(), 0)

	tests := []struct {
		name       string
		input      analyzeInput
		wantFields []string
	}{
		{"valid", analyzeInput{CourseID: "52", Format: "csv"}, nil},
		{"empty course is valid", analyzeInput{}, nil},
		{"too long", analyzeInput{CourseID: "123456789"}, []string{"course_id"}},
		{"control characters", analyzeInput{CourseID: "5\n2"}, []string{"course_id"}},
		{"bad format", analyzeInput{Format: "pdf"}, []string{"format"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.ValidateStruct(tt.input)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}

			var apiErr *apierrors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)

			details, ok := apiErr.Details.([]apierrors.ValidationError)
			require.True(t, ok)
			fields := make([]string, 0, len(details))
			for _, d := range details {
				fields = append(fields, d.Field)
				assert.NotEmpty(t, d.Message)
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}

func TestValidationMiddleware_ValidateRequest(t *testing.T) {
	m := NewValidationMiddleware(discardLogger(), newErrorHandler(), 32)
	h := m.ValidateRequest(http.HandlerFunc(okHandler))

	tests := []struct {
		name       string
		method     string
		body       string
		wantStatus int
	}{
		{"valid json", http.MethodPost, `{"course_id":"52"}`, http.StatusOK},
		{"empty body", http.MethodPost, "", http.StatusOK},
		{"invalid json", http.MethodPost, `{"course_id":`, http.StatusBadRequest},
		{"too large", http.MethodPost, `{"course_id":"` + strings.Repeat("1", 64) + `"}`, http.StatusRequestEntityTooLarge},
		{"get skipped", http.MethodGet, "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(tt.method, "/api/reports/analyze", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestValidationMiddleware_RequireContentType(t *testing.T) {
	m := NewValidationMiddleware(discardLogger(), newErrorHandler(), 0)
	h := m.RequireContentType("application/json")(http.HandlerFunc(okHandler))

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
	r.Header.Set("Content-Type", "application/json; charset=utf-8")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("x"))
	r.Header.Set("Content-Type", "text/plain")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	assert.Contains(t, w.Body.String(), apierrors.TypeUnsupportedMedia)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	// no body, no content type
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestQueryParamValidator(t *testing.T) {
	v := NewQueryParamValidator(discardLogger(), newErrorHandler())
	allowed := []string{"xlsx", "csv"}

	w := httptest.NewRecorder()
	value, ok := v.ValidateEnum(w, httptest.NewRequest(http.MethodGet, "/?format=csv", nil), "format", allowed, "xlsx")
	assert.True(t, ok)
	assert.Equal(t, "csv", value)

	value, ok = v.ValidateEnum(w, httptest.NewRequest(http.MethodGet, "/", nil), "format", allowed, "xlsx")
	assert.True(t, ok)
	assert.Equal(t, "xlsx", value)

	w = httptest.NewRecorder()
	_, ok = v.ValidateEnum(w, httptest.NewRequest(http.MethodGet, "/?format=pdf", nil), "format", allowed, "xlsx")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	_, ok = v.ValidateMaxLength(w, httptest.NewRequest(http.MethodGet, "/?course_id=123456", nil), "course_id", 3)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// length is counted in characters, not bytes
	w = httptest.NewRecorder()
	value, ok = v.ValidateMaxLength(w, httptest.NewRequest(http.MethodGet, "/?course_id="+url.QueryEscape("абв"), nil), "course_id", 3)
	assert.True(t, ok)
	assert.Equal(t, "абв", value)
}
