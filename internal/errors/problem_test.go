package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProblemDetails_MarshalJSON(t *testing.T) {
	problem := NewProblemDetails(http.StatusConflict, TypeDataNoDataset, "No Dataset", "upload first", "/api/reports/analyze").
		WithExtension("trace_id", "abc")

	data, err := json.Marshal(problem)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, map[string]interface{}{
		"type":     TypeDataNoDataset,
		"title":    "No Dataset",
		"status":   float64(http.StatusConflict),
		"detail":   "upload first",
		"instance": "/api/reports/analyze",
		"trace_id": "abc",
	}, body)
}

func TestProblemDetails_StandardFieldsWin(t *testing.T) {
	problem := NewProblemDetails(http.StatusGone, TypeDataExpired, "Dataset Expired", "", "").
		WithExtension("status", 200)

	data, err := json.Marshal(problem)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, float64(http.StatusGone), body["status"])
	assert.NotContains(t, body, "detail")
	assert.NotContains(t, body, "instance")
}

func TestProblemDetails_NilExtensions(t *testing.T) {
	problem := &ProblemDetails{Type: TypeInternal, Status: http.StatusInternalServerError}
	problem.WithExtension("k", "v")
	assert.Equal(t, "v", problem.Extensions["k"])
}

func TestProblemDetails_Render(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	require.NoError(t, render.Render(w, r, NewProblemDetails(http.StatusUnprocessableEntity, TypeDataUnreadable, "Workbook Could Not Be Read", "file is empty", "/")))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), TypeDataUnreadable)
}
