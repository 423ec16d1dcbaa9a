package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"coursereport/internal/dataprocessing"
	apierrors "coursereport/internal/errors"
	"coursereport/internal/middleware"
	"coursereport/internal/services"
	"coursereport/internal/validation"
	"coursereport/pkg/contracts/domain"
)

// multipartOverhead is added to the upload limit so the form envelope
// does not count against the workbook itself.
const multipartOverhead = 1 << 20

// AnalyzeRequest is the body of POST /analyze
type AnalyzeRequest struct {
	CourseID string `json:"course_id" validate:"max=128,courseid"`
}

// ReportHandler handles report HTTP requests with RFC 7807 compliance
type ReportHandler struct {
	service        ReportServiceInterface
	files          *validation.FileValidator
	validator      *middleware.ValidationMiddleware
	query          *middleware.QueryParamValidator
	maxUploadBytes int64
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
}

// NewReportHandler creates a new report handler
func NewReportHandler(service ReportServiceInterface, maxUploadBytes int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportHandler {
	return &ReportHandler{
		service:        service,
		files:          validation.NewFileValidator(logger),
		validator:      middleware.NewValidationMiddleware(logger, errorHandler, 64<<10),
		query:          middleware.NewQueryParamValidator(logger, errorHandler),
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With(slog.String("component", "report_handler")),
		errorHandler:   errorHandler,
	}
}

// Routes returns the report routes
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/upload", h.Upload)
	r.With(h.validator.RequireContentType("application/json"), h.validator.ValidateRequest).
		Post("/analyze", h.Analyze)
	r.Get("/export", h.Export)
	r.Delete("/session", h.DeleteSession)
	r.Get("/stats", h.Stats)

	return r
}

// Upload handles POST /api/reports/upload
func (h *ReportHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.ErrMissingFile)
		return
	}
	defer file.Close()

	if err := h.files.ValidateUpload(header.Filename, header.Size, h.maxUploadBytes); err != nil {
		h.errorHandler.HandleError(w, r, uploadError(err, h.maxUploadBytes))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	info, err := h.service.Upload(r.Context(), r.Header.Get(middleware.SessionHeader), filepath.Base(header.Filename), data)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set(middleware.SessionHeader, info.SessionID)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   info,
	})
}

// Analyze handles POST /api/reports/analyze
func (h *ReportHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	report, err := h.service.Analyze(r.Context(), r.Header.Get(middleware.SessionHeader), req.CourseID)
	if errors.Is(err, dataprocessing.ErrEmptyResult) {
		render.JSON(w, r, map[string]interface{}{
			"status":    "empty",
			"course_id": strings.TrimSpace(req.CourseID),
			"message":   "No rows match the requested course",
		})
		return
	}
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   report,
	})
}

// Export handles GET /api/reports/export
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	courseID, ok := h.query.ValidateMaxLength(w, r, "course_id", services.MaxCourseIDLength)
	if !ok {
		return
	}

	value, ok := h.query.ValidateEnum(w, r, "format",
		[]string{string(domain.ReportFormatXLSX), string(domain.ReportFormatCSV)},
		string(domain.ReportFormatXLSX))
	if !ok {
		return
	}
	format, _ := domain.ParseReportFormat(value)

	artifact, err := h.service.Export(r.Context(), r.Header.Get(middleware.SessionHeader), courseID, format)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": artifact.FileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(artifact.Data); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to write export",
			slog.String("file", artifact.FileName),
			slog.String("error", err.Error()))
	}
}

// DeleteSession handles DELETE /api/reports/session
func (h *ReportHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get(middleware.SessionHeader)
	if sessionID == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("session", fmt.Sprintf("%s header is required", middleware.SessionHeader)))
		return
	}

	if err := h.service.Reset(r.Context(), sessionID); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":  "success",
		"message": "Session cleared",
	})
}

// Stats handles GET /api/reports/stats
func (h *ReportHandler) Stats(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   h.service.Stats(),
	})
}

func uploadError(err error, limit int64) error {
	if errors.Is(err, validation.ErrFileTooLarge) {
		return apierrors.PayloadTooLarge(err.Error(), limit)
	}
	return apierrors.ErrValidation("file", err.Error())
}
