package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable/internal/dto"
	"github.com/noah-isme/sma-timetable/internal/middleware"
	"github.com/noah-isme/sma-timetable/internal/models"
	"github.com/noah-isme/sma-timetable/internal/service"
	appErrors "github.com/noah-isme/sma-timetable/pkg/errors"
	"github.com/noah-isme/sma-timetable/pkg/response"
)

type entryStore interface {
	List(ctx context.Context, sessionID string) ([]models.Entry, error)
	AddOrUpdate(ctx context.Context, sessionID string, in dto.EntryInput) ([]models.Entry, error)
	Delete(ctx context.Context, sessionID string, index int) ([]models.Entry, error)
	Clear(ctx context.Context, sessionID string) error
}

type timetableGenerator interface {
	Generate(ctx context.Context, entries []models.Entry) (*models.Timetable, error)
	Config() service.TimetableConfig
}

type timetableExporter interface {
	TimetablePDF(tt *models.Timetable) ([]byte, error)
}

// TimetableHandler serves the entry form, list mutations and PDF generation.
type TimetableHandler struct {
	sessions  entryStore
	generator timetableGenerator
	exporter  timetableExporter
	logger    *zap.Logger
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(sessions *service.SessionService, generator *service.TimetableService, exporter *service.ExportService, logger *zap.Logger) *TimetableHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableHandler{sessions: sessions, generator: generator, exporter: exporter, logger: logger}
}

// Index renders the form and the current entry list. ?edit=<i> pre-fills the form with entry i.
func (h *TimetableHandler) Index(c *gin.Context) {
	entries, err := h.sessions.List(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	form := dto.EntryForm{}
	editing := false
	if idx := dto.ParseIndex(c.Query("edit")); idx >= 0 && idx < len(entries) {
		form = dto.EntryForm{Teacher: entries[idx].Teacher, Subject: entries[idx].Subject, EditIndex: c.Query("edit")}
		editing = true
	}
	h.renderIndex(c, entries, form, editing)
}

// Submit adds or updates an entry from the form, then re-renders the page.
// Submissions missing a teacher or subject are dropped without an error.
func (h *TimetableHandler) Submit(c *gin.Context) {
	var form dto.EntryForm
	if err := c.ShouldBind(&form); err != nil {
		h.logger.Debug("entry form bind failed", zap.Error(err))
	}

	entries, err := h.sessions.AddOrUpdate(c.Request.Context(), middleware.SessionID(c), form.Input())
	if err != nil {
		if !errors.Is(err, appErrors.ErrValidation) {
			response.Error(c, err)
			return
		}
		h.logger.Debug("entry submission dropped", zap.String("session_id", middleware.SessionID(c)), zap.Error(err))
	}
	h.renderIndex(c, entries, dto.EntryForm{}, false)
}

// Delete removes the entry at :index, ignoring invalid indexes, and redirects to the index page.
func (h *TimetableHandler) Delete(c *gin.Context) {
	if _, err := h.sessions.Delete(c.Request.Context(), middleware.SessionID(c), dto.ParseIndex(c.Param("index"))); err != nil {
		response.Error(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// Generate builds the timetable, streams it as timetable.pdf and clears the session's list.
// An empty list yields a plain-text message instead of a PDF.
func (h *TimetableHandler) Generate(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := middleware.SessionID(c)

	entries, err := h.sessions.List(ctx, sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	tt, err := h.generator.Generate(ctx, entries)
	if err != nil {
		if errors.Is(err, appErrors.ErrNoEntries) {
			c.String(http.StatusOK, appErrors.ErrNoEntries.Message)
			return
		}
		response.Error(c, err)
		return
	}
	payload, err := h.exporter.TimetablePDF(tt)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.sessions.Clear(ctx, sessionID); err != nil {
		h.logger.Warn("session clear after generate failed", zap.String("session_id", sessionID), zap.Error(err))
	}

	response.Attachment(c, service.TimetableFilename, service.TimetableContentType, payload)
}

// ListEntries godoc
// @Summary List the session's teacher/subject entries
// @Tags Entries
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/v1/entries [get]
func (h *TimetableHandler) ListEntries(c *gin.Context) {
	entries, err := h.sessions.List(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, map[string]interface{}{"count": len(entries)})
}

// SaveEntry godoc
// @Summary Add an entry, or replace the one at editIndex
// @Tags Entries
// @Accept json
// @Produce json
// @Param payload body dto.EntryRequest true "Entry payload"
// @Success 200 {object} response.Envelope
// @Router /api/v1/entries [post]
func (h *TimetableHandler) SaveEntry(c *gin.Context) {
	var req dto.EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid entry payload"))
		return
	}
	entries, err := h.sessions.AddOrUpdate(c.Request.Context(), middleware.SessionID(c), req.Input())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, map[string]interface{}{"count": len(entries)})
}

// DeleteEntry godoc
// @Summary Delete the entry at index; out of range indexes are ignored
// @Tags Entries
// @Produce json
// @Param index path int true "Entry index"
// @Success 200 {object} response.Envelope
// @Router /api/v1/entries/{index} [delete]
func (h *TimetableHandler) DeleteEntry(c *gin.Context) {
	entries, err := h.sessions.Delete(c.Request.Context(), middleware.SessionID(c), dto.ParseIndex(c.Param("index")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, map[string]interface{}{"count": len(entries)})
}

// Preview godoc
// @Summary Generate a timetable as JSON without clearing the session
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /api/v1/timetable/preview [get]
func (h *TimetableHandler) Preview(c *gin.Context) {
	ctx := c.Request.Context()
	entries, err := h.sessions.List(ctx, middleware.SessionID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	tt, err := h.generator.Generate(ctx, entries)
	if err != nil {
		response.Error(c, err)
		return
	}
	cfg := h.generator.Config()
	response.JSON(c, http.StatusOK, models.TimetableSummary{
		Timetable:  tt,
		TotalSlots: len(tt.Days) * tt.PeriodsPerDay,
		FreeSlots:  tt.FreeSlots(),
		Strict:     cfg.StrictConflicts,
	})
}

func (h *TimetableHandler) renderIndex(c *gin.Context, entries []models.Entry, form dto.EntryForm, editing bool) {
	views := make([]dto.EntryView, len(entries))
	for i, e := range entries {
		views[i] = dto.EntryView{Index: i, Teacher: e.Teacher, Subject: e.Subject}
	}
	cfg := h.generator.Config()
	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, indexTemplate, dto.IndexPage{
		Entries:       views,
		Days:          cfg.Days,
		PeriodsPerDay: cfg.PeriodsPerDay,
		Form:          form,
		Editing:       editing,
	})
}
