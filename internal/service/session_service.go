package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable/internal/dto"
	"github.com/noah-isme/sma-timetable/internal/models"
	appErrors "github.com/noah-isme/sma-timetable/pkg/errors"
)

// SessionRepository abstracts persistence for per-session entry lists.
type SessionRepository interface {
	Get(ctx context.Context, sessionID string) ([]models.Entry, error)
	Save(ctx context.Context, sessionID string, entries []models.Entry, ttl time.Duration) error
	Delete(ctx context.Context, sessionID string) error
}

// SessionService owns the ordered teacher/subject list of each session.
type SessionService struct {
	repo      SessionRepository
	metrics   *MetricsService
	ttl       time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSessionService constructs a session service.
func NewSessionService(repo SessionRepository, metrics *MetricsService, ttl time.Duration, validate *validator.Validate, logger *zap.Logger) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{repo: repo, metrics: metrics, ttl: ttl, validator: validate, logger: logger}
}

// List returns the session's entries in insertion order. An unknown session has no entries.
func (s *SessionService) List(ctx context.Context, sessionID string) ([]models.Entry, error) {
	start := time.Now()
	entries, err := s.repo.Get(ctx, sessionID)
	miss := errors.Is(err, appErrors.ErrSessionMiss)
	s.metrics.ObserveSessionOp("get", miss, time.Since(start))
	if miss {
		return []models.Entry{}, nil
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if entries == nil {
		entries = []models.Entry{}
	}
	return entries, nil
}

// AddOrUpdate replaces the entry at EditIndex when it is a valid index and appends otherwise.
// Input with an empty teacher or subject leaves the list unchanged and returns ErrValidation.
func (s *SessionService) AddOrUpdate(ctx context.Context, sessionID string, in dto.EntryInput) ([]models.Entry, error) {
	entries, err := s.List(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(in); err != nil {
		return entries, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "teacher and subject are required")
	}

	entry := models.Entry{Teacher: in.Teacher, Subject: in.Subject}
	if in.EditIndex >= 0 && in.EditIndex < len(entries) {
		entries[in.EditIndex] = entry
	} else {
		entries = append(entries, entry)
	}

	if err := s.save(ctx, sessionID, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Delete removes the entry at index. Out of range indexes are ignored.
func (s *SessionService) Delete(ctx context.Context, sessionID string, index int) ([]models.Entry, error) {
	entries, err := s.List(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(entries) {
		return entries, nil
	}

	entries = append(entries[:index], entries[index+1:]...)
	if err := s.save(ctx, sessionID, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Clear empties the session's list.
func (s *SessionService) Clear(ctx context.Context, sessionID string) error {
	start := time.Now()
	err := s.repo.Delete(ctx, sessionID)
	s.metrics.ObserveSessionOp("delete", false, time.Since(start))
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear session")
	}
	return nil
}

func (s *SessionService) save(ctx context.Context, sessionID string, entries []models.Entry) error {
	start := time.Now()
	err := s.repo.Save(ctx, sessionID, entries, s.ttl)
	s.metrics.ObserveSessionOp("save", false, time.Since(start))
	if err != nil {
		s.logger.Warn("session save failed", zap.String("session_id", sessionID), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save session")
	}
	return nil
}
