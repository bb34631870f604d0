package service

import (
	"context"
	"errors"
	"github.com/ce-fello/synergy-crm/src/internal/api/apiErrors"
	"github.com/ce-fello/synergy-crm/src/internal/model"
	"github.com/ce-fello/synergy-crm/src/internal/query"
	"github.com/ce-fello/synergy-crm/src/internal/store"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Service owns every rule spanning more than one collection. Operations that
// touch several collections hold mu, so two membership changes never
// interleave; each collection write is still persisted on its own.
type Service struct {
	repo store.Repository
	log  *zap.Logger
	mu   sync.Mutex
}

func NewService(repos store.Repository, logger *zap.Logger) *Service {
	return &Service{
		repo: repos,
		log:  logger,
	}
}

// fail converts store errors into API errors. what names the missing record
// in NOT_FOUND messages.
func (s *Service) fail(err error, what string) error {
	if err == nil {
		return nil
	}
	var apiErr apiErrors.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, model.ErrNotFound):
		return apiErrors.APIError{Code: apiErrors.NotFound, Message: what + " not found"}
	case errors.Is(err, model.ErrConflict):
		return apiErrors.APIError{Code: apiErrors.Conflict, Message: err.Error()}
	case errors.Is(err, model.ErrValidation), errors.Is(err, query.ErrUnknownField):
		return apiErrors.APIError{Code: apiErrors.ValidationFailed, Message: err.Error()}
	case errors.Is(err, model.ErrPersist):
		s.log.Error("changes kept in memory but not persisted", zap.String("entity", what), zap.Error(err))
		return apiErrors.APIError{Code: apiErrors.PersistFailed, Message: what + " changed but could not be saved"}
	}
	return err
}

// keepPersist records a persistence failure in acc and lets the caller carry
// on, since the in-memory change already happened. Any other error is returned.
func keepPersist(acc *error, err error) error {
	if err != nil && errors.Is(err, model.ErrPersist) {
		if *acc == nil {
			*acc = err
		}
		return nil
	}
	return err
}

func invalid(msg string) error {
	return apiErrors.APIError{Code: apiErrors.ValidationFailed, Message: msg}
}

func conflict(msg string) error {
	return apiErrors.APIError{Code: apiErrors.Conflict, Message: msg}
}

func notFound(msg string) error {
	return apiErrors.APIError{Code: apiErrors.NotFound, Message: msg}
}

// Login is a lookup by email; there is no credential check.
func (s *Service) Login(ctx context.Context, email string) (model.User, error) {
	if strings.TrimSpace(email) == "" {
		return model.User{}, invalid("email required")
	}
	u, ok, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		return model.User{}, s.fail(err, "user")
	}
	if !ok {
		return model.User{}, notFound("no active user with that email")
	}
	s.log.Info("Login: success", zap.String("user", u.ID), zap.String("role", string(u.Role)))
	return u, nil
}

func (s *Service) GetStats(ctx context.Context) (store.Stats, error) {
	stats, err := s.repo.GetStats(ctx)
	if err != nil {
		return store.Stats{}, s.fail(err, "stats")
	}
	return stats, nil
}

// Reset wipes durable storage; every collection reseeds on next access.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.Reset(ctx); err != nil {
		s.log.Error("Reset: failed", zap.Error(err))
		return s.fail(err, "storage")
	}
	return nil
}
