// internal/posting/service.go
package posting

import (
	"context"

	"tradeboard/internal/common/logger"
	"tradeboard/internal/common/metrics"
	"tradeboard/internal/models"
	"tradeboard/internal/notify"
	"tradeboard/internal/store"
)

// Service owns the posting creation flow: normalize, persist, notify.
type Service struct {
	store    store.Store
	norm     *Normalizer
	notifier notify.Sender // nil when email notifications are disabled
	logger   logger.Logger
}

func NewService(st store.Store, norm *Normalizer, notifier notify.Sender, log logger.Logger) *Service {
	return &Service{
		store:    st,
		norm:     norm,
		notifier: notifier,
		logger:   log.WithFields(map[string]interface{}{"component": "posting"}),
	}
}

// Create normalizes and persists a submission, returning the store-assigned
// identity of the new posting.
func (s *Service) Create(ctx context.Context, sub models.JobSubmission) (string, error) {
	p, err := s.norm.Normalize(sub)
	if err != nil {
		return "", err
	}

	id, err := s.store.Insert(ctx, p)
	if err != nil {
		return "", err
	}

	metrics.PostingsCreated.Inc()
	s.logger.Info("posting created", map[string]interface{}{
		"id":   id,
		"city": p.City,
	})

	if s.notifier != nil && sub.Email != "" {
		if err := s.notifier.SendPostingConfirmation(ctx, sub.Email, sub.Title); err != nil {
			s.logger.Warn("confirmation email failed", map[string]interface{}{
				"id":    id,
				"error": err.Error(),
			})
		}
	}

	return id, nil
}
