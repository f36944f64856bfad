package summary

import (
	"context"

	"opsdash/models"

	"go.uber.org/zap"
)

// Fetcher retrieves a summary, enforcing the lifecycle table.
type Fetcher interface {
	FetchSummary(ctx context.Context, id models.MeetingID) (*models.MeetingSummary, error)
}

// Service drives a View through a fetch.
type Service struct {
	fetcher Fetcher
	logger  *zap.Logger
}

func NewService(fetcher Fetcher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{fetcher: fetcher, logger: logger}
}

// Start puts the view in loading state for id and returns the token.
func (s *Service) Start(v *View, id models.MeetingID) uint64 {
	return v.Begin(id)
}

// Fetch performs the network call for a started view without touching it,
// so the caller can apply the result to a freshly loaded copy of the view.
func (s *Service) Fetch(ctx context.Context, id models.MeetingID) (*models.MeetingSummary, error) {
	summary, err := s.fetcher.FetchSummary(ctx, id)
	if err != nil {
		s.logger.Warn("summary fetch failed", zap.String("meetingID", id.String()), zap.Error(err))
		return nil, err
	}
	return summary, nil
}

// Apply stores the outcome of Fetch on v if the token is still current.
func (s *Service) Apply(v *View, token uint64, summary *models.MeetingSummary, fetchErr error, failMsg string) bool {
	if fetchErr != nil {
		return v.Fail(token, failMsg)
	}
	applied := v.Resolve(token, summary)
	if !applied {
		s.logger.Debug("discarding stale summary", zap.Uint64("token", token), zap.String("meetingID", v.MeetingID.String()))
	}
	return applied
}

// Open runs Start, Fetch and Apply against a single in-memory view.
func (s *Service) Open(ctx context.Context, v *View, id models.MeetingID, failMsg func(error) string) error {
	token := s.Start(v, id)
	summary, err := s.Fetch(ctx, id)
	msg := ""
	if err != nil && failMsg != nil {
		msg = failMsg(err)
	}
	s.Apply(v, token, summary, err, msg)
	return err
}
