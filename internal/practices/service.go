package practices

import (
	"context"
	"strings"

	"github.com/wolfman30/connectient/pkg/apperrors"
	"github.com/wolfman30/connectient/pkg/logging"
)

// Service is the practice lookup used by the booking page and notifications.
type Service struct {
	repo   Repository
	logos  LogoResolver
	logger *logging.Logger
}

// NewService creates a lookup service. A nil logo resolver falls back to
// StaticLogoResolver.
func NewService(repo Repository, logos LogoResolver, logger *logging.Logger) *Service {
	if repo == nil {
		panic("practices: repository required")
	}
	if logos == nil {
		logos = StaticLogoResolver{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, logos: logos, logger: logger}
}

// ByCode returns the practices published under code.
func (s *Service) ByCode(ctx context.Context, code string) ([]Practice, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	rows, err := s.repo.ListByCode(ctx, code)
	if err != nil {
		s.logger.Error("failed to look up practice", "practice_code", code, "error", err)
		return nil, apperrors.NewLookup("practices.by_code", "failed to find practice", err)
	}
	return s.withLogos(ctx, rows), nil
}

// ByID returns the practice keyed by internal id. A nil id yields no rows.
func (s *Service) ByID(ctx context.Context, id *string) ([]Practice, error) {
	rows, err := s.repo.ListByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to look up practice", "practice_id", id, "error", err)
		return nil, apperrors.NewLookup("practices.by_id", "failed to find practice", err)
	}
	return s.withLogos(ctx, rows), nil
}

// Resolve returns the first practice for code, or a NotFound error.
func (s *Service) Resolve(ctx context.Context, code string) (*Practice, error) {
	rows, err := s.ByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.NewNotFound("practices.resolve", "practice not found")
	}
	return &rows[0], nil
}

// Get returns the practice for id, or a NotFound error.
func (s *Service) Get(ctx context.Context, id string) (*Practice, error) {
	rows, err := s.ByID(ctx, &id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.NewNotFound("practices.get", "practice not found")
	}
	return &rows[0], nil
}

func (s *Service) withLogos(ctx context.Context, rows []Practice) []Practice {
	for i := range rows {
		rows[i].Logo = s.logos.Resolve(ctx, rows[i].Logo)
	}
	return rows
}
