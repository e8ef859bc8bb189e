package services

import (
	"context"
	"errors"

	"github.com/standee-works/customizer/internal/repositories"
)

// SystemServiceDeps bundles collaborators required to construct a system service instance.
type SystemServiceDeps struct {
	Health repositories.HealthRepository
}

type systemService struct {
	health repositories.HealthRepository
}

// NewSystemService constructs a service exposing operational checks.
func NewSystemService(deps SystemServiceDeps) (SystemService, error) {
	if deps.Health == nil {
		return nil, errors.New("system service: health repository is required")
	}
	return &systemService{health: deps.Health}, nil
}

func (s *systemService) HealthReport(ctx context.Context) (HealthReport, error) {
	return s.health.CheckReadiness(ctx)
}
