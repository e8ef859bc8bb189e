package services

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/standee-works/customizer/internal/domain"
)

type stubHealthRepo struct {
	checkFn func(context.Context) (domain.HealthReport, error)
}

func (s *stubHealthRepo) CheckReadiness(ctx context.Context) (domain.HealthReport, error) {
	if s.checkFn != nil {
		return s.checkFn(ctx)
	}
	return domain.HealthReport{}, errors.New("not implemented")
}

func TestSystemServiceRequiresHealthRepository(t *testing.T) {
	if _, err := NewSystemService(SystemServiceDeps{}); err == nil {
		t.Fatal("expected constructor error without health repository")
	}
}

func TestSystemServiceHealthReport(t *testing.T) {
	report := domain.HealthReport{
		Status: domain.HealthStatusDegraded,
		Checks: map[string]domain.HealthCheck{
			"firestore": {Status: domain.HealthStatusOK},
			"pubsub":    {Status: domain.HealthStatusDegraded, Detail: "topic missing"},
		},
		GeneratedAt: time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC),
	}
	svc, err := NewSystemService(SystemServiceDeps{
		Health: &stubHealthRepo{
			checkFn: func(context.Context) (domain.HealthReport, error) {
				return report, nil
			},
		},
	})
	if err != nil {
		t.Fatalf("new system service: %v", err)
	}

	got, err := svc.HealthReport(context.Background())
	if err != nil {
		t.Fatalf("health report: %v", err)
	}
	if got.Status != domain.HealthStatusDegraded {
		t.Fatalf("unexpected status %s", got.Status)
	}
	if got.Checks["pubsub"].Detail != "topic missing" {
		t.Fatalf("unexpected checks %+v", got.Checks)
	}
}
