// Package di assembles runtime dependencies from configuration.
package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub"
	gcs "cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/standee-works/customizer/internal/platform/config"
	pfirestore "github.com/standee-works/customizer/internal/platform/firestore"
	"github.com/standee-works/customizer/internal/platform/jobs"
	"github.com/standee-works/customizer/internal/platform/observability"
	"github.com/standee-works/customizer/internal/platform/storage"
	"github.com/standee-works/customizer/internal/repositories"
	fsrepo "github.com/standee-works/customizer/internal/repositories/firestore"
	"github.com/standee-works/customizer/internal/repositories/memory"
	"github.com/standee-works/customizer/internal/services"
)

// Services bundles the service-layer contracts the entry points rely upon.
type Services struct {
	Catalog  services.CatalogService
	Sessions services.SessionService
	System   services.SystemService
}

// Container wires repositories, services, and backing clients for runtime use.
type Container struct {
	Config       config.Config
	Logger       *zap.Logger
	Repositories repositories.Registry
	Services     Services

	provider      *pfirestore.Provider
	storageClient *gcs.Client
	pubsubClient  *pubsub.Client
}

type registry struct {
	provider *pfirestore.Provider
	catalog  repositories.CatalogRepository
	orders   repositories.OrderRepository
	health   repositories.HealthRepository
}

func (r *registry) Close(ctx context.Context) error {
	if r.provider == nil {
		return nil
	}
	return r.provider.Close(ctx)
}

func (r *registry) Catalog() repositories.CatalogRepository { return r.catalog }
func (r *registry) Orders() repositories.OrderRepository    { return r.orders }
func (r *registry) Health() repositories.HealthRepository   { return r.health }

// NewContainer constructs the runtime dependencies from configuration.
func NewContainer(ctx context.Context, cfg config.Config) (*Container, error) {
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	if cfg.Storage.AssetsBucket == "" {
		return nil, errors.New("di: storage assets bucket is required")
	}

	provider := pfirestore.NewProvider(cfg.Firestore)

	ordersRepo, err := fsrepo.NewOrderRepository(provider, cfg.Firestore.OrdersCollection)
	if err != nil {
		return nil, fmt.Errorf("build order repository: %w", err)
	}

	var catalogRepo repositories.CatalogRepository
	switch cfg.Catalog.Source {
	case "firestore":
		catalogRepo, err = fsrepo.NewCatalogRepository(provider, cfg.Firestore.CatalogCollection)
		if err != nil {
			return nil, fmt.Errorf("build catalog repository: %w", err)
		}
	default:
		catalogRepo = memory.NewCatalogRepository()
	}

	storageClient, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("build storage client: %w", err)
	}

	uploaderOpts := []storage.UploaderOption{}
	if cfg.Storage.PublicBaseURL != "" {
		uploaderOpts = append(uploaderOpts, storage.WithPublicBaseURL(cfg.Storage.PublicBaseURL))
	}
	uploader, err := storage.NewUploader(storageClient, cfg.Storage.AssetsBucket, uploaderOpts...)
	if err != nil {
		return nil, fmt.Errorf("build uploader: %w", err)
	}

	var (
		pubsubClient *pubsub.Client
		publisher    services.SubmissionPublisher
		topic        *pubsub.Topic
	)
	if cfg.Events.ProjectID != "" && cfg.Events.Topic != "" {
		pubsubClient, err = pubsub.NewClient(ctx, cfg.Events.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("build pubsub client: %w", err)
		}
		topic = pubsubClient.Topic(cfg.Events.Topic)
		publisher, err = jobs.NewPubSubSubmissionPublisher(topic)
		if err != nil {
			return nil, fmt.Errorf("build submission publisher: %w", err)
		}
	}

	healthRepo, err := repositories.NewDependencyHealthRepository(
		dependencyChecks(provider, storageClient, cfg.Storage.AssetsBucket, topic))
	if err != nil {
		return nil, fmt.Errorf("build health repository: %w", err)
	}

	reg := &registry{
		provider: provider,
		catalog:  catalogRepo,
		orders:   ordersRepo,
		health:   healthRepo,
	}

	catalogSvc, err := services.NewCatalogService(services.CatalogServiceDeps{Repository: catalogRepo})
	if err != nil {
		return nil, fmt.Errorf("build catalog service: %w", err)
	}
	sessionSvc, err := services.NewSessionService(services.SessionServiceDeps{
		Orders:    ordersRepo,
		Catalog:   catalogSvc,
		Assets:    uploader,
		Publisher: publisher,
		Logger:    logger,
		Clock:     time.Now,
	})
	if err != nil {
		return nil, fmt.Errorf("build session service: %w", err)
	}
	systemSvc, err := services.NewSystemService(services.SystemServiceDeps{Health: healthRepo})
	if err != nil {
		return nil, fmt.Errorf("build system service: %w", err)
	}

	return &Container{
		Config:       cfg,
		Logger:       logger,
		Repositories: reg,
		Services: Services{
			Catalog:  catalogSvc,
			Sessions: sessionSvc,
			System:   systemSvc,
		},
		provider:      provider,
		storageClient: storageClient,
		pubsubClient:  pubsubClient,
	}, nil
}

func dependencyChecks(provider *pfirestore.Provider, storageClient *gcs.Client, bucket string, topic *pubsub.Topic) []repositories.DependencyCheck {
	checks := []repositories.DependencyCheck{
		{
			Name: "firestore",
			Check: func(ctx context.Context) error {
				_, err := provider.Client(ctx)
				return err
			},
		},
		{
			Name: "storage",
			Check: func(ctx context.Context) error {
				_, err := storageClient.Bucket(bucket).Attrs(ctx)
				return err
			},
		},
	}
	if topic != nil {
		checks = append(checks, repositories.DependencyCheck{
			Name: "pubsub",
			Check: func(ctx context.Context) error {
				ok, err := topic.Exists(ctx)
				if err != nil {
					return err
				}
				if !ok {
					return errors.New("topic does not exist")
				}
				return nil
			},
		})
	}
	return checks
}

// Close releases backing clients. The container cannot be reused afterwards.
func (c *Container) Close(ctx context.Context) error {
	if c == nil {
		return nil
	}

	var firstErr error
	if c.pubsubClient != nil {
		if err := c.pubsubClient.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.storageClient != nil {
		if err := c.storageClient.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.Repositories != nil {
		if err := c.Repositories.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
	return firstErr
}
