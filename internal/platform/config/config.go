package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/standee-works/customizer/internal/platform/textutil"
)

const (
	defaultEnvFile           = ".env"
	defaultOrdersCollection  = "orders"
	defaultCatalogCollection = "catalog"
	defaultSubmissionTopic   = "customization-submissions"
	defaultPublishTimeout    = 10 * time.Second
	defaultSupportNumber     = "+91 93554 76409"
	defaultLogLevel          = "info"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Firestore FirestoreConfig
	Storage   StorageConfig
	Events    EventsConfig
	Catalog   CatalogConfig
	Support   SupportConfig
	Logging   LoggingConfig
}

// FirestoreConfig stores database parameters.
type FirestoreConfig struct {
	ProjectID         string
	EmulatorHost      string
	OrdersCollection  string
	CatalogCollection string
}

// StorageConfig names the bucket that receives uploaded logo and QR images.
type StorageConfig struct {
	AssetsBucket string
	// PublicBaseURL overrides the default storage.googleapis.com URL prefix
	// when assets are served through a CDN.
	PublicBaseURL string
}

// EventsConfig configures submission event publishing.
type EventsConfig struct {
	ProjectID      string
	Topic          string
	PublishTimeout time.Duration
}

// CatalogConfig selects where product templates are read from.
type CatalogConfig struct {
	// Source is "firestore" or "memory". The memory catalog ships the
	// built-in product set and needs no backing service.
	Source string
}

// SupportConfig carries the contact surfaced when a product needs manual handling.
type SupportConfig struct {
	WhatsAppNumber string
}

// LoggingConfig tunes the structured logger.
type LoggingConfig struct {
	Level       string
	Development bool
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = textutil.NormalizeStringMap(values)
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the application configuration by combining defaults, .env
// overrides, and environment variables.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	cfg := Config{
		Firestore: FirestoreConfig{
			ProjectID:         stringWithDefault(lookup, "CUSTOMIZER_FIRESTORE_PROJECT_ID", ""),
			EmulatorHost:      stringWithDefault(lookup, "CUSTOMIZER_FIRESTORE_EMULATOR_HOST", ""),
			OrdersCollection:  stringWithDefault(lookup, "CUSTOMIZER_FIRESTORE_ORDERS_COLLECTION", defaultOrdersCollection),
			CatalogCollection: stringWithDefault(lookup, "CUSTOMIZER_FIRESTORE_CATALOG_COLLECTION", defaultCatalogCollection),
		},
		Storage: StorageConfig{
			AssetsBucket:  stringWithDefault(lookup, "CUSTOMIZER_STORAGE_ASSETS_BUCKET", ""),
			PublicBaseURL: stringWithDefault(lookup, "CUSTOMIZER_STORAGE_PUBLIC_BASE_URL", ""),
		},
		Events: EventsConfig{
			ProjectID:      stringWithDefault(lookup, "CUSTOMIZER_EVENTS_PROJECT_ID", ""),
			Topic:          stringWithDefault(lookup, "CUSTOMIZER_EVENTS_TOPIC", defaultSubmissionTopic),
			PublishTimeout: durationWithDefault(lookup, "CUSTOMIZER_EVENTS_PUBLISH_TIMEOUT", defaultPublishTimeout),
		},
		Catalog: CatalogConfig{
			Source: strings.ToLower(stringWithDefault(lookup, "CUSTOMIZER_CATALOG_SOURCE", "memory")),
		},
		Support: SupportConfig{
			WhatsAppNumber: stringWithDefault(lookup, "CUSTOMIZER_SUPPORT_WHATSAPP", defaultSupportNumber),
		},
		Logging: LoggingConfig{
			Level:       strings.ToLower(stringWithDefault(lookup, "CUSTOMIZER_LOG_LEVEL", defaultLogLevel)),
			Development: boolWithDefault(lookup, "CUSTOMIZER_LOG_DEVELOPMENT", false),
		},
	}

	// The events project defaults to the Firestore project when unspecified.
	if cfg.Events.ProjectID == "" {
		cfg.Events.ProjectID = cfg.Firestore.ProjectID
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	var missing []string

	if cfg.Firestore.ProjectID == "" {
		missing = append(missing, "Firestore.ProjectID")
	}
	if cfg.Firestore.OrdersCollection == "" {
		missing = append(missing, "Firestore.OrdersCollection")
	}
	switch cfg.Catalog.Source {
	case "memory":
	case "firestore":
		if cfg.Firestore.CatalogCollection == "" {
			missing = append(missing, "Firestore.CatalogCollection")
		}
	default:
		missing = append(missing, "Catalog.Source")
	}
	if cfg.Events.PublishTimeout <= 0 {
		missing = append(missing, "Events.PublishTimeout")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}
		value = strings.Trim(value, "\"'")
		values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}
