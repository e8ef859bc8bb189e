package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	env := map[string]string{
		"CUSTOMIZER_FIRESTORE_PROJECT_ID": "standee-dev",
	}

	cfg, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Firestore.OrdersCollection != defaultOrdersCollection {
		t.Errorf("expected default orders collection, got %s", cfg.Firestore.OrdersCollection)
	}
	if cfg.Firestore.CatalogCollection != defaultCatalogCollection {
		t.Errorf("expected default catalog collection, got %s", cfg.Firestore.CatalogCollection)
	}
	if cfg.Events.ProjectID != "standee-dev" {
		t.Errorf("expected events project to default to firestore project, got %s", cfg.Events.ProjectID)
	}
	if cfg.Events.Topic != defaultSubmissionTopic {
		t.Errorf("expected default topic, got %s", cfg.Events.Topic)
	}
	if cfg.Events.PublishTimeout != defaultPublishTimeout {
		t.Errorf("unexpected publish timeout: %s", cfg.Events.PublishTimeout)
	}
	if cfg.Catalog.Source != "memory" {
		t.Errorf("expected default catalog source memory, got %s", cfg.Catalog.Source)
	}
	if cfg.Support.WhatsAppNumber != defaultSupportNumber {
		t.Errorf("expected default support number, got %s", cfg.Support.WhatsAppNumber)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Development {
		t.Errorf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadWithOverrides(t *testing.T) {
	env := map[string]string{
		"CUSTOMIZER_FIRESTORE_PROJECT_ID":         "standee-prod",
		"CUSTOMIZER_FIRESTORE_EMULATOR_HOST":      "localhost:8787",
		"CUSTOMIZER_FIRESTORE_ORDERS_COLLECTION":  "shop_orders",
		"CUSTOMIZER_FIRESTORE_CATALOG_COLLECTION": "products",
		"CUSTOMIZER_STORAGE_ASSETS_BUCKET":        "standee-assets-prod",
		"CUSTOMIZER_STORAGE_PUBLIC_BASE_URL":      "https://cdn.example.com",
		"CUSTOMIZER_EVENTS_PROJECT_ID":            "standee-events",
		"CUSTOMIZER_EVENTS_TOPIC":                 "submissions-prod",
		"CUSTOMIZER_EVENTS_PUBLISH_TIMEOUT":       "30s",
		"CUSTOMIZER_CATALOG_SOURCE":               "Firestore",
		"CUSTOMIZER_SUPPORT_WHATSAPP":             "+91 90000 00000",
		"CUSTOMIZER_LOG_LEVEL":                    "DEBUG",
		"CUSTOMIZER_LOG_DEVELOPMENT":              "yes",
	}

	cfg, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Firestore.ProjectID != "standee-prod" || cfg.Firestore.EmulatorHost != "localhost:8787" {
		t.Errorf("unexpected firestore config: %+v", cfg.Firestore)
	}
	if cfg.Firestore.OrdersCollection != "shop_orders" || cfg.Firestore.CatalogCollection != "products" {
		t.Errorf("unexpected collections: %+v", cfg.Firestore)
	}
	if cfg.Storage.AssetsBucket != "standee-assets-prod" || cfg.Storage.PublicBaseURL != "https://cdn.example.com" {
		t.Errorf("unexpected storage config: %+v", cfg.Storage)
	}
	if cfg.Events.ProjectID != "standee-events" {
		t.Errorf("expected explicit events project to win, got %s", cfg.Events.ProjectID)
	}
	if cfg.Events.PublishTimeout != 30*time.Second {
		t.Errorf("unexpected publish timeout: %s", cfg.Events.PublishTimeout)
	}
	if cfg.Catalog.Source != "firestore" {
		t.Errorf("expected catalog source lowered to firestore, got %s", cfg.Catalog.Source)
	}
	if cfg.Logging.Level != "debug" || !cfg.Logging.Development {
		t.Errorf("unexpected logging config: %+v", cfg.Logging)
	}
}

func TestLoadReadsDotEnvWithLowerPrecedence(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	contents := "CUSTOMIZER_FIRESTORE_PROJECT_ID=from-dotenv\n" +
		"CUSTOMIZER_EVENTS_TOPIC=\"dotenv-topic\"\n" +
		"# comment line\n" +
		"export CUSTOMIZER_SUPPORT_WHATSAPP='+91 12345 67890'\n"
	if err := os.WriteFile(envFile, []byte(contents), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	env := map[string]string{
		"CUSTOMIZER_FIRESTORE_PROJECT_ID": "from-map",
	}

	cfg, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(envFile))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Firestore.ProjectID != "from-map" {
		t.Errorf("expected env map to override dotenv, got %s", cfg.Firestore.ProjectID)
	}
	if cfg.Events.Topic != "dotenv-topic" {
		t.Errorf("expected quoted dotenv value, got %s", cfg.Events.Topic)
	}
	if cfg.Support.WhatsAppNumber != "+91 12345 67890" {
		t.Errorf("expected exported dotenv value, got %s", cfg.Support.WhatsAppNumber)
	}
}

func TestLoadValidationErrors(t *testing.T) {
	env := map[string]string{
		"CUSTOMIZER_CATALOG_SOURCE": "spreadsheet",
	}

	_, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err == nil {
		t.Fatal("expected validation error")
	}

	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	fields := validation.Fields()
	want := map[string]bool{"Firestore.ProjectID": false, "Catalog.Source": false}
	for _, field := range fields {
		if _, ok := want[field]; ok {
			want[field] = true
		}
	}
	for field, seen := range want {
		if !seen {
			t.Errorf("expected %s to be reported, got %v", field, fields)
		}
	}
}

func TestLoadMissingCatalogCollection(t *testing.T) {
	env := map[string]string{
		"CUSTOMIZER_FIRESTORE_PROJECT_ID":         "standee-dev",
		"CUSTOMIZER_CATALOG_SOURCE":               "firestore",
		"CUSTOMIZER_FIRESTORE_CATALOG_COLLECTION": "",
	}

	cfg, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	// Empty override falls back to the default collection name.
	if cfg.Firestore.CatalogCollection != defaultCatalogCollection {
		t.Errorf("expected default catalog collection, got %s", cfg.Firestore.CatalogCollection)
	}
}
