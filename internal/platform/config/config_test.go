package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	env := map[string]string{
		"API_FIREBASE_PROJECT_ID":       "sd-dev",
		"API_STORAGE_MEDIA_BUCKET":      "sellerdesk-media-dev",
		"API_COMMERCE_GRAPHQL_ENDPOINT": "https://commerce.example.com/graphql",
	}

	cfg, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.Firestore.ProjectID != "sd-dev" {
		t.Errorf("expected firestore project to default to firebase project, got %s", cfg.Firestore.ProjectID)
	}
	if cfg.Storage.SignedURLTTL != defaultSignedURLTTL {
		t.Errorf("unexpected default signed url ttl: %s", cfg.Storage.SignedURLTTL)
	}
	if cfg.Commerce.Timeout != defaultCommerceTimeout {
		t.Errorf("unexpected default commerce timeout: %s", cfg.Commerce.Timeout)
	}
	if cfg.Wizard.SessionTTL != defaultSessionTTL {
		t.Errorf("unexpected default wizard session ttl: %s", cfg.Wizard.SessionTTL)
	}
	if cfg.Wizard.MaxProductImages != defaultMaxProductImages {
		t.Errorf("unexpected default max product images: %d", cfg.Wizard.MaxProductImages)
	}
	if cfg.Wizard.MaxPromoImages != defaultMaxPromoImages {
		t.Errorf("unexpected default max promo images: %d", cfg.Wizard.MaxPromoImages)
	}
	if cfg.RateLimits.DefaultPerMinute != 120 {
		t.Errorf("unexpected default rate limit: %d", cfg.RateLimits.DefaultPerMinute)
	}
	if !cfg.Features.EnableMarketing {
		t.Errorf("expected marketing flag enabled by default")
	}
	if cfg.Features.EnableSeedFixtures {
		t.Errorf("expected seed fixtures flag disabled by default")
	}
}

func TestLoadWithOverridesAndSecrets(t *testing.T) {
	env := map[string]string{
		"API_SERVER_PORT":               "9090",
		"API_SERVER_READ_TIMEOUT":       "20s",
		"API_SERVER_WRITE_TIMEOUT":      "25s",
		"API_SERVER_IDLE_TIMEOUT":       "2m",
		"API_FIREBASE_PROJECT_ID":       "sd-prod",
		"API_FIRESTORE_PROJECT_ID":      "sd-fire",
		"API_STORAGE_MEDIA_BUCKET":      "media-prod",
		"API_STORAGE_SIGNED_URL_TTL":    "30m",
		"API_COMMERCE_GRAPHQL_ENDPOINT": "https://commerce.example.com/graphql",
		"API_COMMERCE_AUTH_TOKEN":       "secret://commerce/token",
		"API_COMMERCE_TIMEOUT":          "10s",
		"API_WIZARD_SESSION_TTL":        "12h",
		"API_WIZARD_SWEEP_INTERVAL":     "30m",
		"API_WIZARD_MAX_PRODUCT_IMAGES": "8",
		"API_WIZARD_MAX_PROMO_IMAGES":   "3",
		"API_RATELIMIT_DEFAULT_PER_MIN": "150",
		"API_RATELIMIT_AUTH_PER_MIN":    "300",
		"API_FEATURE_MARKETING":         "false",
		"API_FEATURE_SEED_FIXTURES":     "true",
	}

	secrets := map[string]string{
		"secret://commerce/token": "commerce-token",
	}

	resolver := SecretResolverFunc(func(_ context.Context, ref string) (string, error) {
		if v, ok := secrets[ref]; ok {
			return v, nil
		}
		return "", &SecretError{Ref: ref, Err: errSecretResolverNotConfigured}
	})

	cfg, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""), WithSecretResolver(resolver))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Server.IdleTimeout != 2*time.Minute {
		t.Errorf("unexpected idle timeout: %s", cfg.Server.IdleTimeout)
	}
	if cfg.Firestore.ProjectID != "sd-fire" {
		t.Errorf("expected explicit firestore project, got %s", cfg.Firestore.ProjectID)
	}
	if cfg.Storage.SignedURLTTL != 30*time.Minute {
		t.Errorf("unexpected signed url ttl: %s", cfg.Storage.SignedURLTTL)
	}
	if cfg.Commerce.AuthToken != "commerce-token" {
		t.Errorf("expected resolved commerce token, got %s", cfg.Commerce.AuthToken)
	}
	if cfg.Commerce.Timeout != 10*time.Second {
		t.Errorf("unexpected commerce timeout: %s", cfg.Commerce.Timeout)
	}
	if cfg.Wizard.SessionTTL != 12*time.Hour {
		t.Errorf("unexpected wizard session ttl: %s", cfg.Wizard.SessionTTL)
	}
	if cfg.Wizard.MaxProductImages != 8 {
		t.Errorf("unexpected max product images: %d", cfg.Wizard.MaxProductImages)
	}
	if cfg.Wizard.MaxPromoImages != 3 {
		t.Errorf("unexpected max promo images: %d", cfg.Wizard.MaxPromoImages)
	}
	if cfg.Features.EnableMarketing {
		t.Errorf("expected marketing flag disabled")
	}
	if !cfg.Features.EnableSeedFixtures {
		t.Errorf("expected seed fixtures flag enabled")
	}
}

func TestLoadDotEnvFallback(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env.test")
	content := "API_SERVER_PORT=7070\nAPI_FIREBASE_PROJECT_ID=sd-dot\nAPI_STORAGE_MEDIA_BUCKET=media-dot\nAPI_COMMERCE_GRAPHQL_ENDPOINT=https://commerce.example.com/graphql\n"
	if err := os.WriteFile(envPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write dotenv file: %v", err)
	}

	cfg, err := Load(context.Background(), WithEnvFile(envPath), WithoutSystemEnv())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "7070" {
		t.Errorf("expected port from dotenv 7070, got %s", cfg.Server.Port)
	}
	if cfg.Firebase.ProjectID != "sd-dot" {
		t.Errorf("expected firebase project from dotenv, got %s", cfg.Firebase.ProjectID)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	_, err := Load(context.Background(), WithEnvMap(map[string]string{}), WithoutSystemEnv(), WithEnvFile(""))
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if _, ok := err.(*ValidationError); !ok {
		t.Fatalf("expected ValidationError, got %T", err)
	}
}

func TestLoadSecretResolverError(t *testing.T) {
	env := map[string]string{
		"API_FIREBASE_PROJECT_ID":       "sd-dev",
		"API_STORAGE_MEDIA_BUCKET":      "media",
		"API_COMMERCE_GRAPHQL_ENDPOINT": "https://commerce.example.com/graphql",
		"API_COMMERCE_AUTH_TOKEN":       "secret://missing",
	}

	_, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err == nil {
		t.Fatal("expected secret resolution error, got nil")
	}
	var secretErr *SecretError
	if !errors.As(err, &secretErr) {
		t.Fatalf("expected SecretError, got %T", err)
	}
	if secretErr.Ref != "secret://missing" {
		t.Errorf("unexpected secret ref %s", secretErr.Ref)
	}
}

func TestEnvironmentValuesMergesSources(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env.test")
	content := "API_FIREBASE_PROJECT_ID=dot-project\nAPI_SECRET_FALLBACK_FILE=.dot.local\n"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatalf("failed writing env file: %v", err)
	}

	t.Setenv("API_FIREBASE_PROJECT_ID", "os-project")
	t.Setenv("API_SECRET_PROJECT_IDS", "prod=project-prod")

	overrides := map[string]string{
		"API_FIREBASE_PROJECT_ID": "override-project",
		"API_SECRET_VERSION_PINS": "secret://commerce/token=5",
	}

	values, err := EnvironmentValues(WithEnvFile(envPath), WithEnvMap(overrides))
	if err != nil {
		t.Fatalf("EnvironmentValues returned error: %v", err)
	}

	if got := values["API_FIREBASE_PROJECT_ID"]; got != "override-project" {
		t.Fatalf("expected override project, got %s", got)
	}
	if got := values["API_SECRET_FALLBACK_FILE"]; got != ".dot.local" {
		t.Fatalf("expected dotenv fallback file, got %s", got)
	}
	if got := values["API_SECRET_PROJECT_IDS"]; got != "prod=project-prod" {
		t.Fatalf("expected system env project map, got %s", got)
	}
	if got := values["API_SECRET_VERSION_PINS"]; got != "secret://commerce/token=5" {
		t.Fatalf("expected override version pin, got %s", got)
	}
}

func TestLoadMissingRequiredSecrets(t *testing.T) {
	env := map[string]string{
		"API_FIREBASE_PROJECT_ID":       "sd-dev",
		"API_STORAGE_MEDIA_BUCKET":      "media",
		"API_COMMERCE_GRAPHQL_ENDPOINT": "https://commerce.example.com/graphql",
	}

	_, err := Load(context.Background(),
		WithEnvMap(env),
		WithoutSystemEnv(),
		WithEnvFile(""),
		WithRequiredSecrets("Commerce.AuthToken"),
	)
	if err == nil {
		t.Fatal("expected missing secrets error, got nil")
	}
	var missing *MissingSecretsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingSecretsError, got %T", err)
	}
	expectedRedacted := redactSecretName("Commerce.AuthToken")
	if got := missing.RedactedNames(); len(got) != 1 || got[0] != expectedRedacted {
		t.Fatalf("unexpected redacted names %v", got)
	}
}

func TestLoadSupportsLegacySecretScheme(t *testing.T) {
	env := map[string]string{
		"API_FIREBASE_PROJECT_ID":       "sd-dev",
		"API_STORAGE_MEDIA_BUCKET":      "media",
		"API_COMMERCE_GRAPHQL_ENDPOINT": "https://commerce.example.com/graphql",
		"API_COMMERCE_AUTH_TOKEN":       "sm://commerce/token",
	}

	secrets := map[string]string{
		"secret://commerce/token": "legacy-token",
	}

	resolver := SecretResolverFunc(func(_ context.Context, ref string) (string, error) {
		if v, ok := secrets[ref]; ok {
			return v, nil
		}
		return "", &SecretError{Ref: ref, Err: errors.New("not found")}
	})

	cfg, err := Load(context.Background(),
		WithEnvMap(env),
		WithoutSystemEnv(),
		WithEnvFile(""),
		WithSecretResolver(resolver),
	)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Commerce.AuthToken != "legacy-token" {
		t.Fatalf("expected legacy token, got %s", cfg.Commerce.AuthToken)
	}
}
