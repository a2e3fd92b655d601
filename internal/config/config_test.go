package config

import (
	"strings"
	"testing"

	"github.com/santobu/copilot-metrics-dashboard/internal/models"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{CronSecret: "hunter2"},
		GitHub: GitHubConfig{
			Scope:        "organization",
			Organization: "acme",
			Token:        "ghp_test",
		},
		Mongo: MongoConfig{URI: "mongodb://localhost:27017"},
	}
}

func TestValidateOK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateMissingScopeCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.GitHub.Scope = "enterprise"
	cfg.GitHub.Enterprise = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing enterprise name")
	}
	if !strings.Contains(err.Error(), "METRICS_GITHUB_ENTERPRISE") {
		t.Fatalf("error should name the missing key, got %v", err)
	}
}

func TestValidateUnknownScope(t *testing.T) {
	cfg := validConfig()
	cfg.GitHub.Scope = "team"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown scope kind")
	}
}

func TestValidateMissingToken(t *testing.T) {
	cfg := validConfig()
	cfg.GitHub.Token = ""
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "METRICS_GITHUB_TOKEN") {
		t.Fatalf("expected missing token error, got %v", err)
	}
}

func TestValidateSchedulerInterval(t *testing.T) {
	cfg := validConfig()
	cfg.Scheduler.Enabled = true
	cfg.Scheduler.Interval = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero scheduler interval")
	}
}

func TestScopeResolution(t *testing.T) {
	cfg := validConfig()
	scope := cfg.Scope()
	if scope.Kind != models.ScopeOrganization || scope.Name != "acme" {
		t.Fatalf("unexpected scope %v", scope)
	}

	cfg.GitHub.Scope = "enterprise"
	cfg.GitHub.Enterprise = "acme-corp"
	scope = cfg.Scope()
	if scope.Kind != models.ScopeEnterprise || scope.Name != "acme-corp" {
		t.Fatalf("unexpected scope %v", scope)
	}
}
