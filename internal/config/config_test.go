package config

import (
	"testing"

	"github.com/spf13/viper"
)

func TestDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	Init(nil)

	if got := SaltAPIURL(); got != "http://host.docker.internal:8000" {
		t.Fatalf("unexpected default URL %q", got)
	}
	if got := SaltAPIEauth(); got != "pam" {
		t.Fatalf("unexpected default eauth %q", got)
	}
	if got := SaltAPITimeout(); got != "30s" {
		t.Fatalf("unexpected default timeout %q", got)
	}
	if got := SaltAPILoginTimeout(); got != "10s" {
		t.Fatalf("unexpected default login timeout %q", got)
	}
	if SaltAPITLSSkipVerify() {
		t.Fatalf("TLS verification must be enabled by default")
	}
	if !StartupProbe() {
		t.Fatalf("startup probe must be enabled by default")
	}
	if got := LogLevel(); got != "info" {
		t.Fatalf("unexpected default log level %q", got)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("SALT_API_URL", "https://salt.prod.internal:8443")
	t.Setenv("SALT_API_USERNAME", "deploy")
	t.Setenv("SALT_API_PASSWORD", "s3cret")
	t.Setenv("SALT_API_EAUTH", "ldap")
	t.Setenv("SALT_API_TLS_SKIP_VERIFY", "true")
	t.Setenv("STARTUP_PROBE", "false")
	t.Setenv("LOG_LEVEL", "debug")
	Init(nil)

	if got := SaltAPIURL(); got != "https://salt.prod.internal:8443" {
		t.Fatalf("unexpected URL %q", got)
	}
	if SaltAPIUsername() != "deploy" || SaltAPIPassword() != "s3cret" {
		t.Fatalf("credentials not read from environment")
	}
	if got := SaltAPIEauth(); got != "ldap" {
		t.Fatalf("unexpected eauth %q", got)
	}
	if !SaltAPITLSSkipVerify() {
		t.Fatalf("TLS skip flag not read from environment")
	}
	if StartupProbe() {
		t.Fatalf("startup probe flag not read from environment")
	}
	if got := LogLevel(); got != "debug" {
		t.Fatalf("unexpected log level %q", got)
	}
}
