package config

import (
	"testing"
	"time"
)

func env(vals map[string]string) func(string) string {
	return func(k string) string { return vals[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := fromEnv(env(map[string]string{
		"DATABASE_URL": "postgres://localhost/tooling",
		"JWT_SECRET":   "s3cret",
	}), true)
	if err != nil {
		t.Fatalf("fromEnv: %v", err)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.ServerPort)
	}
	if cfg.TaxRate.String() != "0.18" {
		t.Errorf("expected tax rate 0.18, got %s", cfg.TaxRate)
	}
	if cfg.MinStockRatio.String() != "0.3" {
		t.Errorf("expected min stock ratio 0.3, got %s", cfg.MinStockRatio)
	}
	if cfg.TokenTTL != time.Hour {
		t.Errorf("expected 1h token TTL, got %s", cfg.TokenTTL)
	}
}

func TestFromEnv_Errors(t *testing.T) {
	base := map[string]string{"DATABASE_URL": "postgres://x", "JWT_SECRET": "s"}
	cases := []struct {
		name string
		key  string
		val  string
	}{
		{"missing database", "DATABASE_URL", ""},
		{"missing secret", "JWT_SECRET", ""},
		{"bad tax rate", "TAX_RATE", "eighteen"},
		{"negative tax rate", "TAX_RATE", "-0.1"},
		{"zero stock ratio", "MIN_STOCK_RATIO", "0"},
		{"bad ttl", "TOKEN_TTL", "forever"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			vals := map[string]string{}
			for k, v := range base {
				vals[k] = v
			}
			vals[tc.key] = tc.val
			if _, err := fromEnv(env(vals), true); err == nil {
				t.Errorf("expected error for %s=%q", tc.key, tc.val)
			}
		})
	}
}

func TestFromEnv_SecretOptionalForCLI(t *testing.T) {
	if _, err := fromEnv(env(map[string]string{"DATABASE_URL": "postgres://x"}), false); err != nil {
		t.Errorf("CLI config should not need JWT_SECRET: %v", err)
	}
}
