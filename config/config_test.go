package config

import (
	"path/filepath"
	"testing"
)

func TestLoadWritesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.toml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServiceName == "" {
		t.Fatalf("expected a default ServiceName")
	}
	if cfg.Quota.EpochSlots == 0 {
		t.Fatalf("expected a default Quota.EpochSlots")
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.ServiceName != cfg.ServiceName {
		t.Fatalf("reload mismatch: got %q want %q", reloaded.ServiceName, cfg.ServiceName)
	}
}

func TestValidateConfigRejectsZeroEpoch(t *testing.T) {
	cfg := Global{ServiceName: "x", Quota: Quota{EpochSlots: 0}}
	if err := ValidateConfig(cfg); err == nil {
		t.Fatalf("expected an error for zero EpochSlots")
	}
}

func TestValidateConfigRejectsTelemetryWithoutEndpoint(t *testing.T) {
	cfg := Global{
		ServiceName: "x",
		Quota:       Quota{EpochSlots: 1},
		Telemetry:   Telemetry{Enabled: true},
	}
	if err := ValidateConfig(cfg); err == nil {
		t.Fatalf("expected an error when Telemetry.Enabled has no Endpoint")
	}
}

func TestAdminAddressesRejectsMalformedBech32(t *testing.T) {
	cfg := Global{Admins: []string{"not-a-valid-address"}}
	if _, err := cfg.AdminAddresses(); err == nil {
		t.Fatalf("expected a decode error")
	}
}
