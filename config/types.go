package config

// Pauses is the persisted module-pause configuration (the engine's
// supplemental per-verse halt, generalizing the single global flag). It is
// the payload native/params.Store marshals under the pauses parameter key.
type Pauses struct {
	Global bool     `toml:"Global" json:"global"`
	Verses []string `toml:"Verses" json:"verses"`
}

// Quota bounds how often and how much notional one owner can push through a
// rate-limited intent within one epoch (native/common's quota guard).
type Quota struct {
	MaxRequestsPerEpoch uint32 `toml:"MaxRequestsPerEpoch"`
	MaxNotionalPerEpoch uint64 `toml:"MaxNotionalPerEpoch"`
	EpochSlots          uint64 `toml:"EpochSlots"`
}

// Telemetry configures the optional OTLP exporters (observability/otel).
type Telemetry struct {
	Enabled     bool   `toml:"Enabled"`
	Endpoint    string `toml:"Endpoint"`
	Insecure    bool   `toml:"Insecure"`
	Headers     string `toml:"Headers"`
	Metrics     bool   `toml:"Metrics"`
	Traces      bool   `toml:"Traces"`
	Environment string `toml:"Environment"`
}

// Global bundles every runtime knob the engine and its cmd entrypoint load
// from disk, validated by ValidateConfig before the engine is constructed.
type Global struct {
	ListenAddress string    `toml:"ListenAddress"`
	ServiceName   string    `toml:"ServiceName"`
	Admins        []string  `toml:"Admins"` // bech32-encoded, decoded via crypto.DecodeAddress
	MakerRebateBp uint32    `toml:"MakerRebateBp"`
	RatePerSecond float64   `toml:"RatePerSecond"` // keeper-batch smoothing (core/scheduler)
	RateBurst     int       `toml:"RateBurst"`
	Quota         Quota     `toml:"Quota"`
	Pauses        Pauses    `toml:"Pauses"`
	Telemetry     Telemetry `toml:"Telemetry"`
}
