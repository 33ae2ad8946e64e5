package config

import (
	"fmt"
	"os"

	"predmarket/engine/crypto"

	"github.com/BurntSushi/toml"
)

// Load reads the engine's runtime configuration from path, writing out a
// default file (and returning it) the first time path does not exist, the
// same first-run-bootstrap shape the teacher's config loader uses.
func Load(path string) (*Global, error) {
	cfg := &Global{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if err := ValidateConfig(*cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path as TOML, truncating any existing file.
func Save(path string, cfg *Global) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

// createDefault writes and returns a Global with conservative defaults for
// the listen address, service name, keeper-batch rate limit and per-owner
// quota. Breaker and oracle thresholds are not part of Global; they stay
// hard-coded in their packages (e.g. core/breaker.CoverageThreshold).
func createDefault(path string) (*Global, error) {
	cfg := &Global{
		ListenAddress: ":9090",
		ServiceName:   "predmarket-engine",
		MakerRebateBp: 0,
		RatePerSecond: 10,
		RateBurst:     10,
		Quota: Quota{
			MaxRequestsPerEpoch: 60,
			MaxNotionalPerEpoch: 0, // 0 disables the notional cap
			EpochSlots:          60,
		},
		Pauses: Pauses{},
	}
	if err := Save(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// AdminAddresses decodes the configured bech32 admin strings into the raw
// 20-byte identifiers core/engine.NewEngine's authority set expects.
func (g Global) AdminAddresses() ([][20]byte, error) {
	out := make([][20]byte, 0, len(g.Admins))
	for _, raw := range g.Admins {
		addr, err := crypto.DecodeAddress(raw)
		if err != nil {
			return nil, fmt.Errorf("config: admin address %q: %w", raw, err)
		}
		var id [20]byte
		copy(id[:], addr.Bytes())
		out = append(out, id)
	}
	return out, nil
}
