package config

import "fmt"

// MaxRateBurst bounds RateBurst against a runaway config value; the scheduler
// treats anything non-positive as "use the default" (core/scheduler.New), so
// this only guards the upper end.
const MaxRateBurst = 10_000

// ValidateConfig rejects a Global whose values would leave the engine or its
// scheduler in a degenerate state once constructed.
func ValidateConfig(g Global) error {
	if g.ServiceName == "" {
		return fmt.Errorf("config: ServiceName required")
	}
	if g.MakerRebateBp > 10_000 {
		return fmt.Errorf("config: MakerRebateBp must be a basis-point value <= 10000")
	}
	if g.RatePerSecond < 0 {
		return fmt.Errorf("config: RatePerSecond must be >= 0")
	}
	if g.RateBurst < 0 || g.RateBurst > MaxRateBurst {
		return fmt.Errorf("config: RateBurst out of range")
	}
	if g.Quota.EpochSlots == 0 {
		return fmt.Errorf("config: Quota.EpochSlots must be > 0")
	}
	if g.Telemetry.Enabled && g.Telemetry.Endpoint == "" {
		return fmt.Errorf("config: Telemetry.Endpoint required when Telemetry.Enabled")
	}
	for _, admin := range g.Admins {
		if admin == "" {
			return fmt.Errorf("config: Admins entries must not be empty")
		}
	}
	return nil
}
