package params

const (
	// ParamsKeyPauses stores the module pause configuration.
	ParamsKeyPauses = "engine/pauses"
	// ParamsKeyQuota stores the per-owner quota policy overrides.
	ParamsKeyQuota = "engine/quota"
)
