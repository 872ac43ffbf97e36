package supervisor

import "github.com/oshokin/webkit-proxy/internal/config"

// NewFromConfig returns a Supervisor using the timeouts and readiness address in cfg.
func NewFromConfig(locator Locator, cfg *config.Config) *Supervisor {
	opts := []Option{
		WithSettleTimeout(cfg.SettleTimeout),
		WithKillTimeout(cfg.KillTimeout),
	}

	if cfg.ReadinessAddress != "" {
		opts = append(opts, WithReadinessProbe(TCPProbe(cfg.ReadinessAddress, DefaultProbeInterval), DefaultReadinessTimeout))
	}

	return New(locator, opts...)
}
