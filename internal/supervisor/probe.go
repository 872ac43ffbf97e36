package supervisor

import (
	"context"
	"fmt"
	"net"
	"time"
)

// DefaultProbeInterval is the delay between TCPProbe attempts.
const DefaultProbeInterval = 100 * time.Millisecond

// ReadinessProbe reports nil once the proxy accepts work. It must honor ctx.
type ReadinessProbe func(ctx context.Context) error

// TCPProbe returns a probe that dials address until a connection succeeds.
// ios_webkit_debug_proxy serves its device list on port 9221 by default.
func TCPProbe(address string, interval time.Duration) ReadinessProbe {
	if interval <= 0 {
		interval = DefaultProbeInterval
	}

	return func(ctx context.Context) error {
		var dialer net.Dialer

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			conn, err := dialer.DialContext(ctx, "tcp", address)
			if err == nil {
				return conn.Close()
			}

			select {
			case <-ctx.Done():
				return fmt.Errorf("dial %s: %w", address, err)
			case <-ticker.C:
			}
		}
	}
}
