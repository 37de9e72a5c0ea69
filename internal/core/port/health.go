package port

import "context"

// HealthChecker is implemented by the stores.
type HealthChecker interface {
	PingContext(ctx context.Context) error
}
