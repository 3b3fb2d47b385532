package health

import "context"

// Pinger is implemented by the record store and the upload store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TaggerChecker is implemented by the tagging provider client.
type TaggerChecker interface {
	HealthCheck(ctx context.Context) error
}

// probe is one named component check.
type probe struct {
	name  string
	check func(ctx context.Context) error
}
