// internal/config/context.go
package config

import "context"

type contextKey struct{}

// IntoContext attaches cfg to ctx so commands can hand it down without
// threading it through every constructor signature.
func IntoContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, contextKey{}, cfg)
}

// FromContext returns the attached config, or defaults when none is set.
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(contextKey{}).(*Config); ok {
		return cfg
	}
	return NewDefault()
}
