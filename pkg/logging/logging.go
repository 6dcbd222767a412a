package logging

import (
	"go.uber.org/zap"
)

// New creates the process-wide zap logger. Production env gets JSON output,
// everything else the human-readable development console.
func New(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
