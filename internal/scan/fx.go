package scan

import (
	"time"

	"github.com/smallbiznis/pairlink/internal/config"
	scandomain "github.com/smallbiznis/pairlink/internal/scan/domain"
	"github.com/smallbiznis/pairlink/internal/scan/repository"
	"github.com/smallbiznis/pairlink/internal/scan/service"
	"go.uber.org/fx"
)

var Module = fx.Module("scan.service",
	fx.Provide(newMatchConfig),
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)

// newMatchConfig maps the configured thresholds onto the matcher. Unset
// values fall back to the built-in defaults at evaluation time.
func newMatchConfig(cfg config.Config) scandomain.MatchConfig {
	return scandomain.MatchConfig{
		MaxTimeDiff:       time.Duration(cfg.Matching.MaxTimeDiffMS) * time.Millisecond,
		MaxDistanceMeters: cfg.Matching.MaxDistanceMeters,
	}
}
