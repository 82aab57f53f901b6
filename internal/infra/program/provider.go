// Package program supplies the active loyalty program from configuration.
package program

import (
	"context"

	"loyalty/config"
	"loyalty/internal/domain/points"
	"loyalty/internal/domain/service"
)

// configProvider resolves the program from the loyalty section of the
// configuration file. Missing values fall back to the built-in defaults.
type configProvider struct {
	program points.Program
}

// NewConfigProvider validates the configured program once at startup and
// serves the resolved snapshot afterwards.
func NewConfigProvider(cfg *config.Config) (service.ProgramProvider, error) {
	loyaltyCfg := cfg.Loyalty
	if loyaltyCfg == nil {
		return &configProvider{program: points.DefaultProgram()}, nil
	}

	p, err := points.NewProgram(
		loyaltyCfg.PointsPerDollar,
		loyaltyCfg.LargeOrderThreshold,
		loyaltyCfg.LargeOrderMultiplier,
		loyaltyCfg.SignupBonus,
		loyaltyCfg.FirstOrderBonus,
	)
	if err != nil {
		return nil, err
	}

	return &configProvider{program: p}, nil
}

// ActiveProgram implements service.ProgramProvider.
func (p *configProvider) ActiveProgram(_ context.Context) (points.Program, error) {
	return p.program, nil
}
