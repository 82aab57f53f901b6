// Package points implements the earning calculator: pure arithmetic over a
// typed program configuration, no side effects.
package points

import (
	"loyalty/internal/errors"
)

// Program is the active loyalty program configuration. Construct it with
// NewProgram (validating) or DefaultProgram; a zero Program is not valid.
type Program struct {
	PointsPerDollar       float64
	BonusPointsThreshold  float64
	BonusPointsMultiplier float64
	PointsForSignup       int64
	PointsForFirstOrder   int64
}

// Program defaults applied when no configuration is provided.
const (
	DefaultPointsPerDollar       = 1.0
	DefaultBonusPointsThreshold  = 50.0
	DefaultBonusPointsMultiplier = 1.5
	DefaultPointsForSignup       = 100
	DefaultPointsForFirstOrder   = 50
)

// DefaultProgram returns the documented default program configuration.
func DefaultProgram() Program {
	return Program{
		PointsPerDollar:       DefaultPointsPerDollar,
		BonusPointsThreshold:  DefaultBonusPointsThreshold,
		BonusPointsMultiplier: DefaultBonusPointsMultiplier,
		PointsForSignup:       DefaultPointsForSignup,
		PointsForFirstOrder:   DefaultPointsForFirstOrder,
	}
}

// NewProgram validates the given values and returns a Program. Zero-valued
// fields fall back to the documented defaults, so a partially specified
// configuration is completed rather than rejected. The flip side is that an
// explicit 0 cannot express "no bonus"; such a program would need a
// distinct unset marker in the configuration surface.
func NewProgram(pointsPerDollar, bonusThreshold, bonusMultiplier float64, signupPoints, firstOrderPoints int64) (Program, error) {
	p := Program{
		PointsPerDollar:       pointsPerDollar,
		BonusPointsThreshold:  bonusThreshold,
		BonusPointsMultiplier: bonusMultiplier,
		PointsForSignup:       signupPoints,
		PointsForFirstOrder:   firstOrderPoints,
	}

	if p.PointsPerDollar == 0 {
		p.PointsPerDollar = DefaultPointsPerDollar
	}
	if p.BonusPointsThreshold == 0 {
		p.BonusPointsThreshold = DefaultBonusPointsThreshold
	}
	if p.BonusPointsMultiplier == 0 {
		p.BonusPointsMultiplier = DefaultBonusPointsMultiplier
	}
	if p.PointsForSignup == 0 {
		p.PointsForSignup = DefaultPointsForSignup
	}
	if p.PointsForFirstOrder == 0 {
		p.PointsForFirstOrder = DefaultPointsForFirstOrder
	}

	if err := p.validate(); err != nil {
		return Program{}, err
	}

	return p, nil
}

func (p Program) validate() error {
	if p.PointsPerDollar < 0 {
		return errors.Errorf("pointsPerDollar must not be negative, got %v", p.PointsPerDollar)
	}
	if p.BonusPointsThreshold < 0 {
		return errors.Errorf("bonusPointsThreshold must not be negative, got %v", p.BonusPointsThreshold)
	}
	if p.BonusPointsMultiplier < 1 {
		return errors.Errorf("bonusPointsMultiplier must be at least 1, got %v", p.BonusPointsMultiplier)
	}
	if p.PointsForSignup < 0 {
		return errors.Errorf("pointsForSignup must not be negative, got %d", p.PointsForSignup)
	}
	if p.PointsForFirstOrder < 0 {
		return errors.Errorf("pointsForFirstOrder must not be negative, got %d", p.PointsForFirstOrder)
	}

	return nil
}
