package points

import "math"

// ComputeOrderPoints returns the points owed for a completed order of the
// given amount under the program. Base points are floor(amount *
// pointsPerDollar); orders at or above the bonus threshold have the base
// scaled by the bonus multiplier, floored again.
//
// Deterministic and side-effect free. Non-positive amounts earn nothing.
func ComputeOrderPoints(orderAmount float64, program Program) int64 {
	if orderAmount <= 0 {
		return 0
	}

	pts := int64(math.Floor(orderAmount * program.PointsPerDollar))
	if orderAmount >= program.BonusPointsThreshold {
		pts = int64(math.Floor(float64(pts) * program.BonusPointsMultiplier))
	}

	return pts
}
