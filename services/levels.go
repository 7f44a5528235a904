// services/levels.go
package services

import "math"

// Level curve constants: XP required per level grows 40% each level,
// starting from 100 XP for level 2.
const (
	BaseXP     = 100
	GrowthRate = 1.4
)

// TotalXPForLevel returns the cumulative XP needed to reach `level`.
// Closed form of the geometric series: floor(BaseXP * (M^(level-1) - 1) / (M - 1)).
// The float total passes int64 range around level 115; from there the curve
// saturates at MaxInt64 instead of overflowing into a negative conversion.
func TotalXPForLevel(level int) int64 {
	if level <= 1 {
		return 0
	}
	total := float64(BaseXP) * (math.Pow(GrowthRate, float64(level-1)) - 1) / (GrowthRate - 1)
	if total >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(math.Floor(total))
}

// XPRequiredForLevel returns the XP needed to advance from `level` to `level+1`.
func XPRequiredForLevel(level int) int64 {
	if level < 1 {
		level = 1
	}
	return TotalXPForLevel(level+1) - TotalXPForLevel(level)
}

// LevelForXP returns the largest level whose cumulative requirement is
// covered by totalXP. The curve is strictly increasing for level >= 1, so a
// monotonic walk is exact at the boundaries (no off-by-one from float
// rounding in an inverse formula).
func LevelForXP(totalXP int64) int {
	if totalXP <= 0 {
		return 1
	}
	level := 1
	for TotalXPForLevel(level+1) <= totalXP {
		level++
		// Once the curve saturates the walk can no longer distinguish
		// levels; everything at or past the saturation point reads as it.
		if TotalXPForLevel(level) == math.MaxInt64 {
			break
		}
	}
	return level
}
