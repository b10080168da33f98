// Package leveling implements the level progression curve: a pure mapping
// between levels and cumulative XP thresholds.
package leveling

import "math"

// The curve is an arithmetic series: reaching level 2 costs 100 XP and each
// further level costs 30 XP more than the previous one.
const (
	baseStep      = 100.0
	stepIncrement = 30.0
)

// ThresholdForLevel returns the cumulative XP required to hold the given
// level. Level 1 (and anything below) requires no XP.
func ThresholdForLevel(level int) int {
	if level <= 1 {
		return 0
	}

	n := float64(level - 1)
	total := n / 2 * (2*baseStep + (n-1)*stepIncrement)
	return int(math.Round(total))
}

// LevelForXP returns the highest level covered by the given cumulative XP.
// Levels stay small in practice, so a linear ascent is fine.
func LevelForXP(xp int) int {
	if xp < 0 {
		return 1
	}

	level := 1
	for xp >= ThresholdForLevel(level+1) {
		level++
	}
	return level
}

// ProgressPercent reports how far the XP amount is towards the next level
// threshold, rounded to the nearest whole percent.
func ProgressPercent(currentXP, nextLevelThreshold int) int {
	if nextLevelThreshold <= 0 {
		return 0
	}
	return int(math.Round(float64(currentXP) / float64(nextLevelThreshold) * 100))
}

// ChangeSummary describes a level/XP transition caused by an XP delta.
type ChangeSummary struct {
	PreviousLevel int  `json:"previous_level"`
	PreviousXP    int  `json:"previous_xp"`
	NewLevel      int  `json:"new_level"`
	NewXP         int  `json:"new_xp"`
	LeveledUp     bool `json:"leveled_up"`
	LevelsGained  int  `json:"levels_gained"`
}

// SummarizeChange reconstructs the level/XP pair before the delta was applied
// and reports whether applying it crossed one or more level thresholds. The
// caller only stores the post-delta state on the user row, so the "before"
// pair is recovered by walking the curve downward from the current level.
func SummarizeChange(currentLevel, currentXP, xpDelta int) ChangeSummary {
	previousXP := currentXP - xpDelta
	if previousXP < 0 {
		previousXP = 0
	}

	previousLevel := currentLevel
	for previousLevel > 1 && previousXP < ThresholdForLevel(previousLevel) {
		previousLevel--
	}

	newXP := previousXP + xpDelta
	newLevel := previousLevel
	for newXP >= ThresholdForLevel(newLevel+1) {
		newLevel++
	}

	return ChangeSummary{
		PreviousLevel: previousLevel,
		PreviousXP:    previousXP,
		NewLevel:      newLevel,
		NewXP:         newXP,
		LeveledUp:     newLevel > previousLevel,
		LevelsGained:  newLevel - previousLevel,
	}
}
