package songs

// NPS weighting constants. Tuned so a dense expert chart (~8 avg NPS) adds
// roughly two difficulty steps on the 0-100 scale.
const (
	npsAvgWeight  = 2.0
	npsPeakWeight = 1.0
)

// ScoreOptions selects the optional adjustments folded into the composite
// score.
type ScoreOptions struct {
	// LowerOfficial treats recognized official charters as one declared
	// difficulty step easier (floor 1).
	LowerOfficial bool
	// WeightNPS folds measured notes-per-second into the score. Songs with
	// unavailable NPS contribute zero for the term either way.
	WeightNPS bool
}

// EffectiveDiff returns the declared guitar difficulty, optionally lowered
// for official charts.
func EffectiveDiff(s *Song, lowerOfficial bool) int {
	diff := s.DiffGuitar
	if lowerOfficial && s.OfficialCharter && diff > 1 {
		diff--
	}
	return diff
}

// DifficultyScore maps a declared difficulty (clamped to 0-9) onto a 0-100
// scale with a small boost for songs past the two minute mark, so longer
// songs of equal rating land slightly later in the progression.
func DifficultyScore(diff, lengthSeconds int) float64 {
	if diff < 0 {
		diff = 0
	}
	if diff > 9 {
		diff = 9
	}
	base := float64(diff) / 9.0 * 100.0
	if lengthSeconds <= 0 {
		return base
	}
	minutes := float64(lengthSeconds) / 60.0
	boost := (minutes - 2.0) * 2.0
	if boost < 0 {
		boost = 0
	}
	if boost > 10 {
		boost = 10
	}
	return base + boost
}

// CompositeScore combines declared difficulty, the official-charter
// adjustment, and optional NPS weighting into the single ordering key used
// by the library sort and the tier builder.
func CompositeScore(s *Song, opts ScoreOptions) float64 {
	score := DifficultyScore(EffectiveDiff(s, opts.LowerOfficial), s.LengthSeconds)
	if opts.WeightNPS && s.NPS.Available {
		score += s.NPS.Avg*npsAvgWeight + s.NPS.Peak*npsPeakWeight
	}
	return score
}
