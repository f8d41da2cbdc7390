package chart

import "sort"

// tempoChange marks a new microseconds-per-tick rate taking effect at a tick.
type tempoChange struct {
	tick      int64
	usPerTick float64
	// cumulativeUS is the absolute time at tick, filled in by finalize.
	cumulativeUS float64
}

// TempoMap converts tick positions to absolute time by accumulating tempo
// segments. Changes may be added in any order; call finalize before TimeAt.
type TempoMap struct {
	changes   []tempoChange
	finalized bool
}

// NewTempoMap builds a map with a single initial rate at tick zero.
func NewTempoMap(initialUSPerTick float64) *TempoMap {
	return &TempoMap{changes: []tempoChange{{tick: 0, usPerTick: initialUSPerTick}}}
}

// Add records a tempo change. A change at a tick that already has one
// replaces it; charts in the wild occasionally restate the starting tempo.
func (m *TempoMap) Add(tick int64, usPerTick float64) {
	if usPerTick <= 0 {
		return
	}
	m.finalized = false
	for i := range m.changes {
		if m.changes[i].tick == tick {
			m.changes[i].usPerTick = usPerTick
			return
		}
	}
	m.changes = append(m.changes, tempoChange{tick: tick, usPerTick: usPerTick})
}

func (m *TempoMap) finalize() {
	if m.finalized {
		return
	}
	sort.Slice(m.changes, func(i, j int) bool { return m.changes[i].tick < m.changes[j].tick })
	var elapsed float64
	for i := range m.changes {
		if i > 0 {
			prev := m.changes[i-1]
			elapsed += float64(m.changes[i].tick-prev.tick) * prev.usPerTick
		}
		m.changes[i].cumulativeUS = elapsed
	}
	m.finalized = true
}

// TimeAt returns the absolute time of a tick position in seconds.
func (m *TempoMap) TimeAt(tick int64) float64 {
	m.finalize()
	idx := sort.Search(len(m.changes), func(i int) bool { return m.changes[i].tick > tick }) - 1
	if idx < 0 {
		idx = 0
	}
	change := m.changes[idx]
	us := change.cumulativeUS
	if tick > change.tick {
		us += float64(tick-change.tick) * change.usPerTick
	}
	return us / 1e6
}
