package placement

import (
	ptypes "github.com/mwinokan/Fragmenstein/pkg/types/placement"
)

// Logbook records the matching configuration chosen at each step of a
// session.
type Logbook struct {
	entries []ptypes.LogbookEntry
}

// Record appends the outcome of one matching step.
func (l *Logbook) Record(step ptypes.Step, m *Match) {
	if m == nil {
		return
	}
	l.entries = append(l.entries, ptypes.LogbookEntry{
		Step:        step,
		Rung:        m.Rung,
		RungName:    m.RungName,
		Config:      m.Config.String(),
		MappedAtoms: len(m.Pairs),
	})
}

// Entries returns a copy of the recorded entries.
func (l *Logbook) Entries() []ptypes.LogbookEntry {
	out := make([]ptypes.LogbookEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Lookup returns the last entry for step.
func (l *Logbook) Lookup(step ptypes.Step) (ptypes.LogbookEntry, bool) {
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].Step == step {
			return l.entries[i], true
		}
	}
	return ptypes.LogbookEntry{}, false
}

//Personal.AI order the ending
