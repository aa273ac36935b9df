// Package placement defines the data transfer objects produced by a
// placement run: per-atom provenance, the matching logbook and the summary
// written by the CLI and stored in the result cache.  No domain logic lives
// here, only plain data types that are safe to import from any layer.
package placement

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Logbook
// ─────────────────────────────────────────────────────────────────────────────

// Step names the matching step a logbook entry belongs to.
type Step string

const (
	// StepScaffoldFollowup is the scaffold→candidate match used to build the
	// chimera.
	StepScaffoldFollowup Step = "scaffold-followup"

	// StepFollowupChimera is the candidate→chimera match used to place the
	// candidate.
	StepFollowupChimera Step = "followup-chimera"
)

// LogbookEntry records which matching configuration was chosen for one step
// and how many atoms it mapped.
type LogbookEntry struct {
	Step        Step   `json:"step"`
	Rung        int    `json:"rung"`
	RungName    string `json:"rung_name"`
	Config      string `json:"config"`
	MappedAtoms int    `json:"mapped_atoms"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Provenance
// ─────────────────────────────────────────────────────────────────────────────

// AtomProvenance is the exported provenance of one atom.  An empty Origin
// means the atom derives from no hit.
type AtomProvenance struct {
	Index      int      `json:"index"`
	Element    string   `json:"element"`
	Origin     []string `json:"origin,omitempty"`
	Confidence float64  `json:"confidence"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Outcome
// ─────────────────────────────────────────────────────────────────────────────

// Status is the terminal state of a placement task.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusTimedOut  Status = "timed_out"
	StatusCached    Status = "cached"
)

// IsSuccess reports whether the status carries a usable placement.
func (s Status) IsSuccess() bool {
	return s == StatusSucceeded || s == StatusCached
}

// Summary is the serialisable result of one placement.
type Summary struct {
	ID                 string           `json:"id"`
	Name               string           `json:"name"`
	Hits               []string         `json:"hits"`
	Unmatched          []string         `json:"unmatched,omitempty"`
	Logbook            []LogbookEntry   `json:"logbook"`
	Atoms              []AtomProvenance `json:"atoms"`
	PositionedMolBlock string           `json:"positioned_molblock,omitempty"`
	Energy             *float64         `json:"energy,omitempty"`
	Duration           time.Duration    `json:"duration"`
	CreatedAt          time.Time        `json:"created_at"`
}

// Outcome pairs a task name with its status, summary or failure.
type Outcome struct {
	Name      string   `json:"name"`
	Status    Status   `json:"status"`
	ErrorCode string   `json:"error_code,omitempty"`
	Error     string   `json:"error,omitempty"`
	Summary   *Summary `json:"summary,omitempty"`
}

// BatchReport aggregates the outcomes of a batch run.
type BatchReport struct {
	Total     int       `json:"total"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Outcomes  []Outcome `json:"outcomes"`
}

// NewBatchReport tallies outcomes.
func NewBatchReport(outcomes []Outcome) BatchReport {
	r := BatchReport{Total: len(outcomes), Outcomes: outcomes}
	for _, o := range outcomes {
		if o.Status.IsSuccess() {
			r.Succeeded++
		} else {
			r.Failed++
		}
	}
	return r
}

//Personal.AI order the ending
