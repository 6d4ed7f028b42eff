package scholar

import "errors"

var (
	ErrChallengePage        = errors.New("challenge page returned instead of profile")
	ErrMetricsTableMissing  = errors.New("metrics table #gsc_rsb_st not found")
	ErrTooFewMetricCells    = errors.New("metrics table has too few cells")
	ErrMetricCellNotNumeric = errors.New("metrics cell is not numeric")
)

// Outcome is how far extraction got on a page.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeBlocked
	OutcomeSchemaMismatch
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeBlocked:
		return "blocked"
	case OutcomeSchemaMismatch:
		return "schema_mismatch"
	default:
		return "unknown"
	}
}

// Action is what the persistence layer does with a Result.
type Action int

const (
	ActionWriteSnapshot Action = iota
	ActionKeepExisting
	ActionWriteFallback
)

func (a Action) String() string {
	switch a {
	case ActionWriteSnapshot:
		return "write_snapshot"
	case ActionKeepExisting:
		return "keep_existing"
	case ActionWriteFallback:
		return "write_fallback"
	default:
		return "unknown"
	}
}

// Result is the outcome of extracting one page. Snapshot is only meaningful
// for OutcomeSuccess; Reason explains the other variants.
type Result struct {
	Outcome  Outcome
	Snapshot Snapshot
	Reason   error
}

func Success(s Snapshot) Result {
	return Result{Outcome: OutcomeSuccess, Snapshot: s}
}

func Blocked(reason error) Result {
	return Result{Outcome: OutcomeBlocked, Reason: reason}
}

func SchemaMismatch(reason error) Result {
	return Result{Outcome: OutcomeSchemaMismatch, Reason: reason}
}

// Decide maps a result and the presence of a previous snapshot file to the
// single persistence action for the run.
func (r Result) Decide(priorExists bool) Action {
	if r.Outcome == OutcomeSuccess {
		return ActionWriteSnapshot
	}
	if priorExists {
		return ActionKeepExisting
	}
	return ActionWriteFallback
}

// FallbackSnapshot is written when nothing could be extracted and no earlier
// snapshot exists.
func FallbackSnapshot() Snapshot {
	return Snapshot{Publications: []Publication{}}
}
