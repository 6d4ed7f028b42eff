package scholar

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResultDecide(t *testing.T) {
	reason := errors.New("reason")
	tests := []struct {
		name   string
		result Result
		prior  bool
		want   Action
	}{
		{"success without prior", Success(Snapshot{}), false, ActionWriteSnapshot},
		{"success with prior", Success(Snapshot{}), true, ActionWriteSnapshot},
		{"blocked with prior", Blocked(reason), true, ActionKeepExisting},
		{"blocked without prior", Blocked(reason), false, ActionWriteFallback},
		{"schema mismatch with prior", SchemaMismatch(reason), true, ActionKeepExisting},
		{"schema mismatch without prior", SchemaMismatch(reason), false, ActionWriteFallback},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.result.Decide(tt.prior))
		})
	}
}

func TestOutcomeAndActionStrings(t *testing.T) {
	assert.Equal(t, "success", OutcomeSuccess.String())
	assert.Equal(t, "blocked", OutcomeBlocked.String())
	assert.Equal(t, "schema_mismatch", OutcomeSchemaMismatch.String())
	assert.Equal(t, "unknown", Outcome(42).String())
	assert.Equal(t, "write_snapshot", ActionWriteSnapshot.String())
	assert.Equal(t, "keep_existing", ActionKeepExisting.String())
	assert.Equal(t, "write_fallback", ActionWriteFallback.String())
	assert.Equal(t, "unknown", Action(42).String())
}

func TestFallbackSnapshot(t *testing.T) {
	snap := FallbackSnapshot()
	assert.Nil(t, snap.Metrics)
	assert.NotNil(t, snap.Publications)
	assert.Empty(t, snap.Publications)
}
