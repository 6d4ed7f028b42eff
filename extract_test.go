package scholar

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFixture(t *testing.T, name string) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(content)
}

func metricsTable(cells ...string) string {
	html := `<table id="gsc_rsb_st"><tbody><tr>`
	for _, c := range cells {
		html += `<td class="gsc_rsb_std">` + c + `</td>`
	}
	return html + `</tr></tbody></table>`
}

func TestExtractMetricsOffsets(t *testing.T) {
	doc := docFromString(t, metricsTable("120", "(2023)", "15", "—", "8", "—"))

	m, err := ExtractMetrics(doc)
	require.NoError(t, err)
	assert.Equal(t, 120, m.TotalCitations)
	assert.Equal(t, 15, m.HIndex)
	assert.Equal(t, 8, m.I10Index)
	assert.NotNil(t, m.CitationsPerYear)
}

func TestExtractMetricsExactlyFiveCells(t *testing.T) {
	m, err := ExtractMetrics(docFromString(t, metricsTable("3", "x", "2", "x", "1")))
	require.NoError(t, err)
	assert.Equal(t, Metrics{TotalCitations: 3, HIndex: 2, I10Index: 1, CitationsPerYear: map[string]int{}}, *m)
}

func TestExtractMetricsFailures(t *testing.T) {
	tests := []struct {
		name string
		html string
		want error
	}{
		{"no table", `<div id="gsc_rsb"></div>`, ErrMetricsTableMissing},
		{"too few cells", metricsTable("120", "60", "15", "10"), ErrTooFewMetricCells},
		{"non numeric h-index", metricsTable("120", "60", "n/a", "10", "8", "5"), ErrMetricCellNotNumeric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ExtractMetrics(docFromString(t, tt.html))
			assert.Nil(t, m)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestExtractPublicationScenarios(t *testing.T) {
	doc := docFromString(t, `<table><tbody>
<tr class="gsc_a_tr"><td><a class="gsc_a_at">Paper A</a></td><td class="gsc_a_c"><a class="gsc_a_ac">42</a></td></tr>
<tr class="gsc_a_tr"><td><a class="gsc_a_at">Paper B</a></td><td class="gsc_a_c"></td></tr>
</tbody></table>`)

	assert.Equal(t, []Publication{
		{Title: "Paper A", CitedBy: 42},
		{Title: "Paper B", CitedBy: 0},
	}, ExtractPublications(doc))
}

func TestExtractPublicationsSkipsRowsWithoutTitle(t *testing.T) {
	doc := docFromString(t, `<table><tbody>
<tr class="gsc_a_tr"><td><span>no link</span></td><td><a class="gsc_a_ac">5</a></td></tr>
<tr class="gsc_a_tr"><td><a class="gsc_a_at">   </a></td><td><a class="gsc_a_ac">5</a></td></tr>
<tr class="gsc_a_tr"><td><a class="gsc_a_at">Kept</a></td><td><a class="gsc_a_ac">n/a</a></td></tr>
</tbody></table>`)

	assert.Equal(t, []Publication{{Title: "Kept", CitedBy: 0}}, ExtractPublications(doc))
}

func TestExtractPublicationsEmptyPage(t *testing.T) {
	pubs := ExtractPublications(docFromString(t, `<html></html>`))
	assert.NotNil(t, pubs)
	assert.Empty(t, pubs)
}

func TestExtractProfileFixture(t *testing.T) {
	result, err := NewExtractor(nil, nil).Extract(readFixture(t, "profile_page.html"))
	require.NoError(t, err)
	require.Equal(t, OutcomeSuccess, result.Outcome)

	snap := result.Snapshot
	require.NotNil(t, snap.Metrics)
	assert.Equal(t, 1234, snap.Metrics.TotalCitations)
	assert.Equal(t, 17, snap.Metrics.HIndex)
	assert.Equal(t, 21, snap.Metrics.I10Index)
	assert.Equal(t, map[string]int{"2021": 150, "2022": 210, "2023": 260, "2024": 301}, snap.Metrics.CitationsPerYear)

	assert.Equal(t, []Publication{
		{Title: "Graph Methods & Citation Networks", CitedBy: 42},
		{Title: "A Preprint Nobody Has Cited Yet", CitedBy: 0},
		{Title: "Early Work", CitedBy: 0},
		{Title: "Thesis", CitedBy: 0},
	}, snap.Publications)
}

func TestExtractBlockedPage(t *testing.T) {
	result, err := NewExtractor(nil, nil).Extract(readFixture(t, "captcha_page.html"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeBlocked, result.Outcome)
	assert.ErrorIs(t, result.Reason, ErrChallengePage)
}

func TestExtractBlockCheckRunsBeforeParsing(t *testing.T) {
	// a valid profile that also carries a marker is still treated as blocked
	body := readFixture(t, "profile_page.html") + `<div id="gs_captcha_ccl"></div>`
	result, err := NewExtractor(nil, nil).Extract(body)
	require.NoError(t, err)
	assert.Equal(t, OutcomeBlocked, result.Outcome)
}

func TestExtractLayoutChanged(t *testing.T) {
	result, err := NewExtractor(nil, nil).Extract(readFixture(t, "layout_changed_page.html"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeSchemaMismatch, result.Outcome)
	assert.ErrorIs(t, result.Reason, ErrMetricsTableMissing)
}

func TestExtractTableWithoutChart(t *testing.T) {
	result, err := NewExtractor(nil, nil).Extract(metricsTable("1", "1", "1", "1", "1", "1"))
	require.NoError(t, err)
	require.Equal(t, OutcomeSuccess, result.Outcome)
	assert.Empty(t, result.Snapshot.Metrics.CitationsPerYear)
	assert.NotNil(t, result.Snapshot.Metrics.CitationsPerYear)
	assert.Empty(t, result.Snapshot.Publications)
}
