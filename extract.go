package scholar

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Positions of the all-time values in the td.gsc_rsb_std cells. The table
// interleaves each with its "since 5 years" counterpart at the odd offsets,
// which are not read.
const (
	offsetTotalCitations = 0
	offsetHIndex         = 2
	offsetI10Index       = 4
	minMetricCells       = offsetI10Index + 1
)

// Extractor turns profile markup into a Result.
type Extractor struct {
	detector *BlockDetector
	chart    *ChartParser
}

func NewExtractor(detector *BlockDetector, chart *ChartParser) *Extractor {
	if detector == nil {
		detector = NewBlockDetector(nil)
	}
	if chart == nil {
		chart = NewChartParser("")
	}
	return &Extractor{detector: detector, chart: chart}
}

// Extract checks for a challenge page, then reads metrics and publications.
// Layout problems come back as a SchemaMismatch result, not an error; the
// error return is reserved for markup that cannot be read at all.
func (e *Extractor) Extract(body string) (Result, error) {
	if marker, blocked := e.detector.Blocked(body); blocked {
		return Blocked(fmt.Errorf("%w: matched %q", ErrChallengePage, marker)), nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("parse profile page: %w", err)
	}

	metrics, err := ExtractMetrics(doc)
	if err != nil {
		return SchemaMismatch(err), nil
	}
	metrics.CitationsPerYear = e.chart.CitationsPerYear(doc)

	return Success(Snapshot{
		Metrics:      metrics,
		Publications: ExtractPublications(doc),
	}), nil
}

// ExtractMetrics reads total citations, h-index and i10-index from the
// statistics table by fixed offset. CitationsPerYear is left empty.
func ExtractMetrics(doc *goquery.Document) (*Metrics, error) {
	table := doc.Find("table#gsc_rsb_st").First()
	if table.Length() == 0 {
		return nil, ErrMetricsTableMissing
	}

	var cells []string
	table.Find("td.gsc_rsb_std").Each(func(_ int, s *goquery.Selection) {
		cells = append(cells, strings.TrimSpace(s.Text()))
	})
	if len(cells) < minMetricCells {
		return nil, fmt.Errorf("%w: got %d, need %d", ErrTooFewMetricCells, len(cells), minMetricCells)
	}

	var m Metrics
	fields := []struct {
		offset int
		name   string
		dst    *int
	}{
		{offsetTotalCitations, "total_citations", &m.TotalCitations},
		{offsetHIndex, "h_index", &m.HIndex},
		{offsetI10Index, "i10_index", &m.I10Index},
	}
	for _, f := range fields {
		n, ok := parseDigits(strings.ReplaceAll(cells[f.offset], ",", ""))
		if !ok {
			return nil, fmt.Errorf("%w: %s at offset %d is %q", ErrMetricCellNotNumeric, f.name, f.offset, cells[f.offset])
		}
		*f.dst = n
	}
	m.CitationsPerYear = map[string]int{}
	return &m, nil
}

// ExtractPublications returns one Publication per tr.gsc_a_tr row that has a
// title, in page order.
func ExtractPublications(doc *goquery.Document) []Publication {
	publications := []Publication{}
	doc.Find("tr.gsc_a_tr").Each(func(_ int, row *goquery.Selection) {
		link := row.Find("a.gsc_a_at").First()
		if link.Length() == 0 {
			return
		}
		title := strings.TrimSpace(link.Text())
		if title == "" {
			return
		}

		citedBy := 0
		if cite := row.Find("a.gsc_a_ac").First(); cite.Length() > 0 {
			citedBy = ParseCount(cite.Text())
		}
		publications = append(publications, Publication{Title: title, CitedBy: citedBy})
	})
	return publications
}
