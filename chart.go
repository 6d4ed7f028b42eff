package scholar

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultChartMarker identifies the inline script that feeds the
// citations-per-year bar chart.
const DefaultChartMarker = "google.visualization.arrayToDataTable"

var yearPairPattern = regexp.MustCompile(`\['(\d{4})',\s*(\d+)\]`)

// ChartParser pulls per-year citation counts out of inline chart scripts.
type ChartParser struct {
	Marker string
}

func NewChartParser(marker string) *ChartParser {
	if marker == "" {
		marker = DefaultChartMarker
	}
	return &ChartParser{Marker: marker}
}

// CitationsPerYear merges the pairs of every script carrying the marker.
// Later pairs for the same year overwrite earlier ones. The result is never nil.
func (p *ChartParser) CitationsPerYear(doc *goquery.Document) map[string]int {
	out := make(map[string]int)
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		text := s.Text()
		if !strings.Contains(text, p.Marker) {
			return
		}
		ParseYearPairs(text, out)
	})
	return out
}

// ParseYearPairs adds every ['YYYY', N] literal in script to into.
func ParseYearPairs(script string, into map[string]int) {
	for _, m := range yearPairPattern.FindAllStringSubmatch(script, -1) {
		n, ok := parseDigits(m[2])
		if !ok {
			continue
		}
		into[m[1]] = n
	}
}
