package collector

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/andreweacott/ens-prometheus-exporter/pkg/ens"
)

// PageKey groups pages for the ens_pages gauge
type PageKey struct {
	Type   ens.PageType
	Status ens.PageStatus
}

// PageTimestamp is the modification time of a single live page
type PageTimestamp struct {
	ID         string
	Type       ens.PageType
	Name       string
	ModifiedAt float64
}

// PageSummary holds the aggregated page metrics of one scrape
type PageSummary struct {
	Counts   map[PageKey]int
	Modified []PageTimestamp
}

// SummarizePages counts pages per type and status and collects the
// modification time of live pages. Pages failing validation are counted but
// get no timestamp.
func SummarizePages(pages []ens.Page) (PageSummary, []error) {
	summary := PageSummary{Counts: make(map[PageKey]int)}
	var validationErrors []error

	for _, page := range pages {
		summary.Counts[PageKey{Type: page.Type, Status: page.CampaignStatus}]++

		if page.CampaignStatus != ens.PageStatusLive {
			continue
		}
		if err := ValidatePage(page); err != nil {
			validationErrors = append(validationErrors, err)
			continue
		}
		summary.Modified = append(summary.Modified, PageTimestamp{
			ID:         strconv.Itoa(page.ID),
			Type:       page.Type,
			Name:       page.Name,
			ModifiedAt: float64(page.ModifiedOn.Unix()),
		})
	}

	sort.Slice(summary.Modified, func(i, j int) bool {
		return summary.Modified[i].ID < summary.Modified[j].ID
	})
	return summary, validationErrors
}

// ValidatePage checks the timestamps of a page
func ValidatePage(page ens.Page) error {
	if page.ModifiedOn.Unix() <= 0 {
		return fmt.Errorf("page %d has no modification time", page.ID)
	}
	if page.ModifiedOn.Before(page.CreatedOn) {
		return fmt.Errorf("page %d modified (%s) before it was created (%s)", page.ID, page.ModifiedOn, page.CreatedOn)
	}
	return nil
}

// SummarizeSupporterFields counts tagged and untagged supporter fields
func SummarizeSupporterFields(fields map[string]ens.SupporterField) (tagged, untagged int) {
	for _, field := range fields {
		if field.Tagged() {
			tagged++
		} else {
			untagged++
		}
	}
	return tagged, untagged
}

// SummarizeSupporterQuestions counts questions per type
func SummarizeSupporterQuestions(questions map[int]ens.SupporterQuestion) map[ens.SupporterQuestionType]int {
	counts := make(map[ens.SupporterQuestionType]int)
	for _, question := range questions {
		counts[question.Type]++
	}
	return counts
}
