package collector

import (
	"context"

	"github.com/andreweacott/ens-prometheus-exporter/pkg/ens"
)

// ENSAPI defines the ENS calls the collector makes.
// This interface allows for dependency injection and testing with mocks.
type ENSAPI interface {
	// GetPages lists pages of a type, optionally filtered by status
	GetPages(ctx context.Context, pageType ens.PageType, status *ens.PageStatus) ([]ens.Page, error)

	// GetSupporterFields returns the supporter fields keyed by name
	GetSupporterFields(ctx context.Context) (map[string]ens.SupporterField, error)

	// GetSupporterQuestions returns question summaries keyed by id
	GetSupporterQuestions(ctx context.Context) (map[int]ens.SupporterQuestion, error)
}
