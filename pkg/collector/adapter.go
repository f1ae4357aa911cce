package collector

import (
	"context"
	"fmt"

	"github.com/andreweacott/ens-prometheus-exporter/pkg/ens"
)

// ENSClientAdapter adapts *ens.Client to the ENSAPI interface, adding the
// failing operation to every error
type ENSClientAdapter struct {
	client *ens.Client
}

// NewENSClientAdapter creates a new adapter for the ENS client
func NewENSClientAdapter(client *ens.Client) ENSAPI {
	return &ENSClientAdapter{client: client}
}

// GetPages implements ENSAPI.GetPages
func (a *ENSClientAdapter) GetPages(ctx context.Context, pageType ens.PageType, status *ens.PageStatus) ([]ens.Page, error) {
	pages, err := a.client.GetPages(ctx, pageType, status)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s pages: %w", pageType, err)
	}
	return pages, nil
}

// GetSupporterFields implements ENSAPI.GetSupporterFields
func (a *ENSClientAdapter) GetSupporterFields(ctx context.Context) (map[string]ens.SupporterField, error) {
	fields, err := a.client.GetSupporterFields(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get supporter fields: %w", err)
	}
	return fields, nil
}

// GetSupporterQuestions implements ENSAPI.GetSupporterQuestions
func (a *ENSClientAdapter) GetSupporterQuestions(ctx context.Context) (map[int]ens.SupporterQuestion, error) {
	questions, err := a.client.GetSupporterQuestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get supporter questions: %w", err)
	}
	return questions, nil
}
