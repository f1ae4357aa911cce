// Package mocks provides test doubles for collector package.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/andreweacott/ens-prometheus-exporter/pkg/ens"
)

// MockENSAPI is a mock implementation of the ENSAPI interface
type MockENSAPI struct {
	mock.Mock
}

// GetPages implements ENSAPI.GetPages
func (m *MockENSAPI) GetPages(ctx context.Context, pageType ens.PageType, status *ens.PageStatus) ([]ens.Page, error) {
	args := m.Called(ctx, pageType, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ens.Page), args.Error(1)
}

// GetSupporterFields implements ENSAPI.GetSupporterFields
func (m *MockENSAPI) GetSupporterFields(ctx context.Context) (map[string]ens.SupporterField, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]ens.SupporterField), args.Error(1)
}

// GetSupporterQuestions implements ENSAPI.GetSupporterQuestions
func (m *MockENSAPI) GetSupporterQuestions(ctx context.Context) (map[int]ens.SupporterQuestion, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]ens.SupporterQuestion), args.Error(1)
}

// ExpectGetPagesReturns sets up GetPages for pageType to return pages
func (m *MockENSAPI) ExpectGetPagesReturns(pageType ens.PageType, pages []ens.Page) *mock.Call {
	return m.On("GetPages", mock.Anything, pageType, (*ens.PageStatus)(nil)).Return(pages, nil)
}

// ExpectGetPagesReturnsError sets up GetPages for pageType to fail
func (m *MockENSAPI) ExpectGetPagesReturnsError(pageType ens.PageType, err error) *mock.Call {
	return m.On("GetPages", mock.Anything, pageType, (*ens.PageStatus)(nil)).Return(nil, err)
}

// ExpectSupporterFieldsReturns sets up GetSupporterFields to return fields
func (m *MockENSAPI) ExpectSupporterFieldsReturns(fields ...ens.SupporterField) *mock.Call {
	byName := make(map[string]ens.SupporterField, len(fields))
	for _, f := range fields {
		byName[f.Name] = f
	}
	return m.On("GetSupporterFields", mock.Anything).Return(byName, nil)
}

// ExpectSupporterQuestionsReturns sets up GetSupporterQuestions to return questions
func (m *MockENSAPI) ExpectSupporterQuestionsReturns(questions ...ens.SupporterQuestion) *mock.Call {
	byID := make(map[int]ens.SupporterQuestion, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	return m.On("GetSupporterQuestions", mock.Anything).Return(byID, nil)
}
