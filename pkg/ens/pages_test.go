package ens

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPage(t *testing.T) {
	f := newFakeENS(t)
	f.on(http.MethodGet, "/page/112233", http.StatusOK, "getPage")
	client := f.client()

	page, err := client.GetPage(context.Background(), 112233)
	require.NoError(t, err)

	assert.Equal(t, 112233, page.ID)
	assert.Equal(t, 98765, page.CampaignID)
	assert.Equal(t, "Spring Appeal 2024", page.Name)
	assert.Equal(t, PageTypeDCF, page.Type)
	require.NotNil(t, page.SubType)
	assert.Equal(t, PageTypeDC, *page.SubType)
	assert.Equal(t, PageStatusLive, page.CampaignStatus)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), page.CreatedOn)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), page.ModifiedOn)
	assert.Equal(t, "en-US", page.DefaultLocale)
}

func TestGetPages(t *testing.T) {
	t.Run("without status filter", func(t *testing.T) {
		f := newFakeENS(t)
		f.on(http.MethodGet, "/page", http.StatusOK, "getPages")
		client := f.client()

		pages, err := client.GetPages(context.Background(), PageTypeDCF, nil)
		require.NoError(t, err)
		require.Len(t, pages, 3)

		req := f.lastRequest()
		assert.Equal(t, "dcf", req.Query.Get("type"))
		assert.NotContains(t, req.Query, "status")

		require.NotNil(t, pages[0].SubType)
		assert.Equal(t, PageTypeDC, *pages[0].SubType)
		assert.Nil(t, pages[1].SubType, "unknown subtype decodes as nil")
		assert.Nil(t, pages[2].SubType, "absent subtype decodes as nil")
		assert.Equal(t, PageStatusClose, pages[1].CampaignStatus)
	})

	t.Run("with status filter", func(t *testing.T) {
		f := newFakeENS(t)
		f.on(http.MethodGet, "/page", http.StatusOK, "getPages")
		client := f.client()

		status := PageStatusLive
		_, err := client.GetPages(context.Background(), PageTypeDCF, &status)
		require.NoError(t, err)

		req := f.lastRequest()
		assert.Equal(t, "dcf", req.Query.Get("type"))
		assert.Equal(t, "live", req.Query.Get("status"))
	})
}

func TestPageUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		wantErr string
	}{
		{name: "unknown type", json: `{"type": "xyz", "campaignStatus": "live"}`, wantErr: `unknown page type "xyz"`},
		{name: "unknown status", json: `{"type": "pet", "campaignStatus": "archived"}`, wantErr: `unknown page status "archived"`},
		{name: "upper case values", json: `{"type": "PET", "campaignStatus": "LIVE"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var page Page
			err := json.Unmarshal([]byte(tt.json), &page)
			if tt.wantErr != "" {
				require.Error(t, err)
				var enumErr *EnumError
				assert.ErrorAs(t, err, &enumErr)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, PageTypePet, page.Type)
			assert.Equal(t, PageStatusLive, page.CampaignStatus)
		})
	}
}

func TestProcessPage(t *testing.T) {
	f := newFakeENS(t)
	f.on(http.MethodPost, "/page/1234/process", http.StatusOK, "processPage")
	client := f.client()

	result, err := client.ProcessPage(context.Background(), 1234, nil)
	require.NoError(t, err)

	req := f.lastRequest()
	assert.JSONEq(t, `{}`, string(req.Body))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

	assert.Equal(t, 55443322, result.ID)
	assert.Equal(t, PageRequestResultSuccess, result.Status)
	assert.Equal(t, 1234567890, result.SupporterID)
	assert.Equal(t, "first.last@example.com", result.SupporterEmailAddress)
	require.NotNil(t, result.Type)
	assert.Equal(t, PageRequestResultCreditSingle, *result.Type)
	require.NotNil(t, result.PaymentType)
	assert.Equal(t, PaymentTypeVisa, *result.PaymentType)
	require.NotNil(t, result.RecurringFrequency)
	assert.Equal(t, RecurringMonthly, *result.RecurringFrequency)
	require.NotNil(t, result.Amount)
	assert.InDelta(t, 25.5, *result.Amount, 0.001)
	assert.Nil(t, result.Error)
	require.NotNil(t, result.CreatedOn)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), *result.CreatedOn)
}

func TestProcessPagePayload(t *testing.T) {
	f := newFakeENS(t)
	f.on(http.MethodPost, "/page/1234/process", http.StatusOK, "processPage")
	client := f.client()

	payload := map[string]any{
		"supporter":   map[string]any{"Email Address": "first.last@example.com"},
		"transaction": map[string]any{"donationAmt": 25.5},
	}
	_, err := client.ProcessPage(context.Background(), 1234, payload)
	require.NoError(t, err)

	assert.JSONEq(t,
		`{"supporter": {"Email Address": "first.last@example.com"}, "transaction": {"donationAmt": 25.5}}`,
		string(f.lastRequest().Body))
}

func TestPageRequestResultOptionalFields(t *testing.T) {
	var result PageRequestResult
	err := json.Unmarshal([]byte(`{
		"id": 1,
		"status": "error",
		"supporterId": 2,
		"supporterEmailAddress": "a@example.com",
		"error": "card declined",
		"paymentType": "bitcoin"
	}`), &result)
	require.NoError(t, err)

	assert.Equal(t, PageRequestResultError, result.Status)
	require.NotNil(t, result.Error)
	assert.Equal(t, "card declined", *result.Error)
	assert.Nil(t, result.PaymentType, "unknown payment type decodes as nil")
	assert.Nil(t, result.Type)
	assert.Nil(t, result.CreatedOn)
	assert.Nil(t, result.Amount)

	err = json.Unmarshal([]byte(`{"id": 1, "status": "pending"}`), &result)
	require.Error(t, err)
}

func TestEnumLookup(t *testing.T) {
	pageType, ok := LookupPageType("EcOmMeRcE")
	assert.True(t, ok)
	assert.Equal(t, PageTypeEcommerce, pageType)

	_, ok = LookupPageType("unknown")
	assert.False(t, ok)

	paymentType, ok := LookupPaymentType("American Express")
	assert.True(t, ok)
	assert.Equal(t, PaymentTypeAmericanExpress, paymentType)

	frequency, ok := LookupRecurringFrequency("SEMI_ANNUAL")
	assert.True(t, ok)
	assert.Equal(t, RecurringSemiAnnual, frequency)

	_, err := ParseSupporterQuestionType("other")
	assert.Error(t, err)

	htmlType, ok := LookupSupporterQuestionHTMLFieldType("TextArea")
	assert.True(t, ok)
	assert.Equal(t, HTMLFieldTextarea, htmlType)

	assert.Len(t, PageTypes, 19)
	assert.Len(t, paymentTypes, 37)
}
