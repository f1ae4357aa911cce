package ens

import (
	"encoding/json"
	"time"
)

// PageRequestResult is the outcome of processing a page
type PageRequestResult struct {
	ID                    int
	Status                PageRequestResultStatus
	SupporterID           int
	SupporterEmailAddress string

	Type               *PageRequestResultType
	TransactionID      *string
	Error              *string
	Amount             *float64
	Currency           *string
	RecurringPayment   *bool
	PaymentType        *PaymentType
	RecurringFrequency *RecurringFrequency
	RecurringDay       *int
	CreatedOn          *time.Time
}

type pageRequestResultJSON struct {
	ID                    int      `json:"id"`
	Status                string   `json:"status"`
	SupporterID           int      `json:"supporterId"`
	SupporterEmailAddress string   `json:"supporterEmailAddress"`
	Type                  *string  `json:"type"`
	TransactionID         *string  `json:"transactionId"`
	Error                 *string  `json:"error"`
	Amount                *float64 `json:"amount"`
	Currency              *string  `json:"currency"`
	RecurringPayment      *bool    `json:"recurringPayment"`
	PaymentType           *string  `json:"paymentType"`
	RecurringFrequency    *string  `json:"recurringFrequency"`
	RecurringDay          *int     `json:"recurringDay"`
	CreatedOn             *int64   `json:"createdOn"`
}

// UnmarshalJSON decodes a page request result. Only the status is required
// to be a known value.
func (r *PageRequestResult) UnmarshalJSON(data []byte) error {
	var raw pageRequestResultJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	status, err := ParsePageRequestResultStatus(raw.Status)
	if err != nil {
		return err
	}

	*r = PageRequestResult{
		ID:                    raw.ID,
		Status:                status,
		SupporterID:           raw.SupporterID,
		SupporterEmailAddress: raw.SupporterEmailAddress,
		Type:                  lookupOptional(raw.Type, pageRequestResultTypes),
		TransactionID:         raw.TransactionID,
		Error:                 raw.Error,
		Amount:                raw.Amount,
		Currency:              raw.Currency,
		RecurringPayment:      raw.RecurringPayment,
		PaymentType:           lookupOptional(raw.PaymentType, paymentTypes),
		RecurringFrequency:    lookupOptional(raw.RecurringFrequency, recurringFrequencies),
		RecurringDay:          raw.RecurringDay,
	}
	if raw.CreatedOn != nil {
		createdOn := fromUnixMilli(*raw.CreatedOn)
		r.CreatedOn = &createdOn
	}
	return nil
}
