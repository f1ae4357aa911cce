package ens

import (
	"encoding/json"
	"time"
)

// Page is a campaign page (donation form, petition, ...)
type Page struct {
	ID              int
	CampaignID      int
	Name            string
	Title           string
	Type            PageType
	SubType         *PageType
	ClientID        int
	CreatedOn       time.Time
	ModifiedOn      time.Time
	CampaignBaseURL string
	CampaignStatus  PageStatus
	DefaultLocale   string
}

type pageJSON struct {
	ID              int     `json:"id"`
	CampaignID      int     `json:"campaignId"`
	Name            string  `json:"name"`
	Title           string  `json:"title"`
	Type            string  `json:"type"`
	SubType         *string `json:"subType"`
	ClientID        int     `json:"clientId"`
	CreatedOn       int64   `json:"createdOn"`
	ModifiedOn      int64   `json:"modifiedOn"`
	CampaignBaseURL string  `json:"campaignBaseUrl"`
	CampaignStatus  string  `json:"campaignStatus"`
	DefaultLocale   string  `json:"defaultLocale"`
}

// UnmarshalJSON decodes a page. The type and campaign status must be known
// values; an unknown subtype decodes as nil.
func (p *Page) UnmarshalJSON(data []byte) error {
	var raw pageJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	pageType, err := ParsePageType(raw.Type)
	if err != nil {
		return err
	}
	status, err := ParsePageStatus(raw.CampaignStatus)
	if err != nil {
		return err
	}

	*p = Page{
		ID:              raw.ID,
		CampaignID:      raw.CampaignID,
		Name:            raw.Name,
		Title:           raw.Title,
		Type:            pageType,
		SubType:         lookupOptional(raw.SubType, PageTypes),
		ClientID:        raw.ClientID,
		CreatedOn:       fromUnixMilli(raw.CreatedOn),
		ModifiedOn:      fromUnixMilli(raw.ModifiedOn),
		CampaignBaseURL: raw.CampaignBaseURL,
		CampaignStatus:  status,
		DefaultLocale:   raw.DefaultLocale,
	}
	return nil
}

func fromUnixMilli(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
