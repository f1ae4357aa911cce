package ens

import (
	"context"
	"fmt"
	"net/url"
)

// GetPages lists pages of a type, optionally filtered by status
func (c *Client) GetPages(ctx context.Context, pageType PageType, status *PageStatus) ([]Page, error) {
	query := url.Values{"type": {string(pageType)}}
	if status != nil {
		query.Set("status", string(*status))
	}

	var pages []Page
	if err := c.Get(ctx, "page", &pages, WithQuery(query)); err != nil {
		return nil, err
	}
	return pages, nil
}

// GetPage returns a single page
func (c *Client) GetPage(ctx context.Context, id int) (*Page, error) {
	var page Page
	if err := c.Get(ctx, fmt.Sprintf("page/%d", id), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ProcessPage submits payload to a page, e.g. a donation or petition signature
func (c *Client) ProcessPage(ctx context.Context, id int, payload any) (*PageRequestResult, error) {
	if payload == nil {
		payload = map[string]any{}
	}

	var result PageRequestResult
	if err := c.Post(ctx, fmt.Sprintf("page/%d/process", id), &result, WithJSON(payload)); err != nil {
		return nil, err
	}
	return &result, nil
}
