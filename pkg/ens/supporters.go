package ens

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// GetSupporterFields returns the supporter fields keyed by name
func (c *Client) GetSupporterFields(ctx context.Context) (map[string]SupporterField, error) {
	var fields []SupporterField
	if err := c.Get(ctx, "supporter/fields", &fields); err != nil {
		return nil, err
	}

	byName := make(map[string]SupporterField, len(fields))
	for _, field := range fields {
		byName[field.Name] = field
	}
	return byName, nil
}

// GetSupporterQuestions returns question summaries keyed by id
func (c *Client) GetSupporterQuestions(ctx context.Context) (map[int]SupporterQuestion, error) {
	var raw []supporterQuestionJSON
	if err := c.Get(ctx, "supporter/questions", &raw); err != nil {
		return nil, err
	}

	byID := make(map[int]SupporterQuestion, len(raw))
	for _, r := range raw {
		question, err := r.summary()
		if err != nil {
			return nil, err
		}
		byID[question.ID] = question
	}
	return byID, nil
}

// GetSupporterQuestion returns a single question with its details. ENS answers
// an unknown id with an empty list, reported as *NotFoundError.
func (c *Client) GetSupporterQuestion(ctx context.Context, id int) (*SupporterQuestion, error) {
	var raw []supporterQuestionJSON
	if err := c.Get(ctx, fmt.Sprintf("supporter/questions/%d", id), &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, &NotFoundError{StatusCode: http.StatusNotFound}
	}

	question, err := raw[0].detail()
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// GetSupporterByID looks up a supporter by id
func (c *Client) GetSupporterByID(ctx context.Context, id int, opts SupporterQueryOptions) (*Supporter, error) {
	return c.getSupporter(ctx, fmt.Sprintf("supporter/%d", id), supporterQuery("", opts))
}

// GetSupporterByEmailAddress looks up a supporter by email address
func (c *Client) GetSupporterByEmailAddress(ctx context.Context, email string, opts SupporterQueryOptions) (*Supporter, error) {
	return c.getSupporter(ctx, "supporter", supporterQuery(email, opts))
}

// CreateSupporter creates a supporter with the given custom fields and
// returns its id
func (c *Client) CreateSupporter(ctx context.Context, email string, fields map[string]any) (int, error) {
	payload := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		payload[k] = v
	}
	payload[EmailAddressField] = email

	var created struct {
		ID int `json:"id"`
	}
	if err := c.Post(ctx, "supporter", &created, WithJSON(payload)); err != nil {
		return 0, err
	}
	return created.ID, nil
}

func (c *Client) getSupporter(ctx context.Context, endpoint string, query url.Values) (*Supporter, error) {
	var supporter Supporter
	if err := c.Get(ctx, endpoint, &supporter, WithQuery(query)); err != nil {
		return nil, err
	}
	return &supporter, nil
}

func supporterQuery(email string, opts SupporterQueryOptions) url.Values {
	query := url.Values{}
	if email != "" {
		query.Set("email", email)
	}
	if opts.IncludeMemberships {
		query.Set("includeMemberships", "true")
	}
	if opts.IncludeQuestions {
		query.Set("includeQuestions", "true")
	}
	return query
}
