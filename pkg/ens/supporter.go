package ens

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// EmailAddressField is the name ENS uses for a supporter's email address
const EmailAddressField = "Email Address"

// reservedSupporterKeys are the supporter properties that are not custom fields
var reservedSupporterKeys = []string{"supporterId", "suppressed", EmailAddressField, "memberships", "questions"}

// Supporter is a constituent record. Fields holds every custom field; it is
// nil when the supporter has none.
type Supporter struct {
	ID           int
	Suppressed   bool
	EmailAddress string
	Fields       map[string]any
	// Memberships and Questions are only present when requested
	Memberships json.RawMessage
	Questions   json.RawMessage
}

// UnmarshalJSON decodes a supporter, moving all non-reserved properties into Fields.
func (s *Supporter) UnmarshalJSON(data []byte) error {
	var core struct {
		ID           int    `json:"supporterId"`
		Suppressed   bool   `json:"suppressed"`
		EmailAddress string `json:"Email Address"`
	}
	if err := json.Unmarshal(data, &core); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	supporter := Supporter{
		ID:           core.ID,
		Suppressed:   core.Suppressed,
		EmailAddress: core.EmailAddress,
		Memberships:  optionalRaw(raw["memberships"]),
		Questions:    optionalRaw(raw["questions"]),
	}

	for _, key := range reservedSupporterKeys {
		delete(raw, key)
	}
	if len(raw) > 0 {
		supporter.Fields = make(map[string]any, len(raw))
		for key, value := range raw {
			decoded, err := decodeNumber(value)
			if err != nil {
				return fmt.Errorf("failed to decode supporter field %q: %w", key, err)
			}
			supporter.Fields[key] = decoded
		}
	}

	*s = supporter
	return nil
}

// Field returns a custom field value as a string
func (s *Supporter) Field(name string) (string, error) {
	value, ok := s.Fields[name]
	if !ok || value == nil {
		return "", &FieldNotFoundError{Field: name}
	}

	switch v := value.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		return fmt.Sprintf("%t", v), nil
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(encoded), nil
	}
}

// SupporterQueryOptions selects optional data included in a supporter lookup
type SupporterQueryOptions struct {
	IncludeMemberships bool
	IncludeQuestions   bool
}

// SupporterField describes a field available on supporter records
type SupporterField struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Tag      string `json:"tag"`
	Property string `json:"property"`
}

// Tagged reports whether the field is mapped to a standard ENS tag
func (f SupporterField) Tagged() bool {
	return f.Tag != "Not Tagged"
}

// SupporterQuestion is a question or opt-in on supporter records. The
// question list returns summaries; Details is only set when the question is
// fetched on its own.
type SupporterQuestion struct {
	ID         int
	QuestionID int
	Name       string
	Type       SupporterQuestionType
	Details    *SupporterQuestionDetails
}

// SupporterQuestionDetails is the detail part of a single question lookup
type SupporterQuestionDetails struct {
	Locale        *string
	Label         *string
	HTMLFieldType *SupporterQuestionHTMLFieldType
	Content       json.RawMessage
}

// HasDetails reports whether the question was decoded with its details
func (q SupporterQuestion) HasDetails() bool {
	return q.Details != nil
}

type supporterQuestionJSON struct {
	ID            int             `json:"id"`
	QuestionID    int             `json:"questionId"`
	Name          string          `json:"name"`
	Type          string          `json:"type"`
	Locale        *string         `json:"locale"`
	Label         *string         `json:"label"`
	HTMLFieldType *string         `json:"htmlFieldType"`
	Content       json.RawMessage `json:"content"`
}

func (j supporterQuestionJSON) summary() (SupporterQuestion, error) {
	questionType, err := ParseSupporterQuestionType(j.Type)
	if err != nil {
		return SupporterQuestion{}, err
	}
	return SupporterQuestion{
		ID:         j.ID,
		QuestionID: j.QuestionID,
		Name:       j.Name,
		Type:       questionType,
	}, nil
}

func (j supporterQuestionJSON) detail() (SupporterQuestion, error) {
	question, err := j.summary()
	if err != nil {
		return question, err
	}
	question.Details = &SupporterQuestionDetails{
		Locale:        j.Locale,
		Label:         j.Label,
		HTMLFieldType: lookupOptional(j.HTMLFieldType, supporterQuestionHTMLFieldTypes),
		Content:       optionalRaw(j.Content),
	}
	return question, nil
}

func optionalRaw(v json.RawMessage) json.RawMessage {
	if len(v) == 0 || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		return nil
	}
	return v
}

func decodeNumber(data json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
