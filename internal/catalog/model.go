// Package catalog holds the immutable question-and-pricing schema for the
// services homequote can estimate. The catalog is loaded once at startup and
// never mutated afterwards.
package catalog

import (
	"encoding/json"
	"fmt"
)

// ServiceKey identifies one of the closed set of supported services.
type ServiceKey string

const (
	ServicePlastering ServiceKey = "plastering"
	ServiceCarpentry  ServiceKey = "carpentry"
	ServiceStonework  ServiceKey = "stonework"
	ServicePainting   ServiceKey = "painting"
)

// Valid reports whether k names a supported service.
func (k ServiceKey) Valid() bool {
	switch k {
	case ServicePlastering, ServiceCarpentry, ServiceStonework, ServicePainting:
		return true
	}
	return false
}

// ServiceKeys returns the supported keys in catalog order.
func ServiceKeys() []ServiceKey {
	return []ServiceKey{ServicePlastering, ServiceCarpentry, ServiceStonework, ServicePainting}
}

// QuestionType describes how a raw answer is interpreted.
type QuestionType string

const (
	TypeNumber  QuestionType = "number"
	TypeSelect  QuestionType = "select"
	TypeBoolean QuestionType = "boolean"
	TypeColor   QuestionType = "color"
	TypeText    QuestionType = "text"
)

func (t QuestionType) valid() bool {
	switch t {
	case TypeNumber, TypeSelect, TypeBoolean, TypeColor, TypeText:
		return true
	}
	return false
}

// Option is one selectable answer for a select question.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// RuleType discriminates validation rule variants.
type RuleType string

const (
	RuleRequired  RuleType = "required"
	RuleRange     RuleType = "range"
	RuleMinLength RuleType = "min_length"
	RuleHexColor  RuleType = "hex_color"
)

// ValidationRule is the tagged validation variant declared on a question.
// Only the fields matching Type are meaningful.
type ValidationRule struct {
	Type          RuleType `json:"type" yaml:"type"`
	Min           float64  `json:"min,omitempty" yaml:"min,omitempty"`
	Max           float64  `json:"max,omitempty" yaml:"max,omitempty"`
	MinLength     int      `json:"min_length,omitempty" yaml:"min_length,omitempty"`
	AllowFreeText bool     `json:"allow_free_text,omitempty" yaml:"allow_free_text,omitempty"`
}

// Dependency gates a question's visibility on a prior answer. The question is
// presented only when the referenced answer equals one of Values.
type Dependency struct {
	QuestionID string
	Values     []string
}

// Matches reports whether the given prior answer satisfies the dependency.
// Membership is explicit string equality, never truthiness.
func (d *Dependency) Matches(answer string) bool {
	for _, v := range d.Values {
		if answer == v {
			return true
		}
	}
	return false
}

// dependencyDoc accepts both a single value and a list of values under the
// "value" key, matching the catalog document format.
type dependencyDoc struct {
	QuestionID string          `json:"question_id"`
	Value      json.RawMessage `json:"value"`
}

// UnmarshalJSON decodes "value" as either a string or a list of strings.
func (d *Dependency) UnmarshalJSON(data []byte) error {
	var doc dependencyDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	d.QuestionID = doc.QuestionID
	d.Values = nil
	if len(doc.Value) == 0 {
		return fmt.Errorf("catalog: dependency on %q has no value", doc.QuestionID)
	}

	var single string
	if err := json.Unmarshal(doc.Value, &single); err == nil {
		d.Values = []string{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(doc.Value, &many); err == nil {
		d.Values = many
		return nil
	}
	return fmt.Errorf("catalog: dependency value must be a string or list of strings")
}

// MarshalJSON writes a single value back as a scalar for round-trip fidelity.
func (d Dependency) MarshalJSON() ([]byte, error) {
	var value any = d.Values
	if len(d.Values) == 1 {
		value = d.Values[0]
	}
	return json.Marshal(struct {
		QuestionID string `json:"question_id"`
		Value      any    `json:"value"`
	}{QuestionID: d.QuestionID, Value: value})
}

// Question is one declaratively described input of a service schema.
type Question struct {
	ID           string          `json:"id"`
	Prompt       string          `json:"prompt"`
	Type         QuestionType    `json:"type"`
	Unit         string          `json:"unit,omitempty"`
	Options      []Option        `json:"options,omitempty"`
	Validation   *ValidationRule `json:"validation,omitempty"`
	Dependency   *Dependency     `json:"dependency,omitempty"`
	Default      string          `json:"default,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
}

// HasDefault reports whether the question declares a default value.
func (q *Question) HasDefault() bool {
	return q.Default != ""
}

// Service is a single offering: display name, ordered question schema and the
// typed pricing rules for the service.
type Service struct {
	Key         ServiceKey
	DisplayName string
	Questions   []Question
	Rules       RuleSet
}

// Question returns the question with the given id, if present.
func (s *Service) Question(id string) (*Question, bool) {
	for i := range s.Questions {
		if s.Questions[i].ID == id {
			return &s.Questions[i], true
		}
	}
	return nil, false
}

// Catalog is the full immutable schema keyed by service.
type Catalog struct {
	services map[ServiceKey]*Service
	order    []ServiceKey
}

// Service returns the definition for the given key.
func (c *Catalog) Service(key ServiceKey) (*Service, bool) {
	s, ok := c.services[key]
	return s, ok
}

// Services returns all service definitions in catalog order.
func (c *Catalog) Services() []*Service {
	out := make([]*Service, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.services[key])
	}
	return out
}

// Len returns the number of services in the catalog.
func (c *Catalog) Len() int { return len(c.order) }
