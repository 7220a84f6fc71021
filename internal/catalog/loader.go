package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.json
var defaultCatalog []byte

// document mirrors the on-disk catalog format. Pricing rules are decoded in a
// second pass because their concrete type depends on the service key.
type document struct {
	Services map[string]serviceDoc `json:"services"`
}

type serviceDoc struct {
	DisplayName  string          `json:"display_name"`
	Questions    []Question      `json:"questions"`
	PricingRules json.RawMessage `json:"pricing_rules"`
}

// Default loads the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return ParseJSON(defaultCatalog)
}

// Load reads a catalog document from disk. YAML documents are accepted
// alongside JSON, detected by file extension.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseJSON(data)
	}
}

// ParseJSON decodes and validates a JSON catalog document.
func ParseJSON(data []byte) (*Catalog, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w (%w)", err, ErrInvalidCatalog)
	}
	return build(&doc)
}

// ParseYAML decodes a YAML catalog document by normalizing it to JSON first,
// so both formats share one decode path.
func ParseYAML(data []byte) (*Catalog, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("catalog: decode yaml: %w (%w)", err, ErrInvalidCatalog)
	}
	normalized, err := json.Marshal(normalizeYAML(raw))
	if err != nil {
		return nil, fmt.Errorf("catalog: normalize yaml: %w (%w)", err, ErrInvalidCatalog)
	}
	return ParseJSON(normalized)
}

// normalizeYAML converts map[any]any trees from older yaml decoders into
// map[string]any so they can be marshalled as JSON. yaml.v3 already produces
// string keys; nested conversion is kept for robustness with includes.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeYAML(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprintf("%v", k)] = normalizeYAML(val)
		}
		return out
	case []any:
		for i := range t {
			t[i] = normalizeYAML(t[i])
		}
		return t
	default:
		return v
	}
}

func build(doc *document) (*Catalog, error) {
	if len(doc.Services) == 0 {
		return nil, fmt.Errorf("catalog: no services defined: %w", ErrInvalidCatalog)
	}

	c := &Catalog{services: make(map[ServiceKey]*Service, len(doc.Services))}
	for _, key := range ServiceKeys() {
		sd, ok := doc.Services[string(key)]
		if !ok {
			continue
		}
		svc, err := buildService(key, sd)
		if err != nil {
			return nil, err
		}
		c.services[key] = svc
		c.order = append(c.order, key)
	}

	for name := range doc.Services {
		if !ServiceKey(name).Valid() {
			return nil, fmt.Errorf("catalog: service %q: %w", name, ErrUnknownService)
		}
	}
	return c, nil
}

func buildService(key ServiceKey, doc serviceDoc) (*Service, error) {
	if doc.DisplayName == "" {
		return nil, fmt.Errorf("catalog: service %s: missing display_name: %w", key, ErrInvalidCatalog)
	}
	if len(doc.Questions) == 0 {
		return nil, fmt.Errorf("catalog: service %s: no questions: %w", key, ErrInvalidCatalog)
	}

	rules, err := decodeRules(key, doc.PricingRules)
	if err != nil {
		return nil, err
	}
	if min, max := rules.Bounds(); min < 0 || max < min {
		return nil, fmt.Errorf("catalog: service %s: price bounds [%v, %v] invalid: %w", key, min, max, ErrInvalidCatalog)
	}

	seen := make(map[string]int, len(doc.Questions))
	for i := range doc.Questions {
		q := &doc.Questions[i]
		if err := checkQuestion(key, q, seen); err != nil {
			return nil, err
		}
		seen[q.ID] = i
	}

	return &Service{
		Key:         key,
		DisplayName: doc.DisplayName,
		Questions:   doc.Questions,
		Rules:       rules,
	}, nil
}

func checkQuestion(key ServiceKey, q *Question, earlier map[string]int) error {
	if q.ID == "" {
		return fmt.Errorf("catalog: service %s: question with empty id: %w", key, ErrInvalidCatalog)
	}
	if _, dup := earlier[q.ID]; dup {
		return fmt.Errorf("catalog: service %s: duplicate question id %q: %w", key, q.ID, ErrInvalidCatalog)
	}
	if q.Prompt == "" {
		return fmt.Errorf("catalog: service %s: question %s: missing prompt: %w", key, q.ID, ErrInvalidCatalog)
	}
	if !q.Type.valid() {
		return fmt.Errorf("catalog: service %s: question %s: unknown type %q: %w", key, q.ID, q.Type, ErrInvalidCatalog)
	}
	if q.Type == TypeSelect && len(q.Options) == 0 {
		return fmt.Errorf("catalog: service %s: question %s: select without options: %w", key, q.ID, ErrInvalidCatalog)
	}
	if q.Dependency != nil {
		if _, ok := earlier[q.Dependency.QuestionID]; !ok {
			return fmt.Errorf("catalog: service %s: question %s: dependency on %q must reference an earlier question: %w",
				key, q.ID, q.Dependency.QuestionID, ErrInvalidCatalog)
		}
	}
	if q.Type == TypeNumber && q.HasDefault() {
		if _, err := strconv.ParseFloat(q.Default, 64); err != nil {
			return fmt.Errorf("catalog: service %s: question %s: default %q is not numeric: %w", key, q.ID, q.Default, ErrInvalidCatalog)
		}
	}
	return nil
}

// decodeRules picks the typed rule struct for the service kind. The switch is
// exhaustive over the closed set of keys.
func decodeRules(key ServiceKey, raw json.RawMessage) (RuleSet, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("catalog: service %s: missing pricing_rules: %w", key, ErrInvalidCatalog)
	}

	var rules RuleSet
	switch key {
	case ServicePlastering:
		rules = &PlasteringRules{}
	case ServiceCarpentry:
		rules = &CarpentryRules{}
	case ServiceStonework:
		rules = &StoneworkRules{}
	case ServicePainting:
		rules = &PaintingRules{}
	default:
		return nil, fmt.Errorf("catalog: service %q: %w", key, ErrUnknownService)
	}

	if err := json.Unmarshal(raw, rules); err != nil {
		return nil, fmt.Errorf("catalog: service %s: decode pricing_rules: %w (%w)", key, err, ErrInvalidCatalog)
	}
	return rules, nil
}
