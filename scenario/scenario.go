// Package scenario implements a data-driven HTTP test engine. Scenarios
// are declared in a YAML document grouped by category; the runner
// resolves prerequisite chains, substitutes placeholders, issues the
// HTTP calls and validates responses structurally, collecting results
// without ever letting one scenario's failure abort the batch.
package scenario

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario describes one HTTP interaction and its expected outcome.
type Scenario struct {
	Description                 string            `yaml:"description"`
	Endpoint                    string            `yaml:"endpoint"`
	Method                      string            `yaml:"method"`
	Headers                     map[string]string `yaml:"headers"`
	ReqBody                     map[string]any    `yaml:"reqBody"`
	Expected                    Expected          `yaml:"expected"`
	StepsToRunBeforeThisUseCase []string          `yaml:"stepsToRunBeforeThisUseCase"`
}

// Expected declares the response checks for a scenario. All declared
// checks run independently; every failed check is reported.
type Expected struct {
	StatusCode    int            `yaml:"statusCode"`
	ResponseType  string         `yaml:"responseType"`
	ResponseShape map[string]any `yaml:"responseShape"`
	ResponseMatch map[string]any `yaml:"responseMatch"`
	Assertions    []Assertion    `yaml:"assertions"`
	SaveToContext map[string]any `yaml:"saveToContext"`
}

// Assertion is a custom response check. Path optionally selects a value
// inside the body; empty means the body itself.
type Assertion struct {
	Type  string `yaml:"type"`
	Path  string `yaml:"path"`
	Value int    `yaml:"value"`
}

// Entry pairs a scenario with its key, preserving declaration order.
type Entry struct {
	Key      string
	Scenario *Scenario
}

// Category is an ordered group of scenarios.
type Category struct {
	Name    string
	Entries []Entry
	index   map[string]*Scenario
}

// Lookup returns the scenario for key, or nil.
func (c *Category) Lookup(key string) *Scenario {
	return c.index[key]
}

// Document is a full scenario definition file: categories in
// declaration order, each with its scenarios in declaration order.
type Document struct {
	Categories []*Category
	byName     map[string]*Category
}

// Category returns the named category, or nil.
func (d *Document) Category(name string) *Category {
	return d.byName[name]
}

// Resolve finds a scenario by reference and returns its canonical
// "category/key" name. A qualified reference is looked up directly; a
// bare key scans every category in document order and the first match
// wins. Canonical names let callers treat a bare key and its qualified
// form as the same step.
func (d *Document) Resolve(ref string) (string, *Scenario) {
	if cat, key, ok := strings.Cut(ref, "/"); ok {
		if c := d.byName[cat]; c != nil {
			return ref, c.Lookup(key)
		}
		return ref, nil
	}
	for _, c := range d.Categories {
		if sc := c.Lookup(ref); sc != nil {
			return c.Name + "/" + ref, sc
		}
	}
	return ref, nil
}

// Load reads and parses a scenario document from disk.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a scenario document, preserving the declaration order
// of categories and scenarios.
func Parse(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("invalid scenario document: %w", err)
	}
	if len(root.Content) == 0 {
		return &Document{byName: map[string]*Category{}}, nil
	}

	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("scenario document must be a mapping of categories")
	}

	doc := &Document{byName: map[string]*Category{}}
	for i := 0; i < len(top.Content); i += 2 {
		nameNode, bodyNode := top.Content[i], top.Content[i+1]
		if bodyNode.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("category %q must be a mapping of scenarios", nameNode.Value)
		}

		cat := &Category{Name: nameNode.Value, index: map[string]*Scenario{}}
		for j := 0; j < len(bodyNode.Content); j += 2 {
			keyNode, scNode := bodyNode.Content[j], bodyNode.Content[j+1]

			var sc Scenario
			if err := scNode.Decode(&sc); err != nil {
				return nil, fmt.Errorf("scenario %s/%s: %w", cat.Name, keyNode.Value, err)
			}
			if _, dup := cat.index[keyNode.Value]; dup {
				return nil, fmt.Errorf("duplicate scenario key %q in category %q", keyNode.Value, cat.Name)
			}
			cat.Entries = append(cat.Entries, Entry{Key: keyNode.Value, Scenario: &sc})
			cat.index[keyNode.Value] = &sc
		}

		if _, dup := doc.byName[cat.Name]; dup {
			return nil, fmt.Errorf("duplicate category %q", cat.Name)
		}
		doc.Categories = append(doc.Categories, cat)
		doc.byName[cat.Name] = cat
	}

	return doc, nil
}
