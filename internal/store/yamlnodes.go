package store

import (
	"fmt"
	"strings"

	"fjacquet/sie-report/internal/models"
	"fjacquet/sie-report/internal/parsererror"

	"gopkg.in/yaml.v3"
)

// constantEntry is one global constant as written in constants.yaml.
type constantEntry struct {
	Name      string
	Value     string
	IsPercent bool
}

// parseConstantsYAML accepts either a mapping
//
//	skattesats: 20.6
//	statslaneranta: {value: 2.62, percent: true}
//
// or a sequence of {name, value, percent} mappings.
func parseConstantsYAML(data []byte, source string) ([]constantEntry, error) {
	root, err := documentRoot(data)
	if err != nil || root == nil {
		return nil, err
	}

	var entries []constantEntry
	switch root.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(root.Content); i += 2 {
			key, val := root.Content[i], root.Content[i+1]
			entry := constantEntry{Name: key.Value}
			if val.Kind == yaml.MappingNode {
				fillConstant(&entry, val)
			} else {
				entry.Value = val.Value
			}
			entries = append(entries, entry)
		}
	case yaml.SequenceNode:
		for _, item := range root.Content {
			if item.Kind != yaml.MappingNode {
				return nil, &parsererror.ParseError{Parser: source, Field: "constants", Value: item.Value, Err: fmt.Errorf("expected mapping at line %d", item.Line)}
			}
			var entry constantEntry
			fillConstant(&entry, item)
			entries = append(entries, entry)
		}
	default:
		return nil, &parsererror.ParseError{Parser: source, Field: "constants", Value: root.Value, Err: fmt.Errorf("expected mapping or sequence")}
	}
	return entries, nil
}

func fillConstant(entry *constantEntry, node *yaml.Node) {
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		switch strings.ToLower(key.Value) {
		case "name", "variable_name":
			entry.Name = val.Value
		case "value":
			entry.Value = val.Value
		case "percent", "is_percent":
			entry.IsPercent = isTrue(val.Value)
		}
	}
}

// toConstants converts entries, normalising percentages. Unparseable values
// are returned in skipped.
func toConstants(entries []constantEntry, source string) (models.Constants, []error) {
	out := models.Constants{}
	var skipped []error
	for _, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			continue
		}
		v, err := models.ParseAmount(e.Value)
		if err != nil {
			skipped = append(skipped, &parsererror.ParseError{Parser: source, Field: name, Value: e.Value, Err: err})
			continue
		}
		out[name] = models.NormalizeConstant(name, v, e.IsPercent)
	}
	return out, skipped
}

// parseDescriptionsYAML reads a mapping of account id to description. Keys are
// kept as written so "1930" and 1930 are equivalent.
func parseDescriptionsYAML(data []byte, source string) (map[string]string, error) {
	root, err := documentRoot(data)
	if err != nil || root == nil {
		return map[string]string{}, err
	}
	if root.Kind != yaml.MappingNode {
		return nil, &parsererror.ParseError{Parser: source, Field: "accounts", Value: root.Value, Err: fmt.Errorf("expected mapping")}
	}
	out := make(map[string]string, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		out[strings.TrimSpace(root.Content[i].Value)] = root.Content[i+1].Value
	}
	return out, nil
}

// documentRoot returns the top-level node, or nil for an empty document.
func documentRoot(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, nil
	}
	return doc.Content[0], nil
}

func isTrue(s string) bool {
	b, err := parseTriState(s)
	return err == nil && b != nil && *b
}
