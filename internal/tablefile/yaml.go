package tablefile

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/ogre-kun/outliers-calculator/internal/qdixon"
)

type yamlDocument struct {
	Name    string      `yaml:"name"`
	Entries []yamlEntry `yaml:"entries"`
}

// Value decodes as the raw scalar text, so 0.970 keeps its digits.
type yamlEntry struct {
	Size  int    `yaml:"size"`
	Value string `yaml:"value"`
}

func decodeYAML(data []byte) (string, []entry, error) {
	var doc yamlDocument
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return "", nil, err
	}

	entries := make([]entry, 0, len(doc.Entries))
	for i, e := range doc.Entries {
		if e.Value == "" {
			return "", nil, fmt.Errorf("entries[%d]: missing value", i)
		}
		v, err := decimal.NewFromString(e.Value)
		if err != nil {
			return "", nil, fmt.Errorf("entries[%d]: %w", i, err)
		}
		entries = append(entries, entry{Size: e.Size, Value: v})
	}
	return doc.Name, entries, nil
}

func encodeYAML(table *qdixon.CriticalTable) ([]byte, error) {
	doc := yamlDocument{Name: table.Name()}
	for _, e := range table.Entries() {
		doc.Entries = append(doc.Entries, yamlEntry{Size: e.Size, Value: valueText(e.Value)})
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
