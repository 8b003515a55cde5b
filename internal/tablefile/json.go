package tablefile

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ogre-kun/outliers-calculator/internal/qdixon"
)

type jsonDocument struct {
	Name    string      `json:"name"`
	Entries []jsonEntry `json:"entries"`
}

// Value accepts both 0.970 and "0.970".
type jsonEntry struct {
	Size  int              `json:"size"`
	Value *decimal.Decimal `json:"value"`
}

type jsonOutEntry struct {
	Size  int    `json:"size"`
	Value string `json:"value"`
}

func decodeJSON(data []byte) (string, []entry, error) {
	var doc jsonDocument
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return "", nil, err
	}

	entries := make([]entry, 0, len(doc.Entries))
	for i, e := range doc.Entries {
		if e.Value == nil {
			return "", nil, fmt.Errorf("entries[%d]: missing value", i)
		}
		entries = append(entries, entry{Size: e.Size, Value: *e.Value})
	}
	return doc.Name, entries, nil
}

func encodeJSON(table *qdixon.CriticalTable) ([]byte, error) {
	doc := struct {
		Name    string         `json:"name"`
		Entries []jsonOutEntry `json:"entries"`
	}{Name: table.Name()}
	for _, e := range table.Entries() {
		doc.Entries = append(doc.Entries, jsonOutEntry{Size: e.Size, Value: valueText(e.Value)})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
