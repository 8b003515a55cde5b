package tablefile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	gotoml "github.com/pelletier/go-toml/v2"
	"github.com/shopspring/decimal"

	"github.com/ogre-kun/outliers-calculator/internal/qdixon"
)

type tomlDocument struct {
	Name    string      `toml:"name"`
	Entries []tomlEntry `toml:"entries"`
}

type tomlEntry struct {
	Size  int         `toml:"size"`
	Value interface{} `toml:"value"`
}

type tomlOutDocument struct {
	Name    string         `toml:"name"`
	Entries []tomlOutEntry `toml:"entries"`
}

type tomlOutEntry struct {
	Size  int    `toml:"size"`
	Value string `toml:"value"`
}

func decodeTOML(data []byte) (string, []entry, error) {
	var doc tomlDocument
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return "", nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return "", nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}

	entries := make([]entry, 0, len(doc.Entries))
	for i, e := range doc.Entries {
		v, err := tomlValue(e.Value)
		if err != nil {
			return "", nil, fmt.Errorf("entries[%d]: %w", i, err)
		}
		entries = append(entries, entry{Size: e.Size, Value: v})
	}
	return doc.Name, entries, nil
}

func tomlValue(raw interface{}) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case string:
		return decimal.NewFromString(v)
	case int64:
		return decimal.NewFromInt(v), nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case nil:
		return decimal.Zero, fmt.Errorf("missing value")
	default:
		return decimal.Zero, fmt.Errorf("value has unsupported type %T", raw)
	}
}

func encodeTOML(table *qdixon.CriticalTable) ([]byte, error) {
	doc := tomlOutDocument{Name: table.Name()}
	for _, e := range table.Entries() {
		doc.Entries = append(doc.Entries, tomlOutEntry{Size: e.Size, Value: valueText(e.Value)})
	}
	return gotoml.Marshal(doc)
}
