package core

import (
	_ "embed"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// BOMLine is one catalog component of a tool.
type BOMLine struct {
	ID            string          `yaml:"id" json:"id"`
	Name          string          `yaml:"name" json:"name"`
	Specification string          `yaml:"specification" json:"specification"`
	UnitPrice     decimal.Decimal `yaml:"-" json:"unit_price"`
	Quantity      int             `yaml:"quantity" json:"quantity"`
}

// bomLineYAML mirrors BOMLine with the price kept as text so no float
// rounding happens on the way in.
type bomLineYAML struct {
	BOMLine   `yaml:",inline"`
	UnitPrice string `yaml:"unit_price"`
}

//go:embed bom_catalog.yaml
var bomCatalogYAML []byte

var bomCatalog = mustParseBOMCatalog(bomCatalogYAML)

func mustParseBOMCatalog(data []byte) map[string][]BOMLine {
	catalog, err := ParseBOMCatalog(data)
	if err != nil {
		panic("bom catalog: " + err.Error())
	}
	return catalog
}

// ParseBOMCatalog decodes a YAML catalog of the form `tools: {<toolNumber>: [lines]}`.
func ParseBOMCatalog(data []byte) (map[string][]BOMLine, error) {
	var doc struct {
		Tools map[string][]bomLineYAML `yaml:"tools"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse bom catalog: %w", err)
	}

	catalog := make(map[string][]BOMLine, len(doc.Tools))
	for tool, raw := range doc.Tools {
		lines := make([]BOMLine, 0, len(raw))
		for _, r := range raw {
			price, err := decimal.NewFromString(r.UnitPrice)
			if err != nil {
				return nil, fmt.Errorf("tool %s line %s: invalid unit_price %q: %w", tool, r.ID, r.UnitPrice, err)
			}
			if r.Quantity <= 0 {
				return nil, fmt.Errorf("tool %s line %s: quantity must be positive", tool, r.ID)
			}
			l := r.BOMLine
			l.UnitPrice = price
			lines = append(lines, l)
		}
		catalog[tool] = lines
	}
	return catalog, nil
}

// ResolveBOM returns the catalog lines for a tool number. An unknown tool
// yields an empty slice: the caller falls back to manual item entry.
func ResolveBOM(toolNumber string) []BOMLine {
	lines := bomCatalog[toolNumber]
	out := make([]BOMLine, len(lines))
	copy(out, lines)
	return out
}

// BOMToolNumbers lists the catalog tool numbers in sorted order.
func BOMToolNumbers() []string {
	out := make([]string, 0, len(bomCatalog))
	for tool := range bomCatalog {
		out = append(out, tool)
	}
	sort.Strings(out)
	return out
}
