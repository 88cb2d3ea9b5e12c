package core_test

import (
	"testing"

	"tooling-procurement/internal/core"
)

func TestResolveBOM_TN9001(t *testing.T) {
	lines := core.ResolveBOM("TN-9001")
	if len(lines) != 6 {
		t.Fatalf("expected 6 BOM lines, got %d", len(lines))
	}
	want := []struct {
		name  string
		price string
		qty   int
	}{
		{"Base Plate", "250", 1},
		{"Guide Pin", "45", 4},
		{"Guide Bush", "85", 2},
		{"Die Block", "1200", 1},
		{"Stripper Plate", "320", 1},
		{"Punch", "450", 2},
	}
	for i, w := range want {
		if lines[i].Name != w.name || lines[i].Quantity != w.qty {
			t.Errorf("line %d: expected %s x%d, got %s x%d", i, w.name, w.qty, lines[i].Name, lines[i].Quantity)
		}
		assertDecimal(t, w.name+" unit price", lines[i].UnitPrice, w.price)
	}
}

func TestResolveBOM_UnknownToolIsEmpty(t *testing.T) {
	if lines := core.ResolveBOM("TN-0000"); len(lines) != 0 {
		t.Errorf("expected no lines for unknown tool, got %d", len(lines))
	}
}

func TestResolveBOM_ReturnsCopy(t *testing.T) {
	lines := core.ResolveBOM("TN-9001")
	lines[0].Name = "Changed"
	if again := core.ResolveBOM("TN-9001"); again[0].Name != "Base Plate" {
		t.Errorf("catalog was modified through a returned slice: %s", again[0].Name)
	}
}

func TestBOMToolNumbers_Sorted(t *testing.T) {
	tools := core.BOMToolNumbers()
	if len(tools) < 3 {
		t.Fatalf("expected at least 3 tools, got %v", tools)
	}
	for i := 1; i < len(tools); i++ {
		if tools[i-1] > tools[i] {
			t.Errorf("tool numbers not sorted: %v", tools)
		}
	}
}

func TestParseBOMCatalog_Rejects(t *testing.T) {
	cases := map[string]string{
		"bad price":     "tools:\n  T1:\n    - {id: A, name: A, unit_price: \"abc\", quantity: 1}\n",
		"zero quantity": "tools:\n  T1:\n    - {id: A, name: A, unit_price: \"1\", quantity: 0}\n",
		"not yaml":      "tools: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := core.ParseBOMCatalog([]byte(doc)); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}
