package db

import (
	"context"
	"strings"
	"testing"
)

func TestMigrations_Ordered(t *testing.T) {
	names, err := Migrations()
	if err != nil {
		t.Fatalf("Migrations: %v", err)
	}
	if len(names) == 0 {
		t.Fatal("expected embedded migrations")
	}
	if names[0] != "001_init.sql" {
		t.Errorf("expected 001_init.sql first, got %s", names[0])
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("migrations out of order: %s before %s", names[i-1], names[i])
		}
	}
}

func TestInitMigration_CreatesCoreTables(t *testing.T) {
	data, err := migrationFS.ReadFile("migrations/001_init.sql")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	sqlText := string(data)
	for _, table := range []string{
		"users", "suppliers", "projects", "purchase_requisitions", "pr_items",
		"quotations", "tool_handovers", "inventory_items", "inventory_movements",
		"spares_requests", "document_sequences", "tax_rates",
	} {
		if !strings.Contains(sqlText, "CREATE TABLE IF NOT EXISTS "+table+" ") {
			t.Errorf("001_init.sql does not create %s", table)
		}
	}
}

func TestNewPool_RequiresURL(t *testing.T) {
	if _, err := NewPool(context.Background(), ""); err == nil {
		t.Error("expected error for empty connection string")
	}
}
