package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/halmarket/halmarket-backend/pkg/migrate"
)

func TestOffersMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_supplier_offers.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no supplier offers migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS supplier_offers",
		"FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE",
		"FOREIGN KEY (region_id) REFERENCES regions(id) ON DELETE CASCADE",
		"CHECK (price >= 0)",
		"CHECK (min_order_quantity >= 1)",
		"UNIQUE (product_id, region_id, supplier_id)",
		"DROP TABLE IF EXISTS supplier_offers",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestCommissionMigrationSeedsBothClasses(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_commission_configs.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no commission config migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	for _, sub := range []string{"'b2b', 0.3000", "'b2c', 0.5000"} {
		if !strings.Contains(content, sub) {
			t.Errorf("missing seed row %q", sub)
		}
	}
}

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("shipped migrations failed validation: %v", err)
	}
}
