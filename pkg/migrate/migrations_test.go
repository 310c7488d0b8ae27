package migrate

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func TestValidateShippedMigrations(t *testing.T) {
	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("shipped migrations failed validation: %v", err)
	}
}

var itemFKRe = regexp.MustCompile(`item_id\s+uuid\s+REFERENCES\s+items\s*\(id\)\s+ON DELETE\s+(\w+(?:\s+\w+)?)`)

// Financial and historical rows must survive item deletion, so every
// item_id foreign key weakens to SET NULL instead of cascading.
func TestItemReferencesPreserveHistory(t *testing.T) {
	entries, err := os.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}

	checked := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		b, err := os.ReadFile(filepath.Join("migrations", e.Name()))
		if err != nil {
			t.Fatalf("read %s: %v", e.Name(), err)
		}
		for _, m := range itemFKRe.FindAllStringSubmatch(string(b), -1) {
			checked++
			if !strings.EqualFold(m[1], "SET NULL") {
				t.Fatalf("%s: item_id reference uses ON DELETE %s, want SET NULL", e.Name(), m[1])
			}
		}
	}

	// sales, item_history, item_snapshots
	if checked != 3 {
		t.Fatalf("expected 3 item_id foreign keys across migrations, found %d", checked)
	}
}
