package classifier

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dispatchd/dispatchd/pkg/models"
)

func TestDefaultLexicons_CoverAllCategories(t *testing.T) {
	set := DefaultLexicons()
	for _, cat := range models.Categories() {
		lex, ok := set[cat]
		if !ok || len(lex) == 0 {
			t.Errorf("category %q has no default lexicon", cat)
		}
		for term, w := range lex {
			if w != 1.0 {
				t.Errorf("default weight for %q/%q = %v, want 1.0", cat, term, w)
			}
		}
	}
}

func TestSaveLoadLexicons_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicons.yaml")

	set := DefaultLexicons()
	set[models.CategoryTechnical]["code"] = 1.5

	if err := SaveLexicons(path, set); err != nil {
		t.Fatalf("SaveLexicons failed: %v", err)
	}

	loaded, err := LoadLexicons(path)
	if err != nil {
		t.Fatalf("LoadLexicons failed: %v", err)
	}

	if got := loaded[models.CategoryTechnical]["code"]; got != 1.5 {
		t.Errorf("loaded weight = %v, want 1.5", got)
	}
	if len(loaded) != len(set) {
		t.Errorf("loaded %d categories, want %d", len(loaded), len(set))
	}
}

func TestLoadLexicons_UnknownCategory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicons.yaml")
	content := "categories:\n  bogus:\n    term: 1.0\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadLexicons(path); err == nil {
		t.Error("LoadLexicons accepted an unknown category")
	}
}

func TestLoadLexicons_MissingCategory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicons.yaml")
	content := "categories:\n  technical:\n    code: 1.0\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadLexicons(path); err == nil {
		t.Error("LoadLexicons accepted a file missing most categories")
	}
}

func TestLoadLexicons_ClampsWeights(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicons.yaml")

	set := DefaultLexicons()
	if err := SaveLexicons(path, set); err != nil {
		t.Fatal(err)
	}

	// Rewrite one weight out of bounds by editing the saved set.
	set[models.CategoryTechnical]["code"] = 99.0
	set[models.CategoryStrategic]["plan"] = 0.0001
	if err := SaveLexicons(path, set); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadLexicons(path)
	if err != nil {
		t.Fatalf("LoadLexicons failed: %v", err)
	}
	if got := loaded[models.CategoryTechnical]["code"]; got != MaxKeywordWeight {
		t.Errorf("overweight term loaded as %v, want %v", got, MaxKeywordWeight)
	}
	if got := loaded[models.CategoryStrategic]["plan"]; got != MinKeywordWeight {
		t.Errorf("underweight term loaded as %v, want %v", got, MinKeywordWeight)
	}
}

func TestClampWeight(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0.05, MinKeywordWeight},
		{0.1, 0.1},
		{1.0, 1.0},
		{2.0, 2.0},
		{3.5, MaxKeywordWeight},
	}
	for _, tt := range tests {
		if got := ClampWeight(tt.in); got != tt.want {
			t.Errorf("ClampWeight(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
