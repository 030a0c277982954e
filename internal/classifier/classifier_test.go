package classifier

import (
	"math"
	"strings"
	"testing"

	"github.com/dispatchd/dispatchd/pkg/models"
)

func newTestClassifier() *Classifier {
	return New(StaticSource(DefaultLexicons()))
}

func TestClassify_EmptyInput(t *testing.T) {
	clf := newTestClassifier()

	for _, text := range []string{"", "   ", "\t\n"} {
		result := clf.Classify(text)
		if result.Primary != models.CategoryUnknown {
			t.Errorf("Classify(%q).Primary = %q, want unknown", text, result.Primary)
		}
		if result.Confidence != 0 {
			t.Errorf("Classify(%q).Confidence = %v, want 0", text, result.Confidence)
		}
		for cat, score := range result.Scores {
			if score != 0 {
				t.Errorf("Classify(%q).Scores[%s] = %v, want 0", text, cat, score)
			}
		}
	}
}

func TestClassify_ScoreBounds(t *testing.T) {
	clf := newTestClassifier()

	texts := []string{
		"find a product",
		"verify the supplier certification and check compliance standards for safety testing fraud genuine original counterfeit quality inspect validate authenticate",
		"hello world",
		strings.Repeat("product search find compare price ", 50),
	}
	for _, text := range texts {
		result := clf.Classify(text)
		if result.Confidence < 0 || result.Confidence > 1 {
			t.Errorf("Classify(%q).Confidence = %v, out of [0,1]", text, result.Confidence)
		}
		for cat, score := range result.Scores {
			if score < 0 || score > 1 {
				t.Errorf("Classify(%q).Scores[%s] = %v, out of [0,1]", text, cat, score)
			}
		}
	}
}

func TestClassify_ProductSearch(t *testing.T) {
	clf := newTestClassifier()

	text := "find and compare supplier prices to buy this product with fast shipping and delivery from a vendor with stock"
	result := clf.Classify(text)

	if result.Primary != models.CategoryProductSearch {
		t.Fatalf("Primary = %q, want product_search (scores %v)", result.Primary, result.Scores)
	}
	if result.Confidence <= 0.70 {
		t.Errorf("Confidence = %v, want > 0.70", result.Confidence)
	}
}

func TestClassify_ConfidenceFormula(t *testing.T) {
	clf := newTestClassifier()

	result := clf.Classify("debug the software code and analyze our business strategy")

	maxScore, minScore := scoreBounds(result.Scores)
	want := math.Min(maxScore+0.5*(maxScore-minScore), 1.0)
	if math.Abs(result.Confidence-want) > 1e-9 {
		t.Errorf("Confidence = %v, want %v", result.Confidence, want)
	}
	if result.Primary != models.CategoryTechnical {
		t.Errorf("Primary = %q, want technical", result.Primary)
	}
}

func TestClassify_SensitiveOverride(t *testing.T) {
	clf := newTestClassifier()

	// Product terms dominate the scores but a single sensitive term
	// still forces the sensitive primary.
	text := "find compare buy purchase supplier vendor price product stock shipping delivery with a password"
	result := clf.Classify(text)

	if result.Score(models.CategoryProductSearch) <= result.Score(models.CategorySensitive) {
		t.Fatalf("test text should score product above sensitive: %v", result.Scores)
	}
	if result.Primary != models.CategorySensitive {
		t.Errorf("Primary = %q, want sensitive", result.Primary)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	clf := newTestClassifier()

	text := "negotiate a bulk discount contract"
	first := clf.Classify(text)
	for i := 0; i < 10; i++ {
		again := clf.Classify(text)
		if again.Primary != first.Primary || again.Confidence != first.Confidence {
			t.Fatalf("classification not deterministic: %v vs %v", again, first)
		}
	}
}

func TestClassify_WeightsChangeScores(t *testing.T) {
	set := DefaultLexicons()
	base := New(StaticSource(set)).Classify("find a product").Score(models.CategoryProductSearch)

	heavier := set.Clone()
	heavier[models.CategoryProductSearch]["product"] = 2.0
	heavier[models.CategoryProductSearch]["find"] = 2.0
	boosted := New(StaticSource(heavier)).Classify("find a product").Score(models.CategoryProductSearch)

	if boosted <= base {
		t.Errorf("boosted score %v should exceed base %v", boosted, base)
	}
}

func TestRankedCategories(t *testing.T) {
	scores := map[models.Category]float64{
		models.CategoryTechnical: 0.5,
		models.CategoryStrategic: 0.3,
	}
	ranked := RankedCategories(scores)

	if ranked[0] != models.CategoryTechnical {
		t.Errorf("ranked[0] = %q, want technical", ranked[0])
	}
	if ranked[1] != models.CategoryStrategic {
		t.Errorf("ranked[1] = %q, want strategic", ranked[1])
	}
	if len(ranked) != len(models.Categories()) {
		t.Errorf("len(ranked) = %d, want %d", len(ranked), len(models.Categories()))
	}

	// All-zero scores fall back to the stable category order.
	ranked = RankedCategories(map[models.Category]float64{})
	for i, cat := range models.Categories() {
		if ranked[i] != cat {
			t.Errorf("ranked[%d] = %q, want %q", i, ranked[i], cat)
		}
	}
}
