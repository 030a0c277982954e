// Package classifier scores free-text requests against weighted keyword
// lexicons and derives a confidence and primary category.
package classifier

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dispatchd/dispatchd/pkg/models"
)

// Weight bounds enforced on every lexicon, loaded or learned.
const (
	MinKeywordWeight = 0.1
	MaxKeywordWeight = 2.0
)

// DefaultLexicons returns the built-in category lexicons with unit weights.
// With all weights at 1.0 the weighted score reduces to the plain
// matched-terms / lexicon-size ratio.
func DefaultLexicons() models.LexiconSet {
	terms := map[models.Category][]string{
		models.CategoryProductSearch: {
			"product", "search", "find", "compare", "price", "cost", "buy", "purchase",
			"supplier", "vendor", "manufacturer", "global", "regional", "market",
			"shipping", "delivery", "inventory", "stock", "availability",
		},
		models.CategoryPriceNegotiation: {
			"negotiate", "bargain", "discount", "deal", "offer", "quote", "pricing",
			"competitive", "market price", "best price", "lowest cost", "bulk",
			"quantity", "volume discount", "contract", "agreement",
		},
		models.CategoryVerification: {
			"verify", "authenticate", "validate", "check", "inspect", "quality",
			"certification", "compliance", "regulatory", "standards", "fraud",
			"genuine", "original", "counterfeit", "safety", "testing",
		},
		models.CategorySupplyChain: {
			"supply chain", "logistics", "shipping", "tracking", "delivery",
			"fulfillment", "warehouse", "distribution", "transport", "freight",
			"order status", "inventory", "stock", "lead time", "backorder",
		},
		models.CategoryTranslation: {
			"translate", "language", "multilingual", "foreign", "international",
			"cross-border", "localization", "interpret", "communication",
			"voice", "speech", "dialect", "culture", "region",
		},
		models.CategoryTechnical: {
			"code", "analyze", "calculate", "debug", "technical",
			"programming", "software", "data", "algorithm",
		},
		models.CategoryStrategic: {
			"plan", "strategy", "business", "market", "growth",
			"revenue", "investment", "partnership", "competitive",
		},
		models.CategorySensitive: {
			"private", "personal", "confidential", "secure", "password",
			"financial", "medical", "legal",
		},
	}

	set := make(models.LexiconSet, len(terms))
	for cat, words := range terms {
		lex := make(models.Lexicon, len(words))
		for _, w := range words {
			lex[w] = 1.0
		}
		set[cat] = lex
	}
	return set
}

// lexiconFile is the on-disk YAML shape: category -> term -> weight.
type lexiconFile struct {
	Categories map[string]map[string]float64 `yaml:"categories"`
}

// LoadLexicons reads a lexicon set from a YAML file. Unknown categories are
// rejected; weights are clamped to the legal bounds.
func LoadLexicons(path string) (models.LexiconSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon file: %w", err)
	}

	var file lexiconFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse lexicon file: %w", err)
	}

	set := make(models.LexiconSet, len(file.Categories))
	for name, entries := range file.Categories {
		cat := models.Category(name)
		if !cat.Valid() {
			return nil, fmt.Errorf("unknown category %q in %s", name, path)
		}
		if len(entries) == 0 {
			return nil, fmt.Errorf("category %q has an empty lexicon", name)
		}
		lex := make(models.Lexicon, len(entries))
		for term, w := range entries {
			lex[term] = ClampWeight(w)
		}
		set[cat] = lex
	}

	// Every scoreable category must keep a lexicon, otherwise its score
	// would silently pin to zero.
	for _, cat := range models.Categories() {
		if _, ok := set[cat]; !ok {
			return nil, fmt.Errorf("lexicon file %s missing category %q", path, cat)
		}
	}

	return set, nil
}

// SaveLexicons writes a lexicon set to a YAML file.
func SaveLexicons(path string, set models.LexiconSet) error {
	file := lexiconFile{Categories: make(map[string]map[string]float64, len(set))}
	for cat, lex := range set {
		entries := make(map[string]float64, len(lex))
		for term, w := range lex {
			entries[term] = w
		}
		file.Categories[string(cat)] = entries
	}

	raw, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("encode lexicons: %w", err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("write lexicon file: %w", err)
	}
	return nil
}

// ClampWeight bounds a keyword weight to [MinKeywordWeight, MaxKeywordWeight].
func ClampWeight(w float64) float64 {
	if w < MinKeywordWeight {
		return MinKeywordWeight
	}
	if w > MaxKeywordWeight {
		return MaxKeywordWeight
	}
	return w
}
