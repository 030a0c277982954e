package models

// Category is one of the fixed set of domains a request is scored against.
type Category string

const (
	// CategoryProductSearch covers product discovery, comparison, and sourcing.
	CategoryProductSearch Category = "product_search"
	// CategoryPriceNegotiation covers quotes, discounts, and deal making.
	CategoryPriceNegotiation Category = "price_negotiation"
	// CategoryVerification covers authenticity, compliance, and quality checks.
	CategoryVerification Category = "verification"
	// CategorySupplyChain covers logistics, tracking, and fulfillment.
	CategorySupplyChain Category = "supply_chain"
	// CategoryTranslation covers multilingual and cross-border communication.
	CategoryTranslation Category = "translation"
	// CategoryTechnical covers code, data, and algorithmic work.
	CategoryTechnical Category = "technical"
	// CategoryStrategic covers planning and business analysis.
	CategoryStrategic Category = "strategic"
	// CategorySensitive covers private, secure, or regulated content.
	// It pre-empts every other category when its score is non-zero.
	CategorySensitive Category = "sensitive"
	// CategoryUnknown is the pseudo-category reported for empty or
	// unclassifiable input. It is never scored.
	CategoryUnknown Category = "unknown"
)

// Categories returns the fixed, scoreable category set in a stable order.
func Categories() []Category {
	return []Category{
		CategoryProductSearch,
		CategoryPriceNegotiation,
		CategoryVerification,
		CategorySupplyChain,
		CategoryTranslation,
		CategoryTechnical,
		CategoryStrategic,
		CategorySensitive,
	}
}

// Valid returns true if the category is a known scoreable value.
func (c Category) Valid() bool {
	switch c {
	case CategoryProductSearch, CategoryPriceNegotiation, CategoryVerification,
		CategorySupplyChain, CategoryTranslation, CategoryTechnical,
		CategoryStrategic, CategorySensitive:
		return true
	default:
		return false
	}
}

// Lexicon maps keyword terms to their weights for one category.
// Weights are bounded to [0.1, 2.0] by the learning loop.
type Lexicon map[string]float64

// LexiconSet holds one weighted lexicon per category.
type LexiconSet map[Category]Lexicon

// Clone returns a deep copy of the lexicon set.
func (ls LexiconSet) Clone() LexiconSet {
	out := make(LexiconSet, len(ls))
	for cat, lex := range ls {
		dup := make(Lexicon, len(lex))
		for term, w := range lex {
			dup[term] = w
		}
		out[cat] = dup
	}
	return out
}

// ClassificationResult holds per-category scores and the derived
// confidence and primary category for one request text.
type ClassificationResult struct {
	// Scores maps each category to its relevance score in [0, 1].
	Scores map[Category]float64 `json:"scores"`
	// Confidence summarizes how unambiguous the classification is, in [0, 1].
	Confidence float64 `json:"confidence"`
	// Primary is the winning category, or CategoryUnknown for the default result.
	Primary Category `json:"primary"`
}

// Score returns the score for a category, 0 when absent.
func (r ClassificationResult) Score(c Category) float64 {
	return r.Scores[c]
}
