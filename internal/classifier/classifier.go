package classifier

import (
	"math"
	"sort"
	"strings"

	"github.com/dispatchd/dispatchd/pkg/models"
)

// WeightSource supplies the current keyword weight table. The learning
// loop owns the live table; the classifier only ever reads snapshots.
type WeightSource interface {
	// Lexicons returns a copy of the current lexicon set.
	Lexicons() models.LexiconSet
}

// staticSource wraps a fixed lexicon set as a WeightSource.
type staticSource struct{ set models.LexiconSet }

func (s staticSource) Lexicons() models.LexiconSet { return s.set }

// StaticSource returns a WeightSource over a fixed lexicon set.
// Useful for tests and one-shot classification.
func StaticSource(set models.LexiconSet) WeightSource {
	return staticSource{set: set}
}

// Classifier scores request text against the current lexicons.
// Classify is pure and total: it never fails and never mutates state.
type Classifier struct {
	source WeightSource
}

// New creates a Classifier reading weights from the given source.
func New(source WeightSource) *Classifier {
	return &Classifier{source: source}
}

// DefaultResult is the single fallback classification used for empty input
// and any internal classification fault: all-zero scores, zero confidence,
// primary "unknown".
func DefaultResult() models.ClassificationResult {
	scores := make(map[models.Category]float64, len(models.Categories()))
	for _, cat := range models.Categories() {
		scores[cat] = 0
	}
	return models.ClassificationResult{
		Scores:     scores,
		Confidence: 0,
		Primary:    models.CategoryUnknown,
	}
}

// Classify scores the text against every category lexicon and derives
// confidence and the primary category.
//
// Score(cat) is the weight mass of matched terms over the total weight mass
// of the lexicon, clamped to 1.0. Confidence rewards both the absolute top
// score and its separation from the weakest category:
//
//	confidence = min(max + 0.5*(max-min), 1.0)
//
// A non-zero sensitive score forces the primary category to sensitive
// regardless of other scores.
func (c *Classifier) Classify(text string) models.ClassificationResult {
	if strings.TrimSpace(text) == "" {
		return DefaultResult()
	}

	set := c.source.Lexicons()
	if len(set) == 0 {
		return DefaultResult()
	}

	lower := strings.ToLower(text)
	scores := make(map[models.Category]float64, len(models.Categories()))
	for _, cat := range models.Categories() {
		scores[cat] = scoreLexicon(lower, set[cat])
	}

	maxScore, minScore := scoreBounds(scores)
	confidence := math.Min(maxScore+0.5*(maxScore-minScore), 1.0)

	primary := primaryCategory(scores)
	if scores[models.CategorySensitive] > 0 {
		primary = models.CategorySensitive
	}

	return models.ClassificationResult{
		Scores:     scores,
		Confidence: confidence,
		Primary:    primary,
	}
}

// scoreLexicon computes the weighted match ratio for one lexicon.
func scoreLexicon(lowerText string, lex models.Lexicon) float64 {
	if len(lex) == 0 {
		return 0
	}
	var matched, total float64
	for term, w := range lex {
		total += w
		if strings.Contains(lowerText, strings.ToLower(term)) {
			matched += w
		}
	}
	if total == 0 {
		return 0
	}
	return math.Min(matched/total, 1.0)
}

// scoreBounds returns the max and min score across all categories.
func scoreBounds(scores map[models.Category]float64) (maxScore, minScore float64) {
	first := true
	for _, s := range scores {
		if first {
			maxScore, minScore = s, s
			first = false
			continue
		}
		if s > maxScore {
			maxScore = s
		}
		if s < minScore {
			minScore = s
		}
	}
	return maxScore, minScore
}

// primaryCategory returns the arg-max category. Ties break by the stable
// category order so classification stays deterministic.
func primaryCategory(scores map[models.Category]float64) models.Category {
	best := models.CategoryUnknown
	bestScore := -1.0
	for _, cat := range models.Categories() {
		if scores[cat] > bestScore {
			best = cat
			bestScore = scores[cat]
		}
	}
	return best
}

// RankedCategories returns the categories ordered by descending score,
// ties broken by the stable category order. The router uses the top two
// for dual-processing decisions.
func RankedCategories(scores map[models.Category]float64) []models.Category {
	cats := models.Categories()
	order := make(map[models.Category]int, len(cats))
	for i, c := range cats {
		order[c] = i
	}
	ranked := append([]models.Category(nil), cats...)
	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := scores[ranked[i]], scores[ranked[j]]
		if si != sj {
			return si > sj
		}
		return order[ranked[i]] < order[ranked[j]]
	})
	return ranked
}
