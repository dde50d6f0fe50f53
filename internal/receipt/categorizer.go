package receipt

import (
	"regexp"
	"strings"

	"spendscan/internal/core"
)

// Categorizer guesses a category from receipt text. Implementations must not
// fail; core.Other means no guess.
type Categorizer interface {
	Categorize(text string) core.Category
}

// CategorizerFunc adapts a function to Categorizer.
type CategorizerFunc func(text string) core.Category

func (f CategorizerFunc) Categorize(text string) core.Category {
	return f(text)
}

type keywordSet struct {
	category core.Category
	pattern  *regexp.Regexp
}

// categoryKeywords is checked in order; the first category with a whole-word
// hit wins.
var categoryKeywords = []keywordSet{
	newKeywordSet(core.FoodAndDining, "restaurant", "cafe", "coffee", "food", "dine", "diner", "pizza", "burger", "bistro", "grill"),
	newKeywordSet(core.Groceries, "grocery", "groceries", "market", "supermarket"),
	newKeywordSet(core.Transportation, "gas", "fuel", "station", "uber", "lyft", "taxi", "parking"),
	newKeywordSet(core.Healthcare, "pharmacy", "medical", "doctor", "clinic", "hospital", "dental"),
	newKeywordSet(core.Shopping, "shop", "retail", "mall", "boutique", "outlet"),
	newKeywordSet(core.Entertainment, "cinema", "movie", "theater", "theatre", "concert", "tickets"),
	newKeywordSet(core.Utilities, "electric", "electricity", "internet", "utility", "utilities"),
	newKeywordSet(core.Travel, "hotel", "airline", "airport", "flight", "motel"),
	newKeywordSet(core.Education, "school", "university", "tuition", "bookstore", "course"),
}

func newKeywordSet(c core.Category, words ...string) keywordSet {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return keywordSet{
		category: c,
		pattern:  regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`),
	}
}

// KeywordCategorizer matches fixed per-category keyword lists against the text.
type KeywordCategorizer struct{}

func (KeywordCategorizer) Categorize(text string) core.Category {
	for _, set := range categoryKeywords {
		if set.pattern.MatchString(text) {
			return set.category
		}
	}
	return core.Other
}
