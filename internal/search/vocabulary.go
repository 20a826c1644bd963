package search

import (
	"regexp"
	"strings"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
)

const (
	maxKeywords   = 5
	luxuryMinimum = 500.0
)

// categoryVocabulary is checked in order; the first category with a matching word wins.
var categoryVocabulary = []struct {
	category string
	words    []string
}{
	{domain.CategoryTextbooks, []string{"textbook", "textbooks", "book", "books", "novel", "novels", "course"}},
	{domain.CategoryGadgets, []string{
		"laptop", "laptops", "computer", "computers", "pc", "desktop", "monitor", "monitors", "phone",
		"phones", "smartphone", "iphone", "android", "ipad", "tablet", "tablets", "calculator",
		"calculators", "headphone", "headphones", "earphone", "earphones", "speaker", "speakers",
		"electronic", "electronics", "device", "devices", "gadget", "gadgets", "keyboard", "mouse",
	}},
	{domain.CategoryFurniture, []string{
		"furniture", "chair", "chairs", "desk", "desks", "table", "tables", "bed", "beds", "couch",
		"sofa", "shelf", "shelves", "cabinet", "drawer", "drawers", "bookcase",
	}},
	{domain.CategoryClothing, []string{
		"clothing", "clothes", "jacket", "shirt", "hoodie", "sweatshirt", "pants", "jeans", "shorts",
		"dress", "shoes", "sneakers", "boots", "socks", "hat", "cap", "coat", "sweater", "jackets",
		"shirts", "hoodies", "hats", "coats", "sweaters",
	}},
	{domain.CategorySports, []string{
		"sport", "sports", "ball", "basketball", "soccer", "volleyball", "football", "racket", "tennis",
		"yoga", "mat", "dumbbell", "dumbbells", "weights", "bicycle", "bike", "bikes", "skateboard",
		"equipment",
	}},
	{domain.CategoryEssentials, []string{
		"essential", "essentials", "lamp", "light", "kettle", "fridge", "refrigerator", "fan", "heater",
		"microwave", "toaster", "blender", "pillow", "pillows", "blanket", "blankets", "bedding",
		"towel", "towels", "lamps",
	}},
}

// budgetAdjectives cap the price when no explicit maximum was given.
var budgetAdjectives = []struct {
	word  string
	price float64
}{
	{"cheap", 50},
	{"affordable", 100},
	{"inexpensive", 75},
	{"budget", 60},
}

var stopWords = toSet(strings.Fields(`
	i me my myself you your yours yourself he him his himself she her hers herself
	it its itself we us our ours ourselves they them their theirs themselves
	what which who whom why how a an and or but not no
	is are was were be been being have has had do does did
	the this that these those want need looking for with in on at to
	buy get find search seek item items product products stuff thing things
	listing listings post posts ad ads price cost money cash dollar dollars bucks
	new used cheap affordable expensive luxury please thanks thank hi hello
	most newest latest recent cheapest lowest highest first
`))

// genericWords are dropped from remotely produced keywords.
var genericWords = toSet(strings.Fields(`
	item items product products stuff thing things listing listings post posts ad ads
	search find get look looking
`))

const priceNumber = `\$?(\d+(?:\.\d{2})?)`

var (
	priceRangeRe = regexp.MustCompile(`between\s+` + priceNumber + `\s+(?:and|to)\s+` + priceNumber)
	maxPriceRe   = regexp.MustCompile(`(?:under|less than|below|max|up to)\s+` + priceNumber)
	minPriceRe   = regexp.MustCompile(`(?:over|more than|above|min|starting from)\s+` + priceNumber)

	// The optional "most" lets "most expensive" through as a sort cue instead of a price floor.
	luxuryRe = regexp.MustCompile(`\b(most\s+)?(expensive|luxury|high-end)\b`)

	courseCodeRe = regexp.MustCompile(`[a-z]{2,4}\d{2,4}`)
	tokenSplitRe = regexp.MustCompile(`[^a-z0-9]+`)

	budgetRes   = compileBudget()
	categoryRes = compileCategories()
)

var sortCues = []struct {
	re    *regexp.Regexp
	order SortOrder
}{
	{regexp.MustCompile(`(?:newest|recent|latest|new)`), SortRecent},
	{regexp.MustCompile(`(?:cheapest|lowest|low-price|price.*low)`), SortPriceAsc},
	{regexp.MustCompile(`(?:most expensive|highest|high-price|price.*high)`), SortPriceDesc},
}

type budgetRule struct {
	re    *regexp.Regexp
	price float64
}

func compileBudget() []budgetRule {
	rules := make([]budgetRule, 0, len(budgetAdjectives))
	for _, a := range budgetAdjectives {
		rules = append(rules, budgetRule{re: wordRe(a.word), price: a.price})
	}
	return rules
}

type categoryRule struct {
	re       *regexp.Regexp
	category string
}

func compileCategories() []categoryRule {
	rules := make([]categoryRule, 0, len(categoryVocabulary))
	for _, c := range categoryVocabulary {
		quoted := make([]string, len(c.words))
		for i, w := range c.words {
			quoted[i] = regexp.QuoteMeta(w)
		}
		rules = append(rules, categoryRule{
			re:       regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`),
			category: c.category,
		})
	}
	return rules
}

func wordRe(w string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(w) + `\b`)
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
