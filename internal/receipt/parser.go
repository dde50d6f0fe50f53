// Package receipt turns raw OCR text into a best-effort expense draft.
//
// Extraction is a fixed, ordered set of rules applied line by line:
//
//  1. keyword lines fill the summary fields (subtotal, tax, total)
//  2. remaining "<name> <price>" lines become line items
//  3. amount falls back total -> subtotal -> largest number -> 0
//  4. the first valid date, the first time and the first line (store) are picked
//
// Parsing never fails; unrecognised input degrades to defaults.
package receipt

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"spendscan/internal/core"
)

// UnknownStore is the store name used when the text has no lines at all.
const UnknownStore = "Unknown Store"

var (
	// two fraction digits, optional thousands separators: 12.99, 1,234.56
	amountPattern = regexp.MustCompile(`((?:\d{1,3}(?:,\d{3})+|\d+)\.\d{2})\b`)
	// <name> <price> with the price ending the line
	itemPattern = regexp.MustCompile(`^(.*\S)\s+\$?\s?((?:\d{1,3}(?:,\d{3})+|\d+)\.\d{2})$`)
	// D/D/Y with '/', '-' or '.' separators
	datePattern = regexp.MustCompile(`\b(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{2,4})\b`)
	// 9:41, 21:05, 9:41 PM
	colonTimePattern = regexp.MustCompile(`(?i)\b(?:[01]?\d|2[0-3]):[0-5]\d\b(?:\s?[ap]\.?m\b\.?)?`)
	// 9.41 PM; a bare 9.41 is a price
	dotTimePattern = regexp.MustCompile(`(?i)\b(?:[01]?\d|2[0-3])\.[0-5]\d\s?[ap]\.?m\b\.?`)
)

type summaryField int

const (
	fieldSubtotal summaryField = iota
	fieldTax
	fieldTotal
)

// keywordRule fills one summary field from lines matching pattern. Every rule
// is checked against every line; a line matching unless is skipped.
type keywordRule struct {
	field    summaryField
	pattern  *regexp.Regexp
	unless   *regexp.Regexp
	lastWins bool
}

var subtotalKeyword = regexp.MustCompile(`(?i)\bsub[\s-]?total\b`)

var keywordRules = []keywordRule{
	{field: fieldSubtotal, pattern: subtotalKeyword},
	{field: fieldTax, pattern: regexp.MustCompile(`(?i)\btax\b`)},
	// receipts often repeat the total after the tax breakdown
	{
		field:    fieldTotal,
		pattern:  regexp.MustCompile(`(?i)\b(?:total|amount\s+due|balance)\b`),
		unless:   subtotalKeyword,
		lastWins: true,
	},
}

// Option configures a Parser.
type Option func(*Parser)

// WithClock sets the clock used for the date fallback.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) {
		if now != nil {
			p.now = now
		}
	}
}

// WithCategorizer replaces the default keyword categorizer.
func WithCategorizer(c Categorizer) Option {
	return func(p *Parser) {
		if c != nil {
			p.categorizer = c
		}
	}
}

// Parser extracts expense drafts from OCR text. It is safe for concurrent use.
type Parser struct {
	now         func() time.Time
	categorizer Categorizer
}

// NewParser returns a parser using the wall clock and the keyword categorizer
// unless overridden by opts.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		now:         time.Now,
		categorizer: KeywordCategorizer{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var defaultParser = NewParser()

// Parse extracts a draft using the wall clock for the date fallback.
func Parse(text string) core.ExpenseDraft {
	return defaultParser.Parse(text)
}

// Parse extracts a draft from text. It is total over all inputs.
func (p *Parser) Parse(text string) core.ExpenseDraft {
	lines := splitLines(text)

	draft := core.ExpenseDraft{
		StoreName: UnknownStore,
		Items:     []core.LineItem{},
		Subtotal:  decimal.Zero,
		Tax:       decimal.Zero,
		Total:     decimal.Zero,
		Amount:    decimal.Zero,
		Category:  core.Other,
	}
	if len(lines) > 0 {
		draft.StoreName = lines[0]
	}

	var (
		seen        = make([]bool, len(keywordRules))
		described   []string
		largest     = decimal.Zero
		foundNumber bool
	)
	for _, line := range lines {
		masked := maskDatesAndTimes(line)

		for _, n := range numbersIn(masked) {
			if !foundNumber || n.GreaterThan(largest) {
				largest = n
				foundNumber = true
			}
		}

		if rules, value, ok := matchKeywordRules(line, masked); ok {
			for _, i := range rules {
				if rule := keywordRules[i]; !seen[i] || rule.lastWins {
					setSummaryField(&draft, rule.field, value)
					seen[i] = true
				}
			}
			continue
		}

		if item, ok := matchItem(line, masked); ok {
			draft.Items = append(draft.Items, item)
			described = append(described, line)
		}
	}
	draft.Description = strings.Join(described, "\n")

	switch {
	case !draft.Total.IsZero():
		draft.Amount = draft.Total
	case !draft.Subtotal.IsZero():
		draft.Amount = draft.Subtotal
	case foundNumber:
		draft.Amount = largest
	}

	if d, ok := findDate(lines); ok {
		draft.Date = d
	} else {
		draft.Date = core.DateOf(p.now())
	}
	draft.Time = findTime(lines)

	draft.Category = core.ParseCategory(string(p.categorizer.Categorize(text)))
	return draft
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// maskDatesAndTimes blanks date and time substrings so their digits are not
// read as prices. Byte offsets are preserved.
func maskDatesAndTimes(line string) string {
	blank := func(s string) string { return strings.Repeat(" ", len(s)) }
	line = datePattern.ReplaceAllStringFunc(line, blank)
	line = colonTimePattern.ReplaceAllStringFunc(line, blank)
	return dotTimePattern.ReplaceAllStringFunc(line, blank)
}

func numbersIn(s string) []decimal.Decimal {
	matches := amountPattern.FindAllStringSubmatch(s, -1)
	out := make([]decimal.Decimal, 0, len(matches))
	for _, m := range matches {
		if d, ok := toDecimal(m[1]); ok {
			out = append(out, d)
		}
	}
	return out
}

func toDecimal(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}

// matchKeywordRules returns the indexes of every rule matching line, together
// with the right-most number on the line. Lines without a number match nothing.
func matchKeywordRules(line, masked string) ([]int, decimal.Decimal, bool) {
	var matched []int
	for i, rule := range keywordRules {
		if !rule.pattern.MatchString(line) {
			continue
		}
		if rule.unless != nil && rule.unless.MatchString(line) {
			continue
		}
		matched = append(matched, i)
	}
	if len(matched) == 0 {
		return nil, decimal.Zero, false
	}
	nums := numbersIn(masked)
	if len(nums) == 0 {
		return nil, decimal.Zero, false
	}
	return matched, nums[len(nums)-1], true
}

func setSummaryField(d *core.ExpenseDraft, f summaryField, v decimal.Decimal) {
	switch f {
	case fieldSubtotal:
		d.Subtotal = v
	case fieldTax:
		d.Tax = v
	case fieldTotal:
		d.Total = v
	}
}

func matchItem(line, masked string) (core.LineItem, bool) {
	loc := itemPattern.FindStringSubmatchIndex(masked)
	if loc == nil {
		return core.LineItem{}, false
	}
	name := strings.TrimSpace(line[loc[2]:loc[3]])
	name = strings.TrimSpace(strings.TrimSuffix(name, "$"))
	if name == "" {
		return core.LineItem{}, false
	}
	price, ok := toDecimal(masked[loc[4]:loc[5]])
	if !ok {
		return core.LineItem{}, false
	}
	return core.LineItem{Name: name, Price: price}, true
}

// findDate returns the first D/D/Y match that is a real calendar date. The
// first field is the month unless it cannot be one.
func findDate(lines []string) (core.Date, bool) {
	for _, line := range lines {
		for _, m := range datePattern.FindAllStringSubmatch(line, -1) {
			if d, ok := normalizeDate(m[1], m[2], m[3]); ok {
				return d, true
			}
		}
	}
	return core.Date{}, false
}

func normalizeDate(first, second, year string) (core.Date, bool) {
	a, _ := strconv.Atoi(first)
	b, _ := strconv.Atoi(second)
	y, _ := strconv.Atoi(year)

	switch len(year) {
	case 2:
		y += 2000
	case 4:
		if y < 1900 {
			return core.Date{}, false
		}
	default:
		return core.Date{}, false
	}

	month, day := a, b
	if a > 12 {
		month, day = b, a
	}
	if month < 1 || month > 12 || day < 1 {
		return core.Date{}, false
	}
	d := core.NewDate(y, month, day)
	if int(d.Month()) != month || d.Day() != day {
		return core.Date{}, false
	}
	return d, true
}

func findTime(lines []string) string {
	for _, line := range lines {
		masked := datePattern.ReplaceAllStringFunc(line, func(s string) string {
			return strings.Repeat(" ", len(s))
		})
		best := -1
		var found string
		for _, re := range []*regexp.Regexp{colonTimePattern, dotTimePattern} {
			if loc := re.FindStringIndex(masked); loc != nil && (best < 0 || loc[0] < best) {
				best = loc[0]
				found = line[loc[0]:loc[1]]
			}
		}
		if best >= 0 {
			return strings.TrimSpace(found)
		}
	}
	return ""
}
