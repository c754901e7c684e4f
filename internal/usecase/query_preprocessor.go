package usecase

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/supplylens/backend/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxKeyTerms is the number of significant title terms kept for supplier search
const MaxKeyTerms = 8

// Compiled regex patterns for title cleaning
var (
	// Marketing boilerplate, matched on the lowercased, punctuation-collapsed title
	marketingPhrasePattern = regexp.MustCompile(`\b(?:premium quality|high quality|top quality|best quality|free shipping|fast shipping|free delivery|fast delivery|hot sale|hot selling|new arrival|new arrivals|best seller|bestseller|limited offer|limited time|brand new|100 original|(?:19|20)\d\d new|new (?:19|20)\d\d|dropshipping)\b`)

	nonAlphanumericPattern = regexp.MustCompile(`[^\p{L}\p{N}]+`)

	multiSpacePattern = regexp.MustCompile(`\s+`)
)

// queryStopWords are dropped from search terms (English, French, Spanish, German, Italian)
var queryStopWords = map[string]bool{
	// English
	"the": true, "a": true, "an": true, "and": true, "or": true, "for": true,
	"with": true, "of": true, "in": true, "on": true, "to": true, "by": true,
	"from": true, "at": true, "is": true, "new": true, "pcs": true, "pc": true,
	"piece": true, "pieces": true, "set": true, "lot": true,

	// French
	"le": true, "la": true, "les": true, "de": true, "des": true, "du": true,
	"et": true, "pour": true, "avec": true, "en": true, "un": true, "une": true,
	"au": true, "aux": true, "sur": true,

	// Spanish
	"el": true, "los": true, "las": true, "y": true, "para": true, "con": true,
	"por": true, "una": true,

	// German
	"der": true, "die": true, "das": true, "und": true, "fur": true, "mit": true,
	"ein": true, "eine": true,

	// Italian
	"il": true, "di": true, "e": true, "per": true, "della": true,
}

// genericBrands never make a useful search prefix
var genericBrands = map[string]bool{
	"":          true,
	"generic":   true,
	"unbranded": true,
	"no brand":  true,
	"nobrand":   true,
	"oem":       true,
	"none":      true,
	"n/a":       true,
	"unknown":   true,
}

// GeneralCategory is returned when no category could be inferred
const GeneralCategory = "general"

// QueryPreprocessor cleans product titles and builds supplier search queries
type QueryPreprocessor struct {
	logger *zap.Logger
}

// NewQueryPreprocessor creates a new query preprocessor
func NewQueryPreprocessor(logger *zap.Logger) *QueryPreprocessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryPreprocessor{logger: logger}
}

// CleanTitle lowercases and accent-folds a title, removes marketing boilerplate
// and collapses every run of non-alphanumeric characters into a single space.
func CleanTitle(title string) string {
	if title == "" {
		return ""
	}

	cleaned := strings.ToLower(foldAccents(title))
	cleaned = nonAlphanumericPattern.ReplaceAllString(cleaned, " ")
	cleaned = marketingPhrasePattern.ReplaceAllString(cleaned, " ")
	cleaned = multiSpacePattern.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// KeyTerms returns up to MaxKeyTerms significant, de-duplicated terms of a title
func (p *QueryPreprocessor) KeyTerms(title string) []string {
	tokens := strings.Fields(CleanTitle(title))
	seen := make(map[string]bool, len(tokens))
	terms := make([]string, 0, MaxKeyTerms)

	for _, tok := range tokens {
		if utf8.RuneCountInString(tok) < 2 || queryStopWords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		terms = append(terms, tok)
		if len(terms) == MaxKeyTerms {
			break
		}
	}
	return terms
}

// BuildQueries derives the prioritized query variants for a product.
// Priority 1 is the full term list, 2 the first four terms, 3 a brand-prefixed
// query and 4 a category-prefixed query.
func (p *QueryPreprocessor) BuildQueries(title, brand, category string) []domain.SearchQuery {
	terms := p.KeyTerms(title)
	queries := make([]domain.SearchQuery, 0, 4)

	if len(terms) > 0 {
		queries = append(queries, domain.SearchQuery{Text: strings.Join(terms, " "), Priority: 1})
	}
	if len(terms) > 4 {
		queries = append(queries, domain.SearchQuery{Text: strings.Join(terms[:4], " "), Priority: 2})
	}

	if b := strings.TrimSpace(brand); !isGenericBrand(b) {
		queries = append(queries, domain.SearchQuery{
			Text:     strings.TrimSpace(strings.ToLower(b) + " " + strings.Join(firstN(terms, 3), " ")),
			Priority: 3,
		})
	}

	if c := strings.TrimSpace(strings.ToLower(category)); c != "" && c != GeneralCategory {
		queries = append(queries, domain.SearchQuery{
			Text:     strings.TrimSpace(c + " " + strings.Join(firstN(terms, 2), " ")),
			Priority: 4,
		})
	}

	p.logger.Debug("built supplier queries",
		zap.String("title", title),
		zap.Strings("terms", terms),
		zap.Int("variants", len(queries)),
	)

	return queries
}

// PrimaryQuery returns the highest-priority non-empty query, falling back to the cleaned title
func PrimaryQuery(queries []domain.SearchQuery, title string) string {
	best := ""
	bestPriority := 0
	for _, q := range queries {
		if q.Text == "" {
			continue
		}
		if best == "" || q.Priority < bestPriority {
			best, bestPriority = q.Text, q.Priority
		}
	}
	if best == "" {
		return CleanTitle(title)
	}
	return best
}

func isGenericBrand(brand string) bool {
	return genericBrands[strings.ToLower(brand)]
}

func firstN(terms []string, n int) []string {
	if len(terms) < n {
		return terms
	}
	return terms[:n]
}
