package fallback

import (
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/Mayconxzdev/automation-advisor/internal/model"
)

// excerptLen is the number of characters of the process description quoted
// into each generated recommendation.
const excerptLen = 80

// Generator produces recommendations by substring-matching the process
// description against the rule pack's keyword lists.
type Generator struct {
	pack *RulePack
}

// New creates a Generator from the embedded rule pack.
func New() (*Generator, error) {
	pack, err := LoadRules()
	if err != nil {
		return nil, err
	}
	return &Generator{pack: pack}, nil
}

// NewWithRules creates a Generator from an explicit rule pack.
func NewWithRules(pack *RulePack) *Generator {
	return &Generator{pack: pack}
}

// Generate maps a process description to one recommendation per matching
// category, in rule pack order. A description matching nothing yields a
// single generic recommendation, so the result is never empty.
func (g *Generator) Generate(description string) []model.RecommendationRecord {
	normalized := normalize(description)
	quoted := quoteExcerpt(description)

	var records []model.RecommendationRecord
	for _, cat := range g.pack.Categories {
		if !matches(normalized, cat.Keywords) {
			continue
		}
		records = append(records, cat.Template.instantiate(len(records)+1, quoted))
	}

	if len(records) == 0 {
		records = append(records, g.pack.Generic.instantiate(1, quoted))
	}

	zap.L().Debug("fallback generation",
		zap.Int("matched", len(records)),
		zap.Int("description_len", len(description)),
	)
	return records
}

func (t *Template) instantiate(id int, quoted string) model.RecommendationRecord {
	return model.RecommendationRecord{
		ID:                 id,
		Title:              t.Title,
		Description:        t.Description + " " + quoted,
		Priority:           t.Priority,
		EstimatedHours:     t.EstimatedHours,
		ExpectedSavings:    t.ExpectedSavings,
		ImplementationTime: t.ImplementationTime,
		ROIPercentage:      t.ROIPercentage,
		Tools:              t.Tools,
		FlowExample:        t.FlowExample,
		Provenance:         model.ProvenanceFallback,
	}
}

func matches(normalized string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(normalized, normalize(kw)) {
			return true
		}
	}
	return false
}

// quoteExcerpt embeds the first characters of the description as a quoted
// provenance note.
func quoteExcerpt(description string) string {
	r := []rune(description)
	if len(r) > excerptLen {
		r = r[:excerptLen]
	}
	return `Baseado em: "` + string(r) + `..."`
}

// normalize lowercases and strips diacritics so that accented and unaccented
// spellings of the same word match each other.
func normalize(s string) string {
	folded := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(folded, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}
