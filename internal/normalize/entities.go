package normalize

import "regexp"

var (
	codePattern  = regexp.MustCompile(`\b\d{2}_\d{3}_\d{4}_\d_\d\b`)
	needsPattern = regexp.MustCompile(`(?i)(?:help with|assistance with|support for|struggling with)\s+([a-z][a-z ]*[a-z])`)
)

// supportCategories is the fixed keyword list used for entity tagging
var supportCategories = []string{
	"Daily Life", "Social", "Transport", "Home",
	"Health", "Therapy", "Equipment", "Capacity Building",
}

var categoryPatterns = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(supportCategories))
	for _, c := range supportCategories {
		m[c] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(c) + `\b`)
	}
	return m
}()

// Entities are the structured tokens recognised in a query
type Entities struct {
	SupportCategories []string
	Codes             []string
	NeedsPhrases      []string
}

// ExtractEntities pulls support categories, canonical codes and needs
// phrases from a query. Absence of matches yields empty slices; it never
// fails.
func ExtractEntities(query string) Entities {
	entities := Entities{
		SupportCategories: []string{},
		Codes:             []string{},
		NeedsPhrases:      []string{},
	}

	entities.Codes = append(entities.Codes, codePattern.FindAllString(query, -1)...)

	for _, category := range supportCategories {
		if categoryPatterns[category].MatchString(query) {
			entities.SupportCategories = append(entities.SupportCategories, category)
		}
	}

	for _, m := range needsPattern.FindAllStringSubmatch(query, -1) {
		entities.NeedsPhrases = append(entities.NeedsPhrases, m[1])
	}

	return entities
}
