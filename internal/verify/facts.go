package verify

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/decoda/decoda/internal/model"
)

// Typed fact patterns, applied in this order
var factPatterns = []struct {
	factType model.FactType
	pattern  *regexp.Regexp
}{
	{model.FactCode, regexp.MustCompile(`\b\d{2}_\d{3}_\d{4}_\d_\d\b`)},
	{model.FactPrice, regexp.MustCompile(`\$\d+(?:\.\d{2})?`)},
	{model.FactPercentage, regexp.MustCompile(`\d+(?:\.\d+)?%`)},
	{model.FactDate, regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}|\d{4}-\d{2}-\d{2}`)},
	{model.FactEmail, regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)},
}

var codeFormat = regexp.MustCompile(`^\d{2}_\d{3}_\d{4}_\d_\d$`)

// ExtractFacts serializes the payload and pulls every typed literal token
// out of it. Every fact starts unverified.
func ExtractFacts(payload any) []model.Fact {
	text := serialize(payload)
	if text == "" {
		return nil
	}

	var facts []model.Fact
	for _, fp := range factPatterns {
		for _, value := range fp.pattern.FindAllString(text, -1) {
			facts = append(facts, model.Fact{Type: fp.factType, Value: value})
		}
	}
	return facts
}

// ValidateCodeFormat checks the canonical xx_xxx_xxxx_x_x shape. It is
// purely syntactic; it does not check the code exists in the catalogue.
func ValidateCodeFormat(code string) bool {
	return codeFormat.MatchString(code)
}

// serialize renders an arbitrary payload as searchable text
func serialize(payload any) string {
	switch v := payload.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Sprint(payload)
		}
		return string(data)
	}
}
