package intent

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Vocabulary is the full keyword set used by the classifier.
type Vocabulary struct {
	Finance      []string `yaml:"finance"`
	Actions      []string `yaml:"actions"`
	Definitional []string `yaml:"definitional"`
}

// DefaultVocabulary is the merged keyword list the dashboard ships with.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Finance: []string{
			"expense", "revenue", "rent", "profit", "balance", "category", "report",
			"net worth", "salaries", "payment methods", "users", "transactions",
			"bill", "purchase", "spending", "paid", "received", "groceries",
			"cash", "card", "credit", "debit", "bought", "spent", "invested",
			"salary", "loan", "mortgage", "insurance", "fees", "interest",
			"business expense", "equipment", "technology", "gadgets", "electronics",
			"laptop", "computer",
		},
		Actions: []string{
			"show", "list", "calculate", "fetch", "get", "display", "record",
			"add", "update", "remove", "delete", "track", "summarize", "analyze",
			"generate", "predict", "filter", "compare", "view", "withdraw",
			"deposit", "paid", "transfer", "received", "purchased", "log", "spent",
			"bought",
		},
		Definitional: []string{"what is", "mean by"},
	}
}

// LoadVocabulary reads a YAML vocabulary file. A missing definitional list
// falls back to the default phrases; empty finance or action lists are an
// error since nothing could ever be classified as finance.
func LoadVocabulary(path string) (Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("read vocabulary: %w", err)
	}

	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return Vocabulary{}, fmt.Errorf("parse vocabulary %s: %w", path, err)
	}
	if v.Definitional == nil {
		v.Definitional = DefaultVocabulary().Definitional
	}

	v = v.normalized()
	if err := v.Validate(); err != nil {
		return Vocabulary{}, fmt.Errorf("vocabulary %s: %w", path, err)
	}
	return v, nil
}

// Validate reports an unusable vocabulary.
func (v Vocabulary) Validate() error {
	var errs []error
	if len(v.Finance) == 0 {
		errs = append(errs, errors.New("finance list is empty"))
	}
	if len(v.Actions) == 0 {
		errs = append(errs, errors.New("actions list is empty"))
	}
	return errors.Join(errs...)
}

func (v Vocabulary) normalized() Vocabulary {
	return Vocabulary{
		Finance:      normalizeTerms(v.Finance),
		Actions:      normalizeTerms(v.Actions),
		Definitional: normalizeTerms(v.Definitional),
	}
}

func (v Vocabulary) clone() Vocabulary {
	return Vocabulary{
		Finance:      slices.Clone(v.Finance),
		Actions:      slices.Clone(v.Actions),
		Definitional: slices.Clone(v.Definitional),
	}
}

func normalizeTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	seen := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
