// Package intent decides whether a chat message is a finance operation that
// should go to the NLP-to-SQL endpoint or a general question for the chatbot.
package intent

import (
	"strings"
)

// Route is the classification outcome.
type Route string

const (
	Finance Route = "finance"
	General Route = "general"
)

// Classifier matches text against a Vocabulary. The zero value is not
// usable; build one with New.
type Classifier struct {
	vocab Vocabulary
}

// New returns a classifier over vocab. The vocabulary is normalized (lower
// case, trimmed, de-duplicated) so callers may pass raw lists.
func New(vocab Vocabulary) *Classifier {
	return &Classifier{vocab: vocab.normalized()}
}

// Default returns a classifier over DefaultVocabulary.
func Default() *Classifier {
	return New(DefaultVocabulary())
}

// Vocabulary returns a copy of the normalized vocabulary in use.
func (c *Classifier) Vocabulary() Vocabulary {
	return c.vocab.clone()
}

// Classify returns Finance when text contains at least one finance term and
// at least one action term, and General otherwise. Definitional phrasing
// ("what is", "mean by") always yields General, even when both vocabularies
// match. Matching is case-insensitive substring containment.
func (c *Classifier) Classify(text string) Route {
	lower := strings.ToLower(text)
	if containsAny(lower, c.vocab.Definitional) {
		return General
	}
	if containsAny(lower, c.vocab.Finance) && containsAny(lower, c.vocab.Actions) {
		return Finance
	}
	return General
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}
