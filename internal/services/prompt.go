package services

import (
	"fmt"
	"strings"
)

var languageNames = map[string]string{
	"fr": "French",
	"en": "English",
	"de": "German",
	"es": "Spanish",
	"it": "Italian",
}

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildTranslationPrompt asks for a plain translation of one résumé sentence.
func (pb *PromptBuilder) BuildTranslationPrompt(text, target string) string {
	name, ok := languageNames[strings.ToLower(target)]
	if !ok {
		name = target
	}

	return fmt.Sprintf(`Translate the following sentence from a résumé into %s.

Keep company names, product names, technologies and dates unchanged.
Return only the translated sentence, without quotes, notes or explanations.

SENTENCE:
%s`, name, text)
}
