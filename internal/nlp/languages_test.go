package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLanguages(t *testing.T) {
	t.Parallel()

	got := NormalizeLanguages([]string{"Français (C1)", "Anglais(B2)", "anglais courant", ""})
	assert.Equal(t, []string{"anglais", "français"}, got)
}

func TestCandidateLanguages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		stated []string
		text   string
		want   []string
	}{
		{name: "stated wins", stated: []string{"Arabe (natif)"}, text: "English fluent", want: []string{"arabe"}},
		{name: "detected in text", text: "Languages: English, Spanish, francais", want: []string{"anglais", "espagnol", "français"}},
		{name: "default", text: "nothing relevant", want: []string{"anglais", "français"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CandidateLanguages(tt.stated, tt.text))
		})
	}
}
