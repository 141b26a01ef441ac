package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "collapses whitespace", in: "  Python\tPROGRAMMING \n", want: "python programming"},
		{name: "nfkc folds ligatures", in: "ﬁle system", want: "file system"},
		{name: "empty", in: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeText(tt.in))
		})
	}
}

func TestNormalizeSkillDropsRepeatedWords(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "python 3", NormalizeSkill("Python  python 3"))
	assert.Equal(t, "machine learning", NormalizeSkill("machine learning learning"))
	assert.Equal(t, "", NormalizeSkill(" "))
}

func TestFoldAccentsAndFirstToken(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "fevrier", FoldAccents("Février"))
	assert.Equal(t, "aout", FoldAccents("août"))
	assert.Equal(t, "français", FirstToken("Français (C1)"))
	assert.Equal(t, "", FirstToken(""))
}

func TestStringSet(t *testing.T) {
	t.Parallel()

	got := StringSet([]string{"SQL", "python", "sql", " ", "Go"}, NormalizeSkill)
	assert.Equal(t, []string{"go", "python", "sql"}, got)
}

func TestTokenizeKeepsTechnicalNames(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"c++", "c#", "node.js", "and", "go"}, tokenize("C++, C#, Node.js and Go."))
}

func TestContainsPhrase(t *testing.T) {
	t.Parallel()

	assert.True(t, containsPhrase("worked with machine learning models", "machine learning"))
	assert.False(t, containsPhrase("javascript developer", "java"))
	assert.False(t, containsPhrase("anything", ""))
}
