package textproc

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "go and rust", Normalize("  Go\tand\n\nRust "))
	assert.Equal(t, "", Normalize("   "))
}

func TestFold(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Pokemon", Fold("Pokémon"))
	assert.Equal(t, "ABC", Fold("ＡＢＣ"))
}

func TestTokens(t *testing.T) {
	t.Parallel()

	got := Tokens("Experienced in C++, C# and Node.js (CI-CD)")
	assert.Equal(t, []string{"experienced", "in", "c++", "c#", "and", "node.js", "ci-cd"}, got)

	set := TokenSet("Go go GO")
	assert.Len(t, set, 1)
}

func TestSentences(t *testing.T) {
	t.Parallel()

	text := "Built APIs with Python 3.x and node.js. Led a team!\n- Deployed on AWS\n\nDone?"
	got := Sentences(text)
	require.Equal(t, []string{
		"Built APIs with Python 3.x and node.js.",
		"Led a team!",
		"- Deployed on AWS",
		"Done?",
	}, got)
}

func TestChunk(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("This sentence has exactly forty chars. ", 10)
	chunks := Chunk(text, nil, 100, 45)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 130)
	}
	// overlap carries one sentence into the next chunk
	assert.True(t, strings.HasPrefix(chunks[1], "This sentence"))

	assert.Nil(t, Chunk("   ", nil, 100, 0))
}

func TestChunkCutsLongTextOnRuneBoundary(t *testing.T) {
	t.Parallel()

	// the two-byte rune straddles the length bound
	text := strings.Repeat("a", MaxTextLength-1) + "é tail"
	chunks := Chunk(text, nil, 0, 0)
	require.NotEmpty(t, chunks)

	joined := strings.Join(chunks, " ")
	for _, c := range chunks {
		assert.True(t, utf8.ValidString(c))
	}
	assert.NotContains(t, joined, "é")
	assert.NotContains(t, joined, "tail")
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "héll", Truncate("héllo", 4))
	assert.Equal(t, "hi", Truncate("hi", 4))
	assert.Equal(t, "", Truncate("hi", 0))
}
