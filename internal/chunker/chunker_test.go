package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeParagraph builds a paragraph of n nine-character words.
func makeParagraph(prefix string, n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("%s%06d", prefix, i)
	}
	return strings.Join(words, " ")
}

func TestChunkShortTextSinglePassage(t *testing.T) {
	text := "A short note about an offence."
	passages := Chunk(text, 1000, 200)

	require.Len(t, passages, 1)
	assert.Equal(t, text, passages[0])
}

func TestChunkEmptyText(t *testing.T) {
	assert.Nil(t, Chunk("", 1000, 200))
	assert.Nil(t, Chunk("   \n\n  ", 1000, 200))
}

func TestChunkTwoParagraphsYieldsThreePassages(t *testing.T) {
	// Two ~1,200-character paragraphs, 2,400 characters of content total.
	text := makeParagraph("aaa", 120) + "\n\n" + makeParagraph("bbb", 120)
	passages := Chunk(text, 1000, 200)

	require.Len(t, passages, 3)
	for i, p := range passages {
		assert.LessOrEqual(t, len(p), 1000, "passage %d exceeds max size", i)
	}

	// Each non-initial passage starts with a word-tail of its predecessor.
	for i := 1; i < len(passages); i++ {
		tail := wordTail(passages[i-1], 200)
		require.NotEmpty(t, tail)
		assert.True(t, strings.HasPrefix(passages[i], tail),
			"passage %d does not begin with predecessor tail", i)
	}
}

func TestChunkOverlapStrippedReconstruction(t *testing.T) {
	text := makeParagraph("rec", 300)
	passages := Chunk(text, 800, 150)
	require.Greater(t, len(passages), 1)

	// Stripping each passage's leading overlap and concatenating the word
	// sequences reproduces the input with no gaps.
	var rebuilt []string
	rebuilt = append(rebuilt, strings.Fields(passages[0])...)
	for i := 1; i < len(passages); i++ {
		tail := wordTail(passages[i-1], 150)
		body := strings.TrimSpace(strings.TrimPrefix(passages[i], tail))
		rebuilt = append(rebuilt, strings.Fields(body)...)
	}

	assert.Equal(t, strings.Fields(text), rebuilt)
}

func TestChunkBoundNeverExceededAcrossSizes(t *testing.T) {
	text := makeParagraph("p", 40) + "\n\n" + makeParagraph("q", 500) + "\n\n" + makeParagraph("r", 7)
	for _, maxSize := range []int{200, 500, 1000, 4000} {
		for _, overlap := range []int{0, 50, 200} {
			for i, p := range Chunk(text, maxSize, overlap) {
				assert.LessOrEqual(t, len(p), maxSize,
					"maxSize=%d overlap=%d passage=%d", maxSize, overlap, i)
			}
		}
	}
}

func TestChunkLongWordKeptWhole(t *testing.T) {
	long := strings.Repeat("x", 120)
	text := makeParagraph("w", 30) + " " + long + " " + makeParagraph("v", 30)
	passages := Chunk(text, 100, 20)

	found := false
	for _, p := range passages {
		if strings.Contains(p, long) {
			found = true
		}
	}
	assert.True(t, found, "oversized word must survive unsplit")
}

func TestChunkSmallParagraphsAccumulate(t *testing.T) {
	paragraphs := make([]string, 6)
	for i := range paragraphs {
		paragraphs[i] = fmt.Sprintf("Paragraph number %d with a little text.", i)
	}
	text := strings.Join(paragraphs, "\n\n")

	passages := Chunk(text, 10000, 100)
	require.Len(t, passages, 1)
	for _, p := range paragraphs {
		assert.Contains(t, passages[0], p)
	}
}
