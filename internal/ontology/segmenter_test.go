package ontology

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitByBoundaryShortText(t *testing.T) {
	pieces := splitByBoundary("short text", 2000)
	assert.Equal(t, []string{"short text"}, pieces)
}

func TestSplitByBoundaryEmptyInput(t *testing.T) {
	assert.Empty(t, splitByBoundary("", 2000))
	assert.Empty(t, splitByBoundary("   \n\n  ", 2000))
}

func TestSplitByBoundaryMaxLength(t *testing.T) {
	text := strings.Repeat("a", 5000)
	pieces := splitByBoundary(text, 2000)

	require.Len(t, pieces, 3)
	for _, piece := range pieces {
		assert.LessOrEqual(t, len([]rune(piece)), 2000)
	}
	// 没有边界时硬切，内容无丢失无重叠
	assert.Equal(t, text, strings.Join(pieces, ""))
}

func TestSplitByBoundaryPrefersParagraphBreak(t *testing.T) {
	first := strings.Repeat("a", 50)
	second := strings.Repeat("b", 100)
	text := first + "\n\n" + second

	pieces := splitByBoundary(text, 100)

	require.Len(t, pieces, 2)
	assert.Equal(t, first, pieces[0])
	assert.Equal(t, second, pieces[1])
}

func TestSplitByBoundaryParagraphOverSentence(t *testing.T) {
	// 窗口内同时有句末标点和段落空行，应在段落处切
	text := "one. two" + "\n\n" + "three" + strings.Repeat("x", 100)

	pieces := splitByBoundary(text, 20)

	assert.Equal(t, "one. two", pieces[0])
}

func TestSplitByBoundaryFallsBackToNewline(t *testing.T) {
	first := strings.Repeat("a", 40)
	second := strings.Repeat("b", 100)
	text := first + "\n" + second

	pieces := splitByBoundary(text, 80)

	assert.Equal(t, first, pieces[0])
}

func TestSplitByBoundaryFallsBackToSentence(t *testing.T) {
	first := "This is a sentence."
	text := first + " " + strings.Repeat("b", 200)

	pieces := splitByBoundary(text, 100)

	assert.Equal(t, first, pieces[0])
}

func TestSplitByBoundaryCJKSentenceTerminators(t *testing.T) {
	first := "第一句。"
	text := first + strings.Repeat("あ", 100)

	pieces := splitByBoundary(text, 50)

	assert.Equal(t, first, pieces[0])

	// 全角句点同样算句末
	pieces = splitByBoundary("ＡＢＣ．"+strings.Repeat("x", 100), 50)
	assert.Equal(t, "ＡＢＣ．", pieces[0])
}

func TestSegmenterSequentialIndexes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	content := strings.Repeat("a", 30) + "\n\n" + strings.Repeat("b", 30) + "\n\n" + strings.Repeat("c", 30)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	segmenter := NewSegmenter(40)
	segments, err := segmenter.Segment(path)

	require.NoError(t, err)
	require.Len(t, segments, 3)
	for i, segment := range segments {
		assert.Equal(t, i, segment.Index)
		assert.NotEmpty(t, segment.Text)
	}
}

func TestSegmenterUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.xyz")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))

	segmenter := NewSegmenter(0)
	_, err := segmenter.Segment(path)

	assert.Error(t, err)
}

func TestSegmenterDefaultMaxChars(t *testing.T) {
	segmenter := NewSegmenter(0)
	assert.Equal(t, DefaultSegmentMaxChars, segmenter.maxChars)
}
