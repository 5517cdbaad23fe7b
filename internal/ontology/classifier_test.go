package ontology

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/panini/ontology-go/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLookup 固定后代集合的子树查询
type fakeLookup struct {
	descendants map[string][]string
	err         error
}

func (f *fakeLookup) Descendants(ctx context.Context, categoryID string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.descendants[categoryID], nil
}

// fakeIndex 记录调用的向量索引
type fakeIndex struct {
	matches      []Match
	err          error
	nearestCalls int
	lastText     string
	lastIDs      []string
	lastK        int
}

func (f *fakeIndex) Upsert(ctx context.Context, categoryID, text string) error {
	return nil
}

func (f *fakeIndex) Nearest(ctx context.Context, text string, candidateIDs []string, k int) ([]Match, error) {
	f.nearestCalls++
	f.lastText = text
	f.lastIDs = candidateIDs
	f.lastK = k
	return f.matches, f.err
}

func (f *fakeIndex) Ready() bool {
	return true
}

func TestClassifyLeafShortCircuit(t *testing.T) {
	lookup := &fakeLookup{descendants: map[string][]string{}}
	index := &fakeIndex{}
	classifier := NewClassifier(lookup, index)

	got, err := classifier.Classify(context.Background(), "some text", "leaf")

	require.NoError(t, err)
	assert.Equal(t, "leaf", got)
	// 叶子分类不做向量检索
	assert.Zero(t, index.nearestCalls)
}

func TestClassifyScopesSearchToSubtree(t *testing.T) {
	lookup := &fakeLookup{descendants: map[string][]string{
		"root": {"child-a", "child-b"},
	}}
	index := &fakeIndex{matches: []Match{{CategoryID: "child-b", Score: 0.9}}}
	classifier := NewClassifier(lookup, index)

	got, err := classifier.Classify(context.Background(), "segment", "root")

	require.NoError(t, err)
	assert.Equal(t, "child-b", got)
	assert.Equal(t, 1, index.nearestCalls)
	assert.Equal(t, 1, index.lastK)
	// 候选集是后代加上根自身
	assert.ElementsMatch(t, []string{"child-a", "child-b", "root"}, index.lastIDs)
	assert.Equal(t, "segment", index.lastText)
}

func TestClassifyRootItselfCanWin(t *testing.T) {
	lookup := &fakeLookup{descendants: map[string][]string{
		"root": {"child"},
	}}
	index := &fakeIndex{matches: []Match{{CategoryID: "root", Score: 0.7}}}
	classifier := NewClassifier(lookup, index)

	got, err := classifier.Classify(context.Background(), "segment", "root")

	require.NoError(t, err)
	assert.Equal(t, "root", got)
}

func TestClassifyUnresolvedWhenIndexEmpty(t *testing.T) {
	lookup := &fakeLookup{descendants: map[string][]string{
		"root": {"child"},
	}}
	index := &fakeIndex{matches: nil}
	classifier := NewClassifier(lookup, index)

	_, err := classifier.Classify(context.Background(), "segment", "root")

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeClassificationUnresolved, apperrors.CodeOf(err))
}

func TestClassifyPropagatesLookupError(t *testing.T) {
	lookup := &fakeLookup{err: errors.New("db down")}
	index := &fakeIndex{}
	classifier := NewClassifier(lookup, index)

	_, err := classifier.Classify(context.Background(), "segment", "root")

	assert.Error(t, err)
	assert.Zero(t, index.nearestCalls)
}

func TestClassifyPropagatesIndexError(t *testing.T) {
	lookup := &fakeLookup{descendants: map[string][]string{"root": {"child"}}}
	index := &fakeIndex{err: errors.New("embedding failed")}
	classifier := NewClassifier(lookup, index)

	_, err := classifier.Classify(context.Background(), "segment", "root")

	assert.Error(t, err)
}
