package ontology

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/panini/ontology-go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePublisher 记录发布的结果消息
type fakePublisher struct {
	err      error
	topics   []string
	payloads []interface{}
}

func (f *fakePublisher) SendJSON(topic, key string, payload interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.topics = append(f.topics, topic)
	f.payloads = append(f.payloads, payload)
	return nil
}

func newTestWorker(router *Router, publisher *fakePublisher) *Worker {
	return NewWorker(router, nil, publisher, "ontology-request", "ontology-response")
}

func TestWorkerDiscardsMalformedPayload(t *testing.T) {
	publisher := &fakePublisher{}
	router := newTestRouter(&fakeDirectory{}, &fakeClassifier{}, &fakeSegmenter{}, nil, &fakeResultStore{})
	worker := newTestWorker(router, publisher)

	err := worker.handleMessage(context.Background(), &sarama.ConsumerMessage{
		Value: []byte("definitely not json"),
	})

	// 错误只用于日志，不发任何结果消息
	assert.Error(t, err)
	assert.Empty(t, publisher.payloads)
}

func TestWorkerPublishesEachOutcome(t *testing.T) {
	dir := &fakeDirectory{existing: map[string]bool{"cat-1": true}}
	seg := &fakeSegmenter{segments: []Segment{
		{Index: 0, Text: "first"},
		{Index: 1, Text: "second"},
	}}
	files := &fakeFileRepo{files: map[string]*models.KnowledgeFileInfo{
		"file-1": {FileID: "file-1", FileName: "doc.txt"},
	}}
	publisher := &fakePublisher{}
	router := newTestRouter(dir, &fakeClassifier{}, seg, files, &fakeResultStore{})
	worker := newTestWorker(router, publisher)

	err := worker.handleMessage(context.Background(), &sarama.ConsumerMessage{
		Value: []byte(`{"category_id":"cat-1","file_id":"file-1"}`),
	})

	require.NoError(t, err)
	require.Len(t, publisher.payloads, 2)
	for _, topic := range publisher.topics {
		assert.Equal(t, "ontology-response", topic)
	}

	outcome, ok := publisher.payloads[0].(Outcome)
	require.True(t, ok)
	assert.Equal(t, "cat-1", *outcome.CategoryID)
	assert.Equal(t, ChunkID("file-1", 0), *outcome.ChunkID)
}

func TestWorkerPublishFailurePropagates(t *testing.T) {
	dir := &fakeDirectory{existing: map[string]bool{}}
	publisher := &fakePublisher{err: errors.New("broker down")}
	router := newTestRouter(dir, &fakeClassifier{}, &fakeSegmenter{}, nil, &fakeResultStore{})
	worker := newTestWorker(router, publisher)

	err := worker.handleMessage(context.Background(), &sarama.ConsumerMessage{
		Value: []byte(`{"category_id":"cat-1"}`),
	})

	assert.Error(t, err)
}

func TestWorkerSilentOnMissingCategoryID(t *testing.T) {
	publisher := &fakePublisher{}
	router := newTestRouter(&fakeDirectory{}, &fakeClassifier{}, &fakeSegmenter{}, nil, &fakeResultStore{})
	worker := newTestWorker(router, publisher)

	err := worker.handleMessage(context.Background(), &sarama.ConsumerMessage{
		Value: []byte(`{"file_id":"file-1"}`),
	})

	require.NoError(t, err)
	assert.Empty(t, publisher.payloads)
}
