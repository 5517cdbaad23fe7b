package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	require.NoError(t, LoadConfig())

	assert.Equal(t, "ontology-request", AppConfig.Kafka.RequestTopic)
	assert.Equal(t, "ontology-response", AppConfig.Kafka.ResponseTopic)
	assert.Equal(t, 2000, AppConfig.Ontology.SegmentMaxChars)
	assert.Equal(t, "database", AppConfig.VectorStore.Provider)
	assert.Equal(t, []string{".pdf"}, AppConfig.FileUpload.AllowedTypes)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092")
	t.Setenv("DATABASE_URL", "postgresql://test:test@db:5432/ontology_test")
	t.Setenv("KAFKA_GROUP_ID", "test-group")

	require.NoError(t, LoadConfig())

	// 逗号分隔的broker列表会被拆开并去掉空白
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, AppConfig.Kafka.Brokers)
	assert.Equal(t, "postgresql://test:test@db:5432/ontology_test", AppConfig.Database.URL)
	assert.Equal(t, "test-group", AppConfig.Kafka.GroupID)
}
