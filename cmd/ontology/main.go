package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/panini/ontology-go/internal/config"
	"github.com/panini/ontology-go/internal/database"
	"github.com/panini/ontology-go/internal/kafka"
	"github.com/panini/ontology-go/internal/logger"
	"github.com/panini/ontology-go/internal/metrics"
	"github.com/panini/ontology-go/internal/ontology"
	"github.com/panini/ontology-go/internal/repository"
	"github.com/panini/ontology-go/internal/storage"
	"go.uber.org/zap"
)

func main() {
	// .env仅本地开发使用，不存在就跳过
	_ = godotenv.Load()

	if err := logger.InitLogger(); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := config.LoadConfig(); err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	cfg := config.AppConfig

	db, err := database.InitDB()
	if err != nil {
		logger.Fatal("failed to connect database", zap.Error(err))
	}
	defer database.CloseDB()

	if cfg.Redis.Enabled {
		if _, err := database.InitRedis(); err != nil {
			logger.Warn("redis unavailable, continuing without cache", zap.Error(err))
		} else {
			defer database.CloseRedis()
		}
	}

	embedder := ontology.NewOpenAIEmbedder(cfg.Embedding.OpenAIAPIKey, cfg.Embedding.Model)
	if !embedder.Ready() {
		logger.Warn("embedding provider not configured, classification will fail until OPENAI_API_KEY is set")
	}

	var index ontology.VectorIndex
	switch cfg.VectorStore.Provider {
	case "milvus":
		index, err = ontology.NewMilvusVectorIndex(ontology.MilvusOptions{
			Address:    cfg.VectorStore.Milvus.Address,
			Username:   cfg.VectorStore.Milvus.Username,
			Password:   cfg.VectorStore.Milvus.Password,
			Collection: cfg.VectorStore.Milvus.Collection,
			VectorSize: cfg.VectorStore.Milvus.VectorSize,
			Distance:   cfg.VectorStore.Milvus.Distance,
			Database:   cfg.VectorStore.Milvus.Database,
			UseTLS:     cfg.VectorStore.Milvus.TLS,
		}, embedder)
		if err != nil {
			logger.Fatal("failed to initialize milvus vector index", zap.Error(err))
		}
	default:
		index = ontology.NewDatabaseVectorIndex(db, embedder)
	}

	fileStore, err := storage.NewFileStore(cfg.Storage)
	if err != nil {
		logger.Fatal("failed to initialize file storage", zap.Error(err))
	}

	categoryRepo := repository.NewCategoryRepository(db)
	fileRepo := repository.NewFileInfoRepository(db)

	directory := ontology.NewDirectory(db, categoryRepo, index, cfg.Ontology.TraversalDepth)
	classifier := ontology.NewClassifier(directory, index)
	segmenter := ontology.NewSegmenter(cfg.Ontology.SegmentMaxChars)
	knowledgeStore := ontology.NewKnowledgeStore(db)

	router := ontology.NewRouter(directory, classifier, segmenter, fileRepo, fileStore, knowledgeStore)

	consumer, err := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, []string{cfg.Kafka.RequestTopic})
	if err != nil {
		logger.Fatal("failed to create kafka consumer", zap.Error(err))
	}

	producer, err := kafka.NewProducer(cfg.Kafka.Brokers)
	if err != nil {
		logger.Fatal("failed to create kafka producer", zap.Error(err))
	}
	defer producer.Close()

	worker := ontology.NewWorker(router, consumer, producer, cfg.Kafka.RequestTopic, cfg.Kafka.ResponseTopic)
	worker.Start()

	if cfg.Metrics.Enabled {
		go metrics.Serve(":" + cfg.Metrics.Port)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down ontology worker")
	if err := worker.Stop(); err != nil {
		logger.Error("worker shutdown failed", zap.Error(err))
	}
}
