package main

import (
	"log"
	"strconv"

	"github.com/beego/beego/v2/server/web"
	"github.com/joho/godotenv"
	"github.com/panini/ontology-go/app/router"
	"github.com/panini/ontology-go/internal/cache"
	"github.com/panini/ontology-go/internal/config"
	"github.com/panini/ontology-go/internal/database"
	"github.com/panini/ontology-go/internal/logger"
	"github.com/panini/ontology-go/internal/ontology"
	"github.com/panini/ontology-go/internal/repository"
	"github.com/panini/ontology-go/internal/storage"
	"go.uber.org/zap"
)

func main() {
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

	fileStore, err := storage.NewFileStore(cfg.Storage)
	if err != nil {
		logger.Fatal("failed to initialize file storage", zap.Error(err))
	}

	categoryRepo := repository.NewCategoryRepository(db)
	fileRepo := repository.NewFileInfoRepository(db)
	knowledgeRepo := repository.NewKnowledgeRepository(db)
	chunkCache := cache.NewChunkCache()

	// API侧只做子树查询，不写向量，所以目录不挂向量索引
	lookup := ontology.NewDirectory(db, categoryRepo, nil, cfg.Ontology.TraversalDepth)

	router.Init(categoryRepo, fileRepo, knowledgeRepo, lookup, fileStore, chunkCache)

	web.BConfig.AppName = "ontology-api"
	web.BConfig.CopyRequestBody = true
	if port, err := strconv.Atoi(cfg.Server.Port); err == nil {
		web.BConfig.Listen.HTTPPort = port
	}

	logger.Info("starting ontology api", zap.Int("port", web.BConfig.Listen.HTTPPort))
	web.Run()
}
