package router

import (
	"github.com/beego/beego/v2/server/web"
	"github.com/panini/ontology-go/app/controllers"
	"github.com/panini/ontology-go/internal/cache"
	"github.com/panini/ontology-go/internal/ontology"
	"github.com/panini/ontology-go/internal/repository"
	"github.com/panini/ontology-go/internal/storage"
)

// Init registers all routes. Must be called after database and storage
// are initialized.
func Init(
	categories repository.CategoryRepository,
	files repository.FileInfoRepository,
	knowledge repository.KnowledgeRepository,
	lookup ontology.SubtreeLookup,
	fileStore storage.FileStore,
	chunkCache *cache.ChunkCache,
) {
	web.Router("/health", &controllers.HealthController{}, "get:Health")

	fileController := controllers.NewFileController(files, fileStore)
	web.Router("/files", fileController, "post:Upload")

	chunkController := controllers.NewChunkController(knowledge, chunkCache)
	web.Router("/chunks", chunkController, "post:GetChunks")

	categoryController := controllers.NewCategoryController(categories, knowledge, lookup, chunkCache)
	web.Router("/updateCategory", categoryController, "put:UpdateCategory")
	web.Router("/deleteCategory", categoryController, "delete:DeleteCategory")
}
