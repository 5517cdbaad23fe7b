package models

import "time"

// Category 分类表，category_id是外部指派的业务ID，parent_id为空表示根节点
type Category struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	CategoryName string `gorm:"column:category_name" json:"category_name"`
	CategoryID   string `gorm:"column:category_id;size:255;uniqueIndex;not null" json:"category_id"`
	ParentID     *string `gorm:"column:parent_id;size:255;index" json:"parent_id"`
	Tenant       string `gorm:"column:tenant" json:"tenant"`
}

func (Category) TableName() string {
	return "category"
}

// CategoryEmbedding 分类向量表（database向量存储后端使用）
type CategoryEmbedding struct {
	CategoryID string    `gorm:"column:category_id;size:255;primaryKey" json:"category_id"`
	Embedding  string    `gorm:"column:embedding;type:json" json:"embedding"`
	CreateTime time.Time `gorm:"column:create_time;autoCreateTime" json:"create_time"`
}

func (CategoryEmbedding) TableName() string {
	return "category_embedding"
}

// Knowledge 知识表，每行对应一个已分类的文本分段
type Knowledge struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	CategoryID string `gorm:"column:category_id;size:255;index" json:"category_id"`
	Text       string `gorm:"column:text;type:text" json:"text"`
	ChunkID    string `gorm:"column:chunk_id;type:uuid;uniqueIndex" json:"chunk_id"`
	FileID     string `gorm:"column:file_id;size:255;index" json:"file_id"`
}

func (Knowledge) TableName() string {
	return "knowledge"
}

// 文件处理状态
const (
	FileStatusPending   = "0"
	FileStatusProcessed = "1"
)

// KnowledgeFileInfo 文件元数据表，由上传服务创建，管线只读file_name并回写status
type KnowledgeFileInfo struct {
	FileName  string `gorm:"column:file_name" json:"file_name"`
	FileID    string `gorm:"column:file_id;size:255;primaryKey" json:"file_id"`
	HashValue string `gorm:"column:hash_value" json:"hash_value"`
	Status    string `gorm:"column:status" json:"status"`
}

func (KnowledgeFileInfo) TableName() string {
	return "knowledge_file_info"
}
