package model

import "time"

// ReconciliationKind описывает вид расхождения между метаданными и хранилищем файлов.
type ReconciliationKind string

const (
	// Файл записан, но строка метаданных не создана и откат не удался.
	ReconcileOrphanBlob ReconciliationKind = "orphan_blob"
	// Строка метаданных удалена, а файл удалить не удалось.
	ReconcileDanglingBlob ReconciliationKind = "dangling_blob"
)

// ReconciliationEvent фиксирует расхождение для внешней сверки после частичного сбоя.
type ReconciliationEvent struct {
	ID        string             `gorm:"primaryKey;type:uuid" json:"id"`
	Kind      ReconciliationKind `gorm:"type:varchar(32);not null;index" json:"kind"`
	ImageID   string             `gorm:"index" json:"imageId"`
	ProductID string             `gorm:"index" json:"productId"`
	BlobRef   string             `gorm:"not null" json:"blobRef"`
	Reason    string             `json:"reason"`
	CreatedAt time.Time          `gorm:"autoCreateTime" json:"createdAt"`
}
