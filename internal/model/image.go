package model

import (
	"strings"
	"time"
)

// Category определяет назначение изображения товара.
type Category string

const (
	CategoryGeneral         Category = "GENERAL"
	CategoryDamagePrimary   Category = "DAMAGE_PRIMARY"
	CategoryDamageSecondary Category = "DAMAGE_SECONDARY"
)

// legacyCategories старые имена категорий, которые всё ещё присылают клиенты.
var legacyCategories = map[string]Category{
	"DAMAGE_1": CategoryDamagePrimary,
	"DAMAGE_2": CategoryDamageSecondary,
}

// NormalizeCategory приводит строку к каноническому имени категории.
// Допустимость категории проверяет политика вложений.
func NormalizeCategory(s string) Category {
	up := strings.ToUpper(strings.TrimSpace(s))
	if c, ok := legacyCategories[up]; ok {
		return c
	}
	return Category(up)
}

// IsDamage сообщает, относится ли категория к снимкам повреждений.
func (c Category) IsDamage() bool {
	return strings.HasPrefix(string(c), "DAMAGE_")
}

// Image хранит метаданные изображения товара. Файл лежит в хранилище по BlobRef.
type Image struct {
	ID        string   `gorm:"primaryKey;type:uuid" json:"id"`
	ProductID string   `gorm:"type:uuid;not null;index" json:"productId"`
	Category  Category `gorm:"type:varchar(32);not null" json:"type"`
	BlobRef   string   `gorm:"not null;uniqueIndex" json:"blobRef"`
	FileName  string   `json:"fileName"`
	MimeType  string   `gorm:"not null" json:"mimeType"`
	SizeBytes int64    `gorm:"not null" json:"size"`
	IsVisible bool     `gorm:"not null" json:"isVisible"`

	UploadedAt time.Time `gorm:"autoCreateTime" json:"uploadedAt"`
}
