package model

// Blob хранит содержимое файла изображения, когда файлы лежат в БД.
type Blob struct {
	Ref  string `gorm:"primaryKey"`
	Data []byte `gorm:"not null"`
}
