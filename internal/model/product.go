package model

import (
	"strings"
	"time"
)

// Condition — физическое состояние товара.
type Condition string

const (
	ConditionNew       Condition = "NEW"
	ConditionUsed      Condition = "USED"
	ConditionPartsOnly Condition = "PARTS_ONLY"
)

// ParseCondition разбирает строку в Condition; пустая строка не допускается.
func ParseCondition(s string) (Condition, bool) {
	c := Condition(strings.ToUpper(strings.TrimSpace(s)))
	switch c {
	case ConditionNew, ConditionUsed, ConditionPartsOnly:
		return c, true
	default:
		return "", false
	}
}

// Product серверная модель товара.
type Product struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"not null;index" json:"userId"` // владелец, ссылка на users.id

	ProductName string  `gorm:"not null" json:"productName"`
	LotNumber   string  `json:"lotNumber"`
	TruckNumber string  `json:"truckNumber"`
	Source      string  `json:"source"`
	UPC         string  `gorm:"column:upc" json:"upc"`
	ASIN        *string `gorm:"column:asin" json:"asin"`
	Link        *string `json:"link"`

	Condition    Condition `gorm:"type:varchar(16);not null;default:NEW" json:"condition"`
	Damaged      bool      `gorm:"not null;default:false" json:"damaged"`
	MissingItems bool      `gorm:"not null;default:false" json:"missingItems"`
	WhatsMissing *string   `json:"whatsMissing"`
	Notes        *string   `json:"notes"`
	MixedID      *string   `gorm:"column:mixed_id" json:"mixedId"`

	// Связи
	Images []Image `gorm:"foreignKey:ProductID" json:"images,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}
