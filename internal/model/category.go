package model

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const DefaultCategorySlug = "default-category"

type Category struct {
	Row
	Name string `gorm:"type:varchar(64);not null" json:"name"`
	Slug string `gorm:"type:varchar(64);uniqueIndex;not null" json:"slug"`
}

// EnsureDefaultCategory 未指定分类的活动归入默认分类
func EnsureDefaultCategory(tx *gorm.DB) error {
	return tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&Category{Name: "聚会", Slug: DefaultCategorySlug}).Error
}

func DefaultCategoryID(tx *gorm.DB) (uint, error) {
	if err := EnsureDefaultCategory(tx); err != nil {
		return 0, err
	}
	var c Category
	err := tx.Where("slug = ?", DefaultCategorySlug).First(&c).Error
	return c.ID, err
}
