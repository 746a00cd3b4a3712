// Package models contains data structures for the application's domain models.
package models

import "time"

// PostStatusPublished is the only status value with publication semantics.
const PostStatusPublished = "published"

// Post represents a blog post stored in the posts table.
// Timestamps are stamped by the service clock, never by GORM.
type Post struct {
	ID          uint       `gorm:"column:post_id;primaryKey" json:"post_id"`
	Title       string     `gorm:"type:text" json:"title"`
	Content     string     `gorm:"type:text" json:"content"`
	Status      string     `gorm:"index" json:"status"`
	Category    *string    `json:"category"`
	CreatedAt   time.Time  `gorm:"autoCreateTime:false" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime:false" json:"updated_at"`
	PublishedAt *time.Time `json:"published_at"`
}

// TableName pins the table name used by the storage layer.
func (Post) TableName() string {
	return "posts"
}

// IsPublished reports whether status carries publication semantics.
func IsPublished(status string) bool {
	return status == PostStatusPublished
}

// PublishedAtFor returns the published_at value a write with the given status
// must store: now when published, nil otherwise.
func PublishedAtFor(status string, now time.Time) *time.Time {
	if !IsPublished(status) {
		return nil
	}
	t := now
	return &t
}
