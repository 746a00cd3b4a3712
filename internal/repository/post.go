// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"fmt"

	"postboard/internal/models"
	"postboard/internal/observability"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations.
// Update and Delete return gorm.ErrRecordNotFound when no row matched.
type PostRepository interface {
	List(ctx context.Context, filter PostFilter, limit, offset int) ([]*models.Post, error)
	Count(ctx context.Context, filter PostFilter) (int64, error)
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, id uint, changes map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{
		db:      db,
		metrics: observability.NewDatabaseMetrics("posts"),
	}
}

func (r *postRepository) List(ctx context.Context, filter PostFilter, limit, offset int) (posts []*models.Post, err error) {
	done := r.metrics.TrackQuery("list")
	defer func() { done(err) }()

	query, args, err := listQuery(filter, r.db.Dialector.Name(), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	posts = make([]*models.Post, 0, limit)
	if err = r.db.WithContext(ctx).Raw(query, args...).Scan(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) Count(ctx context.Context, filter PostFilter) (total int64, err error) {
	done := r.metrics.TrackQuery("count")
	defer func() { done(err) }()

	query, args, err := countQuery(filter, r.db.Dialector.Name())
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	if err = r.db.WithContext(ctx).Raw(query, args...).Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (_ *models.Post, err error) {
	done := r.metrics.TrackQuery("get")
	defer func() { done(ignoreNotFound(err)) }()

	var post models.Post
	if err = r.db.WithContext(ctx).Where("post_id = ?", id).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) (err error) {
	done := r.metrics.TrackQuery("create")
	defer func() { done(err) }()

	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) Update(ctx context.Context, id uint, changes map[string]interface{}) (err error) {
	done := r.metrics.TrackQuery("update")
	defer func() { done(ignoreNotFound(err)) }()

	result := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("post_id = ?", id).
		Updates(changes)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) (err error) {
	done := r.metrics.TrackQuery("delete")
	defer func() { done(ignoreNotFound(err)) }()

	result := r.db.WithContext(ctx).Where("post_id = ?", id).Delete(&models.Post{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ignoreNotFound keeps missing rows out of the query error metric.
func ignoreNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}
