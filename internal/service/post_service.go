// Package service holds the post business rules between HTTP and storage.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"time"

	"postboard/internal/middleware"
	"postboard/internal/models"
	"postboard/internal/notifications"
	"postboard/internal/observability"
	"postboard/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// PageSize is the fixed number of posts per list page.
const PageSize = 3

// Generic failure messages shown to clients.
const (
	msgRetrievePosts = "An error occurred while retrieving posts."
	msgRetrievePost  = "An error occurred while retrieving the post."
	msgCreatePost    = "An error occurred while creating the post."
	msgUpdatePost    = "An error occurred while updating the post."
	msgDeletePost    = "An error occurred while deleting the post."
)

// EventPublisher receives post lifecycle events after successful writes.
type EventPublisher interface {
	PublishPostEvent(ctx context.Context, eventType string, postID uint, status string) error
}

type PostService struct {
	repo      repository.PostRepository
	publisher EventPublisher
	now       func() time.Time
}

// ListPostsInput selects one page of posts. Page is 1-based; see ParsePage.
type ListPostsInput struct {
	Status   string
	Keywords string
	Page     int
}

// PostPage is one page of posts plus the page count for the same filter.
type PostPage struct {
	Data       []*models.Post `json:"data"`
	TotalPages int            `json:"total_pages"`
}

// PostInput is the full body of a create or replace.
type PostInput struct {
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	Status   string  `json:"status"`
	Category *string `json:"category"`
}

// PatchPostInput carries only the fields a PATCH provides; nil means untouched.
// Category can also be cleared with an explicit JSON null.
type PatchPostInput struct {
	Title    *string        `json:"title"`
	Content  *string        `json:"content"`
	Status   *string        `json:"status"`
	Category NullableString `json:"category" swaggertype:"string"`
}

// NullableString records whether a JSON field was present at all, so an
// explicit null is not mistaken for an omitted field.
type NullableString struct {
	Set   bool
	Value *string
}

// NewNullableString returns a set NullableString holding v.
func NewNullableString(v string) NullableString {
	return NullableString{Set: true, Value: &v}
}

func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// NewPostService wires a PostService. publisher may be nil.
func NewPostService(repo repository.PostRepository, publisher EventPublisher) *PostService {
	return &PostService{
		repo:      repo,
		publisher: publisher,
		now:       time.Now,
	}
}

// MaxPage is the largest page whose offset still fits in an int.
const MaxPage = math.MaxInt/PageSize + 1

// ParsePage turns the raw page query value into a page number.
// Missing, non-numeric and non-positive values become 1; larger values
// than MaxPage become MaxPage.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if errors.Is(err, strconv.ErrRange) && page > 0 {
		return MaxPage
	}
	if err != nil || page < 1 {
		return 1
	}
	return min(page, MaxPage)
}

// TotalPages returns ceil(count / PageSize).
func TotalPages(count int64) int {
	if count <= 0 {
		return 0
	}
	return int((count + PageSize - 1) / PageSize)
}

func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) (*PostPage, error) {
	filter := repository.PostFilter{Status: in.Status, Keywords: in.Keywords}
	page := min(max(in.Page, 1), MaxPage)

	span, ctx := observability.NewSpan(ctx, "PostService.ListPosts")
	defer span.End()
	span.AddAttributes(
		attribute.String("posts.query_shape", filter.Shape()),
		attribute.Int("posts.page", page),
	)

	var (
		posts []*models.Post
		count int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		posts, err = s.repo.List(gctx, filter, PageSize, (page-1)*PageSize)
		return err
	})
	g.Go(func() error {
		var err error
		count, err = s.repo.Count(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		span.SetError(err)
		return nil, models.NewStorageError(msgRetrievePosts, err)
	}

	if posts == nil {
		posts = []*models.Post{}
	}
	return &PostPage{Data: posts, TotalPages: TotalPages(count)}, nil
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	span, ctx := observability.NewSpan(ctx, "PostService.GetPost")
	defer span.End()
	span.AddAttributes(attribute.Int64("post.id", int64(id)))

	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.storageError(span, err, msgRetrievePost)
	}
	return post, nil
}

func (s *PostService) CreatePost(ctx context.Context, in PostInput) (*models.Post, error) {
	span, ctx := observability.NewSpan(ctx, "PostService.CreatePost")
	defer span.End()

	now := s.now()
	post := &models.Post{
		Title:       in.Title,
		Content:     in.Content,
		Status:      in.Status,
		Category:    in.Category,
		CreatedAt:   now,
		UpdatedAt:   now,
		PublishedAt: models.PublishedAtFor(in.Status, now),
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, s.storageError(span, err, msgCreatePost)
	}
	span.AddAttributes(attribute.Int64("post.id", int64(post.ID)))

	s.publish(ctx, notifications.EventPostCreated, post.ID, post.Status)
	return post, nil
}

// UpdatePost replaces every writable field of post id. Fields missing from
// in are stored as empty or NULL.
func (s *PostService) UpdatePost(ctx context.Context, id uint, in PostInput) error {
	span, ctx := observability.NewSpan(ctx, "PostService.UpdatePost")
	defer span.End()
	span.AddAttributes(attribute.Int64("post.id", int64(id)))

	now := s.now()
	changes := map[string]interface{}{
		"title":        in.Title,
		"content":      in.Content,
		"status":       in.Status,
		"category":     in.Category,
		"updated_at":   now,
		"published_at": models.PublishedAtFor(in.Status, now),
	}
	if err := s.repo.Update(ctx, id, changes); err != nil {
		return s.storageError(span, err, msgUpdatePost)
	}

	s.publish(ctx, notifications.EventPostUpdated, id, in.Status)
	return nil
}

// PatchPost writes only the fields set in in. published_at follows status
// only when status is part of the patch.
func (s *PostService) PatchPost(ctx context.Context, id uint, in PatchPostInput) error {
	span, ctx := observability.NewSpan(ctx, "PostService.PatchPost")
	defer span.End()
	span.AddAttributes(attribute.Int64("post.id", int64(id)))

	now := s.now()
	changes := map[string]interface{}{"updated_at": now}
	if in.Title != nil {
		changes["title"] = *in.Title
	}
	if in.Content != nil {
		changes["content"] = *in.Content
	}
	if in.Category.Set {
		changes["category"] = in.Category.Value
	}
	status := ""
	if in.Status != nil {
		status = *in.Status
		changes["status"] = status
		changes["published_at"] = models.PublishedAtFor(status, now)
	}

	if err := s.repo.Update(ctx, id, changes); err != nil {
		return s.storageError(span, err, msgUpdatePost)
	}

	s.publish(ctx, notifications.EventPostUpdated, id, status)
	return nil
}

func (s *PostService) DeletePost(ctx context.Context, id uint) error {
	span, ctx := observability.NewSpan(ctx, "PostService.DeletePost")
	defer span.End()
	span.AddAttributes(attribute.Int64("post.id", int64(id)))

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.storageError(span, err, msgDeletePost)
	}

	s.publish(ctx, notifications.EventPostDeleted, id, "")
	return nil
}

// storageError maps a repository error to NotFound or a generic storage failure.
func (s *PostService) storageError(span *observability.Span, err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError("Post")
	}
	span.SetError(err)
	return models.NewStorageError(message, err)
}

// publish is fail-open: the write already succeeded.
func (s *PostService) publish(ctx context.Context, eventType string, id uint, status string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishPostEvent(ctx, eventType, id, status); err != nil {
		middleware.Logger.WarnContext(ctx, "Failed to publish post event",
			"event_type", eventType,
			"post_id", id,
			"error", err,
		)
	}
}
