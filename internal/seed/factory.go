// Package seed creates demo posts for development databases.
package seed

import (
	"context"
	"fmt"
	"time"

	"postboard/internal/middleware"
	"postboard/internal/models"
	"postboard/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

var (
	statuses   = []string{"draft", "published", "published", "archived"}
	categories = []string{"news", "engineering", "design", "culture", "releases"}
)

// Options control how many posts are built and how far back they are dated.
type Options struct {
	Posts   int
	MaxDays int
	// Seed makes the generated content reproducible; 0 means random.
	Seed int64
}

// Factory builds fake posts. It does not persist anything.
type Factory struct {
	faker *gofakeit.Faker
	opts  Options
	now   func() time.Time
}

// NewFactory creates a Factory.
func NewFactory(opts Options) *Factory {
	if opts.MaxDays <= 0 {
		opts.MaxDays = 90
	}
	return &Factory{
		faker: gofakeit.New(opts.Seed),
		opts:  opts,
		now:   time.Now,
	}
}

// BuildPost returns one post with a random status, an optional category and a
// created_at spread over the last MaxDays days.
func (f *Factory) BuildPost(overrides ...func(*models.Post)) *models.Post {
	now := f.now()
	created := f.faker.DateRange(now.AddDate(0, 0, -f.opts.MaxDays), now)

	post := &models.Post{
		Title:     f.faker.Sentence(5),
		Content:   f.faker.Paragraph(1, 3, 8, "\n"),
		Status:    f.faker.RandomString(statuses),
		CreatedAt: created,
		UpdatedAt: created,
	}
	if f.faker.Bool() {
		category := f.faker.RandomString(categories)
		post.Category = &category
	}
	for _, override := range overrides {
		override(post)
	}
	post.PublishedAt = models.PublishedAtFor(post.Status, post.UpdatedAt)
	return post
}

// Seeder persists factory posts through the post repository.
type Seeder struct {
	db      *gorm.DB
	repo    repository.PostRepository
	factory *Factory
}

// NewSeeder binds a Seeder to db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{
		db:      db,
		repo:    repository.NewPostRepository(db),
		factory: NewFactory(opts),
	}
}

// Clean removes every post.
func (s *Seeder) Clean(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Exec("DELETE FROM posts").Error; err != nil {
		return fmt.Errorf("clean posts: %w", err)
	}
	middleware.Logger.InfoContext(ctx, "Removed existing posts")
	return nil
}

// SeedPosts inserts opts.Posts posts and returns them.
func (s *Seeder) SeedPosts(ctx context.Context) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, s.factory.opts.Posts)
	for i := 0; i < s.factory.opts.Posts; i++ {
		post := s.factory.BuildPost()
		if err := s.repo.Create(ctx, post); err != nil {
			return posts, fmt.Errorf("create post %d: %w", i+1, err)
		}
		posts = append(posts, post)
	}
	middleware.Logger.InfoContext(ctx, "Seeded posts", "count", len(posts))
	return posts, nil
}
