package seed

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/inkwellhq/inkwell/backend/internal/logger"
	"github.com/inkwellhq/inkwell/backend/internal/models"
	"github.com/inkwellhq/inkwell/backend/internal/search"
	"github.com/inkwellhq/inkwell/backend/internal/util"
)

// Seeder fills the database with representative content for development and
// end-to-end testing
type Seeder struct {
	db     *gorm.DB
	search *search.Client
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	// Note: Seed returns an error only for invalid sources, time.Now().UnixNano() is always valid
	_ = gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db}
}

// SetSearchClient enables Elasticsearch backfill of published posts
func (s *Seeder) SetSearchClient(sc *search.Client) {
	s.search = sc
}

// Editorial sections the platform launched with
var seedCategories = []struct {
	slug string
	name string
	desc string
}{
	{"essays", "Essays", "Personal and critical essays"},
	{"fiction", "Fiction", "Short stories and serialized fiction"},
	{"poetry", "Poetry", "Verse in every register"},
	{"criticism", "Criticism", "Books, film, and culture reviewed"},
	{"letters", "Letters", "Dispatches and correspondence"},
	{"science", "Science", "Research explained for readers"},
	{"technology", "Technology", "Writing on software and society"},
	{"food", "Food", "Cooking, eating, and everything between"},
}

var seedTags = []string{
	"craft", "memory", "cities", "nature", "grief", "humor", "travel",
	"music", "history", "language", "solitude", "friendship", "work",
	"mornings", "archives", "translation", "photography", "weather",
	"reading", "letters",
}

var titleTemplates = []string{
	"On %s",
	"Notes on %s",
	"The Case for %s",
	"A Field Guide to %s",
	"What %s Taught Me",
	"Against %s",
	"In Praise of %s",
	"%s, Revisited",
	"The Quiet Power of %s",
	"Letters from %s",
}

var titleTopics = []string{
	"Slow Mornings", "Old Maps", "Second Drafts", "Night Trains",
	"Borrowed Books", "Small Kitchens", "Long Walks", "Lost Languages",
	"Winter Light", "Public Libraries", "Handwritten Notes", "Early Drafts",
	"Quiet Rooms", "River Towns", "Abandoned Gardens", "Paper Archives",
}

// SeedDev seeds the development database with a realistic content graph:
// contributors with uneven output, aged posts, and engagement rows that the
// counters actually agree with
func (s *Seeder) SeedDev() error {
	log := func(msg string) {
		logger.Log.Info(msg)
	}

	log("Creating users...")
	users, err := s.seedUsers(50)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	log("Creating categories and tags...")
	categories, tags, err := s.seedTaxonomy()
	if err != nil {
		return fmt.Errorf("failed to seed taxonomy: %w", err)
	}

	log("Creating posts...")
	posts, err := s.seedPosts(users, categories, tags, 300)
	if err != nil {
		return fmt.Errorf("failed to seed posts: %w", err)
	}

	log("Creating follows...")
	if err := s.seedFollows(users, categories, tags); err != nil {
		return fmt.Errorf("failed to seed follows: %w", err)
	}

	log("Creating read history...")
	if err := s.seedReads(users, posts, 1500); err != nil {
		return fmt.Errorf("failed to seed reads: %w", err)
	}

	log("Creating comments...")
	if err := s.seedComments(users, posts, 800); err != nil {
		return fmt.Errorf("failed to seed comments: %w", err)
	}

	log("Creating reactions...")
	if err := s.seedReactions(users, posts, 2000); err != nil {
		return fmt.Errorf("failed to seed reactions: %w", err)
	}

	if s.search != nil {
		log("Backfilling Elasticsearch index...")
		if err := s.backfillSearchIndex(); err != nil {
			return fmt.Errorf("failed to backfill search index: %w", err)
		}
	} else {
		log("Search client not configured - skipping Elasticsearch backfill")
	}

	return nil
}

// SeedTest seeds the test database with a small fixed cast so e2e fixtures
// stay stable across runs
func (s *Seeder) SeedTest() error {
	log := func(msg string) {
		logger.Log.Info(msg)
	}

	log("Creating test users...")
	testUserSpecs := []struct {
		username    string
		displayName string
	}{
		{"alice", "Alice Smith"},
		{"bob", "Bob Johnson"},
		{"charlie", "Charlie Brown"},
		{"diana", "Diana Prince"},
		{"eve", "Eve Wilson"},
	}

	var users []models.User
	for _, spec := range testUserSpecs {
		var user models.User
		err := s.db.Where("username = ?", spec.username).First(&user).Error
		if err == nil {
			users = append(users, user)
			continue
		}

		user = models.User{
			Username:    spec.username,
			DisplayName: spec.displayName,
			Bio:         gofakeit.HipsterSentence(),
		}
		if err := s.db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create test user %s: %w", spec.username, err)
		}
		users = append(users, user)
	}

	log("Creating test taxonomy...")
	categories, tags, err := s.seedTaxonomy()
	if err != nil {
		return fmt.Errorf("failed to seed taxonomy: %w", err)
	}

	log("Creating test posts...")
	posts, err := s.seedPosts(users, categories, tags, 10)
	if err != nil {
		return fmt.Errorf("failed to seed posts: %w", err)
	}

	log("Creating test comments...")
	if err := s.seedComments(users, posts, 10); err != nil {
		return fmt.Errorf("failed to seed comments: %w", err)
	}

	return nil
}

// Clean removes all seed data (use with caution!)
func (s *Seeder) Clean() error {
	// Delete in reverse order of dependencies
	tables := []string{
		"post_clicks",
		"feed_impressions",
		"reactions",
		"comments",
		"post_reads",
		"tag_follows",
		"category_follows",
		"author_follows",
		"post_tags",
		"posts",
		"tags",
		"categories",
		"users",
	}

	for _, table := range tables {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clean %s: %w", table, err)
		}
	}

	return nil
}

// seedUsers creates users with realistic profiles
func (s *Seeder) seedUsers(count int) ([]models.User, error) {
	var users []models.User

	// Reuse an existing cast when the database was already seeded
	var existingCount int64
	s.db.Model(&models.User{}).Count(&existingCount)
	if existingCount >= int64(count) {
		if err := s.db.Find(&users).Error; err != nil {
			return nil, err
		}
		logger.Log.Info("Found existing users, skipping creation",
			zap.Int("total_users", len(users)))
		return users, nil
	}

	for i := 0; i < count; i++ {
		username := gofakeit.Username()

		// Ensure unique username
		var existingUser models.User
		for {
			if err := s.db.Where("username = ?", username).First(&existingUser).Error; err == gorm.ErrRecordNotFound {
				break
			}
			username = gofakeit.Username()
		}

		user := models.User{
			Username:    username,
			DisplayName: gofakeit.Name(),
			Bio:         gofakeit.HipsterSentence(),
			Role:        models.RoleContributor,
		}

		if err := s.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}

		users = append(users, user)
	}

	logger.Log.Info("Created seed users", zap.Int("count", len(users)))
	return users, nil
}

// seedTaxonomy creates the fixed category and tag sets, idempotently
func (s *Seeder) seedTaxonomy() ([]models.Category, []models.Tag, error) {
	var categories []models.Category
	for _, spec := range seedCategories {
		var category models.Category
		err := s.db.Where("slug = ?", spec.slug).First(&category).Error
		if err == gorm.ErrRecordNotFound {
			category = models.Category{
				Slug:        spec.slug,
				Name:        spec.name,
				Description: spec.desc,
			}
			if err := s.db.Create(&category).Error; err != nil {
				return nil, nil, fmt.Errorf("failed to create category %s: %w", spec.slug, err)
			}
		} else if err != nil {
			return nil, nil, err
		}
		categories = append(categories, category)
	}

	var tags []models.Tag
	for _, slug := range seedTags {
		var tag models.Tag
		err := s.db.Where("slug = ?", slug).First(&tag).Error
		if err == gorm.ErrRecordNotFound {
			tag = models.Tag{
				Slug: slug,
				Name: strings.ToUpper(slug[:1]) + slug[1:],
			}
			if err := s.db.Create(&tag).Error; err != nil {
				return nil, nil, fmt.Errorf("failed to create tag %s: %w", slug, err)
			}
		} else if err != nil {
			return nil, nil, err
		}
		tags = append(tags, tag)
	}

	logger.Log.Info("Created taxonomy",
		zap.Int("categories", len(categories)),
		zap.Int("tags", len(tags)))
	return categories, tags, nil
}

// seedPosts creates posts with a power-law author distribution: a few prolific
// contributors, a broad middle, and plenty of lurkers.
//
// Posts are aged up to 45 days back so some fall outside the feed candidate
// window, and roughly one in eight stays a draft.
func (s *Seeder) seedPosts(users []models.User, categories []models.Category, tags []models.Tag, totalCount int) ([]models.Post, error) {
	var posts []models.Post

	if len(users) == 0 {
		return posts, nil
	}

	createPost := func(author models.User) error {
		title := fmt.Sprintf(
			titleTemplates[rand.Intn(len(titleTemplates))],
			titleTopics[rand.Intn(len(titleTopics))],
		)

		// Body length drives the derived reading time, so vary it widely
		sentenceCount := 20 + rand.Intn(180)
		sentences := make([]string, 0, sentenceCount)
		for i := 0; i < sentenceCount; i++ {
			sentences = append(sentences, gofakeit.HipsterSentence())
		}
		body := strings.Join(sentences, " ")

		post := models.Post{
			AuthorID: author.ID,
			Title:    title,
			Slug:     fmt.Sprintf("%s-%s", util.Slugify(title), gofakeit.UUID()[:8]),
			Summary:  gofakeit.HipsterSentence(),
			Body:     body,
			Status:   models.PostStatusDraft,
		}

		if rand.Intn(3) > 0 {
			category := categories[rand.Intn(len(categories))]
			post.CategoryID = &category.ID
		}

		// 1-3 distinct tags per post
		tagCount := rand.Intn(3) + 1
		tagSet := make(map[string]bool)
		for len(post.Tags) < tagCount {
			tag := tags[rand.Intn(len(tags))]
			if !tagSet[tag.ID] {
				tagSet[tag.ID] = true
				post.Tags = append(post.Tags, tag)
			}
		}

		createdAt := gofakeit.DateRange(time.Now().AddDate(0, 0, -45), time.Now().Add(-time.Hour))
		post.CreatedAt = createdAt
		post.UpdatedAt = createdAt

		if rand.Intn(8) > 0 {
			publishedAt := gofakeit.DateRange(createdAt, time.Now())
			post.Status = models.PostStatusPublished
			post.PublishedAt = &publishedAt
			post.ViewCount = rand.Intn(500)
		}

		if err := s.db.Create(&post).Error; err != nil {
			return fmt.Errorf("failed to create post: %w", err)
		}

		posts = append(posts, post)
		return nil
	}

	// Power law: 10% prolific (10-20 posts), 30% active (3-8),
	// 40% occasional (1-3), the rest read without writing
	shuffled := make([]models.User, len(users))
	copy(shuffled, users)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	prolificCount := len(shuffled) / 10
	activeCount := len(shuffled) * 3 / 10
	occasionalCount := len(shuffled) * 4 / 10

	userIndex := 0
	created := 0

	for i := 0; i < prolificCount && created < totalCount; i++ {
		author := shuffled[userIndex]
		userIndex++
		n := 10 + rand.Intn(11)
		for j := 0; j < n && created < totalCount; j++ {
			if err := createPost(author); err != nil {
				return nil, err
			}
			created++
		}
	}

	for i := 0; i < activeCount && created < totalCount; i++ {
		author := shuffled[userIndex]
		userIndex++
		n := 3 + rand.Intn(6)
		for j := 0; j < n && created < totalCount; j++ {
			if err := createPost(author); err != nil {
				return nil, err
			}
			created++
		}
	}

	for i := 0; i < occasionalCount && created < totalCount; i++ {
		author := shuffled[userIndex]
		userIndex++
		n := 1 + rand.Intn(3)
		for j := 0; j < n && created < totalCount; j++ {
			if err := createPost(author); err != nil {
				return nil, err
			}
			created++
		}
	}

	// Top up from random authors if the buckets came in under target
	for created < totalCount {
		if err := createPost(shuffled[rand.Intn(len(shuffled))]); err != nil {
			return nil, err
		}
		created++
	}

	logger.Log.Info("Created posts",
		zap.Int("post_count", len(posts)),
		zap.Int("author_count", userIndex))
	return posts, nil
}

// seedFollows gives each user a handful of author, category, and tag follows
func (s *Seeder) seedFollows(users []models.User, categories []models.Category, tags []models.Tag) error {
	if len(users) < 2 {
		return nil
	}

	authorFollows := 0
	categoryFollows := 0
	tagFollows := 0

	for _, user := range users {
		// 2-6 followed authors, never self
		followCount := 2 + rand.Intn(5)
		for _, idx := range rand.Perm(len(users)) {
			if followCount == 0 {
				break
			}
			author := users[idx]
			if author.ID == user.ID {
				continue
			}
			follow := models.AuthorFollow{UserID: user.ID, AuthorID: author.ID}
			if err := s.db.Create(&follow).Error; err != nil {
				return fmt.Errorf("failed to create author follow: %w", err)
			}
			authorFollows++
			followCount--
		}

		// 1-3 followed categories
		for _, idx := range rand.Perm(len(categories))[:1+rand.Intn(3)] {
			follow := models.CategoryFollow{UserID: user.ID, CategoryID: categories[idx].ID}
			if err := s.db.Create(&follow).Error; err != nil {
				return fmt.Errorf("failed to create category follow: %w", err)
			}
			categoryFollows++
		}

		// 2-5 followed tags
		for _, idx := range rand.Perm(len(tags))[:2+rand.Intn(4)] {
			follow := models.TagFollow{UserID: user.ID, TagID: tags[idx].ID}
			if err := s.db.Create(&follow).Error; err != nil {
				return fmt.Errorf("failed to create tag follow: %w", err)
			}
			tagFollows++
		}
	}

	logger.Log.Info("Created follows",
		zap.Int("authors", authorFollows),
		zap.Int("categories", categoryFollows),
		zap.Int("tags", tagFollows))
	return nil
}

// seedReads marks random published posts as read, after their publish time
func (s *Seeder) seedReads(users []models.User, posts []models.Post, count int) error {
	published := publishedOnly(posts)
	if len(users) == 0 || len(published) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	created := 0

	for i := 0; i < count; i++ {
		user := users[rand.Intn(len(users))]
		post := published[rand.Intn(len(published))]

		key := user.ID + "|" + post.ID
		if seen[key] {
			continue
		}
		seen[key] = true

		read := models.PostRead{
			UserID: user.ID,
			PostID: post.ID,
			ReadAt: gofakeit.DateRange(*post.PublishedAt, time.Now()),
		}
		if err := s.db.Create(&read).Error; err != nil {
			return fmt.Errorf("failed to create post read: %w", err)
		}
		created++
	}

	logger.Log.Info("Created read history", zap.Int("count", created))
	return nil
}

// seedComments creates comments on published posts and keeps comment_count in
// step with the rows
func (s *Seeder) seedComments(users []models.User, posts []models.Post, count int) error {
	published := publishedOnly(posts)
	if len(users) == 0 || len(published) == 0 {
		return nil
	}

	commentTemplates := []string{
		"This stayed with me all day.",
		"Beautifully put.",
		"The closing paragraph is perfect.",
		"I read this twice and found more the second time.",
		"Sending this to everyone I know.",
		"More like this, please.",
		"The detail about the kitchen undid me.",
		"Saving this one.",
		"Sharp and generous at once.",
		"I disagree with almost all of it and loved it anyway.",
	}

	for i := 0; i < count; i++ {
		user := users[rand.Intn(len(users))]
		post := published[rand.Intn(len(published))]

		var body string
		if rand.Float32() < 0.5 {
			body = commentTemplates[rand.Intn(len(commentTemplates))]
		} else {
			body = gofakeit.HipsterSentence()
		}

		comment := models.Comment{
			PostID: post.ID,
			UserID: user.ID,
			Body:   body,
		}

		createdAt := gofakeit.DateRange(*post.PublishedAt, time.Now())
		comment.CreatedAt = createdAt
		comment.UpdatedAt = createdAt

		if err := s.db.Create(&comment).Error; err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}

		// Update post comment count
		s.db.Model(&models.Post{}).Where("id = ?", post.ID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + 1"))
	}

	logger.Log.Info("Created comments", zap.Int("count", count))
	return nil
}

// seedReactions creates one-per-user reactions on published posts and keeps
// reaction_count in step with the rows
func (s *Seeder) seedReactions(users []models.User, posts []models.Post, count int) error {
	published := publishedOnly(posts)
	if len(users) == 0 || len(published) == 0 {
		return nil
	}

	kinds := []string{"like", "like", "like", "applause", "heart"}
	seen := make(map[string]bool)
	created := 0

	for i := 0; i < count; i++ {
		user := users[rand.Intn(len(users))]
		post := published[rand.Intn(len(published))]

		key := user.ID + "|" + post.ID
		if seen[key] {
			continue
		}
		seen[key] = true

		reaction := models.Reaction{
			PostID:    post.ID,
			UserID:    user.ID,
			Kind:      kinds[rand.Intn(len(kinds))],
			CreatedAt: gofakeit.DateRange(*post.PublishedAt, time.Now()),
		}
		if err := s.db.Create(&reaction).Error; err != nil {
			return fmt.Errorf("failed to create reaction: %w", err)
		}

		s.db.Model(&models.Post{}).Where("id = ?", post.ID).
			UpdateColumn("reaction_count", gorm.Expr("reaction_count + 1"))
		created++
	}

	logger.Log.Info("Created reactions", zap.Int("count", created))
	return nil
}

// backfillSearchIndex pushes every published post into Elasticsearch
func (s *Seeder) backfillSearchIndex() error {
	var published []models.Post
	if err := s.db.Preload("Author").Preload("Category").Preload("Tags").
		Where("status = ?", models.PostStatusPublished).
		Find(&published).Error; err != nil {
		return fmt.Errorf("failed to load published posts: %w", err)
	}

	ctx := context.Background()
	indexed := 0
	failed := 0

	for i := range published {
		doc := search.PostToSearchDoc(&published[i])
		if err := s.search.IndexPost(ctx, published[i].ID, doc); err != nil {
			logger.Log.Warn("Failed to index post",
				logger.WithPostID(published[i].ID),
				zap.Error(err))
			failed++
			continue
		}
		indexed++
	}

	logger.Log.Info("Backfilled search index",
		zap.Int("indexed", indexed),
		zap.Int("failed", failed))
	return nil
}

func publishedOnly(posts []models.Post) []models.Post {
	published := make([]models.Post, 0, len(posts))
	for _, post := range posts {
		if post.Status == models.PostStatusPublished && post.PublishedAt != nil {
			published = append(published, post)
		}
	}
	return published
}
