package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/inkwellhq/inkwell/backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB holds the database connection
var DB *gorm.DB

// Initialize creates and configures the database connection
func Initialize() error {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		// Fallback to individual components
		host := getEnvOrDefault("DB_HOST", "localhost")
		port := getEnvOrDefault("DB_PORT", "5432")
		user := getEnvOrDefault("DB_USER", "postgres")
		password := getEnvOrDefault("DB_PASSWORD", "")
		dbname := getEnvOrDefault("DB_NAME", "inkwell")
		sslmode := getEnvOrDefault("DB_SSLMODE", "disable")

		databaseURL = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			host, port, user, password, dbname, sslmode)
	}

	gormLogger := logger.Default
	if os.Getenv("ENVIRONMENT") == "development" {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	DB = db
	log.Println("Database connected successfully")

	return nil
}

// Migrate runs auto-migration for all models
func Migrate() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	// Enable UUID extension for PostgreSQL
	err := DB.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error
	if err != nil {
		log.Printf("Warning: Could not create uuid-ossp extension: %v", err)
	}

	err = DB.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Tag{},
		&models.Post{},
		&models.PostTag{},
		&models.AuthorFollow{},
		&models.CategoryFollow{},
		&models.TagFollow{},
		&models.PostRead{},
		&models.Comment{},
		&models.Reaction{},
		&models.FeedImpression{},
		&models.PostClick{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	err = createIndexes()
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed")
	return nil
}

// createIndexes creates performance indexes
func createIndexes() error {
	// User lookups by slug-ish username
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_users_username_lower ON users (LOWER(username))")

	// Post indexes for the candidate fetch and browse paths
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_posts_status_published ON posts (status, published_at DESC)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_posts_author_published ON posts (author_id, published_at DESC)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_posts_category_published ON posts (category_id, published_at DESC) WHERE category_id IS NOT NULL")

	// Trending ordering within the recency window
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_posts_trending ON posts (reaction_count DESC, comment_count DESC, view_count DESC) WHERE status = 'published'")

	// Preference-set plucks
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_author_follows_user ON author_follows (user_id)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_category_follows_user ON category_follows (user_id)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_tag_follows_user ON tag_follows (user_id)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_post_reads_user ON post_reads (user_id)")

	// Comment listing per post
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_comments_post_created ON comments (post_id, created_at DESC)")

	// Tag joins
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_post_tags_post ON post_tags (post_id)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_post_tags_tag ON post_tags (tag_id)")

	// CTR window scans
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_feed_impressions_served ON feed_impressions (served_at DESC)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_post_clicks_clicked ON post_clicks (clicked_at DESC)")

	return nil
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// Health checks database connectivity
func Health() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Ping()
}

// getEnvOrDefault returns environment variable or default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
