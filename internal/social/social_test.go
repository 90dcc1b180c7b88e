package social

import (
	"fmt"
	"testing"

	"github.com/enlapet/backend/internal/logger"
	"github.com/enlapet/backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	logger.InitializeForTests()

	// Named shared-cache DB so the pool's connections all see the same data
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Pet{},
		&models.Follow{},
		&models.Follower{},
		&models.Post{},
		&models.Like{},
		&models.SavedPost{},
		&models.Comment{},
		&models.Notification{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()
	user := models.User{Email: name + "@example.com", Name: name}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createPet(t *testing.T, db *gorm.DB, owner models.User, name string) models.Pet {
	t.Helper()
	pet := models.Pet{OwnerID: owner.ID, Name: name, Species: "dog"}
	require.NoError(t, db.Create(&pet).Error)
	return pet
}

func createPost(t *testing.T, db *gorm.DB, authorID string, authorType models.ProfileType) models.Post {
	t.Helper()
	post := models.Post{
		AuthorID:   authorID,
		AuthorType: authorType,
		ImageURL:   "https://example.com/photo.jpg",
		Caption:    "hello",
	}
	require.NoError(t, db.Create(&post).Error)
	return post
}

func notificationsFor(t *testing.T, db *gorm.DB, recipientID string) []models.Notification {
	t.Helper()
	var notifs []models.Notification
	require.NoError(t, db.Where("recipient_id = ?", recipientID).Find(&notifs).Error)
	return notifs
}
