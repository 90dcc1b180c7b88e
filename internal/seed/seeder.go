// Package seed populates the database with realistic development data.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/enlapet/backend/internal/logger"
	"github.com/enlapet/backend/internal/models"
	"github.com/enlapet/backend/internal/notifications"
	"github.com/enlapet/backend/internal/social"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var petSpecies = []string{"dog", "cat", "rabbit", "parrot", "hamster", "turtle"}

// Seeder handles database seeding operations
type Seeder struct {
	db         *gorm.DB
	graph      *social.Graph
	engagement *social.Engagement
	emitter    *notifications.Emitter
}

// NewSeeder creates a new seeder instance. Follows, likes and comments go
// through the social managers so every seeded counter is consistent with its
// relation rows.
func NewSeeder(db *gorm.DB) *Seeder {
	_ = gofakeit.Seed(time.Now().UnixNano())
	emitter := notifications.NewEmitter(db)
	return &Seeder{
		db:         db,
		graph:      social.NewGraph(db, emitter),
		engagement: social.NewEngagement(db, emitter),
		emitter:    emitter,
	}
}

// SeedDev seeds the development database with realistic data
func (s *Seeder) SeedDev() error {
	return s.seed(50, 80, 300, 1200, 600)
}

// SeedTest seeds a minimal data set for integration testing
func (s *Seeder) SeedTest() error {
	return s.seed(5, 6, 20, 40, 20)
}

func (s *Seeder) seed(userCount, petCount, postCount, likeCount, commentCount int) error {
	ctx := context.Background()

	logger.Log.Info("Creating users...")
	users, err := s.seedUsers(userCount)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	logger.Log.Info("Creating pets...")
	pets, err := s.seedPets(users, petCount)
	if err != nil {
		return fmt.Errorf("failed to seed pets: %w", err)
	}

	logger.Log.Info("Creating follows...")
	if err := s.seedFollows(ctx, users, pets); err != nil {
		return fmt.Errorf("failed to seed follows: %w", err)
	}

	logger.Log.Info("Creating posts...")
	posts, err := s.seedPosts(users, pets, postCount)
	if err != nil {
		return fmt.Errorf("failed to seed posts: %w", err)
	}

	logger.Log.Info("Creating likes...")
	if err := s.seedLikes(ctx, users, posts, likeCount); err != nil {
		return fmt.Errorf("failed to seed likes: %w", err)
	}

	logger.Log.Info("Creating comments...")
	if err := s.seedComments(ctx, users, posts, commentCount); err != nil {
		return fmt.Errorf("failed to seed comments: %w", err)
	}

	// Seeded engagement emits notifications in the background
	s.emitter.Wait()
	return nil
}

func (s *Seeder) seedUsers(count int) ([]models.User, error) {
	// One shared hash keeps seeding fast; every dev account logs in with
	// "password123"
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	hashStr := string(hash)

	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		user := models.User{
			Email:             fmt.Sprintf("%d.%s", i, gofakeit.Email()),
			Name:              gofakeit.Name(),
			Bio:               gofakeit.Sentence(10),
			PasswordHash:      &hashStr,
			ProfilePictureURL: fmt.Sprintf("https://i.pravatar.cc/300?u=%d", i),
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) seedPets(users []models.User, count int) ([]models.Pet, error) {
	pets := make([]models.Pet, 0, count)
	for i := 0; i < count; i++ {
		owner := users[rand.Intn(len(users))]
		pet := models.Pet{
			OwnerID: owner.ID,
			Name:    gofakeit.PetName(),
			Species: petSpecies[rand.Intn(len(petSpecies))],
			Breed:   gofakeit.Animal(),
			Bio:     gofakeit.Sentence(6),
		}
		if err := s.db.Create(&pet).Error; err != nil {
			return nil, err
		}
		pets = append(pets, pet)
	}
	return pets, nil
}

func (s *Seeder) seedFollows(ctx context.Context, users []models.User, pets []models.Pet) error {
	for _, user := range users {
		// Each user follows a handful of other users and pets
		for i := 0; i < rand.Intn(8)+2; i++ {
			target := users[rand.Intn(len(users))]
			if target.ID == user.ID {
				continue
			}
			if err := s.graph.Follow(ctx, user.ID, target.ID, models.ProfileTypeUser); err != nil {
				return err
			}
		}
		for i := 0; i < rand.Intn(5); i++ {
			pet := pets[rand.Intn(len(pets))]
			if err := s.graph.Follow(ctx, user.ID, pet.ID, models.ProfileTypePet); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) seedPosts(users []models.User, pets []models.Pet, count int) ([]models.Post, error) {
	posts := make([]models.Post, 0, count)
	for i := 0; i < count; i++ {
		post := models.Post{
			ImageURL: fmt.Sprintf("https://placedog.net/800/600?id=%d", i),
			Caption:  gofakeit.Sentence(rand.Intn(12) + 2),
			// Spread creation times over the past month so feeds page
			CreatedAt: time.Now().Add(-time.Duration(rand.Intn(30*24)) * time.Hour),
		}
		// Roughly half the posts are pet-authored
		if rand.Intn(2) == 0 && len(pets) > 0 {
			pet := pets[rand.Intn(len(pets))]
			post.AuthorID = pet.ID
			post.AuthorType = models.ProfileTypePet
		} else {
			user := users[rand.Intn(len(users))]
			post.AuthorID = user.ID
			post.AuthorType = models.ProfileTypeUser
		}
		if err := s.db.Create(&post).Error; err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (s *Seeder) seedLikes(ctx context.Context, users []models.User, posts []models.Post, count int) error {
	for i := 0; i < count; i++ {
		user := users[rand.Intn(len(users))]
		post := posts[rand.Intn(len(posts))]
		if err := s.engagement.LikePost(ctx, user.ID, post.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedComments(ctx context.Context, users []models.User, posts []models.Post, count int) error {
	for i := 0; i < count; i++ {
		user := users[rand.Intn(len(users))]
		post := posts[rand.Intn(len(posts))]
		if _, err := s.engagement.AddComment(ctx, user.ID, post.ID, gofakeit.Sentence(rand.Intn(10)+1)); err != nil {
			return err
		}
	}
	return nil
}

// Clean removes all seed data. Order respects foreign keys.
func (s *Seeder) Clean() error {
	tables := []string{"notifications", "comments", "likes", "saved_posts", "posts", "followers", "follows", "pets", "users"}
	for _, table := range tables {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clean %s: %w", table, err)
		}
	}
	return nil
}
