package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/enlapet/backend/internal/auth"
	"github.com/enlapet/backend/internal/database"
	"github.com/enlapet/backend/internal/logger"
	"github.com/enlapet/backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// HandlersTestSuite drives the API through the real router and auth
// middleware against an in-memory database.
type HandlersTestSuite struct {
	suite.Suite
	db       *gorm.DB
	router   *gin.Engine
	handlers *Handlers
	auth     *auth.Service
}

func (s *HandlersTestSuite) SetupTest() {
	logger.InitializeForTests()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", s.T().Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(s.T(), err)

	require.NoError(s.T(), db.AutoMigrate(
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

	database.DB = db
	s.db = db
	s.auth = auth.NewService(db, []byte("test-secret"))
	s.handlers = NewHandlers(db, s.auth)

	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.handlers.RegisterRoutes(s.router, auth.Middleware(s.auth))
}

// registerUser creates an account through the API and returns its id and token
func (s *HandlersTestSuite) registerUser(name string) (string, string) {
	body, _ := json.Marshal(gin.H{
		"email":    name + "@example.com",
		"name":     name,
		"password": "password123",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)
	require.Equal(s.T(), http.StatusCreated, w.Code, w.Body.String())

	var resp auth.AuthResponse
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.User.ID, resp.Token
}

func (s *HandlersTestSuite) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlersTestSuite) createPost(authorID string) models.Post {
	post := models.Post{
		AuthorID:   authorID,
		AuthorType: models.ProfileTypeUser,
		ImageURL:   "https://example.com/photo.jpg",
	}
	require.NoError(s.T(), s.db.Create(&post).Error)
	return post
}

func (s *HandlersTestSuite) TestRegisterAndLogin() {
	s.registerUser("alice")

	body, _ := json.Marshal(gin.H{"email": "alice@example.com", "password": "password123"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)
	assert.Equal(s.T(), http.StatusOK, w.Code)

	var resp auth.AuthResponse
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(s.T(), resp.Token)
}

func (s *HandlersTestSuite) TestLoginWrongPassword() {
	s.registerUser("alice")

	body, _ := json.Marshal(gin.H{"email": "alice@example.com", "password": "wrong-password"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
}

func (s *HandlersTestSuite) TestRequestsWithoutTokenRejected() {
	w := s.do(http.MethodGet, "/api/v1/feed", "", nil)
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
}

func (s *HandlersTestSuite) TestFollowUnfollowRoundTrip() {
	aliceID, aliceToken := s.registerUser("alice")
	bobID, _ := s.registerUser("bob")
	_ = aliceID

	w := s.do(http.MethodPost, "/api/v1/profiles/"+bobID+"/follow", aliceToken, gin.H{"profile_type": "user"})
	assert.Equal(s.T(), http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/v1/profiles/"+bobID+"/follow-status", aliceToken, nil)
	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.Contains(s.T(), w.Body.String(), `"is_following":true`)

	var bob models.User
	require.NoError(s.T(), s.db.First(&bob, "id = ?", bobID).Error)
	assert.Equal(s.T(), 1, bob.FollowersCount)

	w = s.do(http.MethodDelete, "/api/v1/profiles/"+bobID+"/unfollow", aliceToken, gin.H{"profile_type": "user"})
	assert.Equal(s.T(), http.StatusOK, w.Code)

	require.NoError(s.T(), s.db.First(&bob, "id = ?", bobID).Error)
	assert.Equal(s.T(), 0, bob.FollowersCount)
}

func (s *HandlersTestSuite) TestFollowRequiresProfileType() {
	_, aliceToken := s.registerUser("alice")
	bobID, _ := s.registerUser("bob")

	w := s.do(http.MethodPost, "/api/v1/profiles/"+bobID+"/follow", aliceToken, nil)
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	assert.Contains(s.T(), w.Body.String(), "profile_type")

	w = s.do(http.MethodPost, "/api/v1/profiles/"+bobID+"/follow", aliceToken, gin.H{"profile_type": "alien"})
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)

	w = s.do(http.MethodDelete, "/api/v1/profiles/"+bobID+"/unfollow", aliceToken, nil)
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *HandlersTestSuite) TestUnfollowPetWithWrongKindKeepsCountersConsistent() {
	_, aliceToken := s.registerUser("alice")
	bobID, _ := s.registerUser("bob")

	pet := models.Pet{OwnerID: bobID, Name: "rex", Species: "dog"}
	require.NoError(s.T(), s.db.Create(&pet).Error)

	w := s.do(http.MethodPost, "/api/v1/profiles/"+pet.ID+"/follow", aliceToken, gin.H{"profile_type": "pet"})
	require.Equal(s.T(), http.StatusOK, w.Code)

	var freshPet models.Pet
	require.NoError(s.T(), s.db.First(&freshPet, "id = ?", pet.ID).Error)
	require.Equal(s.T(), 1, freshPet.FollowersCount)

	// A client lying about the kind cannot divert the decrement: the stored
	// edge decides which table moves.
	w = s.do(http.MethodDelete, "/api/v1/profiles/"+pet.ID+"/unfollow", aliceToken, gin.H{"profile_type": "user"})
	assert.Equal(s.T(), http.StatusOK, w.Code)

	var edges int64
	require.NoError(s.T(), s.db.Model(&models.Follow{}).Count(&edges).Error)
	assert.EqualValues(s.T(), 0, edges)

	require.NoError(s.T(), s.db.First(&freshPet, "id = ?", pet.ID).Error)
	assert.Equal(s.T(), 0, freshPet.FollowersCount)
}

func (s *HandlersTestSuite) TestSelfFollowRejected() {
	aliceID, aliceToken := s.registerUser("alice")

	w := s.do(http.MethodPost, "/api/v1/profiles/"+aliceID+"/follow", aliceToken, gin.H{"profile_type": "user"})
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	assert.Contains(s.T(), w.Body.String(), "INVALID_OPERATION")
}

func (s *HandlersTestSuite) TestFollowMissingProfile() {
	_, aliceToken := s.registerUser("alice")

	w := s.do(http.MethodPost, "/api/v1/profiles/does-not-exist/follow", aliceToken, gin.H{"profile_type": "user"})
	assert.Equal(s.T(), http.StatusNotFound, w.Code)
}

func (s *HandlersTestSuite) TestLikeAndUnlikePost() {
	_, aliceToken := s.registerUser("alice")
	bobID, _ := s.registerUser("bob")
	post := s.createPost(bobID)

	w := s.do(http.MethodPost, "/api/v1/posts/"+post.ID+"/like", aliceToken, nil)
	assert.Equal(s.T(), http.StatusOK, w.Code)

	// Repeat like stays at one
	w = s.do(http.MethodPost, "/api/v1/posts/"+post.ID+"/like", aliceToken, nil)
	assert.Equal(s.T(), http.StatusOK, w.Code)

	var fresh models.Post
	require.NoError(s.T(), s.db.First(&fresh, "id = ?", post.ID).Error)
	assert.Equal(s.T(), 1, fresh.LikesCount)

	w = s.do(http.MethodDelete, "/api/v1/posts/"+post.ID+"/unlike", aliceToken, nil)
	assert.Equal(s.T(), http.StatusOK, w.Code)

	require.NoError(s.T(), s.db.First(&fresh, "id = ?", post.ID).Error)
	assert.Equal(s.T(), 0, fresh.LikesCount)
}

func (s *HandlersTestSuite) TestLikeMissingPost() {
	_, aliceToken := s.registerUser("alice")

	w := s.do(http.MethodPost, "/api/v1/posts/missing/like", aliceToken, nil)
	assert.Equal(s.T(), http.StatusNotFound, w.Code)
}

func (s *HandlersTestSuite) TestLikeStatusesBatch() {
	_, aliceToken := s.registerUser("alice")
	bobID, _ := s.registerUser("bob")
	liked := s.createPost(bobID)
	unliked := s.createPost(bobID)

	w := s.do(http.MethodPost, "/api/v1/posts/"+liked.ID+"/like", aliceToken, nil)
	require.Equal(s.T(), http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/api/v1/posts/like-statuses", aliceToken, gin.H{
		"post_ids": []string{liked.ID, unliked.ID},
	})
	assert.Equal(s.T(), http.StatusOK, w.Code)

	var resp struct {
		Statuses map[string]bool `json:"statuses"`
	}
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(s.T(), resp.Statuses[liked.ID])
	assert.False(s.T(), resp.Statuses[unliked.ID])
}

func (s *HandlersTestSuite) TestCommentFlow() {
	_, aliceToken := s.registerUser("alice")
	bobID, _ := s.registerUser("bob")
	post := s.createPost(bobID)

	w := s.do(http.MethodPost, "/api/v1/posts/"+post.ID+"/comment", aliceToken, gin.H{"text": "lovely"})
	assert.Equal(s.T(), http.StatusCreated, w.Code)

	w = s.do(http.MethodPost, "/api/v1/posts/"+post.ID+"/comment", aliceToken, gin.H{"text": ""})
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/v1/posts/"+post.ID+"/comments", aliceToken, nil)
	assert.Equal(s.T(), http.StatusOK, w.Code)

	var resp struct {
		Comments []models.Comment `json:"comments"`
	}
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(s.T(), resp.Comments, 1)
	assert.Equal(s.T(), "lovely", resp.Comments[0].Text)
}

func (s *HandlersTestSuite) TestSaveAndListSavedPosts() {
	_, aliceToken := s.registerUser("alice")
	bobID, _ := s.registerUser("bob")
	post := s.createPost(bobID)

	w := s.do(http.MethodPost, "/api/v1/posts/"+post.ID+"/save", aliceToken, nil)
	assert.Equal(s.T(), http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/v1/users/me/saved", aliceToken, nil)
	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.Contains(s.T(), w.Body.String(), post.ID)

	w = s.do(http.MethodDelete, "/api/v1/posts/"+post.ID+"/save", aliceToken, nil)
	assert.Equal(s.T(), http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/v1/users/me/saved", aliceToken, nil)
	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.NotContains(s.T(), w.Body.String(), post.ID)
}

func (s *HandlersTestSuite) TestFeedReturnsFollowedPosts() {
	_, aliceToken := s.registerUser("alice")
	bobID, _ := s.registerUser("bob")
	post := s.createPost(bobID)

	w := s.do(http.MethodPost, "/api/v1/profiles/"+bobID+"/follow", aliceToken, gin.H{"profile_type": "user"})
	require.Equal(s.T(), http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/v1/feed", aliceToken, nil)
	assert.Equal(s.T(), http.StatusOK, w.Code)

	var resp struct {
		Posts      []json.RawMessage `json:"posts"`
		NextCursor string            `json:"next_cursor"`
	}
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(s.T(), resp.Posts, 1)
	assert.Contains(s.T(), string(resp.Posts[0]), post.ID)
	assert.Empty(s.T(), resp.NextCursor)
}

func (s *HandlersTestSuite) TestFeedBadCursor() {
	_, aliceToken := s.registerUser("alice")

	w := s.do(http.MethodGet, "/api/v1/feed?cursor=bogus", aliceToken, nil)
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *HandlersTestSuite) TestNotificationsFlow() {
	_, aliceToken := s.registerUser("alice")
	bobID, bobToken := s.registerUser("bob")

	w := s.do(http.MethodPost, "/api/v1/profiles/"+bobID+"/follow", aliceToken, gin.H{"profile_type": "user"})
	require.Equal(s.T(), http.StatusOK, w.Code)
	s.handlers.Emitter().Wait()

	w = s.do(http.MethodGet, "/api/v1/notifications/counts", bobToken, nil)
	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.Contains(s.T(), w.Body.String(), `"unread":1`)

	w = s.do(http.MethodGet, "/api/v1/notifications", bobToken, nil)
	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.Contains(s.T(), w.Body.String(), "new_follower")

	w = s.do(http.MethodPost, "/api/v1/notifications/read", bobToken, nil)
	assert.Equal(s.T(), http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/v1/notifications/counts", bobToken, nil)
	assert.Contains(s.T(), w.Body.String(), `"unread":0`)
}

func (s *HandlersTestSuite) TestSaveStatusesBatch() {
	_, aliceToken := s.registerUser("alice")
	bobID, _ := s.registerUser("bob")
	saved := s.createPost(bobID)
	unsaved := s.createPost(bobID)

	w := s.do(http.MethodPost, "/api/v1/posts/"+saved.ID+"/save", aliceToken, nil)
	require.Equal(s.T(), http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/api/v1/posts/save-statuses", aliceToken, gin.H{
		"post_ids": []string{saved.ID, unsaved.ID},
	})
	assert.Equal(s.T(), http.StatusOK, w.Code)

	var resp struct {
		Statuses map[string]bool `json:"statuses"`
	}
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(s.T(), resp.Statuses[saved.ID])
	assert.False(s.T(), resp.Statuses[unsaved.ID])
}

func (s *HandlersTestSuite) TestUpdateProfile() {
	aliceID, aliceToken := s.registerUser("alice")

	w := s.do(http.MethodPut, "/api/v1/users/me", aliceToken, gin.H{
		"name": "alice cooper",
		"bio":  "cat person",
	})
	assert.Equal(s.T(), http.StatusOK, w.Code)

	var user models.User
	require.NoError(s.T(), s.db.First(&user, "id = ?", aliceID).Error)
	assert.Equal(s.T(), "alice cooper", user.Name)
	assert.Equal(s.T(), "cat person", user.Bio)
}

func (s *HandlersTestSuite) TestUpdateProfileRejectsEmptyName() {
	_, aliceToken := s.registerUser("alice")

	w := s.do(http.MethodPut, "/api/v1/users/me", aliceToken, gin.H{"name": ""})
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *HandlersTestSuite) TestCreateAndListPets() {
	_, aliceToken := s.registerUser("alice")

	w := s.do(http.MethodPost, "/api/v1/pets", aliceToken, gin.H{
		"name":    "rex",
		"species": "dog",
		"breed":   "beagle",
	})
	assert.Equal(s.T(), http.StatusCreated, w.Code)

	w = s.do(http.MethodGet, "/api/v1/users/me/pets", aliceToken, nil)
	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.Contains(s.T(), w.Body.String(), "rex")
}

func (s *HandlersTestSuite) TestHealthEndpoint() {
	w := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(s.T(), http.StatusOK, w.Code)
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}
