package handlers

import (
	"errors"
	"net/http"

	"github.com/enlapet/backend/internal/logger"
	"github.com/enlapet/backend/internal/models"
	"github.com/enlapet/backend/internal/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type createPetRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=50"`
	Species string `json:"species"`
	Breed   string `json:"breed"`
	Bio     string `json:"bio"`
}

// CreatePet creates a pet profile owned by the current user
// POST /api/v1/pets
func (h *Handlers) CreatePet(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req createPetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	pet := models.Pet{
		OwnerID: userID,
		Name:    req.Name,
		Species: req.Species,
		Breed:   req.Breed,
		Bio:     req.Bio,
	}
	if err := h.db.Create(&pet).Error; err != nil {
		logger.ErrorWithFields("Pet creation failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "pet_creation_failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"pet": pet})
}

// GetPet returns a pet profile
// GET /api/v1/pets/:id
func (h *Handlers) GetPet(c *gin.Context) {
	var pet models.Pet
	if err := h.db.Preload("Owner").First(&pet, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "pet_not_found"})
			return
		}
		logger.ErrorWithFields("Pet lookup failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "pet_lookup_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pet": pet})
}

// UploadPetPicture uploads a new picture for a pet the current user owns
// POST /api/v1/pets/:id/picture
func (h *Handlers) UploadPetPicture(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var pet models.Pet
	if err := h.db.First(&pet, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "pet_not_found"})
			return
		}
		logger.ErrorWithFields("Pet lookup failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "pet_lookup_failed"})
		return
	}
	if pet.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not_pet_owner"})
		return
	}

	url, ok := h.uploadImage(c, "pet-pictures")
	if !ok {
		return
	}

	if err := h.db.Model(&pet).Update("profile_picture_url", url).Error; err != nil {
		logger.ErrorWithFields("Pet picture update failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "pet_picture_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile_picture_url": url})
}

// GetMyPets lists the current user's pets
// GET /api/v1/users/me/pets
func (h *Handlers) GetMyPets(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var pets []models.Pet
	if err := h.db.Where("owner_id = ?", userID).Order("created_at ASC").Find(&pets).Error; err != nil {
		logger.ErrorWithFields("Pets lookup failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "pets_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pets": pets})
}
