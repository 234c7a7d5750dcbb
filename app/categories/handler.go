package categories

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mytheresa/go-storefront/models"
)

type CategoryResponse struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

type CreateRequest struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

type CategoryProvider interface {
	GetAllCategories() ([]models.Category, error)
	CreateCategory(category *models.Category) error
}

type CategoryHandler struct {
	repo   CategoryProvider
	logger *zap.Logger
}

func NewCategoryHandler(r CategoryProvider, logger *zap.Logger) *CategoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryHandler{repo: r, logger: logger}
}

func (h *CategoryHandler) HandleGetAll(c *gin.Context) {
	categories, err := h.repo.GetAllCategories()
	if err != nil {
		h.logger.Error("listing categories", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch categories"})
		return
	}

	response := make([]CategoryResponse, len(categories))
	for i, cat := range categories {
		response[i] = CategoryResponse{
			Code:     cat.Code,
			Name:     cat.Name,
			Position: cat.Position,
		}
	}

	c.JSON(http.StatusOK, response)
}

func (h *CategoryHandler) HandleCreate(c *gin.Context) {
	var input CreateRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	if input.Code == "" || input.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing code or name"})
		return
	}

	category := &models.Category{
		Code:     input.Code,
		Name:     input.Name,
		Position: input.Position,
	}

	if err := h.repo.CreateCategory(category); err != nil {
		if errors.Is(err, models.ErrCategoryExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "Category already exists"})
			return
		}
		h.logger.Error("creating category", zap.String("code", input.Code), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Category created successfully",
	})
}
