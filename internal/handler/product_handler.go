package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/printshop/printshop-api/internal/models"
	"github.com/printshop/printshop-api/internal/service"
	"github.com/printshop/printshop-api/internal/utils"
)

// ProductHandler serves the storefront catalog endpoints.
type ProductHandler struct {
	catalog *service.CatalogService
}

// NewProductHandler constructs a ProductHandler.
func NewProductHandler(catalog *service.CatalogService) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

type productDTO struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Price       float64 `json:"price"`
	PhotoPath   *string `json:"photo_path"`
}

// GetProducts handles GET /api/products. Only active products are listed.
func (h *ProductHandler) GetProducts(c *gin.Context) {
	products, err := h.catalog.ListActive()
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, err.Error())
		return
	}

	list := make([]productDTO, 0, len(products))
	for i := range products {
		list = append(list, toProductDTO(&products[i]))
	}
	utils.JSON(c, http.StatusOK, gin.H{"products": list})
}

func toProductDTO(p *models.Product) productDTO {
	dto := productDTO{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.Price.InexactFloat64(),
	}
	if p.Description.Valid {
		dto.Description = &p.Description.String
	}
	if p.PhotoPath.Valid {
		dto.PhotoPath = &p.PhotoPath.String
	}
	return dto
}
