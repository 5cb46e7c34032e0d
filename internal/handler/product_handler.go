package handler

import (
	"net/http"

	"github.com/agrofount/backoffice/internal/model"
	"github.com/agrofount/backoffice/internal/query"
	"github.com/agrofount/backoffice/pkg/database"
	"github.com/agrofount/backoffice/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var productListOptions = query.Options{
	DefaultSort: "created_at DESC",
	SortFields: map[string]string{
		"id":        "id",
		"name":      "name",
		"sku":       "sku",
		"createdAt": "created_at",
	},
	SearchColumns: []string{"name", "sku", "brand", "primary_category"},
	FilterFields: map[string]string{
		"filter.primaryCategory": "primary_category",
		"filter.brand":           "brand",
		"filter.isActive":        "is_active",
	},
}

// ProductRequest is the create/update payload for catalog products
type ProductRequest struct {
	Name            string           `json:"name" validate:"required"`
	Description     string           `json:"description"`
	SKU             string           `json:"sku" validate:"required"`
	PrimaryCategory string           `json:"primaryCategory"`
	Brand           string           `json:"brand"`
	Images          model.StringList `json:"images"`
	IsActive        bool             `json:"isActive"`
}

// ListProducts returns a page of catalog products
func ListProducts(c echo.Context) error {
	log := logger.FromEcho(c)

	var products []model.Product
	page, err := query.Paginate(c, database.GetDB().Model(&model.Product{}), productListOptions, &products)
	if err != nil {
		log.Error("Failed to list products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to retrieve products"})
	}
	return c.JSON(http.StatusOK, page)
}

// GetProduct returns a single product by ID
func GetProduct(c echo.Context) error {
	var product model.Product
	if result := database.GetDB().First(&product, c.Param("id")); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "product not found"})
	}
	return c.JSON(http.StatusOK, product)
}

// CreateProduct creates a catalog product
func CreateProduct(c echo.Context) error {
	log := logger.FromEcho(c)

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c)
	}
	if err := validate.Struct(&req); err != nil {
		return validationFailed(c, validationMessages(err))
	}

	var count int64
	database.GetDB().Model(&model.Product{}).Where("sku = ?", req.SKU).Count(&count)
	if count > 0 {
		log.Warn("Product with this SKU already exists", zap.String("sku", req.SKU))
		return c.JSON(http.StatusConflict, echo.Map{"message": "product with this SKU already exists"})
	}

	product := model.Product{
		Name:            req.Name,
		Description:     req.Description,
		SKU:             req.SKU,
		PrimaryCategory: req.PrimaryCategory,
		Brand:           req.Brand,
		Images:          req.Images,
		IsActive:        req.IsActive,
	}
	if result := database.GetDB().Create(&product); result.Error != nil {
		log.Error("Failed to create product", zap.String("sku", req.SKU), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to create product"})
	}

	log.Info("Product created",
		zap.Uint("product_id", product.ID),
		zap.String("name", product.Name),
		zap.String("sku", product.SKU))
	return c.JSON(http.StatusCreated, product)
}

// UpdateProduct updates a catalog product
func UpdateProduct(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c)
	}
	if err := validate.Struct(&req); err != nil {
		return validationFailed(c, validationMessages(err))
	}

	var product model.Product
	if result := database.GetDB().First(&product, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "product not found"})
	}

	if req.SKU != product.SKU {
		var count int64
		database.GetDB().Model(&model.Product{}).Where("sku = ? AND id != ?", req.SKU, id).Count(&count)
		if count > 0 {
			return c.JSON(http.StatusConflict, echo.Map{"message": "product with this SKU already exists"})
		}
	}

	product.Name = req.Name
	product.Description = req.Description
	product.SKU = req.SKU
	product.PrimaryCategory = req.PrimaryCategory
	product.Brand = req.Brand
	product.Images = req.Images
	product.IsActive = req.IsActive

	if result := database.GetDB().Save(&product); result.Error != nil {
		log.Error("Failed to update product", zap.String("product_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to update product"})
	}

	log.Info("Product updated", zap.Uint("product_id", product.ID), zap.String("sku", product.SKU))
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct soft deletes a product
func DeleteProduct(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	result := database.GetDB().Delete(&model.Product{}, id)
	if result.Error != nil {
		log.Error("Failed to delete product", zap.String("product_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to delete product"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "product not found"})
	}

	log.Info("Product deleted", zap.String("product_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "product deleted successfully"})
}
