package handler

import (
	"fmt"
	"net/http"

	"github.com/agrofount/backoffice/internal/model"
	"github.com/agrofount/backoffice/internal/query"
	"github.com/agrofount/backoffice/pkg/database"
	"github.com/agrofount/backoffice/pkg/logger"
	"github.com/agrofount/backoffice/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const maxAvailableDates = 4

var productLocationListOptions = query.Options{
	DefaultSort: "created_at DESC",
	SortFields: map[string]string{
		"id":        "id",
		"price":     "price",
		"createdAt": "created_at",
	},
	SearchColumns: []string{"slug"},
	FilterFields: map[string]string{
		"filter.state.id":    "state_id",
		"filter.product.id":  "product_id",
		"filter.isDraft":     "is_draft",
		"filter.isAvailable": "is_available",
	},
}

// ProductLocationRequest is the create/update payload for listings
type ProductLocationRequest struct {
	ProductID      uint             `json:"productId" validate:"required"`
	StateID        uint             `json:"stateId" validate:"required"`
	MOQ            int              `json:"moq" validate:"gte=1"`
	AvailableDates model.StringList `json:"availableDates"`
	UOM            model.UOMList    `json:"uom"`
	IsDraft        bool             `json:"isDraft"`
}

// SEORequest updates the listing's search metadata
type SEORequest struct {
	Title       string           `json:"title" validate:"required"`
	Description string           `json:"description"`
	Keywords    model.StringList `json:"keywords"`
}

// validatePricing checks every UOM section and VTP tier and recomputes
// tier prices from the platform price and discount. Any message means the
// payload must be rejected before touching the database.
func validatePricing(uom model.UOMList) []string {
	var messages []string

	if len(uom) == 0 {
		return []string{"at least one unit of measure is required"}
	}

	for i := range uom {
		section := &uom[i]
		if section.Unit == "" {
			messages = append(messages, fmt.Sprintf("uom[%d]: unit is required", i))
		}
		if section.PlatformPrice <= 0 {
			messages = append(messages, fmt.Sprintf("uom[%d]: platform price must be greater than zero", i))
		}
		if section.VendorPrice >= section.PlatformPrice {
			messages = append(messages, fmt.Sprintf(
				"uom[%d]: vendor price (%.2f) must be less than platform price (%.2f)",
				i, section.VendorPrice, section.PlatformPrice))
		}
		for j := range section.VTP {
			tier := &section.VTP[j]
			if tier.MinVolume >= tier.MaxVolume {
				messages = append(messages, fmt.Sprintf(
					"uom[%d].vtp[%d]: invalid volume range (%d-%d)",
					i, j, tier.MinVolume, tier.MaxVolume))
			}
			if tier.Discount < 0 || tier.Discount >= 100 {
				messages = append(messages, fmt.Sprintf(
					"uom[%d].vtp[%d]: discount must be between 0 and 100", i, j))
				continue
			}
			tier.Price = section.PlatformPrice - section.PlatformPrice*tier.Discount/100
		}
	}
	return messages
}

// ListProductLocations returns a page of listings
func ListProductLocations(c echo.Context) error {
	log := logger.FromEcho(c)

	var locations []model.ProductLocation
	db := database.GetDB().Model(&model.ProductLocation{}).Preload("Product").Preload("State")
	page, err := query.Paginate(c, db, productLocationListOptions, &locations)
	if err != nil {
		log.Error("Failed to list product locations", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to retrieve product locations"})
	}
	return c.JSON(http.StatusOK, page)
}

// GetProductLocation returns a listing by slug
func GetProductLocation(c echo.Context) error {
	var location model.ProductLocation
	result := database.GetDB().Preload("Product").Preload("State").
		Where("slug = ?", c.Param("slug")).First(&location)
	if result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "product location not found"})
	}
	return c.JSON(http.StatusOK, location)
}

// CreateProductLocation creates a listing for a product in a state
func CreateProductLocation(c echo.Context) error {
	log := logger.FromEcho(c)

	var req ProductLocationRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c)
	}
	if req.MOQ == 0 {
		req.MOQ = 5
	}
	if err := validate.Struct(&req); err != nil {
		return validationFailed(c, validationMessages(err))
	}
	if len(req.AvailableDates) > maxAvailableDates {
		return validationFailed(c, []string{fmt.Sprintf("at most %d available dates are allowed", maxAvailableDates)})
	}
	if messages := validatePricing(req.UOM); len(messages) > 0 {
		return validationFailed(c, messages)
	}

	var product model.Product
	if result := database.GetDB().First(&product, req.ProductID); result.Error != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "product not found"})
	}
	var state model.State
	if result := database.GetDB().First(&state, req.StateID); result.Error != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "state not found"})
	}

	location := model.ProductLocation{
		Slug:           uniqueSlug(product.Name + "-" + state.Name),
		ProductID:      product.ID,
		StateID:        state.ID,
		Price:          req.UOM[0].PlatformPrice,
		MOQ:            req.MOQ,
		AvailableDates: req.AvailableDates,
		UOM:            req.UOM,
		IsDraft:        req.IsDraft,
		IsAvailable:    true,
	}
	if result := database.GetDB().Create(&location); result.Error != nil {
		log.Error("Failed to create product location",
			zap.Uint("product_id", product.ID),
			zap.Uint("state_id", state.ID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to create product location"})
	}

	log.Info("Product location created",
		zap.Uint("location_id", location.ID),
		zap.String("slug", location.Slug),
		zap.Uint("product_id", product.ID),
		zap.Uint("state_id", state.ID))
	return c.JSON(http.StatusCreated, location)
}

// UpdateProductLocation updates a listing's pricing and availability
func UpdateProductLocation(c echo.Context) error {
	log := logger.FromEcho(c)
	slug := c.Param("slug")

	var req ProductLocationRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c)
	}
	if req.MOQ == 0 {
		req.MOQ = 5
	}
	if len(req.AvailableDates) > maxAvailableDates {
		return validationFailed(c, []string{fmt.Sprintf("at most %d available dates are allowed", maxAvailableDates)})
	}
	if messages := validatePricing(req.UOM); len(messages) > 0 {
		return validationFailed(c, messages)
	}

	var location model.ProductLocation
	if result := database.GetDB().Where("slug = ?", slug).First(&location); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "product location not found"})
	}

	location.MOQ = req.MOQ
	location.AvailableDates = req.AvailableDates
	location.UOM = req.UOM
	location.Price = req.UOM[0].PlatformPrice
	location.IsDraft = req.IsDraft

	if result := database.GetDB().Save(&location); result.Error != nil {
		log.Error("Failed to update product location", zap.String("slug", slug), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to update product location"})
	}

	log.Info("Product location updated", zap.String("slug", slug))
	return c.JSON(http.StatusOK, location)
}

// transitionProductLocation flips one listing flag
func transitionProductLocation(c echo.Context, transition string, apply func(*model.ProductLocation)) error {
	log := logger.FromEcho(c)
	slug := c.Param("slug")

	var location model.ProductLocation
	if result := database.GetDB().Where("slug = ?", slug).First(&location); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "product location not found"})
	}

	apply(&location)

	if result := database.GetDB().Save(&location); result.Error != nil {
		log.Error("Failed to update product location status",
			zap.String("slug", slug),
			zap.String("transition", transition),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to update product location"})
	}

	prometheus.RecordTransition("product_location", transition)
	log.Info("Product location transitioned",
		zap.String("slug", slug),
		zap.String("transition", transition))
	return c.JSON(http.StatusOK, location)
}

// PublishProductLocation takes a listing out of draft
func PublishProductLocation(c echo.Context) error {
	return transitionProductLocation(c, "publish", func(l *model.ProductLocation) {
		l.IsDraft = false
	})
}

// UnpublishProductLocation puts a listing back into draft
func UnpublishProductLocation(c echo.Context) error {
	return transitionProductLocation(c, "unpublish", func(l *model.ProductLocation) {
		l.IsDraft = true
	})
}

// MarkOutOfStock marks a listing unavailable
func MarkOutOfStock(c echo.Context) error {
	return transitionProductLocation(c, "out_of_stock", func(l *model.ProductLocation) {
		l.IsAvailable = false
	})
}

// MarkAvailable marks a listing available again
func MarkAvailable(c echo.Context) error {
	return transitionProductLocation(c, "restock", func(l *model.ProductLocation) {
		l.IsAvailable = true
	})
}

// UpdateSEO updates a listing's search metadata
func UpdateSEO(c echo.Context) error {
	log := logger.FromEcho(c)
	slug := c.Param("slug")

	var req SEORequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c)
	}
	if err := validate.Struct(&req); err != nil {
		return validationFailed(c, validationMessages(err))
	}

	var location model.ProductLocation
	if result := database.GetDB().Where("slug = ?", slug).First(&location); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "product location not found"})
	}

	location.SEOTitle = req.Title
	location.SEODescription = req.Description
	location.SEOKeywords = req.Keywords

	if result := database.GetDB().Save(&location); result.Error != nil {
		log.Error("Failed to update SEO", zap.String("slug", slug), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to update SEO"})
	}

	return c.JSON(http.StatusOK, location)
}

// DeleteProductLocation soft deletes a listing
func DeleteProductLocation(c echo.Context) error {
	result := database.GetDB().Where("slug = ?", c.Param("slug")).Delete(&model.ProductLocation{})
	if result.Error != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to delete product location"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "product location not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "product location deleted successfully"})
}
