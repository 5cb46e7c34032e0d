package handler

import (
	"net/http"
	"time"

	"github.com/agrofount/backoffice/internal/model"
	"github.com/agrofount/backoffice/pkg/database"
	"github.com/agrofount/backoffice/pkg/logger"
	"github.com/agrofount/backoffice/pkg/messaging"
	"github.com/agrofount/backoffice/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// PriceUpdateRequest names the product locations whose current prices
// should be broadcast. An empty list broadcasts every published listing.
type PriceUpdateRequest struct {
	Slugs []string `json:"slugs"`
}

type priceUpdate struct {
	Slug    string        `json:"slug"`
	Product string        `json:"product"`
	State   uint          `json:"stateId"`
	Price   float64       `json:"price"`
	UOM     model.UOMList `json:"uom"`
}

// SendPriceUpdates publishes the current platform prices to the broker
// so storefront consumers and subscribed customers get notified
func SendPriceUpdates(c echo.Context) error {
	log := logger.FromEcho(c)

	if !messaging.Connected() {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"message": "message broker is not available"})
	}

	var req PriceUpdateRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c)
	}

	db := database.GetDB().Model(&model.ProductLocation{}).
		Preload("Product").
		Where("is_draft = ? AND is_available = ?", false, true)
	if len(req.Slugs) > 0 {
		db = db.Where("slug IN ?", req.Slugs)
	}

	var locations []model.ProductLocation
	if result := db.Find(&locations); result.Error != nil {
		log.Error("Failed to load product locations", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to load price data"})
	}
	if len(locations) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "no published product locations matched"})
	}

	updates := make([]priceUpdate, 0, len(locations))
	for _, loc := range locations {
		update := priceUpdate{
			Slug:  loc.Slug,
			State: loc.StateID,
			Price: loc.Price,
			UOM:   loc.UOM,
		}
		if loc.Product != nil {
			update.Product = loc.Product.Name
		}
		updates = append(updates, update)
	}

	payload := echo.Map{
		"currency": platform.Currency,
		"sentAt":   time.Now().UTC(),
		"updates":  updates,
	}
	if err := messaging.Publish(c.Request().Context(), messaging.KeyPriceUpdate, payload); err != nil {
		log.Error("Failed to publish price updates", zap.Int("count", len(updates)), zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"message": "failed to publish price updates"})
	}

	prometheus.RecordBrokerPublish(messaging.KeyPriceUpdate)
	log.Info("Price updates published", zap.Int("count", len(updates)))
	return c.JSON(http.StatusAccepted, echo.Map{
		"message": "price updates queued for delivery",
		"count":   len(updates),
	})
}
