package handler

import (
	"net/http"
	"time"

	"github.com/agrofount/backoffice/internal/model"
	"github.com/agrofount/backoffice/internal/query"
	"github.com/agrofount/backoffice/pkg/cache"
	"github.com/agrofount/backoffice/pkg/database"
	"github.com/agrofount/backoffice/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Geography reference data is backend-owned; the storefront and admin UI
// both read it from here instead of shipping hardcoded lists.

const (
	cacheKeyCountries = "geo:countries:active"
	cacheKeyStates    = "geo:states:active"
	geoReferenceTTL   = 1 * time.Hour
)

var countryListOptions = query.Options{
	DefaultSort: "name ASC",
	SortFields: map[string]string{
		"id":        "id",
		"name":      "name",
		"code":      "code",
		"createdAt": "created_at",
	},
	SearchColumns: []string{"name", "code"},
	FilterFields: map[string]string{
		"filter.isActive": "is_active",
	},
}

var stateListOptions = query.Options{
	DefaultSort: "name ASC",
	SortFields: map[string]string{
		"id":        "id",
		"name":      "name",
		"createdAt": "created_at",
	},
	SearchColumns: []string{"name", "code"},
	FilterFields: map[string]string{
		"filter.country.id": "country_id",
		"filter.isActive":   "is_active",
	},
}

var cityListOptions = query.Options{
	DefaultSort: "name ASC",
	SortFields: map[string]string{
		"id":        "id",
		"name":      "name",
		"createdAt": "created_at",
	},
	SearchColumns: []string{"name"},
	FilterFields: map[string]string{
		"filter.state.id": "state_id",
		"filter.isActive": "is_active",
	},
}

// GeoRequest is the create/update payload shared by all three levels
type GeoRequest struct {
	Name     string `json:"name" validate:"required"`
	Code     string `json:"code"`
	ParentID uint   `json:"parentId"`
	IsActive *bool  `json:"isActive"`
}

func isActiveOrDefault(req *GeoRequest) bool {
	if req.IsActive == nil {
		return true
	}
	return *req.IsActive
}

// ListCountries returns a page of countries
func ListCountries(c echo.Context) error {
	log := logger.FromEcho(c)

	var countries []model.Country
	page, err := query.Paginate(c, database.GetDB().Model(&model.Country{}), countryListOptions, &countries)
	if err != nil {
		log.Error("Failed to list countries", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to retrieve countries"})
	}
	return c.JSON(http.StatusOK, page)
}

// ActiveCountries returns the full active-country reference list, cached
func ActiveCountries(c echo.Context) error {
	log := logger.FromEcho(c)
	ctx := c.Request().Context()

	var countries []model.Country
	hit, err := cache.GetJSON(ctx, cacheKeyCountries, &countries)
	if err != nil {
		log.Warn("Country cache read failed", zap.Error(err))
	}
	if !hit {
		if result := database.GetDB().Where("is_active = ?", true).Order("name ASC").Find(&countries); result.Error != nil {
			log.Error("Failed to load countries", zap.Error(result.Error))
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to retrieve countries"})
		}
		if err := cache.SetJSON(ctx, cacheKeyCountries, countries, geoReferenceTTL); err != nil {
			log.Warn("Country cache write failed", zap.Error(err))
		}
	}
	return c.JSON(http.StatusOK, countries)
}

// CreateCountry creates a country
func CreateCountry(c echo.Context) error {
	log := logger.FromEcho(c)

	var req GeoRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c)
	}
	if err := validate.Struct(&req); err != nil {
		return validationFailed(c, validationMessages(err))
	}
	if req.Code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "code is required"})
	}

	country := model.Country{Name: req.Name, Code: req.Code, IsActive: isActiveOrDefault(&req)}
	if result := database.GetDB().Create(&country); result.Error != nil {
		log.Error("Failed to create country", zap.String("name", req.Name), zap.Error(result.Error))
		return c.JSON(http.StatusConflict, echo.Map{"message": "country with this name or code already exists"})
	}

	cache.Invalidate(c.Request().Context(), cacheKeyCountries)
	log.Info("Country created", zap.Uint("country_id", country.ID), zap.String("name", country.Name))
	return c.JSON(http.StatusCreated, country)
}

// UpdateCountry updates a country
func UpdateCountry(c echo.Context) error {
	log := logger.FromEcho(c)

	var req GeoRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c)
	}
	if err := validate.Struct(&req); err != nil {
		return validationFailed(c, validationMessages(err))
	}

	var country model.Country
	if result := database.GetDB().First(&country, c.Param("id")); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "country not found"})
	}

	country.Name = req.Name
	if req.Code != "" {
		country.Code = req.Code
	}
	country.IsActive = isActiveOrDefault(&req)

	if result := database.GetDB().Save(&country); result.Error != nil {
		log.Error("Failed to update country", zap.Uint("country_id", country.ID), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to update country"})
	}

	cache.Invalidate(c.Request().Context(), cacheKeyCountries)
	return c.JSON(http.StatusOK, country)
}

// DeleteCountry soft deletes a country with no states under it
func DeleteCountry(c echo.Context) error {
	id := c.Param("id")

	var children int64
	database.GetDB().Model(&model.State{}).Where("country_id = ?", id).Count(&children)
	if children > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"message": "country still has states"})
	}

	result := database.GetDB().Delete(&model.Country{}, id)
	if result.Error != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to delete country"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "country not found"})
	}

	cache.Invalidate(c.Request().Context(), cacheKeyCountries)
	return c.JSON(http.StatusOK, echo.Map{"message": "country deleted successfully"})
}

// ListStates returns a page of states
func ListStates(c echo.Context) error {
	log := logger.FromEcho(c)

	var states []model.State
	page, err := query.Paginate(c, database.GetDB().Model(&model.State{}).Preload("Country"), stateListOptions, &states)
	if err != nil {
		log.Error("Failed to list states", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to retrieve states"})
	}
	return c.JSON(http.StatusOK, page)
}

// CreateState creates a state under a country
func CreateState(c echo.Context) error {
	log := logger.FromEcho(c)

	var req GeoRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c)
	}
	if err := validate.Struct(&req); err != nil {
		return validationFailed(c, validationMessages(err))
	}

	var country model.Country
	if result := database.GetDB().First(&country, req.ParentID); result.Error != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "country not found"})
	}

	state := model.State{Name: req.Name, Code: req.Code, CountryID: country.ID, IsActive: isActiveOrDefault(&req)}
	if result := database.GetDB().Create(&state); result.Error != nil {
		log.Error("Failed to create state", zap.String("name", req.Name), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to create state"})
	}

	cache.Invalidate(c.Request().Context(), cacheKeyStates)
	log.Info("State created", zap.Uint("state_id", state.ID), zap.Uint("country_id", country.ID))
	return c.JSON(http.StatusCreated, state)
}

// UpdateState updates a state
func UpdateState(c echo.Context) error {
	var req GeoRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c)
	}
	if err := validate.Struct(&req); err != nil {
		return validationFailed(c, validationMessages(err))
	}

	var state model.State
	if result := database.GetDB().First(&state, c.Param("id")); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "state not found"})
	}

	state.Name = req.Name
	state.Code = req.Code
	if req.ParentID != 0 {
		state.CountryID = req.ParentID
	}
	state.IsActive = isActiveOrDefault(&req)

	if result := database.GetDB().Save(&state); result.Error != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to update state"})
	}

	cache.Invalidate(c.Request().Context(), cacheKeyStates)
	return c.JSON(http.StatusOK, state)
}

// DeleteState soft deletes a state with no cities under it
func DeleteState(c echo.Context) error {
	id := c.Param("id")

	var children int64
	database.GetDB().Model(&model.City{}).Where("state_id = ?", id).Count(&children)
	if children > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"message": "state still has cities"})
	}

	result := database.GetDB().Delete(&model.State{}, id)
	if result.Error != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to delete state"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "state not found"})
	}

	cache.Invalidate(c.Request().Context(), cacheKeyStates)
	return c.JSON(http.StatusOK, echo.Map{"message": "state deleted successfully"})
}

// ListCities returns a page of cities
func ListCities(c echo.Context) error {
	log := logger.FromEcho(c)

	var cities []model.City
	page, err := query.Paginate(c, database.GetDB().Model(&model.City{}).Preload("State"), cityListOptions, &cities)
	if err != nil {
		log.Error("Failed to list cities", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to retrieve cities"})
	}
	return c.JSON(http.StatusOK, page)
}

// CreateCity creates a city under a state
func CreateCity(c echo.Context) error {
	log := logger.FromEcho(c)

	var req GeoRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c)
	}
	if err := validate.Struct(&req); err != nil {
		return validationFailed(c, validationMessages(err))
	}

	var state model.State
	if result := database.GetDB().First(&state, req.ParentID); result.Error != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "state not found"})
	}

	city := model.City{Name: req.Name, StateID: state.ID, IsActive: isActiveOrDefault(&req)}
	if result := database.GetDB().Create(&city); result.Error != nil {
		log.Error("Failed to create city", zap.String("name", req.Name), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to create city"})
	}

	log.Info("City created", zap.Uint("city_id", city.ID), zap.Uint("state_id", state.ID))
	return c.JSON(http.StatusCreated, city)
}

// UpdateCity updates a city
func UpdateCity(c echo.Context) error {
	var req GeoRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c)
	}
	if err := validate.Struct(&req); err != nil {
		return validationFailed(c, validationMessages(err))
	}

	var city model.City
	if result := database.GetDB().First(&city, c.Param("id")); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "city not found"})
	}

	city.Name = req.Name
	if req.ParentID != 0 {
		city.StateID = req.ParentID
	}
	city.IsActive = isActiveOrDefault(&req)

	if result := database.GetDB().Save(&city); result.Error != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to update city"})
	}
	return c.JSON(http.StatusOK, city)
}

// DeleteCity soft deletes a city
func DeleteCity(c echo.Context) error {
	result := database.GetDB().Delete(&model.City{}, c.Param("id"))
	if result.Error != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to delete city"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "city not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "city deleted successfully"})
}
