package handler

import (
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/agrofount/backoffice/internal/model"
	"github.com/agrofount/backoffice/pkg/database"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB swaps the global database for an in-memory sqlite instance
// migrated with every model the handlers touch
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.Role{},
		&model.Admin{},
		&model.Country{},
		&model.State{},
		&model.City{},
		&model.Product{},
		&model.ProductLocation{},
		&model.Order{},
		&model.OrderItem{},
		&model.Payment{},
		&model.User{},
		&model.Cart{},
		&model.CreditFacilityRequest{},
		&model.Driver{},
		&model.Shipment{},
		&model.Post{},
	))

	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })

	return db
}

// request builds an echo context for a handler call. params are
// name/value pairs for path parameters.
func request(t *testing.T, method, target, body string, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	require.Zero(t, len(params)%2, "params must come in name/value pairs")

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	if len(params) > 0 {
		names := make([]string, 0, len(params)/2)
		values := make([]string, 0, len(params)/2)
		for i := 0; i < len(params); i += 2 {
			names = append(names, params[i])
			values = append(values, params[i+1])
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	return c, rec
}

// decode unmarshals a recorded JSON response body
func decode(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest))
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, rec.Code, "body: %s", rec.Body.String())
}

// itoa formats IDs for inline JSON bodies
func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
