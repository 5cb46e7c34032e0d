package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/agrofount/backoffice/internal/model"
	"github.com/agrofount/backoffice/pkg/jwtutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func seedAdmin(t *testing.T, db *gorm.DB, password string, active bool) model.Admin {
	t.Helper()

	role := model.Role{
		Name: "superadmin",
		Permissions: model.PermissionList{
			{Resource: "order", Actions: []string{"read", "write"}},
		},
	}
	require.NoError(t, db.Create(&role).Error)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)

	admin := model.Admin{
		Username: "ops",
		Email:    "ops@agrofount.com",
		Password: string(hash),
		RoleID:   role.ID,
		IsActive: active,
	}
	require.NoError(t, db.Create(&admin).Error)
	return admin
}

func TestLogin(t *testing.T) {
	jwtutil.Initialize(&jwtutil.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})
	db := setupTestDB(t)
	seedAdmin(t, db, "s3cret", true)

	c, rec := request(t, http.MethodPost, "/auth/admin/login", `{"email": "ops@agrofount.com", "password": "s3cret"}`)
	require.NoError(t, Login(c))
	requireStatus(t, rec, http.StatusOK)

	var resp struct {
		Token string `json:"token"`
		Admin struct {
			Username string `json:"username"`
			Role     string `json:"role"`
		} `json:"admin"`
	}
	decode(t, rec, &resp)
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, "ops", resp.Admin.Username)
	assert.Equal(t, "superadmin", resp.Admin.Role)

	claims, err := jwtutil.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "ops@agrofount.com", claims.Email)
	assert.Equal(t, "superadmin", claims.Role)
}

func TestLoginInvalidCredentials(t *testing.T) {
	jwtutil.Initialize(&jwtutil.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})
	db := setupTestDB(t)
	seedAdmin(t, db, "s3cret", true)

	// Wrong password and unknown account read the same from outside
	c, rec := request(t, http.MethodPost, "/auth/admin/login", `{"email": "ops@agrofount.com", "password": "wrong"}`)
	require.NoError(t, Login(c))
	requireStatus(t, rec, http.StatusUnauthorized)

	c, rec = request(t, http.MethodPost, "/auth/admin/login", `{"email": "ghost@agrofount.com", "password": "s3cret"}`)
	require.NoError(t, Login(c))
	requireStatus(t, rec, http.StatusUnauthorized)
}

func TestLoginDeactivatedAccount(t *testing.T) {
	jwtutil.Initialize(&jwtutil.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})
	db := setupTestDB(t)
	seedAdmin(t, db, "s3cret", false)

	c, rec := request(t, http.MethodPost, "/auth/admin/login", `{"email": "ops@agrofount.com", "password": "s3cret"}`)
	require.NoError(t, Login(c))
	requireStatus(t, rec, http.StatusForbidden)
}

func TestVerifyEmail(t *testing.T) {
	jwtutil.Initialize(&jwtutil.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})
	db := setupTestDB(t)
	admin := seedAdmin(t, db, "s3cret", true)
	require.False(t, admin.EmailVerified)

	token, err := jwtutil.GenerateToken(admin.Email, admin.ID, "")
	require.NoError(t, err)

	c, rec := request(t, http.MethodPost, "/admin/verify-email", `{"token": "`+token+`"}`)
	require.NoError(t, VerifyEmail(c))
	requireStatus(t, rec, http.StatusOK)

	var saved model.Admin
	require.NoError(t, db.First(&saved, admin.ID).Error)
	assert.True(t, saved.EmailVerified)
}

func TestVerifyEmailExpiredToken(t *testing.T) {
	jwtutil.Initialize(&jwtutil.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})
	db := setupTestDB(t)
	admin := seedAdmin(t, db, "s3cret", true)

	token, err := jwtutil.GenerateTokenWithExpiry(admin.Email, admin.ID, "", time.Now().Add(-time.Hour))
	require.NoError(t, err)

	c, rec := request(t, http.MethodPost, "/admin/verify-email", `{"token": "`+token+`"}`)
	require.NoError(t, VerifyEmail(c))
	requireStatus(t, rec, http.StatusBadRequest)

	var saved model.Admin
	require.NoError(t, db.First(&saved, admin.ID).Error)
	assert.False(t, saved.EmailVerified)
}
