package middleware_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/semenggoh/parkguide-api/internal/middleware"
	"github.com/semenggoh/parkguide-api/internal/models"
	"github.com/semenggoh/parkguide-api/internal/repository"
)

func setupAccountApp(t *testing.T, uid string) (*fiber.App, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	store := repository.NewStore(db)

	app := fiber.New()
	app.Get("/protected", func(c *fiber.Ctx) error {
		if uid != "" {
			c.Locals("user_uid", uid)
		}
		return c.Next()
	}, middleware.RequireAccount(store), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":   c.Locals("user_id"),
			"user_role": c.Locals("user_role"),
		})
	})
	return app, db
}

func TestRequireAccountResolvesApprovedUser(t *testing.T) {
	app, db := setupAccountApp(t, "uid-approved")
	user := models.User{UID: "uid-approved", FirstName: "Siti", LastName: "Rahman", Email: "siti@example.com", Role: models.RoleGuide, Status: models.UserStatusApproved}
	require.NoError(t, db.Create(&user).Error)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/protected", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.EqualValues(t, user.ID, payload["user_id"])
	require.Equal(t, models.RoleGuide, payload["user_role"])
}

func TestRequireAccountRejectsUnknownUID(t *testing.T) {
	app, _ := setupAccountApp(t, "uid-ghost")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/protected", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequireAccountRejectsMissingUID(t *testing.T) {
	app, _ := setupAccountApp(t, "")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/protected", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequireAccountBlocksPendingAccount(t *testing.T) {
	app, db := setupAccountApp(t, "uid-pending")
	user := models.User{UID: "uid-pending", FirstName: "Siti", LastName: "Rahman", Email: "pending@example.com", Role: models.RoleGuide, Status: models.UserStatusPending}
	require.NoError(t, db.Create(&user).Error)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/protected", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.Equal(t, "account_pending", payload["reason"])
}
