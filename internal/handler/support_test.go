package handler_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/semenggoh/parkguide-api/internal/models"
	"github.com/semenggoh/parkguide-api/internal/repository"
)

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Reason  string          `json:"reason"`
}

func setupHandlerDB(t *testing.T) (repository.Store, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.ParkGuide{},
		&models.TrainingModule{},
		&models.PaymentTransaction{},
		&models.ModulePurchase{},
		&models.Quiz{},
		&models.QuizQuestion{},
		&models.QuizAnswerOption{},
		&models.QuizAttempt{},
		&models.QuizResponse{},
		&models.Certification{},
		&models.GuideTrainingProgress{},
	))
	return repository.NewStore(db), db
}

// authAs stands in for the JWT and account middlewares during tests.
func authAs(userID uint, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		c.Locals("user_role", role)
		return c.Next()
	}
}

func seedUser(t *testing.T, db *gorm.DB, uid string) models.User {
	t.Helper()
	user := models.User{
		UID:       uid,
		FirstName: "Amin",
		LastName:  "Jalil",
		Email:     uid + "@example.com",
		Role:      models.RoleGuide,
		Status:    models.UserStatusApproved,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedModule(t *testing.T, db *gorm.DB, name string, price float64) models.TrainingModule {
	t.Helper()
	module := models.TrainingModule{Name: name, Description: "Training content", Price: price, Duration: "2 weeks"}
	require.NoError(t, db.Create(&module).Error)
	return module
}

func seedActivePurchase(t *testing.T, db *gorm.DB, userID, moduleID uint) models.ModulePurchase {
	t.Helper()
	payment := models.PaymentTransaction{
		UserID:          userID,
		Purpose:         "Module Purchase",
		Method:          "debit",
		Amount:          50,
		Status:          models.PaymentStatusApproved,
		ModuleID:        &moduleID,
		TransactionDate: time.Now(),
	}
	require.NoError(t, db.Create(&payment).Error)

	purchase := models.ModulePurchase{
		UserID:       userID,
		ModuleID:     moduleID,
		PaymentID:    payment.ID,
		Status:       models.PurchaseStatusActive,
		IsActive:     true,
		PurchaseDate: time.Now(),
	}
	require.NoError(t, db.Create(&purchase).Error)
	return purchase
}

func decodeEnvelope(t *testing.T, resp *http.Response) apiEnvelope {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var envelope apiEnvelope
	require.NoError(t, json.Unmarshal(body, &envelope))
	return envelope
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
