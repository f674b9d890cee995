package service

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/semenggoh/parkguide-api/internal/models"
	"github.com/semenggoh/parkguide-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func setupStore(t *testing.T) (repository.Store, *gorm.DB) {
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

func createUser(t *testing.T, db *gorm.DB, uid string) models.User {
	t.Helper()
	user := models.User{
		UID:       uid,
		FirstName: "Siti",
		LastName:  "Rahman",
		Email:     uid + "@example.com",
		Role:      models.RoleGuide,
		Status:    models.UserStatusApproved,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createGuide(t *testing.T, db *gorm.DB, userID uint) models.ParkGuide {
	t.Helper()
	guide := models.ParkGuide{UserID: userID, CertificationStatus: models.GuideLicensePending}
	require.NoError(t, db.Create(&guide).Error)
	return guide
}

func createModule(t *testing.T, db *gorm.DB, name string, price float64) models.TrainingModule {
	t.Helper()
	module := models.TrainingModule{Name: name, Description: "Training content", Price: price, Duration: "4 weeks"}
	require.NoError(t, db.Create(&module).Error)
	return module
}

func createActivePurchase(t *testing.T, db *gorm.DB, userID, moduleID uint) (models.PaymentTransaction, models.ModulePurchase) {
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
	return payment, purchase
}

func buildReceiptHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {"form-data; name=\"receipt\"; filename=\"" + filename + "\""},
		"Content-Type":        {"application/octet-stream"},
	})
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	writer.Close()

	reader := multipart.NewReader(body, writer.Boundary())
	form, err := reader.ReadForm(int64(len(content) + 1024))
	require.NoError(t, err)
	files := form.File["receipt"]
	require.Len(t, files, 1)
	return files[0]
}

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
