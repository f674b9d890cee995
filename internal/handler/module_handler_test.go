package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/semenggoh/parkguide-api/internal/handler"
	"github.com/semenggoh/parkguide-api/internal/models"
	"github.com/semenggoh/parkguide-api/internal/repository"
	"github.com/semenggoh/parkguide-api/internal/service"
)

type stubReceiptStore struct{}

func (stubReceiptStore) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	return "https://cdn.example.com/receipts/" + name, nil
}

func newModuleApp(t *testing.T, store repository.Store, userID uint) *fiber.App {
	t.Helper()
	validate := validator.New(validator.WithRequiredStructEnabled())
	access := service.NewAccessResolver(store, testLogger())
	enrollment := service.NewEnrollmentService(store, stubReceiptStore{}, validate, 5<<20, testLogger())
	progress := service.NewProgressService(store, validate, testLogger())
	h := handler.NewModuleHandler(access, enrollment, progress, testLogger())

	app := fiber.New()
	group := app.Group("/api/v1/training-modules", authAs(userID, models.RoleGuide))
	h.Register(group)
	return app
}

func TestModuleHandler_EnrollFree(t *testing.T) {
	store, db := setupHandlerDB(t)
	user := seedUser(t, db, "handler-enroll")
	module := seedModule(t, db, "Park Orientation", 0)

	app := newModuleApp(t, store, user.ID)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/training-modules/"+itoa(module.ID)+"/enroll", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	envelope := decodeEnvelope(t, resp)
	require.True(t, envelope.Success)

	var count int64
	require.NoError(t, db.Model(&models.ModulePurchase{}).Where("user_id = ?", user.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestModuleHandler_EnrollFreeRejectsPaidModule(t *testing.T) {
	store, db := setupHandlerDB(t)
	user := seedUser(t, db, "handler-paid")
	module := seedModule(t, db, "Advanced Tracking", 120)

	app := newModuleApp(t, store, user.ID)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/training-modules/"+itoa(module.ID)+"/enroll", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestModuleHandler_ResolveAccess(t *testing.T) {
	store, db := setupHandlerDB(t)
	user := seedUser(t, db, "handler-access")
	module := seedModule(t, db, "Advanced Tracking", 120)

	app := newModuleApp(t, store, user.ID)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/training-modules/"+itoa(module.ID)+"/access", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	envelope := decodeEnvelope(t, resp)
	var state struct {
		HasAccess bool   `json:"hasAccess"`
		Reason    string `json:"reason"`
	}
	require.NoError(t, json.Unmarshal(envelope.Data, &state))
	require.False(t, state.HasAccess)
	require.Equal(t, "not_purchased", state.Reason)
}

func TestModuleHandler_PurchaseWithReceipt(t *testing.T) {
	store, db := setupHandlerDB(t)
	user := seedUser(t, db, "handler-purchase")
	module := seedModule(t, db, "Advanced Tracking", 120)

	app := newModuleApp(t, store, user.ID)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("payment_method", "bank_transfer"))
	require.NoError(t, writer.WriteField("amount", "120"))
	part, err := writer.CreateFormFile("receipt", "receipt.png")
	require.NoError(t, err)
	_, err = part.Write([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A})
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/training-modules/"+itoa(module.ID)+"/purchase", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var payment models.PaymentTransaction
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&payment).Error)
	require.Equal(t, models.PaymentStatusPending, payment.Status)
	require.NotEmpty(t, payment.ReceiptURL)
}

func TestModuleHandler_ProgressWithoutPurchase(t *testing.T) {
	store, db := setupHandlerDB(t)
	user := seedUser(t, db, "handler-progress")
	module := seedModule(t, db, "Advanced Tracking", 120)

	app := newModuleApp(t, store, user.ID)

	payload := strings.NewReader(`{"moduleId": ` + itoa(module.ID) + `, "progress": 40}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/training-modules/progress", payload)
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	envelope := decodeEnvelope(t, resp)
	require.Equal(t, "not_purchased", envelope.Reason)
}

func TestModuleHandler_ListUserModules(t *testing.T) {
	store, db := setupHandlerDB(t)
	user := seedUser(t, db, "handler-list")
	module := seedModule(t, db, "Advanced Tracking", 120)
	seedActivePurchase(t, db, user.ID, module.ID)

	app := newModuleApp(t, store, user.ID)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/training-modules/user", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	envelope := decodeEnvelope(t, resp)
	var modules []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(envelope.Data, &modules))
	require.Len(t, modules, 1)
	require.Equal(t, "Advanced Tracking", modules[0].Name)
}
