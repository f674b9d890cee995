package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/semenggoh/parkguide-api/internal/handler"
	"github.com/semenggoh/parkguide-api/internal/models"
	"github.com/semenggoh/parkguide-api/internal/repository"
	"github.com/semenggoh/parkguide-api/internal/service"
)

func newQuizApp(t *testing.T, store repository.Store, userID uint) *fiber.App {
	t.Helper()
	validate := validator.New(validator.WithRequiredStructEnabled())
	access := service.NewAccessResolver(store, testLogger())
	issuer := service.NewCertificationService(store, testLogger())
	progress := service.NewProgressService(store, validate, testLogger())
	engine := service.NewQuizService(store, access, issuer, progress, validate, 70, testLogger())
	h := handler.NewQuizHandler(engine, testLogger())

	app := fiber.New()
	group := app.Group("/api/v1/training-modules", authAs(userID, models.RoleGuide))
	h.Register(group)
	return app
}

func seedHandlerQuiz(t *testing.T, db *gorm.DB, moduleID uint) (models.QuizQuestion, models.QuizAnswerOption) {
	t.Helper()
	quiz := models.Quiz{ModuleID: moduleID, Title: "Module Assessment", PassPercentage: 50}
	require.NoError(t, db.Create(&quiz).Error)

	question := models.QuizQuestion{QuizID: quiz.ID, QuestionText: "Night hikes require a permit.", QuestionType: models.QuestionTypeTrueFalse, Points: 1, SequenceNumber: 1}
	require.NoError(t, db.Create(&question).Error)

	correct := models.QuizAnswerOption{QuestionID: question.ID, OptionText: "True", IsCorrect: true, SequenceNumber: 1}
	wrong := models.QuizAnswerOption{QuestionID: question.ID, OptionText: "False", SequenceNumber: 2}
	require.NoError(t, db.Create(&correct).Error)
	require.NoError(t, db.Create(&wrong).Error)
	return question, correct
}

func TestQuizHandler_Assemble(t *testing.T) {
	store, db := setupHandlerDB(t)
	user := seedUser(t, db, "handler-quiz-get")
	module := seedModule(t, db, "Night Operations", 0)
	seedHandlerQuiz(t, db, module.ID)

	app := newQuizApp(t, store, user.ID)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/training-modules/"+itoa(module.ID)+"/quiz", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	envelope := decodeEnvelope(t, resp)
	var assembly struct {
		Questions []struct {
			QuestionText string `json:"question_text"`
			Options      []struct {
				OptionText string `json:"option_text"`
			} `json:"options"`
		} `json:"questions"`
	}
	require.NoError(t, json.Unmarshal(envelope.Data, &assembly))
	require.Len(t, assembly.Questions, 1)
	require.Len(t, assembly.Questions[0].Options, 2)
}

func TestQuizHandler_SubmitPass(t *testing.T) {
	store, db := setupHandlerDB(t)
	user := seedUser(t, db, "handler-quiz-post")
	module := seedModule(t, db, "Night Operations", 0)
	question, correct := seedHandlerQuiz(t, db, module.ID)

	app := newQuizApp(t, store, user.ID)

	payload := `{"answers": [{"questionId": ` + itoa(question.ID) + `, "selectedOptionId": ` + itoa(correct.ID) + `}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/training-modules/"+itoa(module.ID)+"/quiz", strings.NewReader(payload))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	envelope := decodeEnvelope(t, resp)
	var result struct {
		Passed        bool `json:"passed"`
		AttemptNumber int  `json:"attemptNumber"`
	}
	require.NoError(t, json.Unmarshal(envelope.Data, &result))
	require.True(t, result.Passed)
	require.Equal(t, 1, result.AttemptNumber)
}

func TestQuizHandler_SubmitDeniedWithoutPurchase(t *testing.T) {
	store, db := setupHandlerDB(t)
	user := seedUser(t, db, "handler-quiz-denied")
	module := seedModule(t, db, "Night Operations", 90)
	question, correct := seedHandlerQuiz(t, db, module.ID)

	app := newQuizApp(t, store, user.ID)

	payload := `{"answers": [{"questionId": ` + itoa(question.ID) + `, "selectedOptionId": ` + itoa(correct.ID) + `}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/training-modules/"+itoa(module.ID)+"/quiz", strings.NewReader(payload))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	envelope := decodeEnvelope(t, resp)
	require.Equal(t, "not_purchased", envelope.Reason)
}

func TestQuizHandler_MissingQuiz(t *testing.T) {
	store, db := setupHandlerDB(t)
	user := seedUser(t, db, "handler-quiz-missing")
	module := seedModule(t, db, "Night Operations", 0)

	app := newQuizApp(t, store, user.ID)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/training-modules/"+itoa(module.ID)+"/quiz", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
