package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/semenggoh/parkguide-api/internal/dto"
	"github.com/semenggoh/parkguide-api/internal/models"
	"github.com/semenggoh/parkguide-api/internal/observability"
	"github.com/semenggoh/parkguide-api/internal/repository"
)

// attemptInsertRetries bounds the retry-on-conflict loop around the
// (user, module, attempt_number) unique index.
const attemptInsertRetries = 3

// QuizEngine assembles module quizzes and scores submitted attempts.
// Assembly opens a numbered attempt for guides (two-phase); submission
// either finalizes that attempt or creates one, then records responses,
// certification, and progress in a single transaction.
type QuizEngine interface {
	Assemble(ctx context.Context, userID, moduleID uint) (dto.QuizAssemblyResponse, error)
	Submit(ctx context.Context, userID, moduleID uint, payload dto.QuizSubmissionRequest) (dto.QuizResultResponse, error)
}

type quizService struct {
	store          repository.Store
	access         AccessResolver
	issuer         CertificationIssuer
	progress       ProgressTracker
	validator      *validator.Validate
	passPercentage int
	logger         zerolog.Logger
	tracer         trace.Tracer
	now            func() time.Time
}

// NewQuizService constructs a QuizEngine. passPercentage is the default
// passing threshold (0-100); a quiz row carrying its own non-zero
// pass_percentage overrides it.
func NewQuizService(store repository.Store, access AccessResolver, issuer CertificationIssuer, progress ProgressTracker, validate *validator.Validate, passPercentage int, logger zerolog.Logger) QuizEngine {
	return &quizService{
		store:          store,
		access:         access,
		issuer:         issuer,
		progress:       progress,
		validator:      validate,
		passPercentage: passPercentage,
		logger:         logger.With().Str("component", "quiz_service").Logger(),
		tracer:         otel.Tracer("github.com/semenggoh/parkguide-api/internal/service/quiz"),
		now:            time.Now,
	}
}

func (s *quizService) Assemble(ctx context.Context, userID, moduleID uint) (dto.QuizAssemblyResponse, error) {
	if err := s.requireAccess(ctx, userID, moduleID); err != nil {
		return dto.QuizAssemblyResponse{}, err
	}

	quiz, err := s.store.Quizzes().GetByModuleID(ctx, moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuizAssemblyResponse{}, ErrQuizNotFound
		}
		return dto.QuizAssemblyResponse{}, err
	}

	attemptsUsed, err := s.store.Attempts().CountForUserModule(ctx, userID, moduleID)
	if err != nil {
		return dto.QuizAssemblyResponse{}, err
	}

	questions := make([]dto.QuizQuestionView, 0, len(quiz.Questions))
	for _, question := range quiz.Questions {
		questions = append(questions, dto.NewQuizQuestionView(question))
	}

	meta := dto.QuizMeta{
		ID:           quiz.ID,
		Title:        quiz.Title,
		Description:  quiz.Description,
		AttemptsUsed: int(attemptsUsed),
	}

	// Guides get an attempt opened up-front so timing starts at assembly;
	// the submission call finalizes it.
	guide, err := s.store.Guides().GetByUserID(ctx, userID)
	switch {
	case err == nil:
		attempt, err := s.openAttempt(ctx, quiz.ID, userID, &guide.ID, moduleID)
		if err != nil {
			return dto.QuizAssemblyResponse{}, err
		}
		meta.AttemptID = &attempt.ID
		meta.NextAttemptNumber = attempt.AttemptNumber
	case errors.Is(err, gorm.ErrRecordNotFound):
		max, err := s.store.Attempts().MaxAttemptNumber(ctx, userID, moduleID)
		if err != nil {
			return dto.QuizAssemblyResponse{}, err
		}
		meta.NextAttemptNumber = max + 1
	default:
		return dto.QuizAssemblyResponse{}, err
	}

	return dto.QuizAssemblyResponse{Quiz: meta, Questions: questions}, nil
}

func (s *quizService) Submit(ctx context.Context, userID, moduleID uint, payload dto.QuizSubmissionRequest) (dto.QuizResultResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuizResultResponse{}, err
	}

	if err := s.requireAccess(ctx, userID, moduleID); err != nil {
		return dto.QuizResultResponse{}, err
	}

	quiz, err := s.store.Quizzes().GetByModuleID(ctx, moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuizResultResponse{}, ErrQuizNotFound
		}
		return dto.QuizResultResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "quiz.submit", trace.WithAttributes(
		attribute.Int64("quiz.id", int64(quiz.ID)),
		attribute.Int64("module.id", int64(moduleID)),
	))
	defer span.End()

	outcome, err := s.score(ctx, quiz, payload.Answers)
	if err != nil {
		return dto.QuizResultResponse{}, err
	}

	threshold := s.passPercentage
	if quiz.PassPercentage > 0 {
		threshold = quiz.PassPercentage
	}
	passed := outcome.percentage >= threshold

	guideID := s.guideID(ctx, userID)
	now := s.now()

	var attempt models.QuizAttempt
	if payload.AttemptID != nil {
		attempt, err = s.finalizeAttempt(ctx, *payload.AttemptID, userID, moduleID, quiz.ID, outcome, passed, guideID, now)
	} else {
		attempt, err = s.recordAttempt(ctx, quiz.ID, userID, guideID, moduleID, outcome, passed, now)
	}
	if err != nil {
		return dto.QuizResultResponse{}, err
	}

	observability.QuizSubmissions().WithLabelValues(resultLabel(passed)).Inc()

	message := "You did not pass. Please review the material and try again."
	if passed {
		message = "Congratulations! You passed the quiz."
	}

	s.logger.Info().
		Uint("user_id", userID).
		Uint("module_id", moduleID).
		Int("attempt_number", attempt.AttemptNumber).
		Int("score", outcome.score).
		Bool("passed", passed).
		Msg("quiz attempt recorded")

	return dto.QuizResultResponse{
		Score:          outcome.score,
		TotalQuestions: outcome.totalQuestions,
		TotalPoints:    outcome.totalPoints,
		EarnedPoints:   outcome.earnedPoints,
		PassPercentage: outcome.percentage,
		Passed:         passed,
		AttemptNumber:  attempt.AttemptNumber,
		Message:        message,
	}, nil
}

// scoredOutcome is the deterministic result of comparing an answer set
// against the stored correct-option map.
type scoredOutcome struct {
	score          int
	totalQuestions int
	totalPoints    int
	earnedPoints   int
	percentage     int
	responses      []models.QuizResponse
	answerTimes    datatypes.JSON
}

func (s *quizService) score(ctx context.Context, quiz models.Quiz, answers []dto.QuizAnswer) (scoredOutcome, error) {
	correct, err := s.store.Quizzes().CorrectOptions(ctx, quiz.ID)
	if err != nil {
		return scoredOutcome{}, err
	}

	points, err := s.store.Quizzes().QuestionPoints(ctx, quiz.ID)
	if err != nil {
		return scoredOutcome{}, err
	}

	outcome := scoredOutcome{totalQuestions: len(points)}
	for _, questionPoints := range points {
		outcome.totalPoints += questionPoints
	}

	seen := make(map[uint]struct{}, len(answers))
	times := make([]int, 0, len(answers))
	for i, answer := range answers {
		if _, ok := points[answer.QuestionID]; !ok {
			return scoredOutcome{}, fmt.Errorf("%w: question %d is not part of the quiz", ErrInvalidAnswers, answer.QuestionID)
		}
		if _, dup := seen[answer.QuestionID]; dup {
			return scoredOutcome{}, fmt.Errorf("%w: duplicate answer for question %d", ErrInvalidAnswers, answer.QuestionID)
		}
		seen[answer.QuestionID] = struct{}{}

		isCorrect := correct[answer.QuestionID] == answer.SelectedOptionID
		if isCorrect {
			outcome.score++
			outcome.earnedPoints += points[answer.QuestionID]
		}

		outcome.responses = append(outcome.responses, models.QuizResponse{
			QuestionID:       answer.QuestionID,
			SelectedOptionID: answer.SelectedOptionID,
			IsCorrect:        isCorrect,
			TimeTakenSecs:    answer.TimeTakenSecs,
			AnswerSequence:   i + 1,
		})
		times = append(times, answer.TimeTakenSecs)
	}

	if outcome.totalPoints > 0 {
		outcome.percentage = int(math.Round(float64(outcome.earnedPoints) / float64(outcome.totalPoints) * 100))
	}

	if encoded, err := json.Marshal(times); err == nil {
		outcome.answerTimes = datatypes.JSON(encoded)
	}

	return outcome, nil
}

// recordAttempt inserts a fresh attempt with the next attempt number. The
// unique index on (user_id, module_id, attempt_number) is authoritative:
// when two submissions race for the same number the loser retries the whole
// transaction with a fresh sequence read.
func (s *quizService) recordAttempt(ctx context.Context, quizID, userID uint, guideID *uint, moduleID uint, outcome scoredOutcome, passed bool, now time.Time) (models.QuizAttempt, error) {
	var attempt models.QuizAttempt

	for attemptNo := 0; ; attemptNo++ {
		err := s.store.WithinTx(ctx, func(tx repository.Store) error {
			max, err := tx.Attempts().MaxAttemptNumber(ctx, userID, moduleID)
			if err != nil {
				return err
			}

			end := now
			attempt = models.QuizAttempt{
				QuizID:         quizID,
				UserID:         userID,
				GuideID:        guideID,
				ModuleID:       moduleID,
				Score:          outcome.score,
				TotalQuestions: outcome.totalQuestions,
				Passed:         passed,
				StartTime:      now,
				EndTime:        &end,
				AttemptNumber:  max + 1,
				AnswerTimes:    outcome.answerTimes,
			}
			if err := tx.Attempts().Create(ctx, &attempt); err != nil {
				return err
			}

			return s.persistOutcome(ctx, tx, &attempt, outcome, passed, userID, guideID, moduleID, now)
		})
		if err == nil {
			return attempt, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) && attemptNo < attemptInsertRetries {
			continue
		}
		return models.QuizAttempt{}, err
	}
}

// finalizeAttempt scores an attempt opened at assembly time. The attempt
// must belong to the caller and module and must not have been scored yet.
func (s *quizService) finalizeAttempt(ctx context.Context, attemptID, userID, moduleID, quizID uint, outcome scoredOutcome, passed bool, guideID *uint, now time.Time) (models.QuizAttempt, error) {
	var attempt models.QuizAttempt

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		attempt, err = tx.Attempts().GetByID(ctx, attemptID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAttemptNotFound
			}
			return err
		}

		if attempt.UserID != userID || attempt.ModuleID != moduleID || attempt.QuizID != quizID {
			return ErrAttemptMismatch
		}
		if attempt.IsFinalized() {
			return ErrAttemptFinalized
		}

		attempt.Score = outcome.score
		attempt.TotalQuestions = outcome.totalQuestions
		attempt.Passed = passed
		attempt.EndTime = &now
		attempt.AnswerTimes = outcome.answerTimes
		if err := tx.Attempts().Finalize(ctx, &attempt); err != nil {
			return err
		}

		return s.persistOutcome(ctx, tx, &attempt, outcome, passed, userID, guideID, moduleID, now)
	})
	if err != nil {
		return models.QuizAttempt{}, err
	}

	return attempt, nil
}

// persistOutcome writes the responses and, on a pass, drives certification
// and progress inside the same transaction. Certification insert failure is
// tolerated: the passing attempt stands even if the credential write fails.
func (s *quizService) persistOutcome(ctx context.Context, tx repository.Store, attempt *models.QuizAttempt, outcome scoredOutcome, passed bool, userID uint, guideID *uint, moduleID uint, now time.Time) error {
	responses := make([]models.QuizResponse, len(outcome.responses))
	copy(responses, outcome.responses)
	for i := range responses {
		responses[i].AttemptID = attempt.ID
	}
	if err := tx.Attempts().CreateResponses(ctx, responses); err != nil {
		return err
	}

	if !passed {
		return nil
	}

	if guideID != nil {
		if err := s.issuer.IssueForPass(ctx, tx, *guideID, moduleID, now); err != nil {
			s.logger.Error().Err(err).Uint("guide_id", *guideID).Uint("module_id", moduleID).Msg("certification issuance failed, attempt preserved")
		}
	}

	return s.progress.CompleteForPass(ctx, tx, userID, guideID, moduleID, now)
}

// openAttempt creates the two-phase attempt row at assembly time.
func (s *quizService) openAttempt(ctx context.Context, quizID, userID uint, guideID *uint, moduleID uint) (models.QuizAttempt, error) {
	var attempt models.QuizAttempt

	for attemptNo := 0; ; attemptNo++ {
		err := s.store.WithinTx(ctx, func(tx repository.Store) error {
			max, err := tx.Attempts().MaxAttemptNumber(ctx, userID, moduleID)
			if err != nil {
				return err
			}

			attempt = models.QuizAttempt{
				QuizID:        quizID,
				UserID:        userID,
				GuideID:       guideID,
				ModuleID:      moduleID,
				StartTime:     s.now(),
				AttemptNumber: max + 1,
			}

			return tx.Attempts().Create(ctx, &attempt)
		})
		if err == nil {
			return attempt, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) && attemptNo < attemptInsertRetries {
			continue
		}
		return models.QuizAttempt{}, err
	}
}

func (s *quizService) requireAccess(ctx context.Context, userID, moduleID uint) error {
	state, err := s.access.Resolve(ctx, userID, moduleID)
	if err != nil {
		return err
	}

	if !state.HasAccess {
		return ErrAccessDenied
	}

	return nil
}

func (s *quizService) guideID(ctx context.Context, userID uint) *uint {
	guide, err := s.store.Guides().GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn().Err(err).Uint("user_id", userID).Msg("guide lookup failed")
		}
		return nil
	}

	return &guide.ID
}

func resultLabel(passed bool) string {
	if passed {
		return "passed"
	}
	return "failed"
}
