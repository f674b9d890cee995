package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store aggregates the repositories behind a single handle so multi-entity
// writes can run inside one database transaction. WithinTx yields a Store
// bound to the transaction; the whole callback commits or rolls back as a
// unit and the handle is released on every exit path.
type Store interface {
	Users() UserRepository
	Guides() GuideRepository
	Modules() ModuleRepository
	Payments() PaymentRepository
	Purchases() PurchaseRepository
	Quizzes() QuizRepository
	Attempts() AttemptRepository
	Certifications() CertificationRepository
	Progress() ProgressRepository

	WithinTx(ctx context.Context, fn func(Store) error) error
}

type gormStore struct {
	db *gorm.DB

	users          UserRepository
	guides         GuideRepository
	modules        ModuleRepository
	payments       PaymentRepository
	purchases      PurchaseRepository
	quizzes        QuizRepository
	attempts       AttemptRepository
	certifications CertificationRepository
	progress       ProgressRepository
}

// NewStore builds a Store over the provided GORM handle.
func NewStore(db *gorm.DB) Store {
	return &gormStore{
		db:             db,
		users:          NewUserRepository(db),
		guides:         NewGuideRepository(db),
		modules:        NewModuleRepository(db),
		payments:       NewPaymentRepository(db),
		purchases:      NewPurchaseRepository(db),
		quizzes:        NewQuizRepository(db),
		attempts:       NewAttemptRepository(db),
		certifications: NewCertificationRepository(db),
		progress:       NewProgressRepository(db),
	}
}

func (s *gormStore) Users() UserRepository                   { return s.users }
func (s *gormStore) Guides() GuideRepository                 { return s.guides }
func (s *gormStore) Modules() ModuleRepository               { return s.modules }
func (s *gormStore) Payments() PaymentRepository             { return s.payments }
func (s *gormStore) Purchases() PurchaseRepository           { return s.purchases }
func (s *gormStore) Quizzes() QuizRepository                 { return s.quizzes }
func (s *gormStore) Attempts() AttemptRepository             { return s.attempts }
func (s *gormStore) Certifications() CertificationRepository { return s.certifications }
func (s *gormStore) Progress() ProgressRepository            { return s.progress }

func (s *gormStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
