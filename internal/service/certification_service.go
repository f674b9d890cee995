package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/semenggoh/parkguide-api/internal/dto"
	"github.com/semenggoh/parkguide-api/internal/models"
	"github.com/semenggoh/parkguide-api/internal/repository"
)

// CertificationIssuer issues the one-year credential that follows a passing
// quiz attempt. Issuance is idempotent per (guide, module): while an
// unexpired certification exists nothing is written; an expired one is
// renewed with a fresh validity window.
type CertificationIssuer interface {
	// IssueForPass runs against the provided store handle so callers can
	// place it inside their own transaction.
	IssueForPass(ctx context.Context, tx repository.Store, guideID, moduleID uint, passedAt time.Time) error
	ListForGuide(ctx context.Context, guideID uint) ([]dto.CertificationResponse, error)
	ListForUser(ctx context.Context, userID uint) ([]dto.CertificationResponse, error)
}

type certificationService struct {
	store  repository.Store
	logger zerolog.Logger
	now    func() time.Time
}

// NewCertificationService constructs a CertificationIssuer instance.
func NewCertificationService(store repository.Store, logger zerolog.Logger) CertificationIssuer {
	return &certificationService{
		store:  store,
		logger: logger.With().Str("component", "certification_service").Logger(),
		now:    time.Now,
	}
}

func (s *certificationService) IssueForPass(ctx context.Context, tx repository.Store, guideID, moduleID uint, passedAt time.Time) error {
	existing, err := tx.Certifications().GetForGuideModule(ctx, guideID, moduleID)
	if err == nil {
		if !existing.IsExpired(passedAt) {
			// Valid credential already on file; repeat passes are a no-op.
			s.logger.Debug().Uint("guide_id", guideID).Uint("module_id", moduleID).Msg("certification already exists, skipping")
			return nil
		}

		existing.IssuedDate = passedAt
		existing.ExpiryDate = passedAt.AddDate(1, 0, 0)
		if err := tx.Certifications().Renew(ctx, &existing); err != nil {
			return err
		}

		s.logger.Info().Uint("guide_id", guideID).Uint("module_id", moduleID).Msg("expired certification renewed")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	cert := models.Certification{
		GuideID:    guideID,
		ModuleID:   moduleID,
		IssuedDate: passedAt,
		ExpiryDate: passedAt.AddDate(1, 0, 0),
	}
	if err := tx.Certifications().Create(ctx, &cert); err != nil {
		// A concurrent pass already issued the credential.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return err
	}

	s.logger.Info().Uint("guide_id", guideID).Uint("module_id", moduleID).Time("expiry", cert.ExpiryDate).Msg("certification issued")

	return nil
}

// ListForUser resolves the caller's guide record before listing. Users
// without one have no certifications by definition.
func (s *certificationService) ListForUser(ctx context.Context, userID uint) ([]dto.CertificationResponse, error) {
	guide, err := s.store.Guides().GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGuideNotFound
		}
		return nil, err
	}

	return s.ListForGuide(ctx, guide.ID)
}

func (s *certificationService) ListForGuide(ctx context.Context, guideID uint) ([]dto.CertificationResponse, error) {
	certs, err := s.store.Certifications().ListByGuide(ctx, guideID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]dto.CertificationResponse, 0, len(certs))
	for _, cert := range certs {
		out = append(out, dto.NewCertificationResponse(cert, now))
	}

	return out, nil
}
