package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/semenggoh/parkguide-api/internal/models"
)

// CertificationRepository defines data operations for certifications.
type CertificationRepository interface {
	GetForGuideModule(ctx context.Context, guideID, moduleID uint) (models.Certification, error)
	Create(ctx context.Context, cert *models.Certification) error
	Renew(ctx context.Context, cert *models.Certification) error
	ListByGuide(ctx context.Context, guideID uint) ([]models.Certification, error)
}

type certificationRepository struct {
	db *gorm.DB
}

// NewCertificationRepository instantiates the repository.
func NewCertificationRepository(db *gorm.DB) CertificationRepository {
	return &certificationRepository{db: db}
}

func (r *certificationRepository) GetForGuideModule(ctx context.Context, guideID, moduleID uint) (models.Certification, error) {
	var cert models.Certification
	if err := r.db.WithContext(ctx).
		Where("guide_id = ?", guideID).
		Where("module_id = ?", moduleID).
		First(&cert).Error; err != nil {
		return models.Certification{}, err
	}

	return cert, nil
}

func (r *certificationRepository) Create(ctx context.Context, cert *models.Certification) error {
	return r.db.WithContext(ctx).Create(cert).Error
}

func (r *certificationRepository) Renew(ctx context.Context, cert *models.Certification) error {
	return r.db.WithContext(ctx).Model(cert).
		Select("issued_date", "expiry_date").
		Updates(cert).Error
}

func (r *certificationRepository) ListByGuide(ctx context.Context, guideID uint) ([]models.Certification, error) {
	var certs []models.Certification
	if err := r.db.WithContext(ctx).
		Preload("Module").
		Where("guide_id = ?", guideID).
		Order("issued_date DESC").
		Find(&certs).Error; err != nil {
		return nil, err
	}

	return certs, nil
}
