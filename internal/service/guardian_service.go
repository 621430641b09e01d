package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/sims-api/internal/dto"
	"github.com/noah-isme/sims-api/internal/models"
	apperrors "github.com/noah-isme/sims-api/pkg/errors"
	"github.com/noah-isme/sims-api/pkg/validation"
)

// GuardianService manages guardian accounts.
type GuardianService struct {
	*Core[models.Guardian, *models.Guardian]
}

// NewGuardianService constructs the guardian service.
func NewGuardianService(repos *Repos, export *ExportService, logger *zap.Logger) *GuardianService {
	refs := func(g *models.Guardian) map[string]string {
		return map[string]string{"email": g.Email, "phone": g.Phone}
	}
	return &GuardianService{Core: NewCore(repos.Guardians, repos.Deps, export, logger, refs)}
}

// Create validates, hashes the password and persists a new guardian.
func (s *GuardianService) Create(ctx context.Context, req dto.CreateGuardianRequest) (*models.Guardian, error) {
	guardian := &models.Guardian{}
	if err := applyGuardian(guardian, req.Name, req.Email, req.Phone, req.Address, req.Gender); err != nil {
		return nil, err
	}
	password, err := validation.Password("password", req.Password)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindInternal, apperrors.ErrInternal.Status,
			apperrors.ErrInternal.Message, "hash guardian password")
	}
	guardian.PasswordHash = string(hash)
	return s.insert(ctx, guardian, uuid.NewString())
}

// Update replaces the mutable fields of an active guardian.
func (s *GuardianService) Update(ctx context.Context, id string, req dto.UpdateGuardianRequest) (*models.Guardian, error) {
	guardian, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyGuardian(guardian, req.Name, req.Email, req.Phone, req.Address, req.Gender); err != nil {
		return nil, err
	}
	return s.write(ctx, guardian)
}

func applyGuardian(guardian *models.Guardian, rawName, rawEmail, rawPhone, rawAddress, rawGender string) error {
	name, err := validation.Name("name", rawName)
	if err != nil {
		return err
	}
	email, err := validation.Email("email", rawEmail)
	if err != nil {
		return err
	}
	phone, err := validation.Phone("phone", rawPhone)
	if err != nil {
		return err
	}
	address, err := validation.Address("address", rawAddress)
	if err != nil {
		return err
	}
	gender := strings.ToUpper(strings.TrimSpace(rawGender))
	if gender != "MALE" && gender != "FEMALE" {
		return apperrors.Validation(apperrors.KindInvalidCode, "gender", rawGender, "gender must be MALE or FEMALE")
	}
	guardian.Name = name
	guardian.Email = email
	guardian.Phone = phone
	guardian.Address = address
	guardian.Gender = gender
	return nil
}
