package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/buildtrack/buildtrack/internal/domain/repositories"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

const vendorEntity = "vendor"

// VendorService manages the company-wide vendor directory. Everyone reads it; owners and PMs edit it.
type VendorService struct {
	repo     repositories.VendorRepository
	recorder *Recorder
}

func NewVendorService(repo repositories.VendorRepository, recorder *Recorder) *VendorService {
	return &VendorService{repo: repo, recorder: recorder}
}

func validateVendor(v *models.Vendor) error {
	if strings.TrimSpace(v.Name) == "" {
		return validationError("name is required")
	}
	if v.Email != "" {
		if _, err := mail.ParseAddress(v.Email); err != nil {
			return validationError("invalid email %q", v.Email)
		}
	}
	if v.Rating < 0 || v.Rating > 5 {
		return validationError("rating must be between 0 and 5")
	}
	if v.Status == "" {
		v.Status = models.VendorActive
	}
	if v.Status != models.VendorActive && v.Status != models.VendorInactive {
		return validationError("invalid vendor status %q", v.Status)
	}
	return nil
}

func (s *VendorService) CreateVendor(ctx context.Context, actor Actor, vendor *models.Vendor) (*models.Vendor, error) {
	if !isManagerRole(actor.Role) {
		return nil, ErrForbidden
	}
	if err := validateVendor(vendor); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, vendor); err != nil {
		return nil, fmt.Errorf("failed to create vendor: %w", err)
	}

	s.recorder.Record(ctx, actor, Change{
		Action:      models.AuditCreate,
		EntityType:  vendorEntity,
		EntityID:    vendor.ID,
		Description: fmt.Sprintf("Added vendor %q", vendor.Name),
		After:       vendor,
	})
	return vendor, nil
}

func (s *VendorService) GetVendor(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	vendor, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "get vendor")
	}
	return vendor, nil
}

func (s *VendorService) ListVendors(ctx context.Context, filters repositories.VendorFilters) ([]models.Vendor, int64, error) {
	vendors, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list vendors: %w", err)
	}
	return vendors, total, nil
}

func (s *VendorService) UpdateVendor(ctx context.Context, actor Actor, id uuid.UUID, patch Patch[models.Vendor]) (*models.Vendor, error) {
	if !isManagerRole(actor.Role) {
		return nil, ErrForbidden
	}
	vendor, err := s.GetVendor(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *vendor

	patch.Apply(vendor)
	if err := validateVendor(vendor); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, vendor); err != nil {
		return nil, fmt.Errorf("failed to update vendor: %w", err)
	}

	s.recorder.Record(ctx, actor, Change{
		Action:      models.AuditUpdate,
		EntityType:  vendorEntity,
		EntityID:    vendor.ID,
		Description: fmt.Sprintf("Updated vendor %q", vendor.Name),
		Before:      before,
		After:       vendor,
	})
	return vendor, nil
}

func (s *VendorService) DeleteVendor(ctx context.Context, actor Actor, id uuid.UUID) error {
	if !isManagerRole(actor.Role) {
		return ErrForbidden
	}
	vendor, err := s.GetVendor(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return translate(err, "delete vendor")
	}

	s.recorder.Record(ctx, actor, Change{
		Action:      models.AuditDelete,
		EntityType:  vendorEntity,
		EntityID:    vendor.ID,
		Description: fmt.Sprintf("Removed vendor %q", vendor.Name),
		Before:      vendor,
	})
	return nil
}
