package persistence

import (
	"context"
	"errors"

	"github.com/bazaar/backend/internal/domain/commission"
	"github.com/bazaar/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormCommissionPolicyRepository implements PolicyRepository using GORM
type GormCommissionPolicyRepository struct {
	db *gorm.DB
}

// NewGormCommissionPolicyRepository creates a new GormCommissionPolicyRepository
func NewGormCommissionPolicyRepository(db *gorm.DB) *GormCommissionPolicyRepository {
	return &GormCommissionPolicyRepository{db: db}
}

// FindActive returns the single active policy row. Callers fall back to
// the built-in default policy when none exists yet.
func (r *GormCommissionPolicyRepository) FindActive(ctx context.Context) (*commission.CommissionPolicy, error) {
	var policy commission.CommissionPolicy
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("updated_at DESC").
		First(&policy).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &policy, nil
}

// Save creates or updates the policy. Any previously active rows are
// deactivated in the same transaction so FindActive stays unambiguous.
func (r *GormCommissionPolicyRepository) Save(ctx context.Context, policy *commission.CommissionPolicy) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if policy.Active {
			if err := tx.Model(&commission.CommissionPolicy{}).
				Where("active = ? AND id <> ?", true, policy.ID).
				Update("active", false).Error; err != nil {
				return err
			}
		}
		return tx.Save(policy).Error
	})
}

// Ensure GormCommissionPolicyRepository implements PolicyRepository
var _ commission.PolicyRepository = (*GormCommissionPolicyRepository)(nil)
