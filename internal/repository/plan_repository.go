package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/deyby01/nexus-pm-v2/internal/models"
)

// ErrPlanInUse is returned when deleting a plan that live subscriptions
// still reference.
var ErrPlanInUse = errors.New("plan repository: plan has live subscriptions")

// GormPlanRepository is a GORM implementation of PlanRepository
type GormPlanRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a new PlanRepository
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &GormPlanRepository{db: db}
}

func (r *GormPlanRepository) WithTx(tx *gorm.DB) PlanRepository {
	return &GormPlanRepository{db: tx}
}

func (r *GormPlanRepository) Create(plan *models.SubscriptionPlan) error {
	return r.db.Create(plan).Error
}

func (r *GormPlanRepository) FindByType(planType models.PlanType) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	if err := r.db.Where("plan_type = ?", planType).First(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *GormPlanRepository) FindByID(id uuid.UUID) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	if err := r.db.First(&plan, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *GormPlanRepository) CountLiveSubscriptions(planID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Subscription{}).
		Where("plan_id = ? AND status IN ?", planID,
			[]models.SubscriptionStatus{models.SubscriptionActive, models.SubscriptionTrialing}).
		Count(&count).Error
	return count, err
}

// Delete removes a plan unless live subscriptions still reference it.
func (r *GormPlanRepository) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		live, err := r.WithTx(tx).CountLiveSubscriptions(id)
		if err != nil {
			return err
		}
		if live > 0 {
			return ErrPlanInUse
		}
		return tx.Delete(&models.SubscriptionPlan{}, "id = ?", id).Error
	})
}
