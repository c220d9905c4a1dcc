package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/rankpilot/rankpilot-api/internal/models"
)

// SubscriptionRepository reads billing tiers maintained by the billing pipeline.
type SubscriptionRepository interface {
	GetByUserID(ctx context.Context, userID uint) (models.Subscription, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository constructs the subscription repository.
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) GetByUserID(ctx context.Context, userID uint) (models.Subscription, error) {
	var subscription models.Subscription
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&subscription).Error
	return subscription, err
}
