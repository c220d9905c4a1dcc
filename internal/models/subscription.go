package models

import "time"

// Subscription tiers in ascending order of entitlement.
const (
	TierFree       = "free"
	TierStarter    = "starter"
	TierAgency     = "agency"
	TierEnterprise = "enterprise"
)

// Subscription stores the billing tier resolved for a user. Stripe webhooks
// maintain these rows out of band; this service only reads them.
type Subscription struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Tier      string    `gorm:"size:32;not null;default:free" json:"tier"`
	Status    string    `gorm:"size:32;not null;default:active" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var tierRank = map[string]int{
	TierFree:       0,
	TierStarter:    1,
	TierAgency:     2,
	TierEnterprise: 3,
}

// TierAtLeast reports whether tier meets or exceeds the required tier.
// Unknown tiers rank below free.
func TierAtLeast(tier, required string) bool {
	have, ok := tierRank[tier]
	if !ok {
		have = -1
	}
	want, ok := tierRank[required]
	if !ok {
		want = 0
	}
	return have >= want
}
