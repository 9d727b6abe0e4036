package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles
const (
	RoleUser    = "user"
	RolePremium = "premium"
	RoleAdmin   = "admin"
)

// Subscription tiers
const (
	SubscriptionFree       = "free"
	SubscriptionPremium    = "premium"
	SubscriptionEnterprise = "enterprise"
)

// Preferences holds per-user map settings
type Preferences struct {
	Theme         string `json:"theme"`
	VoiceGuidance bool   `json:"voice_guidance"`
	OfflineMode   bool   `json:"offline_mode"`
}

// DefaultPreferences returns the settings applied at registration
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:         "light",
		VoiceGuidance: true,
		OfflineMode:   false,
	}
}

// User represents an account in the system
type User struct {
	ID                 uuid.UUID  `json:"id" db:"id"`
	Email              string     `json:"email" db:"email"`
	PasswordHash       string     `json:"-" db:"password_hash"`
	Name               string     `json:"name" db:"name"`
	Role               string     `json:"role" db:"role"`
	Preferences        JSONB      `json:"preferences" db:"preferences"`
	Subscription       string     `json:"subscription" db:"subscription"`
	SubscriptionExpiry NullTime   `json:"subscription_expiry,omitempty" db:"subscription_expiry"`
	APIKey             NullString `json:"-" db:"api_key"`
	LastLogin          NullTime   `json:"last_login,omitempty" db:"last_login"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
}

// HasActiveSubscription reports whether the user's paid tier is current.
// The free tier is always active.
func (u *User) HasActiveSubscription() bool {
	if u.Subscription == SubscriptionFree {
		return true
	}
	return u.SubscriptionExpiry.Valid && u.SubscriptionExpiry.Time.After(time.Now())
}

// Features describes what a subscription tier unlocks
type Features struct {
	MaxSavedRoutes  int  `json:"max_saved_routes"` // -1 means unlimited
	OfflineMode     bool `json:"offline_mode"`
	VoiceGuidance   bool `json:"voice_guidance"`
	TrafficUpdates  bool `json:"traffic_updates"`
	MultiStopRoutes bool `json:"multi_stop_routes"`
	Analytics       bool `json:"analytics"`
	APIAccess       bool `json:"api_access"`
}

// GetFeatures returns the feature set for the user's subscription tier
func (u *User) GetFeatures() Features {
	switch u.Subscription {
	case SubscriptionPremium:
		return Features{
			MaxSavedRoutes:  50,
			OfflineMode:     true,
			VoiceGuidance:   true,
			TrafficUpdates:  true,
			MultiStopRoutes: true,
		}
	case SubscriptionEnterprise:
		return Features{
			MaxSavedRoutes:  -1,
			OfflineMode:     true,
			VoiceGuidance:   true,
			TrafficUpdates:  true,
			MultiStopRoutes: true,
			Analytics:       true,
			APIAccess:       true,
		}
	default:
		return Features{
			MaxSavedRoutes: 5,
			VoiceGuidance:  true,
		}
	}
}
