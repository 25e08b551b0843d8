package model

import "time"

// Venue is a registered liquidity source the router is allowed to split
// orders across. Venues are never deleted; they are disabled via flags.
type Venue struct {
	ID string `gorm:"primaryKey;size:64" json:"id"`

	// Seq preserves first-registration order for enumeration. Re-registering
	// the same id updates config but keeps the original Seq.
	Seq uint `gorm:"autoIncrement;uniqueIndex" json:"seq"`

	Router       string `gorm:"size:42;not null" json:"router"`
	Factory      string `gorm:"size:42" json:"factory"`
	SwapSelector string `gorm:"size:10" json:"swap_selector"`

	MinLiquidity *BigInt `gorm:"type:string" json:"min_liquidity"`
	FeeBps       int64   `json:"fee_bps"`
	Priority     int     `json:"priority"`

	IsActive        bool       `gorm:"not null;default:true" json:"is_active"`
	IsHealthy       bool       `gorm:"not null;default:true" json:"is_healthy"`
	StatusReason    string     `gorm:"size:255" json:"status_reason,omitempty"`
	LastHealthCheck *time.Time `json:"last_health_check,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName controls the exact table name for venues.
func (Venue) TableName() string {
	return "venues"
}

// Usable reports whether the orchestrator may route through this venue.
func (v *Venue) Usable() bool {
	return v != nil && v.IsActive && v.IsHealthy
}
