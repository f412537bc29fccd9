package persistence

import (
	"time"
)

// WaypointModel represents the waypoints table
type WaypointModel struct {
	WaypointSymbol string    `gorm:"column:waypoint_symbol;primaryKey"`
	SystemSymbol   string    `gorm:"column:system_symbol;not null;index"`
	Type           string    `gorm:"column:type;not null"`
	X              int       `gorm:"column:x;not null"`
	Y              int       `gorm:"column:y;not null"`
	Traits         string    `gorm:"column:traits;type:text"`   // JSON array as text
	Orbitals       string    `gorm:"column:orbitals;type:text"` // JSON array as text
	Faction        string    `gorm:"column:faction"`
	ChartedBy      string    `gorm:"column:charted_by"`
	Mapped         string    `gorm:"column:mapped;not null;default:'UN_MAPPED'"`
	SyncedAt       time.Time `gorm:"column:synced_at"`
}

func (WaypointModel) TableName() string {
	return "waypoints"
}

// SystemModel represents the systems table; mapped plus claimed_by form the claim
type SystemModel struct {
	SystemSymbol string     `gorm:"column:system_symbol;primaryKey"`
	SectorSymbol string     `gorm:"column:sector_symbol"`
	Type         string     `gorm:"column:type"`
	X            int        `gorm:"column:x"`
	Y            int        `gorm:"column:y"`
	Mapped       string     `gorm:"column:mapped;not null;default:'UN_MAPPED';index"`
	ClaimedBy    string     `gorm:"column:claimed_by;index"`
	ClaimedAt    *time.Time `gorm:"column:claimed_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
}

func (SystemModel) TableName() string {
	return "systems"
}

// SystemMappingModel is the append-only history of claim transitions
type SystemMappingModel struct {
	ID           string    `gorm:"column:id;primaryKey"`
	SystemSymbol string    `gorm:"column:system_symbol;not null;index"`
	ShipSymbol   string    `gorm:"column:ship_symbol;not null;index"`
	Mapped       string    `gorm:"column:mapped;not null"`
	RecordedAt   time.Time `gorm:"column:recorded_at;not null"`
}

func (SystemMappingModel) TableName() string {
	return "system_mappings"
}

// SurveyModel represents the surveys table
type SurveyModel struct {
	Signature      string    `gorm:"column:signature;primaryKey"`
	WaypointSymbol string    `gorm:"column:waypoint_symbol;not null;index"`
	Deposits       string    `gorm:"column:deposits;type:text"` // JSON array as text
	Expiration     time.Time `gorm:"column:expiration;not null;index"`
	Size           string    `gorm:"column:size;not null"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

func (SurveyModel) TableName() string {
	return "surveys"
}

// ChartModel represents the charts table
type ChartModel struct {
	WaypointSymbol string    `gorm:"column:waypoint_symbol;primaryKey"`
	SubmittedBy    string    `gorm:"column:submitted_by"`
	SubmittedOn    time.Time `gorm:"column:submitted_on"`
}

func (ChartModel) TableName() string {
	return "charts"
}

// AllModels lists every model for auto-migration
func AllModels() []interface{} {
	return []interface{}{
		&WaypointModel{},
		&SystemModel{},
		&SystemMappingModel{},
		&SurveyModel{},
		&ChartModel{},
	}
}
