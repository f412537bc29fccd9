package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/spacetraders-automation/internal/domain/shared"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/system"
)

// GormWaypointRepository stores waypoint records and their individual mapped state
type GormWaypointRepository struct {
	db *gorm.DB
}

// NewGormWaypointRepository creates a new GORM waypoint repository
func NewGormWaypointRepository(db *gorm.DB) *GormWaypointRepository {
	return &GormWaypointRepository{db: db}
}

// FindBySymbol retrieves a waypoint by symbol
func (r *GormWaypointRepository) FindBySymbol(ctx context.Context, symbol string) (*shared.Waypoint, error) {
	var model WaypointModel
	result := r.db.WithContext(ctx).Where("waypoint_symbol = ?", symbol).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("waypoint not found: %s", symbol)
		}
		return nil, fmt.Errorf("failed to find waypoint: %w", result.Error)
	}

	return r.modelToWaypoint(&model)
}

// ListBySystem retrieves all waypoints in a system
func (r *GormWaypointRepository) ListBySystem(ctx context.Context, systemSymbol string) ([]*shared.Waypoint, error) {
	var models []WaypointModel
	result := r.db.WithContext(ctx).
		Where("system_symbol = ?", systemSymbol).
		Order("waypoint_symbol").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list waypoints: %w", result.Error)
	}

	waypoints := make([]*shared.Waypoint, 0, len(models))
	for i := range models {
		waypoint, err := r.modelToWaypoint(&models[i])
		if err != nil {
			return nil, fmt.Errorf("failed to convert waypoint %s: %w", models[i].WaypointSymbol, err)
		}
		waypoints = append(waypoints, waypoint)
	}

	return waypoints, nil
}

// SaveAll upserts waypoints. The mapped column is left untouched on conflict so
// refreshing a system never resets exploration progress.
func (r *GormWaypointRepository) SaveAll(ctx context.Context, waypoints []*shared.Waypoint) error {
	if len(waypoints) == 0 {
		return nil
	}

	models := make([]*WaypointModel, 0, len(waypoints))
	for _, wp := range waypoints {
		model, err := r.waypointToModel(wp)
		if err != nil {
			return fmt.Errorf("failed to convert waypoint to model: %w", err)
		}
		models = append(models, model)
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "waypoint_symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"system_symbol", "type", "x", "y", "traits", "orbitals", "faction", "charted_by", "synced_at",
		}),
	}).Create(&models)
	if result.Error != nil {
		return fmt.Errorf("failed to save waypoints: %w", result.Error)
	}

	return nil
}

// MappedState returns the waypoint's state, UN_MAPPED when unknown
func (r *GormWaypointRepository) MappedState(ctx context.Context, symbol string) (system.MappedState, error) {
	var model WaypointModel
	result := r.db.WithContext(ctx).Select("mapped").Where("waypoint_symbol = ?", symbol).Limit(1).Find(&model)
	if result.Error != nil {
		return "", fmt.Errorf("failed to read waypoint state: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return system.MappedStateUnmapped, nil
	}
	return system.ParseMappedState(model.Mapped)
}

// MarkMapped sets a waypoint to MAPPED, creating a stub row when it was never synced
func (r *GormWaypointRepository) MarkMapped(ctx context.Context, symbol string) error {
	model := WaypointModel{
		WaypointSymbol: symbol,
		SystemSymbol:   shared.ExtractSystemSymbol(symbol),
		Mapped:         string(system.MappedStateMapped),
	}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "waypoint_symbol"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"mapped": string(system.MappedStateMapped)}),
	}).Create(&model)
	if result.Error != nil {
		return fmt.Errorf("failed to mark waypoint %s mapped: %w", symbol, result.Error)
	}
	return nil
}

// ListUnmapped returns symbols of the system's waypoints not yet MAPPED
func (r *GormWaypointRepository) ListUnmapped(ctx context.Context, systemSymbol string) ([]string, error) {
	var symbols []string
	result := r.db.WithContext(ctx).
		Model(&WaypointModel{}).
		Where("system_symbol = ? AND mapped <> ?", systemSymbol, string(system.MappedStateMapped)).
		Order("waypoint_symbol").
		Pluck("waypoint_symbol", &symbols)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list unmapped waypoints: %w", result.Error)
	}
	return symbols, nil
}

// modelToWaypoint converts database model to domain entity
func (r *GormWaypointRepository) modelToWaypoint(model *WaypointModel) (*shared.Waypoint, error) {
	waypoint, err := shared.NewWaypoint(model.WaypointSymbol, model.Type, model.X, model.Y)
	if err != nil {
		return nil, err
	}

	waypoint.SystemSymbol = model.SystemSymbol
	waypoint.Faction = model.Faction
	waypoint.ChartedBy = model.ChartedBy
	waypoint.Traits = decodeStringList(model.Traits)
	waypoint.Orbitals = decodeStringList(model.Orbitals)

	return waypoint, nil
}

// waypointToModel converts domain entity to database model
func (r *GormWaypointRepository) waypointToModel(waypoint *shared.Waypoint) (*WaypointModel, error) {
	traitsJSON, err := encodeStringList(waypoint.Traits)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal traits: %w", err)
	}
	orbitalsJSON, err := encodeStringList(waypoint.Orbitals)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal orbitals: %w", err)
	}

	systemSymbol := waypoint.SystemSymbol
	if systemSymbol == "" {
		systemSymbol = shared.ExtractSystemSymbol(waypoint.Symbol)
	}

	return &WaypointModel{
		WaypointSymbol: waypoint.Symbol,
		SystemSymbol:   systemSymbol,
		Type:           waypoint.Type,
		X:              waypoint.X,
		Y:              waypoint.Y,
		Traits:         traitsJSON,
		Orbitals:       orbitalsJSON,
		Faction:        waypoint.Faction,
		ChartedBy:      waypoint.ChartedBy,
		Mapped:         string(system.MappedStateUnmapped),
		SyncedAt:       time.Now().UTC(),
	}, nil
}

func encodeStringList(values []string) (string, error) {
	if len(values) == 0 {
		return "", nil
	}
	bytes, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// decodeStringList tolerates empty or malformed columns by returning an empty list
func decodeStringList(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return []string{}
	}
	return values
}
