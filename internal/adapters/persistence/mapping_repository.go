package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/spacetraders-automation/internal/domain/shared"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/system"
)

// GormMappingRepository implements system.MappingRepository.
//
// Claims are single conditional UPDATEs so two ships racing for the same
// system cannot both observe RowsAffected == 1.
type GormMappingRepository struct {
	db        *gorm.DB
	waypoints *GormWaypointRepository
	clock     shared.Clock
}

// NewGormMappingRepository creates a mapping repository. A nil clock means wall time.
func NewGormMappingRepository(db *gorm.DB, clock shared.Clock) *GormMappingRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormMappingRepository{
		db:        db,
		waypoints: NewGormWaypointRepository(db),
		clock:     clock,
	}
}

// SystemMappedState returns the persisted state, UN_MAPPED when never seen
func (r *GormMappingRepository) SystemMappedState(ctx context.Context, systemSymbol string) (system.MappedState, error) {
	var model SystemModel
	result := r.db.WithContext(ctx).Where("system_symbol = ?", systemSymbol).Limit(1).Find(&model)
	if result.Error != nil {
		return "", fmt.Errorf("failed to read system state: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return system.MappedStateUnmapped, nil
	}
	return system.ParseMappedState(model.Mapped)
}

func (r *GormMappingRepository) WaypointMappedState(ctx context.Context, waypointSymbol string) (system.MappedState, error) {
	return r.waypoints.MappedState(ctx, waypointSymbol)
}

// ClaimSystem moves a system from UN_MAPPED to INCOMPLETE for the ship
func (r *GormMappingRepository) ClaimSystem(ctx context.Context, systemSymbol, shipSymbol string) (bool, error) {
	now := r.clock.Now().UTC()
	claimed := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := SystemModel{
			SystemSymbol: systemSymbol,
			Mapped:       string(system.MappedStateUnmapped),
			UpdatedAt:    now,
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return fmt.Errorf("failed to seed system row: %w", err)
		}

		result := tx.Model(&SystemModel{}).
			Where("system_symbol = ? AND mapped = ?", systemSymbol, string(system.MappedStateUnmapped)).
			Updates(map[string]interface{}{
				"mapped":     string(system.MappedStateIncomplete),
				"claimed_by": shipSymbol,
				"claimed_at": now,
				"updated_at": now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to claim system: %w", result.Error)
		}
		if result.RowsAffected != 1 {
			return nil
		}

		claimed = true
		return r.recordTransition(tx, systemSymbol, shipSymbol, system.MappedStateIncomplete, now)
	})
	if err != nil {
		return false, err
	}

	return claimed, nil
}

// GetClaim returns the current claim, nil when the system was never claimed
func (r *GormMappingRepository) GetClaim(ctx context.Context, systemSymbol string) (*system.Claim, error) {
	var model SystemModel
	result := r.db.WithContext(ctx).Where("system_symbol = ?", systemSymbol).Limit(1).Find(&model)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to read claim: %w", result.Error)
	}
	if result.RowsAffected == 0 || model.ClaimedBy == "" {
		return nil, nil
	}

	state, err := system.ParseMappedState(model.Mapped)
	if err != nil {
		return nil, err
	}

	claim := &system.Claim{
		SystemSymbol: model.SystemSymbol,
		ShipSymbol:   model.ClaimedBy,
		State:        state,
	}
	if model.ClaimedAt != nil {
		claim.ClaimedAt = *model.ClaimedAt
	}
	return claim, nil
}

// IsClaimant reports whether the ship holds the INCOMPLETE claim
func (r *GormMappingRepository) IsClaimant(ctx context.Context, systemSymbol, shipSymbol string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&SystemModel{}).
		Where("system_symbol = ? AND mapped = ? AND claimed_by = ?",
			systemSymbol, string(system.MappedStateIncomplete), shipSymbol).
		Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("failed to check claimant: %w", result.Error)
	}
	return count == 1, nil
}

// CompleteSystem moves the claimant's system from INCOMPLETE to MAPPED
func (r *GormMappingRepository) CompleteSystem(ctx context.Context, systemSymbol, shipSymbol string) error {
	now := r.clock.Now().UTC()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&SystemModel{}).
			Where("system_symbol = ? AND mapped = ? AND claimed_by = ?",
				systemSymbol, string(system.MappedStateIncomplete), shipSymbol).
			Updates(map[string]interface{}{
				"mapped":     string(system.MappedStateMapped),
				"updated_at": now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to complete system: %w", result.Error)
		}
		if result.RowsAffected != 1 {
			return fmt.Errorf("complete %s by %s: %w", systemSymbol, shipSymbol, system.ErrNotClaimant)
		}

		return r.recordTransition(tx, systemSymbol, shipSymbol, system.MappedStateMapped, now)
	})
}

// ReleaseClaim resets an INCOMPLETE system back to UN_MAPPED
func (r *GormMappingRepository) ReleaseClaim(ctx context.Context, systemSymbol string) error {
	now := r.clock.Now().UTC()

	result := r.db.WithContext(ctx).Model(&SystemModel{}).
		Where("system_symbol = ? AND mapped = ?", systemSymbol, string(system.MappedStateIncomplete)).
		Updates(map[string]interface{}{
			"mapped":     string(system.MappedStateUnmapped),
			"claimed_by": "",
			"claimed_at": nil,
			"updated_at": now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to release claim: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("system %s has no open claim", systemSymbol)
	}
	return nil
}

// SaveSystem upserts the descriptive columns of a system without touching its claim
func (r *GormMappingRepository) SaveSystem(ctx context.Context, sys *system.System) error {
	model := SystemModel{
		SystemSymbol: sys.Symbol,
		SectorSymbol: sys.SectorSymbol,
		Type:         sys.Type,
		X:            sys.X,
		Y:            sys.Y,
		Mapped:       string(system.MappedStateUnmapped),
		UpdatedAt:    r.clock.Now().UTC(),
	}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "system_symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{"sector_symbol", "type", "x", "y", "updated_at"}),
	}).Create(&model)
	if result.Error != nil {
		return fmt.Errorf("failed to save system: %w", result.Error)
	}
	return nil
}

func (r *GormMappingRepository) SaveWaypoints(ctx context.Context, waypoints []*shared.Waypoint) error {
	return r.waypoints.SaveAll(ctx, waypoints)
}

func (r *GormMappingRepository) MarkWaypointMapped(ctx context.Context, waypointSymbol string) error {
	return r.waypoints.MarkMapped(ctx, waypointSymbol)
}

func (r *GormMappingRepository) UnmappedWaypoints(ctx context.Context, systemSymbol string) ([]string, error) {
	return r.waypoints.ListUnmapped(ctx, systemSymbol)
}

// History lists the claim transitions recorded for a system, oldest first
func (r *GormMappingRepository) History(ctx context.Context, systemSymbol string) ([]system.Claim, error) {
	var models []SystemMappingModel
	result := r.db.WithContext(ctx).
		Where("system_symbol = ?", systemSymbol).
		Order("recorded_at").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list mapping history: %w", result.Error)
	}

	history := make([]system.Claim, 0, len(models))
	for _, m := range models {
		state, err := system.ParseMappedState(m.Mapped)
		if err != nil {
			return nil, err
		}
		history = append(history, system.Claim{
			SystemSymbol: m.SystemSymbol,
			ShipSymbol:   m.ShipSymbol,
			State:        state,
			ClaimedAt:    m.RecordedAt,
		})
	}
	return history, nil
}

func (r *GormMappingRepository) recordTransition(tx *gorm.DB, systemSymbol, shipSymbol string, state system.MappedState, at time.Time) error {
	entry := SystemMappingModel{
		ID:           uuid.New().String(),
		SystemSymbol: systemSymbol,
		ShipSymbol:   shipSymbol,
		Mapped:       string(state),
		RecordedAt:   at,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to record mapping transition: %w", err)
	}
	return nil
}
