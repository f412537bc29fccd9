package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/spacetraders-automation/internal/domain/system"
)

// GormChartRepository implements system.ChartRepository using GORM
type GormChartRepository struct {
	db *gorm.DB
}

func NewGormChartRepository(db *gorm.DB) *GormChartRepository {
	return &GormChartRepository{db: db}
}

// Save records a chart; charting twice keeps the first submission
func (r *GormChartRepository) Save(ctx context.Context, chart *system.Chart) error {
	model := ChartModel{
		WaypointSymbol: chart.WaypointSymbol,
		SubmittedBy:    chart.SubmittedBy,
		SubmittedOn:    chart.SubmittedOn.UTC(),
	}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&model)
	if result.Error != nil {
		return fmt.Errorf("failed to save chart for %s: %w", chart.WaypointSymbol, result.Error)
	}
	return nil
}

// FindByWaypoint returns nil when the waypoint has no recorded chart
func (r *GormChartRepository) FindByWaypoint(ctx context.Context, waypointSymbol string) (*system.Chart, error) {
	var model ChartModel
	err := r.db.WithContext(ctx).Where("waypoint_symbol = ?", waypointSymbol).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find chart: %w", err)
	}
	return &system.Chart{
		WaypointSymbol: model.WaypointSymbol,
		SubmittedBy:    model.SubmittedBy,
		SubmittedOn:    model.SubmittedOn,
	}, nil
}
