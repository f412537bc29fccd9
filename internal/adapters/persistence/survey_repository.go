package persistence

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/spacetraders-automation/internal/domain/mining"
)

// GormSurveyRepository implements mining.SurveyRepository using GORM
type GormSurveyRepository struct {
	db *gorm.DB
}

func NewGormSurveyRepository(db *gorm.DB) *GormSurveyRepository {
	return &GormSurveyRepository{db: db}
}

// Save upserts a survey by signature
func (r *GormSurveyRepository) Save(ctx context.Context, survey *mining.Survey) error {
	deposits, err := encodeStringList(survey.Deposits())
	if err != nil {
		return fmt.Errorf("failed to marshal deposits: %w", err)
	}

	model := SurveyModel{
		Signature:      survey.Signature(),
		WaypointSymbol: survey.WaypointSymbol(),
		Deposits:       deposits,
		Expiration:     survey.Expiration().UTC(),
		Size:           string(survey.Size()),
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&model)
	if result.Error != nil {
		return fmt.Errorf("failed to save survey %s: %w", survey.Signature(), result.Error)
	}
	return nil
}

// FindByWaypoint lists surveys for a waypoint; an empty size matches every size
func (r *GormSurveyRepository) FindByWaypoint(ctx context.Context, waypointSymbol string, size mining.SurveySize) ([]*mining.Survey, error) {
	query := r.db.WithContext(ctx).Where("waypoint_symbol = ?", waypointSymbol)
	if size != "" {
		query = query.Where("size = ?", string(size))
	}

	var models []SurveyModel
	if err := query.Order("expiration DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list surveys: %w", err)
	}
	return r.toDomain(models)
}

// FindUsable picks the largest non-expired survey, latest expiration first among equals
func (r *GormSurveyRepository) FindUsable(ctx context.Context, waypointSymbol string, size mining.SurveySize, now time.Time) (*mining.Survey, error) {
	query := r.db.WithContext(ctx).
		Where("waypoint_symbol = ? AND expiration > ?", waypointSymbol, now.UTC())
	if size != "" {
		query = query.Where("size = ?", string(size))
	}

	var models []SurveyModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find usable survey: %w", err)
	}

	surveys, err := r.toDomain(models)
	if err != nil {
		return nil, err
	}
	if len(surveys) == 0 {
		return nil, nil
	}

	sort.SliceStable(surveys, func(i, j int) bool {
		if surveys[i].Size().Rank() != surveys[j].Size().Rank() {
			return surveys[i].Size().Rank() > surveys[j].Size().Rank()
		}
		return surveys[i].Expiration().After(surveys[j].Expiration())
	})

	for _, s := range surveys {
		if !s.IsExpired(now) {
			return s, nil
		}
	}
	return nil, nil
}

func (r *GormSurveyRepository) Delete(ctx context.Context, signature string) error {
	result := r.db.WithContext(ctx).Where("signature = ?", signature).Delete(&SurveyModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete survey %s: %w", signature, result.Error)
	}
	return nil
}

// DeleteExpired drops the waypoint's surveys whose expiration is not after now
func (r *GormSurveyRepository) DeleteExpired(ctx context.Context, waypointSymbol string, now time.Time) (int, error) {
	result := r.db.WithContext(ctx).
		Where("waypoint_symbol = ? AND expiration <= ?", waypointSymbol, now.UTC()).
		Delete(&SurveyModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired surveys: %w", result.Error)
	}
	return int(result.RowsAffected), nil
}

func (r *GormSurveyRepository) toDomain(models []SurveyModel) ([]*mining.Survey, error) {
	surveys := make([]*mining.Survey, 0, len(models))
	for _, m := range models {
		survey, err := mining.NewSurvey(
			m.Signature,
			m.WaypointSymbol,
			decodeStringList(m.Deposits),
			m.Expiration,
			mining.SurveySize(m.Size),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to convert survey %s: %w", m.Signature, err)
		}
		surveys = append(surveys, survey)
	}
	return surveys, nil
}
