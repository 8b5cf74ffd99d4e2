package repository

import (
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TeamScore struct {
	Id        int      `gorm:"primaryKey"`
	Score     int      `gorm:"not null;default:0"`
	TasksWon  int      `gorm:"not null;default:0"`
	SportsWon int      `gorm:"not null;default:0"`
	TeamId    int      `gorm:"not null;uniqueIndex:idx_team_edition_score"`
	EditionId int      `gorm:"not null;uniqueIndex:idx_team_edition_score"`
	Team      *Team    `gorm:"foreignKey:TeamId;constraint:OnDelete:CASCADE"`
	Edition   *Edition `gorm:"foreignKey:EditionId;constraint:OnDelete:CASCADE"`
}

type EventScore struct {
	Id      int    `gorm:"primaryKey"`
	Score   int    `gorm:"not null;default:0"`
	TeamId  int    `gorm:"not null;uniqueIndex:idx_team_event_score"`
	EventId int    `gorm:"not null;uniqueIndex:idx_team_event_score"`
	Team    *Team  `gorm:"foreignKey:TeamId;constraint:OnDelete:CASCADE"`
	Event   *Event `gorm:"foreignKey:EventId;constraint:OnDelete:CASCADE"`
}

type ScoreRepository struct {
	DB *gorm.DB
}

func NewScoreRepository(db *gorm.DB) *ScoreRepository {
	return &ScoreRepository{DB: db}
}

func (r *ScoreRepository) GetTeamScoresForTeam(teamId int) ([]*TeamScore, error) {
	scores := make([]*TeamScore, 0)
	result := r.DB.Preload("Edition").Find(&scores, "team_id = ?", teamId)
	if result.Error != nil {
		return nil, result.Error
	}
	return scores, nil
}

func (r *ScoreRepository) GetTeamScoresForEdition(editionId int) ([]*TeamScore, error) {
	timer := prometheus.NewTimer(queryDuration.WithLabelValues("GetTeamScoresForEdition"))
	defer timer.ObserveDuration()

	scores := make([]*TeamScore, 0)
	result := r.DB.Preload("Team").Order("score DESC").Find(&scores, "edition_id = ?", editionId)
	if result.Error != nil {
		return nil, result.Error
	}
	return scores, nil
}

func (r *ScoreRepository) GetEventScoresForEvent(eventId int) ([]*EventScore, error) {
	scores := make([]*EventScore, 0)
	result := r.DB.Preload("Team").Order("score DESC").Find(&scores, "event_id = ?", eventId)
	if result.Error != nil {
		return nil, result.Error
	}
	return scores, nil
}

func (r *ScoreRepository) UpsertTeamScore(score *TeamScore) (*TeamScore, error) {
	result := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "team_id"}, {Name: "edition_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "tasks_won", "sports_won"}),
	}).Create(score)
	if result.Error != nil {
		return nil, result.Error
	}
	return score, nil
}

func (r *ScoreRepository) UpsertEventScore(score *EventScore) (*EventScore, error) {
	result := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "team_id"}, {Name: "event_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score"}),
	}).Create(score)
	if result.Error != nil {
		return nil, result.Error
	}
	return score, nil
}

func (r *ScoreRepository) CountTeamScores(teamId int) (int64, error) {
	var count int64
	result := r.DB.Model(&TeamScore{}).Where("team_id = ?", teamId).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}
