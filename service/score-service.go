package service

import (
	"cedupscore/app_error"
	"cedupscore/repository"

	"gorm.io/gorm"
)

type ScoreService struct {
	scoreRepository   *repository.ScoreRepository
	editionRepository *repository.EditionRepository
	eventRepository   *repository.EventRepository
	teamRepository    *repository.TeamRepository
}

func NewScoreService(db *gorm.DB) *ScoreService {
	return &ScoreService{
		scoreRepository:   repository.NewScoreRepository(db),
		editionRepository: repository.NewEditionRepository(db),
		eventRepository:   repository.NewEventRepository(db),
		teamRepository:    repository.NewTeamRepository(db),
	}
}

func (s *ScoreService) GetScoreboard(editionId int) ([]*repository.TeamScore, error) {
	if _, err := s.editionRepository.GetEditionById(editionId); err != nil {
		return nil, notFoundOr(err, "edition")
	}
	return s.scoreRepository.GetTeamScoresForEdition(editionId)
}

func (s *ScoreService) GetEventScores(eventId int) ([]*repository.EventScore, error) {
	if _, err := s.eventRepository.GetEventById(eventId); err != nil {
		return nil, notFoundOr(err, "event")
	}
	return s.scoreRepository.GetEventScoresForEvent(eventId)
}

// UpsertTeamScore records a team's aggregate for an edition in progress.
func (s *ScoreService) UpsertTeamScore(editionId int, teamId int, score int, tasksWon int, sportsWon int) (*repository.TeamScore, error) {
	edition, err := s.editionRepository.GetEditionById(editionId)
	if err != nil {
		return nil, notFoundOr(err, "edition")
	}
	if edition.Status != repository.StatusInProgress {
		return nil, app_error.LifecycleViolation("edition", "scores can only be recorded while the edition is in progress")
	}
	if _, err := s.teamRepository.GetTeamById(teamId); err != nil {
		return nil, notFoundOr(err, "team")
	}
	return s.scoreRepository.UpsertTeamScore(&repository.TeamScore{
		TeamId:    teamId,
		EditionId: editionId,
		Score:     score,
		TasksWon:  tasksWon,
		SportsWon: sportsWon,
	})
}

// UpsertEventScore records a team's result for an event that has started.
func (s *ScoreService) UpsertEventScore(eventId int, teamId int, score int) (*repository.EventScore, error) {
	event, err := s.eventRepository.GetEventById(eventId)
	if err != nil {
		return nil, notFoundOr(err, "event")
	}
	if event.Status == repository.StatusScheduled || event.Status == repository.StatusCanceled {
		return nil, app_error.LifecycleViolation("event", "scores can only be recorded once the event has started")
	}
	if _, err := s.teamRepository.GetTeamById(teamId); err != nil {
		return nil, notFoundOr(err, "team")
	}
	return s.scoreRepository.UpsertEventScore(&repository.EventScore{
		TeamId:  teamId,
		EventId: eventId,
		Score:   score,
	})
}
