package service

import (
	"cedupscore/app_error"
	"cedupscore/repository"
	"cedupscore/utils"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type TeamService struct {
	teamRepository  *repository.TeamRepository
	scoreRepository *repository.ScoreRepository
}

func NewTeamService(db *gorm.DB) *TeamService {
	return &TeamService{
		teamRepository:  repository.NewTeamRepository(db),
		scoreRepository: repository.NewScoreRepository(db),
	}
}

func (s *TeamService) GetTeamById(teamId int) (*repository.Team, error) {
	team, err := s.teamRepository.GetTeamById(teamId)
	if err != nil {
		return nil, notFoundOr(err, "team")
	}
	return team, nil
}

func (s *TeamService) FindAllTeams() ([]*repository.Team, error) {
	return s.teamRepository.FindAll()
}

func (s *TeamService) FindAllActiveTeams() ([]*repository.Team, error) {
	teams, err := s.teamRepository.FindAll()
	if err != nil {
		return nil, err
	}
	return utils.Filter(teams, func(team *repository.Team) bool { return team.IsActive }), nil
}

// SaveTeam creates a team; name and logo are natural keys.
func (s *TeamService) SaveTeam(team *repository.Team) (*repository.Team, error) {
	if err := s.checkNameAndLogoFree(team.Name, team.LogoUrl, 0); err != nil {
		return nil, err
	}
	team.IsActive = true
	saved, err := s.teamRepository.Save(team)
	if err != nil {
		return nil, duplicateOr(err, "team name or logo is already in use")
	}
	return saved, nil
}

// ReplaceTeam swaps name and logo, keeping the active flag.
func (s *TeamService) ReplaceTeam(teamId int, updated *repository.Team) (*repository.Team, error) {
	team, err := s.GetTeamById(teamId)
	if err != nil {
		return nil, err
	}
	if err := s.checkNameAndLogoFree(updated.Name, updated.LogoUrl, team.Id); err != nil {
		return nil, err
	}
	team.Name = updated.Name
	team.LogoUrl = updated.LogoUrl
	saved, err := s.teamRepository.Save(team)
	if err != nil {
		return nil, duplicateOr(err, "team name or logo is already in use")
	}
	return saved, nil
}

func (s *TeamService) checkNameAndLogoFree(name string, logoUrl string, selfId int) error {
	if existing, err := s.teamRepository.GetTeamByName(name); err == nil {
		if existing.Id != selfId {
			return app_error.Conflict(fmt.Sprintf("the name '%s' is already in use", name))
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if existing, err := s.teamRepository.GetTeamByLogo(logoUrl); err == nil {
		if existing.Id != selfId {
			return app_error.Conflict(fmt.Sprintf("the logo '%s' is already in use", logoUrl))
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

// DeleteTeam refuses to remove a team that holds any score record.
func (s *TeamService) DeleteTeam(teamId int) error {
	team, err := s.GetTeamById(teamId)
	if err != nil {
		return err
	}
	scoreCount, err := s.scoreRepository.CountTeamScores(team.Id)
	if err != nil {
		return err
	}
	if scoreCount > 0 {
		return app_error.Unremovable("team", "team still holds score records")
	}
	return s.teamRepository.Delete(team)
}

// SetTeamActive flips the active flag. Requesting the current state is a
// no-op; deactivation is refused while the team holds a score in an edition
// in progress.
func (s *TeamService) SetTeamActive(teamId int, isActive bool) (*repository.Team, error) {
	team, err := s.GetTeamById(teamId)
	if err != nil {
		return nil, err
	}
	if team.IsActive == isActive {
		return team, nil
	}
	if !isActive {
		scores, err := s.scoreRepository.GetTeamScoresForTeam(team.Id)
		if err != nil {
			return nil, err
		}
		for _, score := range scores {
			if score.Edition != nil && score.Edition.Status == repository.StatusInProgress {
				return nil, app_error.Unremovable("team", "team cannot be deactivated during an edition in progress")
			}
		}
	}
	team.IsActive = isActive
	if _, err := s.teamRepository.Save(team); err != nil {
		return nil, err
	}
	return team, nil
}
