package repository

import (
	"gorm.io/gorm"
)

type Team struct {
	Id       int    `gorm:"primaryKey"`
	Name     string `gorm:"not null;uniqueIndex"`
	LogoUrl  string `gorm:"not null;uniqueIndex"`
	IsActive bool   `gorm:"not null;default:true"`
}

type TeamRepository struct {
	DB *gorm.DB
}

func NewTeamRepository(db *gorm.DB) *TeamRepository {
	return &TeamRepository{DB: db}
}

func (r *TeamRepository) GetTeamById(teamId int) (*Team, error) {
	var team Team
	result := r.DB.First(&team, teamId)
	if result.Error != nil {
		return nil, result.Error
	}
	return &team, nil
}

func (r *TeamRepository) GetTeamsByIds(teamIds []int) ([]*Team, error) {
	teams := make([]*Team, 0)
	result := r.DB.Find(&teams, "id IN ?", teamIds)
	if result.Error != nil {
		return nil, result.Error
	}
	return teams, nil
}

func (r *TeamRepository) GetTeamByName(name string) (*Team, error) {
	var team Team
	result := r.DB.First(&team, "name = ?", name)
	if result.Error != nil {
		return nil, result.Error
	}
	return &team, nil
}

func (r *TeamRepository) GetTeamByLogo(logoUrl string) (*Team, error) {
	var team Team
	result := r.DB.First(&team, "logo_url = ?", logoUrl)
	if result.Error != nil {
		return nil, result.Error
	}
	return &team, nil
}

func (r *TeamRepository) FindAll() ([]*Team, error) {
	teams := make([]*Team, 0)
	result := r.DB.Order("name ASC").Find(&teams)
	if result.Error != nil {
		return nil, result.Error
	}
	return teams, nil
}

func (r *TeamRepository) Save(team *Team) (*Team, error) {
	result := r.DB.Save(team)
	if result.Error != nil {
		return nil, result.Error
	}
	return team, nil
}

func (r *TeamRepository) Delete(team *Team) error {
	return r.DB.Delete(team).Error
}
