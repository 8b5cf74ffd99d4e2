package repository

import (
	"time"

	"gorm.io/gorm"
)

type Status string

const (
	StatusScheduled  Status = "SCHEDULED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusEnded      Status = "ENDED"
	StatusCanceled   Status = "CANCELED"
)

// Closed reports whether the status permits no further registrations.
func (s Status) Closed() bool {
	return s == StatusEnded || s == StatusCanceled
}

type Edition struct {
	Id        int       `gorm:"primaryKey"`
	Year      int       `gorm:"not null;uniqueIndex"`
	Status    Status    `gorm:"not null;type:cedupscore.status"`
	CreatedAt time.Time `gorm:"not null"`
}

type EditionRepository struct {
	DB *gorm.DB
}

func NewEditionRepository(db *gorm.DB) *EditionRepository {
	return &EditionRepository{DB: db}
}

func (r *EditionRepository) GetEditionById(editionId int) (*Edition, error) {
	var edition Edition
	result := r.DB.First(&edition, editionId)
	if result.Error != nil {
		return nil, result.Error
	}
	return &edition, nil
}

func (r *EditionRepository) GetEditionByYear(year int) (*Edition, error) {
	var edition Edition
	result := r.DB.First(&edition, "year = ?", year)
	if result.Error != nil {
		return nil, result.Error
	}
	return &edition, nil
}

func (r *EditionRepository) FindAll() ([]*Edition, error) {
	editions := make([]*Edition, 0)
	result := r.DB.Order("year DESC").Find(&editions)
	if result.Error != nil {
		return nil, result.Error
	}
	return editions, nil
}

// FindByStatusNotIn returns editions whose status is none of the given ones.
func (r *EditionRepository) FindByStatusNotIn(statuses ...Status) ([]*Edition, error) {
	editions := make([]*Edition, 0)
	result := r.DB.Where("status NOT IN ?", statuses).Order("year DESC").Find(&editions)
	if result.Error != nil {
		return nil, result.Error
	}
	return editions, nil
}

func (r *EditionRepository) Save(edition *Edition) (*Edition, error) {
	result := r.DB.Save(edition)
	if result.Error != nil {
		return nil, result.Error
	}
	return edition, nil
}

func (r *EditionRepository) Delete(edition *Edition) error {
	return r.DB.Delete(edition).Error
}
