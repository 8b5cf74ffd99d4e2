package repository

import (
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

type ParticipantType string

const (
	TypeStudent ParticipantType = "STUDENT"
	TypeTeacher ParticipantType = "TEACHER"
	TypeParent  ParticipantType = "PARENT"
)

type Participant struct {
	Id       int             `gorm:"primaryKey"`
	Name     string          `gorm:"not null"`
	Cpf      string          `gorm:"not null;uniqueIndex"`
	Gender   Gender          `gorm:"not null;type:cedupscore.gender"`
	Type     ParticipantType `gorm:"not null;type:cedupscore.participant_type"`
	IsActive bool            `gorm:"not null;default:true"`

	EditionRegistrations []*EditionRegistration `gorm:"foreignKey:ParticipantId;constraint:OnDelete:CASCADE"`
	EventRegistrations   []*EventRegistration   `gorm:"foreignKey:ParticipantId;constraint:OnDelete:CASCADE"`
}

type ParticipantRepository struct {
	DB *gorm.DB
}

func NewParticipantRepository(db *gorm.DB) *ParticipantRepository {
	return &ParticipantRepository{DB: db}
}

func (r *ParticipantRepository) GetParticipantById(participantId int, preloads ...string) (*Participant, error) {
	var participant Participant
	query := r.DB
	for _, preload := range preloads {
		query = query.Preload(preload)
	}
	result := query.First(&participant, participantId)
	if result.Error != nil {
		return nil, result.Error
	}
	return &participant, nil
}

func (r *ParticipantRepository) GetParticipantByCpf(cpf string, preloads ...string) (*Participant, error) {
	var participant Participant
	query := r.DB
	for _, preload := range preloads {
		query = query.Preload(preload)
	}
	result := query.First(&participant, "cpf = ?", cpf)
	if result.Error != nil {
		return nil, result.Error
	}
	return &participant, nil
}

func (r *ParticipantRepository) GetParticipantsByIds(participantIds []int) ([]*Participant, error) {
	participants := make([]*Participant, 0)
	result := r.DB.Find(&participants, "id IN ?", participantIds)
	if result.Error != nil {
		return nil, result.Error
	}
	return participants, nil
}

func (r *ParticipantRepository) GetParticipantsByCpfs(cpfs []string) ([]*Participant, error) {
	participants := make([]*Participant, 0)
	result := r.DB.Find(&participants, "cpf IN ?", cpfs)
	if result.Error != nil {
		return nil, result.Error
	}
	return participants, nil
}

// FindAll applies the given filter clauses conjunctively. The clauses are
// built with ParticipantFilter so callers never assemble raw conditions.
func (r *ParticipantRepository) FindAll(filter *ParticipantFilter, limit int, offset int) ([]*Participant, int64, error) {
	timer := prometheus.NewTimer(queryDuration.WithLabelValues("FindAllParticipants"))
	defer timer.ObserveDuration()

	participants := make([]*Participant, 0)
	query := r.DB.Model(&Participant{}).Scopes(filter.Scopes()...)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	result := query.
		Order(filter.Order()).
		Limit(limit).
		Offset(offset).
		Preload("EditionRegistrations").
		Preload("EditionRegistrations.Team").
		Find(&participants)
	if result.Error != nil {
		return nil, 0, result.Error
	}
	return participants, total, nil
}

func (r *ParticipantRepository) Save(participant *Participant) (*Participant, error) {
	result := r.DB.Omit("EditionRegistrations", "EventRegistrations").Save(participant)
	if result.Error != nil {
		return nil, result.Error
	}
	return participant, nil
}

func (r *ParticipantRepository) Delete(participant *Participant) error {
	return r.DB.Select("EditionRegistrations", "EventRegistrations").Delete(participant).Error
}
