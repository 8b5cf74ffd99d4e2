package repository

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

type EditionRegistration struct {
	Id            int          `gorm:"primaryKey"`
	ParticipantId int          `gorm:"not null;uniqueIndex:idx_participant_edition"`
	TeamId        int          `gorm:"not null;index"`
	EditionId     int          `gorm:"not null;uniqueIndex:idx_participant_edition"`
	CreatedAt     time.Time    `gorm:"not null"`
	Participant   *Participant `gorm:"foreignKey:ParticipantId;constraint:OnDelete:CASCADE"`
	Team          *Team        `gorm:"foreignKey:TeamId;constraint:OnDelete:CASCADE"`
	Edition       *Edition     `gorm:"foreignKey:EditionId;constraint:OnDelete:CASCADE"`
}

type EventRegistration struct {
	Id            int          `gorm:"primaryKey"`
	ParticipantId int          `gorm:"not null;index"`
	TeamId        int          `gorm:"not null;index"`
	EventId       int          `gorm:"not null;index"`
	CreatedAt     time.Time    `gorm:"not null"`
	Participant   *Participant `gorm:"foreignKey:ParticipantId;constraint:OnDelete:CASCADE"`
	Team          *Team        `gorm:"foreignKey:TeamId;constraint:OnDelete:CASCADE"`
	Event         *Event       `gorm:"foreignKey:EventId;constraint:OnDelete:CASCADE"`
}

type RegistrationRepository struct {
	DB *gorm.DB
}

func NewRegistrationRepository(db *gorm.DB) *RegistrationRepository {
	return &RegistrationRepository{DB: db}
}

func (r *RegistrationRepository) GetEditionRegistrationById(registrationId int, preloads ...string) (*EditionRegistration, error) {
	var registration EditionRegistration
	query := r.DB
	for _, preload := range preloads {
		query = query.Preload(preload)
	}
	result := query.First(&registration, registrationId)
	if result.Error != nil {
		return nil, result.Error
	}
	return &registration, nil
}

func (r *RegistrationRepository) GetEventRegistrationById(registrationId int, preloads ...string) (*EventRegistration, error) {
	var registration EventRegistration
	query := r.DB
	for _, preload := range preloads {
		query = query.Preload(preload)
	}
	result := query.First(&registration, registrationId)
	if result.Error != nil {
		return nil, result.Error
	}
	return &registration, nil
}

// ReplaceEditionRegistration deletes the old registration (if any) and
// creates the new one in a single transaction, so the delete is never
// visible without the insert.
func (r *RegistrationRepository) ReplaceEditionRegistration(old *EditionRegistration, registration *EditionRegistration) (*EditionRegistration, error) {
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if old != nil {
			if err := tx.Delete(old).Error; err != nil {
				return err
			}
		}
		return tx.Create(registration).Error
	})
	if err != nil {
		return nil, err
	}
	return registration, nil
}

func (r *RegistrationRepository) SaveEventRegistration(registration *EventRegistration) (*EventRegistration, error) {
	result := r.DB.Create(registration)
	if result.Error != nil {
		return nil, result.Error
	}
	return registration, nil
}

// SaveEventRegistrations persists a whole batch as one unit.
func (r *RegistrationRepository) SaveEventRegistrations(registrations []*EventRegistration) error {
	if len(registrations) == 0 {
		return nil
	}
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(registrations, len(registrations)).Error
	})
}

func (r *RegistrationRepository) DeleteEditionRegistration(registration *EditionRegistration) error {
	return r.DB.Delete(registration).Error
}

func (r *RegistrationRepository) DeleteEventRegistration(registration *EventRegistration) error {
	return r.DB.Delete(registration).Error
}

func (r *RegistrationRepository) DeleteEventRegistrationsByIds(eventId int, registrationIds []int) error {
	return r.DB.Where("event_id = ?", eventId).Delete(&EventRegistration{}, registrationIds).Error
}

func (r *RegistrationRepository) CountEventRegistrationsForTeam(teamId int, eventId int) (int64, error) {
	var count int64
	result := r.DB.Model(&EventRegistration{}).
		Where("team_id = ? AND event_id = ?", teamId, eventId).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

// CountEventRegistrationsByTeam returns the pre-existing registration count
// per team for one event, grouped in a single query.
func (r *RegistrationRepository) CountEventRegistrationsByTeam(eventId int) (map[int]int, error) {
	timer := prometheus.NewTimer(queryDuration.WithLabelValues("CountEventRegistrationsByTeam"))
	defer timer.ObserveDuration()

	type teamCount struct {
		TeamId int
		Count  int
	}
	counts := make([]teamCount, 0)
	result := r.DB.Model(&EventRegistration{}).
		Select("team_id, COUNT(*) AS count").
		Where("event_id = ?", eventId).
		Group("team_id").
		Scan(&counts)
	if result.Error != nil {
		return nil, result.Error
	}
	countMap := make(map[int]int, len(counts))
	for _, c := range counts {
		countMap[c.TeamId] = c.Count
	}
	return countMap, nil
}

// GetEventRegistrationsForEdition returns a participant's event
// registrations whose events belong to the given edition.
func (r *RegistrationRepository) GetEventRegistrationsForEdition(participantId int, editionId int) ([]*EventRegistration, error) {
	registrations := make([]*EventRegistration, 0)
	result := r.DB.
		Joins("JOIN cedupscore.events ON events.id = event_registrations.event_id").
		Where("event_registrations.participant_id = ? AND events.edition_id = ?", participantId, editionId).
		Find(&registrations)
	if result.Error != nil {
		return nil, result.Error
	}
	return registrations, nil
}
