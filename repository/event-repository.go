package repository

import (
	"gorm.io/gorm"
)

type EventType string

const (
	EventTypeSport  EventType = "SPORT"
	EventTypeTask   EventType = "TASK"
	EventTypeNormal EventType = "NORMAL"
)

type Event struct {
	Id                     int       `gorm:"primaryKey"`
	Name                   string    `gorm:"not null"`
	Type                   EventType `gorm:"not null;type:cedupscore.event_type"`
	Status                 Status    `gorm:"not null;type:cedupscore.status"`
	EditionId              int       `gorm:"not null;index"`
	Edition                *Edition  `gorm:"foreignKey:EditionId;constraint:OnDelete:CASCADE"`
	MaxParticipantsPerTeam *int      `gorm:"null"`
}

type EventRepository struct {
	DB *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{DB: db}
}

func (r *EventRepository) GetEventById(eventId int, preloads ...string) (*Event, error) {
	var event Event
	query := r.DB
	for _, preload := range preloads {
		query = query.Preload(preload)
	}
	result := query.First(&event, eventId)
	if result.Error != nil {
		return nil, result.Error
	}
	return &event, nil
}

func (r *EventRepository) GetEventsForEdition(editionId int) ([]*Event, error) {
	events := make([]*Event, 0)
	result := r.DB.Find(&events, "edition_id = ?", editionId)
	if result.Error != nil {
		return nil, result.Error
	}
	return events, nil
}

func (r *EventRepository) Save(event *Event) (*Event, error) {
	result := r.DB.Save(event)
	if result.Error != nil {
		return nil, result.Error
	}
	return event, nil
}

func (r *EventRepository) Delete(event *Event) error {
	return r.DB.Delete(event).Error
}
