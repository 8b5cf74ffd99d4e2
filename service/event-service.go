package service

import (
	"cedupscore/app_error"
	"cedupscore/repository"
	"fmt"

	"gorm.io/gorm"
)

type EventService struct {
	eventRepository   *repository.EventRepository
	editionRepository *repository.EditionRepository
}

func NewEventService(db *gorm.DB) *EventService {
	return &EventService{
		eventRepository:   repository.NewEventRepository(db),
		editionRepository: repository.NewEditionRepository(db),
	}
}

func (s *EventService) GetEventById(eventId int, preloads ...string) (*repository.Event, error) {
	event, err := s.eventRepository.GetEventById(eventId, preloads...)
	if err != nil {
		return nil, notFoundOr(err, "event")
	}
	return event, nil
}

func (s *EventService) GetEventsForEdition(editionId int) ([]*repository.Event, error) {
	return s.eventRepository.GetEventsForEdition(editionId)
}

// SaveEvent creates an event under an edition that has not finished.
func (s *EventService) SaveEvent(event *repository.Event) (*repository.Event, error) {
	edition, err := s.editionRepository.GetEditionById(event.EditionId)
	if err != nil {
		return nil, notFoundOr(err, "edition")
	}
	if edition.Status.Closed() {
		return nil, app_error.LifecycleViolation("edition", "events cannot be added to a closed edition")
	}
	event.Status = repository.StatusScheduled
	return s.eventRepository.Save(event)
}

func (s *EventService) ReplaceEvent(eventId int, updated *repository.Event) (*repository.Event, error) {
	event, err := s.GetEventById(eventId)
	if err != nil {
		return nil, err
	}
	if event.Status != repository.StatusScheduled {
		return nil, app_error.LifecycleViolation("event", "only scheduled events can be changed")
	}
	event.Name = updated.Name
	event.Type = updated.Type
	event.MaxParticipantsPerTeam = updated.MaxParticipantsPerTeam
	return s.eventRepository.Save(event)
}

func (s *EventService) UpdateEventStatus(eventId int, status repository.Status) (*repository.Event, error) {
	event, err := s.GetEventById(eventId)
	if err != nil {
		return nil, err
	}
	if event.Status == status {
		return event, nil
	}
	if !validTransition(event.Status, status) {
		return nil, app_error.LifecycleViolation("event",
			fmt.Sprintf("cannot move event from %s to %s", event.Status, status))
	}
	event.Status = status
	return s.eventRepository.Save(event)
}

func (s *EventService) DeleteEvent(eventId int) error {
	event, err := s.GetEventById(eventId)
	if err != nil {
		return err
	}
	if event.Status != repository.StatusScheduled {
		return app_error.Unremovable("event", "only scheduled events can be removed")
	}
	return s.eventRepository.Delete(event)
}
