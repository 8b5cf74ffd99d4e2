package service

import (
	"cedupscore/app_error"
	"cedupscore/repository"
	"cedupscore/utils"
	"errors"
	"strings"

	"gorm.io/gorm"
)

type ParticipantService struct {
	db                     *gorm.DB
	participantRepository  *repository.ParticipantRepository
	registrationRepository *repository.RegistrationRepository
	teamRepository         *repository.TeamRepository
	editionRepository      *repository.EditionRepository
	eventRepository        *repository.EventRepository
	validator              *ParticipantValidationService
}

func NewParticipantService(db *gorm.DB) *ParticipantService {
	return &ParticipantService{
		db:                     db,
		participantRepository:  repository.NewParticipantRepository(db),
		registrationRepository: repository.NewRegistrationRepository(db),
		teamRepository:         repository.NewTeamRepository(db),
		editionRepository:      repository.NewEditionRepository(db),
		eventRepository:        repository.NewEventRepository(db),
		validator:              NewParticipantValidationService(),
	}
}

// participantPreloads is the registration view returned to callers. The
// registration set on a participant is always re-read after a mutation,
// never patched in place.
var participantPreloads = []string{
	"EditionRegistrations",
	"EditionRegistrations.Team",
	"EditionRegistrations.Edition",
	"EventRegistrations",
}

func (s *ParticipantService) GetParticipantById(participantId int) (*repository.Participant, error) {
	participant, err := s.participantRepository.GetParticipantById(participantId, participantPreloads...)
	if err != nil {
		return nil, notFoundOr(err, "participant")
	}
	return participant, nil
}

func (s *ParticipantService) GetParticipantByCpf(cpf string) (*repository.Participant, error) {
	if err := s.validator.ValidateCpf(cpf); err != nil {
		return nil, err
	}
	participant, err := s.participantRepository.GetParticipantByCpf(cpf, participantPreloads...)
	if err != nil {
		return nil, notFoundOr(err, "participant")
	}
	return participant, nil
}

func (s *ParticipantService) FindAllParticipants(filter *repository.ParticipantFilter, limit int, offset int) ([]*repository.Participant, int64, error) {
	return s.participantRepository.FindAll(filter, limit, offset)
}

// SaveParticipant creates a participant and registers them in the single
// currently open edition. Exactly one non-closed edition must exist: none at
// all means no one can sign up, more than one is a conflict the operator has
// to resolve first.
func (s *ParticipantService) SaveParticipant(participant *repository.Participant, teamId int) (*repository.Participant, error) {
	if err := s.validator.ValidateCpf(participant.Cpf); err != nil {
		return nil, err
	}
	if _, err := s.participantRepository.GetParticipantByCpf(participant.Cpf); err == nil {
		return nil, app_error.Conflict("the given cpf is already in use")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	editions, err := s.editionRepository.FindByStatusNotIn(repository.StatusEnded, repository.StatusCanceled)
	if err != nil {
		return nil, err
	}
	if len(editions) == 0 {
		return nil, app_error.LifecycleViolation("edition", "no edition is currently open for registrations")
	}
	if len(editions) > 1 {
		return nil, app_error.Conflict("more than one edition is open for registrations")
	}
	participant.Name = strings.ToUpper(participant.Name)
	participant.IsActive = true

	err = s.db.Transaction(func(tx *gorm.DB) error {
		txService := NewParticipantService(tx)
		saved, err := txService.participantRepository.Save(participant)
		if err != nil {
			return duplicateOr(err, "the given cpf is already in use")
		}
		_, err = txService.RegisterParticipantInEdition(saved, editions[0].Id, teamId)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetParticipantById(participant.Id)
}

// RegisterParticipantInEdition enrolls the participant with a team for an
// edition. An existing registration for the same edition is replaced, not
// stacked; the delete/insert pair commits as one unit.
func (s *ParticipantService) RegisterParticipantInEdition(participant *repository.Participant, editionId int, teamId int) (*repository.Participant, error) {
	edition, err := s.editionRepository.GetEditionById(editionId)
	if err != nil {
		return nil, notFoundOr(err, "edition")
	}
	team, err := s.teamRepository.GetTeamById(teamId)
	if err != nil {
		return nil, notFoundOr(err, "team")
	}
	if err := s.validator.ValidateParticipantAndTeamActive(participant, team); err != nil {
		return nil, err
	}
	existing, err := s.validator.ValidateParticipantForEdition(participant, edition)
	if err != nil {
		return nil, err
	}
	registration := &repository.EditionRegistration{
		ParticipantId: participant.Id,
		TeamId:        team.Id,
		EditionId:     edition.Id,
	}
	if _, err := s.registrationRepository.ReplaceEditionRegistration(existing, registration); err != nil {
		return nil, duplicateOr(err, "participant was registered for this edition concurrently")
	}
	return s.GetParticipantById(participant.Id)
}

// RegisterParticipantInEvent enrolls the participant in one event under a
// team they already represent for the event's edition, subject to the
// event's per-team capacity.
func (s *ParticipantService) RegisterParticipantInEvent(participant *repository.Participant, eventId int, teamId int) (*repository.Participant, error) {
	event, err := s.eventRepository.GetEventById(eventId)
	if err != nil {
		return nil, notFoundOr(err, "event")
	}
	team, err := s.teamRepository.GetTeamById(teamId)
	if err != nil {
		return nil, notFoundOr(err, "team")
	}
	if err := s.validator.ValidateParticipantAndTeamActive(participant, team); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateParticipantTeamForEvent(participant, team, event); err != nil {
		return nil, err
	}
	registeredCount, err := s.registrationRepository.CountEventRegistrationsForTeam(team.Id, event.Id)
	if err != nil {
		return nil, err
	}
	if err := s.validator.ValidateParticipantForEvent(event, int(registeredCount)); err != nil {
		return nil, err
	}
	registration := &repository.EventRegistration{
		ParticipantId: participant.Id,
		TeamId:        team.Id,
		EventId:       event.Id,
	}
	if _, err := s.registrationRepository.SaveEventRegistration(registration); err != nil {
		return nil, err
	}
	return s.GetParticipantById(participant.Id)
}

type EventRegistrationRequest struct {
	ParticipantId int
	TeamId        int
}

// RegistrationFailure reports one rejected item of a bulk registration.
type RegistrationFailure struct {
	ParticipantId int
	TeamId        int
	Kind          app_error.Kind
	Message       string
}

// RegisterAllParticipantsInEvent registers a batch of (participant, team)
// pairs for one event. Participants and teams are resolved in two batched
// lookups; an unresolved id fails the whole batch before anything is
// written. Capacity is tracked with a per-team running counter seeded once
// from the persisted counts, so items later in the batch see the
// acceptances before them instead of the stale stored count. Rule
// rejections are collected per item; accepted registrations commit as one
// batch.
func (s *ParticipantService) RegisterAllParticipantsInEvent(requests []EventRegistrationRequest, eventId int) ([]*repository.Participant, []RegistrationFailure, error) {
	event, err := s.eventRepository.GetEventById(eventId)
	if err != nil {
		return nil, nil, notFoundOr(err, "event")
	}
	participantIds := utils.Uniques(utils.Map(requests, func(r EventRegistrationRequest) int { return r.ParticipantId }))
	teamIds := utils.Uniques(utils.Map(requests, func(r EventRegistrationRequest) int { return r.TeamId }))

	participants, err := s.participantRepository.GetParticipantsByIds(participantIds)
	if err != nil {
		return nil, nil, err
	}
	teams, err := s.teamRepository.GetTeamsByIds(teamIds)
	if err != nil {
		return nil, nil, err
	}
	idToParticipant := make(map[int]*repository.Participant, len(participants))
	for _, participant := range participants {
		idToParticipant[participant.Id] = participant
	}
	idToTeam := make(map[int]*repository.Team, len(teams))
	for _, team := range teams {
		idToTeam[team.Id] = team
	}
	for _, request := range requests {
		if _, ok := idToParticipant[request.ParticipantId]; !ok {
			return nil, nil, app_error.NotFound("participant")
		}
		if _, ok := idToTeam[request.TeamId]; !ok {
			return nil, nil, app_error.NotFound("team")
		}
	}
	if err := s.loadEditionRegistrations(participants); err != nil {
		return nil, nil, err
	}

	counts, err := s.registrationRepository.CountEventRegistrationsByTeam(event.Id)
	if err != nil {
		return nil, nil, err
	}

	registered := make([]*repository.Participant, 0, len(requests))
	failures := make([]RegistrationFailure, 0)
	registrations := make([]*repository.EventRegistration, 0, len(requests))

	for _, group := range groupRequestsByTeam(requests) {
		team := idToTeam[group.teamId]
		counter := counts[group.teamId]

		for _, participantId := range group.participantIds {
			participant := idToParticipant[participantId]
			err := s.validateForEvent(participant, team, event, counter)
			if err != nil {
				var appErr *app_error.Error
				if !errors.As(err, &appErr) {
					return nil, nil, err
				}
				failures = append(failures, RegistrationFailure{
					ParticipantId: participantId,
					TeamId:        team.Id,
					Kind:          appErr.Kind,
					Message:       appErr.Error(),
				})
				continue
			}
			counter++
			registered = append(registered, participant)
			registrations = append(registrations, &repository.EventRegistration{
				ParticipantId: participantId,
				TeamId:        team.Id,
				EventId:       event.Id,
			})
		}
	}
	if err := s.registrationRepository.SaveEventRegistrations(registrations); err != nil {
		return nil, nil, err
	}
	return registered, failures, nil
}

func (s *ParticipantService) validateForEvent(participant *repository.Participant, team *repository.Team, event *repository.Event, registeredCount int) error {
	if err := s.validator.ValidateParticipantAndTeamActive(participant, team); err != nil {
		return err
	}
	if err := s.validator.ValidateParticipantTeamForEvent(participant, team, event); err != nil {
		return err
	}
	return s.validator.ValidateParticipantForEvent(event, registeredCount)
}

type teamGroup struct {
	teamId         int
	participantIds []int
}

// groupRequestsByTeam keeps the relative input order both across groups and
// within each group.
func groupRequestsByTeam(requests []EventRegistrationRequest) []teamGroup {
	groups := make([]teamGroup, 0)
	indexByTeam := make(map[int]int)
	for _, request := range requests {
		index, ok := indexByTeam[request.TeamId]
		if !ok {
			index = len(groups)
			indexByTeam[request.TeamId] = index
			groups = append(groups, teamGroup{teamId: request.TeamId})
		}
		groups[index].participantIds = append(groups[index].participantIds, request.ParticipantId)
	}
	return groups
}

func (s *ParticipantService) loadEditionRegistrations(participants []*repository.Participant) error {
	ids := utils.Map(participants, func(p *repository.Participant) int { return p.Id })
	registrations := make([]*repository.EditionRegistration, 0)
	err := s.db.Find(&registrations, "participant_id IN ?", ids).Error
	if err != nil {
		return err
	}
	byParticipant := utils.GroupBy(registrations, func(r *repository.EditionRegistration) int { return r.ParticipantId })
	for _, participant := range participants {
		participant.EditionRegistrations = byParticipant[participant.Id]
	}
	return nil
}

func (s *ParticipantService) DeleteParticipant(participantId int) error {
	participant, err := s.participantRepository.GetParticipantById(participantId, "EditionRegistrations", "EditionRegistrations.Edition")
	if err != nil {
		return notFoundOr(err, "participant")
	}
	if err := s.validator.ValidateParticipantToRemove(participant); err != nil {
		return err
	}
	return s.participantRepository.Delete(participant)
}

func (s *ParticipantService) DeleteEditionRegistration(participantId int, registrationId int) (*repository.Participant, error) {
	participant, err := s.GetParticipantById(participantId)
	if err != nil {
		return nil, err
	}
	registration, err := s.registrationRepository.GetEditionRegistrationById(registrationId, "Edition")
	if err != nil {
		return nil, notFoundOr(err, "registration")
	}
	dependents, err := s.registrationRepository.GetEventRegistrationsForEdition(participant.Id, registration.EditionId)
	if err != nil {
		return nil, err
	}
	if err := s.validator.ValidateEditionRegistrationToRemove(participant, registration, dependents); err != nil {
		return nil, err
	}
	if err := s.registrationRepository.DeleteEditionRegistration(registration); err != nil {
		return nil, err
	}
	return s.GetParticipantById(participant.Id)
}

func (s *ParticipantService) DeleteEventRegistration(participantId int, registrationId int) (*repository.Participant, error) {
	participant, err := s.GetParticipantById(participantId)
	if err != nil {
		return nil, err
	}
	registration, err := s.registrationRepository.GetEventRegistrationById(registrationId, "Event")
	if err != nil {
		return nil, notFoundOr(err, "registration")
	}
	if err := s.validator.ValidateEventRegistrationToRemove(participant, registration); err != nil {
		return nil, err
	}
	if err := s.registrationRepository.DeleteEventRegistration(registration); err != nil {
		return nil, err
	}
	return s.GetParticipantById(participant.Id)
}

// DeleteAllEventRegistrations removes a set of registrations from one event
// while it is still scheduled.
func (s *ParticipantService) DeleteAllEventRegistrations(eventId int, registrationIds []int) error {
	event, err := s.eventRepository.GetEventById(eventId)
	if err != nil {
		return notFoundOr(err, "event")
	}
	if event.Status != repository.StatusScheduled {
		return app_error.LifecycleViolation("event", "registrations can only be removed while the event is scheduled")
	}
	return s.registrationRepository.DeleteEventRegistrationsByIds(eventId, registrationIds)
}

// SetParticipantActive flips the active flag. Requesting the current state
// is a no-op.
func (s *ParticipantService) SetParticipantActive(participantId int, isActive bool) (*repository.Participant, error) {
	participant, err := s.GetParticipantById(participantId)
	if err != nil {
		return nil, err
	}
	if participant.IsActive == isActive {
		return participant, nil
	}
	if !isActive {
		if err := s.validator.ValidateParticipantToChangeStatus(participant); err != nil {
			return nil, err
		}
	}
	participant.IsActive = isActive
	if _, err := s.participantRepository.Save(participant); err != nil {
		return nil, err
	}
	return participant, nil
}

// ReplaceParticipant swaps the participant's fields wholesale, keeping the
// active flag and re-checking the cpf natural key.
func (s *ParticipantService) ReplaceParticipant(participantId int, updated *repository.Participant) (*repository.Participant, error) {
	participant, err := s.GetParticipantById(participantId)
	if err != nil {
		return nil, err
	}
	if err := s.validator.ValidateCpf(updated.Cpf); err != nil {
		return nil, err
	}
	if existing, err := s.participantRepository.GetParticipantByCpf(updated.Cpf); err == nil {
		if existing.Id != participant.Id {
			return nil, app_error.Conflict("the given cpf is already in use")
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	participant.Name = strings.ToUpper(updated.Name)
	participant.Cpf = updated.Cpf
	participant.Gender = updated.Gender
	participant.Type = updated.Type
	if _, err := s.participantRepository.Save(participant); err != nil {
		return nil, duplicateOr(err, "the given cpf is already in use")
	}
	return s.GetParticipantById(participant.Id)
}
