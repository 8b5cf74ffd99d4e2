package service

import (
	"cedupscore/app_error"
	"cedupscore/repository"
	"fmt"
	"strings"
)

// ParticipantValidationService evaluates eligibility rules against entity
// snapshots handed in by the caller. It never reaches into the database, so
// every decision is deterministic for a given set of inputs.
type ParticipantValidationService struct{}

func NewParticipantValidationService() *ParticipantValidationService {
	return &ParticipantValidationService{}
}

// ValidateCpf checks the standard 11-digit cpf format and check digits.
func (s *ParticipantValidationService) ValidateCpf(cpf string) error {
	digits := strings.NewReplacer(".", "", "-", "").Replace(cpf)
	if len(digits) != 11 {
		return app_error.InvalidDocument("cpf must have 11 digits")
	}
	allEqual := true
	for i := range digits {
		if digits[i] < '0' || digits[i] > '9' {
			return app_error.InvalidDocument("cpf must contain only digits")
		}
		if digits[i] != digits[0] {
			allEqual = false
		}
	}
	if allEqual {
		return app_error.InvalidDocument("invalid cpf")
	}
	if int(digits[9]-'0') != cpfCheckDigit(digits, 9) || int(digits[10]-'0') != cpfCheckDigit(digits, 10) {
		return app_error.InvalidDocument("invalid cpf")
	}
	return nil
}

func cpfCheckDigit(digits string, position int) int {
	sum := 0
	for i := 0; i < position; i++ {
		sum += int(digits[i]-'0') * (position + 1 - i)
	}
	return sum * 10 % 11 % 10
}

func (s *ParticipantValidationService) ValidateParticipantAndTeamActive(participant *repository.Participant, team *repository.Team) error {
	if !participant.IsActive {
		return app_error.Inactive("participant")
	}
	if !team.IsActive {
		return app_error.Inactive("team")
	}
	return nil
}

// ValidateParticipantForEdition checks that the edition still accepts
// registrations and returns the registration to be replaced when the
// participant is already registered for it. Registering again is an
// overwrite, not an error.
func (s *ParticipantValidationService) ValidateParticipantForEdition(participant *repository.Participant, edition *repository.Edition) (*repository.EditionRegistration, error) {
	if edition.Status.Closed() {
		return nil, app_error.LifecycleViolation("edition",
			fmt.Sprintf("edition %d no longer accepts registrations", edition.Year))
	}
	for _, registration := range participant.EditionRegistrations {
		if registration.EditionId == edition.Id {
			return registration, nil
		}
	}
	return nil, nil
}

// ValidateParticipantTeamForEvent requires an edition registration binding
// the participant to the given team for the event's edition.
func (s *ParticipantValidationService) ValidateParticipantTeamForEvent(participant *repository.Participant, team *repository.Team, event *repository.Event) error {
	for _, registration := range participant.EditionRegistrations {
		if registration.EditionId == event.EditionId {
			if registration.TeamId == team.Id {
				return nil
			}
			return app_error.TeamMismatch(
				fmt.Sprintf("participant %d is not registered for team %d in this edition", participant.Id, team.Id))
		}
	}
	return app_error.TeamMismatch(
		fmt.Sprintf("participant %d holds no registration for the event's edition", participant.Id))
}

// ValidateParticipantForEvent gates on event lifecycle and per-team
// capacity. registeredCount is the caller-supplied live count for the
// (team, event) pair; it is never recomputed here.
func (s *ParticipantValidationService) ValidateParticipantForEvent(event *repository.Event, registeredCount int) error {
	if event.Status != repository.StatusScheduled {
		return app_error.LifecycleViolation("event", "event is no longer accepting registrations")
	}
	if event.MaxParticipantsPerTeam != nil && registeredCount >= *event.MaxParticipantsPerTeam {
		return app_error.CapacityExceeded(
			fmt.Sprintf("team already has %d of %d participants registered", registeredCount, *event.MaxParticipantsPerTeam))
	}
	return nil
}

// ValidateEditionRegistrationToRemove requires the registration to belong to
// the participant, its edition to still be SCHEDULED and no event
// registrations of that edition to depend on it. The registration must come
// with its Edition preloaded.
func (s *ParticipantValidationService) ValidateEditionRegistrationToRemove(participant *repository.Participant, registration *repository.EditionRegistration, dependentRegistrations []*repository.EventRegistration) error {
	if registration.ParticipantId != participant.Id {
		return app_error.NotFound("registration")
	}
	if registration.Edition == nil || registration.Edition.Status != repository.StatusScheduled {
		return app_error.LifecycleViolation("edition", "registrations can only be removed while the edition is scheduled")
	}
	if len(dependentRegistrations) > 0 {
		return app_error.LifecycleViolation("registration",
			fmt.Sprintf("%d event registrations still depend on this edition registration", len(dependentRegistrations)))
	}
	return nil
}

// ValidateEventRegistrationToRemove requires the registration to belong to
// the participant and its event to still be SCHEDULED. The registration must
// come with its Event preloaded.
func (s *ParticipantValidationService) ValidateEventRegistrationToRemove(participant *repository.Participant, registration *repository.EventRegistration) error {
	if registration.ParticipantId != participant.Id {
		return app_error.NotFound("registration")
	}
	if registration.Event == nil || registration.Event.Status != repository.StatusScheduled {
		return app_error.LifecycleViolation("event", "registrations can only be removed while the event is scheduled")
	}
	return nil
}

// ValidateParticipantToRemove permits hard deletion only for participants
// with at most one edition registration, and that one (if present) must
// belong to a SCHEDULED edition. Registrations must come with their Edition
// preloaded.
func (s *ParticipantValidationService) ValidateParticipantToRemove(participant *repository.Participant) error {
	registrations := participant.EditionRegistrations
	if len(registrations) >= 2 {
		return app_error.Unremovable("participant", "participant is registered in more than one edition")
	}
	if len(registrations) == 1 {
		edition := registrations[0].Edition
		if edition == nil || edition.Status != repository.StatusScheduled {
			return app_error.Unremovable("participant", "participant is registered in an edition that already started")
		}
	}
	return nil
}

// ValidateParticipantToChangeStatus refuses deactivation while the
// participant is registered in an edition currently in progress.
func (s *ParticipantValidationService) ValidateParticipantToChangeStatus(participant *repository.Participant) error {
	for _, registration := range participant.EditionRegistrations {
		if registration.Edition != nil && registration.Edition.Status == repository.StatusInProgress {
			return app_error.Conflict("participant cannot be deactivated during an edition in progress")
		}
	}
	return nil
}
