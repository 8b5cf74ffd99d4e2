package service

import (
	"cedupscore/app_error"
	"cedupscore/repository"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCpf(t *testing.T) {
	validator := NewParticipantValidationService()

	assert.NoError(t, validator.ValidateCpf("52998224725"))
	assert.NoError(t, validator.ValidateCpf("529.982.247-25"))
	assert.NoError(t, validator.ValidateCpf("111.444.777-35"))

	// wrong check digit
	err := validator.ValidateCpf("52998224726")
	assert.True(t, app_error.IsKind(err, app_error.KindInvalidDocument))

	// repeated digits pass the checksum but are not real documents
	err = validator.ValidateCpf("11111111111")
	assert.True(t, app_error.IsKind(err, app_error.KindInvalidDocument))

	err = validator.ValidateCpf("1234567890")
	assert.True(t, app_error.IsKind(err, app_error.KindInvalidDocument))

	err = validator.ValidateCpf("5299822472a")
	assert.True(t, app_error.IsKind(err, app_error.KindInvalidDocument))
}

func TestValidateParticipantAndTeamActive(t *testing.T) {
	validator := NewParticipantValidationService()
	participant := &repository.Participant{Id: 1, IsActive: true}
	team := &repository.Team{Id: 1, IsActive: true}

	assert.NoError(t, validator.ValidateParticipantAndTeamActive(participant, team))

	participant.IsActive = false
	err := validator.ValidateParticipantAndTeamActive(participant, team)
	assert.True(t, app_error.IsKind(err, app_error.KindInactiveEntity))

	participant.IsActive = true
	team.IsActive = false
	err = validator.ValidateParticipantAndTeamActive(participant, team)
	assert.True(t, app_error.IsKind(err, app_error.KindInactiveEntity))
}

func TestValidateParticipantForEdition(t *testing.T) {
	validator := NewParticipantValidationService()
	edition := &repository.Edition{Id: 1, Year: 2026, Status: repository.StatusScheduled}
	participant := &repository.Participant{Id: 1}

	existing, err := validator.ValidateParticipantForEdition(participant, edition)
	assert.NoError(t, err)
	assert.Nil(t, existing)

	// registering again returns the registration to replace
	registration := &repository.EditionRegistration{Id: 7, ParticipantId: 1, EditionId: 1, TeamId: 2}
	participant.EditionRegistrations = []*repository.EditionRegistration{registration}
	existing, err = validator.ValidateParticipantForEdition(participant, edition)
	assert.NoError(t, err)
	assert.Equal(t, registration, existing)

	edition.Status = repository.StatusEnded
	_, err = validator.ValidateParticipantForEdition(participant, edition)
	assert.True(t, app_error.IsKind(err, app_error.KindLifecycleViolation))

	edition.Status = repository.StatusCanceled
	_, err = validator.ValidateParticipantForEdition(participant, edition)
	assert.True(t, app_error.IsKind(err, app_error.KindLifecycleViolation))

	// an edition in progress still accepts registrations
	edition.Status = repository.StatusInProgress
	_, err = validator.ValidateParticipantForEdition(participant, edition)
	assert.NoError(t, err)
}

func TestValidateParticipantTeamForEvent(t *testing.T) {
	validator := NewParticipantValidationService()
	event := &repository.Event{Id: 1, EditionId: 1}
	team := &repository.Team{Id: 2}
	participant := &repository.Participant{
		Id: 1,
		EditionRegistrations: []*repository.EditionRegistration{
			{ParticipantId: 1, EditionId: 1, TeamId: 2},
		},
	}

	assert.NoError(t, validator.ValidateParticipantTeamForEvent(participant, team, event))

	otherTeam := &repository.Team{Id: 3}
	err := validator.ValidateParticipantTeamForEvent(participant, otherTeam, event)
	assert.True(t, app_error.IsKind(err, app_error.KindTeamMismatch))

	participant.EditionRegistrations = nil
	err = validator.ValidateParticipantTeamForEvent(participant, team, event)
	assert.True(t, app_error.IsKind(err, app_error.KindTeamMismatch))
}

func TestValidateParticipantForEvent(t *testing.T) {
	validator := NewParticipantValidationService()
	max := 2
	event := &repository.Event{Id: 1, Status: repository.StatusScheduled, MaxParticipantsPerTeam: &max}

	assert.NoError(t, validator.ValidateParticipantForEvent(event, 0))
	assert.NoError(t, validator.ValidateParticipantForEvent(event, 1))

	err := validator.ValidateParticipantForEvent(event, 2)
	assert.True(t, app_error.IsKind(err, app_error.KindCapacityExceeded))

	event.MaxParticipantsPerTeam = nil
	assert.NoError(t, validator.ValidateParticipantForEvent(event, 200))

	event.Status = repository.StatusInProgress
	err = validator.ValidateParticipantForEvent(event, 0)
	assert.True(t, app_error.IsKind(err, app_error.KindLifecycleViolation))
}

func TestValidateEditionRegistrationToRemove(t *testing.T) {
	validator := NewParticipantValidationService()
	participant := &repository.Participant{Id: 1}
	registration := &repository.EditionRegistration{
		Id:            5,
		ParticipantId: 1,
		Edition:       &repository.Edition{Id: 1, Status: repository.StatusScheduled},
	}

	assert.NoError(t, validator.ValidateEditionRegistrationToRemove(participant, registration, nil))

	dependents := []*repository.EventRegistration{{Id: 9, ParticipantId: 1}}
	err := validator.ValidateEditionRegistrationToRemove(participant, registration, dependents)
	assert.True(t, app_error.IsKind(err, app_error.KindLifecycleViolation))

	registration.Edition.Status = repository.StatusInProgress
	err = validator.ValidateEditionRegistrationToRemove(participant, registration, nil)
	assert.True(t, app_error.IsKind(err, app_error.KindLifecycleViolation))

	registration.Edition.Status = repository.StatusScheduled
	registration.ParticipantId = 2
	err = validator.ValidateEditionRegistrationToRemove(participant, registration, nil)
	assert.True(t, app_error.IsKind(err, app_error.KindNotFound))
}

func TestValidateParticipantToRemove(t *testing.T) {
	validator := NewParticipantValidationService()
	scheduled := &repository.Edition{Id: 1, Status: repository.StatusScheduled}
	ended := &repository.Edition{Id: 2, Status: repository.StatusEnded}

	participant := &repository.Participant{Id: 1}
	assert.NoError(t, validator.ValidateParticipantToRemove(participant))

	participant.EditionRegistrations = []*repository.EditionRegistration{
		{EditionId: 1, Edition: scheduled},
	}
	assert.NoError(t, validator.ValidateParticipantToRemove(participant))

	participant.EditionRegistrations = []*repository.EditionRegistration{
		{EditionId: 2, Edition: ended},
	}
	err := validator.ValidateParticipantToRemove(participant)
	assert.True(t, app_error.IsKind(err, app_error.KindUnremovableEntity))

	participant.EditionRegistrations = []*repository.EditionRegistration{
		{EditionId: 1, Edition: scheduled},
		{EditionId: 2, Edition: ended},
	}
	err = validator.ValidateParticipantToRemove(participant)
	assert.True(t, app_error.IsKind(err, app_error.KindUnremovableEntity))
}

func TestValidateParticipantToChangeStatus(t *testing.T) {
	validator := NewParticipantValidationService()
	participant := &repository.Participant{
		Id: 1,
		EditionRegistrations: []*repository.EditionRegistration{
			{EditionId: 1, Edition: &repository.Edition{Id: 1, Status: repository.StatusEnded}},
		},
	}

	assert.NoError(t, validator.ValidateParticipantToChangeStatus(participant))

	participant.EditionRegistrations = append(participant.EditionRegistrations,
		&repository.EditionRegistration{EditionId: 2, Edition: &repository.Edition{Id: 2, Status: repository.StatusInProgress}})
	err := validator.ValidateParticipantToChangeStatus(participant)
	assert.True(t, app_error.IsKind(err, app_error.KindConflict))
}
