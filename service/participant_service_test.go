package service

import (
	"cedupscore/app_error"
	"cedupscore/repository"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSaveParticipantRegistersInOpenEdition(t *testing.T) {
	edition, teams := SetUp()
	defer TearDown()
	service := NewParticipantService(db)

	participant, err := service.SaveParticipant(&repository.Participant{
		Name:   "maria silva",
		Cpf:    "52998224725",
		Gender: repository.GenderFemale,
		Type:   repository.TypeStudent,
	}, teams[0].Id)
	assert.NoError(t, err)
	assert.Equal(t, "MARIA SILVA", participant.Name)
	assert.True(t, participant.IsActive)
	assert.Len(t, participant.EditionRegistrations, 1)
	assert.Equal(t, edition.Id, participant.EditionRegistrations[0].EditionId)
	assert.Equal(t, teams[0].Id, participant.EditionRegistrations[0].TeamId)
}

func TestSaveParticipantCpfConflict(t *testing.T) {
	_, teams := SetUp()
	defer TearDown()
	service := NewParticipantService(db)

	createParticipant("52998224725", teams[0].Id)
	_, err := service.SaveParticipant(&repository.Participant{
		Name:   "impostor",
		Cpf:    "529.982.247-25",
		Gender: repository.GenderMale,
		Type:   repository.TypeStudent,
	}, teams[1].Id)
	assert.True(t, app_error.IsKind(err, app_error.KindConflict))

	_, err = service.SaveParticipant(&repository.Participant{
		Name:   "bad document",
		Cpf:    "52998224726",
		Gender: repository.GenderMale,
		Type:   repository.TypeStudent,
	}, teams[1].Id)
	assert.True(t, app_error.IsKind(err, app_error.KindInvalidDocument))
}

func TestSaveParticipantRequiresSingleOpenEdition(t *testing.T) {
	defer TearDown()
	service := NewParticipantService(db)
	team := &repository.Team{Name: "team1", LogoUrl: "https://cdn.example.com/logo1.png", IsActive: true}
	assert.NoError(t, db.Create(team).Error)

	_, err := service.SaveParticipant(&repository.Participant{
		Name:   "no edition yet",
		Cpf:    "52998224725",
		Gender: repository.GenderMale,
		Type:   repository.TypeStudent,
	}, team.Id)
	assert.True(t, app_error.IsKind(err, app_error.KindLifecycleViolation))

	editions := []*repository.Edition{
		{Year: 2026, Status: repository.StatusScheduled},
		{Year: 2027, Status: repository.StatusScheduled},
	}
	assert.NoError(t, db.Create(&editions).Error)

	_, err = service.SaveParticipant(&repository.Participant{
		Name:   "two editions open",
		Cpf:    "52998224725",
		Gender: repository.GenderMale,
		Type:   repository.TypeStudent,
	}, team.Id)
	assert.True(t, app_error.IsKind(err, app_error.KindConflict))
}

func TestRegisterParticipantInEditionOverwrites(t *testing.T) {
	edition, teams := SetUp()
	defer TearDown()
	service := NewParticipantService(db)

	participant := createParticipant("52998224725", teams[0].Id)
	updated, err := service.RegisterParticipantInEdition(participant, edition.Id, teams[1].Id)
	assert.NoError(t, err)
	assert.Len(t, updated.EditionRegistrations, 1)
	assert.Equal(t, teams[1].Id, updated.EditionRegistrations[0].TeamId)

	var count int64
	db.Model(&repository.EditionRegistration{}).Where("participant_id = ?", participant.Id).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestRegisterParticipantInEditionConcurrentInsertConflicts(t *testing.T) {
	edition, teams := SetUp()
	defer TearDown()
	service := NewParticipantService(db)

	participant := createParticipant("52998224725", teams[0].Id)

	// a snapshot loaded without registrations sees nothing to replace,
	// so the insert runs into the (participant, edition) unique index
	stale, err := repository.NewParticipantRepository(db).GetParticipantById(participant.Id)
	assert.NoError(t, err)
	assert.Empty(t, stale.EditionRegistrations)

	_, err = service.RegisterParticipantInEdition(stale, edition.Id, teams[1].Id)
	assert.True(t, app_error.IsKind(err, app_error.KindConflict))

	var count int64
	db.Model(&repository.EditionRegistration{}).Where("participant_id = ?", participant.Id).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestRegisterParticipantInEvent(t *testing.T) {
	edition, teams := SetUp()
	defer TearDown()
	service := NewParticipantService(db)
	maxPerTeam := 1
	event := createEvent(edition.Id, &maxPerTeam)

	first := createParticipant("52998224725", teams[0].Id)
	second := createParticipant("11144477735", teams[0].Id)

	registered, err := service.RegisterParticipantInEvent(first, event.Id, teams[0].Id)
	assert.NoError(t, err)
	assert.Len(t, registered.EventRegistrations, 1)

	// wrong team for the edition
	_, err = service.RegisterParticipantInEvent(second, event.Id, teams[1].Id)
	assert.True(t, app_error.IsKind(err, app_error.KindTeamMismatch))

	// team is full
	_, err = service.RegisterParticipantInEvent(second, event.Id, teams[0].Id)
	assert.True(t, app_error.IsKind(err, app_error.KindCapacityExceeded))
}

func TestRegisterParticipantInEventRequiresScheduledEvent(t *testing.T) {
	edition, teams := SetUp()
	defer TearDown()
	service := NewParticipantService(db)
	event := createEvent(edition.Id, nil)
	participant := createParticipant("52998224725", teams[0].Id)

	db.Model(&repository.Event{}).Where("id = ?", event.Id).Update("status", repository.StatusInProgress)
	_, err := service.RegisterParticipantInEvent(participant, event.Id, teams[0].Id)
	assert.True(t, app_error.IsKind(err, app_error.KindLifecycleViolation))
}

func TestRegisterAllParticipantsInEventPartialFailures(t *testing.T) {
	edition, teams := SetUp()
	defer TearDown()
	service := NewParticipantService(db)
	maxPerTeam := 2
	event := createEvent(edition.Id, &maxPerTeam)

	first := createParticipant("52998224725", teams[0].Id)
	second := createParticipant("11144477735", teams[0].Id)
	third := createParticipant("12345678909", teams[0].Id)
	inactive := createParticipant("98765432100", teams[1].Id)
	_, err := service.SetParticipantActive(inactive.Id, false)
	assert.NoError(t, err)

	requests := []EventRegistrationRequest{
		{ParticipantId: first.Id, TeamId: teams[0].Id},
		{ParticipantId: second.Id, TeamId: teams[0].Id},
		{ParticipantId: third.Id, TeamId: teams[0].Id},
		{ParticipantId: inactive.Id, TeamId: teams[1].Id},
	}
	registered, failures, err := service.RegisterAllParticipantsInEvent(requests, event.Id)
	assert.NoError(t, err)
	assert.Len(t, registered, 2)
	assert.Len(t, failures, 2)

	kinds := map[int]app_error.Kind{}
	for _, failure := range failures {
		kinds[failure.ParticipantId] = failure.Kind
	}
	assert.Equal(t, app_error.KindCapacityExceeded, kinds[third.Id])
	assert.Equal(t, app_error.KindInactiveEntity, kinds[inactive.Id])

	var count int64
	db.Model(&repository.EventRegistration{}).Where("event_id = ?", event.Id).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestRegisterAllParticipantsInEventCountsExistingRegistrations(t *testing.T) {
	edition, teams := SetUp()
	defer TearDown()
	service := NewParticipantService(db)
	maxPerTeam := 2
	event := createEvent(edition.Id, &maxPerTeam)

	first := createParticipant("52998224725", teams[0].Id)
	second := createParticipant("11144477735", teams[0].Id)
	third := createParticipant("12345678909", teams[0].Id)

	_, err := service.RegisterParticipantInEvent(first, event.Id, teams[0].Id)
	assert.NoError(t, err)

	requests := []EventRegistrationRequest{
		{ParticipantId: second.Id, TeamId: teams[0].Id},
		{ParticipantId: third.Id, TeamId: teams[0].Id},
	}
	registered, failures, err := service.RegisterAllParticipantsInEvent(requests, event.Id)
	assert.NoError(t, err)
	assert.Len(t, registered, 1)
	assert.Len(t, failures, 1)
	assert.Equal(t, third.Id, failures[0].ParticipantId)
	assert.Equal(t, app_error.KindCapacityExceeded, failures[0].Kind)
}

func TestRegisterAllParticipantsInEventRepeatedPair(t *testing.T) {
	edition, teams := SetUp()
	defer TearDown()
	service := NewParticipantService(db)
	maxPerTeam := 2
	event := createEvent(edition.Id, &maxPerTeam)

	participant := createParticipant("52998224725", teams[0].Id)

	// the same pair three times: each repetition consumes one capacity
	// slot, the overflow fails on its own without sinking the batch
	requests := []EventRegistrationRequest{
		{ParticipantId: participant.Id, TeamId: teams[0].Id},
		{ParticipantId: participant.Id, TeamId: teams[0].Id},
		{ParticipantId: participant.Id, TeamId: teams[0].Id},
	}
	registered, failures, err := service.RegisterAllParticipantsInEvent(requests, event.Id)
	assert.NoError(t, err)
	assert.Len(t, registered, 2)
	assert.Len(t, failures, 1)
	assert.Equal(t, app_error.KindCapacityExceeded, failures[0].Kind)

	var count int64
	db.Model(&repository.EventRegistration{}).Where("event_id = ?", event.Id).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestRegisterAllParticipantsInEventUnknownIdAbortsBatch(t *testing.T) {
	edition, teams := SetUp()
	defer TearDown()
	service := NewParticipantService(db)
	event := createEvent(edition.Id, nil)
	participant := createParticipant("52998224725", teams[0].Id)

	requests := []EventRegistrationRequest{
		{ParticipantId: participant.Id, TeamId: teams[0].Id},
		{ParticipantId: 999999, TeamId: teams[0].Id},
	}
	_, _, err := service.RegisterAllParticipantsInEvent(requests, event.Id)
	assert.True(t, app_error.IsKind(err, app_error.KindNotFound))

	// nothing is written when the batch aborts
	var count int64
	db.Model(&repository.EventRegistration{}).Where("event_id = ?", event.Id).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestDeleteParticipant(t *testing.T) {
	edition, teams := SetUp()
	defer TearDown()
	service := NewParticipantService(db)
	participant := createParticipant("52998224725", teams[0].Id)

	db.Model(&repository.Edition{}).Where("id = ?", edition.Id).Update("status", repository.StatusInProgress)
	err := service.DeleteParticipant(participant.Id)
	assert.True(t, app_error.IsKind(err, app_error.KindUnremovableEntity))

	db.Model(&repository.Edition{}).Where("id = ?", edition.Id).Update("status", repository.StatusScheduled)
	assert.NoError(t, service.DeleteParticipant(participant.Id))

	err = service.DeleteParticipant(participant.Id)
	assert.True(t, app_error.IsKind(err, app_error.KindNotFound))
}

func TestDeleteEditionRegistrationWithDependents(t *testing.T) {
	edition, teams := SetUp()
	defer TearDown()
	service := NewParticipantService(db)
	event := createEvent(edition.Id, nil)
	participant := createParticipant("52998224725", teams[0].Id)

	registered, err := service.RegisterParticipantInEvent(participant, event.Id, teams[0].Id)
	assert.NoError(t, err)

	editionRegistrationId := registered.EditionRegistrations[0].Id
	_, err = service.DeleteEditionRegistration(participant.Id, editionRegistrationId)
	assert.True(t, app_error.IsKind(err, app_error.KindLifecycleViolation))

	_, err = service.DeleteEventRegistration(participant.Id, registered.EventRegistrations[0].Id)
	assert.NoError(t, err)

	updated, err := service.DeleteEditionRegistration(participant.Id, editionRegistrationId)
	assert.NoError(t, err)
	assert.Len(t, updated.EditionRegistrations, 0)
}

func TestDeleteAllEventRegistrations(t *testing.T) {
	edition, teams := SetUp()
	defer TearDown()
	service := NewParticipantService(db)
	event := createEvent(edition.Id, nil)

	first := createParticipant("52998224725", teams[0].Id)
	second := createParticipant("11144477735", teams[0].Id)
	registeredFirst, err := service.RegisterParticipantInEvent(first, event.Id, teams[0].Id)
	assert.NoError(t, err)
	registeredSecond, err := service.RegisterParticipantInEvent(second, event.Id, teams[0].Id)
	assert.NoError(t, err)

	ids := []int{
		registeredFirst.EventRegistrations[0].Id,
		registeredSecond.EventRegistrations[0].Id,
	}
	db.Model(&repository.Event{}).Where("id = ?", event.Id).Update("status", repository.StatusInProgress)
	err = service.DeleteAllEventRegistrations(event.Id, ids)
	assert.True(t, app_error.IsKind(err, app_error.KindLifecycleViolation))

	db.Model(&repository.Event{}).Where("id = ?", event.Id).Update("status", repository.StatusScheduled)
	assert.NoError(t, service.DeleteAllEventRegistrations(event.Id, ids))

	var count int64
	db.Model(&repository.EventRegistration{}).Where("event_id = ?", event.Id).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestSetParticipantActive(t *testing.T) {
	edition, teams := SetUp()
	defer TearDown()
	service := NewParticipantService(db)
	participant := createParticipant("52998224725", teams[0].Id)

	// requesting the current state is a no-op
	updated, err := service.SetParticipantActive(participant.Id, true)
	assert.NoError(t, err)
	assert.True(t, updated.IsActive)

	db.Model(&repository.Edition{}).Where("id = ?", edition.Id).Update("status", repository.StatusInProgress)
	_, err = service.SetParticipantActive(participant.Id, false)
	assert.True(t, app_error.IsKind(err, app_error.KindConflict))

	db.Model(&repository.Edition{}).Where("id = ?", edition.Id).Update("status", repository.StatusScheduled)
	updated, err = service.SetParticipantActive(participant.Id, false)
	assert.NoError(t, err)
	assert.False(t, updated.IsActive)

	updated, err = service.SetParticipantActive(participant.Id, true)
	assert.NoError(t, err)
	assert.True(t, updated.IsActive)
}

func TestReplaceParticipant(t *testing.T) {
	_, teams := SetUp()
	defer TearDown()
	service := NewParticipantService(db)
	participant := createParticipant("52998224725", teams[0].Id)
	other := createParticipant("11144477735", teams[0].Id)

	_, err := service.ReplaceParticipant(participant.Id, &repository.Participant{
		Name:   "new name",
		Cpf:    other.Cpf,
		Gender: repository.GenderMale,
		Type:   repository.TypeStudent,
	})
	assert.True(t, app_error.IsKind(err, app_error.KindConflict))

	updated, err := service.ReplaceParticipant(participant.Id, &repository.Participant{
		Name:   "new name",
		Cpf:    "12345678909",
		Gender: repository.GenderMale,
		Type:   repository.TypeTeacher,
	})
	assert.NoError(t, err)
	assert.Equal(t, "NEW NAME", updated.Name)
	assert.Equal(t, "12345678909", updated.Cpf)
	assert.Equal(t, repository.TypeTeacher, updated.Type)
}

func TestFindAllParticipantsFilter(t *testing.T) {
	edition, teams := SetUp()
	defer TearDown()
	service := NewParticipantService(db)
	event := createEvent(edition.Id, nil)

	ana := createParticipant("52998224725", teams[0].Id)
	bia := createParticipant("11144477735", teams[0].Id)
	caio := createParticipant("12345678909", teams[1].Id)
	db.Model(&repository.Participant{}).Where("id = ?", ana.Id).Update("name", "ANA")
	db.Model(&repository.Participant{}).Where("id = ?", bia.Id).Update("name", "BIA")
	db.Model(&repository.Participant{}).Where("id = ?", caio.Id).Update("name", "CAIO")

	_, err := service.RegisterParticipantInEvent(ana, event.Id, teams[0].Id)
	assert.NoError(t, err)
	_, err = service.SetParticipantActive(caio.Id, false)
	assert.NoError(t, err)

	found, total, err := service.FindAllParticipants(&repository.ParticipantFilter{TeamId: teams[0].Id, SortOrder: "a-z"}, 10, 0)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "ANA", found[0].Name)
	assert.Equal(t, "BIA", found[1].Name)

	found, total, err = service.FindAllParticipants(&repository.ParticipantFilter{EventId: event.Id}, 10, 0)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, ana.Id, found[0].Id)

	// candidates for the event: registered in the edition but not in the event yet
	found, total, err = service.FindAllParticipants(&repository.ParticipantFilter{
		EditionId:    edition.Id,
		NotInEventId: event.Id,
		Status:       "active",
		SortOrder:    "a-z",
	}, 10, 0)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, bia.Id, found[0].Id)

	found, total, err = service.FindAllParticipants(&repository.ParticipantFilter{Name: "ia"}, 10, 0)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "BIA", found[0].Name)

	// pagination still reports the full total
	found, total, err = service.FindAllParticipants(&repository.ParticipantFilter{SortOrder: "a-z"}, 2, 2)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, found, 1)
	assert.Equal(t, "CAIO", found[0].Name)
}
