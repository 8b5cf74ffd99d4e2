package service

import (
	"cedupscore/app_error"
	"cedupscore/repository"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpsertTeamScore(t *testing.T) {
	edition, teams := SetUp()
	defer TearDown()
	service := NewScoreService(db)

	_, err := service.UpsertTeamScore(edition.Id, teams[0].Id, 100, 1, 0)
	assert.True(t, app_error.IsKind(err, app_error.KindLifecycleViolation))

	db.Model(&repository.Edition{}).Where("id = ?", edition.Id).Update("status", repository.StatusInProgress)
	_, err = service.UpsertTeamScore(edition.Id, teams[0].Id, 100, 1, 0)
	assert.NoError(t, err)

	// a second upsert overwrites instead of inserting a second row
	_, err = service.UpsertTeamScore(edition.Id, teams[0].Id, 150, 2, 1)
	assert.NoError(t, err)
	_, err = service.UpsertTeamScore(edition.Id, teams[1].Id, 120, 0, 2)
	assert.NoError(t, err)

	scores, err := service.GetScoreboard(edition.Id)
	assert.NoError(t, err)
	assert.Len(t, scores, 2)
	assert.Equal(t, teams[0].Id, scores[0].TeamId)
	assert.Equal(t, 150, scores[0].Score)
	assert.Equal(t, 2, scores[0].TasksWon)
	assert.Equal(t, teams[1].Id, scores[1].TeamId)
}

func TestUpsertEventScore(t *testing.T) {
	edition, teams := SetUp()
	defer TearDown()
	service := NewScoreService(db)
	event := createEvent(edition.Id, nil)

	_, err := service.UpsertEventScore(event.Id, teams[0].Id, 10)
	assert.True(t, app_error.IsKind(err, app_error.KindLifecycleViolation))

	db.Model(&repository.Event{}).Where("id = ?", event.Id).Update("status", repository.StatusInProgress)
	_, err = service.UpsertEventScore(event.Id, teams[0].Id, 10)
	assert.NoError(t, err)
	_, err = service.UpsertEventScore(event.Id, teams[0].Id, 25)
	assert.NoError(t, err)

	scores, err := service.GetEventScores(event.Id)
	assert.NoError(t, err)
	assert.Len(t, scores, 1)
	assert.Equal(t, 25, scores[0].Score)
}

func TestGetScoreboardUnknownEdition(t *testing.T) {
	defer TearDown()
	service := NewScoreService(db)

	_, err := service.GetScoreboard(999999)
	assert.True(t, app_error.IsKind(err, app_error.KindNotFound))
}
