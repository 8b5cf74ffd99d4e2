package service

import (
	"cedupscore/app_error"
	"cedupscore/repository"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOpenNewEdition(t *testing.T) {
	defer TearDown()
	service := NewEditionService(db)

	edition, err := service.OpenNewEdition()
	assert.NoError(t, err)
	assert.Equal(t, time.Now().Year(), edition.Year)
	assert.Equal(t, repository.StatusScheduled, edition.Status)

	_, err = service.OpenNewEdition()
	assert.True(t, app_error.IsKind(err, app_error.KindConflict))

	// an ended edition no longer blocks a new one, but the year is taken
	_, err = service.UpdateEditionStatus(edition.Id, repository.StatusInProgress)
	assert.NoError(t, err)
	_, err = service.UpdateEditionStatus(edition.Id, repository.StatusEnded)
	assert.NoError(t, err)
	_, err = service.OpenNewEdition()
	assert.True(t, app_error.IsKind(err, app_error.KindConflict))
}

func TestUpdateEditionStatus(t *testing.T) {
	defer TearDown()
	service := NewEditionService(db)
	edition := &repository.Edition{Year: 2026, Status: repository.StatusScheduled}
	assert.NoError(t, db.Create(edition).Error)

	// scheduled editions cannot end without running
	_, err := service.UpdateEditionStatus(edition.Id, repository.StatusEnded)
	assert.True(t, app_error.IsKind(err, app_error.KindLifecycleViolation))

	updated, err := service.UpdateEditionStatus(edition.Id, repository.StatusInProgress)
	assert.NoError(t, err)
	assert.Equal(t, repository.StatusInProgress, updated.Status)

	// setting the current status again is a no-op
	updated, err = service.UpdateEditionStatus(edition.Id, repository.StatusInProgress)
	assert.NoError(t, err)
	assert.Equal(t, repository.StatusInProgress, updated.Status)

	updated, err = service.UpdateEditionStatus(edition.Id, repository.StatusEnded)
	assert.NoError(t, err)
	assert.Equal(t, repository.StatusEnded, updated.Status)

	// terminal states accept no transition
	_, err = service.UpdateEditionStatus(edition.Id, repository.StatusInProgress)
	assert.True(t, app_error.IsKind(err, app_error.KindLifecycleViolation))
}

func TestDeleteEdition(t *testing.T) {
	defer TearDown()
	service := NewEditionService(db)
	edition := &repository.Edition{Year: 2026, Status: repository.StatusInProgress}
	assert.NoError(t, db.Create(edition).Error)

	err := service.DeleteEdition(edition.Id)
	assert.True(t, app_error.IsKind(err, app_error.KindUnremovableEntity))

	db.Model(&repository.Edition{}).Where("id = ?", edition.Id).Update("status", repository.StatusScheduled)
	assert.NoError(t, service.DeleteEdition(edition.Id))

	_, err = service.GetEditionById(edition.Id)
	assert.True(t, app_error.IsKind(err, app_error.KindNotFound))
}
