package repository

import (
	"gorm.io/gorm"
)

// ParticipantFilter collects the supported filter clauses for participant
// listings. Zero values mean "no clause"; all set clauses are combined
// conjunctively.
type ParticipantFilter struct {
	Name         string
	EditionId    int
	EventId      int
	NotInEventId int
	TeamId       int
	Gender       Gender
	Type         ParticipantType
	Status       string // "active" or "inactive"
	SortOrder    string // "a-z", "z-a" or empty
}

func (f *ParticipantFilter) Scopes() []func(*gorm.DB) *gorm.DB {
	scopes := make([]func(*gorm.DB) *gorm.DB, 0)
	if f.Name != "" {
		name := "%" + f.Name + "%"
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("participants.name ILIKE ?", name)
		})
	}
	if f.EditionId != 0 {
		editionId := f.EditionId
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where(`EXISTS (
				SELECT 1 FROM cedupscore.edition_registrations er
				WHERE er.participant_id = participants.id AND er.edition_id = ?)`, editionId)
		})
	}
	if f.TeamId != 0 {
		teamId := f.TeamId
		editionId := f.EditionId
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			if editionId != 0 {
				return db.Where(`EXISTS (
					SELECT 1 FROM cedupscore.edition_registrations er
					WHERE er.participant_id = participants.id AND er.team_id = ? AND er.edition_id = ?)`, teamId, editionId)
			}
			return db.Where(`EXISTS (
				SELECT 1 FROM cedupscore.edition_registrations er
				WHERE er.participant_id = participants.id AND er.team_id = ?)`, teamId)
		})
	}
	if f.EventId != 0 {
		eventId := f.EventId
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where(`EXISTS (
				SELECT 1 FROM cedupscore.event_registrations evr
				WHERE evr.participant_id = participants.id AND evr.event_id = ?)`, eventId)
		})
	}
	if f.NotInEventId != 0 {
		eventId := f.NotInEventId
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where(`NOT EXISTS (
				SELECT 1 FROM cedupscore.event_registrations evr
				WHERE evr.participant_id = participants.id AND evr.event_id = ?)`, eventId)
		})
	}
	if f.Gender != "" {
		gender := f.Gender
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("participants.gender = ?", gender)
		})
	}
	if f.Type != "" {
		participantType := f.Type
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("participants.type = ?", participantType)
		})
	}
	if f.Status != "" {
		active := f.Status == "active"
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("participants.is_active = ?", active)
		})
	}
	return scopes
}

func (f *ParticipantFilter) Order() string {
	switch f.SortOrder {
	case "a-z":
		return "participants.name ASC"
	case "z-a":
		return "participants.name DESC"
	default:
		return "participants.id DESC"
	}
}
