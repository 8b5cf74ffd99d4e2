package service

import (
	"cedupscore/config"
	"cedupscore/repository"
	"log"
	"testing"

	"github.com/ory/dockertest/v3"
	"gorm.io/gorm"
)

var db *gorm.DB

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not construct pool: %s", err)
	}

	// uses pool to try to connect to Docker
	err = pool.Client.Ping()
	if err != nil {
		log.Fatalf("Could not connect to Docker: %s", err)
	}

	// pulls an image, creates a container based on it and runs it
	resource, err := pool.Run("postgres", "17.2-alpine", []string{"POSTGRES_USER=postgres", "POSTGRES_PASSWORD=postgres", "DATABASE_NAME=postgres"})
	if err != nil {
		log.Fatalf("Could not start resource: %s", err)
	}
	resource.Expire(600) // Tell docker to hard kill the container in 10 minutes

	// exponential backoff-retry, because the application in the container might not be ready to accept connections yet
	if err := pool.Retry(func() error {
		var err error
		db, err = config.InitDB("localhost", resource.GetPort("5432/tcp"), "postgres", "postgres", "postgres")
		return err
	}); err != nil {
		log.Fatalf("Could not connect to database: %s", err)
	}

	// as of go1.15 testing.M returns the exit code of m.Run(), so it is safe to use defer here
	defer func() {
		if err := pool.Purge(resource); err != nil {
			log.Fatalf("Could not purge resource: %s", err)
		}
	}()
	m.Run()
}

func TearDown() {
	db.Exec("DELETE FROM cedupscore.event_scores")
	db.Exec("DELETE FROM cedupscore.team_scores")
	db.Exec("DELETE FROM cedupscore.event_registrations")
	db.Exec("DELETE FROM cedupscore.edition_registrations")
	db.Exec("DELETE FROM cedupscore.events")
	db.Exec("DELETE FROM cedupscore.participants")
	db.Exec("DELETE FROM cedupscore.teams")
	db.Exec("DELETE FROM cedupscore.editions")
	db.Exec("DELETE FROM cedupscore.users")
}

// SetUp creates one scheduled edition and two active teams, the minimal
// graph most registration tests need.
func SetUp() (*repository.Edition, []*repository.Team) {
	edition := &repository.Edition{
		Year:   2026,
		Status: repository.StatusScheduled,
	}
	if err := db.Create(edition).Error; err != nil {
		log.Fatalf("Error creating edition: %v", err)
	}
	teams := []*repository.Team{
		{Name: "team1", LogoUrl: "https://cdn.example.com/logo1.png", IsActive: true},
		{Name: "team2", LogoUrl: "https://cdn.example.com/logo2.png", IsActive: true},
	}
	if err := db.Create(&teams).Error; err != nil {
		log.Fatalf("Error creating teams: %v", err)
	}
	return edition, teams
}

func createParticipant(cpf string, teamId int) *repository.Participant {
	participant, err := NewParticipantService(db).SaveParticipant(&repository.Participant{
		Name:   "participant " + cpf,
		Cpf:    cpf,
		Gender: repository.GenderMale,
		Type:   repository.TypeStudent,
	}, teamId)
	if err != nil {
		log.Fatalf("Error creating participant: %v", err)
	}
	return participant
}

func createEvent(editionId int, maxPerTeam *int) *repository.Event {
	event := &repository.Event{
		Name:                   "event1",
		Type:                   repository.EventTypeSport,
		Status:                 repository.StatusScheduled,
		EditionId:              editionId,
		MaxParticipantsPerTeam: maxPerTeam,
	}
	if err := db.Create(event).Error; err != nil {
		log.Fatalf("Error creating event: %v", err)
	}
	return event
}
