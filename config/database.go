package config

import (
	model "cedupscore/repository"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

var enumQueries = []string{
	`CREATE TYPE cedupscore.status AS ENUM ('SCHEDULED', 'IN_PROGRESS', 'ENDED', 'CANCELED')`,
	`CREATE TYPE cedupscore.gender AS ENUM ('MALE', 'FEMALE')`,
	`CREATE TYPE cedupscore.participant_type AS ENUM ('STUDENT', 'TEACHER', 'PARENT')`,
	`CREATE TYPE cedupscore.event_type AS ENUM ('SPORT', 'TASK', 'NORMAL')`,
}

func InitDB(host string, port string, user string, password string, dbName string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbName)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   "cedupscore.",
			SingularTable: false,
		},
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	x := db.Exec(`CREATE SCHEMA IF NOT EXISTS cedupscore`)
	if x.Error != nil {
		return nil, x.Error
	}
	for _, query := range enumQueries {
		x := db.Exec(query)
		if x.Error != nil {
			if strings.Contains(x.Error.Error(), "already exists") {
				continue
			}
			return nil, x.Error
		}
	}

	err = db.AutoMigrate(
		&model.Edition{},
		&model.Event{},
		&model.Team{},
		&model.Participant{},
		&model.EditionRegistration{},
		&model.EventRegistration{},
		&model.TeamScore{},
		&model.EventScore{},
		&model.User{},
	)
	if err != nil {
		return nil, err
	}
	return db, nil
}
