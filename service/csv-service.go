package service

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"cedupscore/repository"

	"gorm.io/gorm"
)

// ParticipantCSVService turns parsed csv rows into per-row outcomes. A bad
// row never aborts the run; every row ends up either in the accepted list or
// in the failure list of the report.
type ParticipantCSVService struct {
	participantService *ParticipantService
	teamRepository     *repository.TeamRepository
}

func NewParticipantCSVService(db *gorm.DB) *ParticipantCSVService {
	return &ParticipantCSVService{
		participantService: NewParticipantService(db),
		teamRepository:     repository.NewTeamRepository(db),
	}
}

type ParticipantRecord struct {
	Line     int
	Name     string
	Cpf      string
	Gender   string
	Type     string
	TeamName string
}

type RowFailure struct {
	Line   int    `json:"line"`
	Cpf    string `json:"cpf"`
	Reason string `json:"reason"`
}

type RegistrationReport struct {
	Total      int                       `json:"total"`
	Registered []*repository.Participant `json:"registered"`
	Failures   []RowFailure              `json:"failures"`
}

type InactivationReport struct {
	Total       int          `json:"total"`
	Inactivated []string     `json:"inactivated"`
	Failures    []RowFailure `json:"failures"`
}

var registrationHeader = []string{"name", "cpf", "gender", "type", "team"}

// ParseParticipantRecords reads rows of (name, cpf, gender, type, team).
// A malformed file is an error; malformed values in a row are not, they are
// reported per row later.
func ParseParticipantRecords(r io.Reader) ([]ParticipantRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("csv file is empty")
	}
	if len(rows[0]) != len(registrationHeader) {
		return nil, fmt.Errorf("expected columns %v", registrationHeader)
	}
	records := make([]ParticipantRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		records = append(records, ParticipantRecord{
			Line:     i + 2,
			Name:     strings.TrimSpace(row[0]),
			Cpf:      strings.TrimSpace(row[1]),
			Gender:   strings.ToUpper(strings.TrimSpace(row[2])),
			Type:     strings.ToUpper(strings.TrimSpace(row[3])),
			TeamName: strings.TrimSpace(row[4]),
		})
	}
	return records, nil
}

// RegisterParticipants runs every record through the single-item creation
// path and collects per-row failures instead of stopping at the first one.
func (s *ParticipantCSVService) RegisterParticipants(records []ParticipantRecord) *RegistrationReport {
	report := &RegistrationReport{
		Total:      len(records),
		Registered: make([]*repository.Participant, 0),
		Failures:   make([]RowFailure, 0),
	}
	teamsByName := make(map[string]*repository.Team)

	for _, record := range records {
		team, ok := teamsByName[record.TeamName]
		if !ok {
			found, err := s.teamRepository.GetTeamByName(record.TeamName)
			if err != nil {
				report.Failures = append(report.Failures, RowFailure{
					Line:   record.Line,
					Cpf:    record.Cpf,
					Reason: fmt.Sprintf("unknown team '%s'", record.TeamName),
				})
				continue
			}
			team = found
			teamsByName[record.TeamName] = team
		}
		participant := &repository.Participant{
			Name:   record.Name,
			Cpf:    record.Cpf,
			Gender: repository.Gender(record.Gender),
			Type:   repository.ParticipantType(record.Type),
		}
		registered, err := s.participantService.SaveParticipant(participant, team.Id)
		if err != nil {
			report.Failures = append(report.Failures, RowFailure{
				Line:   record.Line,
				Cpf:    record.Cpf,
				Reason: err.Error(),
			})
			continue
		}
		report.Registered = append(report.Registered, registered)
	}
	return report
}

// ParseCpfRecords reads a single-column csv of cpfs (with header).
func ParseCpfRecords(r io.Reader) ([]ParticipantRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("csv file is empty")
	}
	records := make([]ParticipantRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		records = append(records, ParticipantRecord{
			Line: i + 2,
			Cpf:  strings.TrimSpace(row[0]),
		})
	}
	return records, nil
}

// InactivateParticipants flips each row's participant to inactive,
// reporting unknown cpfs and already-inactive participants per row.
func (s *ParticipantCSVService) InactivateParticipants(records []ParticipantRecord) *InactivationReport {
	report := &InactivationReport{
		Total:       len(records),
		Inactivated: make([]string, 0),
		Failures:    make([]RowFailure, 0),
	}
	for _, record := range records {
		participant, err := s.participantService.GetParticipantByCpf(record.Cpf)
		if err != nil {
			report.Failures = append(report.Failures, RowFailure{
				Line:   record.Line,
				Cpf:    record.Cpf,
				Reason: err.Error(),
			})
			continue
		}
		if !participant.IsActive {
			report.Failures = append(report.Failures, RowFailure{
				Line:   record.Line,
				Cpf:    record.Cpf,
				Reason: "participant is already inactive",
			})
			continue
		}
		if _, err := s.participantService.SetParticipantActive(participant.Id, false); err != nil {
			report.Failures = append(report.Failures, RowFailure{
				Line:   record.Line,
				Cpf:    record.Cpf,
				Reason: err.Error(),
			})
			continue
		}
		report.Inactivated = append(report.Inactivated, record.Cpf)
	}
	return report
}

// GenerateParticipantsCSV renders participant records back into csv bytes,
// used for the problem-report download.
func GenerateParticipantsCSV(participants []*repository.Participant) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write([]string{"name", "cpf", "gender", "type", "active"}); err != nil {
		return nil, err
	}
	for _, participant := range participants {
		record := []string{
			participant.Name,
			participant.Cpf,
			string(participant.Gender),
			string(participant.Type),
			fmt.Sprintf("%t", participant.IsActive),
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
