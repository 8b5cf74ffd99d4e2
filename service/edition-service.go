package service

import (
	"cedupscore/app_error"
	"cedupscore/repository"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type EditionService struct {
	editionRepository *repository.EditionRepository
}

func NewEditionService(db *gorm.DB) *EditionService {
	return &EditionService{
		editionRepository: repository.NewEditionRepository(db),
	}
}

func (s *EditionService) GetEditionById(editionId int) (*repository.Edition, error) {
	edition, err := s.editionRepository.GetEditionById(editionId)
	if err != nil {
		return nil, notFoundOr(err, "edition")
	}
	return edition, nil
}

func (s *EditionService) GetEditionByYear(year int) (*repository.Edition, error) {
	edition, err := s.editionRepository.GetEditionByYear(year)
	if err != nil {
		return nil, notFoundOr(err, "edition")
	}
	return edition, nil
}

func (s *EditionService) FindAllEditions() ([]*repository.Edition, error) {
	return s.editionRepository.FindAll()
}

// OpenNewEdition starts a SCHEDULED edition for the current year. Only one
// edition may be open (non-ended, non-canceled) at a time.
func (s *EditionService) OpenNewEdition() (*repository.Edition, error) {
	open, err := s.editionRepository.FindByStatusNotIn(repository.StatusEnded, repository.StatusCanceled)
	if err != nil {
		return nil, err
	}
	if len(open) > 0 {
		return nil, app_error.Conflict(fmt.Sprintf("edition %d is still open", open[0].Year))
	}
	edition := &repository.Edition{
		Year:   time.Now().Year(),
		Status: repository.StatusScheduled,
	}
	saved, err := s.editionRepository.Save(edition)
	if err != nil {
		return nil, duplicateOr(err, fmt.Sprintf("an edition for %d already exists", edition.Year))
	}
	return saved, nil
}

var allowedTransitions = map[repository.Status][]repository.Status{
	repository.StatusScheduled:  {repository.StatusInProgress, repository.StatusCanceled},
	repository.StatusInProgress: {repository.StatusEnded, repository.StatusCanceled},
	repository.StatusEnded:      {},
	repository.StatusCanceled:   {},
}

func validTransition(from repository.Status, to repository.Status) bool {
	for _, status := range allowedTransitions[from] {
		if status == to {
			return true
		}
	}
	return false
}

func (s *EditionService) UpdateEditionStatus(editionId int, status repository.Status) (*repository.Edition, error) {
	edition, err := s.GetEditionById(editionId)
	if err != nil {
		return nil, err
	}
	if edition.Status == status {
		return edition, nil
	}
	if !validTransition(edition.Status, status) {
		return nil, app_error.LifecycleViolation("edition",
			fmt.Sprintf("cannot move edition from %s to %s", edition.Status, status))
	}
	edition.Status = status
	return s.editionRepository.Save(edition)
}

// DeleteEdition removes an edition that never started.
func (s *EditionService) DeleteEdition(editionId int) error {
	edition, err := s.GetEditionById(editionId)
	if err != nil {
		return err
	}
	if edition.Status != repository.StatusScheduled {
		return app_error.Unremovable("edition", "only scheduled editions can be removed")
	}
	return s.editionRepository.Delete(edition)
}
