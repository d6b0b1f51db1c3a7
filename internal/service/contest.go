package service

import (
	"fmt"
	"strings"

	"contestbot/internal/domain"
	"contestbot/internal/repository"

	"go.uber.org/zap"
)

// ContestService handles operator commands over existing contests
type ContestService struct {
	contestRepo repository.ContestRepository
	logger      *zap.Logger
}

// NewContestService creates a new contest service
func NewContestService(contestRepo repository.ContestRepository, logger *zap.Logger) *ContestService {
	return &ContestService{
		contestRepo: contestRepo,
		logger:      logger,
	}
}

// ListActive returns active contests ordered by id
func (s *ContestService) ListActive() ([]domain.ContestSummary, error) {
	return s.contestRepo.ListActive()
}

// Get returns a contest, archived or not
func (s *ContestService) Get(id int64) (*domain.Contest, error) {
	return s.contestRepo.Get(id)
}

// Edit changes the name and/or button text of a contest.
// Blank values are treated as "leave unchanged".
func (s *ContestService) Edit(id int64, name, buttonText string) error {
	var update domain.ContestUpdate
	if v := strings.TrimSpace(name); v != "" {
		update.Name = &v
	}
	if v := strings.TrimSpace(buttonText); v != "" {
		update.ButtonText = &v
	}

	if err := s.contestRepo.UpdateFields(id, update); err != nil {
		return fmt.Errorf("edit contest %d: %w", id, err)
	}

	s.logger.Info("Contest edited",
		zap.Int64("contest_id", id),
		zap.Bool("name_changed", update.Name != nil),
		zap.Bool("button_text_changed", update.ButtonText != nil),
	)
	return nil
}

// Archive retires a contest; it disappears from listings but stays readable
func (s *ContestService) Archive(id int64) error {
	if err := s.contestRepo.Archive(id); err != nil {
		return fmt.Errorf("archive contest %d: %w", id, err)
	}

	s.logger.Info("Contest archived", zap.Int64("contest_id", id))
	return nil
}

// Report renders every stored field of a contest
func (s *ContestService) Report(id int64) (string, error) {
	c, err := s.contestRepo.Get(id)
	if err != nil {
		return "", fmt.Errorf("report contest %d: %w", id, err)
	}
	return FormatReport(c), nil
}

// FormatReport renders the statistics message of a contest
func FormatReport(c *domain.Contest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Статистика конкурса ID %d:\n", c.ID)
	fmt.Fprintf(&b, "Название: %s\n", c.Name)
	fmt.Fprintf(&b, "Текст кнопки: %s\n", c.ButtonText)
	fmt.Fprintf(&b, "Тип: %s\n", c.Type.Title())
	fmt.Fprintf(&b, "Канал: %s\n", domain.ChannelRef(c.ChannelID))
	if c.PostLink != "" {
		fmt.Fprintf(&b, "Пост: %s\n", c.PostLink)
	}
	fmt.Fprintf(&b, "Показывать количество: %s\n", yesNo(c.ShowCount))
	fmt.Fprintf(&b, "Активен: %s\n", yesNo(c.Active))
	fmt.Fprintf(&b, "Участников: %d\n", c.ParticipantCount)
	return b.String()
}

// FormatList renders the active contests listing
func FormatList(contests []domain.ContestSummary) string {
	if len(contests) == 0 {
		return "Нет активных конкурсов."
	}

	var b strings.Builder
	b.WriteString("Активные конкурсы:\n")
	for _, c := range contests {
		fmt.Fprintf(&b, "%d: %s\n", c.ID, c.Name)
	}
	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "Да"
	}
	return "Нет"
}
