package service

import (
	"context"
	"elsofra/internal/config"
	"elsofra/internal/db"
	apperrors "elsofra/internal/errors"
	"elsofra/internal/logging"
	"elsofra/internal/utils"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

type ScheduleRepository interface {
	GetByDay(ctx context.Context, day db.Weekday) (*db.ScheduleEntry, error)
	ListSchedule(ctx context.Context) ([]db.ScheduleEntry, error)
	UpsertScheduleEntry(ctx context.Context, entry db.ScheduleEntry) error
}

// ScheduleService answers whether the restaurant serves on a given date.
type ScheduleService struct {
	repo   ScheduleRepository
	logger *zap.Logger
}

func NewScheduleService(repo ScheduleRepository, logger *zap.Logger) *ScheduleService {
	return &ScheduleService{repo: repo, logger: logging.OrNop(logger)}
}

// IsOpen reports the is_open flag of date's weekday. A weekday with no entry
// is treated as closed.
func (s *ScheduleService) IsOpen(ctx context.Context, date time.Time) (bool, error) {
	day := db.WeekdayOf(date)
	entry, err := s.repo.GetByDay(ctx, day)
	if err != nil {
		return false, err
	}
	if entry == nil {
		s.logger.Debug("no schedule entry, treating day as closed", zap.String("day", day.String()))
		return false, nil
	}
	return entry.IsOpen, nil
}

func (s *ScheduleService) List(ctx context.Context) ([]db.ScheduleEntry, error) {
	return s.repo.ListSchedule(ctx)
}

// UpdateDay replaces the opening hours of one weekday.
func (s *ScheduleService) UpdateDay(ctx context.Context, day db.Weekday, isOpen bool, openTime, closeTime string) error {
	entry, err := newScheduleEntry(day, isOpen, openTime, closeTime)
	if err != nil {
		return apperrors.ErrBadRequest(err.Error())
	}
	if err := s.repo.UpsertScheduleEntry(ctx, entry); err != nil {
		return err
	}
	s.logger.Info("schedule updated", zap.String("day", day.String()), zap.Bool("open", isOpen))
	return nil
}

// Seed writes the schedule section of the configuration file.
func (s *ScheduleService) Seed(ctx context.Context, seeds []config.ScheduleSeed) (int, error) {
	for i, seed := range seeds {
		day, ok := db.ParseWeekday(strings.ToLower(strings.TrimSpace(seed.Day)))
		if !ok {
			return i, fmt.Errorf("schedule entry %d: unknown day %q", i, seed.Day)
		}
		if err := s.UpdateDay(ctx, day, seed.Open, seed.OpenTime, seed.CloseTime); err != nil {
			return i, fmt.Errorf("schedule entry %d: %w", i, err)
		}
	}
	return len(seeds), nil
}

func newScheduleEntry(day db.Weekday, isOpen bool, openTime, closeTime string) (db.ScheduleEntry, error) {
	if !day.Valid() {
		return db.ScheduleEntry{}, fmt.Errorf("invalid day %d", day)
	}
	entry := db.ScheduleEntry{DayOfWeek: day, IsOpen: isOpen}
	var err error
	if openTime != "" {
		if entry.OpenTime, err = utils.NormalizeSlot(openTime); err != nil {
			return db.ScheduleEntry{}, fmt.Errorf("open_time: %w", err)
		}
	}
	if closeTime != "" {
		if entry.CloseTime, err = utils.NormalizeSlot(closeTime); err != nil {
			return db.ScheduleEntry{}, fmt.Errorf("close_time: %w", err)
		}
	}
	if isOpen && entry.OpenTime != "" && entry.CloseTime != "" && entry.CloseTime <= entry.OpenTime {
		return db.ScheduleEntry{}, fmt.Errorf("close_time %s must be after open_time %s", entry.CloseTime, entry.OpenTime)
	}
	return entry, nil
}
