package journal

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/ledger/internal/constants"
	lerrors "github.com/julianstephens/ledger/internal/errors"
	"github.com/julianstephens/ledger/internal/logger"
	"github.com/julianstephens/ledger/internal/models"
	"github.com/julianstephens/ledger/internal/storage"
)

// DefaultSettings are used until the user changes anything.
func DefaultSettings() models.Settings {
	return models.Settings{
		Timezone:         constants.DefaultTimezone,
		PatternGrouping:  constants.DefaultPatternGrouping,
		ThemeSuggestions: constants.DefaultThemeSuggestions,
	}
}

func (s *Service) Settings(ctx context.Context) models.Settings {
	return storage.LoadObject(ctx, s.store, constants.SlotSettings, DefaultSettings())
}

// SetSetting validates and stores one setting by key.
func (s *Service) SetSetting(ctx context.Context, key, value string) (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := s.Settings(ctx)
	value = strings.TrimSpace(value)
	switch key {
	case constants.SettingTimezone:
		if value != constants.DefaultTimezone {
			if _, err := time.LoadLocation(value); err != nil {
				return settings, fmt.Errorf("%w: unknown timezone %q", lerrors.ErrInvalidSetting, value)
			}
		}
		settings.Timezone = value
	case constants.SettingPatternGrouping:
		v := strings.ToLower(value)
		if v != constants.GroupingWeek && v != constants.GroupingMonth {
			return settings, fmt.Errorf("%w: pattern grouping must be %q or %q", lerrors.ErrInvalidSetting, constants.GroupingWeek, constants.GroupingMonth)
		}
		settings.PatternGrouping = v
	case constants.SettingThemeSuggestions:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return settings, fmt.Errorf("%w: theme suggestions must be true or false", lerrors.ErrInvalidSetting)
		}
		settings.ThemeSuggestions = b
	default:
		return settings, fmt.Errorf("%w: unknown key %q", lerrors.ErrInvalidSetting, key)
	}

	if err := storage.SaveObject(ctx, s.store, constants.SlotSettings, settings); err != nil {
		return settings, err
	}
	return settings, nil
}

// Location resolves the configured timezone, falling back to time.Local.
func (s *Service) Location(ctx context.Context) *time.Location {
	tz := s.Settings(ctx).Timezone
	if tz == "" || tz == constants.DefaultTimezone {
		return time.Local
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		logger.Warn("Invalid timezone setting, using local time", "timezone", tz, "error", err)
		return time.Local
	}
	return loc
}

func (s *Service) loadReviewNotes(ctx context.Context) []models.ReviewNote {
	return storage.LoadCollection[models.ReviewNote](ctx, s.store, constants.SlotReviewNotes)
}

func (s *Service) ReviewNotes(ctx context.Context) []models.ReviewNote {
	return s.loadReviewNotes(ctx)
}

// ReviewNote returns the note for a pattern period key, or nil.
func (s *Service) ReviewNote(ctx context.Context, period string) *models.ReviewNote {
	for _, n := range s.loadReviewNotes(ctx) {
		if n.Period == period {
			return &n
		}
	}
	return nil
}

// SetReviewNote creates or replaces the note for a period.
func (s *Service) SetReviewNote(ctx context.Context, period, content string) (*models.ReviewNote, error) {
	period = strings.TrimSpace(period)
	content = strings.TrimSpace(content)
	if period == "" || content == "" {
		return nil, lerrors.ErrContentRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	notes := s.loadReviewNotes(ctx)
	var note *models.ReviewNote
	for i := range notes {
		if notes[i].Period == period {
			note = &notes[i]
			break
		}
	}
	if note == nil {
		notes = append(notes, models.ReviewNote{
			ID:        s.newID(),
			Period:    period,
			CreatedAt: now,
		})
		note = &notes[len(notes)-1]
	}
	note.Content = content
	note.UpdatedAt = now

	if err := storage.SaveCollection(ctx, s.store, constants.SlotReviewNotes, notes); err != nil {
		return nil, err
	}
	saved := *note
	return &saved, nil
}
