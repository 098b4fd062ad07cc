package validation

import (
	"errors"
	"fmt"
	"regexp"

	"thirteen-platform/backend/models"
)

// Common validation errors
var (
	ErrInvalidUUID  = errors.New("invalid UUID format")
	ErrInvalidRange = errors.New("value out of valid range")
)

var uuidRegex = regexp.MustCompile(`^[a-fA-F0-9]{8}-[a-fA-F0-9]{4}-[a-fA-F0-9]{4}-[a-fA-F0-9]{4}-[a-fA-F0-9]{12}$`)

// ValidateUUID validates UUID format
func ValidateUUID(uuid string) error {
	if uuid == "" {
		return errors.New("UUID is required")
	}
	if !uuidRegex.MatchString(uuid) {
		return ErrInvalidUUID
	}
	return nil
}

// ValidateIntRange validates integer is within range
func ValidateIntRange(value, min, max int, field string) error {
	if value < min || value > max {
		return fmt.Errorf("%w: %s must be between %d and %d", ErrInvalidRange, field, min, max)
	}
	return nil
}

// ValidateGameConfig validates the parameters for a new session.
func ValidateGameConfig(cfg models.GameConfig) error {
	if err := ValidateIntRange(cfg.PlayersCount, 2, 4, "players_count"); err != nil {
		return err
	}
	if err := ValidateIntRange(cfg.DeckCount, 1, 4, "deck_count"); err != nil {
		return err
	}
	if err := ValidateIntRange(cfg.TimesShuffled, 0, 20, "times_shuffled"); err != nil {
		return err
	}
	return nil
}
