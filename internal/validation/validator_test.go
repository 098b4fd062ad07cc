package validation

import (
	"errors"
	"testing"

	"thirteen-platform/backend/models"
)

func TestValidateUUID(t *testing.T) {
	if err := ValidateUUID("550e8400-e29b-41d4-a716-446655440000"); err != nil {
		t.Errorf("Expected valid UUID, got %v", err)
	}

	invalid := []string{
		"",
		"not-a-uuid",
		"550e8400e29b41d4a716446655440000",
		"550e8400-e29b-41d4-a716-44665544000Z",
	}
	for _, id := range invalid {
		if err := ValidateUUID(id); err == nil {
			t.Errorf("Expected error for %q", id)
		}
	}
}

func TestValidateGameConfig(t *testing.T) {
	if err := ValidateGameConfig(models.DefaultGameConfig); err != nil {
		t.Errorf("Expected default config to validate, got %v", err)
	}

	tests := []struct {
		name string
		cfg  models.GameConfig
	}{
		{"too few players", models.GameConfig{TimesShuffled: 5, DeckCount: 1, PlayersCount: 1}},
		{"too many players", models.GameConfig{TimesShuffled: 5, DeckCount: 1, PlayersCount: 5}},
		{"zero decks", models.GameConfig{TimesShuffled: 5, DeckCount: 0, PlayersCount: 4}},
		{"too many decks", models.GameConfig{TimesShuffled: 5, DeckCount: 5, PlayersCount: 4}},
		{"negative shuffles", models.GameConfig{TimesShuffled: -1, DeckCount: 1, PlayersCount: 4}},
		{"excessive shuffles", models.GameConfig{TimesShuffled: 21, DeckCount: 1, PlayersCount: 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGameConfig(tt.cfg)
			if !errors.Is(err, ErrInvalidRange) {
				t.Errorf("Expected ErrInvalidRange, got %v", err)
			}
		})
	}
}
