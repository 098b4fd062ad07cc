package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Service struct {
	jwtSecret []byte
}

func NewService(secret string) *Service {
	return &Service{jwtSecret: []byte(secret)}
}

// GenerateSeatToken signs a token binding a player to a session. The
// lifetime matches the session cache TTL.
func (s *Service) GenerateSeatToken(sessionID, playerID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"session_id": sessionID,
		"player_id":  playerID,
		"exp":        time.Now().Add(24 * time.Hour).Unix(),
	})
	return token.SignedString(s.jwtSecret)
}

// ValidateSeatToken checks the signature and that the token was issued for
// exactly this session and player.
func (s *Service) ValidateSeatToken(tokenString, sessionID, playerID string) error {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return errors.New("invalid token")
	}
	tokenSession, _ := claims["session_id"].(string)
	tokenPlayer, _ := claims["player_id"].(string)
	if tokenSession != sessionID || tokenPlayer != playerID {
		return errors.New("token does not match session")
	}
	return nil
}
