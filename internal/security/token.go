package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"spclub/api/internal/models"
)

var ErrInvalidToken = errors.New("invalid token")

// AdminClaims is the self-contained claim set carried by admin bearer tokens.
// Permissions are embedded so request authorization never consults storage;
// a permission revoked mid-lifetime is honored until the token expires.
type AdminClaims struct {
	AdminID     string               `json:"aid"`
	Username    string               `json:"usr"`
	Email       string               `json:"eml"`
	Role        models.AdminRole     `json:"role"`
	Permissions models.PermissionSet `json:"perms"`
	DeviceID    string               `json:"did"`
	jwt.RegisteredClaims
}

func GenerateAdminToken(secret string, admin models.Admin, deviceID string, tokenID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := AdminClaims{
		AdminID:     admin.ID,
		Username:    admin.Username,
		Email:       admin.Email,
		Role:        admin.Role,
		Permissions: admin.Permissions,
		DeviceID:    deviceID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   admin.ID,
			ID:        tokenID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

func ParseAdminToken(tokenStr string, secret string) (*AdminClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims, ok := token.Claims.(*AdminClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}
