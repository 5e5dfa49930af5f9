// utils/auth.go
package utils

import (
	"errors"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/partnerhub/partnerhub_backend/middleware"
)

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GetPartnerClaims extracts the validated JWT claims from the request
// context.
func GetPartnerClaims(c echo.Context) *middleware.JwtCustomClaims {
	user := c.Get("user")
	if user == nil {
		return nil
	}

	token, ok := user.(*jwt.Token)
	if !ok {
		return nil
	}

	claims, ok := token.Claims.(*middleware.JwtCustomClaims)
	if !ok {
		return nil
	}

	return claims
}

// ExtractPartnerID returns the authenticated partner id, preferring the
// context keys the JWT middleware sets.
func ExtractPartnerID(c echo.Context) (string, error) {
	if partnerID, ok := c.Get("partnerId").(string); ok && partnerID != "" {
		return partnerID, nil
	}

	claims := GetPartnerClaims(c)
	if claims != nil && claims.PartnerID != "" {
		return claims.PartnerID, nil
	}

	return "", errors.New("invalid partner ID in token")
}
