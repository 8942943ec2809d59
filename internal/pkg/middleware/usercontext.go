package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/ManuelReschke/LearnFox/app/models"
	"github.com/ManuelReschke/LearnFox/internal/pkg/usercontext"
)

// Claims is the bearer token payload. The subject is the student id.
type Claims struct {
	Role string `json:"role"`
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// ParseToken validates a token and returns its claims.
func ParseToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// UserContextMiddleware sets the user context for every request from the
// bearer token. Requests without a valid token continue as anonymous.
func UserContextMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		anonymous := usercontext.UserContext{IsLoggedIn: false}

		tokenString := bearerToken(c)
		if tokenString == "" || secret == "" {
			c.Locals(usercontext.KeyUserContext, anonymous)
			return c.Next()
		}

		claims, err := ParseToken(secret, tokenString)
		if err != nil {
			c.Locals(usercontext.KeyUserContext, anonymous)
			return c.Next()
		}

		role := claims.Role
		if role == "" {
			role = models.ROLE_STUDENT
		}
		c.Locals(usercontext.KeyUserContext, usercontext.UserContext{
			StudentID:  claims.Subject,
			Name:       claims.Name,
			Role:       role,
			IsLoggedIn: true,
		})
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) string {
	auth := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
