package usercontext

import "github.com/gofiber/fiber/v2"

// UserContext represents the authenticated caller of a request
type UserContext struct {
	StudentID  string `json:"student_id"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	IsLoggedIn bool   `json:"is_logged_in"`
}

// GetUserContext retrieves the user context from fiber context
// Returns a default anonymous context if none is set
func GetUserContext(c *fiber.Ctx) UserContext {
	if ctx, ok := c.Locals(KeyUserContext).(UserContext); ok {
		return ctx
	}
	return UserContext{IsLoggedIn: false}
}

// IsLoggedIn checks if the current caller is authenticated
func IsLoggedIn(c *fiber.Ctx) bool {
	return GetUserContext(c).IsLoggedIn
}

// HasRole reports whether the caller has one of roles
func HasRole(c *fiber.Ctx, roles ...string) bool {
	uc := GetUserContext(c)
	if !uc.IsLoggedIn {
		return false
	}
	for _, r := range roles {
		if uc.Role == r {
			return true
		}
	}
	return false
}

// GetStudentID returns the caller's id, or "" if not logged in
func GetStudentID(c *fiber.Ctx) string {
	return GetUserContext(c).StudentID
}
