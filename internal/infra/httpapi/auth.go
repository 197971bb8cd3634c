package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"shopping-list/internal/domain"
)

// requireBearer guards a route group with a static shared secret. name is the
// environment variable the secret comes from and appears in the error when it
// is unset.
func requireBearer(secret, name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ok, err := domain.VerifyBearer(c.Get(fiber.HeaderAuthorization), secret)
		if err != nil {
			return domain.WrapError(domain.KindConfiguration, "Missing "+name, err)
		}
		if !ok {
			return domain.NewError(domain.KindAuth, "Unauthorized")
		}
		return c.Next()
	}
}
