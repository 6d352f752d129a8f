package internalauth

import (
	"github.com/gofiber/fiber/v2"
)

// Middleware gatekeeps the /internal route group. It must be mounted ahead of
// the internal handlers only; public routes use end-user bearer auth instead.
func Middleware(verifier *Verifier) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		req := Request{
			Method:    ctx.Method(),
			Path:      ctx.OriginalURL(),
			Body:      ctx.Body(),
			Timestamp: ctx.Get(HeaderTimestamp),
			Signature: ctx.Get(HeaderSignature),
			BodyHash:  ctx.Get(HeaderBodyHash),
			LegacyKey: ctx.Get(HeaderLegacyKey),
		}
		if err := verifier.Verify(req); err != nil {
			return err
		}
		return ctx.Next()
	}
}
