package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/auth"
)

func TestCallerRateLimit(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	tokens := auth.NewService("test-secret", time.Hour)
	app := fiber.New()
	app.Use(CallerAuth(tokens))
	app.Use(CallerRateLimit(cache, 2))
	app.Post("/x", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	app.Get("/x", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	send := func(method string, who string) int {
		req := httptest.NewRequest(method, "/x", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+who)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		return resp.StatusCode
	}

	aliceTok, _ := tokens.Issue(alice)
	bobTok, _ := tokens.Issue(bob)

	for i := 0; i < 2; i++ {
		if got := send(fiber.MethodPost, aliceTok.AccessToken); got != fiber.StatusNoContent {
			t.Fatalf("request %d: expected 204 got %d", i, got)
		}
	}
	if got := send(fiber.MethodPost, aliceTok.AccessToken); got != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", got)
	}
	if got := send(fiber.MethodGet, aliceTok.AccessToken); got != fiber.StatusOK {
		t.Fatalf("reads must not be limited, got %d", got)
	}
	if got := send(fiber.MethodPost, bobTok.AccessToken); got != fiber.StatusNoContent {
		t.Fatalf("other callers have their own budget, got %d", got)
	}
}
