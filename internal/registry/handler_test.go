package registry

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/address"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/auth"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/factory"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/middleware"
)

func newTestApp(t *testing.T) (*fiber.App, *auth.Service, fixture) {
	t.Helper()
	fx := newFixture(t)
	catalog := factory.NewCatalog()
	catalog.Register(fx.factory)
	h := NewHandler(fx.registry, func(addr address.Address) (Factory, error) {
		f, err := catalog.Resolve(addr)
		if err != nil {
			return nil, err
		}
		return f, nil
	})

	tokens := auth.NewService("test-secret", time.Hour)
	app := fiber.New()
	r := app.Group("", middleware.CallerAuth(tokens))
	r.Post("/wallets", h.CreateWallet)
	r.Post("/wallets/adopt", h.AddWallet)
	r.Delete("/wallets/:wallet", h.RemoveWallet)
	r.Get("/owners/:owner/wallets", h.Wallets)
	r.Get("/owners/:owner/wallets/index/:index", h.Index)
	r.Get("/owners/:owner/wallets/:wallet", h.Lookup)
	r.Get("/registry", h.Info)
	return app, tokens, fx
}

func call(t *testing.T, app *fiber.App, tokens *auth.Service, caller address.Address, method, path, body string) (int, map[string]any) {
	t.Helper()
	tok, err := tokens.Issue(caller)
	require.NoError(t, err)
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+tok.AccessToken)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	_ = json.Unmarshal(raw, &out)
	return resp.StatusCode, out
}

func TestHandlerCreateListAndRemove(t *testing.T) {
	app, tokens, _ := newTestApp(t)

	status, body := call(t, app, tokens, alice, fiber.MethodPost, "/wallets", `{"delegates":["`+delegate.String()+`"]}`)
	require.Equal(t, fiber.StatusCreated, status)
	created := body["wallet"].(string)
	require.Equal(t, float64(1), body["total"])

	status, body = call(t, app, tokens, alice, fiber.MethodPost, "/wallets/adopt", `{"wallet":"`+walletB.String()+`"}`)
	require.Equal(t, fiber.StatusCreated, status)
	require.Equal(t, float64(2), body["total"])

	status, body = call(t, app, tokens, bob, fiber.MethodGet, "/owners/"+alice.String()+"/wallets", "")
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, []any{created, walletB.String()}, body["wallets"])

	status, body = call(t, app, tokens, bob, fiber.MethodGet, "/owners/"+alice.String()+"/wallets/"+walletB.String(), "")
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, float64(1), body["index"])

	status, _ = call(t, app, tokens, alice, fiber.MethodDelete, "/wallets/"+created, "")
	require.Equal(t, fiber.StatusNoContent, status)

	status, body = call(t, app, tokens, bob, fiber.MethodGet, "/owners/"+alice.String()+"/wallets/index/0", "")
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, walletB.String(), body["wallet"])

	status, _ = call(t, app, tokens, bob, fiber.MethodGet, "/owners/"+alice.String()+"/wallets/index/1", "")
	require.Equal(t, fiber.StatusBadRequest, status)

	status, _ = call(t, app, tokens, alice, fiber.MethodDelete, "/wallets/"+created, "")
	require.Equal(t, fiber.StatusNotFound, status)
}

func TestHandlerCreateErrors(t *testing.T) {
	app, tokens, _ := newTestApp(t)

	status, _ := call(t, app, tokens, alice, fiber.MethodPost, "/wallets", `{"factory":"`+bob.String()+`"}`)
	require.Equal(t, fiber.StatusNotFound, status)

	status, _ = call(t, app, tokens, alice, fiber.MethodPost, "/wallets",
		`{"delegates":["`+delegate.String()+`","`+delegate.String()+`"]}`)
	require.Equal(t, fiber.StatusConflict, status)

	status, _ = call(t, app, tokens, alice, fiber.MethodPost, "/wallets/adopt", `{"wallet":"nope"}`)
	require.Equal(t, fiber.StatusBadRequest, status)

	status, body := call(t, app, tokens, alice, fiber.MethodGet, "/registry", "")
	require.Equal(t, fiber.StatusOK, status)
	require.NotZero(t, body["block_created"])
}

func TestHandlerLookupErrors(t *testing.T) {
	app, tokens, _ := newTestApp(t)

	status, _ := call(t, app, tokens, alice, fiber.MethodPost, "/wallets/adopt", `{"wallet":"`+walletA.String()+`"}`)
	require.Equal(t, fiber.StatusCreated, status)

	status, body := call(t, app, tokens, bob, fiber.MethodGet, "/owners/"+alice.String()+"/wallets/"+walletA.String(), "")
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, float64(0), body["index"])

	// tracked owner, untracked wallet
	status, _ = call(t, app, tokens, bob, fiber.MethodGet, "/owners/"+alice.String()+"/wallets/"+walletB.String(), "")
	require.Equal(t, fiber.StatusNotFound, status)

	// owner with no wallets at all
	status, _ = call(t, app, tokens, alice, fiber.MethodGet, "/owners/"+bob.String()+"/wallets/"+walletA.String(), "")
	require.Equal(t, fiber.StatusNotFound, status)

	status, _ = call(t, app, tokens, alice, fiber.MethodGet, "/owners/"+bob.String()+"/wallets/nope", "")
	require.Equal(t, fiber.StatusBadRequest, status)
}
