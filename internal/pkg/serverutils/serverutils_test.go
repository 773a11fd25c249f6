package serverutils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type askRequest struct {
	Question string `validate:"required,max=10"`
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(askRequest{Question: "hi"}))

	err := ValidateRequest(askRequest{})
	var fe *fiber.Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, fiber.StatusBadRequest, fe.Code)
	assert.Equal(t, "Question is required", fe.Message)

	err = ValidateRequest(askRequest{Question: "this is far too long"})
	assert.ErrorContains(t, err, "at most 10")
}

func decode(t *testing.T, body io.Reader) Response {
	t.Helper()
	var r Response
	require.NoError(t, json.NewDecoder(body).Decode(&r))
	return r
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/fiber", func(*fiber.Ctx) error { return fiber.NewError(fiber.StatusBadGateway, "model down") })
	app.Get("/plain", func(*fiber.Ctx) error { return errors.New("boom") })

	resp, err := app.Test(httptest.NewRequest("GET", "/fiber", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
	body := decode(t, resp.Body)
	assert.False(t, body.Success)
	assert.Equal(t, "model down", body.Message)

	resp, err = app.Test(httptest.NewRequest("GET", "/plain", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestJwtMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(NewJwtMiddleware("secret"))
	app.Get("/", func(ctx *fiber.Ctx) error {
		user, _ := ctx.Locals("user_id").(string)
		return ctx.SendString(user)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "analyst-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	b, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "analyst-1", string(b))

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token+"x")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestJwtMiddlewareDisabled(t *testing.T) {
	app := fiber.New()
	app.Use(NewJwtMiddleware(""))
	app.Get("/", func(ctx *fiber.Ctx) error { return ctx.SendStatus(fiber.StatusNoContent) })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}
