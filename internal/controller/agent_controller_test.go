package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"ai-sqlagent-be/internal/dto"
	"ai-sqlagent-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAgentService struct {
	asked    string
	askErr   error
	deleted  uuid.UUID
	historyE []string
}

func (f *fakeAgentService) CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error) {
	return &dto.CreateSessionResponse{Id: uuid.MustParse("11111111-1111-1111-1111-111111111111")}, nil
}

func (f *fakeAgentService) Ask(ctx context.Context, id uuid.UUID, req *dto.AskRequest) (*dto.AskResponse, error) {
	f.asked = req.Question
	if f.askErr != nil {
		return nil, f.askErr
	}
	return &dto.AskResponse{SessionId: id, Route: "sql", Answer: "42", Query: "SELECT 42"}, nil
}

func (f *fakeAgentService) GetHistory(ctx context.Context, id uuid.UUID) (*dto.HistoryResponse, error) {
	return &dto.HistoryResponse{SessionId: id, Entries: f.historyE}, nil
}

func (f *fakeAgentService) GetTurns(ctx context.Context, id uuid.UUID, limit, offset int) ([]*dto.TurnResponse, error) {
	return []*dto.TurnResponse{{Question: "q", Answer: "a"}}, nil
}

func (f *fakeAgentService) DeleteSession(ctx context.Context, id uuid.UUID) error {
	f.deleted = id
	return nil
}

func (f *fakeAgentService) GetCatalog(ctx context.Context) *dto.CatalogResponse {
	return &dto.CatalogResponse{Tables: []dto.TableDTO{{Name: "orders", Columns: []dto.ColumnDTO{}}}}
}

func newTestApp(svc *fakeAgentService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	NewAgentController(svc, nil).RegisterRoutes(app.Group("/api"))
	return app
}

func decode(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestAgentController_Ask(t *testing.T) {
	svc := &fakeAgentService{}
	app := newTestApp(svc)
	id := uuid.New()

	req := httptest.NewRequest("POST", "/api/agent/v1/sessions/"+id.String()+"/ask", strings.NewReader(`{"question":"What is the answer?"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body := decode(t, resp.Body)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "42", data["answer"])
	assert.Equal(t, "SELECT 42", data["query"])
	assert.Equal(t, "What is the answer?", svc.asked)
}

func TestAgentController_AskValidation(t *testing.T) {
	app := newTestApp(&fakeAgentService{})

	req := httptest.NewRequest("POST", "/api/agent/v1/sessions/"+uuid.NewString()+"/ask", strings.NewReader(`{"question":""}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	body := decode(t, resp.Body)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["message"], "Question is required")
}

func TestAgentController_InvalidSessionID(t *testing.T) {
	app := newTestApp(&fakeAgentService{})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/agent/v1/sessions/not-a-uuid/history", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestAgentController_TurnFailureStatus(t *testing.T) {
	app := newTestApp(&fakeAgentService{askErr: fiber.NewError(fiber.StatusBadGateway, "turn failed at route: boom")})

	req := httptest.NewRequest("POST", "/api/agent/v1/sessions/"+uuid.NewString()+"/ask", strings.NewReader(`{"question":"q"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 502, resp.StatusCode)
	assert.Equal(t, "turn failed at route: boom", decode(t, resp.Body)["message"])
}

func TestAgentController_SessionLifecycle(t *testing.T) {
	svc := &fakeAgentService{historyE: []string{"User: hi"}}
	app := newTestApp(svc)

	resp, err := app.Test(httptest.NewRequest("POST", "/api/agent/v1/sessions", nil))
	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)

	id := uuid.New()
	resp, err = app.Test(httptest.NewRequest("GET", "/api/agent/v1/sessions/"+id.String()+"/history", nil))
	require.NoError(t, err)
	data := decode(t, resp.Body)["data"].(map[string]interface{})
	assert.Equal(t, []interface{}{"User: hi"}, data["entries"])

	resp, err = app.Test(httptest.NewRequest("DELETE", "/api/agent/v1/sessions/"+id.String(), nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, id, svc.deleted)
}

func TestAgentController_Catalog(t *testing.T) {
	app := newTestApp(&fakeAgentService{})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/agent/v1/catalog", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	data := decode(t, resp.Body)["data"].(map[string]interface{})
	tables := data["tables"].([]interface{})
	require.Len(t, tables, 1)
	assert.Equal(t, "orders", tables[0].(map[string]interface{})["name"])
}

func TestAgentController_AuthGuard(t *testing.T) {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	NewAgentController(&fakeAgentService{}, serverutils.NewJwtMiddleware("secret")).RegisterRoutes(app.Group("/api"))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/agent/v1/catalog", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}
