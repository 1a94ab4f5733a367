package handler_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"draftly/internal/domain"
	"draftly/internal/handler"
	"draftly/internal/service"
	"draftly/mocks"
)

func TestProviderHandler_List(t *testing.T) {
	providers := new(mocks.MockProviderService)
	h := handler.NewProviderHandler(providers, nil)
	providers.On("Describe", mock.Anything).Return([]service.ProviderInfo{
		{Name: "openrouter", Enabled: true, DefaultModel: "openrouter/auto"},
		{Name: "gemini"},
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/providers", nil)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).Data.(map[string]any)
	assert.Len(t, data["providers"], 2)
}

func TestProviderHandler_Select(t *testing.T) {
	providers := new(mocks.MockProviderService)
	h := handler.NewProviderHandler(providers, nil)
	providers.On("Select", service.SelectInput{Provider: "groq", Model: "mixtral", WorkspaceID: "ws"}).
		Return(&service.Selection{Provider: "groq", Model: "mixtral", WorkspaceID: "ws"}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/providers/select",
		map[string]any{"provider": "groq", "model": "mixtral", "workspace_id": "ws"})

	h.Select(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).Data.(map[string]any)
	assert.Equal(t, true, data["ok"])
	providers.AssertExpectations(t)
}

func TestProviderHandler_Select_NotEnabled(t *testing.T) {
	providers := new(mocks.MockProviderService)
	h := handler.NewProviderHandler(providers, nil)
	providers.On("Select", mock.Anything).
		Return(nil, fmt.Errorf("%w: gemini", domain.ErrProviderNotEnabled))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/providers/select", map[string]any{"provider": "gemini"})

	h.Select(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_PROVIDER", decode(t, w).Error.Code)
}

func TestProviderHandler_Select_MissingProvider(t *testing.T) {
	h := handler.NewProviderHandler(new(mocks.MockProviderService), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/providers/select", map[string]any{"model": "x"})

	h.Select(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProviderHandler_Active_QueryParam(t *testing.T) {
	providers := new(mocks.MockProviderService)
	h := handler.NewProviderHandler(providers, nil)
	providers.On("Active", "acme").Return(service.Selection{Provider: "openai", Model: "gpt-4o-mini", WorkspaceID: "acme"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/providers/active?workspace_id=acme", nil)

	h.Active(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).Data.(map[string]any)
	assert.Equal(t, "openai", data["provider"])
}
