package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestRegistrationHandlerListRequiresTermID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewRegistrationHandler(nil, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/registrations", nil)
	c.Request = req

	h.List(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegistrationHandlerRegisterInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewRegistrationHandler(nil, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/registrations/register", bytes.NewReader([]byte(`not json`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.Register(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegistrationHandlerExportRequiresTermID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewRegistrationHandler(nil, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/registrations/export", nil)
	c.Request = req

	h.Export(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
