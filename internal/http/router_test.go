package httpapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"georisk/internal/layers"
)

type RouterSuite struct {
	suite.Suite
	registry *layers.Registry
	router   http.Handler
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.registry = layers.NewRegistry(layers.DefaultEntries())
	s.router = NewRouter(NewHandler(s.registry, log))
}

func (s *RouterSuite) do(method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func (s *RouterSuite) TestHealth() {
	rec := s.do(http.MethodGet, "/healthz")
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"status":"ok"}`, rec.Body.String())
}

func (s *RouterSuite) TestMetricsExposed() {
	rec := s.do(http.MethodGet, "/metrics")
	s.Equal(http.StatusOK, rec.Code)
}

func (s *RouterSuite) TestListLayers() {
	rec := s.do(http.MethodGet, "/api/layers")
	s.Require().Equal(http.StatusOK, rec.Code)

	var body struct {
		Layers []layers.Entry `json:"layers"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Len(body.Layers, 6)
	s.Equal("risk", body.Layers[0].ID)
	s.True(body.Layers[0].Enabled)
}

func (s *RouterSuite) TestToggle() {
	s.Run("flips and reports the new state", func() {
		rec := s.do(http.MethodPost, "/api/layers/risk/toggle")
		s.Require().Equal(http.StatusOK, rec.Code)
		s.JSONEq(`{"id":"risk","enabled":false}`, rec.Body.String())
		s.False(s.registry.Enabled("risk"))
	})

	s.Run("unknown layer is 404", func() {
		rec := s.do(http.MethodPost, "/api/layers/bogus/toggle")
		s.Equal(http.StatusNotFound, rec.Code)
	})

	s.Run("toggle requires POST", func() {
		rec := s.do(http.MethodGet, "/api/layers/risk/toggle")
		s.Equal(http.StatusMethodNotAllowed, rec.Code)
	})
}
