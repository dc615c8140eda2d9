package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/helpdesk/internal/http/handler"
	"basegraph.app/helpdesk/internal/service"
)

var _ = Describe("HealthHandler", func() {
	It("reports store and bridge state", func() {
		svc := &mockHealthService{report: service.HealthReport{
			Status:           "ok",
			StoreState:       service.StoreStateDisconnected,
			BridgeConfigured: true,
		}}
		router := gin.New()
		router.GET("/health", handler.NewHealthHandler(svc).Check)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp).To(Equal(map[string]any{
			"status":           "ok",
			"storeState":       "disconnected",
			"bridgeConfigured": true,
		}))
	})
})
