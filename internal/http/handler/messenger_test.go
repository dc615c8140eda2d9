package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/helpdesk/internal/http/handler"
	"basegraph.app/helpdesk/internal/http/middleware"
	"basegraph.app/helpdesk/internal/model"
	"basegraph.app/helpdesk/internal/service"
)

var _ = Describe("MessengerHandler", func() {
	It("returns the boot payload for the session", func() {
		svc := &mockMessengerService{bootFn: func(session *model.Session) (*service.MessengerBoot, error) {
			return &service.MessengerBoot{
				AppID:     "app_1",
				UserID:    session.Identity.ExternalID,
				Name:      session.Identity.DisplayName,
				Email:     session.Identity.PrimaryEmail(),
				CreatedAt: 1700000000,
				UserHash:  "abc",
			}, nil
		}}
		router := gin.New()
		router.GET("/api/messenger", middleware.RequireAuth(sessionAuth(), false), handler.NewMessengerHandler(svc).Boot)

		req := withSessionCookie(httptest.NewRequest(http.MethodGet, "/api/messenger", nil))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp).To(HaveKeyWithValue("appId", "app_1"))
		Expect(resp).To(HaveKeyWithValue("userId", "u1"))
		Expect(resp).To(HaveKeyWithValue("email", "ann@x.com"))
		Expect(resp).To(HaveKeyWithValue("userHash", "abc"))
	})

	It("returns 401 when no session reached the handler", func() {
		router := gin.New()
		router.GET("/api/messenger", handler.NewMessengerHandler(&mockMessengerService{}).Boot)

		req := httptest.NewRequest(http.MethodGet, "/api/messenger", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})
})
