package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/helpdesk/internal/http/handler"
	"basegraph.app/helpdesk/internal/http/middleware"
	"basegraph.app/helpdesk/internal/model"
	"basegraph.app/helpdesk/internal/service"
)

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

var _ = Describe("AuthHandler", func() {
	var (
		router *gin.Engine
		auth   *mockAuthService
	)

	BeforeEach(func() {
		auth = sessionAuth()
	})

	JustBeforeEach(func() {
		router = gin.New()
		h := handler.NewAuthHandler(auth, handler.AuthConfig{
			SuccessURL:    "http://localhost:3000/dashboard",
			FailureURL:    "http://localhost:3000/login",
			SessionMaxAge: time.Hour,
		})
		router.GET("/auth/login", h.Login)
		router.GET("/auth/login/callback", h.Callback)
		router.POST("/auth/logout", h.Logout)
		api := router.Group("/api")
		api.Use(middleware.RequireAuth(auth, false))
		api.GET("/user", h.Me)
	})

	Describe("Login", func() {
		It("redirects to the identity provider and sets the state cookie", func() {
			req := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusTemporaryRedirect))
			state := findCookie(w, "portal_oauth_state")
			Expect(state).NotTo(BeNil())
			Expect(state.Value).NotTo(BeEmpty())
			Expect(state.HttpOnly).To(BeTrue())
			raw, err := url.QueryUnescape(state.Value)
			Expect(err).NotTo(HaveOccurred())
			Expect(w.Header().Get("Location")).To(Equal("https://auth.example.com/authorize?state=" + raw))
		})

		It("returns 500 when the authorization URL cannot be built", func() {
			auth.authURLFn = func(_ string) (string, error) {
				return "", errors.New("missing client id")
			}

			req := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
		})
	})

	Describe("Callback", func() {
		callback := func(query string, state string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, "/auth/login/callback?"+query, nil)
			if state != "" {
				req.AddCookie(&http.Cookie{Name: "portal_oauth_state", Value: state})
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			return w
		}

		failureReason := func(w *httptest.ResponseRecorder) string {
			loc, err := url.Parse(w.Header().Get("Location"))
			Expect(err).NotTo(HaveOccurred())
			Expect(loc.Path).To(Equal("/login"))
			return loc.Query().Get("auth_error")
		}

		It("sets the session cookie and redirects to the success URL", func() {
			auth.callbackFn = func(_ context.Context, code string) (*service.CallbackResult, error) {
				Expect(code).To(Equal("abc"))
				s := annSession()
				return &service.CallbackResult{Session: s, Identity: &s.Identity, Token: validToken}, nil
			}

			w := callback("code=abc&state=s1", "s1")

			Expect(w.Code).To(Equal(http.StatusTemporaryRedirect))
			Expect(w.Header().Get("Location")).To(Equal("http://localhost:3000/dashboard"))
			session := findCookie(w, middleware.SessionCookieName)
			Expect(session).NotTo(BeNil())
			Expect(session.Value).To(Equal(validToken))
			Expect(session.MaxAge).To(Equal(3600))
			Expect(session.HttpOnly).To(BeTrue())
		})

		It("rejects a state mismatch", func() {
			w := callback("code=abc&state=s1", "other")

			Expect(w.Code).To(Equal(http.StatusTemporaryRedirect))
			Expect(failureReason(w)).To(Equal("invalid_state"))
		})

		It("rejects a missing state cookie", func() {
			w := callback("code=abc&state=s1", "")

			Expect(failureReason(w)).To(Equal("invalid_state"))
		})

		It("forwards provider errors", func() {
			w := callback("error=access_denied", "")

			Expect(failureReason(w)).To(Equal("access_denied"))
		})

		It("reports a missing code", func() {
			w := callback("state=s1", "s1")

			Expect(failureReason(w)).To(Equal("no_code"))
		})

		It("reports invalid codes", func() {
			auth.callbackFn = func(_ context.Context, _ string) (*service.CallbackResult, error) {
				return nil, service.ErrInvalidCode
			}

			w := callback("code=bad&state=s1", "s1")

			Expect(failureReason(w)).To(Equal("invalid_code"))
			Expect(findCookie(w, middleware.SessionCookieName)).To(BeNil())
		})

		It("reports other callback failures", func() {
			auth.callbackFn = func(_ context.Context, _ string) (*service.CallbackResult, error) {
				return nil, errors.New("creating session: redis down")
			}

			w := callback("code=abc&state=s1", "s1")

			Expect(failureReason(w)).To(Equal("callback_failed"))
		})
	})

	Describe("Logout", func() {
		It("deletes the session and clears the cookie", func() {
			var got string
			auth.logoutFn = func(_ context.Context, token string) error {
				got = token
				return nil
			}

			req := withSessionCookie(httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(got).To(Equal(validToken))
			cleared := findCookie(w, middleware.SessionCookieName)
			Expect(cleared).NotTo(BeNil())
			Expect(cleared.MaxAge).To(BeNumerically("<", 0))
		})

		It("succeeds without a session", func() {
			req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(auth.logoutCalls).To(BeZero())
		})
	})

	Describe("Me", func() {
		It("returns the identity in profile shape", func() {
			req := withSessionCookie(httptest.NewRequest(http.MethodGet, "/api/user", nil))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp struct {
				ID          string `json:"id"`
				DisplayName string `json:"displayName"`
				Emails      []struct {
					Value string `json:"value"`
				} `json:"emails"`
			}
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.ID).To(Equal("u1"))
			Expect(resp.DisplayName).To(Equal("Ann"))
			Expect(resp.Emails).To(HaveLen(1))
			Expect(resp.Emails[0].Value).To(Equal("ann@x.com"))
		})

		It("returns 401 without a session", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp).To(HaveKey("error"))
		})

		It("returns 401 and clears the cookie for a stale session", func() {
			auth.validateFn = func(_ context.Context, _ string) (*model.Session, error) {
				return nil, service.ErrSessionExpired
			}

			req := withSessionCookie(httptest.NewRequest(http.MethodGet, "/api/user", nil))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			Expect(findCookie(w, middleware.SessionCookieName)).NotTo(BeNil())
		})

		It("returns 500 when the session store fails", func() {
			auth.validateFn = func(_ context.Context, _ string) (*model.Session, error) {
				return nil, errors.New("getting session: redis down")
			}

			req := withSessionCookie(httptest.NewRequest(http.MethodGet, "/api/user", nil))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
		})
	})
})
