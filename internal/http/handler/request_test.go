package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/helpdesk/internal/http/handler"
	"basegraph.app/helpdesk/internal/http/middleware"
	"basegraph.app/helpdesk/internal/model"
	"basegraph.app/helpdesk/internal/service"
)

const validToken = "101.valid"

func annSession() *model.Session {
	return &model.Session{
		ID:        101,
		Identity:  model.Identity{ExternalID: "u1", DisplayName: "Ann", Emails: []string{"ann@x.com"}},
		CreatedAt: time.Now().Add(-time.Hour),
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func sessionAuth() *mockAuthService {
	return &mockAuthService{
		validateFn: func(_ context.Context, token string) (*model.Session, error) {
			if token != validToken {
				return nil, service.ErrInvalidSession
			}
			return annSession(), nil
		},
	}
}

func withSessionCookie(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: validToken})
	return req
}

var _ = Describe("RequestHandler", func() {
	var (
		router *gin.Engine
		svc    *mockRequestService
		prod   bool
	)

	BeforeEach(func() {
		svc = &mockRequestService{}
		prod = false
	})

	JustBeforeEach(func() {
		router = gin.New()
		h := handler.NewRequestHandler(svc, prod)
		api := router.Group("/api/requests")
		api.Use(middleware.RequireAuth(sessionAuth(), false))
		api.POST("", h.Submit)
		api.GET("/:category", h.List)
	})

	submit := func(body string, authenticated bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/requests", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		if authenticated {
			withSessionCookie(req)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	Describe("Submit", func() {
		It("returns 200 with the request id and sync flag", func() {
			svc.submitFn = func(_ context.Context, category, comment string, identity *model.Identity) (*service.SubmitResult, error) {
				Expect(category).To(Equal("General Queries"))
				Expect(comment).To(Equal("How do I reset my password?"))
				Expect(identity.ExternalID).To(Equal("u1"))
				return &service.SubmitResult{RequestID: 1234567890123456789, BridgeSynced: true}, nil
			}

			w := submit(`{"category":"General Queries","comment":"How do I reset my password?"}`, true)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["success"]).To(BeTrue())
			Expect(resp["intercomSuccess"]).To(BeTrue())
			Expect(resp["requestId"]).To(Equal("1234567890123456789"))
		})

		It("uses the session identity and ignores the user object in the body", func() {
			var got *model.Identity
			svc.submitFn = func(_ context.Context, _, _ string, identity *model.Identity) (*service.SubmitResult, error) {
				got = identity
				return &service.SubmitResult{RequestID: 1}, nil
			}

			w := submit(`{"category":"General Queries","comment":"hi","user":{"id":"attacker","displayName":"Mallory"}}`, true)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(got.ExternalID).To(Equal("u1"))
			Expect(got.DisplayName).To(Equal("Ann"))
		})

		It("still returns 200 when the helpdesk sync failed", func() {
			svc.submitFn = func(_ context.Context, _, _ string, _ *model.Identity) (*service.SubmitResult, error) {
				return &service.SubmitResult{RequestID: 7, BridgeSynced: false}, nil
			}

			w := submit(`{"category":"General Queries","comment":"hi"}`, true)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["success"]).To(BeTrue())
			Expect(resp["intercomSuccess"]).To(BeFalse())
		})

		It("returns 401 without a session and never calls the service", func() {
			svc.submitFn = func(_ context.Context, _, _ string, _ *model.Identity) (*service.SubmitResult, error) {
				Fail("service should not be called")
				return nil, nil
			}

			w := submit(`{"category":"General Queries","comment":"hi"}`, false)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})

		It("returns 400 on a malformed body", func() {
			w := submit(`{`, true)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		DescribeTable("maps validation errors to 400",
			func(err error) {
				svc.submitFn = func(_ context.Context, _, _ string, _ *model.Identity) (*service.SubmitResult, error) {
					return nil, err
				}

				w := submit(`{"category":"x","comment":""}`, true)

				Expect(w.Code).To(Equal(http.StatusBadRequest))
				var resp map[string]any
				Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
				Expect(resp).To(HaveKey("error"))
			},
			Entry("invalid category", service.ErrInvalidCategory),
			Entry("empty comment", service.ErrEmptyComment),
			Entry("comment too long", service.ErrCommentTooLong),
		)

		Context("when the store fails", func() {
			BeforeEach(func() {
				svc.submitFn = func(_ context.Context, _, _ string, _ *model.Identity) (*service.SubmitResult, error) {
					return nil, errors.New("creating request: connection refused")
				}
			})

			It("returns 500 with details outside production", func() {
				w := submit(`{"category":"General Queries","comment":"hi"}`, true)

				Expect(w.Code).To(Equal(http.StatusInternalServerError))
				var resp map[string]any
				Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
				Expect(resp["error"]).To(Equal("Server error"))
				Expect(resp["details"]).To(ContainSubstring("connection refused"))
			})

			Context("in production", func() {
				BeforeEach(func() { prod = true })

				It("hides the details", func() {
					w := submit(`{"category":"General Queries","comment":"hi"}`, true)

					Expect(w.Code).To(Equal(http.StatusInternalServerError))
					var resp map[string]any
					Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
					Expect(resp).NotTo(HaveKey("details"))
				})
			})
		})
	})

	Describe("List", func() {
		list := func(path string, authenticated bool) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			if authenticated {
				withSessionCookie(req)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			return w
		}

		It("returns the caller's requests in camelCase", func() {
			contact, conversation := "c-1", "conv-1"
			created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
			svc.listFn = func(_ context.Context, category string, identity *model.Identity) ([]model.Request, error) {
				Expect(category).To(Equal("General Queries"))
				Expect(identity.ExternalID).To(Equal("u1"))
				return []model.Request{{
					ID:                     42,
					Category:               model.Category("General Queries"),
					Comment:                "How do I reset my password?",
					Requester:              model.Requester{ExternalID: "u1", DisplayName: "Ann", Email: "ann@x.com"},
					Status:                 model.RequestStatusOpen,
					ExternalContactID:      &contact,
					ExternalConversationID: &conversation,
					CreatedAt:              created,
				}}, nil
			}

			w := list("/api/requests/General%20Queries", true)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp []map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp).To(HaveLen(1))
			Expect(resp[0]["id"]).To(Equal("42"))
			Expect(resp[0]["status"]).To(Equal("open"))
			Expect(resp[0]["intercomContactId"]).To(Equal("c-1"))
			Expect(resp[0]["intercomConversationId"]).To(Equal("conv-1"))
			Expect(resp[0]["user"]).To(HaveKeyWithValue("email", "ann@x.com"))
			Expect(resp[0]["createdAt"]).To(Equal("2024-05-01T12:00:00Z"))
		})

		It("returns an empty JSON array when nothing matches", func() {
			w := list("/api/requests/product-pricing-queries", true)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(Equal("[]"))
		})

		It("omits correlation ids for unsynced requests", func() {
			svc.listFn = func(_ context.Context, _ string, _ *model.Identity) ([]model.Request, error) {
				return []model.Request{{ID: 1, Category: model.Category("General Queries"), Status: model.RequestStatusOpen}}, nil
			}

			w := list("/api/requests/General%20Queries", true)

			var resp []map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp[0]).NotTo(HaveKey("intercomContactId"))
			Expect(resp[0]).NotTo(HaveKey("intercomConversationId"))
		})

		It("returns 401 without a session", func() {
			w := list("/api/requests/General%20Queries", false)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})

		It("returns 400 for an unknown category", func() {
			svc.listFn = func(_ context.Context, _ string, _ *model.Identity) ([]model.Request, error) {
				return nil, service.ErrInvalidCategory
			}

			w := list("/api/requests/Billing", true)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 500 when the store fails", func() {
			svc.listFn = func(_ context.Context, _ string, _ *model.Identity) ([]model.Request, error) {
				return nil, errors.New("listing requests: timeout")
			}

			w := list("/api/requests/General%20Queries", true)

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
		})
	})
})
