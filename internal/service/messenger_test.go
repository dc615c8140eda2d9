package service_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/helpdesk/internal/model"
	"basegraph.app/helpdesk/internal/service"
)

var _ = Describe("MessengerService", func() {
	var session *model.Session

	BeforeEach(func() {
		session = &model.Session{
			ID:        42,
			Identity:  model.Identity{ExternalID: "user_01", DisplayName: "Ann", Emails: []string{"ann@x.com", "a@alt.com"}},
			CreatedAt: time.Unix(1700000000, 0).UTC(),
		}
	})

	It("should describe the signed-in user", func() {
		svc := service.NewMessengerService(service.MessengerConfig{AppID: "app_1"})

		boot, err := svc.Boot(session)

		Expect(err).NotTo(HaveOccurred())
		Expect(boot.AppID).To(Equal("app_1"))
		Expect(boot.UserID).To(Equal("user_01"))
		Expect(boot.Name).To(Equal("Ann"))
		Expect(boot.Email).To(Equal("ann@x.com"))
		Expect(boot.CreatedAt).To(Equal(int64(1700000000)))
		Expect(boot.UserHash).To(BeEmpty())
	})

	It("should sign the user id when identity verification is configured", func() {
		svc := service.NewMessengerService(service.MessengerConfig{AppID: "app_1", IdentitySecret: "verify"})

		boot, err := svc.Boot(session)

		Expect(err).NotTo(HaveOccurred())
		h := hmac.New(sha256.New, []byte("verify"))
		h.Write([]byte("user_01"))
		Expect(boot.UserHash).To(Equal(hex.EncodeToString(h.Sum(nil))))
	})

	It("should refuse anonymous callers", func() {
		svc := service.NewMessengerService(service.MessengerConfig{})

		_, err := svc.Boot(nil)

		Expect(err).To(MatchError(service.ErrUnauthenticated))
	})
})
