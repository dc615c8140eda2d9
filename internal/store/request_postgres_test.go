package store_test

import (
	"encoding/json"

	"github.com/jackc/pgx/v5/pgtype"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/helpdesk/internal/model"
)

var _ = Describe("Postgres requester column", func() {
	var (
		types     *pgtype.Map
		requester model.Requester
	)

	BeforeEach(func() {
		types = pgtype.NewMap()
		requester = model.Requester{ExternalID: "u1", DisplayName: "Ann", Email: "ann@x.com"}
	})

	It("encodes the snapshot with the external_id key the history query filters on", func() {
		buf, err := types.Encode(pgtype.JSONBOID, pgtype.TextFormatCode, requester, nil)
		Expect(err).NotTo(HaveOccurred())

		var doc map[string]any
		Expect(json.Unmarshal(buf, &doc)).To(Succeed())
		Expect(doc).To(Equal(map[string]any{
			"external_id":  "u1",
			"display_name": "Ann",
			"email":        "ann@x.com",
		}))
	})

	It("scans the stored document back into a Requester", func() {
		buf, err := types.Encode(pgtype.JSONBOID, pgtype.BinaryFormatCode, requester, nil)
		Expect(err).NotTo(HaveOccurred())

		var scanned model.Requester
		Expect(types.Scan(pgtype.JSONBOID, pgtype.BinaryFormatCode, buf, &scanned)).To(Succeed())
		Expect(scanned).To(Equal(requester))
	})

	It("keeps empty name and email as empty strings", func() {
		buf, err := types.Encode(pgtype.JSONBOID, pgtype.TextFormatCode, model.Requester{ExternalID: "u2"}, nil)
		Expect(err).NotTo(HaveOccurred())

		var scanned model.Requester
		Expect(types.Scan(pgtype.JSONBOID, pgtype.TextFormatCode, buf, &scanned)).To(Succeed())
		Expect(scanned.ExternalID).To(Equal("u2"))
		Expect(scanned.DisplayName).To(BeEmpty())
		Expect(scanned.Email).To(BeEmpty())
	})
})
