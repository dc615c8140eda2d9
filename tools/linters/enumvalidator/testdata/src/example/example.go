package example

type Category string

const (
	CategoryGeneral        Category = "General Queries"
	CategoryProductPricing Category = "Product Pricing Queries"
)

type RequestStatus string

const RequestStatusOpen RequestStatus = "open"

type LookupStatus string

const (
	LookupFound    LookupStatus = "found"
	LookupNotFound LookupStatus = "not_found"
)

type Request struct {
	Category Category
	Status   RequestStatus
	Comment  string
}

type LookupResult struct {
	Status LookupStatus
}

func bad() {
	r := &Request{}
	r.Category = "Billing" // want "enum field Category assigned string literal"
	r.Status = "closed"    // want "enum field Status assigned string literal"

	res := LookupResult{}
	res.Status = "found" // want "enum field Status assigned string literal"

	_ = Request{Status: "open"}           // want "enum field Status assigned string literal"
	_ = LookupResult{Status: "transient"} // want "enum field Status assigned string literal"
}

func good() {
	r := &Request{}
	r.Category = CategoryGeneral // OK: using constant
	r.Status = RequestStatusOpen // OK: using constant
	r.Comment = "free text"      // OK: not an enum field

	_ = Request{Category: CategoryProductPricing, Status: RequestStatusOpen, Comment: "hi"}
	_ = LookupResult{Status: LookupNotFound}
}

func alsoGood() {
	// OK: Variable, not literal
	status := LookupFound
	res := LookupResult{Status: status}
	_ = res
}
