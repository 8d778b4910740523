package extraction

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("extractAmount", func() {
	DescribeTable("labeled and unlabeled amounts",
		func(text string, expected *float64) {
			amount := extractAmount(text)
			if expected == nil {
				Expect(amount).To(BeNil())
			} else {
				Expect(amount).To(HaveValue(Equal(*expected)))
			}
		},
		Entry("prefers total over a larger dollar amount", "total: $12.00\nvisa $500.00", ptr(12.00)),
		Entry("prefers total over amount", "amount: $3.00\ntotal: $9.00", ptr(9.00)),
		Entry("falls through a label without a number", "amount due $9.00\nbalance: $3.00", ptr(3.00)),
		Entry("uses amount with a colon", "balance: $3.00\namount: $9.00", ptr(9.00)),
		Entry("falls back to balance", "balance $7.50", ptr(7.50)),
		Entry("ignores subtotal as a label", "subtotal: $20.00\ntax $1.60\ntotal: $21.60", ptr(21.60)),
		Entry("skips an out-of-range labeled value", "total: 12345.00\n$8.00", ptr(8.00)),
		Entry("accepts thousands separators", "total: $1,234.50", ptr(1234.50)),
		Entry("rejects zero", "total: $0.00", noAmount),
		Entry("returns nil without candidates", "no money here", noAmount),
		Entry("filters out-of-range dollar tokens", "$99999.00 $4.00", ptr(4.00)),
	)

	It("should never return a value outside (0, 10000)", func() {
		for _, text := range []string{"$0", "$10000", "total: 10000", "$-5.00", "balance: 0.00"} {
			Expect(extractAmount(text)).To(BeNil(), text)
		}
	})
})

var _ = Describe("extractDate", func() {
	var parser *Parser

	BeforeEach(func() {
		parser = NewParserWithDeps(nil, fixedClock{now: time.Date(2024, 6, 1, 18, 30, 0, 0, time.UTC)}, DefaultYearPivot)
	})

	DescribeTable("date candidates",
		func(text string, expected *string) {
			date := parser.extractDate(text)
			if expected == nil {
				Expect(date).To(BeNil())
			} else {
				Expect(date).To(HaveValue(Equal(*expected)))
			}
		},
		Entry("month/day/year", "03/15/2024", ptr("2024-03-15")),
		Entry("year-month-day", "2024-03-15", ptr("2024-03-15")),
		Entry("day/month/year when month/day is impossible", "25/03/2024", ptr("2024-03-25")),
		Entry("month/day first when both readings are valid", "04/05/2024", ptr("2024-04-05")),
		Entry("two-digit year at or below the pivot", "01/10/24", ptr("2024-01-10")),
		Entry("today", "06/01/2024", ptr("2024-06-01")),
		Entry("exactly one year ago", "06/01/2023", ptr("2023-06-01")),
		Entry("one day more than a year ago", "05/31/2023", noDate),
		Entry("tomorrow reread as day/month", "06/02/2024", ptr("2024-02-06")),
		Entry("later this month", "06/20/2024", noDate),
		Entry("calendar-invalid date", "02/30/2024", noDate),
		Entry("skips an out-of-window match for a later one", "01/01/2019 and 2024-02-29", ptr("2024-02-29")),
		Entry("orders matches by position", "2024-05-01 then 05/02/2024", ptr("2024-05-01")),
		Entry("no digits", "no date here", noDate),
	)

	It("should map two-digit years above the pivot to the 1900s", func() {
		p := NewParserWithDeps(nil, fixedClock{now: time.Date(1999, 6, 1, 0, 0, 0, 0, time.UTC)}, DefaultYearPivot)
		Expect(p.extractDate("03/15/99")).To(HaveValue(Equal("1999-03-15")))
	})

	It("should honor a custom pivot", func() {
		p := NewParserWithDeps(nil, fixedClock{now: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}, 10)
		Expect(p.extractDate("03/15/24")).To(BeNil())
	})
})

var _ = Describe("extractStoreName", func() {
	var parser *Parser

	BeforeEach(func() {
		parser = NewParser()
	})

	DescribeTable("store lines",
		func(lines []string, expected string) {
			Expect(parser.extractStoreName(lines)).To(Equal(expected))
		},
		Entry("known merchant beats an earlier header", []string{"Welcome", "Store 42", "WALGREENS #123"}, "Walgreens 123"),
		Entry("merchant only within the first five lines", []string{"$1.00", "total", "01/01/24", "abc", "x", "Walgreens"}, ""),
		Entry("skips short, amount and date lines", []string{"Hi", "Total $4.00", "Main Street Outlet Mall"}, "Main Street Outlet"),
		Entry("fallback limited to three lines", []string{"ab", "$1.00", "01/02/2024", "Real Name"}, ""),
		Entry("keeps ampersands and apostrophes", []string{"Bob's Eyes & Ears!!"}, "Bob's Eyes &"),
		Entry("hyphen does not start a new word", []string{"RITE-AID PHARMACY"}, "Rite-aid Pharmacy"),
		Entry("only the first letter is upper case", []string{"3M Hearing Center"}, "3m Hearing Center"),
		Entry("no lines", []string{}, ""),
	)
})

var _ = Describe("extractLineItems", func() {
	It("should keep description and price in order", func() {
		items := extractLineItems([]string{"Aspirin 100ct $8.99", "Bandages 3.49", "Tax 0.00", "ab 4.00", "Brace $1,049.00"})
		Expect(items).To(Equal([]LineItem{
			{Description: "Aspirin 100ct", Price: 8.99},
			{Description: "Bandages", Price: 3.49},
			{Description: "Brace", Price: 1049.00},
		}))
	})

	It("should ignore lines without a trailing decimal price", func() {
		Expect(extractLineItems([]string{"123 Main St", "Qty 2", "03/12/2024"})).To(BeEmpty())
	})
})

var _ = Describe("suggestCategory", func() {
	var parser *Parser

	BeforeEach(func() {
		parser = NewParser()
	})

	DescribeTable("keyword groups",
		func(store, text string, expected Category) {
			Expect(parser.suggestCategory(store, text)).To(Equal(expected))
		},
		Entry("pharmacy by store", "Rite Aid", "", Pharmacy),
		Entry("pharmacy by content", "", "rx #1234", Pharmacy),
		Entry("pharmacy outranks dental", "Smile Dental", "prescription mouthwash", Pharmacy),
		Entry("dental by content", "", "crown prep", Dental),
		Entry("vision by store", "Family Optical", "", Vision),
		Entry("vision by content", "", "contacts 6pk", Vision),
		Entry("medical device by content", "", "glucose meter", MedicalDevice),
		Entry("doctor visit by store", "Northside Clinic", "", DoctorVisit),
		Entry("doctor visit by content", "", "office visit", DoctorVisit),
		Entry("nothing matches", "Corner Store", "snacks", Other),
	)
})

var _ = Describe("ParseCategory", func() {
	It("should canonicalize case and whitespace", func() {
		c, ok := ParseCategory("  medical device ")
		Expect(ok).To(BeTrue())
		Expect(c).To(Equal(MedicalDevice))
	})

	It("should report unknown categories", func() {
		c, ok := ParseCategory("groceries")
		Expect(ok).To(BeFalse())
		Expect(c).To(Equal(Other))
	})

	It("should list six categories in priority order", func() {
		Expect(Categories()).To(Equal([]Category{Pharmacy, Dental, Vision, MedicalDevice, DoctorVisit, Other}))
	})
})

var (
	noAmount *float64
	noDate   *string
)

func ptr[T any](v T) *T {
	return &v
}
