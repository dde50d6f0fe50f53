package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2024-02-29 ")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.String() != "2024-02-29" {
		t.Fatalf("unexpected date %s", d)
	}
	for _, bad := range []string{"", "2023-02-29", "12/25/2023", "2024-13-01"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("%q expected error", bad)
		}
	}
}

func TestDateEqualIgnoresLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	a := DateOf(time.Date(2025, 3, 10, 23, 30, 0, 0, loc))
	if !a.Equal(NewDate(2025, 3, 10)) {
		t.Fatalf("expected %s to equal 2025-03-10", a)
	}
	if a.Equal(NewDate(2025, 3, 11)) {
		t.Fatalf("expected %s to differ from 2025-03-11", a)
	}
}

func TestDateJSON(t *testing.T) {
	b, err := json.Marshal(NewDate(2025, 7, 4))
	if err != nil || string(b) != `"2025-07-04"` {
		t.Fatalf("unexpected marshal %s (err=%v)", b, err)
	}
	var d Date
	if err := json.Unmarshal([]byte(`"2025-07-04"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !d.Equal(NewDate(2025, 7, 4)) {
		t.Fatalf("unexpected date %s", d)
	}
	if err := json.Unmarshal([]byte(`"07/04/2025"`), &d); err == nil {
		t.Fatalf("expected error for non-ISO date")
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		Date:        NewDate(2025, 1, 1),
		Description: "ok",
		Amount:      decimal.RequireFromString("1.00"),
		Category:    Groceries,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	zero := good
	zero.Amount = decimal.Zero
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero amount should be allowed, got %v", err)
	}

	long := good
	long.Description = strings.Repeat("Organic item 1.99\n", 200)
	if err := long.Validate(); err != nil {
		t.Fatalf("long receipt description should be allowed, got %v", err)
	}

	bads := []Expense{
		{Date: Date{}, Amount: decimal.NewFromInt(1)},
		{Date: NewDate(2025, 1, 1), Amount: decimal.NewFromInt(-1)},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestValidateEnteredDescription(t *testing.T) {
	if err := ValidateEnteredDescription(strings.Repeat("x", MaxEnteredDescriptionLen)); err != nil {
		t.Fatalf("expected ok at the limit, got %v", err)
	}
	err := ValidateEnteredDescription(strings.Repeat("x", MaxEnteredDescriptionLen+1))
	if !errors.Is(err, ErrDescriptionTooLong) {
		t.Fatalf("expected ErrDescriptionTooLong, got %v", err)
	}
}

func TestExpenseUpdateApply(t *testing.T) {
	ref := "receipts/abc.jpg"
	base := Expense{
		ID:          "id-1",
		Amount:      decimal.RequireFromString("10.00"),
		Description: "lunch",
		Category:    FoodAndDining,
		Date:        NewDate(2025, 1, 1),
		Receipt:     &ref,
	}

	desc := "dinner"
	cat := Category("not a category")
	amount := decimal.RequireFromString("12.50")
	clear := ""
	got := ExpenseUpdate{Description: &desc, Category: &cat, Amount: &amount, Receipt: &clear}.Apply(base)

	if got.Description != "dinner" || !got.Amount.Equal(amount) {
		t.Fatalf("unexpected update result: %+v", got)
	}
	if got.Category != Other {
		t.Fatalf("unknown category should coerce to Other, got %q", got.Category)
	}
	if got.Receipt != nil {
		t.Fatalf("empty receipt should clear the reference")
	}
	if base.Description != "lunch" || base.Receipt == nil {
		t.Fatalf("Apply must not mutate its input")
	}
	if !(ExpenseUpdate{}).IsEmpty() {
		t.Fatalf("zero update should be empty")
	}
}

func TestDraftToExpense(t *testing.T) {
	draft := ExpenseDraft{
		StoreName:   "Corner Cafe",
		Items:       []LineItem{{Name: "Latte", Price: decimal.RequireFromString("4.50")}},
		Amount:      decimal.RequireFromString("4.50"),
		Date:        NewDate(2025, 2, 3),
		Description: "Latte 4.50",
		Category:    "food & dining",
	}
	ref := "r1"
	e := draft.ToExpense(&ref)
	if e.Category != FoodAndDining {
		t.Fatalf("expected normalised category, got %q", e.Category)
	}
	if e.StoreName != "Corner Cafe" || len(e.Items) != 1 || e.Receipt == nil || *e.Receipt != "r1" {
		t.Fatalf("unexpected expense: %+v", e)
	}
	draft.Items[0].Name = "changed"
	if e.Items[0].Name != "Latte" {
		t.Fatalf("items must be copied")
	}
}
