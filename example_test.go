package filters_test

import (
	"fmt"

	"github.com/shopspring/decimal"

	filters "github.com/nlstn/go-filters"
)

type book struct {
	Title  string
	Author string
	Price  decimal.Decimal
}

func ExampleParse() {
	opts, _ := filters.NewOptions(
		filters.NewField[string]("Title"),
		filters.NewField[string]("Author"),
		filters.NewField[decimal.Decimal]("Price"),
	)

	f, err := filters.Parse(opts, "and eq author 'Ursula K. Le Guin' lt price 15")
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(filters.Format(f.Root))
	// Output: AND EQ Author 'Ursula K. Le Guin' LT Price 15
}

func ExampleApplyToSlice() {
	opts, _ := filters.NewOptions(
		filters.NewField[string]("Title"),
		filters.NewField[decimal.Decimal]("Price"),
	)
	books := []book{
		{Title: "The Dispossessed", Price: decimal.RequireFromString("12.50")},
		{Title: "The Left Hand of Darkness", Price: decimal.RequireFromString("17.00")},
		{Title: "The Lathe of Heaven", Price: decimal.RequireFromString("9.99")},
	}

	f, _ := filters.Parse(opts, "or start Title 'The L' lt Price 10")
	matches, err := filters.ApplyToSlice(filters.NewPredicateEvaluator(), f, books)
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, b := range matches {
		fmt.Println(b.Title)
	}
	// Output:
	// The Left Hand of Darkness
	// The Lathe of Heaven
}

func ExampleNewParser_reverse() {
	opts, _ := filters.NewOptions(filters.NewField[int]("Pages"))
	p, _ := filters.NewParser(opts, filters.WithReverse())

	f, _ := p.Parse("300 Pages gt")
	fmt.Println(filters.Format(f.Root))
	// Output: GT Pages 300
}
