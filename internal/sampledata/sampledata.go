// Package sampledata provides the product catalogue used by the evaluator
// tests and examples.
package sampledata

import (
	"time"

	"github.com/shopspring/decimal"
)

// Address is a delivery address of a product.
type Address struct {
	Id           int `gorm:"primaryKey"`
	ProductID    int
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	Country      string
}

// Product is a catalogue entry. A nil Name is stored as NULL.
type Product struct {
	Id           int `gorm:"primaryKey;autoIncrement:false"`
	Name         *string
	Price        decimal.Decimal `gorm:"type:decimal(10,2)"`
	IsOutOfStock bool
	CreationDate time.Time
	Addresses    []Address `gorm:"-"`
}

func name(s string) *string { return &s }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func address(id, productID int, city, state, country string) Address {
	return Address{Id: id, ProductID: productID, AddressLine1: "Rue", AddressLine2: "Line2", City: city, State: state, Country: country}
}

// Products returns a fresh copy of the 26-product catalogue. Products 10
// and 12 have no name; product 26 has an empty one.
func Products() []Product {
	return []Product{
		{1, name("Laptop Pro"), price("999.99"), false, day(2023, 1, 15), []Address{
			address(1, 1, "Paris", "State", "France"),
			address(2, 1, "Brussels", "Liege", "Belgium"),
		}},
		{2, name("Smartphone X"), price("799.49"), true, day(2023, 2, 20), []Address{
			address(3, 2, "Brussels", "State", "Country"),
		}},
		{3, name("Wireless Earbuds"), price("129.99"), false, day(2023, 3, 5), []Address{
			address(4, 3, "Brussels", "State", "Country"),
			address(5, 3, "Amsterdam", "State", "Country"),
		}},
		{4, name("Gaming Console"), price("499.99"), true, day(2023, 4, 10), []Address{
			address(6, 4, "Paris", "State", "Country"),
		}},
		{5, name("4K TV"), price("1199.99"), false, day(2023, 5, 25), []Address{
			address(7, 5, "Paris", "State", "Country"),
		}},
		{6, name("Smartwatch"), price("199.99"), true, day(2023, 6, 30), nil},
		{7, name("Bluetooth Speaker"), price("89.99"), false, day(2023, 7, 15), nil},
		{8, name("Tablet Pro"), price("599.99"), true, day(2023, 8, 20), nil},
		{9, name("Digital Camera"), price("749.99"), false, day(2023, 9, 1), nil},
		{10, nil, price("149.99"), true, day(2023, 10, 10), nil},
		{11, name("E-Reader"), price("129.99"), false, day(2023, 11, 25), nil},
		{12, nil, price("399.99"), true, day(2023, 12, 30), nil},
		{13, name("Drone"), price("899.99"), false, day(2024, 1, 15), nil},
		{14, name("Portable Charger"), price("49.99"), true, day(2024, 2, 20), nil},
		{15, name("Smart Home Hub"), price("199.99"), false, day(2024, 3, 5), nil},
		{16, name("Noise Cancelling Headphones"), price("299.99"), true, day(2024, 4, 10), nil},
		{17, name("Electric Scooter"), price("499.99"), false, day(2024, 5, 25), nil},
		{18, name("Action Camera"), price("249.99"), true, day(2024, 6, 30), nil},
		{19, name("Smart Light Bulb"), price("29.99"), false, day(2024, 7, 15), nil},
		{20, name("Robot Vacuum"), price("399.99"), true, day(2024, 8, 20), nil},
		{21, name("3D Printer"), price("999.99"), false, day(2024, 9, 5), nil},
		{22, name("Electric Toothbrush"), price("79.99"), true, day(2023, 12, 30), nil},
		{23, name("Smart Thermostat"), price("199.99"), false, day(2024, 11, 25), nil},
		{24, name("Security Camera"), price("149.99"), true, day(2023, 12, 30), nil},
		{25, name("Wireless Charger"), price("39.99"), false, day(2025, 1, 15), nil},
		{26, name(""), price("390.99"), true, day(2045, 1, 15), nil},
	}
}

// Addresses returns every product address in id order.
func Addresses() []Address {
	var out []Address
	for _, p := range Products() {
		out = append(out, p.Addresses...)
	}
	return out
}

// Count is one query of the catalogue and the number of products it matches
// in memory. SQLCount differs where NULL names change the outcome of NOT.
type Count struct {
	Query    string
	Expected int
	SQLCount int
}

// Counts lists queries whose results every target must agree on.
func Counts() []Count {
	c := func(q string, n int) Count { return Count{Query: q, Expected: n, SQLCount: n} }
	return []Count{
		c("eq Id 10", 1),
		c("gt Id 10", 16),
		c("gte Id 10", 17),
		c("lt Id 10", 9),
		c("lte Id 10", 10),
		c("eq Price 149.99", 2),
		c("gt Price 199.99", 14),
		c("gte Price 199.99", 17),
		c("lt Price 199.99", 9),
		c("lte Price 199.99", 12),
		c("eq IsOutOfStock false", 13),
		c("not eq IsOutOfStock false", 13),
		c("eq CreationDate 2023-12-30", 3),
		c("gt CreationDate 2023-12-15", 15),
		c("gte CreationDate 2023-12-30", 15),
		c("lt CreationDate 2023-12-15", 11),
		c("lte CreationDate 2023-12-30", 14),
		c("eq Name Smartwatch", 1),
		c("Ct Name Wireless", 2),
		c("start Name Smart", 5),
		c("end Name Camera", 3),
		c("ct Name o", 14),
		c("eq Name ''", 1),
		c("and eq IsOutOfStock true gt Price 300", 6),
		c("or lt Price 50 gt Price 1000", 4),
		{Query: "not eq Name Smartwatch", Expected: 25, SQLCount: 23},
		{Query: "not ct Name Smart", Expected: 21, SQLCount: 19},
	}
}
