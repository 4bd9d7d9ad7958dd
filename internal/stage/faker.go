//-------------------------------------------------------------------------
//
// pgEdge Book Sales Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package stage

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// Faker provides book listing data using gofakeit.
type Faker struct {
	faker *gofakeit.Faker
}

// NewFaker creates a new Faker with a random seed.
func NewFaker() *Faker {
	return &Faker{
		faker: gofakeit.New(uint64(time.Now().UnixNano())),
	}
}

// NewFakerWithSeed creates a new Faker with a specific seed for reproducibility.
func NewFakerWithSeed(seed uint64) *Faker {
	return &Faker{
		faker: gofakeit.New(seed),
	}
}

// Top level categories, as on the crawled storefront.
var topCategories = []string{"Domestic Books", "Foreign Books"}

var bindings = []string{"Paperback", "Hardcover", "Box Set"}

var languages = []string{"Vietnamese", "English", "French", "Japanese"}

// Title generates a book title.
func (f *Faker) Title() string {
	return f.faker.BookTitle()
}

// Author generates an author name.
func (f *Faker) Author() string {
	if f.faker.Float64Range(0, 1) < 0.5 {
		return f.faker.BookAuthor()
	}
	return f.faker.Name()
}

// Publisher generates a publisher name.
func (f *Faker) Publisher() string {
	return f.faker.Company() + " Publishing"
}

// Supplier generates a supplier name.
func (f *Faker) Supplier() string {
	return f.faker.Company()
}

// Category returns a three-level category path. The third level is
// sometimes absent.
func (f *Faker) Category() (string, string, string) {
	c1 := Choose(f, topCategories)
	c2 := f.faker.BookGenre()
	c3 := ""
	if f.Int(0, 3) > 0 {
		c3 = Choose(f, bindings)
	}
	return c1, c2, c3
}

// Language returns a listing language, mostly Vietnamese.
func (f *Faker) Language() string {
	return ChooseWeighted(f, languages, []int{70, 20, 5, 5})
}

// Dimensions returns a "W x H x D cm" size string.
func (f *Faker) Dimensions() string {
	return fmt.Sprintf("%d x %d x %.1f cm", f.Int(13, 24), f.Int(18, 30), f.Float64(0.5, 4.5))
}

// URL returns a listing URL for a title.
func (f *Faker) URL(title string) string {
	return "https://books.example.com/" + Slug(title) + "-" + f.faker.DigitN(6) + ".html"
}

// Price returns an original price in dong, rounded to the nearest thousand.
func (f *Faker) Price() float64 {
	return math.Round(f.faker.Float64Range(30, 600)) * 1000
}

// Discount returns a discount percentage.
func (f *Faker) Discount() float64 {
	return ChooseWeighted(f, []float64{0, 10, 15, 20, 25, 30, 40}, []int{20, 25, 20, 15, 10, 7, 3})
}

// Rating returns an average rating and its count. Unrated books get zeros.
func (f *Faker) Rating() (float64, int32) {
	if f.Int(0, 4) == 0 {
		return 0, 0
	}
	rating := math.Round(f.faker.Float64Range(3, 5)*10) / 10
	return rating, int32(f.Int(1, 800))
}

// Sold returns a cumulative sold count skewed towards small values.
func (f *Faker) Sold() int32 {
	switch ChooseWeighted(f, []int{0, 1, 2, 3}, []int{10, 50, 30, 10}) {
	case 0:
		return 0
	case 1:
		return int32(f.Int(1, 99))
	case 2:
		return int32(f.Int(100, 999))
	default:
		return int32(f.Int(1000, 25000))
	}
}

// SoldText renders a sold count the way the storefront shows it.
func SoldText(n int32) string {
	if n < 1000 {
		return fmt.Sprintf("Đã bán %d", n)
	}
	k := fmt.Sprintf("%.1f", float64(n)/1000)
	k = strings.TrimSuffix(k, ".0")
	return "Đã bán " + strings.ReplaceAll(k, ".", ",") + "k"
}

// Int generates a random integer between min and max (inclusive).
func (f *Faker) Int(min, max int) int {
	return f.faker.IntRange(min, max)
}

// Float64 generates a random float64 between min and max.
func (f *Faker) Float64(min, max float64) float64 {
	return f.faker.Float64Range(min, max)
}

// DateRange generates a random time within a range.
func (f *Faker) DateRange(start, end time.Time) time.Time {
	return f.faker.DateRange(start, end)
}

// Choose returns a random element from the given slice.
func Choose[T any](f *Faker, items []T) T {
	if len(items) == 0 {
		var zero T
		return zero
	}
	return items[f.Int(0, len(items)-1)]
}

// ChooseWeighted returns a random element based on weights.
func ChooseWeighted[T any](f *Faker, items []T, weights []int) T {
	if len(items) == 0 || len(weights) == 0 {
		var zero T
		return zero
	}

	totalWeight := 0
	for _, w := range weights {
		totalWeight += w
	}

	r := f.Int(1, totalWeight)
	cumulative := 0
	for i, w := range weights {
		cumulative += w
		if r <= cumulative {
			return items[i]
		}
	}

	return items[len(items)-1]
}

// Slug lowercases s and joins its alphanumeric words with dashes.
func Slug(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
	return strings.Join(fields, "-")
}
