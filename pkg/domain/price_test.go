package domain

import (
	"errors"
	"testing"
)

func TestParsePriceCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"12.99", 1299, true},
		{"4.5", 450, true},
		{"10", 1000, true},
		{" 6.99 ", 699, true},
		{".5", 50, true},
		{"-1.25", -125, true},
		{"", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"1e2", 0, false},
		{"0x10", 0, false},
		{"1.2.3", 0, false},
		{".", 0, false},
	}
	for _, tc := range cases {
		got, err := ParsePriceCents(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Errorf("ParsePriceCents(%q) = %d,%v want %d", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Errorf("ParsePriceCents(%q) expected error", tc.in)
		}
	}
}

func TestAveragePrice(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		got, err := AveragePrice(nil)
		if err != nil || got != 0 {
			t.Fatalf("empty average = %v,%v", got, err)
		}
	})
	t.Run("two", func(t *testing.T) {
		got, err := AveragePrice([]Dish{{Price: "10.00"}, {Price: "20.00"}})
		if err != nil || got != 15.00 {
			t.Fatalf("average = %v,%v want 15.00", got, err)
		}
	})
	t.Run("rounded", func(t *testing.T) {
		got, err := AveragePrice([]Dish{{Price: "12.99"}, {Price: "6.99"}, {Price: "4.50"}})
		if err != nil || got != 8.16 {
			t.Fatalf("average = %v,%v want 8.16", got, err)
		}
	})
	t.Run("sub-cent prices round only the mean", func(t *testing.T) {
		cases := []struct {
			prices []string
			want   float64
		}{
			{[]string{"0.005", "0.004"}, 0},
			{[]string{"0.005", "0.005"}, 0.01},
			{[]string{"1.125"}, 1.13},
			{[]string{"-1.125"}, -1.13},
			{[]string{".5", "1."}, 0.75},
		}
		for _, tc := range cases {
			dishes := make([]Dish, 0, len(tc.prices))
			for _, p := range tc.prices {
				dishes = append(dishes, Dish{Price: p})
			}
			got, err := AveragePrice(dishes)
			if err != nil || got != tc.want {
				t.Errorf("AveragePrice(%v) = %v,%v want %v", tc.prices, got, err, tc.want)
			}
		}
	})
	t.Run("unparseable", func(t *testing.T) {
		_, err := AveragePrice([]Dish{{ID: "a", Price: "1.00"}, {ID: "b", Price: "cheap"}})
		var pe ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("expected ParseError, got %v", err)
		}
		if pe.ID != "b" || pe.Value != "cheap" {
			t.Fatalf("unexpected parse error detail: %+v", pe)
		}
	})
}

func TestFormatPrice(t *testing.T) {
	if got := FormatPrice(8.16); got != "8.16" {
		t.Fatalf("FormatPrice = %s", got)
	}
	if got := FormatPrice(15); got != "15.00" {
		t.Fatalf("FormatPrice = %s", got)
	}
}

func TestErrorHelpers(t *testing.T) {
	wrapped := PersistenceError{Op: "save", Err: errors.New("disk full")}
	if !IsPersistence(wrapped) || IsNotFound(wrapped) {
		t.Fatalf("persistence helpers mismatch")
	}
	if wrapped.Unwrap() == nil || wrapped.Error() == "" {
		t.Fatalf("persistence error must unwrap")
	}
	if !IsNotFound(NotFoundError{ID: "x"}) || !IsParse(ParseError{ID: "x"}) {
		t.Fatalf("typed error helpers mismatch")
	}
}
