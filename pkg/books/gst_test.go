package books

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSplitInclusive(t *testing.T) {
	cases := []struct {
		total, rate string
		base, gst   string
	}{
		{"1180", "18", "1000", "180"},
		{"118", "18", "100", "18"},
		{"100", "18", "84.75", "15.25"},
		{"105", "5", "100", "5"},
		{"112", "12", "100", "12"},
		{"128", "28", "100", "28"},
		{"1", "18", "0.85", "0.15"},
		{"0.01", "18", "0.01", "0"},
		{"999999.99", "18", "847457.62", "152542.37"},
	}
	for _, c := range cases {
		total := decimal.RequireFromString(c.total)
		rate := decimal.RequireFromString(c.rate)
		base, gst := SplitInclusive(total, rate)
		if base.String() != c.base {
			t.Errorf("SplitInclusive(%s, %s%%) base = %s, want %s", c.total, c.rate, base, c.base)
		}
		if gst.String() != c.gst {
			t.Errorf("SplitInclusive(%s, %s%%) gst = %s, want %s", c.total, c.rate, gst, c.gst)
		}
		if !base.Add(gst).Equal(total) {
			t.Errorf("SplitInclusive(%s, %s%%): base %s + gst %s != total", c.total, c.rate, base, gst)
		}
	}
}

func TestSplitInclusiveAlwaysReconstructs(t *testing.T) {
	rates := []string{"5", "12", "18", "28"}
	for cents := int64(1); cents < 2000; cents += 37 {
		total := decimal.New(cents, -2)
		for _, r := range rates {
			base, gst := SplitInclusive(total, decimal.RequireFromString(r))
			if !base.Add(gst).Equal(total) {
				t.Fatalf("rate %s%%: %s + %s != %s", r, base, gst, total)
			}
		}
	}
}
