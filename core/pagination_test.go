package core

import "testing"

func TestPage_Clamp(t *testing.T) {
	tests := []struct {
		name string
		page Page
		want Page
	}{
		{name: "zero values", page: Page{}, want: Page{Number: 1, Size: 10}},
		{name: "negatives", page: Page{Number: -3, Size: -1}, want: Page{Number: 1, Size: 10}},
		{name: "in range", page: Page{Number: 4, Size: 25}, want: Page{Number: 4, Size: 25}},
		{name: "oversized", page: Page{Number: 1, Size: 5000}, want: Page{Number: 1, Size: MaxPageSize}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.page.Clamp(10)
			if tt.page != tt.want {
				t.Errorf("Clamp() = %+v; want %+v", tt.page, tt.want)
			}
		})
	}
}

func TestPage_Slice(t *testing.T) {
	tests := []struct {
		name   string
		page   Page
		n      int
		wantLo int
		wantHi int
	}{
		{name: "first page", page: Page{Number: 1, Size: 10}, n: 25, wantLo: 0, wantHi: 10},
		{name: "last partial page", page: Page{Number: 3, Size: 10}, n: 25, wantLo: 20, wantHi: 25},
		{name: "page past the end", page: Page{Number: 4, Size: 10}, n: 25, wantLo: 25, wantHi: 25},
		{name: "empty collection", page: Page{Number: 1, Size: 10}, n: 0, wantLo: 0, wantHi: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := tt.page.Slice(tt.n)
			if lo != tt.wantLo || hi != tt.wantHi {
				t.Errorf("Slice(%d) = (%d, %d); want (%d, %d)", tt.n, lo, hi, tt.wantLo, tt.wantHi)
			}
		})
	}
}
