package pagination

import (
	"net/http/httptest"
	"testing"
)

func TestFromRequest(t *testing.T) {
	cases := []struct {
		query      string
		wantCount  int
		wantLimit  int
		wantOffset int
	}{
		{"", 1, DefaultLimit, 0},
		{"?count=3&limit=5", 3, 5, 10},
		{"?count=0&limit=-2", 1, DefaultLimit, 0},
		{"?count=abc&limit=7", 1, 7, 0},
		{"?count=2&limit=1000", 2, MaxLimit, MaxLimit},
	}

	for _, tc := range cases {
		r := httptest.NewRequest("GET", "/items"+tc.query, nil)
		p := FromRequest(r)
		if p.Count != tc.wantCount || p.Limit != tc.wantLimit {
			t.Fatalf("%q: got count=%d limit=%d", tc.query, p.Count, p.Limit)
		}
		if p.Offset() != tc.wantOffset {
			t.Fatalf("%q: got offset %d want %d", tc.query, p.Offset(), tc.wantOffset)
		}
	}
}

func TestWindowClampsToLength(t *testing.T) {
	p := Params{Count: 3, Limit: 4}
	begin, end := Window(10, p.Limit, p.Offset())
	if begin != 8 || end != 10 {
		t.Fatalf("got [%d:%d] want [8:10]", begin, end)
	}
	begin, end = Window(5, p.Limit, p.Offset())
	if begin != 5 || end != 5 {
		t.Fatalf("got [%d:%d] want [5:5]", begin, end)
	}
	begin, end = Window(5, 10, -3)
	if begin != 0 || end != 5 {
		t.Fatalf("got [%d:%d] want [0:5]", begin, end)
	}
}
