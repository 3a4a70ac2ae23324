package pagination

import "testing"

func TestNormalizeLimit(t *testing.T) {
	cases := map[int]int{0: DefaultLimit, -3: DefaultLimit, 10: 10, MaxLimit + 1: MaxLimit}
	for in, want := range cases {
		if got := NormalizeLimit(in); got != want {
			t.Fatalf("NormalizeLimit(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestWindow(t *testing.T) {
	start, end := Params{Limit: 10, Offset: 5}.Window(12)
	if start != 5 || end != 12 {
		t.Fatalf("expected [5,12), got [%d,%d)", start, end)
	}

	start, end = Params{Offset: 50}.Window(12)
	if start != 12 || end != 12 {
		t.Fatalf("expected empty window at 12, got [%d,%d)", start, end)
	}
}
