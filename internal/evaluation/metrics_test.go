package evaluation

import (
	"math"
	"testing"
)

func TestHit(t *testing.T) {
	gt := []string{"src.main.org.apache.zookeeper.Foo.bar", "src.main.org.apache.zookeeper.Baz.qux"}

	tests := []struct {
		entry string
		want  bool
	}{
		{"Foo.bar", true},
		{"org.apache.zookeeper.Baz.qux", true},
		{"bar", true},
		{"Bar.bar", false},
		{"Foo.ba", false},
		{"", true},
		{"  ", false},
	}

	for _, tt := range tests {
		t.Run(tt.entry, func(t *testing.T) {
			if got := Hit(tt.entry, gt); got != tt.want {
				t.Errorf("Hit(%q) = %v, want %v", tt.entry, got, tt.want)
			}
		})
	}
}

func TestHit_EmptyEntry(t *testing.T) {
	if !Hit("", []string{"a.b.C.d"}) {
		t.Error(`Hit("", [a.b.C.d]) = false, want true`)
	}
	if Hit("", nil) {
		t.Error(`Hit("", nil) = true, want false`)
	}

	hits := Hits([]string{"x.Y.miss", "", "a.b.C.d"}, []string{"a.b.C.d"})
	if want := []bool{false, true, true}; !equalHits(hits, want) {
		t.Errorf("Hits() = %v, want %v", hits, want)
	}
	if got := ReciprocalRank(hits); got != 0.5 {
		t.Errorf("ReciprocalRank() = %v, want 0.5", got)
	}
}

func equalHits(a, b []bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAveragePrecision(t *testing.T) {
	tests := []struct {
		name string
		hits []bool
		want float64
	}{
		{"no hits", []bool{false, false}, 0},
		{"empty", nil, 0},
		{"first", []bool{true, false, false}, 1},
		{"second", []bool{false, true, false}, 0.5},
		{"first and third", []bool{true, false, true}, (1.0 + 2.0/3.0) / 2},
		{"all", []bool{true, true, true}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AveragePrecision(tt.hits); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("AveragePrecision() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFirstHitRankAndReciprocalRank(t *testing.T) {
	tests := []struct {
		hits     []bool
		wantRank int
		wantRR   float64
	}{
		{[]bool{true}, 1, 1},
		{[]bool{false, false, true}, 3, 1.0 / 3},
		{[]bool{false, false}, 0, 0},
		{nil, 0, 0},
	}

	for _, tt := range tests {
		if got := FirstHitRank(tt.hits); got != tt.wantRank {
			t.Errorf("FirstHitRank(%v) = %d, want %d", tt.hits, got, tt.wantRank)
		}
		if got := ReciprocalRank(tt.hits); got != tt.wantRR {
			t.Errorf("ReciprocalRank(%v) = %v, want %v", tt.hits, got, tt.wantRR)
		}
	}
}

func TestHitWithin(t *testing.T) {
	hits := []bool{false, true, false}

	tests := []struct {
		n    int
		want bool
	}{
		{0, false},
		{1, false},
		{2, true},
		{3, true},
		{10, true},
	}

	for _, tt := range tests {
		if got := HitWithin(hits, tt.n); got != tt.want {
			t.Errorf("HitWithin(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}
