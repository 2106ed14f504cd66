package seedrng

import "testing"

func TestHashSeed_Stable(t *testing.T) {
	// FNV-1a reference values.
	if got := HashSeed(""); got != 0x811c9dc5 {
		t.Errorf("HashSeed(\"\") = %#x, want 0x811c9dc5", got)
	}
	if got := HashSeed("a"); got != 0xe40c292c {
		t.Errorf("HashSeed(\"a\") = %#x, want 0xe40c292c", got)
	}
	if HashSeed("exam-1") != HashSeed("exam-1") {
		t.Error("HashSeed not deterministic")
	}
}

func TestNew_SameSeedSameSequence(t *testing.T) {
	a := New("seed-42")
	b := New("seed-42")
	for i := 0; i < 100; i++ {
		va, vb := a.Float64(), b.Float64()
		if va != vb {
			t.Fatalf("step %d: %v != %v", i, va, vb)
		}
		if va < 0 || va >= 1 {
			t.Fatalf("step %d: %v out of [0,1)", i, va)
		}
	}
}

func TestNew_DifferentSeedsDiverge(t *testing.T) {
	a := New("alpha")
	b := New("beta")
	same := 0
	for i := 0; i < 20; i++ {
		if a.Float64() == b.Float64() {
			same++
		}
	}
	if same == 20 {
		t.Error("different seeds produced identical sequences")
	}
}

func TestShuffle_Deterministic(t *testing.T) {
	mk := func() []int {
		s := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
		g := New("shuffle")
		g.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
		return s
	}
	x, y := mk(), mk()
	for i := range x {
		if x[i] != y[i] {
			t.Fatalf("shuffle differs at %d: %v vs %v", i, x, y)
		}
	}
}

func TestWeightedIndex(t *testing.T) {
	g := New("weights")
	if got := g.WeightedIndex(nil); got != -1 {
		t.Errorf("empty weights = %d, want -1", got)
	}
	if got := g.WeightedIndex([]float64{0, 0}); got != -1 {
		t.Errorf("zero weights = %d, want -1", got)
	}
	for i := 0; i < 50; i++ {
		if got := g.WeightedIndex([]float64{0, 3, 0}); got != 1 {
			t.Fatalf("only positive weight at 1, got %d", got)
		}
	}
}

func TestShortID(t *testing.T) {
	a := ShortID("cp", "2.3", "low")
	b := ShortID("cp", "2.3", "low")
	if a != b {
		t.Errorf("ShortID not stable: %q vs %q", a, b)
	}
	if a[:3] != "cp-" {
		t.Errorf("ShortID prefix missing: %q", a)
	}
	if ShortID("cp", "2.3", "medium") == a {
		t.Error("different parts should hash differently")
	}
}
