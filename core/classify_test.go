package core

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestClassifyBoundaryIsCircular(t *testing.T) {
	p := Classify([]float64{0, 0.1, 0.1000001, 0.9})
	if !reflect.DeepEqual(p.Circular, []int{0, 1}) {
		t.Fatalf("circular = %v, want [0 1]", p.Circular)
	}
	if !reflect.DeepEqual(p.Eccentric, []int{2, 3}) {
		t.Fatalf("eccentric = %v, want [2 3]", p.Eccentric)
	}
}

func TestClassifyIsOrderPreservingPartition(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	eccs := make([]float64, 500)
	for i := range eccs {
		eccs[i] = rng.Float64() * 0.3
	}
	p := Classify(eccs)
	if p.Len() != len(eccs) {
		t.Fatalf("partition covers %d of %d sources", p.Len(), len(eccs))
	}

	seen := make(map[int]bool, len(eccs))
	for _, set := range [][]int{p.Circular, p.Eccentric} {
		for j, i := range set {
			if seen[i] {
				t.Fatalf("index %d classified twice", i)
			}
			seen[i] = true
			if j > 0 && set[j-1] >= i {
				t.Fatalf("indices not ascending: %d then %d", set[j-1], i)
			}
		}
	}
	for _, i := range p.Circular {
		if eccs[i] > CircularEccentricityMax {
			t.Fatalf("index %d (ecc %v) classified circular", i, eccs[i])
		}
	}
	for _, i := range p.Eccentric {
		if eccs[i] <= CircularEccentricityMax {
			t.Fatalf("index %d (ecc %v) classified eccentric", i, eccs[i])
		}
	}
}

func TestClassifyEmpty(t *testing.T) {
	p := Classify(nil)
	if p.Circular == nil || p.Eccentric == nil {
		t.Fatalf("expected non-nil empty index sets")
	}
	if p.Len() != 0 {
		t.Fatalf("Len = %d, want 0", p.Len())
	}
}
