package boolean45

import "testing"

func TestPairUpMatchesTailsToHeadsInOrder(t *testing.T) {
	// Two tails and two heads, interleaved in val order 0,1,2,3: tails at
	// val 0 and 2, heads at val 1 and 3. Sorted within each half by val,
	// paired index-by-index, so the closer tail/head combination wins.
	input := []edgePos{
		{val: 2, vid: 10, cid: 0, isTail: true},
		{val: 0, vid: 11, cid: 1, isTail: true},
		{val: 3, vid: 20, cid: 2, isTail: false},
		{val: 1, vid: 21, cid: 3, isTail: false},
	}
	got := pairUp(input)
	if len(got) != 2 {
		t.Fatalf("len(pairUp) = %d, want 2", len(got))
	}
	if got[0].Tail != 11 || got[0].Head != 21 {
		t.Errorf("edge 0 = %+v, want tail 11 head 21", got[0])
	}
	if got[1].Tail != 10 || got[1].Head != 20 {
		t.Errorf("edge 1 = %+v, want tail 10 head 20", got[1])
	}
	for _, e := range got {
		if e.Pair != -1 {
			t.Errorf("pairUp must not resolve twins, got Pair=%d", e.Pair)
		}
	}
}

func TestExclusiveScanOffset(t *testing.T) {
	in := []int32{1, 2, 3}
	out := make([]int32, 3)
	exclusiveScan(in, out, 5)
	want := []int32{5, 6, 8}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %d, want %d", i, out[i], want[i])
		}
	}
}
