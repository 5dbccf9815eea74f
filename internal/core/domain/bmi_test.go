package domain

import "testing"

func TestBmiRecord_Category(t *testing.T) {
	cases := []struct {
		height, weight float64
		index          float64
		category       string
	}{
		{180, 55, 17.0, BmiUnderweight},
		{170, 60, 20.8, BmiNormal},
		{170, 75, 26.0, BmiOverweight},
		{160, 90, 35.2, BmiObese},
	}
	for _, tc := range cases {
		r := &BmiRecord{Height: tc.height, Weight: tc.weight}
		if r.Index() != tc.index || r.Category() != tc.category {
			t.Errorf("%vcm/%vkg: got %.1f %s, want %.1f %s", tc.height, tc.weight, r.Index(), r.Category(), tc.index, tc.category)
		}
	}

	if (&BmiRecord{Weight: 70}).Index() != 0 {
		t.Fatalf("expected zero index without height")
	}
}
