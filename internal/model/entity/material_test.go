package entity

import "testing"

func TestCriticalityForUnitCost(t *testing.T) {
	cases := []struct {
		unitCost float64
		want     string
	}{
		{1500, CriticalityCritical},
		{1000.01, CriticalityCritical},
		{1000, CriticalityHigh}, // 边界值归入下一档
		{600, CriticalityHigh},
		{500, CriticalityMedium},
		{150, CriticalityMedium},
		{100, CriticalityLow},
		{50, CriticalityLow},
		{0, CriticalityLow},
	}

	for _, tc := range cases {
		if got := CriticalityForUnitCost(tc.unitCost); got != tc.want {
			t.Errorf("CriticalityForUnitCost(%v) = %s, want %s", tc.unitCost, got, tc.want)
		}
	}
}
