package entity

import "testing"

func TestEfficiency(t *testing.T) {
	cases := []struct {
		planned float64
		actual  float64
		want    float64
	}{
		{100, 95, 95},
		{100, 100, 100},
		{100, 120, 120},
		{3, 2, 67},  // 66.67 rounds up
		{3, 1, 33},  // 33.33 rounds down
		{0, 50, 0},  // 计划为0不除零
		{-5, 10, 0}, // 负计划数同样返回0
		{100, 0, 0},
	}

	for _, tc := range cases {
		if got := Efficiency(tc.planned, tc.actual); got != tc.want {
			t.Errorf("Efficiency(%v, %v) = %v, want %v", tc.planned, tc.actual, got, tc.want)
		}
	}
}
