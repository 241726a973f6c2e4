package token

import "testing"

func TestCompare(t *testing.T) {
	a := Range{Start: Position{Line: 1, Column: 1}, End: Position{Line: 1, Column: 5}}
	b := Range{Start: Position{Line: 1, Column: 3}, End: Position{Line: 1, Column: 4}}
	c := Range{Start: Position{Line: 2, Column: 1}, End: Position{Line: 2, Column: 2}}

	tests := []struct {
		x, y Range
		want int
	}{
		{a, b, -1},
		{b, a, 1},
		{a, a, 0},
		{c, a, 1},
	}
	for _, tt := range tests {
		if got := Compare(tt.x, tt.y); got != tt.want {
			t.Errorf("Compare(%s, %s) = %d, want %d", tt.x, tt.y, got, tt.want)
		}
	}
	if !a.Contains(b) {
		t.Errorf("%s should contain %s", a, b)
	}
	if a.Contains(c) {
		t.Errorf("%s should not contain %s", a, c)
	}
}
