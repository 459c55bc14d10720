package gpu

import "testing"

func TestRectFromPoints(t *testing.T) {
	// corners may come in any order
	r := RectFromPoints(Vec2f{10, 2}, Vec2f{4, 8})

	if r.Min != (Vec2f{4, 2}) || r.Max != (Vec2f{10, 8}) {
		t.Errorf("rect = %v, want {4 2}..{10 8}", r)
	}

	if r.Width() != 6 || r.Height() != 6 {
		t.Errorf("size = %v, want {6 6}", r.Size())
	}
}

func TestRectIntersect(t *testing.T) {
	a := Rect2f{Min: Vec2f{0, 0}, Max: Vec2f{4, 4}}
	b := Rect2f{Min: Vec2f{2, 2}, Max: Vec2f{6, 6}}

	got := a.Intersect(b)
	if got.Min != (Vec2f{2, 2}) || got.Max != (Vec2f{4, 4}) {
		t.Errorf("intersection = %v, want {2 2}..{4 4}", got)
	}

	if got.IsEmpty() {
		t.Errorf("intersection reported empty")
	}

	// disjoint rects intersect into an empty rect
	c := Rect2f{Min: Vec2f{10, 10}, Max: Vec2f{12, 12}}
	if !a.Intersect(c).IsEmpty() {
		t.Errorf("disjoint intersection not empty")
	}
}

func TestRectContains(t *testing.T) {
	r := Rect2u{Min: Vec2u{1, 1}, Max: Vec2u{4, 4}}

	tests := []struct {
		p    Vec2u
		want bool
	}{
		{Vec2u{1, 1}, true},
		{Vec2u{3, 3}, true},
		{Vec2u{4, 4}, false}, // max is exclusive
		{Vec2u{0, 2}, false},
	}

	for _, tt := range tests {
		if got := r.Contains(tt.p); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}
