package gpu

type Rect2f = Rect2[float32]
type Rect2u = Rect2[uint32]

type Rect2[T numeric] struct {
	Min Vec2[T]
	Max Vec2[T]
}

func RectFromPoints[T numeric](a, b Vec2[T]) Rect2[T] {
	return Rect2[T]{
		Min: a.Min(b),
		Max: a.Max(b),
	}
}

func RectFromSize[T numeric](pos, size Vec2[T]) Rect2[T] {
	return RectFromPoints(pos, pos.Add(size))
}

func (r Rect2[T]) Size() Vec2[T] {
	return r.Max.Sub(r.Min)
}

func (r Rect2[T]) Width() T {
	return r.Max[0] - r.Min[0]
}

func (r Rect2[T]) Height() T {
	return r.Max[1] - r.Min[1]
}

func (r Rect2[T]) Contains(p Vec2[T]) bool {
	return p[0] >= r.Min[0] && p[0] < r.Max[0] &&
		p[1] >= r.Min[1] && p[1] < r.Max[1]
}

// Intersect clips r to the region of other. The result may be empty,
// check with IsEmpty before using it.
func (r Rect2[T]) Intersect(other Rect2[T]) Rect2[T] {
	return Rect2[T]{
		Min: r.Min.Max(other.Min),
		Max: r.Max.Min(other.Max),
	}
}

func (r Rect2[T]) IsEmpty() bool {
	return r.Max[0] <= r.Min[0] || r.Max[1] <= r.Min[1]
}
