package gpu

import "golang.org/x/exp/constraints"

type numeric interface {
	constraints.Integer | constraints.Float
}

type Vec2[T numeric] [2]T

type Vec2f = Vec2[float32]
type Vec2u = Vec2[uint32]

func (lhs Vec2[T]) XY() (x, y T) {
	return lhs[0], lhs[1]
}

func (lhs Vec2[T]) Add(rhs Vec2[T]) Vec2[T] {
	return Vec2[T]{lhs[0] + rhs[0], lhs[1] + rhs[1]}
}

func (lhs Vec2[T]) Sub(rhs Vec2[T]) Vec2[T] {
	return Vec2[T]{lhs[0] - rhs[0], lhs[1] - rhs[1]}
}

func (lhs Vec2[T]) Mul(rhs Vec2[T]) Vec2[T] {
	return Vec2[T]{lhs[0] * rhs[0], lhs[1] * rhs[1]}
}

func (lhs Vec2[T]) Div(rhs Vec2[T]) Vec2[T] {
	return Vec2[T]{lhs[0] / rhs[0], lhs[1] / rhs[1]}
}

func (lhs Vec2[T]) Min(rhs Vec2[T]) Vec2[T] {
	return Vec2[T]{min(lhs[0], rhs[0]), min(lhs[1], rhs[1])}
}

func (lhs Vec2[T]) Max(rhs Vec2[T]) Vec2[T] {
	return Vec2[T]{max(lhs[0], rhs[0]), max(lhs[1], rhs[1])}
}

func (lhs Vec2[T]) ToVec2f() Vec2f {
	return Vec2f{float32(lhs[0]), float32(lhs[1])}
}
