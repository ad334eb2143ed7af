// Package models provides the option contract and position domain model.
package models

// Style represents the exercise style of an option payoff.
type Style string

const (
	StyleCall Style = "CALL"
	StylePut  Style = "PUT"
)

// Valid reports whether the style is a known value.
func (s Style) Valid() bool {
	return s == StyleCall || s == StylePut
}

// Side represents which side of the contract a position holds.
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// Valid reports whether the side is a known value.
func (s Side) Valid() bool {
	return s == SideLong || s == SideShort
}

// Sign returns +1 for long positions and -1 for short positions.
func (s Side) Sign() float64 {
	if s == SideShort {
		return -1
	}
	return 1
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideLong {
		return SideShort
	}
	return SideLong
}

// Kind represents the contract family of an option.
type Kind string

const (
	KindEuropean Kind = "EUROPEAN"
	KindAmerican Kind = "AMERICAN"
	KindExotic   Kind = "EXOTIC"
)

// Valid reports whether the kind is a known value.
func (k Kind) Valid() bool {
	return k == KindEuropean || k == KindAmerican || k == KindExotic
}

// ExoticVariant identifies the exotic payoff family.
type ExoticVariant string

const (
	ExoticBarrier ExoticVariant = "BARRIER"
	ExoticAsian   ExoticVariant = "ASIAN"
)

// BarrierDirection describes how a barrier is crossed and what the
// crossing does to the contract.
type BarrierDirection string

const (
	BarrierUpAndOut   BarrierDirection = "UP_AND_OUT"
	BarrierUpAndIn    BarrierDirection = "UP_AND_IN"
	BarrierDownAndOut BarrierDirection = "DOWN_AND_OUT"
	BarrierDownAndIn  BarrierDirection = "DOWN_AND_IN"
)

// Valid reports whether the direction is a known value.
func (d BarrierDirection) Valid() bool {
	switch d {
	case BarrierUpAndOut, BarrierUpAndIn, BarrierDownAndOut, BarrierDownAndIn:
		return true
	}
	return false
}
