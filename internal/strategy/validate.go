package strategy

import (
	"fmt"
	"sort"
	"strings"

	apperrors "optionlab/internal/errors"
	"optionlab/internal/models"
)

// leg is the pattern-relevant shape of one position.
type leg struct {
	style  models.Style
	side   models.Side
	strike float64
}

func (s *Strategy) legs() []leg {
	out := make([]leg, len(s.positions))
	for i, p := range s.positions {
		out[i] = leg{
			style:  p.Option.Style,
			side:   p.Option.Side,
			strike: p.Option.Strike.Float64(),
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].strike < out[j].strike })
	return out
}

func describeLegs(legs []leg) string {
	parts := make([]string, len(legs))
	for i, l := range legs {
		parts[i] = fmt.Sprintf("%s/%s@%g", l.side, l.style, l.strike)
	}
	return strings.Join(parts, " + ")
}

func (s *Strategy) legsError(expected, reason string) error {
	return apperrors.NewInvalidLegsError(string(s.kind), expected, describeLegs(s.legs()), reason)
}

// validateLegs checks the legs against the kind's fixed pattern.
func (s *Strategy) validateLegs() error {
	legs := s.legs()
	switch s.kind {
	case KindCustom:
		if len(legs) == 0 {
			return apperrors.ErrNoPositions
		}
		return nil
	case KindLongCall:
		return s.single(legs, models.StyleCall, models.SideLong)
	case KindShortCall:
		return s.single(legs, models.StyleCall, models.SideShort)
	case KindLongPut:
		return s.single(legs, models.StylePut, models.SideLong)
	case KindShortPut:
		return s.single(legs, models.StylePut, models.SideShort)
	case KindBullCallSpread:
		return s.vertical(legs, models.StyleCall, models.SideLong)
	case KindBearPutSpread:
		return s.vertical(legs, models.StylePut, models.SideShort)
	case KindLongStraddle:
		return s.twoLegged(legs, models.SideLong, true)
	case KindShortStraddle:
		return s.twoLegged(legs, models.SideShort, true)
	case KindLongStrangle:
		return s.twoLegged(legs, models.SideLong, false)
	case KindShortStrangle:
		return s.twoLegged(legs, models.SideShort, false)
	case KindIronCondor:
		return s.ironCondor(legs, false)
	case KindIronButterfly:
		return s.ironCondor(legs, true)
	case KindCallButterfly:
		return s.butterfly(legs, models.StyleCall)
	case KindPutButterfly:
		return s.butterfly(legs, models.StylePut)
	case KindCoveredCall:
		return s.stockPlusOption(legs, models.StyleCall, models.SideShort)
	case KindProtectivePut:
		return s.stockPlusOption(legs, models.StylePut, models.SideLong)
	}
	return apperrors.Wrapf(apperrors.ErrConfigInvalid, "unknown strategy kind %q", s.kind)
}

func (s *Strategy) single(legs []leg, style models.Style, side models.Side) error {
	expected := fmt.Sprintf("1 x {%s, %s}", style, side)
	if len(legs) != 1 {
		return s.legsError(expected, "wrong leg count")
	}
	if legs[0].style != style || legs[0].side != side {
		return s.legsError(expected, "wrong style or side")
	}
	return nil
}

// vertical validates a two-leg same-style spread. nearSide is the side
// held at the lower strike.
func (s *Strategy) vertical(legs []leg, style models.Style, lowerSide models.Side) error {
	expected := fmt.Sprintf("{%s, %s} at lower strike + {%s, %s} at higher strike",
		style, lowerSide, style, lowerSide.Opposite())
	if len(legs) != 2 {
		return s.legsError(expected, "wrong leg count")
	}
	for _, l := range legs {
		if l.style != style {
			return s.legsError(expected, "mixed styles")
		}
	}
	if legs[0].strike == legs[1].strike {
		return s.legsError(expected, "strikes must differ")
	}
	if legs[0].side != lowerSide || legs[1].side != lowerSide.Opposite() {
		return s.legsError(expected, "sides do not match strike ordering")
	}
	return nil
}

func (s *Strategy) twoLegged(legs []leg, side models.Side, sameStrike bool) error {
	shape := "straddle"
	if !sameStrike {
		shape = "strangle"
	}
	expected := fmt.Sprintf("%s call + %s put (%s)", side, side, shape)
	if len(legs) != 2 {
		return s.legsError(expected, "wrong leg count")
	}
	var call, put *leg
	for i := range legs {
		switch legs[i].style {
		case models.StyleCall:
			call = &legs[i]
		case models.StylePut:
			put = &legs[i]
		}
	}
	if call == nil || put == nil {
		return s.legsError(expected, "need one call and one put")
	}
	if call.side != side || put.side != side {
		return s.legsError(expected, "both legs must be on the same side")
	}
	if sameStrike && call.strike != put.strike {
		return s.legsError(expected, "straddle strikes must match")
	}
	if !sameStrike && call.strike == put.strike {
		return s.legsError(expected, "strangle strikes must differ")
	}
	return nil
}

func (s *Strategy) ironCondor(legs []leg, butterfly bool) error {
	expected := "long put (low) + short put + short call + long call (high)"
	if len(legs) != 4 {
		return s.legsError(expected, "wrong leg count")
	}
	var calls, puts []leg
	for _, l := range legs {
		if l.style == models.StyleCall {
			calls = append(calls, l)
		} else {
			puts = append(puts, l)
		}
	}
	if len(calls) != 2 || len(puts) != 2 {
		return s.legsError(expected, "need two calls and two puts")
	}
	// legs are strike-sorted, so puts[0] is the lower put and calls[1]
	// the higher call.
	if puts[0].side != models.SideLong || puts[1].side != models.SideShort {
		return s.legsError(expected, "put wing must be long below the short put")
	}
	if calls[0].side != models.SideShort || calls[1].side != models.SideLong {
		return s.legsError(expected, "call wing must be long above the short call")
	}
	if butterfly && calls[0].strike != puts[1].strike {
		return s.legsError(expected, "iron butterfly shorts must share a strike")
	}
	if !butterfly && calls[0].strike <= puts[1].strike {
		return s.legsError(expected, "short call strike must exceed short put strike")
	}
	return nil
}

func (s *Strategy) butterfly(legs []leg, style models.Style) error {
	expected := fmt.Sprintf("1 long low + 2 short middle + 1 long high (all %s)", style)
	long, short := 0, 0
	var strikes []float64
	for _, l := range legs {
		if l.style != style {
			return s.legsError(expected, "mixed styles")
		}
		if l.side == models.SideLong {
			long++
		} else {
			short++
		}
		strikes = append(strikes, l.strike)
	}
	if len(legs) == 3 {
		// The middle leg may carry quantity two rather than appearing
		// twice.
		if long != 2 || short != 1 {
			return s.legsError(expected, "need two long wings and one short body")
		}
		if legs[1].side != models.SideShort {
			return s.legsError(expected, "short body must sit at the middle strike")
		}
		if strikes[0] >= strikes[1] || strikes[1] >= strikes[2] {
			return s.legsError(expected, "strikes must be strictly ordered")
		}
		return nil
	}
	if len(legs) == 4 {
		if long != 2 || short != 2 {
			return s.legsError(expected, "need two long wings and two short bodies")
		}
		if legs[0].side != models.SideLong || legs[3].side != models.SideLong {
			return s.legsError(expected, "wings must be long")
		}
		if legs[1].strike != legs[2].strike {
			return s.legsError(expected, "short bodies must share the middle strike")
		}
		return nil
	}
	return s.legsError(expected, "wrong leg count")
}

func (s *Strategy) stockPlusOption(legs []leg, style models.Style, side models.Side) error {
	expected := fmt.Sprintf("long underlying + {%s, %s}", style, side)
	if s.stock == nil || s.stock.Quantity.Sign() <= 0 {
		return s.legsError(expected, "missing long underlying holding")
	}
	return s.single(legs, style, side)
}
