package simulation

import (
	"math"

	apperrors "optionlab/internal/errors"
)

// StepFunc advances a price by one time step of dt years.
type StepFunc func(prev, dt float64) float64

// Walk is a stochastic process specification plus its parameters. A
// walk builds a fresh generator per path; the generator closure owns
// whatever state the process evolves (variance, regime, previous
// return).
type Walk interface {
	Name() string
	Validate() error
	Generator(w Walker) StepFunc
}

// Brownian is an arithmetic Brownian motion, suitable for rates rather
// than prices.
type Brownian struct {
	Drift      float64
	Volatility float64
}

func (b Brownian) Name() string { return "brownian" }

func (b Brownian) Validate() error {
	if b.Volatility < 0 {
		return apperrors.ErrInvalidVolatility
	}
	return nil
}

func (b Brownian) Generator(w Walker) StepFunc {
	return func(prev, dt float64) float64 {
		return prev + b.Drift*dt + b.Volatility*math.Sqrt(dt)*w.Normal()
	}
}

// GeometricBrownian is the standard log-normal price process.
type GeometricBrownian struct {
	Drift      float64
	Volatility float64
}

func (g GeometricBrownian) Name() string { return "geometric_brownian" }

func (g GeometricBrownian) Validate() error {
	if g.Volatility < 0 {
		return apperrors.ErrInvalidVolatility
	}
	return nil
}

func (g GeometricBrownian) Generator(w Walker) StepFunc {
	return func(prev, dt float64) float64 {
		z := w.Normal()
		return prev * math.Exp((g.Drift-0.5*g.Volatility*g.Volatility)*dt+g.Volatility*math.Sqrt(dt)*z)
	}
}

// LogReturns draws per-step log returns with optional first-order
// autocorrelation.
type LogReturns struct {
	Mean     float64
	Std      float64
	Autocorr float64
}

func (l LogReturns) Name() string { return "log_returns" }

func (l LogReturns) Validate() error {
	if l.Std < 0 {
		return apperrors.ErrInvalidVolatility
	}
	if l.Autocorr < -1 || l.Autocorr > 1 {
		return apperrors.Wrap(apperrors.ErrOutOfDomain, "autocorrelation must be in [-1, 1]")
	}
	return nil
}

func (l LogReturns) Generator(w Walker) StepFunc {
	prevR := 0.0
	scale := math.Sqrt(1 - l.Autocorr*l.Autocorr)
	return func(prev, dt float64) float64 {
		r := l.Autocorr*prevR + scale*(l.Mean+l.Std*w.Normal())
		prevR = r
		return prev * math.Exp(r)
	}
}

// OrnsteinUhlenbeck is a mean-reverting process on the log price.
// LongTermLevel is in price space; the reversion acts on its log.
type OrnsteinUhlenbeck struct {
	ReversionSpeed float64
	LongTermLevel  float64
	Volatility     float64
}

func (o OrnsteinUhlenbeck) Name() string { return "ornstein_uhlenbeck" }

func (o OrnsteinUhlenbeck) Validate() error {
	if o.Volatility < 0 {
		return apperrors.ErrInvalidVolatility
	}
	if o.ReversionSpeed < 0 {
		return apperrors.Wrap(apperrors.ErrOutOfDomain, "reversion speed must be non-negative")
	}
	if o.LongTermLevel <= 0 {
		return apperrors.Wrap(apperrors.ErrOutOfDomain, "long-term level must be positive")
	}
	return nil
}

func (o OrnsteinUhlenbeck) Generator(w Walker) StepFunc {
	logTheta := math.Log(o.LongTermLevel)
	return func(prev, dt float64) float64 {
		x := math.Log(prev)
		x += o.ReversionSpeed*(logTheta-x)*dt + o.Volatility*math.Sqrt(dt)*w.Normal()
		return math.Exp(x)
	}
}

// JumpDiffusion is Merton's model: GBM plus compound Poisson jumps.
type JumpDiffusion struct {
	Drift         float64
	Volatility    float64
	JumpIntensity float64 // expected jumps per year
	JumpMean      float64 // mean of log jump size
	JumpVol       float64 // stddev of log jump size
}

func (j JumpDiffusion) Name() string { return "jump_diffusion" }

func (j JumpDiffusion) Validate() error {
	if j.Volatility < 0 || j.JumpVol < 0 {
		return apperrors.ErrInvalidVolatility
	}
	if j.JumpIntensity < 0 {
		return apperrors.Wrap(apperrors.ErrOutOfDomain, "jump intensity must be non-negative")
	}
	return nil
}

func (j JumpDiffusion) Generator(w Walker) StepFunc {
	return func(prev, dt float64) float64 {
		z := w.Normal()
		next := prev * math.Exp((j.Drift-0.5*j.Volatility*j.Volatility)*dt+j.Volatility*math.Sqrt(dt)*z)
		for n := w.Poisson(j.JumpIntensity * dt); n > 0; n-- {
			next *= math.Exp(j.JumpMean + j.JumpVol*w.Normal())
		}
		return next
	}
}

// GARCH is a GARCH(1,1) volatility process driving a GBM price step.
// Omega, Alpha and Beta act on annualised variance.
type GARCH struct {
	Omega      float64
	Alpha      float64
	Beta       float64
	Drift      float64
	InitialVol float64 // annualised
}

func (g GARCH) Name() string { return "garch" }

func (g GARCH) Validate() error {
	if g.Omega < 0 || g.Alpha < 0 || g.Beta < 0 {
		return apperrors.Wrap(apperrors.ErrOutOfDomain, "garch coefficients must be non-negative")
	}
	if g.InitialVol < 0 {
		return apperrors.ErrInvalidVolatility
	}
	return nil
}

func (g GARCH) Generator(w Walker) StepFunc {
	variance := g.InitialVol * g.InitialVol
	return func(prev, dt float64) float64 {
		sigma := math.Sqrt(variance)
		r := (g.Drift-0.5*variance)*dt + sigma*math.Sqrt(dt)*w.Normal()
		// Normalise the squared return back to annual terms before the
		// variance recursion.
		variance = g.Omega + g.Alpha*(r*r/dt) + g.Beta*variance
		return prev * math.Exp(r)
	}
}

// Heston is the stochastic-variance model, discretised with a
// full-truncation scheme to keep variance non-negative.
type Heston struct {
	Drift           float64
	ReversionSpeed  float64 // kappa
	LongTermVar     float64 // theta
	VolOfVol        float64 // xi
	Correlation     float64 // rho
	InitialVariance float64 // v0
}

func (h Heston) Name() string { return "heston" }

func (h Heston) Validate() error {
	if h.InitialVariance < 0 || h.LongTermVar < 0 || h.VolOfVol < 0 {
		return apperrors.ErrInvalidVolatility
	}
	if h.Correlation < -1 || h.Correlation > 1 {
		return apperrors.Wrap(apperrors.ErrOutOfDomain, "correlation must be in [-1, 1]")
	}
	return nil
}

func (h Heston) Generator(w Walker) StepFunc {
	v := h.InitialVariance
	ortho := math.Sqrt(1 - h.Correlation*h.Correlation)
	return func(prev, dt float64) float64 {
		z1 := w.Normal()
		z2 := h.Correlation*z1 + ortho*w.Normal()
		vPos := math.Max(v, 0)
		next := prev * math.Exp((h.Drift-0.5*vPos)*dt+math.Sqrt(vPos*dt)*z1)
		v += h.ReversionSpeed*(h.LongTermVar-vPos)*dt + h.VolOfVol*math.Sqrt(vPos*dt)*z2
		return next
	}
}

// VolOfVol is a custom stochastic-volatility walk: GBM on the price,
// Ornstein-Uhlenbeck on the volatility itself.
type VolOfVol struct {
	Drift        float64
	InitialVol   float64
	VolMean      float64
	VolReversion float64
	VolOfVol     float64
}

func (v VolOfVol) Name() string { return "vol_of_vol" }

func (v VolOfVol) Validate() error {
	if v.InitialVol < 0 || v.VolMean < 0 || v.VolOfVol < 0 {
		return apperrors.ErrInvalidVolatility
	}
	if v.VolReversion < 0 {
		return apperrors.Wrap(apperrors.ErrOutOfDomain, "vol reversion speed must be non-negative")
	}
	return nil
}

func (v VolOfVol) Generator(w Walker) StepFunc {
	vol := v.InitialVol
	return func(prev, dt float64) float64 {
		z := w.Normal()
		next := prev * math.Exp((v.Drift-0.5*vol*vol)*dt+vol*math.Sqrt(dt)*z)
		vol += v.VolReversion*(v.VolMean-vol)*dt + v.VolOfVol*math.Sqrt(dt)*w.Normal()
		if vol < 0 {
			vol = 0
		}
		return next
	}
}

// Historical resamples past log returns with replacement.
type Historical struct {
	Returns []float64 // per-step log returns
}

func (h Historical) Name() string { return "historical" }

func (h Historical) Validate() error {
	if len(h.Returns) == 0 {
		return apperrors.Wrap(apperrors.ErrInsufficientData, "historical walk needs a return window")
	}
	return nil
}

func (h Historical) Generator(w Walker) StepFunc {
	return func(prev, dt float64) float64 {
		idx := int(w.Uniform() * float64(len(h.Returns)))
		if idx >= len(h.Returns) {
			idx = len(h.Returns) - 1
		}
		return prev * math.Exp(h.Returns[idx])
	}
}

// Telegraph toggles between two volatility states through a
// continuous-time Markov chain; the price evolves as GBM with the
// current state's volatility.
type Telegraph struct {
	Drift    float64
	RateUp   float64 // transitions per year from low to high vol
	RateDown float64 // transitions per year from high to low vol
	VolLow   float64
	VolHigh  float64
}

func (t Telegraph) Name() string { return "telegraph" }

func (t Telegraph) Validate() error {
	if t.VolLow < 0 || t.VolHigh < 0 {
		return apperrors.ErrInvalidVolatility
	}
	if t.RateUp < 0 || t.RateDown < 0 {
		return apperrors.Wrap(apperrors.ErrOutOfDomain, "telegraph rates must be non-negative")
	}
	return nil
}

func (t Telegraph) Generator(w Walker) StepFunc {
	high := false
	return func(prev, dt float64) float64 {
		rate := t.RateUp
		if high {
			rate = t.RateDown
		}
		if w.Uniform() < 1-math.Exp(-rate*dt) {
			high = !high
		}
		sigma := t.VolLow
		if high {
			sigma = t.VolHigh
		}
		z := w.Normal()
		return prev * math.Exp((t.Drift-0.5*sigma*sigma)*dt+sigma*math.Sqrt(dt)*z)
	}
}
