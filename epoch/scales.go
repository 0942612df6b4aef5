package epoch

import (
	"sync/atomic"

	"github.com/signalsfoundry/geodesy/leapsec"
	"github.com/signalsfoundry/geodesy/registry"
)

// Builtin time scale tags.
const (
	UTC registry.Tag = "utc"
	TAI registry.Tag = "tai"
	GPS registry.Tag = "gps"
	TT  registry.Tag = "tt"
	TCG registry.Tag = "tcg"
	UT1 registry.Tag = "ut1"
)

const (
	// TAI-GPS offset in seconds, constant since the GPS epoch.
	taiMinusGPS = 19.0
	// TT-TAI offset in seconds, fixed by definition.
	ttMinusTAI = 32.184
	// lg is the rate at which TCG gains on TT (IAU 1991 defining constant).
	lg = 6.969290134e-10
	// tcgEpochMJD is the TT epoch 1977-01-01T00:00:32.184 about which the
	// TT<->TCG rate correction is defined, as an MJD.
	tcgEpochMJD = 43144.0003725
	// gpsEpochMJD is 1980-01-06 00:00, the origin of GPS week counting.
	gpsEpochMJD = 44244.0
)

// Scales is the registry of time scales. It is populated once at package
// initialization; extensions register additional scales and edges before
// converting.
var Scales = registry.New[Parts]("time scale")

// dut1Model supplies UT1-UTC in seconds for a UTC epoch given as MJD. The
// default model is identically zero; pipelines with Earth-orientation data
// install a real one via SetDUT1Model.
var dut1Model atomic.Pointer[func(mjdUTC float64) float64]

func init() {
	zero := func(float64) float64 { return 0 }
	dut1Model.Store(&zero)

	day := []string{"day"}
	Scales.MustRegister(
		registry.System{Tag: UTC, Desc: "Coordinated Universal Time", Units: day},
		registry.Edge[Parts]{From: UTC, To: TAI, Apply: utcToTAI},
		registry.Edge[Parts]{From: UTC, To: UT1, Apply: utcToUT1},
	)
	Scales.MustRegister(
		registry.System{Tag: TAI, Desc: "International Atomic Time", Units: day},
		registry.Edge[Parts]{From: TAI, To: UTC, Apply: taiToUTC},
		registry.Edge[Parts]{From: TAI, To: GPS, Apply: fixedOffset(-taiMinusGPS)},
		registry.Edge[Parts]{From: TAI, To: TT, Apply: fixedOffset(ttMinusTAI)},
	)
	Scales.MustRegister(
		registry.System{Tag: GPS, Desc: "GPS Time", Units: day},
		registry.Edge[Parts]{From: GPS, To: TAI, Apply: fixedOffset(taiMinusGPS)},
	)
	Scales.MustRegister(
		registry.System{Tag: TT, Desc: "Terrestrial Time", Units: day},
		registry.Edge[Parts]{From: TT, To: TAI, Apply: fixedOffset(-ttMinusTAI)},
		registry.Edge[Parts]{From: TT, To: TCG, Apply: ttToTCG},
	)
	Scales.MustRegister(
		registry.System{Tag: TCG, Desc: "Geocentric Coordinate Time", Units: day},
		registry.Edge[Parts]{From: TCG, To: TT, Apply: tcgToTT},
	)
	Scales.MustRegister(
		registry.System{Tag: UT1, Desc: "Universal Time", Units: day},
		registry.Edge[Parts]{From: UT1, To: UTC, Apply: ut1ToUTC},
	)
}

// SetDUT1Model installs the UT1-UTC model consulted by the utc<->ut1 edges.
// Passing nil restores the zero model. Call during initialization.
func SetDUT1Model(model func(mjdUTC float64) float64) {
	if model == nil {
		model = func(float64) float64 { return 0 }
	}
	dut1Model.Store(&model)
}

// fixedOffset builds an edge function adding a constant number of seconds.
func fixedOffset(sec float64) func(Parts) (Parts, error) {
	return func(p Parts) (Parts, error) {
		return p.addSeconds(sec), nil
	}
}

// utcToTAI applies the leap-second step function: TAI = UTC + offset(UTC).
func utcToTAI(p Parts) (Parts, error) {
	table := leapsec.Default()
	out := p.clone()
	for i := range out.Frac {
		out.Frac[i] += table.OffsetAt(p.mjd(i)) / secsPerDay
	}
	return out.normalize(), nil
}

// taiToUTC inverts the step function. The offset is keyed by UTC date, which
// is not yet known, so the lookup iterates: a first estimate using the TAI
// date is refined once, which is exact everywhere except inside the leap
// second itself (not representable internally).
func taiToUTC(p Parts) (Parts, error) {
	table := leapsec.Default()
	out := p.clone()
	for i := range out.Frac {
		est := p.mjd(i) - table.OffsetAt(p.mjd(i))/secsPerDay
		out.Frac[i] -= table.OffsetAt(est) / secsPerDay
	}
	return out.normalize(), nil
}

// ttToTCG applies the relativistic rate difference: TCG runs faster than TT
// by lg, with both scales agreeing at the 1977 epoch.
func ttToTCG(p Parts) (Parts, error) {
	out := p.clone()
	rate := lg / (1 - lg)
	for i := range out.Frac {
		dt := (p.Days[i] - tcgEpochMJD) + p.Frac[i]
		out.Frac[i] += rate * dt
	}
	return out.normalize(), nil
}

func tcgToTT(p Parts) (Parts, error) {
	out := p.clone()
	for i := range out.Frac {
		dt := (p.Days[i] - tcgEpochMJD) + p.Frac[i]
		out.Frac[i] -= lg * dt
	}
	return out.normalize(), nil
}

func utcToUT1(p Parts) (Parts, error) {
	model := *dut1Model.Load()
	out := p.clone()
	for i := range out.Frac {
		out.Frac[i] += model(p.mjd(i)) / secsPerDay
	}
	return out.normalize(), nil
}

func ut1ToUTC(p Parts) (Parts, error) {
	model := *dut1Model.Load()
	out := p.clone()
	for i := range out.Frac {
		// DUT1 is below a second; one refinement of the UTC argument is
		// more than enough.
		est := p.mjd(i) - model(p.mjd(i))/secsPerDay
		out.Frac[i] -= model(est) / secsPerDay
	}
	return out.normalize(), nil
}
