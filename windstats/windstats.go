/*
Copyright © 2026 the WERA authors.
This file is part of WERA.

WERA is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

WERA is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with WERA.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package windstats derives shadow-scan parameters from aggregated wind
// statistics. It turns a wind-frequency matrix (event counts per direction
// sector and 1 m/s speed class) into the WERA parameter table consumed by
// the shadow calculator: per direction, five leeward protection zones plus
// one upwind zone, each with a virtual light-source altitude derived from
// transport-weighted shelter lengths.
package windstats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Config holds the physical parameters of the derivation.
type Config struct {
	// Threshold is the critical wind speed u_t in m/s for the onset of
	// erosion; only speed classes above it contribute to transport.
	Threshold float64

	// Porosity of the sheltering landscape elements, in [0, 1]. It shapes
	// the WEPS wind-reduction function and with it the shelter reach.
	Porosity float64

	// DropEmpty omits directions with zero total transport from the
	// output instead of emitting them with zero altitudes.
	DropEmpty bool
}

// DefaultConfig returns the conventional parameter values.
func DefaultConfig() Config {
	return Config{Threshold: 6, Porosity: 0.4, DropEmpty: true}
}

// A Parameter is one row of the WERA parameter table: a protection zone of
// one wind direction, expressed as a virtual light source for the shadow
// calculator.
type Parameter struct {
	Record   int
	Label    string
	Azimuth  float64
	Altitude float64
	Constant float64
}

// fuParams holds the coefficients of the WEPS wind-reduction function for
// one porosity value.
type fuParams struct {
	m, n, s, d float64
}

// newFuParams derives the WEPS coefficients from the shelterbelt porosity:
//
//	m = 0.008 − 0.17·p + 0.17·p^1.05
//	n = 1.35·exp(−0.5·p^0.2)
//	s = 10·(1 − 0.5·p)
//	d = 3 − p
func newFuParams(p float64) fuParams {
	return fuParams{
		m: 0.008 - 0.17*p + 0.17*math.Pow(p, 1.05),
		n: 1.35 * math.Exp(-0.5*math.Pow(p, 0.2)),
		s: 10 * (1 - 0.5*p),
		d: 3 - p,
	}
}

// fu is the relative wind speed at distance x (in obstacle heights) behind
// a shelterbelt: fu(x) = 1 − exp(−m·x²) + n·exp(−0.003·(x+s)^d).
func (f fuParams) fu(x float64) float64 {
	return 1 - math.Exp(-f.m*x*x) + f.n*math.Exp(-0.003*math.Pow(x+f.s, f.d))
}

// xpThresholds returns, for every integer speed class u in [4, maxSpeed],
// the largest integer distance x in [-6, 40] at which the sheltered wind
// speed u·fu(x) stays at or below the erosion threshold; 0 when no distance
// qualifies.
func xpThresholds(p, ut float64, maxSpeed int) map[int]float64 {
	f := newFuParams(p)
	const xMin, xMax = -6, 40
	th := make(map[int]float64)
	for u := 4; u <= maxSpeed; u++ {
		best := math.Inf(-1)
		for x := xMin; x <= xMax; x++ {
			if float64(u)*f.fu(float64(x)) <= ut {
				best = float64(x)
			}
		}
		if math.IsInf(best, -1) {
			best = 0
		}
		th[u] = best
	}
	return th
}

// xpMidBins converts per-class shelter distances into midpoint values for
// consecutive classes: xpMid(u) = (xp(u−1) + xp(u)) / 2 for u ≥ 5.
func xpMidBins(th map[int]float64, maxSpeed int) map[int]float64 {
	mid := make(map[int]float64)
	for u := 5; u <= maxSpeed; u++ {
		mid[u] = 0.5 * (th[u-1] + th[u])
	}
	return mid
}

// Compute derives the parameter table from a wind-frequency matrix.
func Compute(m *Matrix, cfg Config) ([]Parameter, error) {
	if cfg.Porosity < 0 || cfg.Porosity > 1 {
		return nil, fmt.Errorf("windstats: porosity must be within [0, 1], have %g", cfg.Porosity)
	}

	ut := cfg.Threshold

	// Transport potential per speed class; the class speed is interpreted
	// as the midpoint of [speed−1, speed] m/s.
	q := make([]float64, m.MaxSpeed+1)
	for speed := 0; speed <= m.MaxSpeed; speed++ {
		if float64(speed) <= ut {
			continue
		}
		uMid := float64(speed) - 0.5
		q[speed] = math.Max(0, (uMid-ut)*uMid*uMid)
	}

	// Per-direction transport by speed class and in total.
	tBySpeed := make(map[float64][]float64, len(m.Directions))
	tSum := make(map[float64]float64, len(m.Directions))
	for _, az := range m.Directions {
		counts := m.Counts[az]
		t := make([]float64, m.MaxSpeed+1)
		for speed := 0; speed <= m.MaxSpeed; speed++ {
			if float64(speed) <= ut || counts[speed] <= 0 {
				continue
			}
			t[speed] = q[speed] * counts[speed]
		}
		tBySpeed[az] = t
		tSum[az] = floats.Sum(t)
	}

	var positive []float64
	for _, v := range tSum {
		if v > 0 {
			positive = append(positive, v)
		}
	}
	var tMax float64
	if len(positive) > 0 {
		tMax = floats.Max(positive)
	}

	xpMid := xpMidBins(xpThresholds(cfg.Porosity, ut, m.MaxSpeed), m.MaxSpeed)

	dirs := append([]float64(nil), m.Directions...)
	sort.Float64s(dirs)

	var out []Parameter
	record := 1
	for _, az := range dirs {
		tDir := tSum[az]

		var pDir, lDir float64
		if tDir <= 0 {
			if cfg.DropEmpty {
				continue
			}
		} else {
			if tMax > 0 {
				pDir = tDir / tMax
			}
			var num float64
			for speed, tVal := range tBySpeed[az] {
				if tVal <= 0 || xpMid[speed] <= 0 {
					continue
				}
				num += xpMid[speed] * tVal
			}
			lDir = num / tDir
		}

		// Altitudes for the five leeward zones; the upwind zone reuses the
		// innermost (fifth) zone's altitude.
		var altitudes [5]float64
		if lDir > 0 && pDir > 0 {
			for zone := 1; zone <= 5; zone++ {
				xk := lDir / 5 * (6 - float64(zone)) * pDir
				if xk > 0 {
					altitudes[zone-1] = math.Atan(1/xk) * 180 / math.Pi
				}
			}
		}

		oppAz := az + 180
		if oppAz > 360 {
			oppAz -= 360
		}
		if oppAz <= 0 {
			oppAz = 360
		}

		baseAz := int(math.Round(az))
		for zone := 1; zone <= 5; zone++ {
			out = append(out, Parameter{
				Record:   record,
				Label:    fmt.Sprintf("r%d%c", baseAz, 'a'+zone-1),
				Azimuth:  az,
				Altitude: altitudes[zone-1],
				Constant: float64(zone),
			})
			record++
		}
		out = append(out, Parameter{
			Record:   record,
			Label:    fmt.Sprintf("r%df", baseAz),
			Azimuth:  oppAz,
			Altitude: altitudes[4],
			Constant: 5,
		})
		record++
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("windstats: no directions with transport above the %g m/s threshold", ut)
	}
	return out, nil
}
