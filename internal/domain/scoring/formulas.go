package scoring

import (
	"strings"

	"github.com/okian/ironsys/internal/domain/model"
	"github.com/okian/ironsys/internal/domain/numeric"
)

// dotsCoefficients evaluate a*bw^4 + b*bw^3 + c*bw^2 + d*bw + e.
type dotsCoefficients struct {
	a, b, c, d, e float64
	constant      float64
}

// wilksCoefficients evaluate A + B*bw + C*bw^2 + D*bw^3 + E*bw^4 + F*bw^5.
type wilksCoefficients struct {
	A, B, C, D, E, F float64
	constant         float64
}

var dotsTable = map[model.Sex]dotsCoefficients{
	model.SexMale: {
		a: -0.000001093, b: 0.0007391293, c: -0.1918759221, d: 24.0900756, e: -307.75076,
		constant: 500,
	},
	model.SexFemale: {
		a: -0.0000010706, b: 0.0005158568, c: -0.1126655495, d: 13.6175032, e: -57.96288,
		constant: 500,
	},
}

var wilksTable = map[model.Sex]wilksCoefficients{
	model.SexMale: {
		A: 47.46178854, B: 8.472061379, C: 0.07369410346, D: -0.001395833811,
		E: 0.00000707665973070743, F: -0.0000000120804336482315,
		constant: 600,
	},
	model.SexFemale: {
		A: -125.4255398, B: 13.71219419, C: -0.03307250631, D: -0.001050400051,
		E: 0.00000938773881462799, F: -0.000000023334613884954,
		constant: 600,
	},
}

// ResolveSex maps a raw sex cell to a coefficient set. Values starting with
// "F" (any case) are female. Everything else, including a blank cell or an
// unrecognized value, is male: that default is deliberate and documented.
func ResolveSex(raw string) model.Sex {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if strings.HasPrefix(s, "F") {
		return model.SexFemale
	}
	return model.SexMale
}

func usable(total, bodyweight float64) bool {
	return numeric.IsFinite(total) && numeric.IsFinite(bodyweight) && total > 0 && bodyweight > 0
}

// DOTS computes the DOTS score. ok is false when the inputs are not usable
// positive numbers or the polynomial is zero or non-finite.
func DOTS(total, bodyweight float64, sex model.Sex) (float64, bool) {
	if !usable(total, bodyweight) {
		return 0, false
	}
	c, found := dotsTable[sex]
	if !found {
		c = dotsTable[model.SexMale]
	}
	bw := bodyweight
	denom := c.a*bw*bw*bw*bw + c.b*bw*bw*bw + c.c*bw*bw + c.d*bw + c.e
	if !numeric.IsFinite(denom) || denom == 0 {
		return 0, false
	}
	return total * (c.constant / denom), true
}

// Wilks computes the Wilks score with the same failure rules as DOTS.
func Wilks(total, bodyweight float64, sex model.Sex) (float64, bool) {
	if !usable(total, bodyweight) {
		return 0, false
	}
	c, found := wilksTable[sex]
	if !found {
		c = wilksTable[model.SexMale]
	}
	bw := bodyweight
	denom := c.A + c.B*bw + c.C*bw*bw + c.D*bw*bw*bw + c.E*bw*bw*bw*bw + c.F*bw*bw*bw*bw*bw
	if !numeric.IsFinite(denom) || denom == 0 {
		return 0, false
	}
	return total * (c.constant / denom), true
}
