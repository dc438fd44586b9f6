// Package classify maps age and bodyweight to bracket labels.
package classify

import (
	"fmt"

	"github.com/okian/ironsys/internal/domain/numeric"
)

type bracket struct {
	upTo  float64 // inclusive
	label string
}

var ageBrackets = []bracket{
	{23, "Junior"},
	{39, "Open"},
	{49, "Master I"},
	{59, "Master II"},
	{69, "Master III"},
}

const (
	subJuniorBelow = 18
	oldestAgeClass = "Master IV"
)

var weightLimits = []float64{52, 57, 63, 69, 76, 83, 93, 105, 120}

// AgeClass returns the age bracket. Non-finite input yields "".
func AgeClass(age float64) string {
	if !numeric.IsFinite(age) {
		return ""
	}
	if age < subJuniorBelow {
		return "Sub-Junior"
	}
	for _, b := range ageBrackets {
		if age <= b.upTo {
			return b.label
		}
	}
	return oldestAgeClass
}

// WeightClass returns the bodyweight bracket, e.g. "-83kg" or "+120kg".
// Non-finite input yields "".
func WeightClass(bodyweight float64) string {
	if !numeric.IsFinite(bodyweight) {
		return ""
	}
	for _, limit := range weightLimits {
		if bodyweight <= limit {
			return fmt.Sprintf("-%gkg", limit)
		}
	}
	return fmt.Sprintf("+%gkg", weightLimits[len(weightLimits)-1])
}

// Classes parses raw age and bodyweight cells and classifies each one that
// is present.
func Classes(rawAge, rawBodyweight string) (ageClass, weightClass string) {
	if age, ok := numeric.ParseNumber(rawAge); ok {
		ageClass = AgeClass(age)
	}
	if bw, ok := numeric.ParseNumber(rawBodyweight); ok {
		weightClass = WeightClass(bw)
	}
	return ageClass, weightClass
}
