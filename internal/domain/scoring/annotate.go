package scoring

// Tone is a presentation hint for a single attempt cell.
type Tone string

// Attempt tones. They only drive styling and never feed back into scores.
const (
	ToneNone     Tone = ""
	TonePositive Tone = "positive"
	ToneNegative Tone = "negative"
)

// Annotate tags each attempt of a set by sign.
func Annotate(set AttemptSet) [3]Tone {
	var tones [3]Tone
	for i, a := range set {
		switch {
		case a.Missed():
			tones[i] = ToneNegative
		case a.Made():
			tones[i] = TonePositive
		}
	}
	return tones
}
