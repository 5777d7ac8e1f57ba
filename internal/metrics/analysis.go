package metrics

import "math/rand/v2"

// HandwritingPercent draws the simulated handwriting indicator in [35, 65].
// Values of 50 and above count as detected.
func HandwritingPercent(rng *rand.Rand) (percent int, detected bool) {
	percent = rng.IntN(31) + 35
	return percent, percent >= 50
}

// SpeechFluency draws the simulated fluency score in [7, 9].
func SpeechFluency(rng *rand.Rand) int {
	return rng.IntN(3) + 7
}
