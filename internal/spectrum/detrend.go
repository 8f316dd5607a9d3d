package spectrum

// DetrendedPowers returns the decoded powers of primary with the baseline measured
// by reference subtracted. The baseline at each frequency is the reference power
// there minus the reference's average power, so a flat reference leaves primary
// unchanged. Samples outside the reference's span are not corrected. A nil
// reference yields the plain decoded powers.
//
// The correction is applied in dBm, not mW.
func DetrendedPowers(primary, reference *Record) []float64 {
	powers := primary.Powers()
	if reference == nil {
		return powers
	}

	average := reference.AveragePower()
	for i := range powers {
		frequency := primary.FrequencyAt(i)
		if !reference.ContainsFrequency(frequency) {
			continue
		}
		bias := reference.PowerAtFrequency(frequency) - average
		powers[i] -= bias
	}
	return powers
}
