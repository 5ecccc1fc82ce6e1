package host

import "time"

// Source yields the raw value of an external tuning input, such as a
// potentiometer wired to the host. How the value maps to a delay or a
// speed is policy outside the protocol core.
type Source interface {
	// ReadTuningValue returns the current input, normalized to 0..1.
	ReadTuningValue() (float64, error)
}

// DelayFunc returns the write-to-read delay to apply to the next
// transaction.
type DelayFunc func() (time.Duration, error)

// LinearDelay maps the 0..1 tuning value of src linearly onto
// [min, max]. Values outside 0..1 are clamped.
func LinearDelay(src Source, min, max time.Duration) DelayFunc {
	return func() (time.Duration, error) {
		v, err := src.ReadTuningValue()
		if err != nil {
			return 0, err
		}
		if v < 0 {
			v = 0
		} else if v > 1 {
			v = 1
		}
		return min + time.Duration(v*float64(max-min)), nil
	}
}

// FixedSource is a Source with a constant value, for tests and for
// hosts without an analog input.
type FixedSource float64

// ReadTuningValue implements Source.
func (s FixedSource) ReadTuningValue() (float64, error) {
	return float64(s), nil
}
