package sink

import (
	"errors"

	"github.com/teslashibe/go-dimmer/pkg/target"
)

// Multi fans one dimming value out to several outputs.
type Multi []target.Output

// SetDimming writes value to every output and joins their errors. When at
// least one output took the value the joined error also wraps
// target.ErrPartialWrite.
func (m Multi) SetDimming(value float64) error {
	var errs []error
	written := 0
	for _, out := range m {
		if out == nil {
			continue
		}
		if err := out.SetDimming(value); err != nil {
			errs = append(errs, err)
			continue
		}
		written++
	}
	if len(errs) > 0 && written > 0 {
		errs = append([]error{target.ErrPartialWrite}, errs...)
	}
	return errors.Join(errs...)
}

// Func adapts a function to target.Output.
type Func func(value float64) error

// SetDimming calls f.
func (f Func) SetDimming(value float64) error {
	return f(value)
}
