// Package sdrdriver abstracts the raw-sample source feeding the
// pipeline's ring buffer, generalizing the single hardcoded input path
// (exec rtl_adsb.exe, scan its text output) into a small Driver
// interface with a file/stdin driver as the one concrete core
// implementation, plus an adapter that keeps the original
// pre-demodulated text path alive as an alternate input mode.
package sdrdriver

import "context"

// SampleCallback receives one chunk of raw samples read from a driver,
// in whatever wire format that driver produces (see ringbuf.Converter).
type SampleCallback func(iq []byte, sampleCount int)

// Driver is anything that can hand the pipeline a stream of samples.
// Concrete SDR hardware drivers (rtl-sdr, bladeRF, SoapySDR) are built
// the same way but are out of scope here since they need cgo bindings
// this module does not vendor; IFileDriver is the one driver that can
// run end to end without external hardware or processes.
type Driver interface {
	// InitConfig resets the driver's option state to defaults.
	InitConfig()
	// HandleOption applies one command-line option (the output format's
	// per-device option table); returns false if opt is not
	// recognized by this driver.
	HandleOption(opt, arg string) bool
	// Open prepares the driver to be Run, validating any options set
	// via HandleOption.
	Open() error
	// Run reads samples until ctx is cancelled or the source is
	// exhausted, invoking cb for each chunk. Run blocks until done.
	Run(ctx context.Context, cb SampleCallback) error
	// Close releases any resources Open acquired.
	Close() error
}
