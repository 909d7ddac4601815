package aescrypt

import "github.com/google/uuid"

// EncryptOptions configures a single Encryptor.Encrypt call.
type EncryptOptions struct {
	// Iterations is the PBKDF2 iteration count written to the stream.
	// Zero selects defaultIterations.
	Iterations uint32

	// Extensions are emitted, in order, as header extensions.
	Extensions []Extension

	// ProgressInterval is the advisory octet interval between Progress
	// invocations; zero disables progress callbacks entirely.
	ProgressInterval uint64

	// Progress, if non-nil, is invoked per spec: once at start, then at
	// most once per ProgressInterval octets, then once at the end.
	Progress ProgressFunc

	// InstanceLabel is passed verbatim to Progress. A random label is
	// generated when left empty, so concurrent Encryptor instances can
	// be told apart in shared progress sinks.
	InstanceLabel string

	// Logger receives structured diagnostics for each phase transition.
	// NopLogger is used when left nil.
	Logger Logger
}

// Validate checks the options and fills in defaults, following the
// teacher's Config.Validate() idiom: called once at the top of the public
// operation, returning a fully-resolved copy.
func (o EncryptOptions) Validate() (EncryptOptions, error) {
	if o.Iterations == 0 {
		o.Iterations = defaultIterations
	}
	if err := ValidateIterations(o.Iterations); err != nil {
		return o, err
	}
	for _, ext := range o.Extensions {
		if err := ValidateExtension(ext.Identifier, ext.Value); err != nil {
			return o, err
		}
	}
	if o.InstanceLabel == "" {
		o.InstanceLabel = uuid.NewString()
	}
	if o.Logger == nil {
		o.Logger = NopLogger
	}
	return o, nil
}

// DecryptOptions configures a single Decryptor.Decrypt call.
type DecryptOptions struct {
	// ProgressInterval is the advisory octet interval between Progress
	// invocations; zero disables progress callbacks entirely.
	ProgressInterval uint64

	// Progress, if non-nil, is invoked per spec: once at start, then at
	// most once per ProgressInterval octets, then once at the end.
	Progress ProgressFunc

	// InstanceLabel is passed verbatim to Progress. A random label is
	// generated when left empty.
	InstanceLabel string

	// Logger receives structured diagnostics for each phase transition.
	// NopLogger is used when left nil.
	Logger Logger
}

// Validate fills in defaults; decrypt has no caller-chosen wire-format
// parameters to range-check (iterations and version come from the stream
// itself and are validated while reading the header).
func (o DecryptOptions) Validate() (DecryptOptions, error) {
	if o.InstanceLabel == "" {
		o.InstanceLabel = uuid.NewString()
	}
	if o.Logger == nil {
		o.Logger = NopLogger
	}
	return o, nil
}
