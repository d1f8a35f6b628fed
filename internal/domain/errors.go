package domain

import "errors"

var (
	ErrUnsupportedVersion = errors.New("unsupported bundletool version")
	ErrArchiveDisabled    = errors.New("store archive disabled")
	ErrHeadlessApp        = errors.New("app has no launcher activity")
	ErrBaseModuleNotFound = errors.New("base module not found")

	ErrPackageNotFound       = errors.New("resource package not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrResourceIDExhausted   = errors.New("resource id space exhausted")
	ErrInvalidResourceTable  = errors.New("invalid resource table")

	ErrStubIO = errors.New("code stub i/o failure")
)

// EligibilityError reports why an archived artifact cannot be generated for a
// bundle. Kind is one of ErrUnsupportedVersion, ErrArchiveDisabled,
// ErrHeadlessApp or ErrBaseModuleNotFound.
type EligibilityError struct {
	Kind       error
	MinVersion string
	Message    string
}

func (e *EligibilityError) Error() string {
	return e.Message
}

func (e *EligibilityError) Unwrap() error {
	return e.Kind
}
