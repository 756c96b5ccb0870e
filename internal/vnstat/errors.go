package vnstat

import "errors"

// Kind classifies a retrieval failure.
type Kind int

const (
	// KindCommand: the accounting command exited with a nonzero code.
	KindCommand Kind = iota + 1
	// KindParse: the command output was not valid vnstat JSON.
	KindParse
	// KindFetch: the command could not be run at all.
	KindFetch
	// KindMissingInterface: the requested interface is absent from the snapshot.
	KindMissingInterface
	// KindNoPeriodData: the interface has no entries at the requested granularity.
	KindNoPeriodData
	// KindMissingTargetDate: entries exist but none for the requested period.
	KindMissingTargetDate
	// KindInvalidModifier: the granularity is not DAY or MONTH.
	KindInvalidModifier
)

var (
	ErrCommand           = errors.New("command failed")
	ErrParse             = errors.New("failed to parse data")
	ErrFetch             = errors.New("failed to fetch data")
	ErrMissingInterface  = errors.New("interface not found")
	ErrNoPeriodData      = errors.New("no day or month data")
	ErrMissingTargetDate = errors.New("target date not found")
	ErrInvalidModifier   = errors.New("invalid modifier")
)

var kindSentinels = map[Kind]error{
	KindCommand:           ErrCommand,
	KindParse:             ErrParse,
	KindFetch:             ErrFetch,
	KindMissingInterface:  ErrMissingInterface,
	KindNoPeriodData:      ErrNoPeriodData,
	KindMissingTargetDate: ErrMissingTargetDate,
	KindInvalidModifier:   ErrInvalidModifier,
}

func (k Kind) String() string {
	if err, ok := kindSentinels[k]; ok {
		return err.Error()
	}
	return "unknown error"
}

// Error is a retrieval failure raised by the runner or the resolver.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind, so callers can write
// errors.Is(err, vnstat.ErrMissingTargetDate).
func (e *Error) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// KindOf returns the kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
