package farmstore

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrCounterExhausted  = errors.New("counter exhausted")
	ErrUnsupportedFormat = errors.New("unsupported store format")
	ErrReadOnly          = errors.New("transaction is read-only")
)

// DataError reports bytes that were accepted into the store earlier but can
// no longer be decoded. It always indicates corruption.
type DataError struct {
	Data []byte
	Off  int
	Err  error
	Msg  string
}

func dataErrf(data []byte, off int, err error, format string, args ...any) error {
	return &DataError{data, off, err, fmt.Sprintf(format, args...)}
}

func (e *DataError) Unwrap() error {
	return e.Err
}

func (e *DataError) Error() string {
	const prefixLen = 64
	const suffixLen = 32
	n := len(e.Data)
	if n <= prefixLen+suffixLen {
		if e.Err != nil {
			return fmt.Sprintf("%s: %v: (%d) %x", e.Msg, e.Err, n, e.Data)
		} else {
			return fmt.Sprintf("%s: (%d) %x", e.Msg, n, e.Data)
		}
	} else {
		p, s := e.Data[:prefixLen], e.Data[n-suffixLen:]
		if e.Err != nil {
			return fmt.Sprintf("%s: %v: (%d) %x...%x", e.Msg, e.Err, n, p, s)
		} else {
			return fmt.Sprintf("%s: (%d) %x...%x", e.Msg, n, p, s)
		}
	}
}

// RegionError attaches a region and (optionally) a record id to an error.
type RegionError struct {
	Region string
	ID     uint64
	Msg    string
	Err    error
}

func regionErrf(r *Region, id uint64, err error, format string, args ...any) error {
	return &RegionError{r.String(), id, fmt.Sprintf(format, args...), err}
}

func (e *RegionError) Unwrap() error {
	return e.Err
}

func (e *RegionError) Error() string {
	var buf strings.Builder
	buf.WriteString(e.Region)
	if e.ID != 0 {
		fmt.Fprintf(&buf, "/%d", e.ID)
	}
	if e.Msg != "" {
		buf.WriteString(": ")
		buf.WriteString(e.Msg)
		if e.Err != nil {
			buf.WriteString(": ")
			buf.WriteString(e.Err.Error())
		}
	} else if e.Err != nil {
		buf.WriteString(": ")
		buf.WriteString(e.Err.Error())
	}
	return buf.String()
}

// SizeError means a record encoded to more bytes than its store allows.
type SizeError struct {
	Region string
	Size   int
	Max    int
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("%s: encoded record is %d bytes, maximum is %d", e.Region, e.Size, e.Max)
}

// InternalError is returned by DB.View and DB.Update when the transaction
// hit an unrecoverable condition: corrupted data, an over-size record, or a
// failure of the underlying file. The transaction has been rolled back.
type InternalError struct {
	Op    string
	Err   error
	Stack string
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

func (e *InternalError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("farmstore: internal error: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("farmstore: internal error: %v", e.Err)
}

// IsInternal reports whether err is, or wraps, an *InternalError.
func IsInternal(err error) bool {
	var ie *InternalError
	return errors.As(err, &ie)
}
