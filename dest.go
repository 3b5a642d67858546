package rxscan

import (
	"errors"
	"strconv"
	"strings"
)

// Dest is a typed sink for one captured range. Values are produced by
// the constructors below; conversion happens while the range is still
// valid and never retains it.
type Dest interface {
	convert(b []byte) error
}

type destFunc func(b []byte) error

func (f destFunc) convert(b []byte) error { return f(b) }

// Bytes stores a copy of the captured bytes. Never fails.
func Bytes(p *[]byte) Dest {
	return destFunc(func(b []byte) error {
		*p = append((*p)[:0], b...)
		return nil
	})
}

// String stores the captured bytes as a string. Never fails.
func String(p *string) Dest {
	return destFunc(func(b []byte) error {
		*p = string(b)
		return nil
	})
}

// NumOpt adjusts how a numeric destination parses its input.
type NumOpt func(*numConf)

type numConf struct{ base int }

// BasePrefixes makes an integer destination honor 0x, 0o, 0 and 0b
// prefixes ( plus digit-separating underscores ) instead of fixed
// base 10.
func BasePrefixes() NumOpt {
	return func(c *numConf) { c.base = 0 }
}

func numConfOf(opts []NumOpt) numConf {
	c := numConf{base: 10}
	for _, o := range opts {
		o(&c)
	}
	return c
}

func signedDest[T int | int8 | int16 | int32 | int64](p *T, bits int, opts []NumOpt) Dest {
	c := numConfOf(opts)
	return destFunc(func(b []byte) error {
		v, err := strconv.ParseInt(string(b), c.base, bits)
		if err != nil {
			return err
		}
		*p = T(v)
		return nil
	})
}

func unsignedDest[T uint | uint8 | uint16 | uint32 | uint64](p *T, bits int, opts []NumOpt) Dest {
	c := numConfOf(opts)
	return destFunc(func(b []byte) error {
		v, err := strconv.ParseUint(string(b), c.base, bits)
		if err != nil {
			return err
		}
		*p = T(v)
		return nil
	})
}

func Int(p *int, opts ...NumOpt) Dest     { return signedDest(p, strconv.IntSize, opts) }
func Int8(p *int8, opts ...NumOpt) Dest   { return signedDest(p, 8, opts) }
func Int16(p *int16, opts ...NumOpt) Dest { return signedDest(p, 16, opts) }
func Int32(p *int32, opts ...NumOpt) Dest { return signedDest(p, 32, opts) }
func Int64(p *int64, opts ...NumOpt) Dest { return signedDest(p, 64, opts) }

func Uint(p *uint, opts ...NumOpt) Dest     { return unsignedDest(p, strconv.IntSize, opts) }
func Uint8(p *uint8, opts ...NumOpt) Dest   { return unsignedDest(p, 8, opts) }
func Uint16(p *uint16, opts ...NumOpt) Dest { return unsignedDest(p, 16, opts) }
func Uint32(p *uint32, opts ...NumOpt) Dest { return unsignedDest(p, 32, opts) }
func Uint64(p *uint64, opts ...NumOpt) Dest { return unsignedDest(p, 64, opts) }

// parseFloatToken fronts strconv.ParseFloat for one gap: the stdlib
// takes a sign on inf/infinity but not on nan.
func parseFloatToken(s string, bits int) (float64, error) {
	if len(s) == 4 && (s[0] == '+' || s[0] == '-') && strings.EqualFold(s[1:], "nan") {
		s = s[1:]
	}
	return strconv.ParseFloat(s, bits)
}

// Float64 parses standard numeric syntax plus the case-insensitive
// tokens nan, inf and infinity, each taking an optional sign.
func Float64(p *float64) Dest {
	return destFunc(func(b []byte) error {
		v, err := parseFloatToken(string(b), 64)
		if err != nil {
			return err
		}
		*p = v
		return nil
	})
}

// Float32 is Float64 at 32-bit precision.
func Float32(p *float32) Dest {
	return destFunc(func(b []byte) error {
		v, err := parseFloatToken(string(b), 32)
		if err != nil {
			return err
		}
		*p = float32(v)
		return nil
	})
}

var errBadBool = errors.New("not a recognized boolean")

// Bool accepts 0, 1, true and false ( the words case-insensitively ).
func Bool(p *bool) Dest {
	return destFunc(func(b []byte) error {
		s := string(b)
		switch {
		case s == "1" || strings.EqualFold(s, "true"):
			*p = true
		case s == "0" || strings.EqualFold(s, "false"):
			*p = false
		default:
			return errBadBool
		}
		return nil
	})
}

var errSinkRefused = errors.New("sink refused the input")

// Sink delegates to a caller-supplied function; returning false marks
// the capture as failed conversion. The slice aliases the scan window
// and must not be retained.
func Sink(fn func(b []byte) bool) Dest {
	return destFunc(func(b []byte) error {
		if !fn(b) {
			return errSinkRefused
		}
		return nil
	})
}
