package rxscan

import (
	"math"
	"testing"
)

func TestIntegerDestinations(t *testing.T) {

	var i8 int8
	var i32 int32
	var i64 int64
	var u16 uint16
	var u64 uint64

	type tc struct {
		dest  Dest
		input string
		fails bool
		check func() bool
	}

	for _, c := range []tc{
		{Int8(&i8), "-128", false, func() bool { return i8 == -128 }},
		{Int8(&i8), "128", true, nil},
		{Int32(&i32), "2147483647", false, func() bool { return i32 == math.MaxInt32 }},
		{Int32(&i32), "2147483648", true, nil},
		{Int64(&i64), "-9223372036854775808", false, func() bool { return i64 == math.MinInt64 }},
		{Uint16(&u16), "65535", false, func() bool { return u16 == 65535 }},
		{Uint16(&u16), "-1", true, nil},
		{Uint64(&u64), "18446744073709551615", false, func() bool { return u64 == math.MaxUint64 }},
		{Int32(&i32), "0x10", true, nil},
		{Int32(&i32, BasePrefixes()), "0x10", false, func() bool { return i32 == 16 }},
		{Int32(&i32, BasePrefixes()), "0o17", false, func() bool { return i32 == 15 }},
		{Int32(&i32, BasePrefixes()), "0b101", false, func() bool { return i32 == 5 }},
		{Int32(&i32, BasePrefixes()), "1_000", false, func() bool { return i32 == 1000 }},
		{Uint64(&u64, BasePrefixes()), "0xdead_beef", false, func() bool { return u64 == 0xdeadbeef }},
	} {
		err := c.dest.convert([]byte(c.input))
		if c.fails != (err != nil) {
			t.Errorf("Converting %q: error state %v, expected failure=%v", c.input, err, c.fails)
			continue
		}
		if c.check != nil && !c.check() {
			t.Errorf("Converting %q stored an unexpected value", c.input)
		}
	}
}

func TestFloatDestinations(t *testing.T) {

	var f64 float64
	var f32 float32

	for _, input := range []string{"nan", "NaN", "NAN", "+nan", "-nan"} {
		if err := Float64(&f64).convert([]byte(input)); err != nil {
			t.Errorf("Converting %q failed: %s", input, err)
		} else if !math.IsNaN(f64) {
			t.Errorf("Converting %q stored %v, expected NaN", input, f64)
		}
	}

	for input, sign := range map[string]int{
		"inf": 1, "Inf": 1, "+inf": 1, "infinity": 1, "+Infinity": 1,
		"-inf": -1, "-INFINITY": -1,
	} {
		if err := Float64(&f64).convert([]byte(input)); err != nil {
			t.Errorf("Converting %q failed: %s", input, err)
		} else if !math.IsInf(f64, sign) {
			t.Errorf("Converting %q stored %v, expected Inf with sign %d", input, f64, sign)
		}
	}

	if err := Float64(&f64).convert([]byte("-12.5e3")); err != nil || f64 != -12500 {
		t.Errorf("Converting \"-12.5e3\" gave ( %v, %v ), expected ( -12500, nil )", f64, err)
	}
	if err := Float32(&f32).convert([]byte("0.5")); err != nil || f32 != 0.5 {
		t.Errorf("Converting \"0.5\" gave ( %v, %v ), expected ( 0.5, nil )", f32, err)
	}
	if err := Float64(&f64).convert([]byte("infinite")); err == nil {
		t.Errorf("Converting \"infinite\" did not fail")
	}
}

func TestBoolDestination(t *testing.T) {

	var b bool

	for input, want := range map[string]bool{
		"1": true, "true": true, "TRUE": true, "True": true,
		"0": false, "false": false, "FALSE": false,
	} {
		if err := Bool(&b).convert([]byte(input)); err != nil {
			t.Errorf("Converting %q failed: %s", input, err)
		} else if b != want {
			t.Errorf("Converting %q stored %v, expected %v", input, b, want)
		}
	}

	for _, input := range []string{"", "yes", "2", "t"} {
		if err := Bool(&b).convert([]byte(input)); err == nil {
			t.Errorf("Converting %q did not fail", input)
		}
	}
}

func TestBytesDestinationCopies(t *testing.T) {

	window := []byte("volatile")

	var got []byte
	if err := Bytes(&got).convert(window); err != nil {
		t.Fatalf("Bytes conversion failed: %s", err)
	}

	// the destination must hold a copy, not an alias of the window
	window[0] = 'X'
	if string(got) != "volatile" {
		t.Errorf("Bytes destination aliases the scan window: %q", got)
	}
}

func TestSinkDestination(t *testing.T) {

	var seen string
	accept := Sink(func(b []byte) bool {
		seen = string(b)
		return true
	})
	if err := accept.convert([]byte("payload")); err != nil || seen != "payload" {
		t.Errorf("Accepting sink gave ( %q, %v )", seen, err)
	}

	reject := Sink(func(b []byte) bool { return false })
	if err := reject.convert([]byte("payload")); err == nil {
		t.Errorf("Refusing sink did not surface an error")
	}
}
