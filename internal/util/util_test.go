package util

import (
	"testing"
)

func TestCommify(t *testing.T) {

	for in, want := range map[int64]string{
		0:              "0",
		7:              "7",
		999:            "999",
		1000:           "1,000",
		1234567:        "1,234,567",
		-42:            "-42",
		-1234567:       "-1,234,567",
		74000000000000: "74,000,000,000,000",
	} {
		if got := string(Commify64(in)); got != want {
			t.Errorf("Commify64(%d) == %q, expected %q", in, got, want)
		}
	}

	if got := string(Commify(1001)); got != "1,001" {
		t.Errorf("Commify(1001) == %q, expected \"1,001\"", got)
	}
}

func TestAvailableMapKeys(t *testing.T) {

	got := AvailableMapKeys(map[string]int{"zeta": 1, "alpha": 2, "mid": 3})
	if got != "'alpha', 'mid', 'zeta'" {
		t.Errorf("AvailableMapKeys returned %q", got)
	}
}
