package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func collectRecords(t *testing.T, sc *Scanner, in string) []scanRecord {
	t.Helper()

	var out bytes.Buffer
	sc.Out = &out
	if err := sc.ProcessReader(strings.NewReader(in)); err != nil {
		t.Fatalf("ProcessReader failed: %s", err)
	}

	var records []scanRecord
	dec := json.NewDecoder(&out)
	for dec.More() {
		var r scanRecord
		if err := dec.Decode(&r); err != nil {
			t.Fatalf("Emitted record does not decode: %s", err)
		}
		records = append(records, r)
	}
	return records
}

func TestRecordEmission(t *testing.T) {

	sc := NewFromArgv([]string{"rxscan-test", "-e", `(\w+) (\d+)\n`})

	records := collectRecords(t, sc, "ab 12\nskipme\ncd 345\n")

	if len(records) != 2 {
		t.Fatalf("Emitted %d records, expected 2", len(records))
	}

	r := records[0]
	if r.Event != "match" || r.Offset != 0 || r.Length != 6 ||
		len(r.Captures) != 2 || r.Captures[0] != "ab" || r.Captures[1] != "12" {
		t.Errorf("First record came out as %+v", r)
	}
	if r.Digest != "" {
		t.Errorf("Digest %q emitted without a digester", r.Digest)
	}

	r = records[1]
	if r.Offset != 13 || r.Length != 7 || r.Captures[1] != "345" {
		t.Errorf("Second record came out as %+v", r)
	}
}

func TestRecordDigests(t *testing.T) {

	sc := NewFromArgv([]string{"rxscan-test", "-e", `\d+`, "--digest", "sha2-256"})

	records := collectRecords(t, sc, "x123y45")
	if len(records) != 2 {
		t.Fatalf("Emitted %d records, expected 2", len(records))
	}
	for i, r := range records {
		// the digest covers the whole matched span
		if len(r.Digest) != 64 {
			t.Errorf("Record %d digest %q is not a sha2-256", i, r.Digest)
		}
		if len(r.Captures) != 0 {
			t.Errorf("Record %d carries %d captures for a groupless expression", i, len(r.Captures))
		}
	}
	if records[0].Digest == records[1].Digest {
		t.Errorf("Distinct records share a digest")
	}
}

func TestMaxRecords(t *testing.T) {

	sc := NewFromArgv([]string{"rxscan-test", "-e", `(\w+)\n`, "--max-records", "2"})

	records := collectRecords(t, sc, "a\nb\nc\nd\n")
	if len(records) != 2 {
		t.Errorf("Emitted %d records with --max-records 2", len(records))
	}
}

func TestZstdDecompression(t *testing.T) {

	var comp bytes.Buffer
	enc, err := zstd.NewWriter(&comp)
	if err != nil {
		t.Fatalf("zstd writer setup failed: %s", err)
	}
	if _, err := enc.Write([]byte("k1=v1\nk2=v2\n")); err != nil {
		t.Fatalf("zstd write failed: %s", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("zstd close failed: %s", err)
	}

	sc := NewFromArgv([]string{"rxscan-test", "-e", `(\w+)=(\w+)\n`, "--decompress", "zstd"})

	records := collectRecords(t, sc, comp.String())
	if len(records) != 2 {
		t.Fatalf("Emitted %d records from the compressed stream, expected 2", len(records))
	}
	if records[1].Captures[0] != "k2" || records[1].Captures[1] != "v2" {
		t.Errorf("Second record came out as %+v", records[1])
	}
}
