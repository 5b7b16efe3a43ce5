package encoding

import (
	"encoding/base64"
	"testing"
)

func TestRLE_RoundTrip(t *testing.T) {
	in := make([]uint16, 0, 200)
	in = append(in, 1, 1, 1, 2, 2, 3)
	for i := 0; i < 50; i++ {
		in = append(in, 7)
	}
	in = append(in, 9, 10, 10, 10)

	out, err := DecodeRLE(EncodeRLE(in), len(in))
	if err != nil {
		t.Fatalf("DecodeRLE: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("len mismatch: got %d want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("mismatch at %d: got %d want %d", i, out[i], in[i])
		}
	}
}

func TestRuns(t *testing.T) {
	got := Runs([]uint16{4, 4, 0, 0, 0, 4})
	want := []Run{{4, 2}, {0, 3}, {4, 1}}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("run %d: got %v want %v", i, got[i], want[i])
		}
	}
	if Runs(nil) != nil {
		t.Fatalf("expected no runs")
	}
}

func TestDecodeRLE_RejectsBadInput(t *testing.T) {
	enc := EncodeRLE([]uint16{1, 1, 1, 2})
	if _, err := DecodeRLE(enc, 3); err == nil {
		t.Fatalf("expected overflow error")
	}
	if _, err := DecodeRLE(enc, 8); err == nil {
		t.Fatalf("expected short error")
	}
	// id 1, run 0
	if _, err := DecodeRLE(base64.StdEncoding.EncodeToString([]byte{1, 0}), 0); err == nil {
		t.Fatalf("expected empty run error")
	}
	// truncated varint
	if _, err := DecodeRLE(base64.StdEncoding.EncodeToString([]byte{0x80}), 0); err == nil {
		t.Fatalf("expected varint error")
	}
	if _, err := DecodeRLE("!!", 0); err == nil {
		t.Fatalf("expected base64 error")
	}
}
