package encoding

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// Run is a stretch of identical palette ids.
type Run struct {
	ID  uint16 `json:"id"`
	Len int    `json:"len"`
}

// Runs groups ids into maximal runs, in order.
func Runs(ids []uint16) []Run {
	var out []Run
	for i := 0; i < len(ids); {
		j := i + 1
		for j < len(ids) && ids[j] == ids[i] {
			j++
		}
		out = append(out, Run{ID: ids[i], Len: j - i})
		i = j
	}
	return out
}

// EncodeRLE encodes palette ids as base64 of uvarint (id, run length) pairs.
func EncodeRLE(ids []uint16) string {
	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte
	for _, r := range Runs(ids) {
		n := binary.PutUvarint(tmp[:], uint64(r.ID))
		buf.Write(tmp[:n])
		n = binary.PutUvarint(tmp[:], uint64(r.Len))
		buf.Write(tmp[:n])
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// DecodeRLE reverses EncodeRLE. If want > 0 the decoded length must equal
// want; runs that would overflow it are rejected before expansion.
func DecodeRLE(b64 string, want int) ([]uint16, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	var out []uint16
	if want > 0 {
		out = make([]uint16, 0, want)
	}
	for i := 0; i < len(raw); {
		id, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		run, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		if id > 0xFFFF {
			return nil, fmt.Errorf("block id too large: %d", id)
		}
		if run == 0 {
			return nil, fmt.Errorf("empty run at %d", i)
		}
		if want > 0 && uint64(len(out))+run > uint64(want) {
			return nil, fmt.Errorf("run overflows %d ids", want)
		}
		for k := uint64(0); k < run; k++ {
			out = append(out, uint16(id))
		}
	}
	if want > 0 && len(out) != want {
		return nil, fmt.Errorf("decoded %d ids, want %d", len(out), want)
	}
	return out, nil
}
