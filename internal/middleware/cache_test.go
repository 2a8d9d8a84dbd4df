package middleware

import (
	"net/http"
	"testing"
)

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{}
	hdr.Set("Content-Type", "application/json")
	hdr.Add("X-Custom", "a")
	hdr.Add("X-Custom", "b")
	body := []byte(`{"items":[]}`)

	bs, err := encodePayload(http.StatusOK, hdr, body)
	if err != nil {
		t.Fatalf("encodePayload: %v", err)
	}
	status, gotHdr, gotBody, ok := decodePayload(bs)
	if !ok {
		t.Fatal("decodePayload reported failure")
	}
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if gotHdr.Get("Content-Type") != "application/json" {
		t.Fatalf("Content-Type = %q", gotHdr.Get("Content-Type"))
	}
	if vals := gotHdr.Values("X-Custom"); len(vals) != 2 || vals[0] != "a" || vals[1] != "b" {
		t.Fatalf("X-Custom = %v", vals)
	}
	if string(gotBody) != string(body) {
		t.Fatalf("body = %q, want %q", gotBody, body)
	}
}

func TestPayloadEmptyBody(t *testing.T) {
	bs, err := encodePayload(http.StatusNoContent, http.Header{}, nil)
	if err != nil {
		t.Fatalf("encodePayload: %v", err)
	}
	status, _, body, ok := decodePayload(bs)
	if !ok || status != http.StatusNoContent || len(body) != 0 {
		t.Fatalf("got status=%d body=%q ok=%v", status, body, ok)
	}
}

func TestDecodePayloadRejectsGarbage(t *testing.T) {
	for _, in := range [][]byte{nil, {1, 2, 3}, make([]byte, 7)} {
		if _, _, _, ok := decodePayload(in); ok {
			t.Fatalf("decodePayload accepted %v", in)
		}
	}
	// Header length pointing past the buffer must be rejected.
	bad, _ := encodePayload(200, http.Header{}, []byte("x"))
	bad[7] = 0xFF
	if _, _, _, ok := decodePayload(bad); ok {
		t.Fatal("decodePayload accepted an oversized header length")
	}
}
