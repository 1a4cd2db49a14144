// Package protocol implements the labyrinth wire format: length-prefixed
// JSON framing over a stream socket, the non-standard 6-bit base-64
// variant used to carry radar payloads, the externally-tagged message
// envelope, and the per-connection protocol state machines.
package protocol

// alphabet is the non-standard base-64 alphabet used to encode radar
// payloads: lowercase a-z (0-25), uppercase A-Z (26-51), digits 0-9
// (52-61), '+' (62), '/' (63). There is no padding character.
const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789+/"

var decodeTable [256]int8

func init() {
	for i := range decodeTable {
		decodeTable[i] = -1
	}
	for i := 0; i < len(alphabet); i++ {
		decodeTable[alphabet[i]] = int8(i)
	}
}

// EncodeRadarBase64 encodes raw bytes using the labyrinth 6-bit alphabet.
// The final partial output character, if any, is zero-padded on the
// right; no padding character is appended.
func EncodeRadarBase64(data []byte) string {
	out := make([]byte, 0, (len(data)*8+5)/6)

	var buf uint32
	var bits uint

	for _, b := range data {
		buf = (buf << 8) | uint32(b)
		bits += 8
		for bits >= 6 {
			bits -= 6
			out = append(out, alphabet[(buf>>bits)&0x3f])
		}
	}
	if bits > 0 {
		out = append(out, alphabet[(buf<<(6-bits))&0x3f])
	}
	return string(out)
}

// DecodeRadarBase64 decodes a string encoded with the labyrinth 6-bit
// alphabet. Characters outside the alphabet are skipped rather than
// rejected, matching the wire format's tolerance for stray bytes.
func DecodeRadarBase64(s string) []byte {
	out := make([]byte, 0, len(s)*6/8+1)

	var buf uint32
	var bits uint

	for i := 0; i < len(s); i++ {
		v := decodeTable[s[i]]
		if v < 0 {
			continue
		}
		buf = (buf << 6) | uint32(v)
		bits += 6
		if bits >= 8 {
			bits -= 8
			out = append(out, byte(buf>>bits))
		}
	}
	return out
}
