package radar

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/jayllyz/labyrinth/internal/protocol"
)

func TestDecodeScenario1RightHandInput(t *testing.T) {
	payload := protocol.DecodeRadarBase64("swfGkIAyap8a8aa")
	v, err := Decode(payload)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	wantH := [12]Passage{Open, Wall, Undefined, Undefined, Open, Wall, Undefined, Open, Open, Undefined, Wall, Open}
	wantV := [12]Passage{Wall, Open, Wall, Undefined, Undefined, Wall, Open, Wall, Undefined, Wall, Wall, Wall}
	if v.Horizontal != wantH {
		t.Fatalf("horizontal = %v, want %v", v.Horizontal, wantH)
	}
	if v.Vertical != wantV {
		t.Fatalf("vertical = %v, want %v", v.Vertical, wantV)
	}
	if !HasRight(v, 4) {
		t.Fatalf("expected an open passage to the right of the center cell")
	}
}

func TestDecodeScenario2TremeauxInput(t *testing.T) {
	payload := protocol.DecodeRadarBase64("begGkcIyap8p8pa")
	v, err := Decode(payload)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if !HasTop(v, 4) || !HasBottom(v, 4) {
		t.Fatalf("expected both the top and bottom neighbors of the center cell to be open")
	}
	if HasLeft(v, 4) || HasRight(v, 4) {
		t.Fatalf("expected both the left and right neighbors of the center cell to be walled")
	}
}

func TestDecodeRejectsShortPayload(t *testing.T) {
	_, err := Decode(make([]byte, 10))
	if err == nil {
		t.Fatalf("expected an error for a 10-byte payload")
	}
	var decodeErr *DecodeError
	if _, ok := err.(*DecodeError); !ok {
		_ = decodeErr
		t.Fatalf("expected *DecodeError, got %T", err)
	}
}

func TestDecodeRejectsAllInvalidCells(t *testing.T) {
	payload := make([]byte, 11)
	for i := range payload {
		payload[i] = 0b01010101 // nibble 0101 has no CellKind mapping anywhere
	}
	_, err := Decode(payload)
	if err == nil {
		t.Fatalf("expected an error when no cell slot decodes to a valid kind")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		payload := make([]byte, 11)
		r.Read(payload)

		v, err := Decode(payload)
		if err != nil {
			// Randomly generated payloads occasionally have no valid
			// cell code; that's a legitimate decode failure, skip it.
			continue
		}
		back := Encode(v)
		if !reflect.DeepEqual(back, payload) {
			t.Fatalf("round trip mismatch:\n got %x\nwant %x", back, payload)
		}
	}
}

func TestWallCount(t *testing.T) {
	v := New(
		[12]Passage{Wall, Wall, Wall, Wall, Wall, Wall, Wall, Wall, Wall, Wall, Wall, Wall},
		[12]Passage{Wall, Wall, Wall, Wall, Wall, Wall, Wall, Wall, Wall, Wall, Wall, Wall},
		[9]CellKind{Nothing, Nothing, Nothing, Nothing, Nothing, Nothing, Nothing, Nothing, Nothing},
	)
	if got := WallCount(v, 4); got != 4 {
		t.Fatalf("WallCount(4) = %d, want 4", got)
	}
}
