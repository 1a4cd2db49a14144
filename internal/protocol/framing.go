package protocol

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// MaxFrameSize is the largest frame a reader will accept, per the wire
// format. A length prefix above this is a MessageError and the
// connection must be aborted.
const MaxFrameSize = 1 << 20 // 1 MiB

// MessageError is returned for malformed or oversize frames. The
// connection that produced it must be closed by the caller.
type MessageError struct {
	Reason string
}

func (e *MessageError) Error() string {
	return fmt.Sprintf("message error: %s", e.Reason)
}

// WriteFrame writes a little-endian u32 length prefix followed by body.
func WriteFrame(w io.Writer, body []byte) error {
	if len(body) > MaxFrameSize {
		return &MessageError{Reason: fmt.Sprintf("frame too large: %d bytes", len(body))}
	}
	var header [4]byte
	binary.LittleEndian.PutUint32(header[:], uint32(len(body)))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("write frame body: %w", err)
	}
	return nil
}

// ReadFrame reads one length-prefixed frame, rejecting lengths above
// MaxFrameSize with a *MessageError.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(header[:])
	if n > MaxFrameSize {
		return nil, &MessageError{Reason: fmt.Sprintf("frame length %d exceeds max %d", n, MaxFrameSize)}
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("read frame body: %w", err)
	}
	return body, nil
}

// WriteMessage frames and writes an Envelope-wrapped message.
func WriteMessage(w io.Writer, msg any) error {
	env, err := Wrap(msg)
	if err != nil {
		return fmt.Errorf("wrap message: %w", err)
	}
	body, err := json.Marshal(env)
	if err != nil {
		return &SerializationError{Err: err}
	}
	return WriteFrame(w, body)
}

// ReadMessage reads one frame and unwraps it into a concrete message
// value, returning the variant name alongside it.
func ReadMessage(r io.Reader) (string, any, error) {
	body, err := ReadFrame(r)
	if err != nil {
		return "", nil, err
	}
	variant, msg, err := Unwrap(body)
	if err != nil {
		return "", nil, err
	}
	return variant, msg, nil
}

// SerializationError wraps a JSON marshal/unmarshal failure.
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialization error: %v", e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}
