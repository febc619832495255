package protocol

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/clockworklabs/spacetimedb-go/pkg/bsatn"
)

// Identity is a SpacetimeDB user identity: an opaque byte blob issued by
// the server, conventionally rendered as hex.
type Identity struct {
	Data []byte
}

// IdentityFromHex parses an identity from its hex rendering.
func IdentityFromHex(s string) (Identity, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Identity{}, fmt.Errorf("protocol: invalid identity hex: %w", err)
	}
	return Identity{Data: b}, nil
}

// Hex returns the hex rendering of the identity.
func (id Identity) Hex() string {
	return hex.EncodeToString(id.Data)
}

func (id Identity) String() string { return id.Hex() }

// MarshalJSON renders the identity as a hex string.
func (id Identity) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.Hex())
}

// UnmarshalJSON parses the hex string rendering.
func (id *Identity) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := IdentityFromHex(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ConnectionID identifies one client connection, assigned by the server.
type ConnectionID struct {
	Data []byte
}

// ConnectionIDFromHex parses a connection id from its hex rendering.
func ConnectionIDFromHex(s string) (ConnectionID, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return ConnectionID{}, fmt.Errorf("protocol: invalid connection id hex: %w", err)
	}
	return ConnectionID{Data: b}, nil
}

// Hex returns the hex rendering of the connection id.
func (c ConnectionID) Hex() string {
	return hex.EncodeToString(c.Data)
}

func (c ConnectionID) String() string { return c.Hex() }

// MarshalJSON renders the connection id as a hex string.
func (c ConnectionID) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Hex())
}

// UnmarshalJSON parses the hex string rendering.
func (c *ConnectionID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ConnectionIDFromHex(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// QueryID identifies a registered subscription query.
type QueryID struct {
	ID uint32 `json:"id"`
}

// Timestamp is a point in time as nanoseconds since the Unix epoch.
type Timestamp struct {
	NanosSinceEpoch uint64 `json:"nanos_since_epoch"`
}

// Time converts the timestamp to a time.Time.
func (ts Timestamp) Time() time.Time {
	return time.Unix(0, int64(ts.NanosSinceEpoch))
}

// TimeDuration is an elapsed duration in nanoseconds.
type TimeDuration struct {
	Nanos uint64 `json:"nanos"`
}

// Duration converts to a time.Duration.
func (td TimeDuration) Duration() time.Duration {
	return time.Duration(td.Nanos)
}

// EnergyQuanta is the energy budget consumed by a reducer invocation.
// The client treats it as an opaque meter reading.
type EnergyQuanta struct {
	Quanta uint64 `json:"quanta"`
}

// CallReducerFlags adjust how the server processes a reducer call.
type CallReducerFlags uint8

const (
	// FullUpdate requests the normal full database update after the
	// reducer runs.
	FullUpdate CallReducerFlags = 0

	// NoSuccessNotify suppresses the success notification for this call;
	// the caller only hears about failures.
	NoSuccessNotify CallReducerFlags = 1
)

// String returns the string representation of the flags.
func (f CallReducerFlags) String() string {
	switch f {
	case FullUpdate:
		return "FullUpdate"
	case NoSuccessNotify:
		return "NoSuccessNotify"
	default:
		return "Unknown"
	}
}

// Binary field helpers shared by the client and server message codecs.
// Struct fields are written as a tagged value after the field name; readers
// consume the tag and dispatch, failing on a shape mismatch.

func readTaggedString(r *bsatn.Reader) (string, error) {
	tag, err := r.ReadTag()
	if err != nil {
		return "", err
	}
	if tag != bsatn.TagString {
		return "", fmt.Errorf("%w: expected string, got %s", bsatn.ErrInvalidTag, tag)
	}
	return r.ReadString()
}

func readTaggedBytes(r *bsatn.Reader) ([]byte, error) {
	tag, err := r.ReadTag()
	if err != nil {
		return nil, err
	}
	if tag != bsatn.TagBytes {
		return nil, fmt.Errorf("%w: expected bytes, got %s", bsatn.ErrInvalidTag, tag)
	}
	return r.ReadBytes()
}

func readTaggedU8(r *bsatn.Reader) (uint8, error) {
	tag, err := r.ReadTag()
	if err != nil {
		return 0, err
	}
	if tag != bsatn.TagU8 {
		return 0, fmt.Errorf("%w: expected u8, got %s", bsatn.ErrInvalidTag, tag)
	}
	return r.ReadU8()
}

func readTaggedU32(r *bsatn.Reader) (uint32, error) {
	tag, err := r.ReadTag()
	if err != nil {
		return 0, err
	}
	if tag != bsatn.TagU32 {
		return 0, fmt.Errorf("%w: expected u32, got %s", bsatn.ErrInvalidTag, tag)
	}
	return r.ReadU32()
}

func readTaggedU64(r *bsatn.Reader) (uint64, error) {
	tag, err := r.ReadTag()
	if err != nil {
		return 0, err
	}
	if tag != bsatn.TagU64 {
		return 0, fmt.Errorf("%w: expected u64, got %s", bsatn.ErrInvalidTag, tag)
	}
	return r.ReadU64()
}

func readStructHeader(r *bsatn.Reader) (int, error) {
	tag, err := r.ReadTag()
	if err != nil {
		return 0, err
	}
	if tag != bsatn.TagStruct {
		return 0, fmt.Errorf("%w: expected struct, got %s", bsatn.ErrInvalidTag, tag)
	}
	return r.ReadStructHeader()
}

func readArrayHeader(r *bsatn.Reader) (int, error) {
	tag, err := r.ReadTag()
	if err != nil {
		return 0, err
	}
	if tag != bsatn.TagArray && tag != bsatn.TagList {
		return 0, fmt.Errorf("%w: expected array, got %s", bsatn.ErrInvalidTag, tag)
	}
	return r.ReadArrayHeader()
}

func writeQueryID(w *bsatn.Writer, q QueryID) error {
	w.WriteStructHeader(1)
	if err := w.WriteFieldName("id"); err != nil {
		return err
	}
	w.WriteU32(q.ID)
	return nil
}

func readQueryID(r *bsatn.Reader) (QueryID, error) {
	n, err := readStructHeader(r)
	if err != nil {
		return QueryID{}, err
	}
	var q QueryID
	for i := 0; i < n; i++ {
		name, err := r.ReadFieldName()
		if err != nil {
			return QueryID{}, err
		}
		switch name {
		case "id":
			if q.ID, err = readTaggedU32(r); err != nil {
				return QueryID{}, err
			}
		default:
			if err := r.SkipValue(); err != nil {
				return QueryID{}, err
			}
		}
	}
	return q, nil
}

func writeOptionalU32(w *bsatn.Writer, v *uint32) {
	if v == nil {
		w.WriteOptionNone()
		return
	}
	w.WriteOptionSomeTag()
	w.WriteU32(*v)
}

func readOptionalU32(r *bsatn.Reader) (*uint32, error) {
	tag, err := r.ReadTag()
	if err != nil {
		return nil, err
	}
	switch tag {
	case bsatn.TagOptionNone:
		return nil, nil
	case bsatn.TagOptionSome:
		v, err := readTaggedU32(r)
		if err != nil {
			return nil, err
		}
		return &v, nil
	default:
		return nil, fmt.Errorf("%w: expected option, got %s", bsatn.ErrInvalidTag, tag)
	}
}

func writeOptionalString(w *bsatn.Writer, v *string) error {
	if v == nil {
		w.WriteOptionNone()
		return nil
	}
	w.WriteOptionSomeTag()
	return w.WriteString(*v)
}

func readOptionalString(r *bsatn.Reader) (*string, error) {
	tag, err := r.ReadTag()
	if err != nil {
		return nil, err
	}
	switch tag {
	case bsatn.TagOptionNone:
		return nil, nil
	case bsatn.TagOptionSome:
		v, err := readTaggedString(r)
		if err != nil {
			return nil, err
		}
		return &v, nil
	default:
		return nil, fmt.Errorf("%w: expected option, got %s", bsatn.ErrInvalidTag, tag)
	}
}

// EncodeTo writes the energy struct: {quanta: u64}.
func (e EnergyQuanta) EncodeTo(w *bsatn.Writer) error {
	w.WriteStructHeader(1)
	if err := w.WriteFieldName("quanta"); err != nil {
		return err
	}
	w.WriteU64(e.Quanta)
	return nil
}

// DecodeEnergyQuantaFrom reads the energy struct, skipping unknown fields.
func DecodeEnergyQuantaFrom(r *bsatn.Reader) (EnergyQuanta, error) {
	n, err := readStructHeader(r)
	if err != nil {
		return EnergyQuanta{}, err
	}
	var e EnergyQuanta
	for i := 0; i < n; i++ {
		name, err := r.ReadFieldName()
		if err != nil {
			return EnergyQuanta{}, err
		}
		switch name {
		case "quanta":
			if e.Quanta, err = readTaggedU64(r); err != nil {
				return EnergyQuanta{}, err
			}
		default:
			if err := r.SkipValue(); err != nil {
				return EnergyQuanta{}, err
			}
		}
	}
	return e, nil
}
