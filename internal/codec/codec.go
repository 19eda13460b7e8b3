// Package codec serializes a container.Container to and from its archive
// form: the opaque byte payload stored in the Keychain record.
//
// The archive is a JSON envelope carrying a format tag and a version. Decode
// only reconstructs archives whose tag and version match exactly and whose
// entry kinds are on the known-kind allow list; anything else is a
// *DecodeError. Decoding never instantiates types the archive names — the
// envelope can only ever produce a Container.
//
// Scalars are serialized as strings via strconv so int64 survives without
// float53 truncation and floats round-trip bit-exact. Bytes are base64.
package codec

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/keycrate/keycrate/internal/container"
)

// Format is the archive's root type tag. Decode rejects any other value.
const Format = "keycrate/container"

// Version is the archive schema version. Decode rejects any other value.
const Version = 1

// DecodeError reports an archive that could not be decoded as a Container:
// wrong format tag, wrong version, unknown entry kind, or corrupt content.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("codec: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("codec: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

type envelope struct {
	Format  string               `json:"format"`
	Version int                  `json:"version"`
	Entries map[string]wireEntry `json:"entries"`
}

type wireEntry struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// Encode serializes c into an archive.
func Encode(c *container.Container) ([]byte, error) {
	env := envelope{
		Format:  Format,
		Version: Version,
		Entries: make(map[string]wireEntry, c.Len()),
	}

	for _, key := range c.Keys() {
		kind, _ := c.Kind(key)
		var val string
		switch kind {
		case container.KindBool:
			v, _ := c.Bool(key)
			val = strconv.FormatBool(v)
		case container.KindInt32:
			v, _ := c.Int32(key)
			val = strconv.FormatInt(int64(v), 10)
		case container.KindInt64:
			v, _ := c.Int64(key)
			val = strconv.FormatInt(v, 10)
		case container.KindFloat32:
			v, _ := c.Float32(key)
			val = strconv.FormatFloat(float64(v), 'g', -1, 32)
		case container.KindFloat64:
			v, _ := c.Float64(key)
			val = strconv.FormatFloat(v, 'g', -1, 64)
		case container.KindBytes:
			v, _ := c.Bytes(key)
			val = base64.StdEncoding.EncodeToString(v)
		default:
			return nil, fmt.Errorf("codec: key %q has unsupported kind %v", key, kind)
		}
		env.Entries[key] = wireEntry{Kind: kind.String(), Value: val}
	}

	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("codec: encode: %w", err)
	}
	return data, nil
}

// Decode reconstructs a Container from an archive. Archives whose format tag
// or version differ from this package's, or that are malformed in any way,
// yield a *DecodeError.
func Decode(data []byte) (*container.Container, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &DecodeError{Reason: "malformed archive", Err: err}
	}
	if env.Format != Format {
		return nil, &DecodeError{Reason: fmt.Sprintf("unexpected format tag %q", env.Format)}
	}
	if env.Version != Version {
		return nil, &DecodeError{Reason: fmt.Sprintf("unsupported version %d", env.Version)}
	}

	c := container.New()
	for key, e := range env.Entries {
		switch e.Kind {
		case "bool":
			v, err := strconv.ParseBool(e.Value)
			if err != nil {
				return nil, &DecodeError{Reason: fmt.Sprintf("key %q: bad bool", key), Err: err}
			}
			c.SetBool(key, v)
		case "int32":
			v, err := strconv.ParseInt(e.Value, 10, 32)
			if err != nil {
				return nil, &DecodeError{Reason: fmt.Sprintf("key %q: bad int32", key), Err: err}
			}
			c.SetInt32(key, int32(v))
		case "int64":
			v, err := strconv.ParseInt(e.Value, 10, 64)
			if err != nil {
				return nil, &DecodeError{Reason: fmt.Sprintf("key %q: bad int64", key), Err: err}
			}
			c.SetInt64(key, v)
		case "float32":
			v, err := strconv.ParseFloat(e.Value, 32)
			if err != nil {
				return nil, &DecodeError{Reason: fmt.Sprintf("key %q: bad float32", key), Err: err}
			}
			c.SetFloat32(key, float32(v))
		case "float64":
			v, err := strconv.ParseFloat(e.Value, 64)
			if err != nil {
				return nil, &DecodeError{Reason: fmt.Sprintf("key %q: bad float64", key), Err: err}
			}
			c.SetFloat64(key, v)
		case "bytes":
			v, err := base64.StdEncoding.DecodeString(e.Value)
			if err != nil {
				return nil, &DecodeError{Reason: fmt.Sprintf("key %q: bad base64", key), Err: err}
			}
			c.SetBytes(key, v)
		default:
			return nil, &DecodeError{Reason: fmt.Sprintf("key %q: unknown kind %q", key, e.Kind)}
		}
	}
	return c, nil
}
