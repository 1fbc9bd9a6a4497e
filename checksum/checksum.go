// Package checksum fingerprints structured payloads for integrity verification.
package checksum

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Algorithm identifies the digest used by Compute
const Algorithm = "sha256"

// Result describes a computed fingerprint
type Result struct {
	Checksum   string    `json:"checksum"`
	Algorithm  string    `json:"algorithm"`
	ComputedAt time.Time `json:"computed_at"`
}

// Compute returns the lowercase hex SHA-256 of the canonical form of data
func Compute(data any) (string, error) {
	canonical, err := Canonicalize(data)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// ComputeResult is Compute with the algorithm and time stamped alongside
func ComputeResult(data any) (Result, error) {
	sum, err := Compute(data)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Checksum:   sum,
		Algorithm:  Algorithm,
		ComputedAt: time.Now().UTC(),
	}, nil
}

// Verify recomputes the checksum of data and compares it with expected.
// Malformed input yields false rather than an error.
func Verify(data any, expected string) bool {
	if len(expected) != sha256.Size*2 {
		return false
	}
	sum, err := Compute(data)
	if err != nil {
		return false
	}
	return sum == expected
}

/* Canonicalize serializes data with every nested object's keys sorted
 * Values are first normalized through encoding/json so structs, maps and
 * raw JSON all reduce to the same generic tree
 */
func Canonicalize(data any) ([]byte, error) {
	tree, err := normalize(data)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := write(&buf, tree); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func normalize(data any) (any, error) {
	var raw []byte
	switch v := data.(type) {
	case json.RawMessage:
		raw = v
	case []byte:
		raw = v
	default:
		b, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("marshaling data: %w", err)
		}
		raw = b
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("decoding data: %w", err)
	}
	return tree, nil
}

func write(buf *bytes.Buffer, v any) error {
	switch t := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		buf.WriteString(strconv.FormatBool(t))
	case json.Number:
		buf.WriteString(t.String())
	case string:
		b, err := json.Marshal(t)
		if err != nil {
			return err
		}
		buf.Write(b)
	case []any:
		buf.WriteByte('[')
		for i, item := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := write(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := write(buf, t[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unsupported canonical type %T", v)
	}
	return nil
}
