package checksum

import (
	"encoding/json"
	"fmt"
	"time"
)

// Metadata stamps stored data with its integrity fingerprint
type Metadata struct {
	InboxMessageID *string `json:"inbox_message_id"`
	CreateAt       string  `json:"create_at"`
	Checksum       string  `json:"checksum"`
}

/* Envelope is the persisted wrapper around stored data
 * The checksum covers the Data field only
 */
type Envelope struct {
	Metadata Metadata        `json:"metadata"`
	Data     json.RawMessage `json:"data"`
}

// Wrap builds an envelope for data, computing its checksum
func Wrap(data any, inboxMessageID *string) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshaling data: %w", err)
	}
	sum, err := Compute(json.RawMessage(raw))
	if err != nil {
		return Envelope{}, fmt.Errorf("computing checksum: %w", err)
	}
	return Envelope{
		Metadata: Metadata{
			InboxMessageID: inboxMessageID,
			CreateAt:       time.Now().UTC().Format(time.RFC3339Nano),
			Checksum:       sum,
		},
		Data: raw,
	}, nil
}

// Valid reports whether the envelope's checksum still matches its data
func (e Envelope) Valid() bool {
	return Verify(e.Data, e.Metadata.Checksum)
}

// Bytes returns the JSON-encoded envelope
func (e Envelope) Bytes() ([]byte, error) {
	return json.Marshal(e)
}
