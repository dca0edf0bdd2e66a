// Package queue carries one message per uploaded document from the upload
// side to the archiving worker.
package queue

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Message is one unit of work. Produced once at upload time, consumed once
// (modulo redelivery) by the pipeline, immutable.
type Message struct {
	PartitionKey string `json:"partitionKey"`
	JobID        string `json:"jobId"`
	FileName     string `json:"fileName"`
	User         string `json:"user"`
}

// envelope wraps a message on the wire with optional expiry metadata.
type envelope struct {
	Message
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

const messageSchemaJSON = `{
	"type": "object",
	"properties": {
		"partitionKey": {"type": "string", "minLength": 1},
		"jobId":        {"type": "string", "minLength": 1},
		"fileName":     {"type": "string", "minLength": 1},
		"user":         {"type": "string"},
		"expiresAt":    {"type": "string"}
	},
	"required": ["partitionKey", "jobId", "fileName"]
}`

var messageSchema = mustCompileSchema(messageSchemaJSON)

func mustCompileSchema(doc string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("message.json", bytes.NewReader([]byte(doc))); err != nil {
		panic(err)
	}
	return compiler.MustCompile("message.json")
}

// EncodeMessage serializes a message; ttl > 0 stamps an expiry so stale
// deliveries can be dropped on dequeue.
func EncodeMessage(m Message, ttl time.Duration) ([]byte, error) {
	env := envelope{Message: m}
	if ttl > 0 {
		exp := time.Now().UTC().Add(ttl)
		env.ExpiresAt = &exp
	}
	return json.Marshal(env)
}

// DecodeMessage validates raw bytes against the message schema and
// deserializes them. Returns expired=true for a message past its expiry;
// such messages are dropped, not processed.
func DecodeMessage(raw []byte) (m Message, expired bool, err error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return Message{}, false, fmt.Errorf("unmarshal queue message: %w", err)
	}
	if err := messageSchema.Validate(v); err != nil {
		return Message{}, false, fmt.Errorf("queue message does not match schema: %w", err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Message{}, false, fmt.Errorf("unmarshal queue message: %w", err)
	}
	if env.ExpiresAt != nil && time.Now().After(*env.ExpiresAt) {
		return env.Message, true, nil
	}
	return env.Message, false, nil
}
