// Package messagingtest provides an in-process publisher for tests.
package messagingtest

import (
	"encoding/json"
	"sync"
)

type Message struct {
	Subject string
	Data    []byte
}

// Recorder captures published messages. Set Err to make Publish fail.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
	Err      error
}

func (r *Recorder) Publish(subject string, data interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	r.messages = append(r.messages, Message{Subject: subject, Data: payload})
	return nil
}

func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// Subjects lists published subjects in order
func (r *Recorder) Subjects() []string {
	var out []string
	for _, m := range r.Messages() {
		out = append(out, m.Subject)
	}
	return out
}

// Decode unmarshals the i-th message into v
func (r *Recorder) Decode(i int, v any) error {
	return json.Unmarshal(r.Messages()[i].Data, v)
}
