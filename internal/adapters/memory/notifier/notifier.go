package notifier

import (
	"context"
	"sync"
)

// Sent is one recorded notification.
type Sent struct {
	Email   string
	Subject string
	Body    string
}

// Recorder is an in-memory notifier for tests. It records every send and can
// be told to fail.
type Recorder struct {
	mu   sync.Mutex
	sent []Sent

	// FailWith, when non-nil, is returned from Notify instead of recording.
	FailWith error
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Notify(ctx context.Context, email, subject, bodyHTML string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	r.sent = append(r.sent, Sent{Email: email, Subject: subject, Body: bodyHTML})
	return nil
}

// SentMessages returns a copy of everything recorded so far.
func (r *Recorder) SentMessages() []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Sent(nil), r.sent...)
}
