package metrics

import (
	"net/http"

	"auction-house/internal/flash"
)

type flashStore struct {
	next flash.Store
	m    *Metrics
}

// InstrumentFlash wraps s so that writes and deliveries are counted.
func InstrumentFlash(s flash.Store, m *Metrics) flash.Store {
	if m == nil {
		return s
	}
	return &flashStore{next: s, m: m}
}

func (f *flashStore) Set(w http.ResponseWriter, r *http.Request, msg flash.Message) error {
	if err := f.next.Set(w, r, msg); err != nil {
		return err
	}
	normalized, _ := msg.Normalize()
	f.m.FlashWritten(string(normalized.Category))
	return nil
}

func (f *flashStore) Consume(w http.ResponseWriter, r *http.Request) (*flash.Message, error) {
	msg, err := f.next.Consume(w, r)
	if err == nil && msg != nil {
		f.m.FlashConsumed(string(msg.Category))
	}
	return msg, err
}
