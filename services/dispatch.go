package services

import (
	"encoding/json"

	log "github.com/sirupsen/logrus"

	"github.com/CrowderSoup/zenboard/board"
)

// Dispatcher decodes actions in their wire form and applies them to the
// store. It is shared by the HTTP API, the WebSocket and the CLI.
type Dispatcher struct {
	store   *board.Store
	metrics *Metrics
}

// NewDispatcher returns a Dispatcher for store. metrics may be nil.
func NewDispatcher(store *board.Store, metrics *Metrics) *Dispatcher {
	return &Dispatcher{store: store, metrics: metrics}
}

// Apply decodes one action and dispatches it. Errors are those of
// board.DecodeAction and board.Store.Dispatch; on a persistence failure the
// returned views are still valid.
func (d *Dispatcher) Apply(data []byte) (board.Views, error) {
	action, err := board.DecodeAction(data)
	if err != nil {
		d.observe("", err)
		return board.Views{}, err
	}

	views, err := d.store.Dispatch(action)
	d.observe(action.Type(), err)
	if err != nil {
		log.WithError(err).WithField("action", action.Type()).Info("dispatch failed")
	}
	return views, err
}

// ActionFunc adapts Apply for WebSocket clients.
func (d *Dispatcher) ActionFunc() ActionFunc {
	return func(data json.RawMessage) error {
		_, err := d.Apply(data)
		return err
	}
}

func (d *Dispatcher) observe(action string, err error) {
	if d.metrics != nil {
		d.metrics.ObserveDispatch(action, err)
	}
}
