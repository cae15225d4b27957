package board

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/CrowderSoup/zenboard/storage"
)

// StateKey is the storage key the board is persisted under.
const StateKey storage.Key[State] = "state"

// Event is delivered to subscribers after every applied action.
type Event struct {
	Action string
	Views  Views
	// Err is a *PersistenceError when the new state could not be written.
	Err error
}

// Store owns the board state. All writes go through Dispatch, which applies
// one action at a time and persists the result; reads return copies.
type Store struct {
	mu          sync.Mutex
	state       State
	storage     *storage.Storage
	factory     Factory
	logger      log.FieldLogger
	subscribers map[int]func(Event)
	nextSub     int
}

type Option func(*Store)

// WithFactory sets the id and clock source used to stamp records.
func WithFactory(f Factory) Option {
	return func(s *Store) { s.factory = f }
}

func WithLogger(l log.FieldLogger) Option {
	return func(s *Store) { s.logger = l }
}

// NewStore restores the board from st, starting empty when nothing usable is
// stored.
func NewStore(st *storage.Storage, opts ...Option) *Store {
	s := &Store{
		storage:     st,
		logger:      log.StandardLogger(),
		subscribers: make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state = Restore(st)
	s.logger.WithFields(log.Fields{
		"lists": len(s.state.Lists),
		"cards": len(s.state.Cards),
	}).Info("board restored")
	return s
}

// Restore reads the persisted state. Absent or undecodable data yields the
// empty board.
func Restore(st *storage.Storage) State {
	state, ok := storage.Get(st, StateKey)
	if !ok {
		return NewState()
	}
	return state.Clone()
}

// Persist writes state under StateKey.
func Persist(st *storage.Storage, state State) error {
	return storage.Set(st, StateKey, state)
}

// Dispatch applies action. On a NotFoundError or ValidationError nothing
// changes and nothing is written. When the write fails the new state is kept
// and a *PersistenceError is returned alongside the fresh views.
//
// Subscribers run before Dispatch returns and must not call Dispatch.
func (s *Store) Dispatch(action Action) (Views, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := Reduce(s.state, action, s.factory)
	if err != nil {
		s.logger.WithError(err).WithField("action", actionType(action)).Debug("action rejected")
		return Views{}, err
	}
	s.state = next

	var perr error
	if err := Persist(s.storage, next); err != nil {
		perr = &PersistenceError{Err: err}
		s.logger.WithError(err).WithField("action", action.Type()).Error("failed to persist board")
	}

	views := ViewsOf(next)
	s.notify(Event{Action: action.Type(), Views: views, Err: perr})
	return views, perr
}

// Replace swaps in a whole state, e.g. one read from an export file, and
// persists it.
func (s *Store) Replace(state State) (Views, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = state.Clone()

	var perr error
	if err := Persist(s.storage, s.state); err != nil {
		perr = &PersistenceError{Err: err}
	}

	views := ViewsOf(s.state)
	s.notify(Event{Action: "replace", Views: views, Err: perr})
	return views, perr
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Store) Views() Views {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ViewsOf(s.state)
}

func (s *Store) Lists() []List {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SortedLists(s.state)
}

func (s *Store) Cards() []Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SortedCards(s.state)
}

func (s *Store) CardsInList(parent string) []Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CardsInList(s.state, parent)
}

// Snapshot calls fn with the current views while holding the store lock, so
// no action is applied until fn returns. fn must not call back into the
// store.
func (s *Store) Snapshot(fn func(Views)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(ViewsOf(s.state))
}

// Subscribe registers fn for every applied action and returns a function
// that removes it.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

func (s *Store) notify(ev Event) {
	for _, fn := range s.subscribers {
		fn(ev)
	}
}

func actionType(a Action) string {
	if a == nil {
		return ""
	}
	return a.Type()
}
