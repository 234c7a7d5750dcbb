// Package cart holds a shopper's cart: lines keyed by product and variant,
// each carrying the price captured when it was added. Every change is
// written to a Storage before the call returns; a failed write is logged and
// the in-memory cart stays authoritative.
package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultKey             = "cart"
	DefaultMaxLineQuantity = 99

	schemaVersion = 1
)

type envelope struct {
	Version int    `json:"version"`
	Lines   []Line `json:"lines"`
}

// Store is one cart. It is safe for concurrent use; each operation, including
// its write to storage, runs as a single critical section.
type Store struct {
	mu        sync.Mutex
	storage   Storage
	key       string
	maxLine   int
	logger    *zap.Logger
	now       func() time.Time
	lines     []Line
	listeners []Listener
}

type Option func(*Store)

// WithKey sets the storage key the cart is saved under.
func WithKey(key string) Option {
	return func(s *Store) {
		s.key = key
	}
}

// WithMaxLineQuantity caps the quantity of a single line.
func WithMaxLineQuantity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxLine = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore returns the cart saved in storage, or an empty one when nothing
// usable is stored.
func NewStore(ctx context.Context, storage Storage, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		key:     DefaultKey,
		maxLine: DefaultMaxLineQuantity,
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lines = s.load(ctx)
	return s
}

// Subscribe registers l for every future event.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// MaxLineQuantity returns the per-line cap.
func (s *Store) MaxLineQuantity() int {
	return s.maxLine
}

// Add puts quantity units of id into the cart. An existing line grows and
// keeps the price it was first added at; otherwise a new line is appended
// with snap.
func (s *Store) Add(ctx context.Context, id LineID, quantity int, snap Snapshot) (Line, error) {
	if id.ProductCode == "" || snap.UnitPrice.IsNegative() {
		return Line{}, ErrInvalidLine
	}
	if quantity <= 0 {
		return Line{}, ErrInvalidQuantity
	}

	s.mu.Lock()
	var line Line
	if i := s.indexOf(id); i >= 0 {
		current := s.lines[i].Quantity
		if quantity > s.maxLine-current {
			s.mu.Unlock()
			return Line{}, &QuantityLimitError{Line: id, Current: current, Requested: quantity, Max: s.maxLine}
		}
		s.lines[i].Quantity += quantity
		line = s.lines[i]
	} else {
		if quantity > s.maxLine {
			s.mu.Unlock()
			return Line{}, &QuantityLimitError{Line: id, Requested: quantity, Max: s.maxLine}
		}
		line = Line{LineID: id, Snapshot: snap, Quantity: quantity, AddedAt: s.now()}
		s.lines = append(s.lines, line)
	}
	s.persist(ctx)
	listeners := s.listeners
	s.mu.Unlock()

	notify(listeners, Event{Type: EventItemAdded, Line: &line})
	return line, nil
}

// UpdateQuantity sets the quantity of an existing line. A quantity of zero or
// less removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, id LineID, quantity int) error {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return &LineNotFoundError{Line: id}
	}
	if quantity > s.maxLine {
		current := s.lines[i].Quantity
		s.mu.Unlock()
		return &QuantityLimitError{Line: id, Current: current, Requested: quantity, Max: s.maxLine, Update: true}
	}

	var ev Event
	if quantity <= 0 {
		removed := s.lines[i]
		s.lines = append(s.lines[:i], s.lines[i+1:]...)
		ev = Event{Type: EventLineRemoved, Line: &removed}
	} else {
		s.lines[i].Quantity = quantity
		updated := s.lines[i]
		ev = Event{Type: EventLineUpdated, Line: &updated}
	}
	s.persist(ctx)
	listeners := s.listeners
	s.mu.Unlock()

	notify(listeners, ev)
	return nil
}

// Remove deletes the line for id. Removing a missing line does nothing.
func (s *Store) Remove(ctx context.Context, id LineID) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	removed := s.lines[i]
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	s.persist(ctx)
	listeners := s.listeners
	s.mu.Unlock()

	notify(listeners, Event{Type: EventLineRemoved, Line: &removed})
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.lines = nil
	s.persist(ctx)
	listeners := s.listeners
	s.mu.Unlock()

	notify(listeners, Event{Type: EventCleared})
}

// Open signals that the cart panel should be shown.
func (s *Store) Open() {
	s.mu.Lock()
	listeners := s.listeners
	s.mu.Unlock()

	notify(listeners, Event{Type: EventCartOpened})
}

// Lines returns a copy of the lines in the order they were first added.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Line(nil), s.lines...)
}

func (s *Store) Line(id LineID) (Line, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.lines[i], true
	}
	return Line{}, false
}

// TotalItems sums the quantities of all lines.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalItems(s.lines)
}

// TotalPrice sums unit price times quantity using the prices captured at add time.
func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalPrice(s.lines)
}

// Contents is a consistent copy of a cart: the totals always match the lines.
type Contents struct {
	Lines      []Line
	TotalItems int
	TotalPrice decimal.Decimal
}

// Contents returns the lines and both totals taken under a single lock.
func (s *Store) Contents() Contents {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Contents{
		Lines:      append([]Line(nil), s.lines...),
		TotalItems: totalItems(s.lines),
		TotalPrice: totalPrice(s.lines),
	}
}

func totalItems(lines []Line) int {
	total := 0
	for _, l := range lines {
		total += l.Quantity
	}
	return total
}

func totalPrice(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Total())
	}
	return total
}

func (s *Store) indexOf(id LineID) int {
	for i, l := range s.lines {
		if l.LineID == id {
			return i
		}
	}
	return -1
}

// persist must be called with s.mu held.
func (s *Store) persist(ctx context.Context) {
	data, err := json.Marshal(envelope{Version: schemaVersion, Lines: s.lines})
	if err != nil {
		s.logger.Error("encoding cart", zap.String("key", s.key), zap.Error(err))
		return
	}
	if err := s.storage.Set(ctx, s.key, data); err != nil {
		s.logger.Warn("saving cart", zap.String("key", s.key), zap.Error(err))
	}
}

func (s *Store) load(ctx context.Context) []Line {
	data, ok, err := s.storage.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn("reading saved cart", zap.String("key", s.key), zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}

	lines, err := s.decode(data)
	if err != nil {
		s.logger.Warn("discarding saved cart", zap.String("key", s.key), zap.Error(err))
		if err := s.storage.Delete(ctx, s.key); err != nil {
			s.logger.Warn("deleting saved cart", zap.String("key", s.key), zap.Error(err))
		}
		return nil
	}
	return lines
}

func (s *Store) decode(data []byte) ([]Line, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var env envelope
	if err := dec.Decode(&env); err != nil {
		return nil, err
	}
	if env.Version != schemaVersion {
		return nil, fmt.Errorf("unsupported version %d", env.Version)
	}

	seen := make(map[LineID]struct{}, len(env.Lines))
	for _, l := range env.Lines {
		switch {
		case l.ProductCode == "":
			return nil, errors.New("line without product")
		case l.Quantity <= 0 || l.Quantity > s.maxLine:
			return nil, fmt.Errorf("line %s: quantity %d out of range", l.LineID, l.Quantity)
		case l.UnitPrice.IsNegative():
			return nil, fmt.Errorf("line %s: negative price", l.LineID)
		}
		if _, dup := seen[l.LineID]; dup {
			return nil, fmt.Errorf("line %s stored twice", l.LineID)
		}
		seen[l.LineID] = struct{}{}
	}
	return env.Lines, nil
}

func notify(listeners []Listener, ev Event) {
	for _, l := range listeners {
		l(ev)
	}
}
