package repository

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/Dan9191/finplan-service/internal/models"
	"github.com/Dan9191/finplan-service/internal/strategy"
	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrItemNotFound    = errors.New("item not found")
	ErrUnknownFacility = errors.New("unknown facility")
	ErrUnknownFlow     = errors.New("unknown flow direction")
)

type session struct {
	id        string
	position  models.DebtPosition
	ledgers   map[models.Facility]*models.FacilityLedger
	nextID    int64
	createdAt time.Time
	lastSeen  time.Time
}

// Repository keeps the debt position of every live session in memory.
// All access goes through one mutex, so strategy applications are atomic.
type Repository struct {
	mu       sync.Mutex
	sessions map[string]*session
	now      func() time.Time
}

// NewRepository initializes an empty repository
func NewRepository() *Repository {
	return &Repository{
		sessions: make(map[string]*session),
		now:      time.Now,
	}
}

// CreateSession starts a session seeded with the default position and ledger
func (r *Repository) CreateSession() models.Session {
	now := r.now()
	s := &session{
		id:        uuid.NewString(),
		position:  models.DefaultDebtPosition(),
		ledgers:   defaultLedgers(),
		nextID:    3,
		createdAt: now,
		lastSeen:  now,
	}

	r.mu.Lock()
	r.sessions[s.id] = s
	r.mu.Unlock()

	return models.Session{ID: s.id, CreatedAt: s.createdAt, LastSeen: s.lastSeen}
}

// Position returns a copy of the session's debt position
func (r *Repository) Position(sessionID string) (models.DebtPosition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.touch(sessionID)
	if err != nil {
		return models.DebtPosition{}, err
	}
	return s.position, nil
}

// ApplyStrategy runs one strategy application against the stored position
// and stores the result
func (r *Repository) ApplyStrategy(sessionID string, kind strategy.Kind, target models.Facility) (models.DebtPosition, error) {
	if target != "" && !target.Valid() {
		return models.DebtPosition{}, fmt.Errorf("%w: %q", ErrUnknownFacility, target)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.touch(sessionID)
	if err != nil {
		return models.DebtPosition{}, err
	}
	s.position = strategy.Apply(s.position, kind, target)
	return s.position, nil
}

// Facility returns one facility's balance and a copy of its ledger
func (r *Repository) Facility(sessionID string, f models.Facility) (models.FacilityView, error) {
	if !f.Valid() {
		return models.FacilityView{}, fmt.Errorf("%w: %q", ErrUnknownFacility, f)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.touch(sessionID)
	if err != nil {
		return models.FacilityView{}, err
	}
	l := s.ledgers[f]
	return models.FacilityView{
		Facility: f,
		Balance:  s.position.Get(f),
		Ledger: models.FacilityLedger{
			Credits: append([]models.FlowItem{}, l.Credits...),
			Debits:  append([]models.FlowItem{}, l.Debits...),
		},
	}, nil
}

// AddItem appends a ledger item and returns it with its assigned id
func (r *Repository) AddItem(sessionID string, f models.Facility, dir models.Direction, label string, amount float64) (models.FlowItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, items, err := r.items(sessionID, f, dir)
	if err != nil {
		return models.FlowItem{}, err
	}
	s.nextID++
	item := models.FlowItem{ID: s.nextID, Label: label, Amount: cleanAmount(amount)}
	*items = append(*items, item)
	return item, nil
}

// UpdateItem replaces the label and amount of an existing ledger item
func (r *Repository) UpdateItem(sessionID string, f models.Facility, dir models.Direction, item models.FlowItem) (models.FlowItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, items, err := r.items(sessionID, f, dir)
	if err != nil {
		return models.FlowItem{}, err
	}
	for i := range *items {
		if (*items)[i].ID == item.ID {
			item.Amount = cleanAmount(item.Amount)
			(*items)[i] = item
			return item, nil
		}
	}
	return models.FlowItem{}, fmt.Errorf("%w: %d", ErrItemNotFound, item.ID)
}

// RemoveItem deletes a ledger item
func (r *Repository) RemoveItem(sessionID string, f models.Facility, dir models.Direction, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, items, err := r.items(sessionID, f, dir)
	if err != nil {
		return err
	}
	for i := range *items {
		if (*items)[i].ID == id {
			*items = append((*items)[:i], (*items)[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %d", ErrItemNotFound, id)
}

// SweepIdle drops sessions not used for longer than ttl and returns how many went
func (r *Repository) SweepIdle(ttl time.Duration) int {
	cutoff := r.now().Add(-ttl)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Count returns the number of live sessions
func (r *Repository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// touch must be called with mu held
func (r *Repository) touch(sessionID string) (*session, error) {
	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.lastSeen = r.now()
	return s, nil
}

// items must be called with mu held
func (r *Repository) items(sessionID string, f models.Facility, dir models.Direction) (*session, *[]models.FlowItem, error) {
	if !f.Valid() {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownFacility, f)
	}
	if !dir.Valid() {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownFlow, dir)
	}
	s, err := r.touch(sessionID)
	if err != nil {
		return nil, nil, err
	}
	l := s.ledgers[f]
	if dir == models.DirectionCredit {
		return s, &l.Credits, nil
	}
	return s, &l.Debits, nil
}

func cleanAmount(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Max(0, math.Round(v))
}

func defaultLedgers() map[models.Facility]*models.FacilityLedger {
	return map[models.Facility]*models.FacilityLedger{
		models.FacilityOCC: {
			Credits: []models.FlowItem{{ID: 1, Label: "Invoice financing", Amount: 8000}, {ID: 2, Label: "Bank limit refresh", Amount: 5000}},
			Debits:  []models.FlowItem{{ID: 1, Label: "Raw materials", Amount: 7000}, {ID: 2, Label: "Supplier payments", Amount: 6000}},
		},
		models.FacilityOD: {
			Credits: []models.FlowItem{{ID: 1, Label: "Returned deposits", Amount: 2000}},
			Debits:  []models.FlowItem{{ID: 1, Label: "Emergency drawdown", Amount: 9000}},
		},
		models.FacilityWC: {
			Credits: []models.FlowItem{{ID: 1, Label: "Customer prepayment", Amount: 3000}},
			Debits:  []models.FlowItem{{ID: 1, Label: "Inventory build", Amount: 4000}},
		},
	}
}
