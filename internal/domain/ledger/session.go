package ledger

import (
	"sync"

	"github.com/google/uuid"
)

// Session keeps running expense and income counters for one automation run.
// Routines of several ships may share a session.
type Session struct {
	id string

	mu       sync.Mutex
	expenses int
	income   int
	byType   map[TransactionType]int
}

func NewSession() *Session {
	return &Session{
		id:     uuid.New().String(),
		byType: make(map[TransactionType]int),
	}
}

func (s *Session) ID() string {
	return s.id
}

// Record folds a transaction into the counters
func (s *Session) Record(tx Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if tx.Type.IsIncome() {
		s.income += tx.TotalPrice
	} else {
		s.expenses += tx.TotalPrice
	}
	s.byType[tx.Type] += tx.TotalPrice
	return nil
}

func (s *Session) Expenses() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expenses
}

func (s *Session) Income() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.income
}

// Net is income minus expenses
func (s *Session) Net() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.income - s.expenses
}

// Total returns the accumulated amount for one transaction type
func (s *Session) Total(t TransactionType) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byType[t]
}

// Breakdown returns the accumulated amount per transaction type
func (s *Session) Breakdown() map[TransactionType]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[TransactionType]int, len(s.byType))
	for t, amount := range s.byType {
		out[t] = amount
	}
	return out
}

// Summary returns log metadata for progress reports
func (s *Session) Summary() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return map[string]interface{}{
		"session_id": s.id,
		"expenses":   s.expenses,
		"income":     s.income,
		"net":        s.income - s.expenses,
	}
}
