package repository

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/okian/raffle/internal/domain/model"
	"github.com/okian/raffle/pkg/metrics"
)

const defaultPageSize = 10

type winnerRecord struct {
	id            string
	participantID string
	drawnAt       time.Time
	drawnByID     string
	notified      bool
	notifiedAt    *time.Time
	prize         string
}

// MemoryStore is a goroutine-safe in-memory Store. Participants and winners
// are kept in insertion order so listings can walk them backwards.
type MemoryStore struct {
	mu           sync.RWMutex
	participants []*Participant
	byID         map[string]*Participant
	byEmail      map[string]*Participant
	byToken      map[string]*Participant
	sessions     map[string]string
	winners      []*winnerRecord

	now   func() time.Time
	pick  func(n int) int
	cost  int
	prize string
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		byID:     make(map[string]*Participant),
		byEmail:  make(map[string]*Participant),
		byToken:  make(map[string]*Participant),
		sessions: make(map[string]string),
		now:      time.Now,
		pick:     rand.IntN,
		cost:     bcrypt.DefaultCost,
		prize:    model.DefaultPrize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ValidPhone reports whether phone holds digits once +, spaces and dashes
// are removed.
func ValidPhone(phone string) bool {
	digits := strings.NewReplacer("+", "", " ", "", "-", "").Replace(phone)
	if digits == "" {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Register implements Store.
func (s *MemoryStore) Register(_ context.Context, email, fullName, phone string) (Participant, error) {
	if !ValidPhone(phone) {
		return Participant{}, ErrInvalidPhone
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[email]; ok {
		return Participant{}, ErrEmailTaken
	}
	p := &Participant{
		ID:                uuid.NewString(),
		Email:             email,
		FullName:          fullName,
		Phone:             phone,
		VerificationToken: uuid.NewString(),
		IsActive:          true,
		CreatedAt:         s.now(),
	}
	s.insertLocked(p)
	return *p, nil
}

// CreateAdmin implements Store.
func (s *MemoryStore) CreateAdmin(_ context.Context, email, fullName, password string) (Participant, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return Participant{}, fmt.Errorf("hash admin password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.byEmail[email]; ok {
		return *existing, nil
	}
	now := s.now()
	p := &Participant{
		ID:                uuid.NewString(),
		Email:             email,
		FullName:          fullName,
		VerificationToken: uuid.NewString(),
		IsVerified:        true,
		VerifiedAt:        &now,
		PasswordHash:      hash,
		IsActive:          true,
		IsAdmin:           true,
		CreatedAt:         now,
	}
	s.insertLocked(p)
	return *p, nil
}

func (s *MemoryStore) insertLocked(p *Participant) {
	s.participants = append(s.participants, p)
	s.byID[p.ID] = p
	s.byEmail[p.Email] = p
	s.byToken[p.VerificationToken] = p
	s.updateGaugesLocked()
}

// Verify implements Store.
func (s *MemoryStore) Verify(_ context.Context, token string) (Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byToken[token]
	if !ok || p.IsVerified {
		return Participant{}, ErrInvalidToken
	}
	now := s.now()
	p.IsVerified = true
	p.VerifiedAt = &now
	s.updateGaugesLocked()
	return *p, nil
}

// SetPassword implements Store.
func (s *MemoryStore) SetPassword(_ context.Context, token, password string) (Participant, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return Participant{}, fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byToken[token]
	if !ok || !p.IsVerified {
		return Participant{}, ErrNotVerified
	}
	p.PasswordHash = hash
	return *p, nil
}

// Login implements Store.
func (s *MemoryStore) Login(_ context.Context, email, password string) (Participant, Session, error) {
	s.mu.RLock()
	p, ok := s.byEmail[email]
	var snapshot Participant
	if ok {
		snapshot = *p
	}
	s.mu.RUnlock()

	if !ok || len(snapshot.PasswordHash) == 0 {
		return Participant{}, Session{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(snapshot.PasswordHash, []byte(password)); err != nil {
		return Participant{}, Session{}, ErrInvalidCredentials
	}
	if !snapshot.IsAdmin {
		return Participant{}, Session{}, ErrNotAdmin
	}

	session := Session{Access: uuid.NewString(), Refresh: uuid.NewString()}
	s.mu.Lock()
	s.sessions[session.Access] = snapshot.ID
	s.mu.Unlock()
	return snapshot, session, nil
}

// Authenticate implements Store.
func (s *MemoryStore) Authenticate(_ context.Context, access string) (Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.sessions[access]
	if !ok {
		return Participant{}, ErrUnknownAccessToken
	}
	p, ok := s.byID[id]
	if !ok {
		return Participant{}, ErrNotFound
	}
	return *p, nil
}

// Participant implements Store.
func (s *MemoryStore) Participant(_ context.Context, id string) (Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	if !ok {
		return Participant{}, ErrNotFound
	}
	return *p, nil
}

// Participants implements Store.
func (s *MemoryStore) Participants(_ context.Context, q Query) ([]Participant, int, error) {
	terms := strings.Fields(strings.ToLower(strings.ReplaceAll(q.Search, ",", " ")))

	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []Participant
	for i := len(s.participants) - 1; i >= 0; i-- {
		p := s.participants[i]
		if p.IsAdmin {
			continue
		}
		if q.IsVerified != nil && p.IsVerified != *q.IsVerified {
			continue
		}
		if !matchesAll(p, terms) {
			continue
		}
		matched = append(matched, *p)
	}

	lo, hi, err := pageBounds(len(matched), q.Page, q.PageSize)
	if err != nil {
		return nil, 0, err
	}
	return matched[lo:hi], len(matched), nil
}

func matchesAll(p *Participant, terms []string) bool {
	for _, term := range terms {
		if !strings.Contains(strings.ToLower(p.Email), term) &&
			!strings.Contains(strings.ToLower(p.FullName), term) &&
			!strings.Contains(strings.ToLower(p.Phone), term) {
			return false
		}
	}
	return true
}

// pageBounds returns the slice bounds of a 1-based page. An empty first page
// is valid.
func pageBounds(total, page, size int) (int, int, error) {
	if size <= 0 {
		size = defaultPageSize
	}
	if page == 0 {
		page = 1
	}
	pages := (total + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	if page < 1 || page > pages {
		return 0, 0, ErrInvalidPage
	}
	lo := (page - 1) * size
	hi := min(lo+size, total)
	return lo, hi, nil
}

// Stats implements Store.
func (s *MemoryStore) Stats(_ context.Context) Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statsLocked()
}

func (s *MemoryStore) statsLocked() Stats {
	var st Stats
	for _, p := range s.participants {
		if p.IsAdmin {
			continue
		}
		st.Total++
		if p.IsVerified {
			st.Verified++
		}
	}
	st.Pending = st.Total - st.Verified
	st.Eligible = st.Verified
	return st
}

func (s *MemoryStore) updateGaugesLocked() {
	st := s.statsLocked()
	metrics.UpdateParticipants(st.Total, st.Verified)
}

// Draw implements Store.
func (s *MemoryStore) Draw(_ context.Context, by Participant) (Winner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var eligible []*Participant
	for _, p := range s.participants {
		if p.CanParticipate() {
			eligible = append(eligible, p)
		}
	}
	if len(eligible) == 0 {
		return Winner{}, ErrNoEligible
	}

	chosen := eligible[s.pick(len(eligible))]
	rec := &winnerRecord{
		id:            uuid.NewString(),
		participantID: chosen.ID,
		drawnAt:       s.now(),
		drawnByID:     by.ID,
		prize:         s.prize,
	}
	s.winners = append(s.winners, rec)
	metrics.UpdateWinners(len(s.winners))
	return s.resolveLocked(rec), nil
}

// Winner implements Store.
func (s *MemoryStore) Winner(_ context.Context, id string) (Winner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec := s.winnerLocked(id)
	if rec == nil {
		return Winner{}, ErrNotFound
	}
	return s.resolveLocked(rec), nil
}

// MarkNotified implements Store.
func (s *MemoryStore) MarkNotified(_ context.Context, winnerID string) (Winner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.winnerLocked(winnerID)
	if rec == nil {
		return Winner{}, ErrNotFound
	}
	now := s.now()
	rec.notified = true
	rec.notifiedAt = &now
	return s.resolveLocked(rec), nil
}

func (s *MemoryStore) winnerLocked(id string) *winnerRecord {
	for _, rec := range s.winners {
		if rec.id == id {
			return rec
		}
	}
	return nil
}

// Winners implements Store.
func (s *MemoryStore) Winners(_ context.Context, page, pageSize int) ([]Winner, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lo, hi, err := pageBounds(len(s.winners), page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	out := make([]Winner, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, s.resolveLocked(s.winners[len(s.winners)-1-i]))
	}
	return out, len(s.winners), nil
}

func (s *MemoryStore) resolveLocked(rec *winnerRecord) Winner {
	w := Winner{
		ID:         rec.id,
		DrawnAt:    rec.drawnAt,
		Notified:   rec.notified,
		NotifiedAt: rec.notifiedAt,
		Prize:      rec.prize,
	}
	if p, ok := s.byID[rec.participantID]; ok {
		w.Participant = *p
	}
	if by, ok := s.byID[rec.drawnByID]; ok {
		drawnBy := *by
		w.DrawnBy = &drawnBy
	}
	return w
}
