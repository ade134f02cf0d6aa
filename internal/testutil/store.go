// Package testutil provides in-memory implementations of the repository and
// cache interfaces so services and handlers can be tested without MongoDB or
// Redis.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"pinot/internal/editor"
	"pinot/internal/model"
	"pinot/internal/repository"
)

// Store holds every fake collection behind one mutex
type Store struct {
	mu sync.Mutex
	n  int

	Events       map[string]*model.Event
	Participants map[string]*model.Participant
	Labels       map[string][]*model.Label // by eventId
	Selections   map[string]*model.Selection
	Hosts        map[string]*model.Host
	Logs         []*model.AdminLog

	PINs     map[string]string
	Sessions map[string]*model.AdminSession
	Editors  map[string]*editor.State

	// FailReplaceLabels makes ReplaceAll return an error
	FailReplaceLabels bool
	// FailListParticipants makes participant ListByEvent return an error
	FailListParticipants bool
	// BeforeEventUpdate runs before event Update applies its write
	BeforeEventUpdate func()
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		Events:       map[string]*model.Event{},
		Participants: map[string]*model.Participant{},
		Labels:       map[string][]*model.Label{},
		Selections:   map[string]*model.Selection{},
		Hosts:        map[string]*model.Host{},
		PINs:         map[string]string{},
		Sessions:     map[string]*model.AdminSession{},
		Editors:      map[string]*editor.State{},
	}
}

func (s *Store) nextID(prefix string) string {
	s.n++
	return fmt.Sprintf("%s%04d", prefix, s.n)
}

// EventRepo returns the store as a repository.EventRepo
func (s *Store) EventRepo() repository.EventRepo { return eventRepo{s} }

// ParticipantRepo returns the store as a repository.ParticipantRepo
func (s *Store) ParticipantRepo() repository.ParticipantRepo { return participantRepo{s} }

// LabelRepo returns the store as a repository.LabelRepo
func (s *Store) LabelRepo() repository.LabelRepo { return labelRepo{s} }

// SelectionRepo returns the store as a repository.SelectionRepo
func (s *Store) SelectionRepo() repository.SelectionRepo { return selectionRepo{s} }

// HostRepo returns the store as a repository.HostRepo
func (s *Store) HostRepo() repository.HostRepo { return hostRepo{s} }

// LogRepo returns the store as a repository.LogRepo
func (s *Store) LogRepo() repository.LogRepo { return logRepo{s} }

func copyEvent(e *model.Event) *model.Event {
	c := *e
	c.CardAssignments = append([]model.CardAssignment{}, e.CardAssignments...)
	if e.Solution != nil {
		c.Solution = make(map[string]string, len(e.Solution))
		for k, v := range e.Solution {
			c.Solution[k] = v
		}
	}
	return &c
}

type eventRepo struct{ s *Store }

func (r eventRepo) Create(_ context.Context, event *model.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if event.ID == "" {
		event.ID = r.s.nextID("evt")
	}
	now := time.Now()
	event.CreatedAt, event.UpdatedAt = now, now
	r.s.Events[event.ID] = copyEvent(event)
	return nil
}

func (r eventRepo) GetByID(_ context.Context, id string) (*model.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if e, ok := r.s.Events[id]; ok {
		return copyEvent(e), nil
	}
	return nil, nil
}

func (r eventRepo) GetActiveByPIN(_ context.Context, pin string) (*model.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.Events {
		if e.Active && e.PIN == pin {
			return copyEvent(e), nil
		}
	}
	return nil, nil
}

func (r eventRepo) filter(keep func(*model.Event) bool) []*model.Event {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	events := []*model.Event{}
	for _, e := range r.s.Events {
		if keep(e) {
			events = append(events, copyEvent(e))
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ID > events[j].ID })
	return events
}

func (r eventRepo) ListByHost(_ context.Context, hostID string) ([]*model.Event, error) {
	return r.filter(func(e *model.Event) bool { return e.HostID == hostID }), nil
}

func (r eventRepo) ListActive(_ context.Context) ([]*model.Event, error) {
	return r.filter(func(e *model.Event) bool { return e.Active }), nil
}

func (r eventRepo) List(_ context.Context, limit int64) ([]*model.Event, error) {
	events := r.filter(func(*model.Event) bool { return true })
	if limit > 0 && int64(len(events)) > limit {
		events = events[:limit]
	}
	return events, nil
}

func (r eventRepo) Update(_ context.Context, event *model.Event) error {
	if r.s.BeforeEventUpdate != nil {
		r.s.BeforeEventUpdate()
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.Events[event.ID]
	if !ok || (event.Active && e.State != model.EventActive) {
		return repository.ErrNoMatch
	}
	event.UpdatedAt = time.Now()
	e.Name = event.Name
	e.Slug = event.Slug
	e.PIN = event.PIN
	e.Active = event.Active
	e.UpdatedAt = event.UpdatedAt
	return nil
}

func (r eventRepo) UpdateCards(_ context.Context, id string, cards []model.CardAssignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.Events[id]
	if !ok {
		return repository.ErrNoMatch
	}
	e.CardAssignments = append([]model.CardAssignment{}, cards...)
	return nil
}

func (r eventRepo) Finalize(_ context.Context, id string, solution map[string]string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.Events[id]
	if !ok || e.State != model.EventActive {
		return repository.ErrNoMatch
	}
	e.Solution = solution
	e.State = model.EventFinalized
	e.Active = false
	e.FinalizedAt = &at
	return nil
}

func (r eventRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.Events, id)
	return nil
}

type participantRepo struct{ s *Store }

func (r participantRepo) Create(_ context.Context, p *model.Participant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.ID == "" {
		p.ID = r.s.nextID("p")
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	c := *p
	r.s.Participants[p.ID] = &c
	return nil
}

func (r participantRepo) GetByID(_ context.Context, id string) (*model.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.Participants[id]; ok {
		c := *p
		return &c, nil
	}
	return nil, nil
}

func (r participantRepo) FindByName(_ context.Context, eventID, name string) (*model.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.Participants {
		if p.EventID == eventID && p.Name == name {
			c := *p
			return &c, nil
		}
	}
	return nil, nil
}

func (r participantRepo) ListByEvent(_ context.Context, eventID string) ([]*model.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailListParticipants {
		return nil, errors.New("participants unavailable")
	}
	list := []*model.Participant{}
	for _, p := range r.s.Participants {
		if p.EventID == eventID {
			c := *p
			list = append(list, &c)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r participantRepo) Update(_ context.Context, p *model.Participant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *p
	r.s.Participants[p.ID] = &c
	return nil
}

func (r participantRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.Participants, id)
	return nil
}

func (r participantRepo) DeleteByEvent(_ context.Context, eventID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, p := range r.s.Participants {
		if p.EventID == eventID {
			delete(r.s.Participants, id)
		}
	}
	return nil
}

type labelRepo struct{ s *Store }

func (r labelRepo) ReplaceAll(_ context.Context, eventID string, labels []*model.Label) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailReplaceLabels {
		return fmt.Errorf("bulk write failed")
	}
	stored := make([]*model.Label, 0, len(labels))
	for _, l := range labels {
		if l.ID == "" {
			l.ID = r.s.nextID("lbl")
		}
		l.EventID = eventID
		c := *l
		stored = append(stored, &c)
	}
	r.s.Labels[eventID] = stored
	return nil
}

func (r labelRepo) ListByEvent(_ context.Context, eventID string) ([]*model.Label, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := []*model.Label{}
	for _, l := range r.s.Labels[eventID] {
		c := *l
		list = append(list, &c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Order < list[j].Order })
	return list, nil
}

func (r labelRepo) RevealCards(_ context.Context, eventID string, cards map[string]model.CardAssignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.Labels[eventID] {
		if c, ok := cards[l.LabelID]; ok {
			l.CardID, l.CardName = c.CardID, c.CardName
		}
	}
	return nil
}

func (r labelRepo) DeleteByEvent(_ context.Context, eventID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.Labels, eventID)
	return nil
}

type selectionRepo struct{ s *Store }

func (r selectionRepo) Upsert(_ context.Context, sel *model.Selection) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sel.ID = repository.SelectionID(sel.EventID, sel.ParticipantID)
	if sel.UpdatedAt.IsZero() {
		sel.UpdatedAt = time.Now()
	}
	c := *sel
	r.s.Selections[sel.ID] = &c
	return nil
}

func (r selectionRepo) Get(_ context.Context, eventID, participantID string) (*model.Selection, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if sel, ok := r.s.Selections[repository.SelectionID(eventID, participantID)]; ok {
		c := *sel
		return &c, nil
	}
	return nil, nil
}

func (r selectionRepo) ListByEvent(_ context.Context, eventID string) ([]*model.Selection, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := []*model.Selection{}
	for _, sel := range r.s.Selections {
		if sel.EventID == eventID {
			c := *sel
			list = append(list, &c)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r selectionRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.Selections, id)
	return nil
}

func (r selectionRepo) DeleteByParticipant(_ context.Context, participantID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, sel := range r.s.Selections {
		if sel.ParticipantID == participantID {
			delete(r.s.Selections, id)
		}
	}
	return nil
}

func (r selectionRepo) DeleteByEvent(_ context.Context, eventID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, sel := range r.s.Selections {
		if sel.EventID == eventID {
			delete(r.s.Selections, id)
		}
	}
	return nil
}

type hostRepo struct{ s *Store }

func (r hostRepo) Create(_ context.Context, host *model.Host) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, h := range r.s.Hosts {
		if h.Email == host.Email {
			return fmt.Errorf("duplicate key: %s", host.Email)
		}
	}
	if host.ID == "" {
		host.ID = r.s.nextID("host_")
	}
	c := *host
	r.s.Hosts[host.ID] = &c
	return nil
}

func (r hostRepo) GetByID(_ context.Context, id string) (*model.Host, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if h, ok := r.s.Hosts[id]; ok {
		c := *h
		return &c, nil
	}
	return nil, nil
}

func (r hostRepo) GetByEmail(_ context.Context, email string) (*model.Host, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, h := range r.s.Hosts {
		if h.Email == email {
			c := *h
			return &c, nil
		}
	}
	return nil, nil
}

type logRepo struct{ s *Store }

func (r logRepo) Insert(_ context.Context, entry *model.AdminLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.Logs = append(r.s.Logs, entry)
	return nil
}

func (r logRepo) List(_ context.Context, filter model.LogFilter) ([]*model.AdminLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := []*model.AdminLog{}
	for i := len(r.s.Logs) - 1; i >= 0; i-- {
		l := r.s.Logs[i]
		if filter.Collection != "" && l.Collection != filter.Collection {
			continue
		}
		if filter.DocumentID != "" && l.DocumentID != filter.DocumentID {
			continue
		}
		list = append(list, l)
		if filter.Limit > 0 && int64(len(list)) >= filter.Limit {
			break
		}
	}
	return list, nil
}
