// Package mockapi is an in-memory stand-in for the clinic backend. It speaks
// the same envelope and routes the client services call, for local work and
// end-to-end tests.
package mockapi

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/clinicdesk/internal/apiclient"
)

// Record is one stored JSON object.
type Record map[string]any

func (r Record) clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ID returns the record id.
func (r Record) ID() string { return r.String("id") }

// String returns field k when it is a string.
func (r Record) String(k string) string {
	s, _ := r[k].(string)
	return s
}

// Int returns field k as an integer. JSON numbers decode as float64.
func (r Record) Int(k string) int64 {
	switch v := r[k].(type) {
	case float64:
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	case json.Number:
		n, _ := v.Int64()
		return n
	}
	return 0
}

// Bool returns field k when it is a bool.
func (r Record) Bool(k string) bool {
	b, _ := r[k].(bool)
	return b
}

// Time parses field k as RFC 3339.
func (r Record) Time(k string) (time.Time, bool) {
	s := r.String(k)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

type collection struct {
	order []string
	items map[string]Record
}

// Store holds every collection. Reads return copies.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
	now         func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		collections: make(map[string]*collection),
		now:         time.Now,
	}
}

func (s *Store) coll(name string) *collection {
	c, ok := s.collections[name]
	if !ok {
		c = &collection{items: make(map[string]Record)}
		s.collections[name] = c
	}
	return c
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

// Insert stores rec, assigning an id and timestamps when absent.
func (s *Store) Insert(name string, rec Record) Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec = rec.clone()
	if rec.ID() == "" {
		rec["id"] = uuid.NewString()
	}
	ts := s.timestamp()
	if _, ok := rec["createdAt"]; !ok {
		rec["createdAt"] = ts
	}
	rec["updatedAt"] = ts

	c := s.coll(name)
	if _, exists := c.items[rec.ID()]; !exists {
		c.order = append(c.order, rec.ID())
	}
	c.items[rec.ID()] = rec
	return rec.clone()
}

// Get returns a copy of one record.
func (s *Store) Get(name, id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return nil, false
	}
	rec, ok := c.items[id]
	if !ok {
		return nil, false
	}
	return rec.clone(), true
}

// Update merges patch into the record. id and createdAt are immutable.
func (s *Store) Update(name, id string, patch Record) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		return nil, false
	}
	rec, ok := c.items[id]
	if !ok {
		return nil, false
	}
	for k, v := range patch {
		if k == "id" || k == "createdAt" {
			continue
		}
		rec[k] = v
	}
	rec["updatedAt"] = s.timestamp()
	return rec.clone(), true
}

// Delete removes a record.
func (s *Store) Delete(name, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		return false
	}
	if _, ok := c.items[id]; !ok {
		return false
	}
	delete(c.items, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// All returns every record of a collection in insertion order.
func (s *Store) All(name string) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return nil
	}
	out := make([]Record, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id].clone())
	}
	return out
}

// Find filters, sorts and pages a collection.
func (s *Store) Find(name string, q ListQuery) ([]Record, apiclient.Pagination) {
	var matched []Record
	for _, rec := range s.All(name) {
		if q.matches(rec) {
			matched = append(matched, rec)
		}
	}
	if q.SortBy != "" {
		desc := strings.EqualFold(q.SortOrder, "desc")
		sort.SliceStable(matched, func(i, j int) bool {
			c := compareField(matched[i][q.SortBy], matched[j][q.SortBy])
			if desc {
				return c > 0
			}
			return c < 0
		})
	}

	total := len(matched)
	p := apiclient.NewPagination(q.Page, q.Limit, total)
	start := (p.Page - 1) * q.Limit
	if start > total {
		start = total
	}
	end := start + q.Limit
	if end > total {
		end = total
	}
	page := matched[start:end]
	if page == nil {
		page = []Record{}
	}
	return page, p
}

func compareField(a, b any) int {
	af, aNum := a.(float64)
	bf, bNum := b.(float64)
	if aNum && bNum {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
