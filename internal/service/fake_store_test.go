package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"cinelight-api/internal/domain"
	"cinelight-api/internal/pagination"
	"cinelight-api/internal/repository"
	"github.com/jackc/pgx/v5/pgconn"
)

// memQuotations is an in-memory QuotationStore. InTx holds a single mutex for
// the whole callback and restores a snapshot when the callback fails. Every
// write to a quotation the transaction neither locked nor inserted is recorded
// in unlocked, and prices are stored at cent precision like numeric(12,2).
type memQuotations struct {
	mu         sync.Mutex
	nextID     int64
	quotations map[int64]domain.Quotation
	sections   map[int64]domain.QuotationSection
	items      map[int64]domain.QuotationItem
	equipment  map[int64]domain.Equipment
	prefixLock []string
	locks      int
	unlocked   []string
}

func newMemQuotations() *memQuotations {
	return &memQuotations{
		quotations: map[int64]domain.Quotation{},
		sections:   map[int64]domain.QuotationSection{},
		items:      map[int64]domain.QuotationItem{},
		equipment:  map[int64]domain.Equipment{},
	}
}

func (m *memQuotations) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memQuotations) List(_ context.Context, f repository.QuotationFilter, p pagination.Params) ([]domain.Quotation, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []domain.Quotation
	for _, q := range m.quotations {
		if f.Status != "" && string(q.Status) != f.Status {
			continue
		}
		if p.Search != "" && !strings.Contains(strings.ToLower(q.ClientName+" "+q.QuotationNumber+" "+q.ProjectName), strings.ToLower(p.Search)) {
			continue
		}
		all = append(all, q)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := len(all)
	start := p.Offset()
	if start > total {
		start = total
	}
	end := start + p.Limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (m *memQuotations) Get(_ context.Context, id int64) (*domain.Quotation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quotations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &q, nil
}

func (m *memQuotations) Sections(_ context.Context, quotationID int64) ([]domain.QuotationSection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sectionsOf(quotationID), nil
}

func (m *memQuotations) Items(_ context.Context, quotationID int64) ([]domain.QuotationItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.itemsOf(quotationID), nil
}

func (m *memQuotations) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.quotations[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.quotations, id)
	for sid, s := range m.sections {
		if s.QuotationID == id {
			delete(m.sections, sid)
		}
	}
	for iid, it := range m.items {
		if it.QuotationID == id {
			delete(m.items, iid)
		}
	}
	return nil
}

func (m *memQuotations) InTx(_ context.Context, fn func(repository.QuotationTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapQ := cloneMap(m.quotations)
	snapS := cloneMap(m.sections)
	snapI := cloneMap(m.items)
	next := m.nextID
	if err := fn(memTx{m: m, owned: map[int64]bool{}}); err != nil {
		m.quotations, m.sections, m.items, m.nextID = snapQ, snapS, snapI, next
		return err
	}
	return nil
}

func (m *memQuotations) sectionsOf(quotationID int64) []domain.QuotationSection {
	out := []domain.QuotationSection{}
	for _, s := range m.sections {
		if s.QuotationID == quotationID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memQuotations) itemsOf(quotationID int64) []domain.QuotationItem {
	out := []domain.QuotationItem{}
	for _, it := range m.items {
		if it.QuotationID == quotationID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func cloneMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// memTx runs with memQuotations.mu already held.
type memTx struct {
	m     *memQuotations
	owned map[int64]bool
}

func (t memTx) write(op string, quotationID int64) {
	if !t.owned[quotationID] {
		t.m.unlocked = append(t.m.unlocked, fmt.Sprintf("%s on quotation %d", op, quotationID))
	}
}

func (t memTx) LockNumberPrefix(_ context.Context, prefix string) error {
	t.m.prefixLock = append(t.m.prefixLock, prefix)
	return nil
}

func (t memTx) NumbersWithPrefix(_ context.Context, prefix string) ([]string, error) {
	var out []string
	for _, q := range t.m.quotations {
		if strings.HasPrefix(q.QuotationNumber, prefix) {
			out = append(out, q.QuotationNumber)
		}
	}
	return out, nil
}

func (t memTx) Insert(_ context.Context, q *domain.Quotation) (*domain.Quotation, error) {
	for _, existing := range t.m.quotations {
		if existing.QuotationNumber == q.QuotationNumber {
			return nil, &pgconn.PgError{Code: "23505"}
		}
	}
	c := *q
	c.ID = t.m.id()
	t.owned[c.ID] = true
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	c.Sections, c.Items = nil, nil
	t.m.quotations[c.ID] = c
	return &c, nil
}

func (t memTx) Lock(_ context.Context, id int64) (*domain.Quotation, error) {
	q, ok := t.m.quotations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	t.m.locks++
	t.owned[id] = true
	return &q, nil
}

func (t memTx) Update(_ context.Context, q *domain.Quotation) error {
	t.write("update", q.ID)
	if _, ok := t.m.quotations[q.ID]; !ok {
		return repository.ErrNotFound
	}
	for id, existing := range t.m.quotations {
		if id != q.ID && existing.QuotationNumber == q.QuotationNumber {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	c := *q
	c.Sections, c.Items = nil, nil
	t.m.quotations[q.ID] = c
	return nil
}

func (t memTx) Sections(_ context.Context, quotationID int64) ([]domain.QuotationSection, error) {
	return t.m.sectionsOf(quotationID), nil
}

func (t memTx) InsertSection(_ context.Context, s *domain.QuotationSection) (*domain.QuotationSection, error) {
	t.write("insert section", s.QuotationID)
	c := *s
	c.ID = t.m.id()
	t.m.sections[c.ID] = c
	return &c, nil
}

func (t memTx) UpdateSection(_ context.Context, s *domain.QuotationSection) error {
	t.write("update section", s.QuotationID)
	existing, ok := t.m.sections[s.ID]
	if !ok || existing.QuotationID != s.QuotationID {
		return repository.ErrNotFound
	}
	c := *s
	c.Items = nil
	t.m.sections[s.ID] = c
	return nil
}

func (t memTx) DeleteSection(_ context.Context, quotationID, id int64) error {
	t.write("delete section", quotationID)
	s, ok := t.m.sections[id]
	if !ok || s.QuotationID != quotationID {
		return repository.ErrNotFound
	}
	delete(t.m.sections, id)
	for iid, it := range t.m.items {
		if it.InSection(id) {
			delete(t.m.items, iid)
		}
	}
	return nil
}

func (t memTx) Items(_ context.Context, quotationID int64) ([]domain.QuotationItem, error) {
	return t.m.itemsOf(quotationID), nil
}

func (t memTx) InsertItem(_ context.Context, it *domain.QuotationItem) (*domain.QuotationItem, error) {
	t.write("insert item", it.QuotationID)
	c := *it
	c.ID = t.m.id()
	c.PricePerDay = c.PricePerDay.Round(2)
	t.m.items[c.ID] = c
	return &c, nil
}

func (t memTx) UpdateItem(_ context.Context, it *domain.QuotationItem) error {
	t.write("update item", it.QuotationID)
	existing, ok := t.m.items[it.ID]
	if !ok || existing.QuotationID != it.QuotationID {
		return repository.ErrNotFound
	}
	c := *it
	c.PricePerDay = c.PricePerDay.Round(2)
	t.m.items[it.ID] = c
	return nil
}

func (t memTx) DeleteItem(_ context.Context, quotationID, id int64) error {
	t.write("delete item", quotationID)
	it, ok := t.m.items[id]
	if !ok || it.QuotationID != quotationID {
		return repository.ErrNotFound
	}
	delete(t.m.items, id)
	return nil
}

func (t memTx) Equipment(_ context.Context, id int64) (*domain.Equipment, error) {
	e, ok := t.m.equipment[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

// memUsers is an in-memory UserStore.
type memUsers struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]domain.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[int64]domain.User{}}
}

func (m *memUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return nil, &pgconn.PgError{Code: "23505"}
		}
	}
	m.nextID++
	c := *u
	c.ID = m.nextID
	m.users[c.ID] = c
	return &c, nil
}

func (m *memUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) List(_ context.Context, _ repository.UserFilter, p pagination.Params) ([]domain.User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []domain.User
	for _, u := range m.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	start := p.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + p.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], len(all), nil
}

func (m *memUsers) Update(_ context.Context, u *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	m.users[u.ID] = *u
	c := *u
	return &c, nil
}

func (m *memUsers) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.users, id)
	return nil
}
