package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"edumarket/internal/premium"
	"edumarket/pkg/pagination"
)

type contentKey struct {
	student int64
	content int64
	typ     premium.Type
}

type memoryState struct {
	nextID   int64
	students map[int64]premium.Student
	teachers map[int64]int64
	contents map[int64]premium.Content
}

func (s memoryState) clone() memoryState {
	out := memoryState{
		nextID:   s.nextID,
		students: make(map[int64]premium.Student, len(s.students)),
		teachers: make(map[int64]int64, len(s.teachers)),
		contents: make(map[int64]premium.Content, len(s.contents)),
	}
	for k, v := range s.students {
		out.students[k] = v
	}
	for k, v := range s.teachers {
		out.teachers[k] = v
	}
	for k, v := range s.contents {
		out.contents[k] = v
	}
	return out
}

// MemoryRepository mirrors the postgres schema in process memory. InTx
// serializes transactions and restores a snapshot when fn fails.
type MemoryRepository struct {
	mu    sync.Mutex
	state memoryState
	now   func() time.Time

	// CreditErr, when set, is returned by CreditTeacher.
	CreditErr error
}

func NewMemoryRepository(now func() time.Time) *MemoryRepository {
	if now == nil {
		now = time.Now
	}
	return &MemoryRepository{
		state: memoryState{
			students: map[int64]premium.Student{},
			teachers: map[int64]int64{},
			contents: map[int64]premium.Content{},
		},
		now: now,
	}
}

func (r *MemoryRepository) PutStudent(id int64, name string, balance int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.students[id] = premium.Student{ID: id, FullName: name, Balance: balance}
}

func (r *MemoryRepository) PutTeacher(id, totalNet int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.teachers[id] = totalNet
}

func (r *MemoryRepository) Balance(id int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.students[id].Balance
}

func (r *MemoryRepository) TotalNet(id int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.teachers[id]
}

// Insert stores c directly, bypassing the ledger.
func (r *MemoryRepository) Insert(c premium.Content) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.nextID++
	c.ID = r.state.nextID
	r.state.contents[c.ID] = c
	return c.ID
}

func (r *MemoryRepository) InTx(_ context.Context, fn func(tx TxRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot := r.state.clone()
	if err := fn(&memoryTx{repo: r}); err != nil {
		r.state = snapshot
		return err
	}
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id int64) (*premium.Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.state.contents[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (r *MemoryRepository) Find(_ context.Context, studentID, contentID int64, t premium.Type) (*premium.Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := contentKey{studentID, contentID, t}
	for _, c := range r.state.contents {
		if keyOf(c) == want {
			cp := c
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) List(_ context.Context, limit, offset int) ([]premium.Content, int, error) {
	return r.page(func(premium.Content) bool { return true }, limit, offset)
}

func (r *MemoryRepository) ListByStudent(_ context.Context, studentID int64, limit, offset int) ([]premium.Content, int, error) {
	return r.page(func(c premium.Content) bool { return c.StudentID == studentID }, limit, offset)
}

func (r *MemoryRepository) page(match func(premium.Content) bool, limit, offset int) ([]premium.Content, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := []premium.Content{}
	for _, c := range r.state.contents {
		if match(c) {
			all = append(all, c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })

	total := len(all)
	begin, end := pagination.Window(total, limit, offset)
	return all[begin:end], total, nil
}

func (r *MemoryRepository) Update(_ context.Context, id int64, upd premium.Update) (*premium.Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.state.contents[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Class != nil {
		c.Class = *upd.Class
	}
	if upd.SubjectName != nil {
		c.SubjectName = *upd.SubjectName
	}
	if upd.ContentName != nil {
		c.ContentName = *upd.ContentName
	}
	if upd.PublisherName != nil {
		c.PublisherName = *upd.PublisherName
	}
	if upd.DateOfExpiry != nil {
		c.DateOfExpiry = premium.Day(*upd.DateOfExpiry)
	}
	r.state.contents[id] = c
	return &c, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.state.contents[id]; !ok {
		return ErrNotFound
	}
	delete(r.state.contents, id)
	return nil
}

func keyOf(c premium.Content) contentKey {
	return contentKey{c.StudentID, c.ContentID, c.Type}
}

// memoryTx runs with the repository mutex already held.
type memoryTx struct {
	repo *MemoryRepository
}

func (t *memoryTx) LockStudent(_ context.Context, id int64) (*premium.Student, error) {
	s, ok := t.repo.state.students[id]
	if !ok {
		return nil, ErrStudentNotFound
	}
	return &s, nil
}

func (t *memoryTx) Debit(_ context.Context, id, amount int64) (int64, error) {
	s, ok := t.repo.state.students[id]
	if !ok || s.Balance < amount {
		return 0, ErrInsufficientBalance
	}
	s.Balance -= amount
	t.repo.state.students[id] = s
	return s.Balance, nil
}

func (t *memoryTx) Create(_ context.Context, c *premium.Content) error {
	if _, ok := t.repo.state.teachers[c.PublisherID]; !ok {
		return ErrInvalidReference
	}
	for _, existing := range t.repo.state.contents {
		if keyOf(existing) == keyOf(*c) {
			return ErrDuplicate
		}
	}
	t.repo.state.nextID++
	c.ID = t.repo.state.nextID
	c.PurchaseDate = premium.Day(t.repo.now())
	c.DateOfExpiry = premium.Day(c.DateOfExpiry)
	t.repo.state.contents[c.ID] = *c
	return nil
}

func (t *memoryTx) CreditTeacher(_ context.Context, id, amount int64) error {
	if t.repo.CreditErr != nil {
		return t.repo.CreditErr
	}
	if _, ok := t.repo.state.teachers[id]; !ok {
		return ErrTeacherNotFound
	}
	t.repo.state.teachers[id] += amount
	return nil
}
