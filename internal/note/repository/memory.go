package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"edumarket/internal/note"
	"edumarket/pkg/pagination"
)

// MemoryRepository keeps notes in process memory.
type MemoryRepository struct {
	mu     sync.Mutex
	nextID int64
	notes  map[int64]*note.Note
	now    func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{notes: map[int64]*note.Note{}, now: time.Now}
}

func (r *MemoryRepository) Create(_ context.Context, n *note.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	n.ID = r.nextID
	n.DateUploaded = r.now().Add(time.Duration(r.nextID) * time.Millisecond)
	cp := *n
	r.notes[n.ID] = &cp
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id int64) (*note.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notes[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (r *MemoryRepository) List(_ context.Context, limit, offset int) ([]note.Preview, int, error) {
	return r.page(func(*note.Note) bool { return true }, limit, offset)
}

func (r *MemoryRepository) ListBySubject(_ context.Context, subject string, f note.Filter, limit, offset int) ([]note.Preview, int, error) {
	return r.page(func(n *note.Note) bool {
		switch {
		case n.SubjectName != subject:
			return false
		case f.Class != "" && n.Class != f.Class:
			return false
		case f.MaxPrice != nil && n.Price > *f.MaxPrice:
			return false
		case f.Title != "" && !containsFold(n.Title, f.Title):
			return false
		case f.PublisherName != "" && !containsFold(n.PublisherName, f.PublisherName):
			return false
		}
		return true
	}, limit, offset)
}

func (r *MemoryRepository) ListByPublisher(_ context.Context, publisherID int64, limit, offset int) ([]note.Preview, int, error) {
	return r.page(func(n *note.Note) bool { return n.PublisherID == publisherID }, limit, offset)
}

func (r *MemoryRepository) page(match func(*note.Note) bool, limit, offset int) ([]note.Preview, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []note.Preview
	for _, n := range r.notes {
		if match(n) {
			out = append(out, n.Preview())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateUploaded.After(out[j].DateUploaded) })

	total := len(out)
	begin, end := pagination.Window(total, limit, offset)
	return append([]note.Preview{}, out[begin:end]...), total, nil
}

func (r *MemoryRepository) Update(_ context.Context, id int64, upd note.Update) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notes[id]
	if !ok {
		return ErrNotFound
	}
	if upd.Title != nil {
		n.Title = *upd.Title
	}
	if upd.SubjectName != nil {
		n.SubjectName = *upd.SubjectName
	}
	if upd.Class != nil {
		n.Class = *upd.Class
	}
	if upd.Content != nil {
		n.Content = *upd.Content
	}
	if upd.Price != nil {
		n.Price = *upd.Price
	}
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.notes[id]; !ok {
		return ErrNotFound
	}
	delete(r.notes, id)
	return nil
}

func (r *MemoryRepository) AddCounter(_ context.Context, id int64, counter note.Counter, delta int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notes[id]
	if !ok {
		return 0, ErrNotFound
	}
	switch counter {
	case note.Reads:
		n.NumberOfReads += delta
		return n.NumberOfReads, nil
	case note.Purchases:
		n.NumberOfPurchases += delta
		return n.NumberOfPurchases, nil
	}
	return 0, fmt.Errorf("unknown note counter %q", counter)
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
