package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"edumarket/internal/account"
	"edumarket/pkg/pagination"
)

// MemoryRepository is an in-process account store used by tests and local
// tooling. Its debit follows the same guarded semantics as the postgres one.
type MemoryRepository struct {
	mu       sync.Mutex
	nextID   int64
	users    map[int64]*account.User
	students map[int64]*account.StudentProfile
	teachers map[int64]*account.TeacherProfile
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:    map[int64]*account.User{},
		students: map[int64]*account.StudentProfile{},
		teachers: map[int64]*account.TeacherProfile{},
	}
}

// PutStudent seeds a student profile with its user row.
func (r *MemoryRepository) PutStudent(p account.StudentProfile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[p.UserID] = &account.User{ID: p.UserID, Username: fmt.Sprintf("student%d", p.UserID)}
	r.students[p.UserID] = &p
	r.nextID = max(r.nextID, p.UserID)
}

func (r *MemoryRepository) PutTeacher(p account.TeacherProfile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[p.UserID] = &account.User{ID: p.UserID, Username: fmt.Sprintf("teacher%d", p.UserID), IsTeacher: true}
	r.teachers[p.UserID] = &p
	r.nextID = max(r.nextID, p.UserID)
}

func (r *MemoryRepository) EmailExists(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepository) UsernameExists(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepository) addUser(u *account.User) {
	r.nextID++
	u.ID = r.nextID
	u.CreatedAt = time.Now()
	cp := *u
	r.users[u.ID] = &cp
}

func (r *MemoryRepository) CreateStudent(_ context.Context, u *account.User, p *account.StudentProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addUser(u)
	p.UserID = u.ID
	cp := *p
	r.students[u.ID] = &cp
	return nil
}

func (r *MemoryRepository) CreateTeacher(_ context.Context, u *account.User, p *account.TeacherProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addUser(u)
	p.UserID = u.ID
	cp := *p
	r.teachers[u.ID] = &cp
	return nil
}

func (r *MemoryRepository) GetUser(_ context.Context, id int64) (*account.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *MemoryRepository) GetStudent(_ context.Context, id int64) (*account.StudentProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.students[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *MemoryRepository) UpdateStudent(_ context.Context, id int64, upd account.StudentUpdate) (*account.StudentProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.students[id]
	if !ok {
		return nil, ErrNotFound
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&p.FullName, upd.FullName)
	set(&p.City, upd.City)
	set(&p.School, upd.School)
	set(&p.PhoneNumber, upd.PhoneNumber)
	set(&p.Class, upd.Class)
	set(&p.Gender, upd.Gender)
	cp := *p
	return &cp, nil
}

func (r *MemoryRepository) GetTeacher(_ context.Context, id int64) (*account.TeacherProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.teachers[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *MemoryRepository) UpdateTeacher(_ context.Context, id int64, upd account.TeacherUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.teachers[id]
	if !ok {
		return ErrNotFound
	}
	p.PhoneNumber = upd.PhoneNumber
	p.AnotherPhoneNumber = upd.AnotherPhoneNumber
	p.TeachingInSchool = upd.TeachingInSchool
	p.TeachingInInstitutions = upd.TeachingInInstitutions
	p.Bio = upd.Bio
	p.FacebookLink = upd.FacebookLink
	p.InstagramLink = upd.InstagramLink
	p.WhatsappLink = upd.WhatsappLink
	p.TelegramLink = upd.TelegramLink
	p.StudyingSubjects = upd.StudyingSubjects
	p.City = upd.City
	p.Class = upd.Class
	return nil
}

func (r *MemoryRepository) ListTeachers(_ context.Context, f account.TeacherFilter, limit, offset int) ([]account.TeacherPreview, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []account.TeacherPreview
	for _, t := range r.teachers {
		if f.Class != "" && t.Class != f.Class && t.Class != account.BothClasses {
			continue
		}
		if f.Name != "" && !strings.Contains(strings.ToLower(t.FullName), strings.ToLower(f.Name)) {
			continue
		}
		if f.City != "" && f.City != account.AllCities && t.City != f.City {
			continue
		}
		if f.Subject != "" && f.Subject != account.AllSubjects && t.StudyingSubjects != f.Subject {
			combined := (f.Subject == "physics" || f.Subject == "chemistry") && t.StudyingSubjects == "physics_chemistry"
			if !combined {
				continue
			}
		}
		matched = append(matched, account.TeacherPreview{
			UserID:           t.UserID,
			FullName:         t.FullName,
			StudyingSubjects: t.StudyingSubjects,
			City:             t.City,
			Class:            t.Class,
			Gender:           t.Gender,
			NumberOfNotes:    t.NumberOfNotes,
			NumberOfExams:    t.NumberOfExams,
		})
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].UserID < matched[j].UserID })

	total := len(matched)
	begin, end := pagination.Window(total, limit, offset)
	return append([]account.TeacherPreview{}, matched[begin:end]...), total, nil
}

func (r *MemoryRepository) DebitStudent(_ context.Context, id, price int64) (*account.DebitResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.students[id]
	if !ok {
		return nil, ErrNotFound
	}
	res := &account.DebitResult{StudentID: id, StudentName: p.FullName, Price: price, PreviousBalance: p.Balance}
	if p.Balance >= price {
		p.Balance -= price
		res.Debited = true
	}
	res.Balance = p.Balance
	return res, nil
}

func (r *MemoryRepository) CreditStudent(_ context.Context, id, amount int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.students[id]
	if !ok {
		return 0, ErrNotFound
	}
	p.Balance += amount
	return p.Balance, nil
}

func (r *MemoryRepository) AddTeacherCounter(_ context.Context, id int64, counter account.TeacherCounter, delta int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.teachers[id]
	if !ok {
		return 0, ErrNotFound
	}
	switch counter {
	case account.TeacherExams:
		p.NumberOfExams += delta
		return p.NumberOfExams, nil
	case account.TeacherNotes:
		p.NumberOfNotes += delta
		return p.NumberOfNotes, nil
	}
	return 0, fmt.Errorf("unknown teacher counter %q", counter)
}
