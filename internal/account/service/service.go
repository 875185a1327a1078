package service

import (
	"context"
	"strings"

	"edumarket/internal/account"
	"edumarket/internal/account/repository"
	"edumarket/internal/metrics"
	"edumarket/pkg/db"
	"edumarket/pkg/hash"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	ErrUserNotFound    = errors.New("لم يتم العثور على المستخدم")
	ErrStudentNotFound = errors.New("لم يتم العثور على الطالب")
	ErrTeacherNotFound = errors.New("لم يتم العثور على المعلم")
	ErrNegativePrice   = errors.New("يجب أن يكون السعر رقم موجب")
	ErrInvalidAmount   = errors.New("يجب أن يكون المبلغ أكبر من صفر")
	ErrInvalidClass    = errors.New("الفصل يجب أن يكون إما '9' أو '12'")
	ErrInvalidGender   = errors.New("الجنس يجب أن يكون إما 'M' أو 'F'")
)

const (
	msgEmailTaken    = "هذا البريد الإلكتروني مسجل بالفعل"
	msgUsernameTaken = "اسم المستخدم هذا مسجل بالفعل"
)

// DuplicateError lists registration fields that are already taken, keyed by
// field name.
type DuplicateError struct {
	Fields map[string]string
}

func (e *DuplicateError) Error() string {
	return "البيانات مسجلة مسبقا"
}

type Repository interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	CreateStudent(ctx context.Context, u *account.User, p *account.StudentProfile) error
	CreateTeacher(ctx context.Context, u *account.User, p *account.TeacherProfile) error
	GetUser(ctx context.Context, id int64) (*account.User, error)
	GetStudent(ctx context.Context, id int64) (*account.StudentProfile, error)
	UpdateStudent(ctx context.Context, id int64, upd account.StudentUpdate) (*account.StudentProfile, error)
	GetTeacher(ctx context.Context, id int64) (*account.TeacherProfile, error)
	UpdateTeacher(ctx context.Context, id int64, upd account.TeacherUpdate) error
	ListTeachers(ctx context.Context, f account.TeacherFilter, limit, offset int) ([]account.TeacherPreview, int, error)
	DebitStudent(ctx context.Context, id, price int64) (*account.DebitResult, error)
	CreditStudent(ctx context.Context, id, amount int64) (int64, error)
	AddTeacherCounter(ctx context.Context, id int64, counter account.TeacherCounter, delta int) (int, error)
}

type Service struct {
	repo Repository
	log  *zap.Logger
}

func NewService(repo Repository, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log.Named("account")}
}

func (s *Service) Register(ctx context.Context, reg account.Registration) (*account.User, error) {
	dup := map[string]string{}
	emailTaken, err := s.repo.EmailExists(ctx, reg.Email)
	if err != nil {
		return nil, err
	}
	if emailTaken {
		dup["email"] = msgEmailTaken
	}
	usernameTaken, err := s.repo.UsernameExists(ctx, reg.Username)
	if err != nil {
		return nil, err
	}
	if usernameTaken {
		dup["username"] = msgUsernameTaken
	}
	if len(dup) > 0 {
		return nil, &DuplicateError{Fields: dup}
	}

	hashed, err := hash.HashPassword(reg.Password)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}
	u := &account.User{
		Username:  reg.Username,
		Email:     reg.Email,
		Password:  hashed,
		IsTeacher: reg.IsTeacher,
	}

	if reg.IsTeacher {
		bio, err := account.TeacherBio(reg.Gender, reg.StudyingSubjects)
		if err != nil {
			return nil, err
		}
		err = s.repo.CreateTeacher(ctx, u, &account.TeacherProfile{
			FullName:         reg.FullName,
			PhoneNumber:      orDash(reg.PhoneNumber),
			Class:            orDefault(reg.Class, "12"),
			StudyingSubjects: reg.StudyingSubjects,
			City:             reg.City,
			Gender:           orDefault(reg.Gender, "M"),
			Bio:              bio,
		})
		if err != nil {
			return nil, s.registrationError(err)
		}
	} else {
		err = s.repo.CreateStudent(ctx, u, &account.StudentProfile{
			FullName:    reg.FullName,
			PhoneNumber: orDash(reg.PhoneNumber),
			Class:       orDefault(reg.Class, "12"),
			City:        reg.City,
			School:      orDash(reg.School),
			Gender:      orDefault(reg.Gender, "M"),
		})
		if err != nil {
			return nil, s.registrationError(err)
		}
	}

	s.log.Info("user registered", zap.Int64("user_id", u.ID), zap.Bool("is_teacher", u.IsTeacher))
	return u, nil
}

// registrationError maps a unique violation that slipped past the existence
// checks to the same per-field error.
func (s *Service) registrationError(err error) error {
	if !db.IsUniqueViolation(err) {
		return err
	}
	if strings.Contains(db.ViolatedConstraint(err), "email") {
		return &DuplicateError{Fields: map[string]string{"email": msgEmailTaken}}
	}
	return &DuplicateError{Fields: map[string]string{"username": msgUsernameTaken}}
}

func (s *Service) GetUser(ctx context.Context, id int64) (*account.User, error) {
	u, err := s.repo.GetUser(ctx, id)
	return u, mapNotFound(err, ErrUserNotFound)
}

func (s *Service) GetStudent(ctx context.Context, id int64) (*account.StudentProfile, error) {
	p, err := s.repo.GetStudent(ctx, id)
	return p, mapNotFound(err, ErrStudentNotFound)
}

func (s *Service) UpdateStudent(ctx context.Context, id int64, upd account.StudentUpdate) (*account.StudentProfile, error) {
	if upd.Class != nil && *upd.Class != "9" && *upd.Class != "12" {
		return nil, ErrInvalidClass
	}
	if upd.Gender != nil && *upd.Gender != "M" && *upd.Gender != "F" {
		return nil, ErrInvalidGender
	}
	p, err := s.repo.UpdateStudent(ctx, id, upd)
	return p, mapNotFound(err, ErrStudentNotFound)
}

func (s *Service) GetTeacher(ctx context.Context, id int64) (*account.TeacherProfile, error) {
	p, err := s.repo.GetTeacher(ctx, id)
	return p, mapNotFound(err, ErrTeacherNotFound)
}

func (s *Service) UpdateTeacher(ctx context.Context, id int64, upd account.TeacherUpdate) error {
	return mapNotFound(s.repo.UpdateTeacher(ctx, id, upd), ErrTeacherNotFound)
}

func (s *Service) ListTeachers(ctx context.Context, f account.TeacherFilter, limit, offset int) ([]account.TeacherPreview, int, error) {
	return s.repo.ListTeachers(ctx, f, limit, offset)
}

// CheckAndDebit debits price from the student when the balance covers it.
// An uncovered price leaves the balance untouched and is not an error.
func (s *Service) CheckAndDebit(ctx context.Context, studentID, price int64) (*account.DebitResult, error) {
	if price < 0 {
		return nil, ErrNegativePrice
	}
	res, err := s.repo.DebitStudent(ctx, studentID, price)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.LedgerDebitsTotal.WithLabelValues(metrics.ResultNotFound).Inc()
			return nil, ErrStudentNotFound
		}
		metrics.LedgerDebitsTotal.WithLabelValues(metrics.ResultError).Inc()
		return nil, err
	}

	if res.Debited {
		metrics.LedgerDebitsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
		s.log.Info("student balance debited",
			zap.Int64("student_id", studentID),
			zap.Int64("amount", price),
			zap.Int64("balance", res.Balance),
		)
	} else {
		metrics.LedgerDebitsTotal.WithLabelValues(metrics.ResultInsufficient).Inc()
	}
	return res, nil
}

func (s *Service) Credit(ctx context.Context, studentID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	balance, err := s.repo.CreditStudent(ctx, studentID, amount)
	if err != nil {
		return 0, mapNotFound(err, ErrStudentNotFound)
	}
	s.log.Info("student balance credited",
		zap.Int64("student_id", studentID),
		zap.Int64("amount", amount),
		zap.Int64("balance", balance),
	)
	return balance, nil
}

func (s *Service) AddTeacherCounter(ctx context.Context, teacherID int64, counter account.TeacherCounter, delta int) (int, error) {
	v, err := s.repo.AddTeacherCounter(ctx, teacherID, counter, delta)
	if err != nil {
		return 0, mapNotFound(err, ErrTeacherNotFound)
	}
	metrics.ContentCounterUpdates.WithLabelValues("teacher", string(counter)).Inc()
	return v, nil
}

func mapNotFound(err, target error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return target
	}
	return err
}

func orDash(v string) string {
	return orDefault(v, "-")
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
