package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"edumarket/internal/account"
	"edumarket/pkg/db"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// ErrNotFound is returned when the addressed user or profile does not exist.
var ErrNotFound = errors.New("account not found")

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const (
	studentColumns = `user_id, full_name, city, school, phone_number, class, balance, gender`
	teacherColumns = `user_id, full_name, studying_subjects, bio, total_net, created_at, city, class, gender,
        teaching_in_school, teaching_in_institutions, number_of_exams, number_of_notes,
        phone_number, another_phone_number, telegram_link, whatsapp_link, facebook_link, instagram_link`
)

func (r *PostgresRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
	return exists, errors.Wrap(err, "check email")
}

func (r *PostgresRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username)
	return exists, errors.Wrap(err, "check username")
}

// CreateStudent inserts the user row and its student profile in one transaction.
func (r *PostgresRepository) CreateStudent(ctx context.Context, u *account.User, p *account.StudentProfile) error {
	return db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := insertUser(ctx, tx, u); err != nil {
			return err
		}
		p.UserID = u.ID
		_, err := tx.ExecContext(ctx, `
            INSERT INTO student_profiles (user_id, full_name, city, school, phone_number, class, gender)
            VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			p.UserID, p.FullName, p.City, p.School, p.PhoneNumber, p.Class, p.Gender)
		return errors.Wrap(err, "insert student profile")
	})
}

func (r *PostgresRepository) CreateTeacher(ctx context.Context, u *account.User, p *account.TeacherProfile) error {
	return db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := insertUser(ctx, tx, u); err != nil {
			return err
		}
		p.UserID = u.ID
		_, err := tx.ExecContext(ctx, `
            INSERT INTO teacher_profiles (user_id, full_name, phone_number, class, studying_subjects, city, gender, bio)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			p.UserID, p.FullName, p.PhoneNumber, p.Class, p.StudyingSubjects, p.City, p.Gender, p.Bio)
		return errors.Wrap(err, "insert teacher profile")
	})
}

func insertUser(ctx context.Context, tx *sqlx.Tx, u *account.User) error {
	err := tx.QueryRowxContext(ctx, `
        INSERT INTO users (username, email, password, is_teacher)
        VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		u.Username, u.Email, u.Password, u.IsTeacher).Scan(&u.ID, &u.CreatedAt)
	return errors.Wrap(err, "insert user")
}

func (r *PostgresRepository) GetUser(ctx context.Context, id int64) (*account.User, error) {
	u := &account.User{}
	err := r.db.GetContext(ctx, u, `
        SELECT id, username, email, password, is_teacher, number_of_login_sessions, created_at
        FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, errors.Wrap(err, "get user")
}

func (r *PostgresRepository) GetStudent(ctx context.Context, id int64) (*account.StudentProfile, error) {
	p := &account.StudentProfile{}
	err := r.db.GetContext(ctx, p, `SELECT `+studentColumns+` FROM student_profiles WHERE user_id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, errors.Wrap(err, "get student profile")
}

func (r *PostgresRepository) UpdateStudent(ctx context.Context, id int64, upd account.StudentUpdate) (*account.StudentProfile, error) {
	p := &account.StudentProfile{}
	err := r.db.GetContext(ctx, p, `
        UPDATE student_profiles SET
            full_name    = COALESCE($2, full_name),
            city         = COALESCE($3, city),
            school       = COALESCE($4, school),
            phone_number = COALESCE($5, phone_number),
            class        = COALESCE($6, class),
            gender       = COALESCE($7, gender)
        WHERE user_id = $1
        RETURNING `+studentColumns,
		id, upd.FullName, upd.City, upd.School, upd.PhoneNumber, upd.Class, upd.Gender)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, errors.Wrap(err, "update student profile")
}

func (r *PostgresRepository) GetTeacher(ctx context.Context, id int64) (*account.TeacherProfile, error) {
	p := &account.TeacherProfile{}
	err := r.db.GetContext(ctx, p, `SELECT `+teacherColumns+` FROM teacher_profiles WHERE user_id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, errors.Wrap(err, "get teacher profile")
}

func (r *PostgresRepository) UpdateTeacher(ctx context.Context, id int64, upd account.TeacherUpdate) error {
	res, err := r.db.ExecContext(ctx, `
        UPDATE teacher_profiles SET
            phone_number = $2, another_phone_number = $3,
            teaching_in_school = $4, teaching_in_institutions = $5, bio = $6,
            facebook_link = $7, instagram_link = $8, whatsapp_link = $9, telegram_link = $10,
            studying_subjects = $11, city = $12, class = $13
        WHERE user_id = $1`,
		id, upd.PhoneNumber, upd.AnotherPhoneNumber,
		upd.TeachingInSchool, upd.TeachingInInstitutions, upd.Bio,
		upd.FacebookLink, upd.InstagramLink, upd.WhatsappLink, upd.TelegramLink,
		upd.StudyingSubjects, upd.City, upd.Class)
	if err != nil {
		return errors.Wrap(err, "update teacher profile")
	}
	return expectOneRow(res)
}

// ListTeachers returns one page of teacher previews and the total match count.
func (r *PostgresRepository) ListTeachers(ctx context.Context, f account.TeacherFilter, limit, offset int) ([]account.TeacherPreview, int, error) {
	var (
		conds []string
		args  []interface{}
	)
	if f.Class != "" {
		conds = append(conds, "(class = ? OR class = ?)")
		args = append(args, f.Class, account.BothClasses)
	}

	if f.Name != "" {
		conds = append(conds, "full_name ILIKE ?")
		args = append(args, "%"+f.Name+"%")
	}
	if f.City != "" && f.City != account.AllCities {
		conds = append(conds, "city = ?")
		args = append(args, f.City)
	}
	if f.Subject != "" && f.Subject != account.AllSubjects {
		if f.Subject == "physics" || f.Subject == "chemistry" {
			conds = append(conds, "(studying_subjects = ? OR studying_subjects = 'physics_chemistry')")
		} else {
			conds = append(conds, "studying_subjects = ?")
		}
		args = append(args, f.Subject)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(`SELECT COUNT(*) FROM teacher_profiles`+where), args...); err != nil {
		return nil, 0, errors.Wrap(err, "count teachers")
	}

	query := r.db.Rebind(`
        SELECT user_id, full_name, studying_subjects, city, class, gender, number_of_notes, number_of_exams
        FROM teacher_profiles` + where + ` ORDER BY user_id LIMIT ? OFFSET ?`)
	out := []account.TeacherPreview{}
	if err := r.db.SelectContext(ctx, &out, query, append(args, limit, offset)...); err != nil {
		return nil, 0, errors.Wrap(err, "list teachers")
	}
	return out, total, nil
}

// DebitStudent subtracts price only when the balance covers it. When it does
// not, the current balance is reported and nothing changes.
func (r *PostgresRepository) DebitStudent(ctx context.Context, id, price int64) (*account.DebitResult, error) {
	res := &account.DebitResult{StudentID: id, Price: price}
	row := struct {
		Balance  int64  `db:"balance"`
		FullName string `db:"full_name"`
	}{}

	err := r.db.GetContext(ctx, &row, `
        UPDATE student_profiles SET balance = balance - $1
        WHERE user_id = $2 AND balance >= $1
        RETURNING balance, full_name`, price, id)
	switch {
	case err == nil:
		res.Debited = true
		res.Balance = row.Balance
		res.PreviousBalance = row.Balance + price
		res.StudentName = row.FullName
		return res, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, errors.Wrap(err, "debit student")
	}

	err = r.db.GetContext(ctx, &row, `SELECT balance, full_name FROM student_profiles WHERE user_id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get student balance")
	}
	res.Balance = row.Balance
	res.PreviousBalance = row.Balance
	res.StudentName = row.FullName
	return res, nil
}

func (r *PostgresRepository) CreditStudent(ctx context.Context, id, amount int64) (int64, error) {
	var balance int64
	err := r.db.GetContext(ctx, &balance, `
        UPDATE student_profiles SET balance = balance + $1 WHERE user_id = $2 RETURNING balance`, amount, id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return balance, errors.Wrap(err, "credit student")
}

// AddTeacherCounter shifts a whitelisted teacher counter by delta and returns
// the new value.
func (r *PostgresRepository) AddTeacherCounter(ctx context.Context, id int64, counter account.TeacherCounter, delta int) (int, error) {
	switch counter {
	case account.TeacherExams, account.TeacherNotes:
	default:
		return 0, fmt.Errorf("unknown teacher counter %q", counter)
	}

	c := db.Counter{Table: "teacher_profiles", IDColumn: "user_id", Column: string(counter)}
	value, err := c.Add(ctx, r.db, id, delta)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return value, errors.Wrap(err, "update teacher counter")
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
