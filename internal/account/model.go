package account

import (
	"errors"
	"time"
)

type User struct {
	ID                    int64     `db:"id" json:"id"`
	Username              string    `db:"username" json:"username"`
	Email                 string    `db:"email" json:"email"`
	Password              string    `db:"password" json:"-"`
	IsTeacher             bool      `db:"is_teacher" json:"is_teacher"`
	NumberOfLoginSessions int       `db:"number_of_login_sessions" json:"number_of_login_sessions"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
}

type StudentProfile struct {
	UserID      int64  `db:"user_id" json:"user_id"`
	FullName    string `db:"full_name" json:"full_name"`
	City        string `db:"city" json:"city"`
	School      string `db:"school" json:"school"`
	PhoneNumber string `db:"phone_number" json:"phone_number"`
	Class       string `db:"class" json:"Class"`
	Balance     int64  `db:"balance" json:"balance"`
	Gender      string `db:"gender" json:"gender"`
}

type TeacherProfile struct {
	UserID                 int64     `db:"user_id" json:"user_id"`
	FullName               string    `db:"full_name" json:"full_name"`
	StudyingSubjects       string    `db:"studying_subjects" json:"studying_subjects"`
	Bio                    string    `db:"bio" json:"bio"`
	TotalNet               int64     `db:"total_net" json:"total_net"`
	CreatedAt              time.Time `db:"created_at" json:"created_at"`
	City                   string    `db:"city" json:"city"`
	Class                  string    `db:"class" json:"Class"`
	Gender                 string    `db:"gender" json:"gender"`
	TeachingInSchool       string    `db:"teaching_in_school" json:"teaching_in_school"`
	TeachingInInstitutions string    `db:"teaching_in_institutions" json:"teaching_in_institutions"`
	NumberOfExams          int       `db:"number_of_exams" json:"number_of_exams"`
	NumberOfNotes          int       `db:"number_of_notes" json:"number_of_notes"`
	PhoneNumber            string    `db:"phone_number" json:"phone_number"`
	AnotherPhoneNumber     string    `db:"another_phone_number" json:"another_phone_number"`
	TelegramLink           string    `db:"telegram_link" json:"telegram_link"`
	WhatsappLink           string    `db:"whatsapp_link" json:"whatsapp_link"`
	FacebookLink           string    `db:"facebook_link" json:"facebook_link"`
	InstagramLink          string    `db:"instagram_link" json:"instagram_link"`
}

// TeacherPreview is the short card shown in teacher search results.
type TeacherPreview struct {
	UserID           int64  `db:"user_id" json:"user_id"`
	FullName         string `db:"full_name" json:"full_name"`
	StudyingSubjects string `db:"studying_subjects" json:"studying_subjects"`
	City             string `db:"city" json:"city"`
	Class            string `db:"class" json:"Class"`
	Gender           string `db:"gender" json:"gender"`
	NumberOfNotes    int    `db:"number_of_notes" json:"number_of_notes"`
	NumberOfExams    int    `db:"number_of_exams" json:"number_of_exams"`
}

const (
	AllSubjects = "عرض الكل"
	AllCities   = "all"
	BothClasses = "9_12"
)

type TeacherFilter struct {
	Class   string
	Subject string
	City    string
	Name    string
}

// Registration carries the user and profile fields submitted on sign up.
type Registration struct {
	Username         string
	Email            string
	Password         string
	IsTeacher        bool
	FullName         string
	PhoneNumber      string
	Class            string
	City             string
	School           string
	Gender           string
	StudyingSubjects string
}

// StudentUpdate holds the editable student fields; nil means unchanged.
type StudentUpdate struct {
	FullName    *string
	City        *string
	School      *string
	PhoneNumber *string
	Class       *string
	Gender      *string
}

type TeacherUpdate struct {
	PhoneNumber            string
	AnotherPhoneNumber     string
	TeachingInSchool       string
	TeachingInInstitutions string
	Bio                    string
	FacebookLink           string
	InstagramLink          string
	WhatsappLink           string
	TelegramLink           string
	StudyingSubjects       string
	City                   string
	Class                  string
}

// DebitResult describes the outcome of a balance check-and-debit.
type DebitResult struct {
	StudentID       int64
	StudentName     string
	Debited         bool
	PreviousBalance int64
	Balance         int64
	Price           int64
}

// TeacherCounter names a teacher profile counter column.
type TeacherCounter string

const (
	TeacherExams TeacherCounter = "number_of_exams"
	TeacherNotes TeacherCounter = "number_of_notes"
)

var subjectArabicNames = map[string]string{
	"math":              "رياضيات",
	"physics":           "فيزياء",
	"chemistry":         "كيمياء",
	"science":           "علوم",
	"arabic":            "عربي",
	"english":           "إنكليزي",
	"france":            "فرنسي",
	"islam":             "ديانة",
	"physics_chemistry": "فيزياء و كيمياء",
	"geography":         "اجتماعيات",
}

var ErrUnknownSubject = errors.New("المادة غير معروفة")

// SubjectName returns the Arabic display name of a subject code.
func SubjectName(code string) (string, bool) {
	name, ok := subjectArabicNames[code]
	return name, ok
}

// TeacherBio builds the default bio from gender and subject code.
func TeacherBio(gender, subject string) (string, error) {
	name, ok := SubjectName(subject)
	if !ok {
		return "", ErrUnknownSubject
	}
	if gender == "M" {
		return "استاذ متخصص في تدريس مادة " + name, nil
	}
	return "آنسة متخصصة في تدريس مادة " + name, nil
}
