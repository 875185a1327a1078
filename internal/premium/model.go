package premium

import "time"

// Type names the kind of purchasable content.
type Type string

const (
	TypeExam Type = "exam"
	TypeNote Type = "note"
)

func (t Type) Valid() bool {
	return t == TypeExam || t == TypeNote
}

// DateLayout is the wire format of purchase and expiry dates.
const DateLayout = "2006-01-02"

// Content is a student's purchase of one note or exam.
type Content struct {
	ID            int64     `db:"id" json:"id"`
	StudentID     int64     `db:"student_id" json:"student"`
	StudentName   string    `db:"student_name" json:"student_name"`
	Class         string    `db:"class" json:"Class"`
	Type          Type      `db:"type" json:"type"`
	SubjectName   string    `db:"subject_name" json:"subject_name"`
	ContentID     int64     `db:"content_id" json:"content_id"`
	ContentName   string    `db:"content_name" json:"content_name"`
	PublisherID   int64     `db:"publisher_id" json:"publisher_id"`
	PublisherName string    `db:"publisher_name" json:"publisher_name"`
	PurchaseDate  time.Time `db:"purchase_date" json:"purchase_date"`
	Price         int64     `db:"price" json:"price"`
	DateOfExpiry  time.Time `db:"date_of_expiry" json:"date_of_expiry"`
	IsExpired     bool      `db:"is_expired" json:"is_expired"`
}

// ExpiredOn reports whether the expiry date lies before the calendar day of now.
// A purchase stays valid through its expiry date.
func (c *Content) ExpiredOn(now time.Time) bool {
	return c.DateOfExpiry.Before(Day(now))
}

// Day truncates t to midnight UTC of its calendar date, matching how DATE
// columns are scanned.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Purchase is the input of a balance-checked purchase.
type Purchase struct {
	StudentID     int64
	Price         int64
	Class         string
	Type          Type
	SubjectName   string
	ContentID     int64
	ContentName   string
	PublisherID   int64
	PublisherName string
	DateOfExpiry  time.Time
}

// Receipt describes a committed purchase.
type Receipt struct {
	PreviousBalance int64
	NewBalance      int64
	AmountDeducted  int64
	// Commission is nil when crediting the publisher failed.
	Commission *int64
	Content    *Content
}

// Update carries the editable fields of a purchase record.
type Update struct {
	Class         *string
	SubjectName   *string
	ContentName   *string
	PublisherName *string
	DateOfExpiry  *time.Time
}

// Student is the ledger view of the buyer, read under lock.
type Student struct {
	ID       int64  `db:"user_id"`
	FullName string `db:"full_name"`
	Balance  int64  `db:"balance"`
}
