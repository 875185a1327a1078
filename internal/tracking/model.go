package tracking

// SubjectTracking aggregates a student's activity in one subject and class.
type SubjectTracking struct {
	ID            int64  `db:"id" json:"id"`
	StudentID     int64  `db:"student_id" json:"student"`
	Class         string `db:"class" json:"Class"`
	SubjectName   string `db:"subject_name" json:"subject_name"`
	NumberOfNotes int    `db:"number_of_notes" json:"number_of_notes"`
	NumberOfExams int    `db:"number_of_exams" json:"number_of_exams"`
}

// Kind selects which counter an activity increments.
type Kind string

const (
	KindNote Kind = "note"
	KindExam Kind = "exam"
)

func (k Kind) Valid() bool {
	return k == KindNote || k == KindExam
}
