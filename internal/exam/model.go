package exam

import "time"

// DoneExam records one attempt of a test package by a student.
type DoneExam struct {
	ID                int64     `db:"id" json:"id"`
	StudentID         int64     `db:"student_id" json:"student"`
	SubjectName       string    `db:"subject_name" json:"subject_name"`
	ExamName          string    `db:"exam_name" json:"exam_name"`
	ExamID            string    `db:"exam_id" json:"exam_id"`
	PublisherID       int64     `db:"publisher_id" json:"publisher_id"`
	PublisherName     string    `db:"publisher_name" json:"publisher_name"`
	DateOfApplication time.Time `db:"date_of_application" json:"date_of_application"`
	Result            float64   `db:"result" json:"result"`
	Price             int64     `db:"price" json:"price"`
	TimeTaken         string    `db:"time_taken" json:"time_taken"`
}

// ParseDuration validates an HH:MM:SS duration.
func ParseDuration(s string) (time.Duration, error) {
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second, nil
}
