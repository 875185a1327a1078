package readnote

import "time"

// ReadNote tracks how often a student opened a note.
type ReadNote struct {
	ID            int64     `db:"id" json:"id"`
	StudentID     int64     `db:"student_id" json:"student"`
	SubjectName   string    `db:"subject_name" json:"subject_name"`
	NoteName      string    `db:"note_name" json:"note_name"`
	NoteID        int64     `db:"note_id" json:"note_id"`
	PublisherID   int64     `db:"publisher_id" json:"publisher_id"`
	PublisherName string    `db:"publisher_name" json:"publisher_name"`
	NumberOfReads int       `db:"number_of_reads" json:"number_of_reads"`
	FirstReadAt   time.Time `db:"first_read_at" json:"first_read_at"`
	LastReadAt    time.Time `db:"last_read_at" json:"last_read_at"`
}
