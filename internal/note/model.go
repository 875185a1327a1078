package note

import "time"

type Note struct {
	ID                int64     `db:"id" json:"id"`
	Title             string    `db:"title" json:"title"`
	SubjectName       string    `db:"subject_name" json:"subject_name"`
	Class             string    `db:"class" json:"Class"`
	PublisherID       int64     `db:"publisher_id" json:"publisher_id"`
	PublisherName     string    `db:"publisher_name" json:"publisher_name"`
	DateUploaded      time.Time `db:"date_uploaded" json:"date_uploaded"`
	Content           string    `db:"content" json:"content"`
	Price             int64     `db:"price" json:"price"`
	NumberOfReads     int       `db:"number_of_reads" json:"number_of_reads"`
	NumberOfPurchases int       `db:"number_of_purchases" json:"number_of_purchases"`
	NumberOfComments  int       `db:"number_of_comments" json:"number_of_comments"`
}

// Preview is a note listing entry without its content.
type Preview struct {
	ID                int64     `db:"id" json:"id"`
	Title             string    `db:"title" json:"title"`
	SubjectName       string    `db:"subject_name" json:"subject_name"`
	Class             string    `db:"class" json:"Class"`
	PublisherID       int64     `db:"publisher_id" json:"publisher_id"`
	PublisherName     string    `db:"publisher_name" json:"publisher_name"`
	DateUploaded      time.Time `db:"date_uploaded" json:"date_uploaded"`
	Price             int64     `db:"price" json:"price"`
	NumberOfReads     int       `db:"number_of_reads" json:"number_of_reads"`
	NumberOfPurchases int       `db:"number_of_purchases" json:"number_of_purchases"`
}

func (n *Note) Preview() Preview {
	return Preview{
		ID:                n.ID,
		Title:             n.Title,
		SubjectName:       n.SubjectName,
		Class:             n.Class,
		PublisherID:       n.PublisherID,
		PublisherName:     n.PublisherName,
		DateUploaded:      n.DateUploaded,
		Price:             n.Price,
		NumberOfReads:     n.NumberOfReads,
		NumberOfPurchases: n.NumberOfPurchases,
	}
}

// Filter narrows a subject listing. Empty fields and a nil MaxPrice are ignored.
type Filter struct {
	Class         string
	MaxPrice      *int64
	Title         string
	PublisherName string
}

// Update holds the editable note fields; nil means unchanged.
type Update struct {
	Title       *string
	SubjectName *string
	Class       *string
	Content     *string
	Price       *int64
}

// Counter names a note counter column.
type Counter string

const (
	Reads     Counter = "number_of_reads"
	Purchases Counter = "number_of_purchases"
)
