package testpackage

import "time"

type Package struct {
	ID                int64     `db:"id" json:"id"`
	PackageName       string    `db:"package_name" json:"package_name"`
	PublisherID       int64     `db:"publisher_id" json:"publisher_id"`
	PublisherName     string    `db:"publisher_name" json:"publisher_name"`
	Units             string    `db:"units" json:"units"`
	Class             string    `db:"class" json:"Class"`
	SubjectName       string    `db:"subject_name" json:"subject_name"`
	Price             int64     `db:"price" json:"price"`
	DateAdded         time.Time `db:"date_added" json:"date_added"`
	NumberOfApps      int       `db:"number_of_apps" json:"number_of_apps"`
	NumberOfPurchases int       `db:"number_of_purchases" json:"number_of_purchases"`
	NumberOfQuestions int       `db:"number_of_questions" json:"number_of_questions"`
}

// AllUnits disables the unit filter.
const AllUnits = "عرض الكل"

type Filter struct {
	MaxPrice      *int64
	MaxQuestions  *int
	Unit          string
	Name          string
	PublisherName string
}

// Update holds the editable package fields; nil means unchanged.
type Update struct {
	PackageName       *string
	Units             *string
	Class             *string
	SubjectName       *string
	Price             *int64
	NumberOfQuestions *int
}

type Counter string

const (
	Applications Counter = "number_of_apps"
	Purchases    Counter = "number_of_purchases"
)
