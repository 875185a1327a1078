package question

type Question struct {
	ID          int64   `db:"id" json:"id"`
	PackageID   int64   `db:"package_id" json:"package"`
	TestContent string  `db:"test_content" json:"test_content"`
	OptionA     *string `db:"option_a" json:"option_A"`
	OptionB     *string `db:"option_b" json:"option_B"`
	OptionC     *string `db:"option_c" json:"option_C"`
	OptionD     *string `db:"option_d" json:"option_D"`
	OptionE     *string `db:"option_e" json:"option_E"`
	RightAnswer string  `db:"right_answer" json:"right_answer"`
	Explanation *string `db:"explanation" json:"explanation"`
}

const DefaultExplanation = "لا يتوفر شرح للإجابة"

// ValidAnswer reports whether a is one of the option letters A to E.
func ValidAnswer(a string) bool {
	switch a {
	case "A", "B", "C", "D", "E":
		return true
	}
	return false
}
