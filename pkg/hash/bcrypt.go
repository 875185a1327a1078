package hash

import "golang.org/x/crypto/bcrypt"

// Cost is lowered in tests to keep hashing fast.
var Cost = bcrypt.DefaultCost

func HashPassword(p string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(p), Cost)
	return string(bytes), err
}

func CheckPassword(hashed, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
