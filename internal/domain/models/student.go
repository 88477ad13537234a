package models

import (
	"strings"
	"time"
	"unicode"
)

// Student holds the roster data of an admitted student. Mobile is the identity key.
type Student struct {
	FullName      string    `json:"full_name"`
	FatherName    string    `json:"father_name"`
	Address       string    `json:"address"`
	Mobile        string    `json:"mobile"`
	AdmissionDate time.Time `json:"admission_date"`
	Username      string    `json:"username"`
	Password      string    `json:"password"`
}

// StudentSlot is one position of the ordered roster. It is either an ActiveSlot or a
// RemovedSlot; removing a student keeps the position so indexes stay stable.
type StudentSlot interface {
	isStudentSlot()
}

// ActiveSlot is a roster position occupied by an admitted student.
type ActiveSlot struct {
	Student Student
	// MobileHistory lists mobiles that earlier occupied the slot, oldest first.
	MobileHistory []string
}

// RemovedSlot is a roster position whose student was removed.
type RemovedSlot struct {
	// MobileHistory lists the mobiles that previously occupied the slot, oldest first.
	MobileHistory []string
	RemovedAt     time.Time
}

func (ActiveSlot) isStudentSlot()  {}
func (RemovedSlot) isStudentSlot() {}

// GeneratePassword derives the default student password: the first four characters of the
// upper-cased name (letters and spaces only) with spaces dropped, followed by the last four
// digits of the mobile.
func GeneratePassword(fullName, mobile string) string {
	var cleaned []rune
	for _, r := range strings.ToUpper(strings.TrimSpace(fullName)) {
		if (r >= 'A' && r <= 'Z') || unicode.IsSpace(r) {
			cleaned = append(cleaned, r)
		}
	}
	if len(cleaned) > 4 {
		cleaned = cleaned[:4]
	}
	namePart := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, string(cleaned))

	mobilePart := mobile
	if len(mobile) > 4 {
		mobilePart = mobile[len(mobile)-4:]
	}
	return namePart + mobilePart
}

// ValidMobile reports whether s is a 10 digit mobile number.
func ValidMobile(s string) bool {
	if len(s) != 10 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Role is the permission level of a signed-in user.
type Role string

const (
	RoleOwner   Role = "owner"
	RoleStudent Role = "student"
)

// Principal is the identity resolved from a successful login.
type Principal struct {
	Mobile string `json:"mobile"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
}
