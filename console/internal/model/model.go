package model

import (
	"strings"
	"time"
)

type Reader struct {
	ID        string `json:"_id,omitempty"`
	FirstName string `json:"first_name" validate:"notblank"`
	LastName  string `json:"last_name" validate:"notblank"`
	Email     string `json:"email" validate:"notblank"`
	Age       int    `json:"age" validate:"gt=0" errmsg:"gt=Must be a valid age"`
	Address   string `json:"address" validate:"notblank"`
	Phone     string `json:"phone" validate:"notblank"`
	JoinDate  string `json:"join_date"`
}

func (r Reader) FullName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

type Book struct {
	ID            string    `json:"_id,omitempty"`
	Title         string    `json:"title" validate:"notblank"`
	Author        string    `json:"author" validate:"notblank"`
	Description   string    `json:"description" validate:"notblank"`
	Category      string    `json:"category,omitempty"`
	Publisher     string    `json:"publisher,omitempty"`
	PublishedDate *Date     `json:"publishedDate,omitempty"`
	Quantity      int       `json:"quantity" validate:"gt=0" errmsg:"gt=Must be greater than 0"`
	TimeStamp     time.Time `json:"timeStamp"`
}

type Status string

const (
	StatusBorrowed Status = "borrowed"
	StatusReturned Status = "returned"
	StatusLate     Status = "late"
)

var Statuses = []Status{StatusBorrowed, StatusReturned, StatusLate}

// Active reports whether the book is still out.
func (s Status) Active() bool {
	return s == StatusBorrowed || s == StatusLate
}

type Lending struct {
	ID         string  `json:"_id,omitempty"`
	BookID     string  `json:"bookId" validate:"required"`
	ReaderID   string  `json:"readerId" validate:"required"`
	LendDate   string  `json:"lendDate,omitempty" validate:"omitempty,datetime=2006-01-02" errmsg:"datetime=Invalid date"`
	DueDate    string  `json:"dueDate" validate:"required,datetime=2006-01-02" errmsg:"datetime=Invalid date"`
	ReturnDate *string `json:"returnDate"`
	Status     Status  `json:"status" validate:"oneof=borrowed returned late" errmsg:"oneof=Invalid status"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" errmsg:"required=Email is required;email=Invalid email"`
	Password string `json:"password" validate:"required,min=6" errmsg:"required=Password is required;min=Password must be at least 6 characters"`
}

type User struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	AccessToken string `json:"accessToken,omitempty"`
}

func (u User) DisplayName() string {
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	return u.Email
}

// SessionPayload is the answer of both login and refresh-token.
type SessionPayload struct {
	AccessToken string `json:"accessToken"`
	User        *User  `json:"user"`
}

// Date accepts both a bare date and an RFC 3339 timestamp.
type Date struct {
	time.Time `json:",inline"`
}

func NewDate(t time.Time) *Date {
	return &Date{Time: t}
}

func (d *Date) UnmarshalJSON(b []byte) (err error) {
	s := strings.Trim(string(b), "\"")
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	date, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if date, err = time.Parse(time.DateOnly, s); err != nil {
			return err
		}
	}
	d.Time = date
	return
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.UTC().Format(time.RFC3339) + `"`), nil
}

func (d *Date) DateOnly() string {
	if d == nil || d.IsZero() {
		return ""
	}
	return d.Format(time.DateOnly)
}
