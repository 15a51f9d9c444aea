// Package form reads the posted console forms into models and turns
// validation failures into per-field messages.
package form

import (
	"errors"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/Astemirdum/library-admin/console/internal/errs"
	"github.com/Astemirdum/library-admin/console/internal/model"
	"github.com/go-playground/validator/v10"
)

func Book(v url.Values, now time.Time) model.Book {
	b := model.Book{
		Title:       v.Get("title"),
		Author:      v.Get("author"),
		Description: v.Get("description"),
		Category:    strings.TrimSpace(v.Get("category")),
		Publisher:   strings.TrimSpace(v.Get("publisher")),
		Quantity:    atoi(v.Get("quantity")),
		TimeStamp:   now,
	}
	if t, err := time.Parse(time.DateOnly, strings.TrimSpace(v.Get("publishedDate"))); err == nil {
		b.PublishedDate = model.NewDate(t)
	}
	return b
}

func Reader(v url.Values) model.Reader {
	return model.Reader{
		FirstName: v.Get("first_name"),
		LastName:  v.Get("last_name"),
		Email:     v.Get("email"),
		Age:       atoi(v.Get("age")),
		Address:   v.Get("address"),
		Phone:     v.Get("phone"),
		JoinDate:  strings.TrimSpace(v.Get("join_date")),
	}
}

func Lending(v url.Values) model.Lending {
	l := model.Lending{
		BookID:   strings.TrimSpace(v.Get("bookId")),
		ReaderID: strings.TrimSpace(v.Get("readerId")),
		LendDate: strings.TrimSpace(v.Get("lendDate")),
		DueDate:  strings.TrimSpace(v.Get("dueDate")),
		Status:   model.Status(v.Get("status")),
	}
	if rd := strings.TrimSpace(v.Get("returnDate")); rd != "" {
		l.ReturnDate = &rd
	}
	if l.Status == "" {
		l.Status = model.StatusBorrowed
	}
	return l
}

func Login(v url.Values) model.LoginRequest {
	return model.LoginRequest{
		Email:    strings.TrimSpace(v.Get("email")),
		Password: v.Get("password"),
	}
}

// atoi reads a number field; anything unparsable counts as 0.
func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

var defaultMessages = map[string]string{
	"required": "Required",
	"notblank": "Required",
	"datetime": "Invalid date",
	"oneof":    "Invalid value",
	"email":    "Invalid email",
}

// Errors converts a validation error of entity into field messages. The
// message of a failed tag comes from the field's errmsg tag when present,
// e.g. `errmsg:"gt=Must be greater than 0;required=Required"`.
func Errors(err error, entity any) (errs.FieldErrors, bool) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil, false
	}
	t := reflect.TypeOf(entity)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	fe := make(errs.FieldErrors, len(ve))
	for _, e := range ve {
		if _, ok := fe[e.Field()]; ok {
			continue
		}
		fe[e.Field()] = message(t, e)
	}
	return fe, true
}

func message(t reflect.Type, e validator.FieldError) string {
	if f, ok := t.FieldByName(e.StructField()); ok {
		for _, pair := range strings.Split(f.Tag.Get("errmsg"), ";") {
			tag, msg, found := strings.Cut(pair, "=")
			if found && strings.TrimSpace(tag) == e.Tag() {
				return strings.TrimSpace(msg)
			}
		}
	}
	if msg, ok := defaultMessages[e.Tag()]; ok {
		return msg
	}
	return "Invalid value"
}
