package pass

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Input is the card data a pass is generated from.
type Input struct {
	Name          string `json:"name" validate:"required"`
	Company       string `json:"company" validate:"required"`
	CardID        string `json:"cardId" validate:"required"`
	UserID        string `json:"userId" validate:"required"`
	PublicCardURL string `json:"publicCardUrl" validate:"required,url"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// inputValidator reports errors using the json field names
func inputValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Normalize returns a copy of the input with surrounding whitespace removed.
func (in Input) Normalize() Input {
	return Input{
		Name:          strings.TrimSpace(in.Name),
		Company:       strings.TrimSpace(in.Company),
		CardID:        strings.TrimSpace(in.CardID),
		UserID:        strings.TrimSpace(in.UserID),
		PublicCardURL: strings.TrimSpace(in.PublicCardURL),
	}
}

// Validate checks that all five fields are present and that publicCardUrl is an absolute URL.
//
// Missing fields take precedence: if any field is missing the error lists only the missing ones.
func (in Input) Validate() error {
	err := inputValidator().Struct(in.Normalize())
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return NewInvalidFieldsError([]string{err.Error()})
	}

	var missing, invalid []string
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
		} else {
			invalid = append(invalid, fe.Field())
		}
	}
	if len(missing) > 0 {
		return NewMissingFieldsError(missing)
	}
	return NewInvalidFieldsError(invalid)
}
