package pass

import (
	"reflect"
	"strings"
	"testing"
)

func TestInputValidate(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(*Input)
		wantCode    bool
		wantFields  []string
		wantMessage string
	}{
		{
			name:   "valid input",
			modify: func(*Input) {},
		},
		{
			name:        "missing cardId",
			modify:      func(in *Input) { in.CardID = "" },
			wantCode:    true,
			wantFields:  []string{"cardId"},
			wantMessage: "Missing required fields: cardId",
		},
		{
			name:        "whitespace only counts as missing",
			modify:      func(in *Input) { in.Name = "   " },
			wantCode:    true,
			wantFields:  []string{"name"},
			wantMessage: "Missing required fields: name",
		},
		{
			name: "every missing field is listed in order",
			modify: func(in *Input) {
				*in = Input{}
			},
			wantCode:    true,
			wantFields:  []string{"name", "company", "cardId", "userId", "publicCardUrl"},
			wantMessage: "Missing required fields: name, company, cardId, userId, publicCardUrl",
		},
		{
			name:        "relative url",
			modify:      func(in *Input) { in.PublicCardURL = "/card/c1" },
			wantCode:    true,
			wantFields:  []string{"publicCardUrl"},
			wantMessage: "Invalid fields: publicCardUrl",
		},
		{
			name:        "not a url",
			modify:      func(in *Input) { in.PublicCardURL = "not a url" },
			wantCode:    true,
			wantFields:  []string{"publicCardUrl"},
			wantMessage: "Invalid fields: publicCardUrl",
		},
		{
			name: "missing fields take precedence over invalid ones",
			modify: func(in *Input) {
				in.UserID = ""
				in.PublicCardURL = "nope"
			},
			wantCode:    true,
			wantFields:  []string{"userId"},
			wantMessage: "Missing required fields: userId",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.modify(&in)

			err := in.Validate()
			if !tt.wantCode {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}

			passErr := assertPassCode(t, err, ErrCodeValidation)
			if !reflect.DeepEqual(passErr.Fields(), tt.wantFields) {
				t.Errorf("Fields() = %v, want %v", passErr.Fields(), tt.wantFields)
			}
			if !strings.Contains(err.Error(), tt.wantMessage) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantMessage)
			}
		})
	}
}

func TestInputNormalize(t *testing.T) {
	in := Input{
		Name:          "  John Doe ",
		Company:       "\tAcme\n",
		CardID:        " c1",
		UserID:        "u1 ",
		PublicCardURL: " https://example.com/card/c1 ",
	}

	if got := in.Normalize(); got != validInput() {
		t.Errorf("Normalize() = %+v, want %+v", got, validInput())
	}
}
