package validate

import (
	"errors"
	"testing"
	"time"

	"bookreview/internal/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testInput struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,password_strength"`
	Year     int    `json:"year" validate:"required,min=1000,not_future_year"`
	Rating   *int   `json:"rating" validate:"omitempty,min=1,max=5"`
}

func valid() testInput {
	return testInput{
		Email:    "test@example.com",
		Name:     "tester",
		Password: "Test123!@#",
		Year:     1999,
	}
}

func fieldMessages(t *testing.T, err error) map[string]string {
	t.Helper()
	var ve *apperror.ValidationError
	require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
	out := make(map[string]string, len(ve.Fields))
	for _, f := range ve.Fields {
		out[f.Field] = f.Message
	}
	return out
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, Struct(valid()))
}

func TestStruct_RequiredFieldsUseJSONNames(t *testing.T) {
	err := Struct(testInput{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	msgs := fieldMessages(t, err)
	assert.Equal(t, "email is required", msgs["email"])
	assert.Equal(t, "name is required", msgs["name"])
	assert.Equal(t, "year is required", msgs["year"])
}

func TestStruct_LengthMessages(t *testing.T) {
	in := valid()
	in.Name = "ab"
	msgs := fieldMessages(t, Struct(in))
	assert.Equal(t, "name must be at least 3 characters", msgs["name"])
}

func TestStruct_NumericRange(t *testing.T) {
	in := valid()
	six := 6
	in.Rating = &six
	msgs := fieldMessages(t, Struct(in))
	assert.Equal(t, "rating must be at most 5", msgs["rating"])

	four := 4
	in.Rating = &four
	assert.NoError(t, Struct(in))
}

func TestStruct_FutureYear(t *testing.T) {
	in := valid()
	in.Year = time.Now().Year() + 1
	msgs := fieldMessages(t, Struct(in))
	assert.Equal(t, "year cannot be in the future", msgs["year"])

	in.Year = time.Now().Year()
	assert.NoError(t, Struct(in))
}

func TestStruct_PasswordStrength(t *testing.T) {
	for _, pw := range []string{"short1!", "alllowercase1!", "ALLUPPERCASE1!", "NoNumbers!!", "NoSpecial123"} {
		in := valid()
		in.Password = pw
		msgs := fieldMessages(t, Struct(in))
		assert.Contains(t, msgs["password"], "uppercase", pw)
	}
}

func TestMustRegister(t *testing.T) {
	MustRegister("test_color", func(v string) bool { return v == "red" || v == "blue" })

	type colored struct {
		Color string `json:"color" validate:"required,test_color"`
	}
	assert.NoError(t, Struct(colored{Color: "red"}))
	msgs := fieldMessages(t, Struct(colored{Color: "green"}))
	assert.Equal(t, "color is invalid", msgs["color"])
}
