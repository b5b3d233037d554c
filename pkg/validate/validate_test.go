package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gamevault/storefront/pkg/validate"
)

type productInput struct {
	Name        string `json:"name"         validate:"required,max=150"`
	ReleaseDate string `json:"release_date" validate:"required,date"`
	Platform    string `json:"platform"     validate:"required,in=PS3|PS4|PS5"`
	Stock       int    `json:"stock"        validate:"gte=0,lte=100000"`
	Image       string `json:"image"        validate:"nullable,max=10"`
}

type registerInput struct {
	Email                string `json:"email"                 validate:"required,email"`
	Password             string `json:"password"              validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type confirmedInput struct {
	Password             string `json:"password" validate:"required,confirmed"`
	PasswordConfirmation string `json:"password_confirmation"`
}

func TestValidProduct(t *testing.T) {
	errs := validate.Struct(productInput{
		Name:        "Gran Turismo 7",
		ReleaseDate: "2022-03-04",
		Platform:    "PS5",
		Stock:       3,
	})
	assert.False(t, validate.HasErrors(errs), errs)
}

func TestRequiredAndFirstFailureWins(t *testing.T) {
	errs := validate.Struct(&productInput{Stock: -1})

	assert.Equal(t, "The name field is required.", errs["name"])
	assert.Equal(t, "The release_date field is required.", errs["release_date"])
	assert.Equal(t, "The platform field is required.", errs["platform"])
	assert.Contains(t, errs["stock"], "greater than or equal to 0")
}

func TestInRuleUsesPipeSeparator(t *testing.T) {
	errs := validate.Struct(productInput{Name: "x", ReleaseDate: "2020-01-01", Platform: "PS2"})
	assert.Equal(t, "The selected platform is invalid.", errs["platform"])
}

func TestDateRule(t *testing.T) {
	errs := validate.Struct(productInput{Name: "x", ReleaseDate: "04/03/2022", Platform: "PS4"})
	assert.Contains(t, errs, "release_date")
}

func TestStringLengthBounds(t *testing.T) {
	long := make([]rune, 151)
	for i := range long {
		long[i] = 'ñ'
	}
	errs := validate.Struct(productInput{Name: string(long), ReleaseDate: "2020-01-01", Platform: "PS4"})
	assert.Contains(t, errs["name"], "150 characters")

	errs = validate.Struct(registerInput{Email: "a@b.co", Password: "short"})
	assert.Contains(t, errs["password"], "at least 8")
}

func TestNullableSkipsEmptyValues(t *testing.T) {
	errs := validate.Struct(productInput{Name: "x", ReleaseDate: "2020-01-01", Platform: "PS4", Image: ""})
	assert.NotContains(t, errs, "image")

	errs = validate.Struct(productInput{Name: "x", ReleaseDate: "2020-01-01", Platform: "PS4", Image: "a-very-long-path.png"})
	assert.Contains(t, errs, "image")
}

func TestEmailRule(t *testing.T) {
	assert.Contains(t, validate.Struct(registerInput{Email: "nope", Password: "longenough"}), "email")
	assert.Empty(t, validate.Struct(registerInput{Email: "player@example.com", Password: "longenough"}))
}

func TestConfirmedRule(t *testing.T) {
	errs := validate.Struct(confirmedInput{Password: "secret123", PasswordConfirmation: "secret124"})
	assert.Contains(t, errs, "password")

	errs = validate.Struct(confirmedInput{Password: "secret123", PasswordConfirmation: "secret123"})
	assert.Empty(t, errs)
}

func TestNonStructIsIgnored(t *testing.T) {
	assert.Empty(t, validate.Struct(42))
	var p *productInput
	assert.Empty(t, validate.Struct(p))
}
