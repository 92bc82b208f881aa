package intake

import (
	"net/url"
	"strings"
	"testing"

	"nok-landing/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validValues() Values {
	return Values{
		FieldFullName:       "Иванов Иван Иванович",
		FieldEmail:          "ivanov@example.ru",
		FieldPhone:          "+7 912 345-67-89",
		FieldSpecialization: "architect",
		FieldCompany:        "ООО Проект",
		FieldExperience:     "5-10",
		FieldMessage:        "Хочу пройти НОК в этом квартале",
		FieldConsent:        "y",
	}
}

func TestValidate_ValidSubmission(t *testing.T) {
	sub, errs := Validate(validValues())

	require.Empty(t, errs)
	require.NotNil(t, sub)
	assert.Equal(t, "Иванов Иван Иванович", sub.FullName)
	assert.Equal(t, models.SpecArchitect, sub.Specialization)
	assert.Equal(t, models.ExpFiveToTen, sub.Experience)
	assert.True(t, sub.Consent)
}

func TestValidate_OptionalFieldsMayBeAbsent(t *testing.T) {
	v := validValues()
	delete(v, FieldCompany)
	delete(v, FieldExperience)
	delete(v, FieldMessage)

	sub, errs := Validate(v)

	require.Empty(t, errs)
	assert.Empty(t, sub.Company)
	assert.Equal(t, models.Experience(""), sub.Experience)
}

func TestValidate_MissingRequiredField(t *testing.T) {
	for _, field := range []string{FieldFullName, FieldEmail, FieldPhone, FieldSpecialization} {
		t.Run(field, func(t *testing.T) {
			v := validValues()
			delete(v, field)

			sub, errs := Validate(v)

			assert.Nil(t, sub)
			assert.Equal(t, []string{field}, errs.Fields())
			require.Len(t, errs[field], 1)
			assert.Equal(t, MissingField, errs[field][0].Kind)
		})
	}
}

func TestValidate_BlankRequiredFieldIsMissing(t *testing.T) {
	v := validValues()
	v[FieldPhone] = "   "

	_, errs := Validate(v)

	assert.True(t, errs.Has(FieldPhone, MissingField))
	assert.False(t, errs.Has(FieldPhone, LengthViolation))
}

func TestValidate_FullNameLength(t *testing.T) {
	tests := []struct {
		name   string
		length int
		ok     bool
	}{
		{name: "4 chars", length: 4, ok: false},
		{name: "5 chars", length: 5, ok: true},
		{name: "100 chars", length: 100, ok: true},
		{name: "101 chars", length: 101, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validValues()
			v[FieldFullName] = strings.Repeat("я", tt.length)

			_, errs := Validate(v)

			if tt.ok {
				assert.Empty(t, errs)
			} else {
				assert.True(t, errs.Has(FieldFullName, LengthViolation))
				assert.Equal(t, []string{FieldFullName}, errs.Fields())
			}
		})
	}
}

func TestValidate_LengthMessageNamesBound(t *testing.T) {
	v := validValues()
	v[FieldFullName] = "Иван"
	v[FieldCompany] = strings.Repeat("x", 201)

	_, errs := Validate(v)

	assert.Contains(t, errs.Messages(FieldFullName)[0], "5")
	assert.Contains(t, errs.Messages(FieldCompany)[0], "200")
}

func TestValidate_PhoneLength(t *testing.T) {
	v := validValues()
	v[FieldPhone] = "123456789"
	_, errs := Validate(v)
	assert.True(t, errs.Has(FieldPhone, LengthViolation))

	v[FieldPhone] = "1234567890"
	_, errs = Validate(v)
	assert.Empty(t, errs)

	v[FieldPhone] = strings.Repeat("1", 21)
	_, errs = Validate(v)
	assert.True(t, errs.Has(FieldPhone, LengthViolation))
}

func TestValidate_EmailFormat(t *testing.T) {
	v := validValues()
	v[FieldEmail] = "not-an-email"
	_, errs := Validate(v)
	assert.True(t, errs.Has(FieldEmail, FormatViolation))

	v[FieldEmail] = "a@b.com"
	_, errs = Validate(v)
	assert.Empty(t, errs)
}

func TestValidate_Specialization(t *testing.T) {
	v := validValues()
	v[FieldSpecialization] = "astronaut"
	_, errs := Validate(v)
	assert.True(t, errs.Has(FieldSpecialization, InvalidChoice))

	for _, s := range models.Specializations {
		v[FieldSpecialization] = string(s)
		_, errs = Validate(v)
		assert.Empty(t, errs, string(s))
	}
}

func TestValidate_Experience(t *testing.T) {
	v := validValues()
	v[FieldExperience] = "20+"
	_, errs := Validate(v)
	assert.True(t, errs.Has(FieldExperience, InvalidChoice))

	for _, e := range models.Experiences {
		v[FieldExperience] = string(e)
		_, errs = Validate(v)
		assert.Empty(t, errs, string(e))
	}
}

// Подпись из формы не является значением перечисления.
func TestValidate_ChoiceRejectsLabels(t *testing.T) {
	v := validValues()
	v[FieldSpecialization] = models.SpecArchitect.Label()
	v[FieldExperience] = models.ExpOverTen.Label()

	_, errs := Validate(v)
	assert.True(t, errs.Has(FieldSpecialization, InvalidChoice))
	assert.True(t, errs.Has(FieldExperience, InvalidChoice))
}

func TestValidate_Consent(t *testing.T) {
	for _, raw := range []string{"", "false", "0", "off", "no", "FALSE"} {
		t.Run("false value "+raw, func(t *testing.T) {
			v := validValues()
			v[FieldConsent] = raw

			_, errs := Validate(v)

			assert.Equal(t, []string{FieldConsent}, errs.Fields())
			assert.True(t, errs.Has(FieldConsent, ConsentMissing))
		})
	}

	v := validValues()
	delete(v, FieldConsent)
	_, errs := Validate(v)
	assert.True(t, errs.Has(FieldConsent, ConsentMissing))

	for _, raw := range []string{"y", "on", "true", "1"} {
		v[FieldConsent] = raw
		_, errs = Validate(v)
		assert.Empty(t, errs, raw)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	v := validValues()
	v[FieldFullName] = ""
	v[FieldSpecialization] = "astronaut"

	_, errs := Validate(v)

	assert.Equal(t, []string{FieldFullName, FieldSpecialization}, errs.Fields())
	assert.True(t, errs.Has(FieldFullName, MissingField))
	assert.True(t, errs.Has(FieldSpecialization, InvalidChoice))
}

func TestValidate_EmptyInputReportsEverything(t *testing.T) {
	_, errs := Validate(Values{})

	assert.Equal(t, []string{
		FieldConsent, FieldEmail, FieldFullName, FieldPhone, FieldSpecialization,
	}, errs.Fields())
}

func TestValidate_TrimsValues(t *testing.T) {
	v := validValues()
	v[FieldFullName] = "  Петров Пётр  "

	sub, errs := Validate(v)

	require.Empty(t, errs)
	assert.Equal(t, "Петров Пётр", sub.FullName)
}

func TestFromForm(t *testing.T) {
	form := url.Values{
		FieldFullName: {"Иванов Иван", "ignored"},
		FieldConsent:  {"y"},
		"empty":       {},
	}

	v := FromForm(form)

	assert.Equal(t, "Иванов Иван", v[FieldFullName])
	assert.Equal(t, "y", v[FieldConsent])
	_, ok := v["empty"]
	assert.False(t, ok)
}
