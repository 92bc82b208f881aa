package intake

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"

	"nok-landing/internal/models"

	"github.com/go-playground/validator/v10"
)

// Имена полей формы заявки.
const (
	FieldFullName       = "full_name"
	FieldEmail          = "email"
	FieldPhone          = "phone"
	FieldSpecialization = "specialization"
	FieldCompany        = "company"
	FieldExperience     = "experience"
	FieldMessage        = "message"
	FieldConsent        = "consent"
)

// Kind: вид ошибки валидации поля.
type Kind string

const (
	MissingField    Kind = "missing_field"
	LengthViolation Kind = "length_violation"
	FormatViolation Kind = "format_violation"
	InvalidChoice   Kind = "invalid_choice"
	ConsentMissing  Kind = "consent_missing"
)

type FieldError struct {
	Field   string `json:"field"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// Errors: ошибки по имени поля, все сразу, чтобы форму можно было показать целиком.
type Errors map[string][]FieldError

func (e Errors) add(fe FieldError) {
	e[fe.Field] = append(e[fe.Field], fe)
}

// Fields возвращает отсортированный список полей с ошибками.
func (e Errors) Fields() []string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Has сообщает, есть ли у поля ошибка данного вида.
func (e Errors) Has(field string, kind Kind) bool {
	for _, fe := range e[field] {
		if fe.Kind == kind {
			return true
		}
	}
	return false
}

// Messages: тексты ошибок поля для шаблона.
func (e Errors) Messages(field string) []string {
	out := make([]string, 0, len(e[field]))
	for _, fe := range e[field] {
		out = append(out, fe.Message)
	}
	return out
}

// Values: сырые значения полей формы.
type Values map[string]string

// FromForm берёт первое значение каждого поля из разобранной формы.
func FromForm(form url.Values) Values {
	v := make(Values, len(form))
	for k, vals := range form {
		if len(vals) > 0 {
			v[k] = vals[0]
		}
	}
	return v
}

type check func(field, value string) *FieldError

type fieldRule struct {
	name     string
	required bool
	checks   []check
}

// rules: декларативная схема заявки.
var rules = []fieldRule{
	{name: FieldFullName, required: true, checks: []check{length(5, 100)}},
	{name: FieldEmail, required: true, checks: []check{emailFormat}},
	{name: FieldPhone, required: true, checks: []check{length(10, 20)}},
	{name: FieldSpecialization, required: true, checks: []check{choice(isSpecialization)}},
	{name: FieldCompany, checks: []check{length(0, 200)}},
	{name: FieldExperience, checks: []check{choice(isExperience)}},
	{name: FieldMessage},
}

var falseValues = map[string]struct{}{
	"":      {},
	"false": {},
	"0":     {},
	"off":   {},
	"no":    {},
	"n":     {},
}

var validate = validator.New()

// Validate проверяет сырые значения формы и возвращает либо готовую заявку,
// либо ошибки по всем полям.
func Validate(values Values) (*models.ApplicationSubmission, Errors) {
	errs := Errors{}
	clean := make(map[string]string, len(rules))

	for _, r := range rules {
		value := strings.TrimSpace(values[r.name])
		clean[r.name] = value

		if value == "" {
			if r.required {
				errs.add(FieldError{Field: r.name, Kind: MissingField, Message: "Обязательное поле."})
			}
			continue
		}

		for _, c := range r.checks {
			if fe := c(r.name, value); fe != nil {
				errs.add(*fe)
			}
		}
	}

	consent := parseBool(values[FieldConsent])
	if !consent {
		errs.add(FieldError{
			Field:   FieldConsent,
			Kind:    ConsentMissing,
			Message: "Необходимо согласие на обработку персональных данных.",
		})
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return &models.ApplicationSubmission{
		FullName:       clean[FieldFullName],
		Email:          clean[FieldEmail],
		Phone:          clean[FieldPhone],
		Specialization: models.Specialization(clean[FieldSpecialization]),
		Company:        clean[FieldCompany],
		Experience:     models.Experience(clean[FieldExperience]),
		Message:        clean[FieldMessage],
		Consent:        consent,
	}, nil
}

func parseBool(raw string) bool {
	_, isFalse := falseValues[strings.ToLower(strings.TrimSpace(raw))]
	return !isFalse
}

func length(min, max int) check {
	return func(field, value string) *FieldError {
		n := utf8.RuneCountInString(value)
		switch {
		case min > 0 && n < min:
			return &FieldError{
				Field:   field,
				Kind:    LengthViolation,
				Message: fmt.Sprintf("Поле должно содержать не менее %d символов.", min),
			}
		case max > 0 && n > max:
			return &FieldError{
				Field:   field,
				Kind:    LengthViolation,
				Message: fmt.Sprintf("Поле должно содержать не более %d символов.", max),
			}
		}
		return nil
	}
}

func emailFormat(field, value string) *FieldError {
	if err := validate.Var(value, "email"); err != nil {
		return &FieldError{Field: field, Kind: FormatViolation, Message: "Некорректный адрес электронной почты."}
	}
	return nil
}

// choice отклоняет значения вне перечисления, которое проверяет valid.
func choice(valid func(string) bool) check {
	return func(field, value string) *FieldError {
		if !valid(value) {
			return &FieldError{Field: field, Kind: InvalidChoice, Message: "Недопустимое значение."}
		}
		return nil
	}
}

func isSpecialization(v string) bool { return models.Specialization(v).Valid() }
func isExperience(v string) bool     { return models.Experience(v).Valid() }
