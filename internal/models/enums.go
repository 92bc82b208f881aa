package models

type Specialization string

const (
	SpecArchitect             Specialization = "architect"
	SpecStructuralEngineer    Specialization = "structural_engineer"
	SpecDesigner              Specialization = "designer"
	SpecConstructionOrganizer Specialization = "construction_organizer"
	SpecSurveyor              Specialization = "surveyor"
	SpecOther                 Specialization = "other"
)

// Specializations в порядке вывода в форме.
var Specializations = []Specialization{
	SpecArchitect,
	SpecStructuralEngineer,
	SpecDesigner,
	SpecConstructionOrganizer,
	SpecSurveyor,
	SpecOther,
}

var specializationLabels = map[Specialization]string{
	SpecArchitect:             "Архитектор",
	SpecStructuralEngineer:    "Инженер-строитель",
	SpecDesigner:              "Проектировщик",
	SpecConstructionOrganizer: "Специалист по организации строительства",
	SpecSurveyor:              "Инженер-геодезист",
	SpecOther:                 "Другая специализация",
}

func (s Specialization) Valid() bool {
	_, ok := specializationLabels[s]
	return ok
}

func (s Specialization) Label() string {
	if l, ok := specializationLabels[s]; ok {
		return l
	}
	return string(s)
}

type Experience string

const (
	ExpOneToThree  Experience = "1-3"
	ExpThreeToFive Experience = "3-5"
	ExpFiveToTen   Experience = "5-10"
	ExpOverTen     Experience = "10+"
)

var Experiences = []Experience{
	ExpOneToThree,
	ExpThreeToFive,
	ExpFiveToTen,
	ExpOverTen,
}

var experienceLabels = map[Experience]string{
	ExpOneToThree:  "1-3 года",
	ExpThreeToFive: "3-5 лет",
	ExpFiveToTen:   "5-10 лет",
	ExpOverTen:     "Более 10 лет",
}

func (e Experience) Valid() bool {
	_, ok := experienceLabels[e]
	return ok
}

// Label возвращает подпись для шаблонов, для пустого опыта "не указан".
func (e Experience) Label() string {
	if e == "" {
		return "не указан"
	}
	if l, ok := experienceLabels[e]; ok {
		return l
	}
	return string(e)
}
