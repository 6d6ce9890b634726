package survey

import "strings"

// QuestionType is the declared kind of a survey column.
type QuestionType int

const (
	TypeUnknown QuestionType = iota
	TypeScale
	TypeSingleChoice
	TypeMultipleChoice
	TypeDropDown
	TypeMultiDropDown
	TypeAreaChoice
	TypeMatrix
	TypeMatrix3D
	TypeFreeText
	TypeFreeTextGroup
	// skip-set
	TypeName
	TypeDate
	TypeEmail
	TypePhone
	TypeFileUpload
	TypeFreeTextMatrix
)

var typeNames = map[QuestionType]string{
	TypeUnknown:        "Unknown",
	TypeScale:          "Scale",
	TypeSingleChoice:   "Single choice",
	TypeMultipleChoice: "Multiple choice",
	TypeDropDown:       "Drop-down",
	TypeMultiDropDown:  "Multi drop-down",
	TypeAreaChoice:     "Area choice",
	TypeMatrix:         "Matrix",
	TypeMatrix3D:       "Matrix 3D",
	TypeFreeText:       "Free text",
	TypeFreeTextGroup:  "Free text group",
	TypeName:           "Name",
	TypeDate:           "Date",
	TypeEmail:          "Email",
	TypePhone:          "Phone",
	TypeFileUpload:     "File upload",
	TypeFreeTextMatrix: "Free text matrix",
}

// typeTags maps normalised header tags to types. The survey platform exports
// Russian tags; English names are accepted as well.
var typeTags = map[string]QuestionType{
	"scale":                           TypeScale,
	"шкала":                           TypeScale,
	"single choice":                   TypeSingleChoice,
	"одиночный выбор":                 TypeSingleChoice,
	"multiple choice":                 TypeMultipleChoice,
	"множественный выбор":             TypeMultipleChoice,
	"drop-down":                       TypeDropDown,
	"dropdown":                        TypeDropDown,
	"выпадающий список":               TypeDropDown,
	"multi drop-down":                 TypeMultiDropDown,
	"multi dropdown":                  TypeMultiDropDown,
	"множественный выпадающий список": TypeMultiDropDown,
	"area choice":                     TypeAreaChoice,
	"выбор области":                   TypeAreaChoice,
	"matrix":                          TypeMatrix,
	"матрица":                         TypeMatrix,
	"matrix 3d":                       TypeMatrix3D,
	"матрица 3d":                      TypeMatrix3D,
	"free text":                       TypeFreeText,
	"свободный ответ":                 TypeFreeText,
	"free text group":                 TypeFreeTextGroup,
	"группа свободных ответов":        TypeFreeTextGroup,
	"free text matrix":                TypeFreeTextMatrix,
	"матрица свободных ответов":       TypeFreeTextMatrix,
	"name":                            TypeName,
	"имя":                             TypeName,
	"date":                            TypeDate,
	"дата":                            TypeDate,
	"email":                           TypeEmail,
	"e-mail":                          TypeEmail,
	"phone":                           TypePhone,
	"телефон":                         TypePhone,
	"file upload":                     TypeFileUpload,
	"загрузка файла":                  TypeFileUpload,
}

// ParseQuestionType resolves a header tag. Unrecognised tags yield TypeUnknown.
func ParseQuestionType(tag string) QuestionType {
	key := strings.Join(strings.Fields(strings.ToLower(tag)), " ")
	if t, ok := typeTags[key]; ok {
		return t
	}
	return TypeUnknown
}

func (t QuestionType) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return typeNames[TypeUnknown]
}

// IsMultiple reports whether answers are counted against the respondent base
// rather than against the local total.
func (t QuestionType) IsMultiple() bool {
	switch t {
	case TypeMultipleChoice, TypeDropDown, TypeMultiDropDown, TypeAreaChoice:
		return true
	}
	return false
}

// IsSkipped reports whether the type produces no table and is only logged.
func (t QuestionType) IsSkipped() bool {
	switch t {
	case TypeName, TypeDate, TypeEmail, TypePhone, TypeFileUpload, TypeFreeTextMatrix:
		return true
	}
	return false
}

// IsMatrix reports whether the type carries a criterion label row.
func (t QuestionType) IsMatrix() bool {
	return t == TypeMatrix || t == TypeMatrix3D
}
