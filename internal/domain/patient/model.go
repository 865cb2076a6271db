package patient

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound       = errors.New("patient not found")
	ErrDuplicateEmail = errors.New("a patient with this email already exists")
)

// YesNo is the closed vocabulary for the smoking and alcohol lifestyle fields.
type YesNo string

const (
	YesNoYes YesNo = "yes"
	YesNoNo  YesNo = "no"
)

// ParseYesNo validates a lifestyle yes/no value at the boundary. Empty input
// defaults to "no", matching the registration form defaults.
func ParseYesNo(s string) (YesNo, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return YesNoNo, nil
	case "yes":
		return YesNoYes, nil
	case "no":
		return YesNoNo, nil
	}
	return "", fmt.Errorf("invalid yes/no value: %q", s)
}

// ExerciseLevel is the closed vocabulary for the exercise lifestyle field.
type ExerciseLevel string

const (
	ExerciseLow    ExerciseLevel = "low"
	ExerciseMedium ExerciseLevel = "medium"
	ExerciseHigh   ExerciseLevel = "high"
)

// ParseExercise validates an exercise level. Empty input defaults to "low".
func ParseExercise(s string) (ExerciseLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return ExerciseLow, nil
	case "low":
		return ExerciseLow, nil
	case "medium":
		return ExerciseMedium, nil
	case "high":
		return ExerciseHigh, nil
	}
	return "", fmt.Errorf("invalid exercise level: %q", s)
}

// SleepBucket is the closed vocabulary for the bucketed sleep-range field.
type SleepBucket string

const (
	SleepShort  SleepBucket = "<6 hours"
	SleepNormal SleepBucket = "6-8 hours"
	SleepLong   SleepBucket = ">8 hours"
)

// ParseSleep validates a sleep bucket. Empty input defaults to the middle
// bucket.
func ParseSleep(s string) (SleepBucket, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return SleepNormal, nil
	case "<6 hours":
		return SleepShort, nil
	case "6-8 hours":
		return SleepNormal, nil
	case ">8 hours":
		return SleepLong, nil
	}
	return "", fmt.Errorf("invalid sleep bucket: %q", s)
}

// Patient maps to the patients table.
type Patient struct {
	ID              int64         `db:"id" json:"id"`
	Name            string        `db:"name" json:"name"`
	Age             int           `db:"age" json:"age"`
	Gender          string        `db:"gender" json:"gender"`
	Phone           string        `db:"phone" json:"phone"`
	Email           *string       `db:"email" json:"email,omitempty"`
	Address         string        `db:"address" json:"address"`
	Disease         *string       `db:"disease" json:"disease,omitempty"`
	ChronicDiseases *string       `db:"chronic_diseases" json:"chronic_diseases,omitempty"`
	Surgeries       *string       `db:"surgeries" json:"surgeries,omitempty"`
	Medications     *string       `db:"medications" json:"medications,omitempty"`
	Allergies       *string       `db:"allergies" json:"allergies,omitempty"`
	Smoking         YesNo         `db:"smoking" json:"smoking"`
	Alcohol         YesNo         `db:"alcohol" json:"alcohol"`
	Exercise        ExerciseLevel `db:"exercise" json:"exercise"`
	Sleep           SleepBucket   `db:"sleep" json:"sleep"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
}

// Summary is the doctor-panel projection of a patient row.
type Summary struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	Age  int    `db:"age" json:"age"`
}

// Intake carries the self-service form fields. The form overwrites the
// medical history and lifestyle fields unconditionally; demographics are
// untouched.
type Intake struct {
	ChronicDiseases string
	Surgeries       string
	Medications     string
	Allergies       string
	Smoking         YesNo
	Alcohol         YesNo
	Exercise        ExerciseLevel
	Sleep           SleepBucket
}

// Apply copies the intake fields onto p.
func (in Intake) Apply(p *Patient) {
	p.ChronicDiseases = strPtr(in.ChronicDiseases)
	p.Surgeries = strPtr(in.Surgeries)
	p.Medications = strPtr(in.Medications)
	p.Allergies = strPtr(in.Allergies)
	p.Smoking = in.Smoking
	p.Alcohol = in.Alcohol
	p.Exercise = in.Exercise
	p.Sleep = in.Sleep
}

func strPtr(s string) *string {
	return &s
}
