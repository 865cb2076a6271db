package analysis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrPatientNotFound = errors.New("patient not found")

const systemPrompt = `You are an intelligent assistant for an orthopedic doctor. When the doctor provides details about a patient, including Personal Information, Lifestyle & Habits, Medical History, Current Symptoms, and Medical Reports (such as X-rays, MRIs, and CT scans), analyze the data to assist with musculoskeletal disease analysis, injury assessment, possible diagnosis, and treatment planning.

Your role is to help identify orthopedic conditions such as fractures, arthritis, spinal disorders, joint degeneration, and musculoskeletal injuries. Suggest further diagnostic tests if necessary and provide evidence-based treatment recommendations, including medications, physical therapy, surgical options, and lifestyle modifications.

Additionally, predict potential future orthopedic issues based on the patient's condition, age, and lifestyle. Offer preventive strategies, including exercises, posture correction, ergonomic advice, and nutritional guidance to maintain bone and joint health.`

// Facts is the case material handed to the collaborator for one patient.
type Facts struct {
	PersonalInfo    string
	LifestyleHabits string
	MedicalHistory  string
	CurrentSymptoms string
	Files           []FileRef
}

// FactsSource assembles case facts from the record store. The concrete
// adapter lives with the wiring so this package stays free of the patient
// and document types.
type FactsSource interface {
	PatientFacts(ctx context.Context, patientID int64) (*Facts, error)
}

type Service struct {
	facts FactsSource
	gen   Generator
}

func NewService(facts FactsSource, gen Generator) *Service {
	return &Service{facts: facts, gen: gen}
}

func orDefault(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Not provided"
	}
	return s
}

func buildPrompt(f *Facts) string {
	return systemPrompt + "\n" + fmt.Sprintf(`The doctor has provided the following patient details:
- Personal Information: %s
- Lifestyle & Habits: %s
- Medical History: %s
- Current Symptoms: %s

Based on this information and the provided medical reports, analyze the data and provide:
1. A possible diagnosis of the condition.
2. Suggestions for further diagnostic tests, if necessary.
3. A recommended treatment plan (medications, therapy, or surgery).
4. Predictions of future orthopedic issues the patient may develop.
5. Preventive strategies, including exercises, lifestyle modifications, and nutrition.`,
		orDefault(f.PersonalInfo),
		orDefault(f.LifestyleHabits),
		orDefault(f.MedicalHistory),
		orDefault(f.CurrentSymptoms))
}

// Summarize runs a patient's case through the collaborator. Collaborator
// failures become part of the returned text, never an error: the front desk
// shows whatever came back.
func (s *Service) Summarize(ctx context.Context, patientID int64) (string, error) {
	facts, err := s.facts.PatientFacts(ctx, patientID)
	if err != nil {
		return "", err
	}
	text, err := s.gen.Generate(ctx, buildPrompt(facts), facts.Files)
	if err != nil {
		return fmt.Sprintf("Error during API call: %s", err), nil
	}
	return text, nil
}

// Analyze is the local rule-based pass over submitted patient fields. It
// needs no stored record and no collaborator.
func Analyze(data map[string]any) (string, error) {
	age, err := toInt(data["age"])
	if err != nil {
		return "", fmt.Errorf("invalid age: %v", data["age"])
	}

	var b strings.Builder
	b.WriteString("Patient Analysis:\n\n")

	switch {
	case age < 18:
		b.WriteString("- Patient is in pediatric age group\n")
	case age >= 65:
		b.WriteString("- Patient is in geriatric age group\n")
	default:
		b.WriteString("- Patient is in adult age group\n")
	}

	if disease := asString(data["disease"]); disease != "" {
		fmt.Fprintf(&b, "- Current medical condition: %s\n", disease)
		b.WriteString("- Regular monitoring recommended\n")
	} else {
		b.WriteString("- No current medical conditions reported\n")
	}

	if asString(data["email"]) != "" && asString(data["phone"]) != "" {
		b.WriteString("- Multiple contact methods available\n")
	}

	return b.String(), nil
}

// toInt accepts the number-or-string age values browsers submit. Absent means
// zero.
func toInt(v any) (int, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return int(n), nil
	case string:
		if n == "" {
			return 0, nil
		}
		return strconv.Atoi(n)
	}
	return 0, fmt.Errorf("unsupported type %T", v)
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
