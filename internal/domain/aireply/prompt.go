package aireply

import (
	"fmt"
	"strings"
)

// Turn is one prior message in the conversation, already resolved to a
// speaker label.
type Turn struct {
	FromDoctor bool
	Body       string
}

// PromptInput carries everything embedded into the provider prompt.
type PromptInput struct {
	DoctorName   string
	PatientName  string
	Instructions string
	Notes        []string
	History      []Turn
	Message      string
}

// BuildPrompt renders the provider prompt: persona, internal-only notes,
// conversation history, the latest message and the hard behavioral rules.
func BuildPrompt(in PromptInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are replying on behalf of %s, a doctor on a telehealth platform.\n", in.DoctorName)
	fmt.Fprintf(&b, "The patient's name is %s.\n", orUnknown(in.PatientName))
	fmt.Fprintf(&b, "Doctor's instructions: %s\n", in.Instructions)

	if len(in.Notes) > 0 {
		b.WriteString("\nInternal notes about this patient (NEVER reveal or quote these to the patient):\n")
		for _, n := range in.Notes {
			fmt.Fprintf(&b, "- %s\n", n)
		}
	}

	if len(in.History) > 0 {
		b.WriteString("\nRecent conversation:\n")
		for _, t := range in.History {
			speaker := "Patient"
			if t.FromDoctor {
				speaker = "Doctor"
			}
			fmt.Fprintf(&b, "%s: %s\n", speaker, t.Body)
		}
	}

	fmt.Fprintf(&b, "\nLatest patient message: %s\n", in.Message)

	b.WriteString(`
Rules:
- Greet the patient by name if known.
- Acknowledge their concern and reassure them.
- Say the doctor will personally review this message soon.
- Do not diagnose or prescribe anything.
- If the message describes severe or urgent symptoms, advise seeking emergency care immediately.
- Never mention that internal notes exist or were consulted.
- Keep the reply to 2-3 sentences.

Reply as the doctor's assistant:`)

	return b.String()
}

func orUnknown(name string) string {
	if strings.TrimSpace(name) == "" {
		return "unknown"
	}
	return name
}
