package aireply

import (
	"fmt"
	"strings"
)

// maxFallbackNoteLen caps how much of a doctor note the fallback reply may
// carry.
const maxFallbackNoteLen = 160

// FallbackInput is the context for the deterministic fallback reply.
type FallbackInput struct {
	PatientName string
	DoctorName  string
	Message     string
	// Note is the doctor's most recent private note for this patient, if
	// any. It is sanitized and truncated before inclusion.
	Note string
}

// FallbackReply composes the rule-based reply used when every language-model
// provider is unavailable or failing. It is a pure function: same input,
// same output, no I/O.
func FallbackReply(in FallbackInput) string {
	var parts []string

	if name := strings.TrimSpace(in.PatientName); name != "" {
		parts = append(parts, fmt.Sprintf("Hello %s,", name))
	} else {
		parts = append(parts, "Hello,")
	}

	parts = append(parts, fmt.Sprintf("thank you for your message. %s will personally review it and get back to you soon.", in.DoctorName))

	if tip := symptomTip(in.Message); tip != "" {
		parts = append(parts, tip)
	}

	parts = append(parts, "In the meantime, please share any additional details about your symptoms, such as when they started and how severe they feel.")

	if note := sanitizeNote(in.Note); note != "" {
		parts = append(parts, fmt.Sprintf("A note from your doctor: %s", note))
	}

	parts = append(parts, "If your condition feels urgent or is getting worse, please seek immediate medical care.")

	return strings.Join(parts, " ")
}

// symptomTip returns a generic safety tip matched against common symptom
// keywords, or "" when nothing matches. Chest pain and breathing trouble get
// the urgent-care escalation.
func symptomTip(message string) string {
	m := strings.ToLower(message)
	switch {
	case strings.Contains(m, "chest pain"), strings.Contains(m, "breathing"),
		strings.Contains(m, "breathe"), strings.Contains(m, "short of breath"):
		return "Chest pain or difficulty breathing can be serious: if it is severe or sudden, please go to the nearest emergency department or call emergency services right away."
	case strings.Contains(m, "fever"):
		return "For fever, rest and drink plenty of fluids, and monitor your temperature regularly."
	case strings.Contains(m, "cough"), strings.Contains(m, "cold"):
		return "For cough and cold symptoms, warm fluids and rest usually help while you wait."
	case strings.Contains(m, "vomit"), strings.Contains(m, "diarrhea"), strings.Contains(m, "diarrhoea"):
		return "With vomiting or diarrhea, small sips of water or an oral rehydration solution help prevent dehydration."
	}
	return ""
}

// sanitizeNote collapses whitespace runs and truncates the note to a caption
// length suitable for a chat reply.
func sanitizeNote(note string) string {
	note = strings.Join(strings.Fields(note), " ")
	if note == "" {
		return ""
	}
	runes := []rune(note)
	if len(runes) > maxFallbackNoteLen {
		note = strings.TrimSpace(string(runes[:maxFallbackNoteLen])) + "…"
	}
	return note
}
