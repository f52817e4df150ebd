// Package ai wraps the OpenAI chat completion API for the simulated
// consultation. All prompts are German because the whole training runs in
// German.
package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/wallje/karina/internal/errors"
)

// Message is one entry of the consultation transcript.
type Message struct {
	Role    string
	Content string
}

const (
	RoleSystem    = openai.ChatMessageRoleSystem
	RoleUser      = openai.ChatMessageRoleUser
	RoleAssistant = openai.ChatMessageRoleAssistant
)

const maxTokens = 4096

type Client struct {
	client *openai.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		client: openai.NewClient(apiKey),
	}
}

// PatientReply continues the anamnesis conversation in the patient's voice.
func (c *Client) PatientReply(ctx context.Context, transcript []Message) (string, error) {
	return c.complete(ctx, toOpenAI(transcript), 0.6)
}

// ExaminationFindings writes the physical examination findings matching the
// scenario without naming the diagnosis.
func (c *Client) ExaminationFindings(ctx context.Context, scenario string, features string, tip string) (string, error) {
	prompt := fmt.Sprintf(`Die Patientin oder der Patient hat eine zufällig simulierte Erkrankung. Diese lautet: %s.
Weitere relevante anamnestische Hinweise: %s
Zusatzinformationen: %s
Erstelle einen körperlichen Untersuchungsbefund, der zu dieser Erkrankung passt, ohne sie explizit zu nennen oder zu diagnostizieren. Berücksichtige Befunde, die sich aus den Zusatzinformationen ergeben könnten.
Erstelle eine klinisch konsistente Befundlage für die simulierte Erkrankung. Interpretiere die Befunde nicht, gib keine Hinweise auf die Diagnose.

Beginne immer mit zwei Vitalparametern in eigenen Zeilen:
Blutdruck: <systolisch>/<diastolisch> mmHg
Herzfrequenz: <Wert>/Minute

Strukturiere den anschließenden Befund in folgende Abschnitte:

**Allgemeinzustand:**
**Abdomen:**
**Auskultation Herz/Lunge:**
**Haut:**
**Extremitäten:**

Gib ausschließlich körperliche Untersuchungsbefunde an, keine Bildgebung, Labordiagnostik oder Zusatzverfahren. Vermeide jede Form von Bewertung, Hypothese oder Krankheitsnennung.

Formuliere neutral, präzise und sachlich, so wie es in einem klinischen Untersuchungsprotokoll stehen würde.`,
		scenario, features, tip)

	return c.prompt(ctx, prompt, 0.5)
}

// ExtraExamination writes a focused result for one explicitly requested
// additional physical examination.
func (c *Client) ExtraExamination(ctx context.Context, scenario string, features string, existing string, request string) (string, error) {
	prompt := fmt.Sprintf(`Die Patientin oder der Patient weist die simulierte Erkrankung "%s" auf.
Wichtige anamnestische Hinweise: %s
Bereits vorliegender Untersuchungsbefund:
%s

Die folgende zusätzliche körperliche Untersuchung wurde explizit angefordert:
%s
Formuliere ein kompaktes, stichwortartiges Untersuchungsergebnis.

Gib ausschließlich körperliche Untersuchungsbefunde an. Keine Diagnosen, kein Ausblick.`,
		scenario, features, existing, request)

	return c.prompt(ctx, prompt, 0.4)
}

// DiagnosticFindings writes results for the requested diagnostic work-up.
// Lab values come back as an SI-unit table.
func (c *Client) DiagnosticFindings(ctx context.Context, scenario string, requested string) (string, error) {
	prompt := fmt.Sprintf(`Die Patientin oder der Patient hat laut Szenario: %s.
Folgende zusätzliche Diagnostik wurde angefordert:
%s

Erstelle ausschließlich Befunde zu den genannten Untersuchungen.

Falls **Laborwerte** angefordert wurden, gib sie bitte **nur in folgender Tabellenform** aus:

**Parameter** | **Wert** | **Referenzbereich (SI-Einheit)**

Verwende **ausschließlich SI-Einheiten** (z. B. mmol/l, µmol/l, Gpt/l, g/L, U/l). Werte in mg/dL oder µg/mL sind **nicht erlaubt**.

Nutze niemals Einheiten wie mg/dL, ng/mL, µg/L oder %% und ersetze diese durch SI-konforme Angaben.

Gib die Befunde **strukturiert, sachlich und ohne Interpretation** wieder. Nenne **nicht das Diagnose-Szenario**. Ergänze keine nicht angeforderten Untersuchungen.`,
		scenario, requested)

	return c.prompt(ctx, prompt, 0.4)
}

// CorrectLanguage normalises learner input: bullet lists become one term per
// line, free text becomes corrected prose. Empty input stays empty.
func (c *Client) CorrectLanguage(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	prompt := fmt.Sprintf(`Bitte überprüfe die folgenden stichpunktartigen medizinischen Fachbegriffe hinsichtlich Orthographie und Zeichensetzung, schreibe Abkürzungen aus.
Gib den korrigierten Text direkt und ohne Vorbemerkung und ohne Kommentar zurück.
*Stichpunkte*
Gib stichpunktartige Begriffe bitte **mit je einem Zeilenumbruch pro Eintrag** in folgendem Format zurück:

- Begriff 1
- Begriff 2
- Begriff 3

Verwende für jeden Stichpunkt eine **eigene Zeile mit einem Spiegelstrich (-)**. Niemals mehrere Begriffe in einer Zeile.

*Freier Text*
Freie Texte wie Therapiebegründungen werden als sprachlich und grammatikalisch korrigierter Fließtext zurückgegeben und **ohne Spiegelstriche**.

Text:
%s`, text)

	return c.prompt(ctx, prompt, 0.3)
}

// FeedbackInput bundles everything the final assessment prompt covers.
type FeedbackInput struct {
	Scenario       string
	Transcript     string
	ExamFindings   string
	Findings       string
	Differentials  string
	Diagnostics    string
	FinalDiagnosis string
	TherapyPlan    string
	Appointments   int
	AmbossExcerpt  string
}

// Feedback grades the learner's work like an examiner in an oral exam.
func (c *Client) Feedback(ctx context.Context, input FeedbackInput) (string, error) {
	prompt := fmt.Sprintf(`Ein Medizinstudierender hat eine vollständige virtuelle Fallbesprechung mit einer simulierten Patientin oder einem simulierten Patienten durchgeführt. Du bist ein erfahrener medizinischer Prüfer.

Beurteile ausschließlich die Eingaben und Entscheidungen des Studierenden, NICHT die Antworten der simulierten Person oder automatisch generierte Inhalte.

Die zugrunde liegende Erkrankung im Szenario lautet: **%s**.

Hier ist der Gesprächsverlauf mit den Fragen und Aussagen des Nutzers:
%s

GPT-generierte Befunde (nur als Hintergrund, bitte nicht bewerten):
%s
%s

Erhobene Differentialdiagnosen (Nutzerangaben):
%s

Geplante diagnostische Maßnahmen (Nutzerangaben):
%s

Finale Diagnose (Nutzereingabe):
%s

Therapiekonzept (Nutzereingabe):
%s

Die Fallbearbeitung umfasste %d Diagnostik-Termine.

Strukturiere dein Feedback klar, hilfreich und differenziert, wie ein persönlicher Kommentar bei einer mündlichen Prüfung, schreibe in der zweiten Person.

Nenne vorab das zugrunde liegende Szenario. Gib an, ob die Diagnose richtig gestellt wurde. Gib an, wieviele Termine für die Diagnostik benötigt wurden.

1. Wurden im Gespräch alle relevanten anamnestischen Informationen erhoben?
2. War die gewählte Diagnostik nachvollziehbar, vollständig und passend zur Szenariodiagnose **%s**?
3. War die gewählte Diagnostik nachvollziehbar, vollständig und passend zu den Differentialdiagnosen **%s**?
4. Beurteile, ob die diagnostische Strategie sinnvoll aufgebaut war, beachte dabei die Zahl der notwendigen Untersuchungstermine. Gab es unnötige Doppeluntersuchungen, sinnvolle Eskalation, fehlende Folgeuntersuchungen? Beziehe dich ausdrücklich auf die Reihenfolge und den Inhalt der Runden.
5. Ist die finale Diagnose nachvollziehbar, insbesondere im Hinblick auf Differenzierung zu anderen Möglichkeiten?
6. Ist das Therapiekonzept leitliniengerecht, plausibel und auf die Diagnose abgestimmt?

**Berücksichtige und kommentiere zusätzlich**:
- ökologische Aspekte (z. B. überflüssige Diagnostik, zuviele Anforderungen, zuviele Termine, CO₂-Bilanz, Strahlenbelastung bei CT oder Röntgen, Ressourcenverbrauch).
- ökonomische Sinnhaftigkeit (Kosten-Nutzen-Verhältnis)
- Beachte und begründe auch, warum zuwenig Diagnostik unwirtschaftlich und nicht nachhaltig sein kann.`,
		input.Scenario, input.Transcript, input.ExamFindings, input.Findings,
		input.Differentials, input.Diagnostics, input.FinalDiagnosis, input.TherapyPlan,
		input.Appointments, input.Scenario, input.Differentials)

	if input.AmbossExcerpt != "" {
		prompt += fmt.Sprintf("\n\nZusätzliche Fachinformationen (AMBOSS):\n%s\n", input.AmbossExcerpt)
	}

	return c.prompt(ctx, prompt, 0.4)
}

func (c *Client) prompt(ctx context.Context, prompt string, temperature float32) (string, error) {
	return c.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	}, temperature)
}

func (c *Client) complete(ctx context.Context, messages []openai.ChatCompletionMessage, temperature float32) (string, error) {
	completion, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{ //nolint:exhaustruct // this is better for readability
			Model:       openai.GPT4,
			MaxTokens:   maxTokens,
			Temperature: temperature,
			Messages:    messages,
		},
	)
	if err != nil {
		return "", errors.Wrap(err, "create chat completion")
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}

func toOpenAI(transcript []Message) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, len(transcript))
	for i, msg := range transcript {
		messages[i] = openai.ChatCompletionMessage{Role: msg.Role, Content: msg.Content}
	}
	return messages
}
