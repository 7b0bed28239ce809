// Package assessment holds the PHQ-9, GAD-7 and PSS-10 questionnaires and
// scores completed responses. Everything here is static data and pure
// functions.
package assessment

import (
	"slices"
	"strings"

	apperrors "github.com/jrsteele09/go-mindcare-client/internal/errors"
	"github.com/pkg/errors"
)

// ID names a questionnaire
type ID string

const (
	PHQ9  ID = "phq9"
	GAD7  ID = "gad7"
	PSS10 ID = "pss10"
)

// Band is the severity category a total falls in
type Band string

const (
	BandMinimal          Band = "minimal"
	BandLow              Band = "low"
	BandMild             Band = "mild"
	BandModerate         Band = "moderate"
	BandModeratelySevere Band = "moderately severe"
	BandSevere           Band = "severe"
	BandHigh             Band = "high"
)

// MaxAnswer is the highest value on every scale; answers run 0..MaxAnswer
const MaxAnswer = 3

// Disclaimer accompanies every result
const Disclaimer = "This tool does not provide a diagnosis. For proper evaluation, consult a healthcare professional."

// threshold maps totals up to and including Max onto a band
type threshold struct {
	Max            int
	Band           Band
	Interpretation string
}

// Definition is one questionnaire
type Definition struct {
	ID            ID
	Title         string
	Description   string
	Questions     []string
	ReverseScored []int
	ScaleLabels   [MaxAnswer + 1]string
	Scoring       string
	thresholds    []threshold
}

var frequencyLabels = [MaxAnswer + 1]string{"Not at all", "Several days", "More than half", "Nearly every day"}

var definitions = []Definition{
	{
		ID:    PHQ9,
		Title: "PHQ-9 Depression Assessment",
		Description: "The PHQ-9 is a validated diagnostic tool for depression. Over the last 2 weeks, " +
			"how often have you been bothered by any of the following problems?",
		Questions: []string{
			"Little interest or pleasure in doing things",
			"Feeling down, depressed, or hopeless",
			"Trouble falling or staying asleep, or sleeping too much",
			"Feeling tired or having little energy",
			"Poor appetite or overeating",
			"Feeling bad about yourself - or that you are a failure or have let yourself or your family down",
			"Trouble concentrating on things, such as reading the newspaper or watching television",
			"Moving or speaking so slowly that other people could have noticed? Or the opposite - being so " +
				"fidgety or restless that you have been moving around a lot more than usual",
			"Thoughts that you would be better off dead or of hurting yourself in some way",
		},
		ScaleLabels: frequencyLabels,
		Scoring:     "Scores range from 0-27. Cutpoints: 5 (mild), 10 (moderate), 15 (moderately severe), 20 (severe).",
		thresholds: []threshold{
			{4, BandMinimal, "Minimal depression."},
			{9, BandMild, "Mild depression."},
			{14, BandModerate, "Moderate depression."},
			{19, BandModeratelySevere, "Moderately severe depression."},
			{27, BandSevere, "Severe depression."},
		},
	},
	{
		ID:    GAD7,
		Title: "GAD-7 Anxiety Assessment",
		Description: "The GAD-7 is a validated diagnostic tool for anxiety. Over the last 2 weeks, " +
			"how often have you been bothered by the following problems?",
		Questions: []string{
			"Feeling nervous, anxious, or on edge",
			"Not being able to stop or control worrying",
			"Worrying too much about different things",
			"Trouble relaxing",
			"Being so restless that it is hard to sit still",
			"Becoming easily annoyed or irritable",
			"Feeling afraid as if something awful might happen",
		},
		ScaleLabels: frequencyLabels,
		Scoring:     "Scores range from 0-21. Cutpoints: 5 (mild), 10 (moderate), 15 (severe).",
		thresholds: []threshold{
			{4, BandMinimal, "Minimal anxiety."},
			{9, BandMild, "Mild anxiety."},
			{14, BandModerate, "Moderate anxiety."},
			{21, BandSevere, "Severe anxiety."},
		},
	},
	{
		ID:    PSS10,
		Title: "Perceived Stress Scale (PSS-10)",
		Description: "The PSS-10 measures the degree to which situations in your life are appraised as " +
			"stressful. In the last month, how often have you:",
		Questions: []string{
			"Been upset because of something that happened unexpectedly?",
			"Felt that you were unable to control the important things in your life?",
			"Felt nervous and 'stressed'?",
			"Felt confident about your ability to handle your personal problems?",
			"Felt that things were going your way?",
			"Found that you could not cope with all the things that you had to do?",
			"Been able to control irritations in your life?",
			"Felt that you were on top of things?",
			"Been angered because of things that happened that were outside of your control?",
			"Felt difficulties were piling up so high that you could not overcome them?",
		},
		ReverseScored: []int{3, 4, 6, 7},
		ScaleLabels:   [MaxAnswer + 1]string{"Never", "Almost never", "Sometimes", "Often"},
		Scoring:       "Scores range from 0-40. 0-13 = low stress; 14-26 = moderate stress; 27-40 = high perceived stress.",
		thresholds: []threshold{
			{13, BandLow, "Low stress."},
			{26, BandModerate, "Moderate stress."},
			{40, BandHigh, "High perceived stress."},
		},
	},
}

// Definitions lists every questionnaire in display order. Each entry is a
// copy and may be changed freely.
func Definitions() []Definition {
	defs := make([]Definition, 0, len(definitions))
	for _, d := range definitions {
		defs = append(defs, d.clone())
	}
	return defs
}

// Lookup returns a copy of the definition for id
func Lookup(id ID) (Definition, error) {
	for _, d := range definitions {
		if d.ID == id {
			return d.clone(), nil
		}
	}
	return Definition{}, errors.Wrapf(apperrors.ErrUnknownAssessment, "[assessment.Lookup] %q", id)
}

// ParseID accepts an id in any case, with or without the dash ("PHQ-9")
func ParseID(raw string) (ID, error) {
	id := ID(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "-", ""))
	if _, err := Lookup(id); err != nil {
		return "", err
	}
	return id, nil
}

// Len is the number of questions
func (d Definition) Len() int {
	return len(d.Questions)
}

// MaxScore is the highest attainable total
func (d Definition) MaxScore() int {
	return d.Len() * MaxAnswer
}

// IsReverseScored reports whether the answer to question i is inverted
func (d Definition) IsReverseScored(i int) bool {
	return slices.Contains(d.ReverseScored, i)
}

func (d Definition) clone() Definition {
	d.Questions = slices.Clone(d.Questions)
	d.ReverseScored = slices.Clone(d.ReverseScored)
	d.thresholds = slices.Clone(d.thresholds)
	return d
}

func (d Definition) band(total int) threshold {
	for _, t := range d.thresholds {
		if total <= t.Max {
			return t
		}
	}
	return d.thresholds[len(d.thresholds)-1]
}
