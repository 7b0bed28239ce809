package assessment

import (
	apperrors "github.com/jrsteele09/go-mindcare-client/internal/errors"
	"github.com/pkg/errors"
)

// Result of scoring a completed questionnaire
type Result struct {
	Assessment     ID     `json:"assessment"`
	Total          int    `json:"total"`
	MaxScore       int    `json:"maxScore"`
	Band           Band   `json:"severity"`
	Interpretation string `json:"interpretation"`
	Disclaimer     string `json:"disclaimer"`
}

// Score totals answers for questionnaire id. answers must hold exactly one
// value in 0..3 for every question index. Reverse scored questions
// contribute 3 minus the answer.
func Score(id ID, answers map[int]int) (Result, error) {
	def, err := Lookup(id)
	if err != nil {
		return Result{}, errors.Wrap(err, "[assessment.Score]")
	}
	return def.Score(answers)
}

func (d Definition) Score(answers map[int]int) (Result, error) {
	if err := d.checkAnswers(answers); err != nil {
		return Result{}, err
	}

	total := 0
	for i := range d.Len() {
		v := answers[i]
		if d.IsReverseScored(i) {
			v = MaxAnswer - v
		}
		total += v
	}

	t := d.band(total)
	return Result{
		Assessment:     d.ID,
		Total:          total,
		MaxScore:       d.MaxScore(),
		Band:           t.Band,
		Interpretation: t.Interpretation,
		Disclaimer:     Disclaimer,
	}, nil
}

func (d Definition) checkAnswers(answers map[int]int) error {
	for i, v := range answers {
		if i < 0 || i >= d.Len() {
			return errors.Wrapf(apperrors.ErrAnswerOutOfRange, "[%s] question %d does not exist", d.ID, i)
		}
		if v < 0 || v > MaxAnswer {
			return errors.Wrapf(apperrors.ErrAnswerOutOfRange, "[%s] question %d answered %d", d.ID, i, v)
		}
	}
	if len(answers) != d.Len() {
		return errors.Wrapf(apperrors.ErrIncompleteAssessment, "[%s] %d of %d answered", d.ID, len(answers), d.Len())
	}
	return nil
}
