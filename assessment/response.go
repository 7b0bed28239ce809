package assessment

import (
	"maps"
	"math"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-mindcare-client/internal/errors"
	"github.com/pkg/errors"
)

// Response is one sitting of a questionnaire: the answers given so far and,
// once submitted, the result. Switching questionnaire starts a new
// Response. A Response is not safe for concurrent use.
type Response struct {
	ID         uuid.UUID
	definition Definition
	answers    map[int]int
	result     *Result
}

func NewResponse(id ID) (*Response, error) {
	def, err := Lookup(id)
	if err != nil {
		return nil, errors.Wrap(err, "[NewResponse]")
	}
	return &Response{
		ID:         uuid.New(),
		definition: def,
		answers:    make(map[int]int, def.Len()),
	}, nil
}

func (r *Response) Definition() Definition {
	return r.definition
}

// Select records value for question index. Changing an answer after
// submission discards the result.
func (r *Response) Select(index, value int) error {
	if index < 0 || index >= r.definition.Len() {
		return errors.Wrapf(apperrors.ErrAnswerOutOfRange, "[Response.Select] question %d does not exist", index)
	}
	if value < 0 || value > MaxAnswer {
		return errors.Wrapf(apperrors.ErrAnswerOutOfRange, "[Response.Select] answer %d", value)
	}
	r.answers[index] = value
	r.result = nil
	return nil
}

// Answer returns the value chosen for question index, if any
func (r *Response) Answer(index int) (int, bool) {
	v, ok := r.answers[index]
	return v, ok
}

func (r *Response) Answers() map[int]int {
	return maps.Clone(r.answers)
}

func (r *Response) Answered() int {
	return len(r.answers)
}

// Progress is the percentage of questions answered, rounded to the nearest
// whole number.
func (r *Response) Progress() int {
	if r.definition.Len() == 0 {
		return 0
	}
	return int(math.Round(float64(len(r.answers)) * 100 / float64(r.definition.Len())))
}

// CanSubmit is true once every question has an answer
func (r *Response) CanSubmit() bool {
	return len(r.answers) == r.definition.Len()
}

// Submit scores the response. It fails with ErrIncompleteAssessment until
// CanSubmit is true.
func (r *Response) Submit() (Result, error) {
	if !r.CanSubmit() {
		return Result{}, errors.Wrapf(apperrors.ErrIncompleteAssessment, "[Response.Submit] %d of %d answered", r.Answered(), r.definition.Len())
	}
	result, err := r.definition.Score(r.answers)
	if err != nil {
		return Result{}, errors.Wrap(err, "[Response.Submit]")
	}
	r.result = &result
	return result, nil
}

// Result returns the submitted result, if Submit has succeeded since the
// last change.
func (r *Response) Result() (Result, bool) {
	if r.result == nil {
		return Result{}, false
	}
	return *r.result, true
}
