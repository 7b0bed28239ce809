package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/jrsteele09/go-mindcare-client/assessment"
	apperrors "github.com/jrsteele09/go-mindcare-client/internal/errors"
	"github.com/rs/zerolog/log"
)

type optionView struct {
	Value int
	Label string
}

type questionView struct {
	Index    int
	Text     string
	Selected int // -1 when unanswered
}

// AssessmentView is one questionnaire, as answered so far
type AssessmentView struct {
	Definition assessment.Definition
	Questions  []questionView
	Options    []optionView
	Answered   int
	Progress   int
	CanSubmit  bool
	Result     *assessment.Result
}

func newAssessmentView(resp *assessment.Response) AssessmentView {
	def := resp.Definition()
	view := AssessmentView{
		Definition: def,
		Answered:   resp.Answered(),
		Progress:   resp.Progress(),
		CanSubmit:  resp.CanSubmit(),
	}
	for v, label := range def.ScaleLabels {
		view.Options = append(view.Options, optionView{Value: v, Label: label})
	}
	for i, text := range def.Questions {
		q := questionView{Index: i, Text: text, Selected: -1}
		if v, ok := resp.Answer(i); ok {
			q.Selected = v
		}
		view.Questions = append(view.Questions, q)
	}
	if result, ok := resp.Result(); ok {
		view.Result = &result
	}
	return view
}

func answerField(index int) string {
	return fmt.Sprintf("q%d", index)
}

// AssessmentsHandler lists the questionnaires
func (s *Server) AssessmentsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, http.StatusOK, pageAssessments, s.newPage(r, assessment.Definitions()))
	}
}

// AssessmentFormHandler starts a fresh response to one questionnaire
func (s *Server) AssessmentFormHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, ok := s.newResponse(w, r)
		if !ok {
			return
		}
		s.render(w, http.StatusOK, pageAssessment, s.newPage(r, newAssessmentView(resp)))
	}
}

// AssessmentSubmitHandler scores the posted answers. An incomplete form is
// shown again with what was chosen and is not scored.
func (s *Server) AssessmentSubmitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, ok := s.newResponse(w, r)
		if !ok {
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		for i := range resp.Definition().Len() {
			raw := r.PostFormValue(answerField(i))
			if raw == "" {
				continue
			}
			value, err := strconv.Atoi(raw)
			if err == nil {
				err = resp.Select(i, value)
			}
			if err != nil {
				page := s.newPage(r, newAssessmentView(resp))
				page.Error = fmt.Sprintf("Question %d has an invalid answer", i+1)
				s.render(w, http.StatusBadRequest, pageAssessment, page)
				return
			}
		}

		if !resp.CanSubmit() {
			page := s.newPage(r, newAssessmentView(resp))
			page.Error = fmt.Sprintf("Please answer all %d questions before submitting", resp.Definition().Len())
			s.render(w, http.StatusUnprocessableEntity, pageAssessment, page)
			return
		}

		result, err := resp.Submit()
		if err != nil {
			log.Err(err).Str("assessment", string(resp.Definition().ID)).Msg("Scoring failed")
			http.Error(w, "Failed to score assessment", http.StatusInternalServerError)
			return
		}
		log.Info().
			Str("assessment", string(result.Assessment)).
			Str("response_id", resp.ID.String()).
			Msg("Assessment scored")

		s.render(w, http.StatusOK, pageAssessment, s.newPage(r, newAssessmentView(resp)))
	}
}

func (s *Server) newResponse(w http.ResponseWriter, r *http.Request) (*assessment.Response, bool) {
	id, err := assessment.ParseID(r.PathValue("id"))
	if err == nil {
		var resp *assessment.Response
		if resp, err = assessment.NewResponse(id); err == nil {
			return resp, true
		}
	}
	if apperrors.Is(err, apperrors.ErrUnknownAssessment) {
		http.NotFound(w, r)
		return nil, false
	}
	log.Err(err).Msg("Failed to start assessment")
	http.Error(w, "Failed to start assessment", http.StatusInternalServerError)
	return nil, false
}
