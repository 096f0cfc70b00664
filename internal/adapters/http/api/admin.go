package api

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/okian/raffle/internal/adapters/repository"
	"github.com/okian/raffle/internal/domain/model"
	"github.com/okian/raffle/pkg/logger"
)

const msgDrawn = "Winner drawn successfully!"

const msgNoEligible = "No eligible participants for the draw."

func (s *Server) handleListParticipants(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := repository.Query{Search: q.Get("search"), PageSize: s.pageSize}
	if _, ok := q["is_verified"]; ok {
		verified := strings.EqualFold(q.Get("is_verified"), "true")
		query.IsVerified = &verified
	}

	page, ok := s.resolvePage(r, func(page int) (int, error) {
		query.Page = page
		_, total, err := s.store.Participants(r.Context(), query)
		return total, err
	})
	if !ok {
		writeDetail(w, http.StatusNotFound, msgInvalidPage)
		return
	}
	query.Page = page

	rows, total, err := s.store.Participants(r.Context(), query)
	switch {
	case errors.Is(err, repository.ErrInvalidPage):
		writeDetail(w, http.StatusNotFound, msgInvalidPage)
		return
	case err != nil:
		s.internalError(r.Context(), w, err)
		return
	}

	results := make([]model.ParticipantSummary, 0, len(rows))
	for _, p := range rows {
		results = append(results, toSummary(p))
	}
	writeJSON(w, http.StatusOK, s.page(r, page, total, results))
}

// handleGetParticipant serves one non-admin participant in list form.
func (s *Server) handleGetParticipant(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.Participant(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, repository.ErrNotFound), err == nil && p.IsAdmin:
		writeDetail(w, http.StatusNotFound, msgNotFound)
		return
	case err != nil:
		s.internalError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummary(p))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st := s.store.Stats(r.Context())
	writeJSON(w, http.StatusOK, model.Stats{
		TotalParticipants: st.Total,
		Verified:          st.Verified,
		Pending:           st.Pending,
		EligibleForDraw:   st.Eligible,
	})
}

func (s *Server) handleDraw(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	admin, _ := adminFrom(ctx)

	winner, err := s.store.Draw(ctx, admin)
	switch {
	case errors.Is(err, repository.ErrNoEligible):
		writeError(w, http.StatusBadRequest, msgNoEligible)
		return
	case err != nil:
		s.internalError(ctx, w, err)
		return
	}

	s.dispatch(ctx, model.NotifyWinner, winner.ID)
	if current, err := s.store.Winner(ctx, winner.ID); err == nil {
		winner = current
	}

	s.logger.Info(ctx, "winner drawn",
		logger.String("winner", winner.ID),
		logger.String("participant", winner.Participant.ID),
		logger.String("drawn_by", admin.Email),
	)
	writeJSON(w, http.StatusCreated, model.DrawResponse{Message: msgDrawn, Winner: toWinner(winner)})
}

func (s *Server) handleListWinners(w http.ResponseWriter, r *http.Request) {
	page, ok := s.resolvePage(r, func(page int) (int, error) {
		_, total, err := s.store.Winners(r.Context(), page, s.pageSize)
		return total, err
	})
	if !ok {
		writeDetail(w, http.StatusNotFound, msgInvalidPage)
		return
	}

	rows, total, err := s.store.Winners(r.Context(), page, s.pageSize)
	switch {
	case errors.Is(err, repository.ErrInvalidPage):
		writeDetail(w, http.StatusNotFound, msgInvalidPage)
		return
	case err != nil:
		s.internalError(r.Context(), w, err)
		return
	}

	results := make([]model.Winner, 0, len(rows))
	for _, winner := range rows {
		results = append(results, toWinner(winner))
	}
	writeJSON(w, http.StatusOK, s.page(r, page, total, results))
}

func (s *Server) handleGetWinner(w http.ResponseWriter, r *http.Request) {
	winner, err := s.store.Winner(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeDetail(w, http.StatusNotFound, msgNotFound)
		return
	case err != nil:
		s.internalError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWinner(winner))
}

// resolvePage reads the page query parameter. "last" is resolved through
// count, which is called with page 1 and returns the total row count.
func (s *Server) resolvePage(r *http.Request, count func(page int) (int, error)) (int, bool) {
	raw := r.URL.Query().Get("page")
	switch raw {
	case "":
		return 1, true
	case "last":
		total, err := count(1)
		if err != nil {
			return 0, false
		}
		return max(1, (total+s.pageSize-1)/s.pageSize), true
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, false
	}
	return page, true
}

// page builds a paginated body with absolute next and previous links.
func (s *Server) page(r *http.Request, page, total int, results any) pageBody {
	body := pageBody{Count: total, Results: results}
	if page*s.pageSize < total {
		next := pageLink(r, page+1)
		body.Next = &next
	}
	if page > 1 {
		prev := pageLink(r, page-1)
		body.Previous = &prev
	}
	return body
}

// pageBody is model.Page with untyped results.
type pageBody struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  any     `json:"results"`
}

// pageLink rewrites the request URL to point at page. Page one drops the
// parameter.
func pageLink(r *http.Request, page int) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	q := r.URL.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u := url.URL{Scheme: scheme, Host: r.Host, Path: r.URL.Path, RawQuery: q.Encode()}
	return u.String()
}

func toSummary(p repository.Participant) model.ParticipantSummary {
	status := model.StatusVerified
	if !p.IsVerified {
		status = model.StatusPending
	}
	return model.ParticipantSummary{
		ID:         p.ID,
		Email:      p.Email,
		FullName:   p.FullName,
		Phone:      p.Phone,
		IsVerified: p.IsVerified,
		CreatedAt:  p.CreatedAt,
		Status:     status,
	}
}

func toWinner(w repository.Winner) model.Winner {
	out := model.Winner{
		ID:               w.ID,
		Participant:      w.Participant.ID,
		ParticipantName:  w.Participant.FullName,
		ParticipantEmail: w.Participant.Email,
		ParticipantPhone: w.Participant.Phone,
		DrawnAt:          w.DrawnAt,
		Notified:         w.Notified,
		NotifiedAt:       w.NotifiedAt,
		PrizeDescription: w.Prize,
	}
	if w.DrawnBy != nil {
		id := w.DrawnBy.ID
		out.DrawnBy = &id
		out.DrawnByName = w.DrawnBy.FullName
	}
	return out
}
