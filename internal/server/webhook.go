package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/lazypower/dettato/internal/alexa"
	"github.com/lazypower/dettato/internal/dictation"
)

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	log := s.log.With("request_id", middleware.GetReqID(r.Context()))

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "read body failed")
		return
	}

	env, err := alexa.Decode(body)
	if err != nil {
		log.Warn("webhook: bad request", "err", err)
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if s.verifier != nil {
		if err := s.verifier.Verify(r.Context(), r.Header, body, env); err != nil {
			log.Warn("webhook: rejected", "err", err)
			writeError(w, http.StatusBadRequest, "verification failed")
			return
		}
	}

	sess, err := dictation.FromAttributes(env.Session.Attributes)
	if err != nil {
		log.Warn("webhook: discarding session attributes", "err", err)
		sess = dictation.NewSession()
	}

	res := s.skill.Handle(r.Context(), env.Turn(s.profile), sess)
	log.Debug("turn",
		"type", env.Request.Type,
		"intent", env.Request.Intent.Name,
		"class", res.Class,
		"state", sess.State,
	)
	writeJSON(w, http.StatusOK, alexa.NewResponse(res, sess))
}
