package gateway

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"shareit/internal/api"
	"shareit/internal/apperr"
	"shareit/internal/metrics"
	"shareit/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

const maxRequestBody = 1 << 20

type createUserRequest struct {
	Name  string `json:"name" validate:"notblank,max=255"`
	Email string `json:"email" validate:"required,email,max=512"`
}

type createItemRequest struct {
	Name        string `json:"name" validate:"notblank,max=255"`
	Description string `json:"description" validate:"notblank,max=1000"`
	Available   *bool  `json:"available" validate:"required"`
	RequestID   *int64 `json:"requestId" validate:"omitempty,gt=0"`
}

type commentRequest struct {
	Text string `json:"text" validate:"notblank,max=1000"`
}

type requestCreate struct {
	Description string `json:"description" validate:"notblank,max=1000"`
}

// reject answers 400 without calling the server.
func (g *Gateway) reject(w http.ResponseWriter, r *http.Request, err error) {
	metrics.IncGatewayRejection("validation")
	zerolog.Ctx(r.Context()).Debug().Err(err).Str("path", r.URL.Path).Msg("request rejected")
	writeError(w, http.StatusBadRequest, validationMessage(err))
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
		if fe.Param() != "" {
			return "field " + field + " failed " + fe.Tag() + "=" + fe.Param()
		}
		return "field " + field + " failed " + fe.Tag()
	}
	return apperr.Message(err)
}

// forward passes the call upstream unchanged apart from the normalised query.
func (g *Gateway) forward(w http.ResponseWriter, r *http.Request, userID int64, query url.Values, body []byte) {
	ctx := withRequestID(r.Context(), r.Header.Get("X-Request-Id"))
	resp, err := g.client.Forward(ctx, r.Method, r.URL.Path, query, userID, body)
	if err != nil {
		metrics.IncGatewayRejection("upstream")
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("upstream call failed")
		writeError(w, http.StatusBadGateway, "server unavailable")
		return
	}
	writeStored(w, resp)
}

func (g *Gateway) requireUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := strings.TrimSpace(r.Header.Get(models.HeaderUserID))
	if raw == "" {
		g.reject(w, r, apperr.BadRequestf("missing %s header", models.HeaderUserID))
		return 0, false
	}
	id, ok := headerUserID(r)
	if !ok {
		g.reject(w, r, apperr.BadRequestf("invalid %s header: %s", models.HeaderUserID, raw))
		return 0, false
	}
	return id, true
}

// readBody reads the raw body and decodes it into dst for validation.
func readBody(r *http.Request, dst any) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		return nil, apperr.BadRequestf("read body: %v", err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return nil, apperr.BadRequestf("invalid JSON body: %v", err)
	}
	return body, nil
}

func (g *Gateway) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) ([]byte, bool) {
	body, err := readBody(r, dst)
	if err != nil {
		g.reject(w, r, err)
		return nil, false
	}
	if err := g.validate.Struct(dst); err != nil {
		g.reject(w, r, err)
		return nil, false
	}
	return body, true
}

// pageQuery applies the gateway defaults: from=0, size=10.
func pageQuery(r *http.Request) (url.Values, error) {
	q := url.Values{}
	from, size := 0, models.GatewayDefaultPageSize
	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return nil, apperr.BadRequestf("parameter from must be a non-negative integer, got %s", raw)
		}
		from = v
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("size")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			return nil, apperr.BadRequestf("parameter size must be a positive integer, got %s", raw)
		}
		size = v
	}
	q.Set("from", strconv.Itoa(from))
	q.Set("size", strconv.Itoa(size))
	return q, nil
}

func (g *Gateway) withPathID(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "id")
		if id, err := strconv.ParseInt(raw, 10, 64); err != nil || id <= 0 {
			g.reject(w, r, apperr.BadRequestf("invalid id: %s", raw))
			return
		}
		next(w, r)
	}
}

func (g *Gateway) passThrough(w http.ResponseWriter, r *http.Request) {
	userID, ok := g.requireUser(w, r)
	if !ok {
		return
	}
	g.forward(w, r, userID, nil, nil)
}

func (g *Gateway) passThroughAnon(w http.ResponseWriter, r *http.Request) {
	userID, _ := headerUserID(r)
	g.forward(w, r, userID, nil, nil)
}

func (g *Gateway) listPaged(w http.ResponseWriter, r *http.Request) {
	userID, ok := g.requireUser(w, r)
	if !ok {
		return
	}
	q, err := pageQuery(r)
	if err != nil {
		g.reject(w, r, err)
		return
	}
	g.forward(w, r, userID, q, nil)
}

func (g *Gateway) createUser(w http.ResponseWriter, r *http.Request) {
	var in createUserRequest
	body, ok := g.decodeAndValidate(w, r, &in)
	if !ok {
		return
	}
	userID, _ := headerUserID(r)
	g.forward(w, r, userID, nil, body)
}

func (g *Gateway) updateUser(w http.ResponseWriter, r *http.Request) {
	var in api.UserInput
	body, ok := g.decodeAndValidate(w, r, &in)
	if !ok {
		return
	}
	userID, _ := headerUserID(r)
	g.forward(w, r, userID, nil, body)
}

func (g *Gateway) createItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := g.requireUser(w, r)
	if !ok {
		return
	}
	var in createItemRequest
	body, ok := g.decodeAndValidate(w, r, &in)
	if !ok {
		return
	}
	g.forward(w, r, userID, nil, body)
}

func (g *Gateway) updateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := g.requireUser(w, r)
	if !ok {
		return
	}
	var in api.ItemInput
	body, ok := g.decodeAndValidate(w, r, &in)
	if !ok {
		return
	}
	g.forward(w, r, userID, nil, body)
}

func (g *Gateway) searchItems(w http.ResponseWriter, r *http.Request) {
	q, err := pageQuery(r)
	if err != nil {
		g.reject(w, r, err)
		return
	}
	q.Set("text", r.URL.Query().Get("text"))
	userID, _ := headerUserID(r)
	g.forward(w, r, userID, q, nil)
}

func (g *Gateway) createComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := g.requireUser(w, r)
	if !ok {
		return
	}
	var in commentRequest
	body, ok := g.decodeAndValidate(w, r, &in)
	if !ok {
		return
	}
	g.forward(w, r, userID, nil, body)
}

func (g *Gateway) createBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := g.requireUser(w, r)
	if !ok {
		return
	}
	var in api.BookingInput
	body, ok := g.decodeAndValidate(w, r, &in)
	if !ok {
		return
	}
	if !in.End.Time().After(in.Start.Time()) {
		g.reject(w, r, apperr.BadRequestf("booking end must be after start"))
		return
	}
	g.forward(w, r, userID, nil, body)
}

func (g *Gateway) approveBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := g.requireUser(w, r)
	if !ok {
		return
	}
	approved, err := strconv.ParseBool(strings.TrimSpace(r.URL.Query().Get("approved")))
	if err != nil {
		g.reject(w, r, apperr.BadRequestf("parameter approved must be true or false"))
		return
	}
	g.forward(w, r, userID, url.Values{"approved": {strconv.FormatBool(approved)}}, nil)
}

func (g *Gateway) listBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := g.requireUser(w, r)
	if !ok {
		return
	}
	state, err := models.ParseState(r.URL.Query().Get("state"))
	if err != nil {
		g.reject(w, r, err)
		return
	}
	q, err := pageQuery(r)
	if err != nil {
		g.reject(w, r, err)
		return
	}
	q.Set("state", state.String())
	g.forward(w, r, userID, q, nil)
}

func (g *Gateway) exportBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := g.requireUser(w, r)
	if !ok {
		return
	}
	state, err := models.ParseState(r.URL.Query().Get("state"))
	if err != nil {
		g.reject(w, r, err)
		return
	}
	g.forward(w, r, userID, url.Values{"state": {state.String()}}, nil)
}

func (g *Gateway) createRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := g.requireUser(w, r)
	if !ok {
		return
	}
	var in requestCreate
	body, ok := g.decodeAndValidate(w, r, &in)
	if !ok {
		return
	}
	g.forward(w, r, userID, nil, body)
}
