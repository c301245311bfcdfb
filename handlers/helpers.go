package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/Dosada05/esports-arena/gamestats"
	"github.com/Dosada05/esports-arena/services"
	"github.com/Dosada05/esports-arena/signaling"
)

type jsonResponse map[string]interface{}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	errorResponseWithHeaders(w, r, status, message, nil)
}

func errorResponseWithHeaders(w http.ResponseWriter, r *http.Request, status int, message interface{}, headers http.Header) {
	env := jsonResponse{"error": message}
	if err := writeJSON(w, status, env, headers); err != nil {
		slog.ErrorContext(r.Context(), "failed to write error response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "internal server error",
		"error", err,
		"method", r.Method,
		"path", r.URL.Path,
	)
	message := "the server encountered a problem and could not process your request"
	errorResponse(w, r, http.StatusInternalServerError, message)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func notFoundResponse(w http.ResponseWriter, r *http.Request, message string) {
	if message == "" {
		message = "the requested resource could not be found"
	}
	errorResponse(w, r, http.StatusNotFound, message)
}

func conflictResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusConflict, message)
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnauthorized, message)
}

func rateLimitedResponse(w http.ResponseWriter, r *http.Request, err error) {
	var headers http.Header
	var rl *gamestats.RateLimitError
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		headers = http.Header{"Retry-After": []string{strconv.Itoa(int(math.Ceil(rl.RetryAfter.Seconds())))}}
	}
	errorResponseWithHeaders(w, r, http.StatusTooManyRequests, services.ErrStatsRateLimited.Error(), headers)
}

func badGatewayResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.WarnContext(r.Context(), "upstream failure", "error", err, "path", r.URL.Path)
	errorResponse(w, r, http.StatusBadGateway, services.ErrStatsUnavailable.Error())
}

func serviceUnavailableResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusServiceUnavailable, message)
}

// mapServiceErrorToHTTP преобразует ошибки сервисного слоя в HTTP-ответы
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	// Не найдено
	case errors.Is(err, services.ErrNotFound):
		notFoundResponse(w, r, "")
	case errors.Is(err, services.ErrMessageNotFound),
		errors.Is(err, services.ErrPlayerNotFound):
		notFoundResponse(w, r, errorHead(err))

	// Невалидные данные
	case errors.Is(err, services.ErrValidationFailed),
		errors.Is(err, services.ErrInvalidRoom),
		errors.Is(err, services.ErrMessageEmpty),
		errors.Is(err, services.ErrMessageTooLong),
		errors.Is(err, services.ErrInvalidRegion),
		errors.Is(err, services.ErrInvalidRiotID),
		errors.Is(err, services.ErrInvalidCursor):
		badRequestResponse(w, r, err)

	// Конфликты состояния
	case errors.Is(err, services.ErrRoomEmpty):
		conflictResponse(w, r, err.Error())

	// Внешние зависимости
	case errors.Is(err, services.ErrStatsRateLimited):
		rateLimitedResponse(w, r, err)
	case errors.Is(err, services.ErrStatsUnavailable):
		badGatewayResponse(w, r, err)
	case errors.Is(err, services.ErrArchiveUnavailable),
		errors.Is(err, signaling.ErrHubClosed):
		serviceUnavailableResponse(w, r, err.Error())

	default:
		serverErrorResponse(w, r, err)
	}
}

// errorHead отбрасывает обёрнутые подробности ("player not found: henrik: ..." -> "player not found").
func errorHead(err error) string {
	head, _, _ := strings.Cut(err.Error(), ": ")
	return head
}

func queryInt64(r *http.Request, key string, def int64) (int64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("query parameter %q must be an integer", key)
	}
	return v, nil
}
