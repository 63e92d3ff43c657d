package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pawfund/pawfund-backend/api/responses"
	pkgerrors "github.com/pawfund/pawfund-backend/pkg/errors"
	"github.com/pawfund/pawfund-backend/pkg/logger"
)

const (
	IdempotencyHeader     = "Idempotency-Key"
	defaultIdempotencyTTL = 24 * time.Hour
	paymentIdempotencyTTL = 7 * 24 * time.Hour
)

type idempotencyStore interface {
	Get(context.Context, string) (string, error)
	SetNX(context.Context, string, any, time.Duration) (bool, error)
	IdempotencyKey(scope, id string) string
}

type pathMatcher func(path string) bool

type idempotencyRule struct {
	method string
	match  pathMatcher
	ttl    time.Duration
}

// idempotencyRules lists the mutating routes whose responses are replayed
// when a client retries with the same Idempotency-Key.
var idempotencyRules = []idempotencyRule{
	{method: http.MethodPost, match: matchExact("/api/adoptions"), ttl: defaultIdempotencyTTL},
	{method: http.MethodPost, match: matchExact("/api/adoptions/from-cart"), ttl: defaultIdempotencyTTL},
	{method: http.MethodPost, match: matchExact("/api/adoption-test/submit"), ttl: defaultIdempotencyTTL},
	{method: http.MethodPost, match: matchPrefix("/api/collaborations/invite/"), ttl: defaultIdempotencyTTL},
	{method: http.MethodPost, match: matchExact("/api/donations"), ttl: paymentIdempotencyTTL},
	{method: http.MethodPost, match: matchExact("/api/donations/paypal/create-order"), ttl: paymentIdempotencyTTL},
	{method: http.MethodPost, match: matchPrefix("/api/donations/paypal/capture/"), ttl: paymentIdempotencyTTL},
}

func routeTTL(method, path string) (time.Duration, bool) {
	path = strings.TrimRight(path, "/")
	for _, rule := range idempotencyRules {
		if rule.method == method && rule.match(path) {
			return rule.ttl, true
		}
	}
	return 0, false
}

func matchExact(want string) pathMatcher {
	return func(path string) bool { return path == want }
}

func matchPrefix(prefix string) pathMatcher {
	return func(path string) bool { return strings.HasPrefix(path, prefix) && len(path) > len(prefix) }
}

type idempotencyRecord struct {
	Status      int    `json:"status"`
	Body        string `json:"body"`
	ContentType string `json:"content_type,omitempty"`
	RequestHash string `json:"request_hash"`
}

// Idempotency replays the stored response for a repeated Idempotency-Key on
// the routes above. The header is optional; requests without it pass through.
// Keys are scoped to the caller, so it must be mounted after Auth or
// OptionalAuth on each route; anonymous callers are scoped by client address.
func Idempotency(store idempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ttl, ok := routeTTL(r.Method, r.URL.Path)
			key := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
			if !ok || key == "" {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			hash := hashBody(body)
			redisKey := store.IdempotencyKey(callerScope(r)+"|"+r.Method+"|"+r.URL.Path, key)

			stored, err := store.Get(r.Context(), redisKey)
			switch {
			case err != nil && !errors.Is(err, redis.Nil):
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
				return
			case stored != "":
				var record idempotencyRecord
				if err := json.Unmarshal([]byte(stored), &record); err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
					return
				}
				if record.RequestHash != hash {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with a different request body"))
					return
				}
				replay(w, record)
				return
			}

			rec := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(rec, r)
			if rec.status >= http.StatusInternalServerError {
				return
			}

			payload, err := json.Marshal(idempotencyRecord{
				Status:      rec.statusOrOK(),
				Body:        base64.StdEncoding.EncodeToString(rec.body.Bytes()),
				ContentType: rec.Header().Get("Content-Type"),
				RequestHash: hash,
			})
			if err != nil {
				return
			}
			if _, err := store.SetNX(r.Context(), redisKey, string(payload), ttl); err != nil && logg != nil {
				logg.Error(r.Context(), "idempotency.persist_failed", err)
			}
		})
	}
}

func callerScope(r *http.Request) string {
	if id := UserIDFromContext(r.Context()); id != "" {
		return "user:" + id
	}
	return "anon:" + clientIP(r)
}

func replay(w http.ResponseWriter, record idempotencyRecord) {
	if record.ContentType != "" {
		w.Header().Set("Content-Type", record.ContentType)
	}
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(record.Status)
	if decoded, err := base64.StdEncoding.DecodeString(record.Body); err == nil {
		_, _ = w.Write(decoded)
	}
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return base64.StdEncoding.EncodeToString(sum[:])
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (r *responseCapture) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseCapture) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseCapture) statusOrOK() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}
