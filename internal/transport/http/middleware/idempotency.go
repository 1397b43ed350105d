package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hireflow/internal/transport/http/api"
)

var ErrIdempotencyConflict = errors.New("idempotency key conflicts with existing request")

// IdempotencyKeeper stores the response of a keyed mutation so a retry with
// the same key and payload replays it instead of running again.
type IdempotencyKeeper interface {
	Check(ctx context.Context, tenantID, userID, endpoint, key, requestHash string) (json.RawMessage, bool, error)
	Save(ctx context.Context, tenantID, userID, endpoint, key, requestHash string, response json.RawMessage) error
}

type IdempotencyStore struct {
	db *pgxpool.Pool
}

func NewIdempotencyStore(db *pgxpool.Pool) *IdempotencyStore {
	return &IdempotencyStore{db: db}
}

// IdempotencyKey returns the trimmed Idempotency-Key header.
func IdempotencyKey(r *http.Request) string {
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if len(key) > 200 {
		return key[:200]
	}
	return key
}

func RequestHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func (s *IdempotencyStore) Check(ctx context.Context, tenantID, userID, endpoint, key, requestHash string) (json.RawMessage, bool, error) {
	if s == nil || s.db == nil {
		return nil, false, nil
	}
	var storedHash string
	var stored json.RawMessage
	err := s.db.QueryRow(ctx, `
    SELECT request_hash, response_json
    FROM idempotency_keys
    WHERE tenant_id = $1 AND user_id = $2 AND key = $3 AND endpoint = $4
  `, tenantID, userID, key, endpoint).Scan(&storedHash, &stored)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if storedHash != requestHash {
		return nil, false, ErrIdempotencyConflict
	}
	return stored, true, nil
}

func (s *IdempotencyStore) Save(ctx context.Context, tenantID, userID, endpoint, key, requestHash string, response json.RawMessage) error {
	if s == nil || s.db == nil {
		return nil
	}
	tag, err := s.db.Exec(ctx, `
    INSERT INTO idempotency_keys (tenant_id, user_id, key, endpoint, request_hash, response_json)
    VALUES ($1, $2, $3, $4, $5, $6)
    ON CONFLICT (tenant_id, user_id, key, endpoint)
    DO UPDATE SET response_json = EXCLUDED.response_json
    WHERE idempotency_keys.request_hash = EXCLUDED.request_hash
  `, tenantID, userID, key, endpoint, requestHash, response)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIdempotencyConflict
	}
	return nil
}

// ReplayOrRun serves the stored response when the request repeats an
// Idempotency-Key, otherwise runs fn and stores what it returns. fn writes
// its own failure response and reports ok=false; failures are never stored.
func ReplayOrRun(w http.ResponseWriter, r *http.Request, keeper IdempotencyKeeper, endpoint, requestHash string, status int, fn func() (any, bool)) {
	requestID := GetRequestID(r.Context())
	user, _ := GetUser(r.Context())
	key := IdempotencyKey(r)

	if key != "" && keeper != nil {
		stored, found, err := keeper.Check(r.Context(), user.TenantID, user.UserID, endpoint, key, requestHash)
		if errors.Is(err, ErrIdempotencyConflict) {
			api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key was used with a different request", requestID)
			return
		}
		if err != nil {
			log.Printf("idempotency check failed: %v", err)
		}
		if found {
			w.Header().Set("Idempotent-Replayed", "true")
			api.WriteJSON(w, status, api.Envelope{Success: true, Data: stored, RequestID: requestID})
			return
		}
	}

	data, ok := fn()
	if !ok {
		return
	}
	if key != "" && keeper != nil {
		payload, err := json.Marshal(data)
		if err != nil {
			log.Printf("idempotency response marshal failed: %v", err)
		} else if err := keeper.Save(r.Context(), user.TenantID, user.UserID, endpoint, key, requestHash, payload); err != nil {
			log.Printf("idempotency save failed: %v", err)
		}
	}
	api.WriteJSON(w, status, api.Envelope{Success: true, Data: data, RequestID: requestID})
}
