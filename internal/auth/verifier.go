package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kuyajp123/Rescuenect-sub003/internal/store"
)

const (
	RoleResident = "resident"
	RoleAdmin    = "admin"

	tokenKeyPrefix = "auth:token:"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is the verified subject attached to a request. The core trusts
// this identity and performs no credential logic of its own.
type Identity struct {
	UID  string `json:"uid"`
	Role string `json:"role"`
}

// Verifier resolves a bearer credential to a verified identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// KVVerifier checks bearer tokens against the session KV store
// (token -> identity JSON, written by the external login path).
type KVVerifier struct {
	kv store.KV
}

func NewKVVerifier(kv store.KV) *KVVerifier {
	return &KVVerifier{kv: kv}
}

var _ Verifier = (*KVVerifier)(nil)

func (v *KVVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	raw, err := v.kv.Get(ctx, tokenKeyPrefix+token)
	if err != nil {
		if errors.Is(err, store.ErrMiss) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("verify token: %w", err)
	}
	id := &Identity{}
	if err := json.Unmarshal([]byte(raw), id); err != nil {
		return nil, ErrInvalidToken
	}
	if id.UID == "" {
		return nil, ErrInvalidToken
	}
	if id.Role == "" {
		id.Role = RoleResident
	}
	return id, nil
}

// IssueToken writes a session token for the identity. Used by provisioning
// tooling and tests; the production login path lives outside this service.
func IssueToken(ctx context.Context, kv store.KV, token string, id Identity, ttl time.Duration) error {
	raw, err := json.Marshal(id)
	if err != nil {
		return err
	}
	return kv.Set(ctx, tokenKeyPrefix+token, string(raw), ttl)
}

// StaticVerifier is a fixed token table for tests and local runs without
// Redis.
type StaticVerifier struct {
	mu     sync.RWMutex
	tokens map[string]Identity
}

func NewStaticVerifier() *StaticVerifier {
	return &StaticVerifier{tokens: map[string]Identity{}}
}

var _ Verifier = (*StaticVerifier)(nil)

func (v *StaticVerifier) Add(token string, id Identity) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tokens[token] = id
}

func (v *StaticVerifier) Verify(_ context.Context, token string) (*Identity, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	id, ok := v.tokens[token]
	if !ok {
		return nil, ErrInvalidToken
	}
	cp := id
	return &cp, nil
}
