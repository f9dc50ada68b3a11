// Package credentials resolves cloud access credentials for a scan. An
// account's vault material is either a long-lived key pair or an
// assumable-role descriptor; the variant is decided once per scan from the
// shape of the role reference, not re-inspected throughout the collector.
package credentials

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNoUsableCredentials is returned when vault material contains neither
// a usable key pair nor a usable role descriptor. This is fatal to a scan.
var ErrNoUsableCredentials = errors.New("credentials: no usable key pair or role descriptor")

// Material is the raw credential material supplied by the vault for one
// account. Exactly one of the two variants is expected to be populated.
type Material struct {
	AccessKeyID string `json:"access_key_id,omitempty"`
	SecretKey   string `json:"secret_key,omitempty"`
	RoleRef     string `json:"role_ref,omitempty"`
	ExternalID  string `json:"external_id,omitempty"`
}

// Kind tags the resolved credential variant
type Kind string

const (
	KindKeyPair Kind = "key_pair"
	KindSession Kind = "session"
)

// Resolved is the tagged union handed to the collector: either a static
// key pair or a short-lived session from a token exchange.
type Resolved struct {
	Kind         Kind
	AccessKeyID  string
	SecretKey    string
	SessionToken string
	ExpiresAt    time.Time
}

// Session is the product of a token-exchange call
type Session struct {
	AccessKeyID  string    `json:"access_key_id"`
	SecretKey    string    `json:"secret_key"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// TokenExchanger exchanges a role reference plus external-id secret for a
// short-lived session.
type TokenExchanger interface {
	Exchange(ctx context.Context, roleRef, externalID string) (*Session, error)
}

// IsRoleRef reports whether a role reference string has the shape of an
// assumable-role descriptor.
func IsRoleRef(ref string) bool {
	return strings.HasPrefix(ref, "arn:") && strings.Contains(ref, ":role/")
}

// Resolve turns vault material into usable credentials. Role material wins
// when both variants are present; a failed exchange is not papered over
// with the key pair, since role-only accounts would then scan with dead
// credentials.
func Resolve(ctx context.Context, m Material, exchanger TokenExchanger) (*Resolved, error) {
	if IsRoleRef(m.RoleRef) {
		if exchanger == nil {
			return nil, ErrNoUsableCredentials
		}
		sess, err := exchanger.Exchange(ctx, m.RoleRef, m.ExternalID)
		if err != nil {
			return nil, err
		}
		return &Resolved{
			Kind:         KindSession,
			AccessKeyID:  sess.AccessKeyID,
			SecretKey:    sess.SecretKey,
			SessionToken: sess.SessionToken,
			ExpiresAt:    sess.ExpiresAt,
		}, nil
	}

	if m.AccessKeyID != "" && m.SecretKey != "" {
		return &Resolved{
			Kind:        KindKeyPair,
			AccessKeyID: m.AccessKeyID,
			SecretKey:   m.SecretKey,
		}, nil
	}

	return nil, ErrNoUsableCredentials
}
