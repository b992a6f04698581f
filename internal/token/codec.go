// Package token obfuscates internal subject identifiers for use in
// public URLs.
//
// The scheme is a keyed XOR transform plus URL-safe base64. It is a
// deterrent against casual enumeration of tribute-page URLs, NOT a
// security boundary: it is not cryptographic, and authorization is
// always re-checked by the access layer after decoding.
package token

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidToken is returned for any token not produced by Encode.
var ErrInvalidToken = errors.New("invalid subject token")

// Subject keys are UUIDs or short account slugs. Anything a decode
// produces outside this shape is treated as garbage.
var subjectKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{5,64}$`)

// Codec performs reversible subject-key obfuscation with a fixed key.
type Codec struct {
	key []byte
}

// NewCodec creates a Codec. The key only needs to be stable, not secret
// in the cryptographic sense, but an empty key is rejected so that a
// missing configuration value fails at startup rather than producing
// unobfuscated tokens.
func NewCodec(key string) (*Codec, error) {
	if key == "" {
		return nil, fmt.Errorf("token key must not be empty")
	}
	return &Codec{key: []byte(key)}, nil
}

// Encode maps a subject key to its opaque URL-safe token. The mapping is
// deterministic: the same subject always yields the same token.
func (c *Codec) Encode(subjectKey string) string {
	return base64.RawURLEncoding.EncodeToString(c.xor([]byte(subjectKey)))
}

// Decode reverses Encode. It fails closed: a token with a bad alphabet,
// bad padding, or one that decodes to an implausible identifier returns
// ErrInvalidToken, never a corrupted-but-accepted subject key.
func (c *Codec) Decode(tok string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil {
		return "", ErrInvalidToken
	}

	subjectKey := string(c.xor(raw))
	if !subjectKeyPattern.MatchString(subjectKey) {
		return "", ErrInvalidToken
	}

	return subjectKey, nil
}

// TributePath returns the public URL path for a subject's tribute page.
func (c *Codec) TributePath(subjectKey string) string {
	return "/ranking/tribute/" + c.Encode(subjectKey)
}

func (c *Codec) xor(in []byte) []byte {
	out := make([]byte, len(in))
	for i, b := range in {
		out[i] = b ^ c.key[i%len(c.key)]
	}
	return out
}
