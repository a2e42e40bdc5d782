package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultNamespace prefixes every key unless configured otherwise.
const DefaultNamespace = "llm_server"

// Param is a named key segment. Params keep the order they are given in.
type Param struct {
	Name  string
	Value string
}

// Key derives the content-addressed cache key
//
//	<namespace>:<op>:<name1>:<value1>:...:request:<sha256 of body as JSON>
//
// encoding/json writes map keys sorted, so bodies that differ only in key order
// share a key.
func Key(namespace, op string, params []Param, body any) (string, error) {
	digest, err := Digest(body)
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, 2*len(params)+4)
	parts = append(parts, namespace, op)
	for _, p := range params {
		parts = append(parts, p.Name, p.Value)
	}
	parts = append(parts, "request", digest)
	return strings.Join(parts, ":"), nil
}

// Digest returns the hex SHA-256 of the canonical JSON form of body.
func Digest(body any) (string, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to encode request body: %w", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
