package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix leaves room for an algorithm change.
const (
	DomainRules     = "sift/rules/v1"
	DomainStatement = "sift/statement/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator keeps the domain/data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// RulesID computes a content-addressed ID for raw filter and sort input.
// Inputs that differ only in key order or number spelling share an ID.
func RulesID(filter, sort any) (string, error) {
	f, err := Normalize(filter)
	if err != nil {
		return "", fmt.Errorf("RulesID: filter: %w", err)
	}
	s, err := Normalize(sort)
	if err != nil {
		return "", fmt.Errorf("RulesID: sort: %w", err)
	}
	canonical, err := MarshalCanonical(map[string]any{"filter": f, "sort": s})
	if err != nil {
		return "", fmt.Errorf("RulesID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRules, canonical), nil
}

// StatementID computes a content-addressed ID for a compiled statement.
// It is stable across runs, so callers can use it as a prepared-statement
// or result cache key.
func StatementID(dialect, sql string, params map[string]any) (string, error) {
	if params == nil {
		params = map[string]any{}
	}
	canonical, err := MarshalCanonical(map[string]any{
		"dialect": dialect,
		"sql":     sql,
		"params":  params,
	})
	if err != nil {
		return "", fmt.Errorf("StatementID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainStatement, canonical), nil
}
