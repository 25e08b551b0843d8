package model

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// JoinPath encodes a token hop sequence for storage.
func JoinPath(path []common.Address) string {
	parts := make([]string, len(path))
	for i, hop := range path {
		parts[i] = hop.Hex()
	}
	return strings.Join(parts, ",")
}

// SplitPath decodes a stored token hop sequence.
func SplitPath(s string) []common.Address {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	path := make([]common.Address, len(parts))
	for i, part := range parts {
		path[i] = common.HexToAddress(part)
	}
	return path
}
