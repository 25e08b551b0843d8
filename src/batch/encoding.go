package batch

import (
	"encoding/hex"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
)

// SwapSelector derives a 4-byte call selector from a signature string,
// e.g. "swapExactTokensForTokens(uint256,uint256,address[],address,uint256)".
func SwapSelector(signature string) []byte {
	return crypto.Keccak256([]byte(signature))[:4]
}

// ParseSelector accepts a selector either as 0x-prefixed hex or as a full
// signature string.
func ParseSelector(s string) []byte {
	if strings.HasPrefix(s, "0x") {
		raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
		if err == nil && len(raw) == 4 {
			return raw
		}
	}
	return SwapSelector(s)
}

// EncodeSwapPayload packs a swap invocation: selector, amountIn,
// minAmountOut, path, recipient and deadline, each argument in a 32-byte
// slot, path hops appended in order. The executor forwards the payload
// verbatim to the venue router.
func EncodeSwapPayload(selector []byte, amountIn, minAmountOut *big.Int, path []common.Address, recipient common.Address, deadline time.Time) []byte {
	payload := make([]byte, 0, 4+32*(4+len(path)))
	payload = append(payload, selector...)
	payload = append(payload, math.U256Bytes(new(big.Int).Set(amountIn))...)
	payload = append(payload, math.U256Bytes(new(big.Int).Set(minAmountOut))...)
	payload = append(payload, common.LeftPadBytes(recipient.Bytes(), 32)...)
	payload = append(payload, math.U256Bytes(big.NewInt(deadline.Unix()))...)
	for _, hop := range path {
		payload = append(payload, common.LeftPadBytes(hop.Bytes(), 32)...)
	}
	return payload
}
