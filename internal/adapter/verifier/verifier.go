// Package verifier checks endorsement signatures by recovering the
// secp256k1 public key from an EIP-191 personal-sign digest and comparing
// the derived address against the claimed endorser.
package verifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

type EthVerifier struct{}

func NewEthVerifier() *EthVerifier { return &EthVerifier{} }

// Verify returns (false, nil) for a well-formed but wrong signature, and a
// non-nil error when the input is malformed and the check cannot complete.
func (v *EthVerifier) Verify(_ context.Context, signerID, message, signature string) (bool, error) {
	if !common.IsHexAddress(signerID) {
		return false, fmt.Errorf("signer %q is not a valid address", signerID)
	}

	sig, err := hexutil.Decode(signature)
	if err != nil {
		return false, fmt.Errorf("malformed signature: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return false, fmt.Errorf("signature must be %d bytes, got %d", crypto.SignatureLength, len(sig))
	}

	// personal_sign encodes the recovery id as 27/28
	recovery := make([]byte, crypto.SignatureLength)
	copy(recovery, sig)
	if recovery[crypto.RecoveryIDOffset] >= 27 {
		recovery[crypto.RecoveryIDOffset] -= 27
	}

	digest := personalDigest(message)
	pub, err := crypto.SigToPub(digest, recovery)
	if err != nil {
		return false, fmt.Errorf("recover public key: %w", err)
	}

	recovered := crypto.PubkeyToAddress(*pub)
	return strings.EqualFold(recovered.Hex(), signerID), nil
}

// personalDigest applies the EIP-191 prefix before hashing.
func personalDigest(message string) []byte {
	prefixed := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(message), message)
	return crypto.Keccak256([]byte(prefixed))
}
