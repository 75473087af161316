package endorsement

import "errors"

var (
	ErrNotFound          = errors.New("endorsement not found")
	ErrInvalidPercentage = errors.New("endorsement percentage must be between 10 and 30")
	// ErrInvalidEndorsement guards risk sharing on endorsements that never
	// passed signature validation.
	ErrInvalidEndorsement = errors.New("endorsement is not validated")
	// ErrAlreadyProcessed enforces at-most-once risk sharing per endorsement.
	ErrAlreadyProcessed = errors.New("risk sharing already applied for this endorsement")
	// ErrVerification marks an infrastructure failure of the signature
	// check, distinct from a validly-checked-but-wrong signature.
	ErrVerification = errors.New("signature verification failed")
)
