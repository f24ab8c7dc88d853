package scoring

import (
	"math"

	pkgerrors "unify/pkg/errors"
)

// Weights are the per-factor weights of the match score. They must sum to
// exactly 1.0; a reconfiguration that violates this is a configuration
// error rejected at startup, not at scoring time.
type Weights struct {
	SSN     float64 `json:"ssn_match"`
	DOB     float64 `json:"dob_match"`
	Name    float64 `json:"name_similarity"`
	Address float64 `json:"address_match"`
	Phone   float64 `json:"phone_match"`
	Email   float64 `json:"email_match"`
}

// DefaultWeights returns the production weighting: SSN/TIN is the strongest
// signal, DOB next, then name and address, with phone and email as weak
// corroborators.
func DefaultWeights() Weights {
	return Weights{
		SSN:     0.40,
		DOB:     0.20,
		Name:    0.15,
		Address: 0.15,
		Phone:   0.05,
		Email:   0.05,
	}
}

const weightSumTolerance = 1e-9

// Validate rejects weight sets that do not sum to 1.0.
func (w Weights) Validate() error {
	sum := w.SSN + w.DOB + w.Name + w.Address + w.Phone + w.Email
	if math.Abs(sum-1.0) > weightSumTolerance {
		return pkgerrors.Newf(pkgerrors.CodeConfig, "scoring weights must sum to 1.0, got %v", sum)
	}
	return nil
}
