package calculator

import "github.com/mmynk/splitledger/internal/money"

// ValidationStatus classifies how well a split reconciles with its total.
type ValidationStatus string

const (
	// Valid means the shares sum to the total exactly.
	Valid ValidationStatus = "VALID"
	// ValidWithRounding means the shares are off by at most one minor unit per participant.
	ValidWithRounding ValidationStatus = "VALID_WITH_ROUNDING"
	// Unreconciled means user-entered values do not add up and no rounding
	// correction applies.
	Unreconciled ValidationStatus = "UNRECONCILED"
)

// Err returns ErrUnreconciled for Unreconciled and nil otherwise.
func (s ValidationStatus) Err() error {
	if s == Unreconciled {
		return ErrUnreconciled
	}
	return nil
}

// ValidateSplit checks a split result against the original total.
func ValidateSplit(result *SplitResult, total money.Amount) ValidationStatus {
	if result == nil || len(result.Shares) == 0 || !result.Reconciled {
		return Unreconciled
	}

	var (
		sum int64
		err error
	)
	for _, s := range result.Shares {
		if s.Amount.Currency != total.Currency {
			return Unreconciled
		}
		if sum, err = money.AddMinor(sum, s.Amount.Minor); err != nil {
			return Unreconciled
		}
	}

	drift, err := money.SubMinor(sum, total.Minor)
	if err != nil {
		return Unreconciled
	}
	n := int64(len(result.Shares))
	switch {
	case drift == 0:
		return Valid
	case drift >= -n && drift <= n:
		return ValidWithRounding
	default:
		return Unreconciled
	}
}
