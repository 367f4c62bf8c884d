package domain

import "github.com/shopspring/decimal"

// FeeRole selects which side of a transaction the fees are computed for.
type FeeRole string

const (
	// FeeRolePayer adds platform and gateway fees on top of the gross amount.
	FeeRolePayer FeeRole = "payer"
	// FeeRolePayee deducts the platform fee from the gross amount.
	FeeRolePayee FeeRole = "payee"
)

var (
	PlatformFeeRate = decimal.NewFromFloat(0.05)
	GatewayFeeRate  = decimal.NewFromFloat(0.01)
)

// FeeBreakdown is the result of a fee calculation. All amounts are in the smallest currency unit.
type FeeBreakdown struct {
	Gross       int64 `json:"gross"`
	PlatformFee int64 `json:"platform_fee"`
	GatewayFee  int64 `json:"gateway_fee"`
	// Total is what the payer is charged.
	Total int64 `json:"total"`
	// Net is what the payee receives.
	Net int64 `json:"net"`
}

// CalculateFees computes fees for a gross amount.
//
// For the payer, total = gross + platform fee + gateway fee and net = gross.
// For the payee, net = gross - platform fee and no gateway fee applies.
func CalculateFees(gross int64, role FeeRole) (FeeBreakdown, error) {
	if gross < 0 {
		return FeeBreakdown{}, NewValidationError("gross amount cannot be negative: %d", gross)
	}

	platformFee := percentOf(gross, PlatformFeeRate)

	switch role {
	case FeeRolePayer:
		gatewayFee := percentOf(gross, GatewayFeeRate)
		return FeeBreakdown{
			Gross:       gross,
			PlatformFee: platformFee,
			GatewayFee:  gatewayFee,
			Total:       gross + platformFee + gatewayFee,
			Net:         gross,
		}, nil
	case FeeRolePayee:
		return FeeBreakdown{
			Gross:       gross,
			PlatformFee: platformFee,
			Total:       gross,
			Net:         gross - platformFee,
		}, nil
	default:
		return FeeBreakdown{}, NewValidationError("unknown fee role %q", role)
	}
}

func percentOf(amount int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(amount).Mul(rate).Round(0).IntPart()
}
