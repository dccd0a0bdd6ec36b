package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetScale is the number of smallest crypto units (sats) per whole unit.
// Rates are quoted in base-currency cents per AssetScale sats.
const AssetScale = 100_000_000

// DaysPerYear is the divisor for annualized interest.
const DaysPerYear = 365

var (
	assetScaleDec  = decimal.NewFromInt(AssetScale)
	daysPerYearDec = decimal.NewFromInt(DaysPerYear)
	hundredDec     = decimal.NewFromInt(100)
)

// CollateralValue returns the base-currency value of collateral at the given
// sell rate, rounded down.
func CollateralValue(collateralSats, sellRate int64) int64 {
	return decimal.NewFromInt(collateralSats).
		Mul(decimal.NewFromInt(sellRate)).
		Div(assetScaleDec).
		Floor().
		IntPart()
}

// MaxBorrowable returns floor(collateral * rate * ltv / (100 * AssetScale)),
// the debt ceiling for a loan at the given loan-to-value ratio.
func MaxBorrowable(collateralSats, sellRate, ltvRatio int64) int64 {
	return decimal.NewFromInt(collateralSats).
		Mul(decimal.NewFromInt(sellRate)).
		Mul(decimal.NewFromInt(ltvRatio)).
		Div(hundredDec.Mul(assetScaleDec)).
		Floor().
		IntPart()
}

// LiquidationPrice returns the sell rate at which the collateral's value
// equals liquidationThreshold percent loan-to-value. Zero while there is no
// debt or no collateral.
func LiquidationPrice(borrowedCents, collateralSats int64, liquidationThreshold int64) int64 {
	if borrowedCents <= 0 || collateralSats <= 0 {
		return 0
	}

	threshold := decimal.NewFromInt(liquidationThreshold).Div(hundredDec)

	return decimal.NewFromInt(borrowedCents).
		Mul(assetScaleDec).
		Div(decimal.NewFromInt(collateralSats).Mul(threshold)).
		Floor().
		IntPart()
}

// CurrentLTV returns outstanding debt as a percentage of collateral value at
// the given sell rate. Returns zero when the loan carries no debt and the
// maximum representable ratio when debt exists against zero collateral.
func CurrentLTV(borrowedCents, collateralSats, sellRate int64) decimal.Decimal {
	if borrowedCents <= 0 {
		return decimal.Zero
	}

	value := decimal.NewFromInt(collateralSats).
		Mul(decimal.NewFromInt(sellRate)).
		Div(assetScaleDec)
	if value.IsZero() {
		return decimal.NewFromInt(100)
	}

	return decimal.NewFromInt(borrowedCents).Div(value).Mul(hundredDec)
}

// DailyInterest returns round(borrowed * rate / 365 / 100).
func DailyInterest(borrowedCents int64, annualRate decimal.Decimal) int64 {
	return decimal.NewFromInt(borrowedCents).
		Mul(annualRate).
		Div(daysPerYearDec).
		Div(hundredDec).
		Round(0).
		IntPart()
}

// InterestFor returns round(principal * rate/100 * days/365), the interest
// owed on a principal over a number of days.
func InterestFor(principalCents int64, annualRate decimal.Decimal, days int64) int64 {
	return decimal.NewFromInt(principalCents).
		Mul(annualRate).
		Div(hundredDec).
		Mul(decimal.NewFromInt(days)).
		Div(daysPerYearDec).
		Round(0).
		IntPart()
}

// LiquidationSaleValue returns the base-currency value of collateral that a
// partial liquidation must sell to bring the loan back to the target LTV.
// The sold collateral leaves the position along with the debt it clears, so
// the sale value solves (debt - s) / (value - s) = target:
//
//	s = (debt - target*value) / (1 - target)
//
// rounded up, so the post-sale LTV lands at or below the target. The result
// is capped at the full collateral value.
func LiquidationSaleValue(borrowedCents, collateralValueCents, targetThreshold int64) int64 {
	target := decimal.NewFromInt(targetThreshold).Div(hundredDec)

	excess := decimal.NewFromInt(borrowedCents).
		Sub(target.Mul(decimal.NewFromInt(collateralValueCents)))
	if !excess.IsPositive() {
		return 0
	}

	sale := excess.Div(decimal.NewFromInt(1).Sub(target)).Ceil().IntPart()
	if sale > collateralValueCents {
		return collateralValueCents
	}

	return sale
}

// CollateralToSell returns ceil(debt * AssetScale / rate), the smallest
// quantity of collateral whose sale covers the given debt. Rounding up means
// the sale never under-covers by quantization.
func CollateralToSell(debtCents, sellRate int64) int64 {
	if debtCents <= 0 {
		return 0
	}

	return decimal.NewFromInt(debtCents).
		Mul(assetScaleDec).
		Div(decimal.NewFromInt(sellRate)).
		Ceil().
		IntPart()
}

// SaleProceeds returns floor(sats * rate / AssetScale), the base currency
// actually obtained from selling collateral.
func SaleProceeds(collateralSats, sellRate int64) int64 {
	return decimal.NewFromInt(collateralSats).
		Mul(decimal.NewFromInt(sellRate)).
		Div(assetScaleDec).
		Floor().
		IntPart()
}

// DaysElapsed returns the number of whole days between from and to.
func DaysElapsed(from, to time.Time) int64 {
	if to.Before(from) {
		return 0
	}

	return int64(to.Sub(from) / (24 * time.Hour))
}
