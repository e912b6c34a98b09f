package domain

// IncomeCategory is a closed set. Distribution workers are selected from a
// dispatch table keyed by category, one worker per settleable category.
type IncomeCategory string

const (
	CategoryLevel     IncomeCategory = "LEVEL"
	CategoryFasttrack IncomeCategory = "FASTTRACK"
	CategoryClub      IncomeCategory = "CLUB"
	CategoryPool      IncomeCategory = "POOL"
	// Lifecycle categories: paid by the investment processors directly,
	// never through a distribution worker.
	CategoryReferral IncomeCategory = "REFERRAL"
	CategoryInterest IncomeCategory = "INTEREST"
	CategoryPayout   IncomeCategory = "PAYOUT"
)

func (c IncomeCategory) Valid() bool {
	switch c {
	case CategoryLevel, CategoryFasttrack, CategoryClub, CategoryPool,
		CategoryReferral, CategoryInterest, CategoryPayout:
		return true
	}
	return false
}

// WalletCategory names one balance bucket of a participant.
type WalletCategory string

const (
	WalletMain       WalletCategory = "MAIN"
	WalletCommission WalletCategory = "COMMISSION"
	WalletFasttrack  WalletCategory = "FASTTRACK"
	WalletClub       WalletCategory = "CLUB"
	WalletPool       WalletCategory = "POOL"
)

// WalletFor maps an income category to the wallet bucket it settles into.
func WalletFor(c IncomeCategory) WalletCategory {
	switch c {
	case CategoryLevel:
		return WalletCommission
	case CategoryFasttrack:
		return WalletFasttrack
	case CategoryClub:
		return WalletClub
	case CategoryPool:
		return WalletPool
	default:
		return WalletMain
	}
}
