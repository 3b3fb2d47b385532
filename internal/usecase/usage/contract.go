package usage

// DailyBudget exposes the current UTC day's token counters.
type DailyBudget interface {
	DailyLimit() int64
	DailyUsed() int64
	RemainingDaily() int64
}

// MonthlyBudget exposes the current UTC month's token counters.
type MonthlyBudget interface {
	MonthlyLimit() int64
	MonthlyUsed() int64
	RemainingMonthly() int64
}

// BudgetReader is read-only access to a tagging token budget
// (tagging.BudgetTracker).
type BudgetReader interface {
	DailyBudget
	MonthlyBudget
}
