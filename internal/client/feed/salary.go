package feed

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// SalaryNotSpecified is shown when a posting has no usable salary bounds.
const SalaryNotSpecified = "Salary not specified"

var salaryPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatSalary renders a salary range for display. Bounds that are nil or
// not positive count as absent; amounts use en-US thousands grouping and at
// most three fraction digits.
//
//	(50000, 80000, "USD") -> "USD 50,000 - 80,000"
//	(50000, nil, "")      -> "50,000+"
//	(nil, 80000, "€")     -> "Up to € 80,000"
//	(nil, nil, "")        -> "Salary not specified"
func FormatSalary(minAmount, maxAmount *float64, currency string) string {
	hasMin := minAmount != nil && *minAmount > 0
	hasMax := maxAmount != nil && *maxAmount > 0

	prefix := ""
	if currency != "" {
		prefix = currency + " "
	}

	switch {
	case hasMin && hasMax:
		return prefix + grouped(*minAmount) + " - " + grouped(*maxAmount)
	case hasMin:
		return prefix + grouped(*minAmount) + "+"
	case hasMax:
		return "Up to " + prefix + grouped(*maxAmount)
	default:
		return SalaryNotSpecified
	}
}

func grouped(v float64) string {
	return salaryPrinter.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
}
