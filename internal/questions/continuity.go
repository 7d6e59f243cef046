package questions

import (
	"fmt"

	"github.com/dgallion1/pdfsuite/internal/document"
)

// DefaultCeiling bounds the largest question number a document may carry.
const DefaultCeiling = 10000

// Validator checks numbering continuity. The zero value uses DefaultCeiling.
type Validator struct {
	Ceiling int
}

// Validate reports which numbers in 1..max(found) are absent. An empty set
// is valid with MaxQuestion 0. A maximum above the ceiling fails with a
// SystemError wrapping document.ErrLimitExceeded.
func (v Validator) Validate(found Set) (document.ValidationResult, error) {
	ceiling := v.Ceiling
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}

	sorted := found.Sorted()
	result := document.ValidationResult{
		Valid:   true,
		Missing: []int{},
		Found:   sorted,
	}
	if len(sorted) == 0 {
		return result, nil
	}

	highest := sorted[len(sorted)-1]
	if highest > ceiling {
		return document.ValidationResult{}, document.SystemError("validate",
			fmt.Sprintf("question %d exceeds the ceiling of %d", highest, ceiling), document.ErrLimitExceeded)
	}
	result.MaxQuestion = highest
	if highest == 0 {
		return result, nil
	}

	for n := 1; n <= highest; n++ {
		if _, ok := found[n]; !ok {
			result.Missing = append(result.Missing, n)
		}
	}
	result.Valid = len(result.Missing) == 0
	return result, nil
}
