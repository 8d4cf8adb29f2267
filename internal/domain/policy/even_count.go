package policy

import "context"

// EvenCount はチケット枚数が偶数であることを要求する
func EvenCount() Validator {
	return ValidatorFunc(func(_ context.Context, in Input) error {
		if len(in.Tickets)%2 != 0 {
			return violation(KindEvenCount)
		}
		return nil
	})
}
