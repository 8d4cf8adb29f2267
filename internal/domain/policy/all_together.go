package policy

import "context"

// AllTogether は座席番号順に並んだチケットが同じ区画で番号が1ずつ連続していることを要求する
// 区画ごとに並べ直さず、全チケットをひとつの番号軸で判定する
func AllTogether() Validator {
	return ValidatorFunc(func(_ context.Context, in Input) error {
		for i := 1; i < len(in.Tickets); i++ {
			prev, cur := in.Tickets[i-1], in.Tickets[i]
			if cur.SectorID != prev.SectorID || cur.SeatNumber-prev.SeatNumber != 1 {
				return violation(KindAllTogether)
			}
		}
		return nil
	})
}
