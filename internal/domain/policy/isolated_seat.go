package policy

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/ticket"
)

// AvoidIsolatedSeat は予約後に隣が両方埋まった空席が残らないことを要求する
// 対象は予約チケットが含まれる区画の全座席。区画の端の座席は片側だけを確認する
func AvoidIsolatedSeat() Validator {
	return ValidatorFunc(func(ctx context.Context, in Input) error {
		if in.Seats == nil {
			return errors.New("座席状況の読み取り手段が設定されていません")
		}

		sectorIDs := ticket.SectorIDs(in.Tickets)
		sort.Slice(sectorIDs, func(i, j int) bool { return sectorIDs[i] < sectorIDs[j] })

		states, err := in.Seats.LoadSeatStates(ctx, in.Event.ID, sectorIDs)
		if err != nil {
			return fmt.Errorf("座席状況の取得に失敗: %w", err)
		}

		requested := make(map[int64]struct{}, len(in.Tickets))
		for _, t := range in.Tickets {
			requested[t.SeatID] = struct{}{}
		}

		bySector := make(map[int64][]*ticket.SeatState, len(sectorIDs))
		for _, s := range states {
			bySector[s.SectorID] = append(bySector[s.SectorID], s)
		}

		for _, sectorID := range sectorIDs {
			if seatID, ok := findIsolatedSeat(bySector[sectorID], requested); ok {
				return &ViolationError{Kind: KindIsolatedSeat, SeatID: seatID}
			}
		}
		return nil
	})
}

// findIsolatedSeat は両隣とも空いていない空席を座席番号順に探す
func findIsolatedSeat(seats []*ticket.SeatState, requested map[int64]struct{}) (int64, bool) {
	sorted := make([]*ticket.SeatState, len(seats))
	copy(sorted, seats)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].SeatNumber < sorted[j].SeatNumber })

	available := func(i int) bool {
		s := sorted[i]
		_, taken := requested[s.SeatID]
		return !taken && !s.Reserved
	}

	for i := range sorted {
		if !available(i) {
			continue
		}
		left := i > 0 && available(i-1)
		right := i < len(sorted)-1 && available(i+1)
		if !left && !right {
			return sorted[i].SeatID, true
		}
	}
	return 0, false
}
