package points

import (
	"errors"
	"testing"
	"time"

	"github.com/dukerupert/chorewheel/internal/model"
)

func at(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func TestCreditAccumulatesWithinPeriod(t *testing.T) {
	var u model.User
	var err error

	now := at(2026, 1, 7, 10) // Wednesday
	for _, pts := range []int{5, 3, 2} {
		u, err = Credit(u, pts, now)
		if err != nil {
			t.Fatalf("credit: %v", err)
		}
	}

	if u.TotalPoints != 10 {
		t.Errorf("total = %d, want 10", u.TotalPoints)
	}
	if u.WeeklyPoints != 10 {
		t.Errorf("weekly = %d, want 10", u.WeeklyPoints)
	}
	if u.MonthlyPoints != 10 {
		t.Errorf("monthly = %d, want 10", u.MonthlyPoints)
	}
	if want := at(2026, 1, 5, 0); !u.WeekStart.Equal(want) {
		t.Errorf("week start = %v, want %v", u.WeekStart, want)
	}
	if want := at(2026, 1, 1, 0); !u.MonthStart.Equal(want) {
		t.Errorf("month start = %v, want %v", u.MonthStart, want)
	}
}

func TestCreditZeroIsNoOp(t *testing.T) {
	u := model.User{TotalPoints: 7, WeeklyPoints: 7, MonthlyPoints: 7}

	got, err := Credit(u, 0, at(2026, 1, 7, 10))
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if got.TotalPoints != 7 || got.WeeklyPoints != 7 || got.MonthlyPoints != 7 {
		t.Errorf("zero credit changed counters: %+v", got)
	}
	if !got.WeekStart.IsZero() {
		t.Errorf("zero credit moved week marker to %v", got.WeekStart)
	}
}

func TestCreditNegativeFails(t *testing.T) {
	u := model.User{TotalPoints: 7}

	got, err := Credit(u, -5, at(2026, 1, 7, 10))
	if !errors.Is(err, ErrInvalidPoints) {
		t.Fatalf("error = %v, want ErrInvalidPoints", err)
	}
	if got.TotalPoints != 7 {
		t.Errorf("failed credit changed total to %d", got.TotalPoints)
	}
}

func TestWeeklyResetAcrossBoundary(t *testing.T) {
	var u model.User
	var err error

	// Friday Jan 9, then Tuesday Jan 13. A Monday passed in between.
	u, err = Credit(u, 8, at(2026, 1, 9, 18))
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	u, err = Credit(u, 3, at(2026, 1, 13, 9))
	if err != nil {
		t.Fatalf("credit: %v", err)
	}

	if u.WeeklyPoints != 3 {
		t.Errorf("weekly = %d, want 3 (reset to second credit)", u.WeeklyPoints)
	}
	if u.TotalPoints != 11 {
		t.Errorf("total = %d, want 11 (rollover isolation)", u.TotalPoints)
	}
	if u.MonthlyPoints != 11 {
		t.Errorf("monthly = %d, want 11 (same month)", u.MonthlyPoints)
	}
	if want := at(2026, 1, 12, 0); !u.WeekStart.Equal(want) {
		t.Errorf("week start = %v, want %v", u.WeekStart, want)
	}
}

func TestMonthlyResetAcrossBoundary(t *testing.T) {
	var u model.User
	var err error

	u, err = Credit(u, 8, at(2026, 1, 28, 18)) // Wednesday
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	u, err = Credit(u, 4, at(2026, 2, 2, 9)) // Monday
	if err != nil {
		t.Fatalf("credit: %v", err)
	}

	if u.MonthlyPoints != 4 {
		t.Errorf("monthly = %d, want 4", u.MonthlyPoints)
	}
	if u.WeeklyPoints != 4 {
		t.Errorf("weekly = %d, want 4 (new week too)", u.WeeklyPoints)
	}
	if u.TotalPoints != 12 {
		t.Errorf("total = %d, want 12", u.TotalPoints)
	}
	if want := at(2026, 2, 1, 0); !u.MonthStart.Equal(want) {
		t.Errorf("month start = %v, want %v", u.MonthStart, want)
	}
}

func TestTotalIsSumOfCredits(t *testing.T) {
	var u model.User
	var err error

	credits := []struct {
		pts int
		at  time.Time
	}{
		{5, at(2025, 12, 29, 8)},
		{2, at(2026, 1, 2, 8)},
		{7, at(2026, 1, 15, 8)},
		{1, at(2026, 3, 1, 8)},
		{4, at(2026, 3, 2, 8)},
	}

	sum := 0
	for _, c := range credits {
		u, err = Credit(u, c.pts, c.at)
		if err != nil {
			t.Fatalf("credit: %v", err)
		}
		sum += c.pts
	}

	if u.TotalPoints != sum {
		t.Errorf("total = %d, want %d", u.TotalPoints, sum)
	}
}

func TestWeekStartMondayPolicy(t *testing.T) {
	tests := []struct {
		in   time.Time
		want time.Time
	}{
		{at(2026, 1, 5, 10), at(2026, 1, 5, 0)},  // Monday maps to itself
		{at(2026, 1, 8, 10), at(2026, 1, 5, 0)},  // Thursday
		{at(2026, 1, 11, 10), at(2026, 1, 5, 0)}, // Sunday belongs to the prior Monday
		{at(2026, 1, 12, 0), at(2026, 1, 12, 0)}, // next Monday midnight
	}

	for _, tt := range tests {
		if got := WeekStart(tt.in); !got.Equal(tt.want) {
			t.Errorf("WeekStart(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
