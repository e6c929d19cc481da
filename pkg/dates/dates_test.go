package dates

import "testing"

func TestRange_SingleDay(t *testing.T) {
	days, err := Range("2024-06-10", "2024-06-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 1 || days[0] != "2024-06-10" {
		t.Errorf("expected [2024-06-10], got %v", days)
	}
}

func TestRange_MultiDay(t *testing.T) {
	days, err := Range("2024-06-10", "2024-06-12")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"2024-06-10", "2024-06-11", "2024-06-12"}
	if len(days) != len(want) {
		t.Fatalf("expected %d days, got %d", len(want), len(days))
	}
	for i := range want {
		if days[i] != want[i] {
			t.Errorf("day %d: expected %s, got %s", i, want[i], days[i])
		}
	}
}

func TestRange_CrossesMonthBoundary(t *testing.T) {
	days, err := Range("2024-02-28", "2024-03-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 2024 is a leap year
	want := []string{"2024-02-28", "2024-02-29", "2024-03-01"}
	if len(days) != len(want) {
		t.Fatalf("expected %d days, got %d: %v", len(want), len(days), days)
	}
	for i := range want {
		if days[i] != want[i] {
			t.Errorf("day %d: expected %s, got %s", i, want[i], days[i])
		}
	}
}

func TestRange_StartAfterEnd(t *testing.T) {
	if _, err := Range("2024-06-12", "2024-06-10"); err == nil {
		t.Error("expected error for inverted range, got nil")
	}
}

func TestRange_MalformedDay(t *testing.T) {
	cases := []string{"2024-6-10", "10-06-2024", "2024-06-32", "", "not-a-date"}
	for _, c := range cases {
		if _, err := Range(c, "2024-06-10"); err == nil {
			t.Errorf("expected error for malformed day %q, got nil", c)
		}
	}
}

func TestAddDays(t *testing.T) {
	got, err := AddDays("2024-06-10", 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "2024-06-16" {
		t.Errorf("expected 2024-06-16, got %s", got)
	}

	got, err = AddDays("2024-12-31", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "2025-01-01" {
		t.Errorf("expected 2025-01-01, got %s", got)
	}
}

func TestDayCount(t *testing.T) {
	n, err := DayCount("2024-06-10", "2024-06-11")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2, got %d", n)
	}
}
