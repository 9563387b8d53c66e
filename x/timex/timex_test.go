package timex

import "testing"

func TestToDisplayHour(t *testing.T) {
	cases := []struct {
		h24  int
		h12  int
		want Meridiem
	}{
		{0, 12, AM},
		{1, 1, AM},
		{11, 11, AM},
		{12, 12, PM},
		{13, 1, PM},
		{21, 9, PM},
		{23, 11, PM},
	}
	for _, tc := range cases {
		h, m, err := ToDisplayHour(tc.h24)
		if err != nil {
			t.Fatalf("ToDisplayHour(%d): %v", tc.h24, err)
		}
		if h != tc.h12 || m != tc.want {
			t.Fatalf("ToDisplayHour(%d) = (%d,%s), want (%d,%s)", tc.h24, h, m, tc.h12, tc.want)
		}
	}
}

func TestDisplayHourRoundTrip(t *testing.T) {
	for h24 := 0; h24 < 24; h24++ {
		h12, m, err := ToDisplayHour(h24)
		if err != nil {
			t.Fatal(err)
		}
		if h12 < 1 || h12 > 12 {
			t.Fatalf("hour %d displayed as %d", h24, h12)
		}
		back, err := FromDisplayHour(h12, m)
		if err != nil || back != h24 {
			t.Fatalf("round trip %d -> (%d,%s) -> %d (%v)", h24, h12, m, back, err)
		}
	}
}

func TestDisplayHourRejects(t *testing.T) {
	for _, h := range []int{-1, 24, 99} {
		if _, _, err := ToDisplayHour(h); err != ErrHour {
			t.Fatalf("ToDisplayHour(%d) err = %v", h, err)
		}
	}
	if _, err := FromDisplayHour(0, AM); err != ErrHour {
		t.Fatal("FromDisplayHour(0) accepted")
	}
	if _, err := FromDisplayHour(5, "XM"); err != ErrHour {
		t.Fatal("FromDisplayHour bad meridiem accepted")
	}
}

func TestAppendDateClock(t *testing.T) {
	if got := string(AppendDate(nil, 24, 6, 15)); got != "24-06-15" {
		t.Fatalf("AppendDate = %q", got)
	}
	got, err := AppendClock12([]byte("time: "), 21, 30, 45)
	if err != nil || string(got) != "time: 09:30:45 PM" {
		t.Fatalf("AppendClock12 = %q, %v", got, err)
	}
	got, _ = AppendClock12(nil, 0, 5, 9)
	if string(got) != "12:05:09 AM" {
		t.Fatalf("midnight = %q", got)
	}
	if _, err := AppendClock12(nil, 24, 0, 0); err != ErrHour {
		t.Fatalf("hour 24 err = %v", err)
	}
}
