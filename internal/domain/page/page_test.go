package page_test

import (
	"reflect"
	"testing"

	"github.com/geocoder89/libraryhub/internal/domain/page"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name         string
		rawPage      string
		rawLimit     string
		want         page.Request
		wantProblems int
	}{
		{"defaults", "", "", page.Request{Page: 1, Limit: 10}, 0},
		{"explicit", "2", "5", page.Request{Page: 2, Limit: 5}, 0},
		{"clamp_low", "0", "0", page.Request{Page: 1, Limit: 1}, 0},
		{"clamp_negative", "-4", "-1", page.Request{Page: 1, Limit: 1}, 0},
		{"clamp_high_limit", "1", "5000", page.Request{Page: 1, Limit: 100}, 0},
		{"clamp_huge_page", "9223372036854775807", "100", page.Request{Page: page.MaxPage, Limit: 100}, 0},
		{"garbage", "two", "many", page.Request{Page: 1, Limit: 10}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, problems := page.Parse(tt.rawPage, tt.rawLimit)
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
			if len(problems) != tt.wantProblems {
				t.Fatalf("got problems %v, want %d", problems, tt.wantProblems)
			}
		})
	}
}

func TestSlice(t *testing.T) {
	items := make([]int, 12)
	for i := range items {
		items[i] = i + 1
	}

	got := page.Slice(items, page.Request{Page: 2, Limit: 5})
	if !reflect.DeepEqual(got, []int{6, 7, 8, 9, 10}) {
		t.Fatalf("page 2: got %v", got)
	}

	got = page.Slice(items, page.Request{Page: 3, Limit: 5})
	if !reflect.DeepEqual(got, []int{11, 12}) {
		t.Fatalf("page 3: got %v", got)
	}

	got = page.Slice(items, page.Request{Page: 9, Limit: 5})
	if got == nil || len(got) != 0 {
		t.Fatalf("page beyond the end should be an empty, non-nil slice, got %#v", got)
	}

	huge, _ := page.Parse("9223372036854775807", "100")
	if huge.Offset() < 0 {
		t.Fatalf("offset overflowed: %d", huge.Offset())
	}
	got = page.Slice(items, huge)
	if got == nil || len(got) != 0 {
		t.Fatalf("huge page should be empty, got %#v", got)
	}
}
