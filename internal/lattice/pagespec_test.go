package lattice

import (
	"reflect"
	"testing"
)

func TestParsePages(t *testing.T) {
	tests := []struct {
		name      string
		spec      string
		pageCount int
		want      []int
		wantErr   bool
	}{
		{"all", "all", 3, []int{0, 1, 2}, false},
		{"all uppercase", "ALL", 2, []int{0, 1}, false},
		{"empty means all", "", 2, []int{0, 1}, false},
		{"single page", "2", 5, []int{1}, false},
		{"range", "2-4", 5, []int{1, 2, 3}, false},
		{"list", "2,4,9", 10, []int{1, 3, 8}, false},
		{"mixed", "1,3-4", 5, []int{0, 2, 3}, false},
		{"duplicates collapse", "2,2,2-3", 5, []int{1, 2}, false},
		{"spaces tolerated", " 2 , 4 ", 5, []int{1, 3}, false},
		{"zero pages all", "all", 0, []int{}, false},
		{"out of range", "7", 5, nil, true},
		{"range past end", "3-9", 5, nil, true},
		{"page zero", "0", 5, nil, true},
		{"descending range", "5-2", 5, nil, true},
		{"garbage", "abc", 5, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePages(tt.spec, tt.pageCount)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParsePages(%q, %d): expected error", tt.spec, tt.pageCount)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePages(%q, %d): %v", tt.spec, tt.pageCount, err)
			}
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParsePages(%q, %d) = %v, want %v", tt.spec, tt.pageCount, got, tt.want)
			}
		})
	}
}
