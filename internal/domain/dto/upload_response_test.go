package dto

import "testing"

func TestUploadResponse_OK(t *testing.T) {
	cases := []struct {
		status string
		want   bool
	}{
		{UploadStatusOK, true},
		{UploadStatusError, false},
		{"OK", false},
		{"", false},
	}
	for _, c := range cases {
		if got := (UploadResponse{Status: c.status}).OK(); got != c.want {
			t.Fatalf("status %q: OK()=%v want %v", c.status, got, c.want)
		}
	}
}
