package intent

import "testing"

func TestIsCodeRequestMatchesKeywords(t *testing.T) {
	cases := []struct {
		message string
		want    bool
	}{
		{"implement a sort algorithm", true},
		{"please debug this for me", true},
		{"write a function that reverses a string", true},
		{"what's the weather like today", false},
		{"tell me about the French revolution", false},
		{"", false},
	}

	for _, tc := range cases {
		if got := IsCodeRequest(tc.message); got != tc.want {
			t.Errorf("IsCodeRequest(%q) = %v, want %v", tc.message, got, tc.want)
		}
	}
}

func TestIsCodeRequestCaseInsensitive(t *testing.T) {
	if IsCodeRequest("Write A function") != IsCodeRequest("write a FUNCTION") {
		t.Fatal("classification should not depend on letter case")
	}
	if !IsCodeRequest("Write A function") {
		t.Fatal("expected mixed-case keyword to match")
	}
}

func TestIsCodeRequestDeterministic(t *testing.T) {
	const msg = "How To Implement binary search"
	first := IsCodeRequest(msg)
	for i := 0; i < 10; i++ {
		if IsCodeRequest(msg) != first {
			t.Fatal("classification must be deterministic")
		}
	}
}
