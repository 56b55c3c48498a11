package report

import (
	"reflect"
	"testing"
)

func TestParseListRoundTrip(t *testing.T) {
	lines := []string{"- أولى", "ثانية", "- third item"}
	got := ParseList(JoinList(lines))
	if !reflect.DeepEqual(got, lines) {
		t.Fatalf("round trip mismatch: got %q, want %q", got, lines)
	}
}

func TestParseListEmpty(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\n", " \n \n "} {
		got := ParseList(input)
		if got == nil {
			t.Fatalf("ParseList(%q) returned nil, want empty list", input)
		}
		if len(got) != 0 {
			t.Fatalf("ParseList(%q) = %q, want empty list", input, got)
		}
	}
}

func TestParseListTrimsAndDropsBlanks(t *testing.T) {
	got := ParseList("  first \n\n second\n   \nthird  ")
	want := []string{"first", "second", "third"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestParseListKeepsBulletPrefix(t *testing.T) {
	got := ParseList("- kept as stored")
	if len(got) != 1 || got[0] != "- kept as stored" {
		t.Fatalf("expected stored bullet prefix preserved, got %q", got)
	}
	if s := StripBullet(got[0]); s != "kept as stored" {
		t.Fatalf("StripBullet = %q", s)
	}
}

func TestStripBulletOnlyOnce(t *testing.T) {
	if s := StripBullet("- - nested"); s != "- nested" {
		t.Fatalf("expected a single prefix stripped, got %q", s)
	}
	if s := StripBullet("no prefix"); s != "no prefix" {
		t.Fatalf("expected unchanged item, got %q", s)
	}
}
