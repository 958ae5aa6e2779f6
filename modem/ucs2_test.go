package modem

import (
	"errors"
	"testing"
)

func TestEncodeUCS2(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"hi", "00680069"},
		{"Hello", "00480065006C006C006F"},
		{"中文", "4E2D6587"},
		{"😀", "D83DDE00"},
		{"a😀b", "0061D83DDE000062"},
	}
	for _, tt := range tests {
		if got := EncodeUCS2(tt.in); got != tt.want {
			t.Errorf("EncodeUCS2(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDecodeUCS2RoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"Hello world!",
		"Bienvenido a Digitel. Su saldo es Bs. 50.00.",
		"Ñandú · 日本語 · Привет",
		"emoji 😀🎉 and 𝄞 clef",
		"\x00\x01 control",
	}
	for _, in := range inputs {
		enc := EncodeUCS2(in)
		got, err := DecodeUCS2(enc)
		if err != nil {
			t.Fatalf("DecodeUCS2(%q) error: %v", enc, err)
		}
		if got != in {
			t.Errorf("round trip of %q gave %q", in, got)
		}
	}
}

func TestDecodeUCS2AcceptsLowercase(t *testing.T) {
	got, err := DecodeUCS2("d83dde00")
	if err != nil {
		t.Fatal(err)
	}
	if got != "😀" {
		t.Errorf("got %q", got)
	}
}

func TestDecodeUCS2Strict(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		offset int
	}{
		{"odd length", "006", 0},
		{"not multiple of four", "0068006", 4},
		{"non hex", "00G8", 2},
		{"plain text", "Hello world!", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeUCS2(tt.in)
			if !errors.Is(err, ErrMalformedUCS2) {
				t.Fatalf("expected ErrMalformedUCS2, got %v", err)
			}
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("expected *DecodeError, got %T", err)
			}
			if de.Offset != tt.offset {
				t.Errorf("offset = %d, want %d", de.Offset, tt.offset)
			}
		})
	}
}

func TestDecodeUCS2LoneSurrogate(t *testing.T) {
	got, err := DecodeUCS2("D83D0041")
	if err != nil {
		t.Fatal(err)
	}
	if got != "�A" {
		t.Errorf("got %q", got)
	}
}

func TestDecodeUCS2Loose(t *testing.T) {
	if got := DecodeUCS2Loose("00680069"); got != "hi" {
		t.Errorf("got %q", got)
	}
	if got := DecodeUCS2Loose("not encoded"); got != "not encoded" {
		t.Errorf("got %q", got)
	}
}

func TestLooksUCS2(t *testing.T) {
	tests := map[string]bool{
		"":             false,
		"00680069":     true,
		"Hello":        false,
		"+58412":       false,
		"CAFE":         true, // 已知的误判
		"0048006":      false,
		EncodeUCS2("😀"): true,
	}
	for in, want := range tests {
		if got := LooksUCS2(in); got != want {
			t.Errorf("LooksUCS2(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseEncoding(t *testing.T) {
	tests := []struct {
		in   string
		want Encoding
		ok   bool
	}{
		{"UNICODE", UCS2, true},
		{"ucs2", UCS2, true},
		{"PLAIN", Plain, true},
		{"GSM7_default", Plain, false},
		{"base64", Plain, false},
		{"", Plain, false},
	}
	for _, tt := range tests {
		if got, ok := ParseEncoding(tt.in); got != tt.want || ok != tt.ok {
			t.Errorf("ParseEncoding(%q) = %v %v, want %v %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
