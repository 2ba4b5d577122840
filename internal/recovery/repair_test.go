package recovery

import "testing"

func TestRepairEscapes(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"newline in string", "{\"a\":\"x\ny\"}", `{"a":"x\ny"}`},
		{"crlf in string", "{\"a\":\"x\r\ny\"}", `{"a":"x\ny"}`},
		{"newline outside string", "{\n\"a\": 1\n}", "{\n\"a\": 1\n}"},
		{"escaped quote stays open", "{\"a\":\"say \\\"hi\\\"\nnow\"}", `{"a":"say \"hi\"\nnow"}`},
		{"existing escapes untouched", `{"a":"tab\tand\\nslash\\"}`, `{"a":"tab\tand\\nslash\\"}`},
		{"multibyte", "{\"a\":\"手順\n確認\"}", `{"a":"手順\n確認"}`},
	}
	for _, tc := range cases {
		if got := RepairEscapes(tc.in); got != tc.want {
			t.Fatalf("%s: RepairEscapes(%q) = %q, want %q", tc.name, tc.in, got, tc.want)
		}
	}
}

func TestSummarizePayloadSnippet(t *testing.T) {
	if got := summarizePayloadSnippet("  "); got != "<empty>" {
		t.Fatalf("unexpected empty summary %q", got)
	}
	long := make([]rune, 200)
	for i := range long {
		long[i] = 'x'
	}
	got := summarizePayloadSnippet(string(long))
	if len([]rune(got)) != 163 {
		t.Fatalf("expected truncated summary, got %d runes", len([]rune(got)))
	}
}
