package llm

import "testing"

func TestStripCodeFence(t *testing.T) {
	cases := map[string]string{
		"{\"a\":1}":                     "{\"a\":1}",
		"```json\n{\"a\":1}\n```":       "{\"a\":1}",
		"```\n{\"a\":1}\n```":           "{\"a\":1}",
		"  ```json\n{\"a\":1}```  ":     "{\"a\":1}",
		"```json\n{\"cards\":[]}\n":     "{\"cards\":[]}",
		"plain text with ``` inside it": "plain text with ``` inside it",
		"```json {\n\"a\":1}\n```":      "{\n\"a\":1}",
		"```json{\"a\":1}```":           "{\"a\":1}",
		"```JSON\n[1,2]\n```":           "[1,2]",
	}
	for in, want := range cases {
		if got := StripCodeFence(in); got != want {
			t.Fatalf("StripCodeFence(%q) = %q, want %q", in, got, want)
		}
	}
}
