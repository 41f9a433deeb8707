package llm

import (
	"regexp"
	"strings"
)

// cleanPass is one scrubbing step. The passes run strictly in order; each
// one is a plain (pattern, replacement) pair so the chain stays auditable.
type cleanPass struct {
	name string
	re   *regexp.Regexp
	repl string
}

var cleanPasses = []cleanPass{
	{"html tags", regexp.MustCompile(`<[^>]+>`), " "},
	{"signature delimiter", regexp.MustCompile(`(?s)--\s*\r?\n.*`), ""},
	{"closing salutation", regexp.MustCompile(`(?is)(best regards|regards|sincerely|thank you|thanks|cheers).*`), ""},
	{"quoted reply", regexp.MustCompile(`(?is)on .*wrote:.*`), ""},
	{"quote markers", regexp.MustCompile(`(?m)^[ \t]*>.*$`), ""},
	{"quoted headers", regexp.MustCompile(`(?is)from:.*sent:.*`), ""},
	{"footer boilerplate", regexp.MustCompile(`(?is)(unsubscribe|click here|view in browser).*`), ""},
	{"whitespace", regexp.MustCompile(`\s+`), " "},
}

// CleanText scrubs markup, signatures, quoted replies and footer
// boilerplate from raw email text. Pattern-based and best-effort: it will
// occasionally over- or under-strip. Truncation happens upstream.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	for _, pass := range cleanPasses {
		text = pass.re.ReplaceAllString(text, pass.repl)
	}
	return strings.TrimSpace(text)
}

var (
	snippetSenderRe = regexp.MustCompile(`^.*?:\s*`)
	snippetHeaderRe = regexp.MustCompile(`(?i)from.*?sent.*?:`)
)

// CleanSnippet strips the leading "Sender Name:" prefix and quoted-header
// fragments that Gmail snippets often carry.
func CleanSnippet(snippet string) string {
	if snippet == "" {
		return ""
	}
	snippet = snippetSenderRe.ReplaceAllString(snippet, "")
	snippet = snippetHeaderRe.ReplaceAllString(snippet, "")
	return strings.TrimSpace(snippet)
}
