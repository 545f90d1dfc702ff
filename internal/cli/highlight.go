package cli

import (
	"bytes"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

var (
	chromaStyle     = styles.Get("dracula")
	chromaFormatter = formatters.Get("terminal256")
)

func init() {
	if chromaStyle == nil {
		chromaStyle = styles.Fallback
	}
	if chromaFormatter == nil {
		chromaFormatter = formatters.Fallback
	}
}

// highlightJSON renders JSON with ANSI colors. On any failure the input is returned
// as-is.
func highlightJSON(input string) string {
	if input == "" {
		return input
	}
	lexer := lexers.Get("json")
	if lexer == nil {
		return input
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, input)
	if err != nil {
		return input
	}
	var buf bytes.Buffer
	if err := chromaFormatter.Format(&buf, chromaStyle, iterator); err != nil {
		return input
	}
	return buf.String()
}
