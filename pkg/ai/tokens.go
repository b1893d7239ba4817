package ai

import "github.com/pkoukk/tiktoken-go"

// TruncateToTokens bounds text to at most maxTokens tokens under the given
// encoding. On encoder failure it falls back to a character bound of four
// characters per token, which overshoots rarely and never by much.
func TruncateToTokens(text string, encoder string, maxTokens int) string {
	if maxTokens <= 0 || text == "" {
		return text
	}

	enc, err := tiktoken.GetEncoding(encoder)
	if err != nil {
		limit := maxTokens * 4
		if len(text) <= limit {
			return text
		}
		return text[:limit]
	}

	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	return enc.Decode(tokens[:maxTokens])
}
