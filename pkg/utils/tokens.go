package utils

import (
	"github.com/pkoukk/tiktoken-go"
)

// EstimateTokens approximates how many tokens a prompt will cost before
// it is sent, for budget logging.
func EstimateTokens(text string) (int, error) {
	tkm, err := tiktoken.EncodingForModel("gpt-4-0613")
	if err != nil {
		return 0, err
	}

	return len(tkm.Encode(text, nil, nil)), nil
}
