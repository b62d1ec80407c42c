package cli

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/AlecAivazis/survey/v2"
)

var assetPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]*$`)

// ValidateAsset accepts CoinGecko ids and ticker symbols.
func ValidateAsset(val interface{}) error {
	str, ok := val.(string)
	if !ok {
		return fmt.Errorf("invalid input type")
	}
	str = strings.ToLower(strings.TrimSpace(str))
	if len(str) == 0 {
		return fmt.Errorf("asset cannot be empty")
	}
	if len(str) > 64 {
		return fmt.Errorf("asset too long (max 64 characters)")
	}
	if !assetPattern.MatchString(str) {
		return fmt.Errorf("invalid asset format (use letters, numbers, dots and hyphens only)")
	}
	return nil
}

// PromptForAsset prompts the user for a crypto id or symbol
func PromptForAsset() (string, error) {
	var asset string
	prompt := &survey.Input{
		Message: "Enter a crypto ID or symbol (e.g., 'bitcoin' or 'btc'):",
		Help:    "Common symbols (btc, eth, sol, doge) are mapped to CoinGecko ids; anything else is used as the id directly.",
	}

	if err := survey.AskOne(prompt, &asset, survey.WithValidator(ValidateAsset)); err != nil {
		return "", err
	}
	return strings.TrimSpace(asset), nil
}
