package bundle

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const passwordGenerationErrorTemplateConstant = "failed to generate password: %w"

// RandomPasswordGenerator produces hex-encoded passwords from the operating
// system's cryptographic random source.
type RandomPasswordGenerator struct{}

// Generate returns a random password of the requested character length.
func (generator RandomPasswordGenerator) Generate(passwordLength int) (string, error) {
	if passwordLength <= 0 {
		passwordLength = defaultPasswordLengthConstant
	}

	randomBytes := make([]byte, (passwordLength+1)/2)
	if _, readError := rand.Read(randomBytes); readError != nil {
		return "", fmt.Errorf(passwordGenerationErrorTemplateConstant, readError)
	}
	return hex.EncodeToString(randomBytes)[:passwordLength], nil
}
