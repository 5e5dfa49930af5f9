package utils

import (
	"crypto/rand"
	"encoding/base32"
	"strings"
)

// referralCodePrefix marks codes issued to partners.
const referralCodePrefix = "PTR"

// GenerateReferralCode generates a referral code of the form PTR-XXXXXX where
// XXXXXX is 6 random alphanumeric characters. Uniqueness across partners is
// enforced by the backend when the code is persisted; callers must treat an
// existing code as final (code issuance is idempotent).
func GenerateReferralCode() (string, error) {
	// 4 random bytes give 6 usable characters in base32
	randomBytes := make([]byte, 4)
	_, err := rand.Read(randomBytes)
	if err != nil {
		return "", err
	}

	randomStr := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(randomBytes)
	randomStr = randomStr[:6]

	randomStr = strings.ToUpper(randomStr)
	randomStr = strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, randomStr)

	if len(randomStr) < 6 {
		randomStr = randomStr + strings.Repeat("0", 6-len(randomStr))
	}

	return referralCodePrefix + "-" + randomStr, nil
}
