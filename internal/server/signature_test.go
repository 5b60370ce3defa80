package server

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestValidateSignature(t *testing.T) {
	body := []byte(`{"events":[]}`)

	assert.True(t, ValidateSignature("secret", body, sign("secret", body)))
	assert.False(t, ValidateSignature("secret", body, sign("other", body)))
	assert.False(t, ValidateSignature("secret", body, "not-base64"))
	assert.False(t, ValidateSignature("secret", body, ""))
	assert.False(t, ValidateSignature("secret", []byte("tampered"), sign("secret", body)))
}
