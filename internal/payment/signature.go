package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// VerifySignature checks a webhook x-signature header of the form
// "ts=<ts>,v1=<hex>" against HMAC-SHA256 of the manifest
// "id:<dataID>;request-id:<requestID>;ts:<ts>;".
func VerifySignature(secret, header, requestID, dataID string) bool {
	var ts, v1 string
	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch key {
		case "ts":
			ts = value
		case "v1":
			v1 = value
		}
	}
	if ts == "" || v1 == "" {
		return false
	}

	expected, err := hex.DecodeString(v1)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(Manifest(requestID, dataID, ts)))
	return hmac.Equal(mac.Sum(nil), expected)
}

// Manifest builds the signed string. Mercado Pago lower-cases alphanumeric ids.
func Manifest(requestID, dataID, ts string) string {
	var b strings.Builder
	if dataID != "" {
		b.WriteString("id:" + strings.ToLower(dataID) + ";")
	}
	if requestID != "" {
		b.WriteString("request-id:" + requestID + ";")
	}
	b.WriteString("ts:" + ts + ";")
	return b.String()
}

// Sign returns the x-signature header value for the given parts.
func Sign(secret, requestID, dataID, ts string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(Manifest(requestID, dataID, ts)))
	return "ts=" + ts + ",v1=" + hex.EncodeToString(mac.Sum(nil))
}
