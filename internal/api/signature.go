package api

import (
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strings"
)

// SignParams computes the request signature for signed upload and delete
// operations.
//
// The string-to-sign is the non-empty parameters sorted by key and joined as
// "key=value" pairs with "&", with the API secret appended; the signature is
// the hex-encoded SHA-1 of that string. The file payload, api_key and
// signature parameters are never part of the string-to-sign.
func SignParams(params map[string]string, apiSecret string) string {
	toSign := StringToSign(params)

	sum := sha1.Sum([]byte(toSign + apiSecret))
	return hex.EncodeToString(sum[:])
}

// StringToSign returns the canonical parameter string covered by the
// signature. Exposed for tests and debugging output.
func StringToSign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v == "" {
			continue
		}
		switch k {
		case "file", "api_key", "signature", "resource_type", "cloud_name":
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	return strings.Join(pairs, "&")
}
