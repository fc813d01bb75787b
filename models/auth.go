package models

import (
	"encoding/json"
	"fmt"
	"os"
)

// AuthBundle is the ad hoc bag of credentials the operator extracts from the
// browser. Everything is applied verbatim: headers onto the request, cookies
// into the jar, localStorage values promoted to a bearer header when they
// look like tokens. There is no expiry or validation logic.
type AuthBundle struct {
	Headers      map[string]string `json:"headers,omitempty"`
	Cookies      map[string]string `json:"cookies,omitempty"`
	LocalStorage map[string]string `json:"localStorage,omitempty"`
}

// LoadAuthBundle reads a JSON auth bundle file.
func LoadAuthBundle(path string) (AuthBundle, error) {
	var bundle AuthBundle
	data, err := os.ReadFile(path)
	if err != nil {
		return bundle, fmt.Errorf("failed to read auth bundle: %w", err)
	}
	if err := json.Unmarshal(data, &bundle); err != nil {
		return bundle, fmt.Errorf("failed to parse auth bundle: %w", err)
	}
	return bundle, nil
}

// Cookie is one row read from a browser's cookie store. Value is empty when
// the browser encrypts cookie values at rest; callers must tolerate that.
type Cookie struct {
	Name     string
	Value    string
	Host     string
	Path     string
	Expires  int64
	Secure   bool
	HTTPOnly bool
}
