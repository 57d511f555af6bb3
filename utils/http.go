// utils/http.go
package utils

import (
	"net/http"
	"time"
)

// HTTPClient is the shared client for calls to external services. Its
// timeout is generous enough for background polling; clients on the request
// path can configure a shorter one of their own.
var HTTPClient = &http.Client{
	Timeout: 30 * time.Second,
}
