package utils

import (
	"net/http"
	"time"
)

// HTTPClient is shared by everything that calls the donation platform.
var HTTPClient = &http.Client{
	Timeout: 30 * time.Second,
}
