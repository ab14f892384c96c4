package httpx

import "net/http"

// Client is satisfied by *http.Client and by FastHTTPClient.
type Client interface {
	Do(req *http.Request) (*http.Response, error)
}
