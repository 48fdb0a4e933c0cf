package http

import "net/http"

type authTransport struct {
	header    string
	value     string
	transport http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqCopy := req.Clone(req.Context())

	if t.value != "" {
		reqCopy.Header.Set(t.header, t.value)
	}

	return t.transport.RoundTrip(reqCopy)
}

// WithAuthToken sends the token as a bearer Authorization header
func WithAuthToken(token string) HttpOpts {
	if token == "" {
		return WithHeaderAuth("Authorization", "")
	}
	return WithHeaderAuth("Authorization", "Bearer "+token)
}

// WithAPIKey sends the key in the api-key header used by Azure OpenAI
func WithAPIKey(key string) HttpOpts {
	return WithHeaderAuth("api-key", key)
}

func WithHeaderAuth(header, value string) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &authTransport{
			header:    header,
			value:     value,
			transport: rt,
		}
	})
}
