package mock

import "net/http/httptest"

// HTTPTestServer runs Service on an httptest server.
type HTTPTestServer struct {
	*Service
	Server *httptest.Server
	// URL is the API base URL, e.g. http://127.0.0.1:port/api/
	URL string
}

// NewHTTPTestServer starts a server; callers must Close it.
func NewHTTPTestServer(opts ...Option) (*HTTPTestServer, error) {
	service, err := NewService(opts...)
	if err != nil {
		return nil, err
	}
	ret := &HTTPTestServer{Service: service}
	ret.Server = httptest.NewServer(service.Handler())
	ret.URL = ret.Server.URL + "/api/"
	return ret, nil
}

// Close stops the server.
func (s *HTTPTestServer) Close() {
	if s.Server != nil {
		s.Server.Close()
	}
	s.Server = nil
}
