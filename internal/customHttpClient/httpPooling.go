package customHttpClient

import (
	"net/http"
	"sync"

	"github.com/nkodali/KBaseAPI/internal/config"
)

var once sync.Once
var pooledClient *http.Client

// GetPooledClient returns the shared connection-pooled HTTP client used
// for the embedding and generation providers, so repeated external calls
// reuse connections instead of paying handshake latency per request.
func GetPooledClient() *http.Client {
	once.Do(func() {
		pooledClient = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        config.MaxIdleConns,
				MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
				IdleConnTimeout:     config.IdleConnTimeout,
			},
		}
	})
	return pooledClient
}
