package customHttpClient

import (
	"net/http"

	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/config"
)

var customTransport = &http.Transport{
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

// PooledClient is shared by the completion clients so per-chunk fan-out
// reuses connections instead of paying a handshake per call.
func PooledClient() *http.Client {
	return &http.Client{Transport: customTransport}
}
