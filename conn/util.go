package conn

import (
	"context"
	"net/url"
)

func ctxOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func parseProxyURL(raw string) (*url.URL, error) {
	return url.Parse(raw)
}
