package vcardsrc

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"

	"github.com/bigfamingjia/ai-fortune-teller/internal/config"
)

// Fetcher retrieves a remote vCard stream.
type Fetcher interface {
	Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error)
}

// HTTPFetcher downloads address books over http or https.
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher uses config.HTTPTimeout for the whole exchange.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: config.HTTPTimeout}}
}

// Fetch returns the body of a vCard export, capped at
// config.MaxHTTPResponseSize. Credentials are sent only when given.
func (f *HTTPFetcher) Fetch(ctx context.Context, target, user, pass string) (io.ReadCloser, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}

	// Query strings of shared links often carry tokens.
	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompFetcher),
		slog.String(config.LogKeyURL, u.Scheme+"://"+u.Host+u.Path),
	)
	log.Debug(config.MsgFetchStarted)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	req.Header.Set(config.HeaderAccept, config.MimeVCardAccept)
	if user != "" || pass != "" {
		req.SetBasicAuth(user, pass)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrFetchNetwork, err)
	}
	if err := checkResponse(resp); err != nil {
		_ = resp.Body.Close()
		log.Warn(config.MsgFetchBadCode,
			slog.Int(config.LogKeyStatus, resp.StatusCode),
			slog.String(config.LogKeyMIME, resp.Header.Get(config.HeaderContentType)),
		)
		return nil, err
	}

	log.Info(config.MsgFetching,
		slog.Int64(config.LogKeyLength, resp.ContentLength),
		slog.String(config.LogKeyMIME, resp.Header.Get(config.HeaderContentType)),
	)
	return struct {
		io.Reader
		io.Closer
	}{io.LimitReader(resp.Body, config.MaxHTTPResponseSize), resp.Body}, nil
}

// checkResponse rejects error statuses and HTML pages. Servers that lost
// the session answer 200 with a login form, which would otherwise decode
// as an empty address book.
func checkResponse(resp *http.Response) error {
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: %d %s", config.ErrFetchStatus, resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	ct := resp.Header.Get(config.HeaderContentType)
	if ct == "" {
		return nil
	}
	media, _, err := mime.ParseMediaType(ct)
	if err == nil && media == config.MimeHTML {
		return fmt.Errorf("%s: %s", config.ErrFetchHTML, ct)
	}
	return nil
}
