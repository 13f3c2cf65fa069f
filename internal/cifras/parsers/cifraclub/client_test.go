package cifraclub

import (
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClient(t *testing.T) {
	t.Run("FetchPage", func(t *testing.T) {
		var userAgent string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userAgent = r.Header.Get("User-Agent")
			w.Write([]byte("<pre>C G</pre>"))
		}))
		defer server.Close()

		client := NewClient(ClientOptions{UserAgent: "cifras-test", RequestsPerSecond: 100})
		page, err := client.FetchPage(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("FetchPage failed: %v", err)
		}

		if page != "<pre>C G</pre>" {
			t.Errorf("unexpected body %q", page)
		}
		if userAgent != "cifras-test" {
			t.Errorf("expected user agent cifras-test, got %q", userAgent)
		}
	})

	t.Run("FetchPageGzip", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Encoding", "gzip")
			gz := gzip.NewWriter(w)
			gz.Write([]byte("<pre>Am F</pre>"))
			gz.Close()
		}))
		defer server.Close()

		page, err := NewClient(ClientOptions{RequestsPerSecond: 100}).FetchPage(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("FetchPage failed: %v", err)
		}
		if page != "<pre>Am F</pre>" {
			t.Errorf("unexpected body %q", page)
		}
	})

	t.Run("FetchPageStatusError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "gone", http.StatusNotFound)
		}))
		defer server.Close()

		_, err := NewClient(ClientOptions{RequestsPerSecond: 100}).FetchPage(context.Background(), server.URL)
		if !errors.Is(err, ErrFetchFailed) {
			t.Fatalf("expected ErrFetchFailed, got %v", err)
		}
		if !strings.Contains(err.Error(), "404") {
			t.Errorf("expected status code in error, got %v", err)
		}
	})

	t.Run("FetchPageCancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewClient(ClientOptions{}).FetchPage(ctx, "http://127.0.0.1:1/")
		if !errors.Is(err, ErrFetchFailed) {
			t.Errorf("expected ErrFetchFailed for a cancelled context, got %v", err)
		}
	})
}

type stubFetcher struct {
	page string
	err  error
}

func (s stubFetcher) FetchPage(ctx context.Context, pageURL string) (string, error) {
	return s.page, s.err
}

func TestParserExtractFromURL(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		parser := NewParser(stubFetcher{page: samplePage})
		result, err := parser.ExtractFromURL(context.Background(), "https://www.cifraclub.com.br/ministerio-ipiranga/ruja-o-leao/")
		if err != nil {
			t.Fatalf("ExtractFromURL failed: %v", err)
		}
		if !result.Success || result.Sheet == nil {
			t.Fatalf("expected a successful result, got %+v", result)
		}
		if result.FetchedAt.IsZero() {
			t.Error("expected FetchedAt to be set")
		}
	})

	t.Run("NoContentBlock", func(t *testing.T) {
		parser := NewParser(stubFetcher{page: "<html></html>"})
		result, err := parser.ExtractFromURL(context.Background(), "https://www.cifraclub.com.br/a/b/")
		if !errors.Is(err, ErrContentNotFound) {
			t.Fatalf("expected ErrContentNotFound, got %v", err)
		}
		if result.Success || result.Error == "" {
			t.Errorf("expected a failed result with an error message, got %+v", result)
		}
	})

	t.Run("FetchError", func(t *testing.T) {
		parser := NewParser(stubFetcher{err: ErrFetchFailed})
		result, err := parser.ExtractFromURL(context.Background(), "https://www.cifraclub.com.br/a/b/")
		if !errors.Is(err, ErrFetchFailed) {
			t.Fatalf("expected ErrFetchFailed, got %v", err)
		}
		if result.Success {
			t.Error("expected result to report failure")
		}
	})
}
