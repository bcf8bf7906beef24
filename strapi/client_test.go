package strapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

type recordLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordLogger) Errorf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *recordLogger) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return strings.Join(l.lines, "\n")
}

type capturedRequest struct {
	rawQuery string
	auth     string
	hasAuth  bool
	path     string
}

func newCMS(t *testing.T, status int, body string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	got := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.rawQuery = r.URL.RawQuery
		got.path = r.URL.Path
		_, got.hasAuth = r.Header["Authorization"]
		got.auth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func TestClientArticleBySlug(t *testing.T) {
	srv, got := newCMS(t, http.StatusOK, `{"data":[`+nestedItem+`]}`)
	c := NewClient(NewConfig(srv.URL+"/", "secret"))

	a, err := c.Article(context.Background(), BySlug("my post"))
	if err != nil {
		t.Fatalf("Article: %v", err)
	}
	if a == nil || a.Slug != "whitening-basics" {
		t.Fatalf("Article = %+v", a)
	}
	if got.path != "/api/articles" {
		t.Errorf("path = %q", got.path)
	}
	if got.rawQuery != "populate=*&filters[slug][$eq]=my%20post" {
		t.Errorf("query = %q", got.rawQuery)
	}
	if got.auth != "Bearer secret" {
		t.Errorf("Authorization = %q", got.auth)
	}
	if a.Cover == nil || a.Cover.URL != srv.URL+"/uploads/cover.jpg" {
		t.Errorf("cover not resolved against base: %+v", a.Cover)
	}
}

func TestClientLatestWithoutToken(t *testing.T) {
	srv, got := newCMS(t, http.StatusOK, `{"data":[`+flatItem+`]}`)
	c := NewClient(NewConfig(srv.URL, ""))

	a, err := c.Article(context.Background(), Latest())
	if err != nil || a == nil {
		t.Fatalf("Article = %v, %v", a, err)
	}
	if got.rawQuery != "populate=*&sort=createdAt:desc&pagination[limit]=1" {
		t.Errorf("query = %q", got.rawQuery)
	}
	if got.hasAuth {
		t.Errorf("unexpected Authorization header %q", got.auth)
	}
}

func TestClientArticleEmptyData(t *testing.T) {
	for _, body := range []string{`{"data":[]}`, `{"data":null}`, `{}`} {
		srv, _ := newCMS(t, http.StatusOK, body)
		a, err := NewClient(NewConfig(srv.URL, "")).Article(context.Background(), BySlug("missing"))
		if err != nil {
			t.Errorf("%s: unexpected error %v", body, err)
		}
		if a != nil {
			t.Errorf("%s: Article = %+v, want nil", body, a)
		}
	}
}

func TestClientHTTPErrorIsLogged(t *testing.T) {
	srv, _ := newCMS(t, http.StatusInternalServerError, `{"error":{"message":"boom"}}`)
	logger := &recordLogger{}
	c := NewClient(NewConfig(srv.URL, ""), WithLogger(logger))

	_, err := c.Articles(context.Background())
	var he *HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("err = %v, want *HTTPError", err)
	}
	if he.StatusCode != http.StatusInternalServerError || !strings.Contains(he.Body, "boom") {
		t.Errorf("HTTPError = %+v", he)
	}
	logged := logger.String()
	if !strings.Contains(logged, "500") || !strings.Contains(logged, "boom") {
		t.Errorf("log = %q, want status and body", logged)
	}
}

func TestClientParseError(t *testing.T) {
	srv, _ := newCMS(t, http.StatusOK, `<html>not json`)
	_, err := NewClient(NewConfig(srv.URL, "")).Articles(context.Background())
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *ParseError", err)
	}
}

func TestClientNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	_, err := NewClient(NewConfig(base, "")).Article(context.Background(), Latest())
	var ne *NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("err = %v, want *NetworkError", err)
	}
}

func TestClientCancelledContext(t *testing.T) {
	srv, _ := newCMS(t, http.StatusOK, `{"data":[]}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(NewConfig(srv.URL, "")).Articles(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestClientArticlesList(t *testing.T) {
	srv, got := newCMS(t, http.StatusOK, `{"data":[`+flatItem+`,`+nestedItem+`,"junk"]}`)
	articles, err := NewClient(NewConfig(srv.URL, "")).Articles(context.Background())
	if err != nil {
		t.Fatalf("Articles: %v", err)
	}
	if got.rawQuery != "populate=*" {
		t.Errorf("query = %q", got.rawQuery)
	}
	if len(articles) != 2 {
		t.Fatalf("got %d articles, want 2", len(articles))
	}
	for _, a := range articles {
		if a.Title != "Whitening basics" {
			t.Errorf("Title = %q", a.Title)
		}
	}
}
