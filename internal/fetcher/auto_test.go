package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNeedsJavaScript(t *testing.T) {
	longText := strings.Repeat("server rendered words ", 10)

	tests := []struct {
		name string
		html string
		want bool
	}{
		{
			"react_empty_root",
			`<html><body><div id="root"></div></body></html>`,
			true,
		},
		{
			"react_whitespace_root",
			"<html><body><div id=\"root\">\n\t </div></body></html>",
			true,
		},
		{
			"vue_empty_app",
			`<html><body><div id="app"></div></body></html>`,
			true,
		},
		{
			"nextjs_empty_shell",
			`<html><body><div id="__next"></div></body></html>`,
			true,
		},
		{
			"react_root_with_content",
			`<html><body><div id="root"><p>` + longText + `</p></div></body></html>`,
			false,
		},
		{
			"loading_splash",
			`<html><body>Loading...</body></html>`,
			true,
		},
		{
			"please_wait_splash",
			`<html><body>Please wait</body></html>`,
			true,
		},
		{
			"noscript_nag",
			`<html><body>Short.<noscript>You need to enable JavaScript to run this app.</noscript></body></html>`,
			true,
		},
		{
			"server_rendered_page",
			`<html><body><p>` + longText + `</p></body></html>`,
			false,
		},
		{
			"short_static_page",
			`<html><body><p>Imprint and contact details.</p></body></html>`,
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := mustPage(t, tt.html)
			if got := needsJavaScript(page); got != tt.want {
				t.Errorf("needsJavaScript() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAutoFetcher_Fetch_StaticSufficient(t *testing.T) {
	longText := strings.Repeat("server rendered words ", 10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>Plain</title></head><body><p>` + longText + `</p></body></html>`))
	}))
	defer srv.Close()

	// No browser configured: the static result must suffice.
	f := &AutoFetcher{static: NewStaticFetcher(Config{})}

	page, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	defer page.Release()

	if page.Title() != "Plain" {
		t.Errorf("Title() = %q", page.Title())
	}
}

func TestAutoFetcher_Fetch_BadStatus_NoFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	// A nil browser proves the fallback is never taken for bad statuses.
	f := &AutoFetcher{static: NewStaticFetcher(Config{})}

	_, err := f.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error")
	}

	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %T", err)
	}

	if fe.Reason != ReasonBadStatus {
		t.Errorf("Reason = %q, want %q", fe.Reason, ReasonBadStatus)
	}
}

func TestAutoFetcher_Type(t *testing.T) {
	f := &AutoFetcher{}
	if f.Type() != "auto" {
		t.Errorf("Type() = %q, want auto", f.Type())
	}
}

func TestAutoFetcher_Close_NoBrowser(t *testing.T) {
	f := &AutoFetcher{static: NewStaticFetcher(Config{})}
	if err := f.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
