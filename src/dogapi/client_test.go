package dogapi

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const twoBreeds = `[
  {"id": 1, "name": "Affenpinscher", "height": {"imperial": "9 - 11.5", "metric": "23 - 29"},
   "weight": {"imperial": "6 - 13", "metric": "3 - 6"}, "life_span": "10 - 12 years",
   "reference_image_id": "BJa4kxc4X", "temperament": "Stubborn, Curious"},
  {"id": 2, "name": "Afghan Hound", "height": {"metric": "64 - 69"},
   "weight": {"metric": "23 - 27"}, "life_span": "10 - 13 years"}
]`

func TestFetchBreedsDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "secret" {
			t.Errorf("api key header missing: %q", r.Header.Get("x-api-key"))
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, twoBreeds)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	c.APIKey = "secret"
	breeds, err := c.FetchBreeds(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(breeds) != 2 {
		t.Fatalf("expected 2 breeds got %d", len(breeds))
	}
	b := breeds[0]
	if *b.ID != 1 || *b.Name != "Affenpinscher" || *b.Height.Metric != "23 - 29" || *b.LifeSpan != "10 - 12 years" || *b.ReferenceImageID != "BJa4kxc4X" {
		t.Fatalf("unexpected first breed: %+v", b)
	}
	if breeds[1].ReferenceImageID != nil {
		t.Fatalf("missing reference_image_id must decode as nil")
	}
}

func TestFetchBreedsErrorKinds(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
		want    error
	}{
		{"status 500", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			io.WriteString(w, "boom")
		}, ErrRetrieval},
		{"status 404", func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}, ErrRetrieval},
		{"not json", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "<html>maintenance</html>")
		}, ErrMalformedPayload},
		{"object instead of array", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"message":"nope"}`)
		}, ErrMalformedPayload},
		{"wrong field type", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `[{"id":"one"}]`)
		}, ErrMalformedPayload},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()
			_, err := New(srv.URL, time.Second).FetchBreeds(context.Background())
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v want %v", err, tc.want)
			}
		})
	}
}

func TestStatusErrorCarriesCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()
	_, err := New(srv.URL, time.Second).FetchBreeds(context.Background())
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StatusError, got %T %v", err, err)
	}
	if se.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status %d", se.StatusCode)
	}
}

func TestFetchBreedsConnectionFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	_, err = New("http://"+addr+"/v1/breeds", time.Second).FetchBreeds(context.Background())
	if !errors.Is(err, ErrConnection) {
		t.Fatalf("expected ErrConnection, got %v", err)
	}
}

func TestSmallTimeoutIsConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		io.WriteString(w, "[]")
	}))
	defer srv.Close()
	_, err := New(srv.URL, 50*time.Millisecond).FetchBreeds(context.Background())
	if !errors.Is(err, ErrConnection) {
		t.Fatalf("expected ErrConnection on timeout, got %v", err)
	}
}

func TestFetchImage(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G'}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()
	got, err := New("", time.Second).FetchImage(context.Background(), srv.URL+"/images/x.jpg")
	if err != nil {
		t.Fatalf("fetch image: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("unexpected bytes %v", got)
	}
}

func TestImageURL(t *testing.T) {
	if got := ImageURL("", "BJa4kxc4X"); got != "https://cdn2.thedogapi.com/images/BJa4kxc4X.jpg" {
		t.Fatalf("default template: %s", got)
	}
	if got := ImageURL("http://cdn.local/%s.jpg", "abc"); got != "http://cdn.local/abc.jpg" {
		t.Fatalf("custom template: %s", got)
	}
	if got := ImageURL("", "  "); got != "" {
		t.Fatalf("blank id must give empty url, got %q", got)
	}
}

func TestIsTransientNetErr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"unexpected EOF", io.ErrUnexpectedEOF, true},
		{"reset by peer", errors.New("read: connection reset by peer"), true},
		{"deadline", context.DeadlineExceeded, true},
		{"other", errors.New("permission denied"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isTransientNetErr(tc.err); got != tc.want {
				t.Fatalf("isTransientNetErr(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
