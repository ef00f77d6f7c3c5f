package minecraft

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCanonicalName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/notch":
			w.Write([]byte(`{"id":"069a79f444e94726a5befca90e38aaf5","name":"Notch"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := &MojangClient{BaseURL: srv.URL + "/", HTTP: srv.Client()}

	got, err := c.CanonicalName(context.Background(), "NOTCH")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Notch" {
		t.Errorf("name = %q, want Notch", got)
	}

	if _, err := c.CanonicalName(context.Background(), "nobody"); !errors.Is(err, ErrUnknownPlayer) {
		t.Errorf("err = %v, want ErrUnknownPlayer", err)
	}
}

func TestStatusLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"online":true,"motd":{"clean":["  Greener Pastures  "]},"version":"1.20.4"}`))
	}))
	defer srv.Close()

	c := &StatusClient{BaseURL: srv.URL + "/", HTTP: srv.Client()}
	st, err := c.Lookup(context.Background(), "mc.example.org")
	if err != nil {
		t.Fatal(err)
	}
	if !st.Online || st.MOTD != "Greener Pastures" || st.Version != "1.20.4" {
		t.Errorf("status = %+v", st)
	}
}

type fakeExecutor map[string]string

func (f fakeExecutor) Execute(_ context.Context, cmd string) (string, error) {
	out, ok := f[cmd]
	if !ok {
		return "", ErrUnreachable
	}
	return out, nil
}

func TestWhitelistAddFlow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"x","name":"Alex"}`))
	}))
	defer srv.Close()

	ex := fakeExecutor{"whitelist add Alex": "Added Alex to the whitelist"}
	mj := &MojangClient{BaseURL: srv.URL + "/", HTTP: srv.Client()}

	name, err := WhitelistAdd(context.Background(), ex, mj, "alex")
	if err != nil {
		t.Fatal(err)
	}
	if name != "Alex" {
		t.Errorf("name = %q", name)
	}
}
