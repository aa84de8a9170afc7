package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const releasesJSON = `[
  {"tag_name": "v0.3.0-rc.1", "prerelease": true},
  {"tag_name": "v9.9.9", "draft": true},
  {"tag_name": "release-0.2.1", "assets": [
    {"name": "checksums.txt", "browser_download_url": "https://example.com/sums"},
    {"name": "rasterkit_linux_amd64.tar.gz", "browser_download_url": "https://example.com/linux"}
  ]},
  {"tag_name": "nightly", "name": "v0.1.5"},
  {"tag_name": "latest"}
]`

func newTestUpdater(t *testing.T, current string) (*Updater, *bytes.Buffer) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/"+ReleaseRepo+"/releases" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(releasesJSON))
	}))
	t.Cleanup(srv.Close)
	var out bytes.Buffer
	u := NewUpdater(&out, func(string) (bool, error) { return false, nil }, quietLogger())
	u.APIBase = srv.URL
	u.Current = current
	return u, &out
}

func TestLatestSkipsDraftsAndPrereleases(t *testing.T) {
	u, _ := newTestUpdater(t, "0.1.0")
	rel, err := u.Latest(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if rel == nil || rel.Version.String() != "0.2.1" {
		t.Fatalf("latest = %+v", rel)
	}
	if rel.AssetURL != "https://example.com/linux" {
		t.Fatalf("asset = %s", rel.AssetURL)
	}
}

func TestCheckComparesVersions(t *testing.T) {
	cases := []struct {
		current string
		newer   bool
	}{
		{"0.1.0", true},
		{"v0.2.1", false},
		{"1.0.0", false},
		{"dev", true},
	}
	for _, c := range cases {
		u, _ := newTestUpdater(t, c.current)
		_, newer, err := u.Check(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if newer != c.newer {
			t.Fatalf("Check with current %s: newer = %v; want %v", c.current, newer, c.newer)
		}
	}
}

func TestRunCancelledByUser(t *testing.T) {
	u, out := newTestUpdater(t, "0.1.0")
	if err := u.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Current version: 0.1.0", "Latest version: 0.2.1", "Update cancelled."} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestLatestReportsHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusForbidden)
	}))
	defer srv.Close()
	u := NewUpdater(&bytes.Buffer{}, nil, quietLogger())
	u.APIBase = srv.URL
	if _, err := u.Latest(context.Background()); err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("err = %v", err)
	}
}
