package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"regexp"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
	"github.com/sirupsen/logrus"
)

// Version is the running build's version, set with -ldflags "-X".
var Version = "0.1.0"

// ReleaseRepo is the GitHub repository releases are published to.
const ReleaseRepo = "Fepozopo/rasterkit"

var semverRe = regexp.MustCompile(`v?\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?(\+[0-9A-Za-z.-]+)?`)

type githubRelease struct {
	TagName    string `json:"tag_name"`
	Name       string `json:"name"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
	Assets     []struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

// Updater checks GitHub releases and replaces the running binary.
type Updater struct {
	Repo    string
	APIBase string // defaults to https://api.github.com
	Current string
	HTTP    *http.Client
	Out     io.Writer
	Confirm func(prompt string) (bool, error)
	Log     *logrus.Logger
}

// NewUpdater returns an Updater for the running build.
func NewUpdater(out io.Writer, confirm func(string) (bool, error), log *logrus.Logger) *Updater {
	return &Updater{
		Repo:    ReleaseRepo,
		APIBase: "https://api.github.com",
		Current: Version,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
		Out:     out,
		Confirm: confirm,
		Log:     log,
	}
}

// Latest returns the highest published, non-prerelease release whose tag (or
// name) contains a semantic version. It returns nil when there is none.
func (u *Updater) Latest(ctx context.Context) (*selfupdate.Release, error) {
	apiURL := fmt.Sprintf("%s/repos/%s/releases", strings.TrimRight(u.APIBase, "/"), u.Repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := u.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github API request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed reading github response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github API returned status %d: %s", resp.StatusCode, string(body))
	}
	var releases []githubRelease
	if err := json.Unmarshal(body, &releases); err != nil {
		return nil, fmt.Errorf("failed to decode github releases: %w", err)
	}

	var found []*selfupdate.Release
	for _, r := range releases {
		if r.Draft || r.Prerelease {
			continue
		}
		match := semverRe.FindString(r.TagName)
		if match == "" {
			match = semverRe.FindString(r.Name)
		}
		v, err := semver.Parse(strings.TrimPrefix(match, "v"))
		if err != nil {
			continue
		}
		rel := &selfupdate.Release{Version: v}
		for _, a := range r.Assets {
			n := strings.ToLower(a.Name)
			if strings.Contains(n, "linux") || strings.Contains(n, "darwin") || strings.Contains(n, "windows") {
				rel.AssetURL = a.BrowserDownloadURL
				break
			}
			if rel.AssetURL == "" {
				rel.AssetURL = a.BrowserDownloadURL
			}
		}
		found = append(found, rel)
	}
	if len(found) == 0 {
		return nil, nil
	}
	sort.Slice(found, func(i, j int) bool { return found[i].Version.GT(found[j].Version) })
	return found[0], nil
}

// Check reports the latest release when it is newer than the running build.
func (u *Updater) Check(ctx context.Context) (*selfupdate.Release, bool, error) {
	latest, err := u.Latest(ctx)
	if err != nil || latest == nil {
		return nil, false, err
	}
	current, err := semver.Parse(strings.TrimPrefix(u.Current, "v"))
	if err != nil {
		if u.Log != nil {
			u.Log.WithField("version", u.Current).Warn("Could not parse current version")
		}
		return latest, true, nil
	}
	return latest, latest.Version.GT(current), nil
}

// Run checks for a newer release, asks for confirmation and replaces the
// executable, then restarts it.
func (u *Updater) Run(ctx context.Context) error {
	fmt.Fprintf(u.Out, "Current version: %s\n", u.Current)
	latest, newer, err := u.Check(ctx)
	if err != nil {
		return fmt.Errorf("update check failed: %w", err)
	}
	if latest == nil {
		fmt.Fprintf(u.Out, "No releases found for %s.\n", u.Repo)
		return nil
	}
	fmt.Fprintf(u.Out, "Latest version: %s\n", latest.Version)
	if !newer {
		fmt.Fprintln(u.Out, "You are already running the latest version.")
		return nil
	}
	if latest.AssetURL == "" {
		fmt.Fprintf(u.Out, "A new version (%s) is available but there is no downloadable asset.\n", latest.Version)
		return nil
	}
	if u.Confirm != nil {
		ok, err := u.Confirm(fmt.Sprintf("A new version (%s) is available. Update now? (y/N): ", latest.Version))
		if err != nil {
			return fmt.Errorf("failed reading input: %w", err)
		}
		if !ok {
			fmt.Fprintln(u.Out, "Update cancelled.")
			return nil
		}
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("could not locate executable: %w", err)
	}
	fmt.Fprintln(u.Out, "Updating...")
	if err := selfupdate.UpdateTo(latest.AssetURL, exe); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}

	argv := append([]string{exe}, os.Args[1:]...)
	if err := syscall.Exec(exe, argv, os.Environ()); err != nil {
		cmd := exec.Command(exe, os.Args[1:]...)
		cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
		if startErr := cmd.Start(); startErr != nil {
			fmt.Fprintf(u.Out, "Updated to %s; restart the application manually.\n", latest.Version)
			return nil
		}
		os.Exit(0)
	}
	return nil
}
