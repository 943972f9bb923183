package browser

import (
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
)

// ErrNoBaseURL is returned when no published site is configured
var ErrNoBaseURL = errors.New("site.base_url is not set")

// Opener implements ports.URLOpener
type Opener struct {
	baseURL string
	start   func(uri string) error
}

// NewOpener creates a new opener for the site published at baseURL
func NewOpener(baseURL string) *Opener {
	return &Opener{
		baseURL: strings.TrimRight(baseURL, "/"),
		start:   openURI,
	}
}

// OpenDocument opens the published page of a document in the default browser
func (o *Opener) OpenDocument(docPath string) error {
	uri, err := o.DocumentURL(docPath)
	if err != nil {
		return err
	}
	return o.start(uri)
}

// DocumentURL builds the published URL of a document
func (o *Opener) DocumentURL(docPath string) (string, error) {
	if o.baseURL == "" {
		return "", ErrNoBaseURL
	}
	base, err := url.Parse(o.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid site.base_url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("invalid site.base_url: %q is not absolute", o.baseURL)
	}

	docPath = strings.Trim(docPath, "/")
	if docPath == "" {
		return base.String() + "/", nil
	}
	return base.JoinPath(strings.Split(docPath, "/")...).String(), nil
}

func openURI(uri string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", uri)
	case "linux":
		cmd = exec.Command("xdg-open", uri)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", uri)
	default:
		return fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}

	return cmd.Run()
}
