package scrape

import (
	"context"
	"io"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// LocalFetcher pulls HTML over plain net/http and strips it to text.
// Free and fast; blocked or bot-challenged pages fall through to the
// next fetcher in the chain.
type LocalFetcher struct {
	client *http.Client
}

// NewLocalFetcher creates a LocalFetcher with conservative timeouts.
func NewLocalFetcher() *LocalFetcher {
	return &LocalFetcher{
		client: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
}

func (l *LocalFetcher) Name() string    { return "local_http" }
func (l *LocalFetcher) Available() bool { return true }

func (l *LocalFetcher) Fetch(ctx context.Context, targetURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "local_http: create request")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; OnboardingBot/1.0)")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "local_http: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return nil, eris.Wrap(err, "local_http: read body")
	}

	if blocked, kind := detectBlock(resp, body); blocked {
		return nil, eris.Errorf("local_http: blocked (%s)", kind)
	}
	if resp.StatusCode >= 400 {
		return nil, eris.Errorf("local_http: status %d", resp.StatusCode)
	}
	if len(body) < 100 {
		return nil, eris.New("local_http: empty page")
	}

	return &Page{
		URL:        targetURL,
		Title:      extractTitle(body),
		Text:       stripHTML(string(body)),
		StatusCode: resp.StatusCode,
		Source:     "local_http",
	}, nil
}

var challengeSignatures = []string{
	"checking your browser",
	"enable javascript",
	"please enable cookies",
	"access denied",
	"just a moment",
	"cloudflare",
	"attention required",
	"are you a robot",
}

// detectBlock spots bot-wall responses: challenge status codes, or
// challenge phrasing in a suspiciously small body.
func detectBlock(resp *http.Response, body []byte) (bool, string) {
	switch resp.StatusCode {
	case http.StatusForbidden, http.StatusTooManyRequests:
		return true, "status_" + resp.Status
	}
	if len(body) > 4096 {
		return false, ""
	}
	lower := strings.ToLower(string(body))
	for _, sig := range challengeSignatures {
		if strings.Contains(lower, sig) {
			return true, "challenge_page"
		}
	}
	return false, ""
}

var titleRe = regexp.MustCompile(`(?i)<title[^>]*>(.*?)</title>`)

func extractTitle(body []byte) string {
	m := titleRe.FindSubmatch(body)
	if len(m) > 1 {
		return strings.TrimSpace(string(m[1]))
	}
	return ""
}

var (
	tagRe   = regexp.MustCompile(`<[^>]+>`)
	spaceRe = regexp.MustCompile(`[ \t]+`)
	nlRe    = regexp.MustCompile(`\n{3,}`)
)

// stripHTML removes scripts/styles/nav/footer, strips tags, decodes
// common entities, and collapses whitespace to LLM-ready plaintext.
func stripHTML(html string) string {
	for _, tag := range []string{"script", "style", "nav", "footer", "svg"} {
		re := regexp.MustCompile(`(?is)<` + tag + `[^>]*>.*?</` + tag + `>`)
		html = re.ReplaceAllString(html, "")
	}

	html = tagRe.ReplaceAllString(html, " ")

	r := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	)
	html = r.Replace(html)

	html = spaceRe.ReplaceAllString(html, " ")
	html = nlRe.ReplaceAllString(html, "\n\n")
	return strings.TrimSpace(html)
}
