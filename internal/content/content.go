// Package content enriches classification with the text of the page
// itself: fetch the tab's URL, extract the readable article text and
// score the category keyword tables over it. Used by the offline
// analyze path when --fetch is set; the live engine classifies from
// domain and title alone.
package content

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/cherepashka123/browser-pet-companion/internal/nests"
	"github.com/cherepashka123/browser-pet-companion/internal/types"
)

// HintConfidence sits between the domain-pattern and title-keyword
// tiers: page text is stronger evidence than a title but weaker than
// the domain itself.
const HintConfidence = 0.70

var skipPrefixes = []string{"about:", "moz-extension:", "file:", "chrome:", "resource:", "data:"}

// FetchReadable fetches a URL and extracts readable text content.
// Returns an error for non-HTTP URLs or if extraction fails.
func FetchReadable(url string) (title, text string, err error) {
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(url, prefix) {
			return "", "", fmt.Errorf("skipping non-HTTP URL: %s", url)
		}
	}

	client := &http.Client{Timeout: 15 * time.Second}
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return "", "", fmt.Errorf("fetch %s: %w", url, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	resp, err := client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", "", fmt.Errorf("fetch %s: HTTP %d", url, resp.StatusCode)
	}

	article, err := readability.FromReader(resp.Body, nil)
	if err != nil {
		return "", "", fmt.Errorf("extract readable content from %s: %w", url, err)
	}

	return article.Title, article.TextContent, nil
}

// Score counts keyword hits per category over the page text and
// returns the best category as a hint detection. ok is false when no
// keyword hits at all. Ties keep enumeration order.
func Score(text string) (nests.Detection, bool) {
	lower := strings.ToLower(text)

	var best types.CategoryID
	bestHits := 0
	for _, id := range types.CategoryOrder {
		hits := 0
		for _, keyword := range nests.TitleKeywordsFor(id) {
			hits += strings.Count(lower, keyword)
		}
		if hits > bestHits {
			best = id
			bestHits = hits
		}
	}

	if bestHits == 0 {
		return nests.Detection{CategoryID: types.CatUnsorted}, false
	}
	return nests.Detection{CategoryID: best, Confidence: HintConfidence}, true
}

// Refine folds a page-content hint into a base classification: the
// hint only wins when its confidence beats the base result.
func Refine(base nests.Detection, url string) nests.Detection {
	_, text, err := FetchReadable(url)
	if err != nil {
		return base
	}
	hint, ok := Score(text)
	if ok && hint.Confidence > base.Confidence {
		return hint
	}
	return base
}
