// Package feed fetches and parses external RSS/Atom feeds for the
// external-feed widget preview.
package feed

import (
	"context"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/homeboard/homeboard/internal/widget"
)

// DefaultItemLimit caps how many entries a preview returns.
const DefaultItemLimit = 5

// Item is one feed entry.
type Item struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Published string `json:"published,omitempty"`
}

// Feed is a fetched feed reduced to what the widget shows.
type Feed struct {
	Title string `json:"title"`
	Items []Item `json:"items"`
}

// Fetcher retrieves feeds over HTTP. Safe for concurrent use.
type Fetcher struct {
	client *resty.Client
	limit  int
}

func New(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: resty.New().SetTimeout(timeout),
		limit:  DefaultItemLimit,
	}
}

// WithItemLimit overrides the preview entry cap.
func (f *Fetcher) WithItemLimit(n int) *Fetcher {
	if n > 0 {
		f.limit = n
	}
	return f
}

// rss covers RSS 2.0; atom covers Atom 1.0. Feeds in the wild are loose,
// so both decoders ignore fields they do not know.
type rssDoc struct {
	Channel struct {
		Title string `xml:"title"`
		Items []struct {
			Title   string `xml:"title"`
			Link    string `xml:"link"`
			PubDate string `xml:"pubDate"`
		} `xml:"item"`
	} `xml:"channel"`
}

type atomDoc struct {
	Title   string `xml:"title"`
	Entries []struct {
		Title string `xml:"title"`
		Link  struct {
			Href string `xml:"href,attr"`
		} `xml:"link"`
		Updated string `xml:"updated"`
	} `xml:"entry"`
}

// Preview fetches rawURL and returns up to the configured number of
// entries. The URL is re-sanitized here; callers cannot bypass the scheme
// check with a stored value.
func (f *Fetcher) Preview(ctx context.Context, rawURL string) (*Feed, error) {
	clean := widget.SanitizeFeedURL(rawURL)
	if clean == "" {
		return nil, fmt.Errorf("invalid feed url %q", rawURL)
	}

	resp, err := f.client.R().SetContext(ctx).Get(clean)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch feed: status %d", resp.StatusCode())
	}
	return f.parse(resp.Body())
}

func (f *Fetcher) parse(body []byte) (*Feed, error) {
	var rss rssDoc
	if err := xml.Unmarshal(body, &rss); err == nil && len(rss.Channel.Items) > 0 {
		out := &Feed{Title: rss.Channel.Title}
		for _, it := range rss.Channel.Items {
			if len(out.Items) == f.limit {
				break
			}
			out.Items = append(out.Items, Item{Title: it.Title, Link: it.Link, Published: it.PubDate})
		}
		return out, nil
	}

	var atom atomDoc
	if err := xml.Unmarshal(body, &atom); err == nil && len(atom.Entries) > 0 {
		out := &Feed{Title: atom.Title}
		for _, e := range atom.Entries {
			if len(out.Items) == f.limit {
				break
			}
			out.Items = append(out.Items, Item{Title: e.Title, Link: e.Link.Href, Published: e.Updated})
		}
		return out, nil
	}

	return nil, fmt.Errorf("unrecognized feed format")
}
