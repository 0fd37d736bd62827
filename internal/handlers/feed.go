package handlers

import (
	"encoding/xml"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/glenwood/beacon/internal/alerting"
	"github.com/glenwood/beacon/internal/api"
	"github.com/glenwood/beacon/internal/channels"
	"github.com/glenwood/beacon/internal/config"
)

// FeedHandler serves the per-action machine feeds: RSS for signage
// controllers and CiscoIPPhoneText pages for IP-phone services menus.
// Both are open endpoints; the devices have no credential store.
type FeedHandler struct {
	feed     *channels.FeedState
	branding config.Branding
	state    *alerting.State
}

// NewFeedHandler creates a new feed handler.
func NewFeedHandler(feed *channels.FeedState, branding config.Branding, state *alerting.State) *FeedHandler {
	return &FeedHandler{feed: feed, branding: branding, state: state}
}

// rssFeed is the RSS 2.0 wire structure.
type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Description string `xml:"description"`
	GUID        string `xml:"guid"`
	PubDate     string `xml:"pubDate"`
}

// ciscoTextPage is the CiscoIPPhoneText wire structure.
type ciscoTextPage struct {
	XMLName xml.Name `xml:"CiscoIPPhoneText"`
	Title   string   `xml:"Title"`
	Prompt  string   `xml:"Prompt"`
	Text    string   `xml:"Text"`
}

// SetupRoutes sets up feed routes.
func (h *FeedHandler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/rss/", h.handleRSS)
	mux.HandleFunc("/xml/", h.handleCiscoText)
}

// handleRSS handles GET /rss/{action}.xml. The item GUID carries the
// per-action token; signage controllers poll the feed and fire when the
// GUID changes. Unknown actions 404 so a misconfigured controller shows
// up in its own logs instead of polling a silent feed forever.
func (h *FeedHandler) handleRSS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/rss/")
	name = strings.TrimSuffix(name, ".xml")
	action := alerting.NormalizeAction(name)

	token, ok := h.feed.Token(action)
	if !ok {
		api.RespondError(w, http.StatusNotFound, "Unknown feed")
		return
	}

	directive := alerting.DirectiveFor(action)
	feed := rssFeed{
		Version: "2.0",
		Channel: rssChannel{
			Title:       fmt.Sprintf("%s - %s", h.branding.ServiceName, directive.Title),
			Link:        h.branding.PublicURL,
			Description: fmt.Sprintf("%s trigger feed for %s", directive.Title, h.branding.SiteName),
			Items: []rssItem{{
				Title:       directive.Title,
				Description: directive.Text,
				GUID:        fmt.Sprintf("%s-%d", strings.ToLower(string(action)), token),
				PubDate:     time.Now().UTC().Format(time.RFC1123Z),
			}},
		},
	}

	h.writeXML(w, feed, "application/rss+xml")
}

// handleCiscoText handles GET /xml/{action}: the directive copy rendered
// as a phone display page. The drill banner is prepended while a drill
// for that action is active.
func (h *FeedHandler) handleCiscoText(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	action := alerting.NormalizeAction(strings.TrimPrefix(r.URL.Path, "/xml/"))
	if _, ok := h.feed.Token(action); !ok {
		api.RespondError(w, http.StatusNotFound, "Unknown action")
		return
	}

	directive := alerting.DirectiveFor(action)
	text := directive.Text
	if cur := h.state.Snapshot(); cur.Active() && cur.Action == action && cur.Mode == alerting.ModeDrill {
		text = "THIS IS A DRILL. " + text
	}

	page := ciscoTextPage{
		Title:  fmt.Sprintf("%s Alert", directive.Title),
		Prompt: h.branding.SiteName,
		Text:   text,
	}

	h.writeXML(w, page, "text/xml")
}

func (h *FeedHandler) writeXML(w http.ResponseWriter, v interface{}, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.Write([]byte(xml.Header))
	if err := xml.NewEncoder(w).Encode(v); err != nil {
		log.Printf("FeedHandler: failed to encode XML response: %v", err)
	}
}
