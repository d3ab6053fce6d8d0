package main

import (
	"encoding/json"
	"log"
	"net"
	"net/http"
	"net/url"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/skip2/go-qrcode"
)

const (
	defaultLeaderboardSize = 20
	maxLeaderboardSize     = 100
	qrSize                 = 256
	statsWindowDays        = 7
	statsHistoryDays       = 30
	statsTopCaptures       = 5
)

var uuidPathRe = regexp.MustCompile(`^/[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // Non-browser clients don't send Origin
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

func extractIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// SetupRoutes configures HTTP routes
func SetupRoutes(hub *Hub, clientDir string) *http.ServeMux {
	mux := http.NewServeMux()

	// Serve static files with no-cache so browsers always revalidate
	fs := http.FileServer(http.Dir(clientDir))
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		// SPA: serve index.html for root and UUID paths
		if r.URL.Path == "/" || uuidPathRe.MatchString(r.URL.Path) {
			http.ServeFile(w, r, filepath.Join(clientDir, "index.html"))
			return
		}
		fs.ServeHTTP(w, r)
	}))

	// WebSocket endpoint
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ip := extractIP(r)
		if !hub.CanAccept(ip) {
			http.Error(w, "too many connections", http.StatusServiceUnavailable)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("upgrade error: %v", err)
			return
		}

		hub.TrackConnect(ip)

		client := NewClient(hub, conn, ip)
		hub.register <- client

		go client.WritePump()
		go client.ReadPump()
	})

	mux.HandleFunc("/api/sessions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, hub.sessions.ListSessions())
	})

	mux.HandleFunc("/api/leaderboard", func(w http.ResponseWriter, r *http.Request) {
		if hub.db == nil {
			writeJSON(w, []LeaderboardEntry{})
			return
		}
		limit := defaultLeaderboardSize
		if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 && n <= maxLeaderboardSize {
			limit = n
		}
		entries, err := hub.db.GetLeaderboard(r.URL.Query().Get("by"), limit)
		if err != nil {
			log.Printf("leaderboard error: %v", err)
			http.Error(w, "leaderboard unavailable", http.StatusInternalServerError)
			return
		}
		if entries == nil {
			entries = []LeaderboardEntry{}
		}
		writeJSON(w, entries)
	})

	mux.HandleFunc("/api/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, collectStats(hub))
	})

	// QR code with the join link for a session, for players on another device
	mux.HandleFunc("/qr/{sid}", func(w http.ResponseWriter, r *http.Request) {
		sid := r.PathValue("sid")
		if hub.sessions.GetSession(sid) == nil {
			http.NotFound(w, r)
			return
		}
		png, err := qrcode.Encode(joinURL(hub.cfg.BaseURL, r, sid), qrcode.Medium, qrSize)
		if err != nil {
			log.Printf("qr error: %v", err)
			http.Error(w, "qr failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-cache")
		w.Write(png)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

// joinURL builds the link a QR code points at. Without a configured base URL
// the request's own host is used.
func joinURL(base string, r *http.Request, sid string) string {
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		base = scheme + "://" + r.Host
	}
	return base + "/" + sid
}

// ServerStats is the /api/stats payload
type ServerStats struct {
	Clients     int                `json:"clients"`
	Connections int                `json:"connections"`
	Sessions    int                `json:"sessions"`
	DAU         int                `json:"dau"`
	WAU         int                `json:"wau"`
	MAU         int                `json:"mau"`
	Events      map[string]int     `json:"events,omitempty"`
	Peers       int                `json:"peers"`
	Rooms       int                `json:"rooms"`
	Matches     []MatchAnalytics   `json:"matches,omitempty"`
	Biggest     []CaptureAnalytics `json:"biggest,omitempty"`
	Daily       []DayCount         `json:"daily,omitempty"`
}

func collectStats(hub *Hub) ServerStats {
	st := ServerStats{
		Clients:     hub.ClientCount(),
		Connections: hub.TotalConns(),
		Sessions:    hub.sessions.Count(),
	}
	if hub.analytics == nil {
		return st
	}
	var err error
	if st.DAU, err = hub.analytics.DAUCount(); err != nil {
		log.Printf("stats: dau: %v", err)
	}
	if st.WAU, err = hub.analytics.WAUCount(); err != nil {
		log.Printf("stats: wau: %v", err)
	}
	if st.MAU, err = hub.analytics.MAUCount(); err != nil {
		log.Printf("stats: mau: %v", err)
	}
	if st.Events, err = hub.analytics.EventCounts(statsWindowDays); err != nil {
		log.Printf("stats: events: %v", err)
	}
	st.Peers, st.Rooms = hub.analytics.GetLiveMetrics()
	if st.Matches, err = hub.analytics.MatchStats(statsWindowDays); err != nil {
		log.Printf("stats: matches: %v", err)
	}
	if st.Biggest, err = hub.analytics.BiggestCaptures(statsTopCaptures); err != nil {
		log.Printf("stats: captures: %v", err)
	}
	if st.Daily, err = hub.analytics.DailyActiveHistory(statsHistoryDays); err != nil {
		log.Printf("stats: daily: %v", err)
	}
	return st
}
