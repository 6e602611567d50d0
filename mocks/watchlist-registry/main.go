// watchlist-registry is a standalone mock of a national list endpoint for
// local development. It speaks the same minimal contract every real registry
// exposes: POST an identity, get {match, detail} back.
//
//	go run ./mocks/watchlist-registry -addr :9401 -listed 11111111-1,22222222-2
//
// Point a screening source at it via AMLGATE_SCREENING_SOURCES, e.g.
// "un_sanctions|blocking|http://localhost:9401/check".
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"strings"
)

type checkRequest struct {
	LegalID  string `json:"legal_id"`
	FullName string `json:"full_name"`
}

type checkResponse struct {
	Match  bool   `json:"match"`
	Detail string `json:"detail"`
}

func main() {
	addr := flag.String("addr", ":9401", "listen address")
	listed := flag.String("listed", "", "comma-separated legal IDs that match")
	flag.Parse()

	hits := map[string]bool{}
	for _, id := range strings.Split(*listed, ",") {
		if id = strings.TrimSpace(id); id != "" {
			hits[id] = true
		}
	}

	http.HandleFunc("/check", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var req checkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		resp := checkResponse{Match: hits[req.LegalID]}
		if resp.Match {
			resp.Detail = "listed entity: " + req.FullName
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})

	log.Printf("mock watchlist registry on %s, %d listed", *addr, len(hits))
	log.Fatal(http.ListenAndServe(*addr, nil))
}
