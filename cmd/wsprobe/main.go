// Package main opens many notification sockets against a running API and
// reports how many events each connection receives.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gorilla/websocket"
)

// Metrics tracks the probe results
type Metrics struct {
	ConnectionsAttempted int64
	ConnectionsSuccess   int64
	ConnectionsFailed    int64
	EventsReceived       int64
	Errors               int64
}

var metrics Metrics

var httpClient = resty.New().SetTimeout(5 * time.Second)

func main() {
	host := flag.String("host", "localhost:8375", "API server host")
	email := flag.String("email", "admin@kbomate.local", "Account email")
	password := flag.String("password", "", "Account password")
	clients := flag.Int("clients", 20, "Number of concurrent sockets")
	duration := flag.Duration("duration", 30*time.Second, "Probe duration")
	flag.Parse()

	if *password == "" {
		log.Fatal("-password is required")
	}

	log.Printf("probing %s with %d sockets for %v", *host, *clients, *duration)

	token, err := signIn(*host, *email, *password)
	if err != nil {
		log.Fatalf("sign-in failed: %v", err)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < *clients; i++ {
		wg.Add(1)
		go runClient(*host, token, stop, &wg)
		// Tickets are rate-limited per user in production.
		time.Sleep(50 * time.Millisecond)
	}

	select {
	case <-time.After(*duration):
		log.Println("duration reached")
	case <-interrupt:
		log.Println("interrupted")
	}

	close(stop)
	wg.Wait()
	printMetrics()
}

func signIn(host, email, password string) (string, error) {
	var sess struct {
		Token string `json:"token"`
	}
	resp, err := httpClient.R().
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&sess).
		Post(fmt.Sprintf("http://%s/api/auth/signin", host))
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("sign-in returned status %d", resp.StatusCode())
	}
	return sess.Token, nil
}

func issueTicket(host, token string) (string, error) {
	var result struct {
		Ticket string `json:"ticket"`
	}
	resp, err := httpClient.R().
		SetAuthToken(token).
		SetResult(&result).
		Post(fmt.Sprintf("http://%s/api/ws/ticket", host))
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("ticket issuance returned status %d", resp.StatusCode())
	}
	return result.Ticket, nil
}

func runClient(host, token string, stop <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	atomic.AddInt64(&metrics.ConnectionsAttempted, 1)

	ticket, err := issueTicket(host, token)
	if err != nil {
		atomic.AddInt64(&metrics.ConnectionsFailed, 1)
		atomic.AddInt64(&metrics.Errors, 1)
		return
	}

	u := url.URL{Scheme: "ws", Host: host, Path: "/api/ws", RawQuery: url.Values{"ticket": {ticket}}.Encode()}
	c, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if resp != nil && resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	if err != nil {
		atomic.AddInt64(&metrics.ConnectionsFailed, 1)
		atomic.AddInt64(&metrics.Errors, 1)
		return
	}
	defer func() { _ = c.Close() }()

	atomic.AddInt64(&metrics.ConnectionsSuccess, 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				return
			}
			var event struct {
				Type string `json:"type"`
			}
			if json.Unmarshal(msg, &event) == nil && event.Type != "" {
				atomic.AddInt64(&metrics.EventsReceived, 1)
			}
		}
	}()

	select {
	case <-stop:
		_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	case <-done:
		atomic.AddInt64(&metrics.Errors, 1)
	}
}

func printMetrics() {
	log.Println("probe results")
	log.Printf("connections attempted: %d", atomic.LoadInt64(&metrics.ConnectionsAttempted))
	log.Printf("connections successful: %d", atomic.LoadInt64(&metrics.ConnectionsSuccess))
	log.Printf("connections failed: %d", atomic.LoadInt64(&metrics.ConnectionsFailed))
	log.Printf("events received: %d", atomic.LoadInt64(&metrics.EventsReceived))
	log.Printf("errors: %d", atomic.LoadInt64(&metrics.Errors))
}
