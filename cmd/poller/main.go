package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"mime/multipart"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
)

// The simulation scatters reports around central Chennai.
const (
	chennaiLat = 13.0827
	chennaiLon = 80.2707
	jitter     = 0.05
)

const titleMaxLen = 45

type mockTweet struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

type pollerConfig struct {
	apiURL    string
	tweetFile string
	interval  time.Duration
}

func loadConfig() pollerConfig {
	_ = godotenv.Load()

	cfg := pollerConfig{
		apiURL:    "http://localhost:8000/api/hazards/report",
		tweetFile: "mock_tweets.json",
		interval:  30 * time.Second,
	}

	if v := os.Getenv("POLLER_API_URL"); v != "" {
		cfg.apiURL = v
	}
	if v := os.Getenv("POLLER_TWEET_FILE"); v != "" {
		cfg.tweetFile = v
	}
	if v := os.Getenv("POLLER_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.interval = d
		}
	}

	return cfg
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := loadConfig()

	tweets, err := loadTweets(cfg.tweetFile)
	if err != nil {
		slog.Error("Failed to load mock tweets", "file", cfg.tweetFile, "error", err)
		os.Exit(1)
	}
	slog.Info("Social media poller starting",
		"api_url", cfg.apiURL,
		"tweets", len(tweets),
		"interval", cfg.interval.String(),
	)

	client := &http.Client{Timeout: 15 * time.Second}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	ticker := time.NewTicker(cfg.interval)
	defer ticker.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			tweet := tweets[rng.Intn(len(tweets))]
			if err := submitTweet(client, cfg.apiURL, tweet, rng); err != nil {
				slog.Error("Failed to submit tweet", "author", tweet.Author, "error", err)
			}
		case <-quit:
			slog.Info("Poller shutting down")
			return
		}
	}
}

func loadTweets(path string) ([]mockTweet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var tweets []mockTweet
	if err := json.Unmarshal(data, &tweets); err != nil {
		return nil, fmt.Errorf("failed to parse tweet file: %w", err)
	}
	if len(tweets) == 0 {
		return nil, fmt.Errorf("tweet file %s is empty", path)
	}

	return tweets, nil
}

// submitTweet posts one simulated tweet as a hazard report. Retweets are
// skipped; they carry no new information.
func submitTweet(client *http.Client, apiURL string, tweet mockTweet, rng *rand.Rand) error {
	if strings.HasPrefix(tweet.Text, "RT @") {
		slog.Info("Skipping retweet", "author", tweet.Author)
		return nil
	}

	lat := chennaiLat + (rng.Float64()*2-1)*jitter
	lon := chennaiLon + (rng.Float64()*2-1)*jitter

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	fields := map[string]string{
		"title":         alertTitle(tweet.Text),
		"description":   tweet.Text,
		"hazard_type":   "social_media_alert",
		"latitude":      fmt.Sprintf("%f", lat),
		"longitude":     fmt.Sprintf("%f", lon),
		"reporter_id":   tweet.Author,
		"report_source": "twitter_simulation",
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return err
		}
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, apiURL, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	slog.Info("Submitted simulated tweet", "author", tweet.Author, "status", resp.StatusCode)
	return nil
}

// alertTitle trims the tweet text into a short report title.
func alertTitle(text string) string {
	if len(text) > titleMaxLen {
		text = text[:titleMaxLen] + "..."
	}
	return "Social Media Alert: " + text
}
