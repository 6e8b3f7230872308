package main

import (
	"math/rand"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertTitle(t *testing.T) {
	short := alertTitle("Water logging at T Nagar")
	assert.Equal(t, "Social Media Alert: Water logging at T Nagar", short)

	long := alertTitle("Heavy flooding near Velachery main road, buses getting stuck in the water")
	assert.Equal(t, "Social Media Alert: Heavy flooding near Velachery main road, buse...", long)
}

func TestLoadTweets(t *testing.T) {
	tweets, err := loadTweets("mock_tweets.json")
	require.NoError(t, err)
	assert.NotEmpty(t, tweets)

	_, err = loadTweets(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestSubmitTweetSkipsRetweets(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	rng := rand.New(rand.NewSource(1))
	client := server.Client()

	retweet := mockTweet{Text: "RT @someone: flooding downtown", Author: "bot"}
	require.NoError(t, submitTweet(client, server.URL, retweet, rng))
	assert.Equal(t, 0, requests)

	original := mockTweet{Text: "Flooding downtown near the bridge", Author: "citizen"}
	require.NoError(t, submitTweet(client, server.URL, original, rng))
	assert.Equal(t, 1, requests)
}

func TestSubmitTweetReportsServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	rng := rand.New(rand.NewSource(1))
	tweet := mockTweet{Text: "Flooding downtown near the bridge", Author: "citizen"}

	err := submitTweet(server.Client(), server.URL, tweet, rng)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
