package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// Minimal view of a turn document, enough to judge staleness.
type turnDoc struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Error   string `json:"error"`
	Changes []struct {
		At   time.Time `json:"at"`
		Type string    `json:"type"`
	} `json:"changes"`
}

// Turns sit in "processing" while the narrator works. If the completion
// callback is lost the turn stays there forever and blocks the scene.
// This script finds turns that have been processing for longer than an
// hour and offers to mark them failed so players can resubmit.
func main() {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/1"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatal("Failed to parse Redis URL:", err)
	}

	client := redis.NewClient(opt)
	ctx := context.Background()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	fmt.Println("Connected to Redis:", redisURL)
	fmt.Println("Scanning for stuck turns...")

	cutoff := time.Now().UTC().Add(-1 * time.Hour)

	iter := client.Scan(ctx, 0, "turn:*", 0).Iterator()

	var stuckKeys []string
	var checkedCount int

	for iter.Next(ctx) {
		key := iter.Val()
		checkedCount++

		data, err := client.Get(ctx, key).Result()
		if err != nil {
			fmt.Printf("Error reading %s: %v\n", key, err)
			continue
		}

		var t turnDoc
		if err := json.Unmarshal([]byte(data), &t); err != nil {
			fmt.Printf("✗ Corrupted JSON in %s\n", key)
			continue
		}

		if t.Status != "processing" {
			continue
		}

		// The last change entry records when processing began.
		if len(t.Changes) > 0 && t.Changes[len(t.Changes)-1].At.After(cutoff) {
			continue
		}

		fmt.Printf("✗ Stuck turn %s (processing since %v)\n", t.ID, lastChangeAt(t))
		stuckKeys = append(stuckKeys, key)
	}

	if err := iter.Err(); err != nil {
		log.Fatal("Error during scan:", err)
	}

	fmt.Printf("\nChecked %d keys, found %d stuck turns\n", checkedCount, len(stuckKeys))

	if len(stuckKeys) == 0 {
		fmt.Println("No stuck turns found!")
		return
	}

	fmt.Print("\nDo you want to mark these turns FAILED? (yes/no): ")
	var response string
	fmt.Scanln(&response)

	if response != "yes" {
		fmt.Println("Aborted - no changes made")
		return
	}

	for _, key := range stuckKeys {
		data, err := client.Get(ctx, key).Result()
		if err != nil {
			fmt.Printf("Failed to re-read %s: %v\n", key, err)
			continue
		}

		var doc map[string]interface{}
		if err := json.Unmarshal([]byte(data), &doc); err != nil {
			fmt.Printf("Failed to parse %s: %v\n", key, err)
			continue
		}

		doc["status"] = "failed"
		doc["error"] = "narrator callback never arrived; marked failed by fix-stuck-turns"
		if changes, ok := doc["changes"].([]interface{}); ok {
			doc["changes"] = append(changes, map[string]interface{}{
				"by":   "fix-stuck-turns",
				"at":   time.Now().UTC().Format(time.RFC3339Nano),
				"type": "failed",
			})
		}

		out, err := json.Marshal(doc)
		if err != nil {
			fmt.Printf("Failed to marshal %s: %v\n", key, err)
			continue
		}
		if err := client.Set(ctx, key, out, 0).Err(); err != nil {
			fmt.Printf("Failed to write %s: %v\n", key, err)
			continue
		}
		fmt.Printf("Marked %s failed\n", key)
	}

	fmt.Println("\nCleanup complete!")
}

func lastChangeAt(t turnDoc) time.Time {
	if len(t.Changes) == 0 {
		return time.Time{}
	}
	return t.Changes[len(t.Changes)-1].At
}
