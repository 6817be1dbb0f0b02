// Command inspect-suppression prints a viewer's popup suppression records
// from Redis: which popups are flagged for the session, which carry a
// persistent shown-at timestamp, and how old each record is. Used to debug
// "why is (or isn't) this popup showing" reports without touching production
// data.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const msPerDay = 86_400_000

type record struct {
	Key       string
	Scope     string
	PopupID   string
	Value     string
	TTL       time.Duration
	Detail    string
	Malformed bool
}

func main() {
	viewerID := flag.String("viewer", "", "long-lived viewer ID")
	sessionID := flag.String("session", "", "ephemeral session ID")
	flag.Parse()

	if *viewerID == "" && *sessionID == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect-suppression -viewer <id> [-session <id>]")
		os.Exit(2)
	}

	addr := envOrDefault("REDIS_ADDR", "localhost:6379")
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: cannot connect to Redis at %s: %v\n", addr, err)
		os.Exit(1)
	}

	fmt.Println("=========================================================")
	fmt.Println(" Popup Suppression Records")
	fmt.Println("=========================================================")
	fmt.Printf("Redis:      %s\n", addr)
	fmt.Printf("Viewer ID:  %s\n", orNone(*viewerID))
	fmt.Printf("Session ID: %s\n", orNone(*sessionID))
	fmt.Println("---------------------------------------------------------")

	var records []record
	if *viewerID != "" {
		recs, err := collect(ctx, client, "persistent", "popup:viewer:"+*viewerID+":*")
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: scanning viewer records: %v\n", err)
			os.Exit(1)
		}
		records = append(records, recs...)
	}
	if *sessionID != "" {
		recs, err := collect(ctx, client, "session", "popup:sess:"+*sessionID+":*")
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: scanning session records: %v\n", err)
			os.Exit(1)
		}
		records = append(records, recs...)
	}

	if len(records) == 0 {
		fmt.Println("  (no suppression records found)")
		return
	}

	for _, r := range records {
		marker := " "
		if r.Malformed {
			marker = "!"
		}
		fmt.Printf("%s [%-10s] popup=%-36s %s\n", marker, r.Scope, r.PopupID, r.Detail)
		if r.TTL > 0 {
			fmt.Printf("             expires in %s\n", r.TTL.Round(time.Second))
		}
	}
	fmt.Println("---------------------------------------------------------")
	fmt.Printf("Total: %d record(s)\n", len(records))
}

func collect(ctx context.Context, client *redis.Client, scope, pattern string) ([]record, error) {
	var out []record
	iter := client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		val, err := client.Get(ctx, key).Result()
		if err == redis.Nil {
			continue // expired between SCAN and GET
		}
		if err != nil {
			return nil, err
		}
		ttl, _ := client.TTL(ctx, key).Result()

		r := record{Key: key, Scope: scope, Value: val, TTL: ttl}
		r.PopupID = popupIDFromKey(key)
		r.Detail, r.Malformed = describeValue(val, time.Now())
		out = append(out, r)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// popupIDFromKey extracts the popup ID from a record key of the form
// popup:<scope>:<identity>:popup_<id>_shown.
func popupIDFromKey(key string) string {
	idx := strings.LastIndex(key, ":popup_")
	if idx < 0 {
		return "(unrecognized key)"
	}
	id := key[idx+len(":popup_"):]
	return strings.TrimSuffix(id, "_shown")
}

// describeValue interprets a suppression record value: session records store
// the flag "1", persistent records store the shown-at time in epoch millis.
func describeValue(val string, now time.Time) (string, bool) {
	if val == "1" {
		return "shown this session", false
	}
	ms, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return fmt.Sprintf("unrecognized value %q", val), true
	}
	shownAt := time.UnixMilli(ms)
	age := now.Sub(shownAt)
	days := float64(now.UnixMilli()-ms) / msPerDay
	return fmt.Sprintf("shown at %s (%.1f days ago, age %s)",
		shownAt.Format(time.RFC3339), days, age.Round(time.Minute)), false
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
