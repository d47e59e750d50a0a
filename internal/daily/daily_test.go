package daily

import (
	"strings"
	"testing"
	"time"
)

func TestDateKeyUsesUTC(t *testing.T) {
	prague := time.FixedZone("CET", 3600)
	at := time.Date(2024, 3, 1, 0, 30, 0, 0, prague) // still Feb 29 in UTC
	if got := DateKey(at); got != "2024-02-29" {
		t.Fatalf("DateKey = %s", got)
	}
}

func TestSeed(t *testing.T) {
	day := time.Date(2024, 5, 17, 8, 0, 0, 0, time.UTC)
	later := time.Date(2024, 5, 17, 23, 59, 0, 0, time.UTC)
	next := day.Add(24 * time.Hour)

	a := Seed(day, "salt")
	if a < 0 {
		t.Fatalf("negative seed %d", a)
	}
	if Seed(later, "salt") != a {
		t.Fatal("seed changed within the same day")
	}
	if Seed(next, "salt") == a {
		t.Fatal("seed repeated on the next day")
	}
	if Seed(day, "other") == a {
		t.Fatal("salt does not affect the seed")
	}
	long := strings.Repeat("x", 200)
	if Seed(day, long) == Seed(day, long[:64]) {
		t.Fatal("long salt truncated instead of hashed")
	}
}
