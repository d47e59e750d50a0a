package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/robalobadob/jigsaw/internal/puzzle"
)

func TestLoadEmbeddedDefault(t *testing.T) {
	g, err := LoadGame("")
	if err != nil {
		t.Fatalf("LoadGame: %v", err)
	}
	if g.Timeout != 300 || g.PiecesCols != 3 || g.Width != 745 || g.Height != 696 {
		t.Fatalf("unexpected defaults: %+v", g)
	}
	st := g.Settings()
	if st.Puzzle.Tiling != puzzle.TilingMixed || st.PreviewDelay != time.Second || st.ScatterDelay != 500*time.Millisecond {
		t.Fatalf("settings = %+v", st)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GAME_TIMEOUT", "45")
	t.Setenv("GAME_PIECES_COLS", "5")
	g, err := LoadGame("")
	if err != nil {
		t.Fatal(err)
	}
	if g.Timeout != 45 || g.PiecesCols != 5 {
		t.Fatalf("overrides not applied: timeout %d cols %d", g.Timeout, g.PiecesCols)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.json")
	doc := `{"timeout":60,"piecesCols":4,"width":400,"height":400,
		"decoyImageUrl":"a.jpg","decoyImageUrls":["b.jpg"],"numConfusionPieces":2,
		"scatterPolicy":"perimeter","perimeterEdges":2}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	g, err := LoadGame(path)
	if err != nil {
		t.Fatalf("LoadGame: %v", err)
	}
	if got := g.DecoyImages(); len(got) != 2 || got[0] != "a.jpg" || got[1] != "b.jpg" {
		t.Fatalf("decoy images = %v", got)
	}
	st := g.Settings()
	if st.Puzzle.DecoyImages != 2 || st.Puzzle.Scatter != puzzle.ScatterPerimeter || st.Puzzle.PerimeterEdges != 2 {
		t.Fatalf("settings = %+v", st.Puzzle)
	}
	if pub := g.Public(); len(pub.DecoyImageURLs) != 2 || pub.Timeout != 60 {
		t.Fatalf("public = %+v", pub)
	}
}

func TestParseGameRejects(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{"zero cols", `{"timeout":10,"piecesCols":0,"width":100,"height":100}`, "piecesCols"},
		{"zero width", `{"timeout":10,"piecesCols":3,"width":0,"height":100}`, "width"},
		{"zero timeout", `{"timeout":0,"piecesCols":3,"width":100,"height":100}`, "timeout"},
		{"decoys without images", `{"timeout":10,"piecesCols":3,"width":100,"height":100,"numConfusionPieces":1}`, "decoyImageUrls"},
		{"bad shape mode", `{"timeout":10,"piecesCols":3,"width":100,"height":100,"shapeMode":"hex"}`, "shapeMode"},
		{"negative border", `{"timeout":10,"piecesCols":3,"width":100,"height":100,"border":-1}`, "border"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseGame([]byte(tt.doc))
			var ce *puzzle.ConfigurationError
			if !errors.As(err, &ce) || ce.Field != tt.field {
				t.Fatalf("err = %v, want field %q", err, tt.field)
			}
		})
	}
}

func TestParseGameBadJSON(t *testing.T) {
	if _, err := ParseGame([]byte(`{`)); err == nil {
		t.Fatal("expected error")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("RATE_LIMIT", "nope")
	t.Setenv("SESSION_MAX_IDLE_MINUTES", "5")
	p := FromEnv()
	if p.Port != "9000" || p.RateLimit != 120 || p.SessionMaxIdle != 5*time.Minute {
		t.Fatalf("process = %+v", p)
	}
}
