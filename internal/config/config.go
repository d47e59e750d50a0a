// internal/config/config.go
//
// Configuration for the jigsaw server.
// Responsibilities:
//   - Process settings from the environment (.env is loaded by main).
//   - The game document: board, tiling, scatter and decoy keys plus the
//     tuning knobs, read from GAME_CONFIG_FILE or the embedded default.
//   - Conversion of the game document into game.Settings.
//
// Notes:
//   - GAME_TIMEOUT and GAME_PIECES_COLS override the document.
//   - Validation errors are *puzzle.ConfigurationError and are fatal at startup.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/robalobadob/jigsaw/assets"
	"github.com/robalobadob/jigsaw/internal/game"
	"github.com/robalobadob/jigsaw/internal/puzzle"
)

// Process holds server-level settings.
type Process struct {
	Port           string
	LogLevel       string
	GameConfigFile string
	JournalDSN     string // empty disables the event journal
	JWTSecret      string
	TokenTTL       time.Duration
	ClientOrigin   string
	RedisAddr      string // empty disables rate limiting
	RedisPassword  string
	RedisDB        int
	RateLimit      int
	RateWindow     time.Duration
	DailySalt      string
	SessionMaxIdle time.Duration
}

// FromEnv reads Process from the environment with development defaults.
func FromEnv() Process {
	return Process{
		Port:           Env("PORT", "5175"),
		LogLevel:       Env("LOG_LEVEL", "info"),
		GameConfigFile: os.Getenv("GAME_CONFIG_FILE"),
		JournalDSN:     os.Getenv("JOURNAL_DSN"),
		JWTSecret:      Env("JWT_SECRET", "dev_secret_change_me"),
		TokenTTL:       time.Duration(EnvInt("TOKEN_TTL_HOURS", 24)) * time.Hour,
		ClientOrigin:   Env("CLIENT_ORIGIN", "http://localhost:5173"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        EnvInt("REDIS_DB", 0),
		RateLimit:      EnvInt("RATE_LIMIT", 120),
		RateWindow:     time.Duration(EnvInt("RATE_WINDOW_SECONDS", 1)) * time.Second,
		DailySalt:      Env("DAILY_SALT", "local_dev_salt"),
		SessionMaxIdle: time.Duration(EnvInt("SESSION_MAX_IDLE_MINUTES", 30)) * time.Minute,
	}
}

// Game is the game document.
type Game struct {
	Title      string  `json:"title"`
	Timeout    int     `json:"timeout"`
	PiecesCols int     `json:"piecesCols"`
	Border     float64 `json:"border"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	ImageURL   string  `json:"imageUrl"`

	DecoyImageURL      string   `json:"decoyImageUrl,omitempty"`
	DecoyImageURLs     []string `json:"decoyImageUrls"`
	NumConfusionPieces int      `json:"numConfusionPieces"`
	NumDonePieces      int      `json:"numDonePieces"`

	PreviewDelayMs  int     `json:"previewDelayMs"`
	ScatterDelayMs  int     `json:"scatterDelayMs"`
	SnapTolerance   float64 `json:"snapTolerance"`
	ShapeMode       string  `json:"shapeMode"`
	ScatterPolicy   string  `json:"scatterPolicy"`
	PerimeterEdges  int     `json:"perimeterEdges"`
	PerimeterMargin float64 `json:"perimeterMargin"`
	DecoyPlacement  string  `json:"decoyPlacement"`
	IdleTimeoutMs   int     `json:"idleTimeoutMs"`

	SuccessMessage       string `json:"successMessage"`
	ExpireTimeoutMessage string `json:"expireTimeoutMessage"`
	RepeatGameButton     string `json:"repeatGameButton"`
}

// LoadGame reads the game document from path, or the embedded default when
// path is empty, applies env overrides and validates the result.
func LoadGame(path string) (Game, error) {
	var (
		raw []byte
		err error
	)
	if path == "" {
		raw, err = assets.DefaultConfig()
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return Game{}, fmt.Errorf("read game config: %w", err)
	}
	return ParseGame(raw)
}

// ParseGame decodes and validates a game document.
func ParseGame(raw []byte) (Game, error) {
	var g Game
	if err := json.Unmarshal(raw, &g); err != nil {
		return Game{}, fmt.Errorf("parse game config: %w", err)
	}
	g.Timeout = EnvInt("GAME_TIMEOUT", g.Timeout)
	g.PiecesCols = EnvInt("GAME_PIECES_COLS", g.PiecesCols)
	if err := g.Validate(); err != nil {
		return Game{}, err
	}
	return g, nil
}

// DecoyImages merges the single and list forms of the decoy image setting.
func (g Game) DecoyImages() []string {
	out := make([]string, 0, len(g.DecoyImageURLs)+1)
	if g.DecoyImageURL != "" {
		out = append(out, g.DecoyImageURL)
	}
	return append(out, g.DecoyImageURLs...)
}

// Settings converts the document into session settings.
func (g Game) Settings() game.Settings {
	return game.Settings{
		Puzzle: puzzle.Options{
			Layout:          puzzle.Layout{Cols: g.PiecesCols, Board: puzzle.Size{Width: g.Width, Height: g.Height}},
			Tiling:          puzzle.Tiling(g.ShapeMode),
			NumDecoys:       g.NumConfusionPieces,
			DecoyImages:     len(g.DecoyImages()),
			DecoyPlacement:  puzzle.DecoyPlacement(g.DecoyPlacement),
			Scatter:         puzzle.ScatterPolicy(g.ScatterPolicy),
			PerimeterEdges:  g.PerimeterEdges,
			PerimeterMargin: g.PerimeterMargin,
			NumPrePlaced:    g.NumDonePieces,
			SnapTolerance:   g.SnapTolerance,
		},
		Timeout:      g.Timeout,
		PreviewDelay: time.Duration(g.PreviewDelayMs) * time.Millisecond,
		ScatterDelay: time.Duration(g.ScatterDelayMs) * time.Millisecond,
		IdleTimeout:  time.Duration(g.IdleTimeoutMs) * time.Millisecond,
	}
}

// Validate checks the document the same way a session would.
func (g Game) Validate() error {
	if g.Border < 0 {
		return &puzzle.ConfigurationError{Field: "border", Reason: "must not be negative"}
	}
	return g.Settings().WithDefaults().Validate()
}

// Public is the presentation-facing part of the document, served at /config.
type Public struct {
	Title                string   `json:"title"`
	Timeout              int      `json:"timeout"`
	PiecesCols           int      `json:"piecesCols"`
	Border               float64  `json:"border"`
	Width                float64  `json:"width"`
	Height               float64  `json:"height"`
	ImageURL             string   `json:"imageUrl"`
	DecoyImageURLs       []string `json:"decoyImageUrls"`
	SuccessMessage       string   `json:"successMessage"`
	ExpireTimeoutMessage string   `json:"expireTimeoutMessage"`
	RepeatGameButton     string   `json:"repeatGameButton"`
}

// Public returns the subset of the document the UI needs.
func (g Game) Public() Public {
	return Public{
		Title:                g.Title,
		Timeout:              g.Timeout,
		PiecesCols:           g.PiecesCols,
		Border:               g.Border,
		Width:                g.Width,
		Height:               g.Height,
		ImageURL:             g.ImageURL,
		DecoyImageURLs:       g.DecoyImages(),
		SuccessMessage:       g.SuccessMessage,
		ExpireTimeoutMessage: g.ExpireTimeoutMessage,
		RepeatGameButton:     g.RepeatGameButton,
	}
}

// Env returns the value of k or def if unset/empty.
func Env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// EnvInt parses k as an int, falling back to def when unset or malformed.
func EnvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
