package questions

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/mcdev12/awantura/internal/game"
)

// Loader fetches question set files from a raw-content base URL. Sets are
// addressed by number and stored as zero-padded text files, 01.txt
// through NN.txt.
type Loader struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

func NewLoader(baseURL string, logger zerolog.Logger) *Loader {
	return &Loader{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger.With().Str("component", "question_loader").Logger(),
	}
}

// Filename returns the canonical file name for a set number.
func Filename(set int) string {
	return fmt.Sprintf("%02d.txt", set)
}

// FetchSet downloads and parses one question set.
func (l *Loader) FetchSet(ctx context.Context, set int) ([]game.Question, error) {
	name := Filename(set)
	url := l.baseURL + name

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	l.logger.Debug().Str("url", url).Msg("fetching question set")
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("question set %s: status code %d", name, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	qs, err := Parse(string(body))
	if err != nil {
		return nil, fmt.Errorf("question set %s: %w", name, err)
	}
	l.logger.Info().Str("file", name).Int("questions", len(qs)).Msg("question set loaded")
	return qs, nil
}
