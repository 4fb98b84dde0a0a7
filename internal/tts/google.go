package tts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	apiURL          = "https://translate.google.com/translate_tts"
	defaultLanguage = "en"
	userAgent       = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36"
	// The unofficial endpoint rejects long inputs, so utterances are cut at a
	// sentence-friendly limit.
	maxTextRunes = 200
)

// GoogleClient synthesizes speech through the Google Translate TTS endpoint.
type GoogleClient struct {
	HTTPClient *http.Client
	APIURL     string
	UserAgent  string
	language   string
	logger     *zap.Logger
}

func NewGoogle(logger *zap.Logger, language string) *GoogleClient {
	if language = strings.TrimSpace(language); language == "" {
		language = defaultLanguage
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &GoogleClient{
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		APIURL:    apiURL,
		UserAgent: userAgent,
		language:  language,
		logger:    logger,
	}
}

// Synthesize fetches MP3 audio for the given text.
func (c *GoogleClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("text must not be empty")
	}

	runes := []rune(text)
	if len(runes) > maxTextRunes {
		text = string(runes[:maxTextRunes])
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.APIURL, nil)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("q", text)
	q.Set("tl", c.language)
	q.Set("total", "1")
	q.Set("idx", "0")
	q.Set("textlen", strconv.Itoa(len([]rune(text))))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tts request failed with status %d", resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read tts response: %w", err)
	}

	if len(audio) == 0 {
		return nil, errors.New("tts returned empty audio")
	}

	c.logger.Debug("synthesized utterance",
		zap.Int("text_length", len([]rune(text))),
		zap.Int("audio_bytes", len(audio)),
	)

	return audio, nil
}
