package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/forPelevin/narrashort/internal/types"
)

const (
	defaultBaseURL      = "https://api.elevenlabs.io"
	defaultTTSModel     = "eleven_multilingual_v2"
	defaultOutputFormat = "mp3_44100_128"
	defaultSTTModel     = "scribe_v1"
)

type Options struct {
	APIKey       string
	BaseURL      string
	VoiceID      string
	TTSModel     string
	OutputFormat string
	STTModel     string
	Timeout      time.Duration
}

// Adapter covers both directions of the voice service: speech synthesis and
// word-level transcription.
type Adapter struct {
	opts   Options
	client *http.Client
}

func New(o Options) *Adapter {
	o.BaseURL = strings.TrimRight(strings.TrimSpace(o.BaseURL), "/")
	if o.BaseURL == "" {
		o.BaseURL = defaultBaseURL
	}
	if o.TTSModel == "" {
		o.TTSModel = defaultTTSModel
	}
	if o.OutputFormat == "" {
		o.OutputFormat = defaultOutputFormat
	}
	if o.STTModel == "" {
		o.STTModel = defaultSTTModel
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Minute
	}
	return &Adapter{opts: o, client: &http.Client{Timeout: o.Timeout}}
}

func (a *Adapter) Synthesize(ctx context.Context, text, outPath string) error {
	if strings.TrimSpace(text) == "" {
		return types.Missing("no text to synthesize")
	}
	body, err := json.Marshal(map[string]string{
		"text":     text,
		"model_id": a.opts.TTSModel,
	})
	if err != nil {
		return fmt.Errorf("marshal tts request: %w", err)
	}
	u := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=%s",
		a.opts.BaseURL, url.PathEscape(a.opts.VoiceID), url.QueryEscape(a.opts.OutputFormat))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := a.do(req, "elevenlabs tts")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	tmp := outPath + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return types.ExternalFailure("elevenlabs tts", nil, fmt.Errorf("read audio: %w", err))
	}
	if n == 0 {
		_ = os.Remove(tmp)
		return types.ExternalFailure("elevenlabs tts", nil, errors.New("empty audio response"))
	}
	return os.Rename(tmp, outPath)
}

func (a *Adapter) Transcribe(ctx context.Context, audioPath string) (types.Transcript, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("%w: open audio: %v", types.ErrMissingInput, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("model_id", a.opts.STTModel); err != nil {
		return types.Transcript{}, err
	}
	part, err := mw.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return types.Transcript{}, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return types.Transcript{}, fmt.Errorf("read audio: %w", err)
	}
	if err := mw.Close(); err != nil {
		return types.Transcript{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.opts.BaseURL+"/v1/speech-to-text", &buf)
	if err != nil {
		return types.Transcript{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := a.do(req, "elevenlabs stt")
	if err != nil {
		return types.Transcript{}, err
	}
	defer resp.Body.Close()

	var tr types.Transcript
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return types.Transcript{}, types.ExternalFailure("elevenlabs stt", nil, fmt.Errorf("decode response: %w", err))
	}
	return tr, nil
}

// do sends req with credentials and turns transport errors and non-2xx
// statuses into external failures.
func (a *Adapter) do(req *http.Request, op string) (*http.Response, error) {
	req.Header.Set("xi-api-key", a.opts.APIKey)
	resp, err := a.client.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, types.ExternalFailure(op, nil, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		rb, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		diag := string(rb)
		if a.opts.APIKey != "" {
			diag = strings.ReplaceAll(diag, a.opts.APIKey, "[REDACTED]")
		}
		return nil, types.ExternalFailure(op, []byte(diag), fmt.Errorf("status %d", resp.StatusCode))
	}
	return resp, nil
}
