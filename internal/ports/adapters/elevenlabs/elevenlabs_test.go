package elevenlabs

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/forPelevin/narrashort/internal/types"
)

func TestSynthesize_WritesAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/text-to-speech/voice-1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("output_format"); got != defaultOutputFormat {
			t.Errorf("unexpected output format %q", got)
		}
		if got := r.Header.Get("xi-api-key"); got != "key" {
			t.Errorf("unexpected api key %q", got)
		}
		b, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(b), `"model_id":"eleven_multilingual_v2"`) || !strings.Contains(string(b), `"text":"Hello"`) {
			t.Errorf("unexpected body %s", b)
		}
		_, _ = w.Write([]byte("ID3-fake-mp3"))
	}))
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "voice.mp3")
	a := New(Options{APIKey: "key", BaseURL: srv.URL + "/", VoiceID: "voice-1"})
	if err := a.Synthesize(context.Background(), "Hello", out); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "ID3-fake-mp3" {
		t.Fatalf("unexpected audio %q", b)
	}
	if _, err := os.Stat(out + ".part"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestSynthesize_Failures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"detail":"invalid api key secret-key"}`)
	}))
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "voice.mp3")
	err := New(Options{APIKey: "secret-key", BaseURL: srv.URL, VoiceID: "v"}).Synthesize(context.Background(), "Hi", out)
	if !errors.Is(err, types.ErrExternalProcess) {
		t.Fatalf("expected ErrExternalProcess, got %v", err)
	}
	if strings.Contains(err.Error(), "secret-key") || !strings.Contains(err.Error(), "status 401") {
		t.Fatalf("unexpected error text: %v", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Fatalf("no audio should be written on failure")
	}

	err = New(Options{BaseURL: srv.URL}).Synthesize(context.Background(), "  ", out)
	if !errors.Is(err, types.ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput for empty text, got %v", err)
	}
}

func TestTranscribe_ParsesWords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/speech-to-text" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.FormValue("model_id"); got != "scribe_v1" {
			t.Errorf("unexpected model %q", got)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
		} else {
			b, _ := io.ReadAll(f)
			if hdr.Filename != "voice.mp3" || string(b) != "audio" {
				t.Errorf("unexpected upload %s %q", hdr.Filename, b)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"language_code":"ell","text":"Γεια σου","words":[
			{"text":"Γεια","type":"word","start":0.1,"end":0.4},
			{"text":" ","type":"spacing","start":0.4,"end":0.45},
			{"text":"σου","type":"word","start":0.45,"end":0.7}]}`)
	}))
	defer srv.Close()

	audio := filepath.Join(t.TempDir(), "voice.mp3")
	if err := os.WriteFile(audio, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	tr, err := New(Options{APIKey: "k", BaseURL: srv.URL}).Transcribe(context.Background(), audio)
	if err != nil {
		t.Fatal(err)
	}
	if tr.LanguageCode != "ell" || len(tr.Words) != 3 {
		t.Fatalf("unexpected transcript %+v", tr)
	}
	if !tr.Words[0].IsWord() || tr.Words[1].IsWord() || tr.Words[2].End != 0.7 {
		t.Fatalf("unexpected words %+v", tr.Words)
	}
}

func TestTranscribe_NullTimestampsAreFlagged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"words":[
			{"text":"ok","type":"word","start":0.1,"end":0.4},
			{"text":"lost","type":"word","start":null,"end":0.9},
			{"text":"cut","type":"word","start":1.0}]}`)
	}))
	defer srv.Close()

	audio := filepath.Join(t.TempDir(), "voice.mp3")
	if err := os.WriteFile(audio, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	tr, err := New(Options{APIKey: "k", BaseURL: srv.URL}).Transcribe(context.Background(), audio)
	if err != nil {
		t.Fatal(err)
	}
	if len(tr.Words) != 3 {
		t.Fatalf("unexpected words %+v", tr.Words)
	}
	if tr.Words[0].MissingTimes || !tr.Words[1].MissingTimes || !tr.Words[2].MissingTimes {
		t.Fatalf("unexpected presence flags %+v", tr.Words)
	}
	if tr.Words[1].End != 0.9 || tr.Words[2].Start != 1.0 {
		t.Fatalf("present timestamps lost %+v", tr.Words)
	}
}

func TestTranscribe_MissingAudio(t *testing.T) {
	_, err := New(Options{}).Transcribe(context.Background(), filepath.Join(t.TempDir(), "nope.mp3"))
	if !errors.Is(err, types.ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput, got %v", err)
	}
}
