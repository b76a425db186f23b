package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"

	"github.com/opencivic/civicpulse/internal/domain"
)

const defaultTimeout = 3 * time.Second

// TranscriptionGateway talks to the speech-transcription collaborator.
// With no endpoint configured it serves the built-in simulated table,
// so local deployments work without the external service. Results are
// cached per audio reference; transcription of the same clip is
// deterministic either way.
type TranscriptionGateway struct {
	endpoint string
	client   *http.Client
	cache    *cache.Cache
}

func NewTranscriptionGateway(endpoint string) *TranscriptionGateway {
	return &TranscriptionGateway{
		endpoint: endpoint,
		client:   &http.Client{Timeout: defaultTimeout},
		cache:    cache.New(10*time.Minute, 15*time.Minute),
	}
}

type transcribeRequest struct {
	Audio    string `json:"audio"`
	Language string `json:"language"`
}

func (g *TranscriptionGateway) Transcribe(ctx context.Context, audioRef, language string) (domain.TranscriptionResult, error) {
	if cached, found := g.cache.Get(audioRef + "|" + language); found {
		return cached.(domain.TranscriptionResult), nil
	}

	result, err := g.transcribe(ctx, audioRef, language)
	if err != nil {
		return domain.TranscriptionResult{}, err
	}

	g.cache.Set(audioRef+"|"+language, result, cache.DefaultExpiration)
	return result, nil
}

func (g *TranscriptionGateway) transcribe(ctx context.Context, audioRef, language string) (domain.TranscriptionResult, error) {
	if g.endpoint == "" {
		return simulated(language), nil
	}

	payload, err := json.Marshal(transcribeRequest{Audio: audioRef, Language: language})
	if err != nil {
		return domain.TranscriptionResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(payload))
	if err != nil {
		return domain.TranscriptionResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return domain.TranscriptionResult{}, errors.Wrap(err, "transcription request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.TranscriptionResult{}, errors.Errorf("transcription service returned %d", resp.StatusCode)
	}

	var result domain.TranscriptionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return domain.TranscriptionResult{}, errors.Wrap(err, "malformed transcription response")
	}

	return result, nil
}

// simulated mirrors the canned transcription table used before the
// external service existed. Unknown languages fall back to english.
func simulated(language string) domain.TranscriptionResult {
	entry, ok := simulatedTranscripts[strings.ToLower(language)]
	if !ok {
		entry = simulatedTranscripts["english"]
		language = "english"
	}

	return domain.TranscriptionResult{
		OriginalLanguage: language,
		TranscribedText:  entry.original,
		TranslatedText:   entry.translated,
		Confidence:       0.95,
	}
}

var simulatedTranscripts = map[string]struct {
	original   string
	translated string
}{
	"krio": {
		original:   "Di road nar mi area don bad. Wi nid help fiks am.",
		translated: "The road in my area is damaged. We need help to fix it.",
	},
	"mende": {
		original:   "Ngila yɛlɛ ma kɔɔ wɔ. A lo ya lɔ kpɛ.",
		translated: "The water system is broken. It needs to be repaired.",
	},
	"limba": {
		original:   "Kanthabon ke fa banta kondaa. Ma na yɔŋo kɛ fa banta.",
		translated: "The street light is not working. We need it to be fixed.",
	},
	"themne": {
		original:   "A kath ka yɔnth a banta ra. Ma yɔnth kɛ sɔsɔ.",
		translated: "The bridge is damaged. We need repairs urgently.",
	},
	"fullah": {
		original:   "Ndiyan e waɗa, min mbaɗa wallafa ko.",
		translated: "The drainage is blocked, we need it to be cleared.",
	},
	"english": {
		original:   "There is a major pothole on Main Street that needs urgent attention.",
		translated: "There is a major pothole on Main Street that needs urgent attention.",
	},
}
