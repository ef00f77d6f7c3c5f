package tts

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mednis/medsbot/internal/config"
	"github.com/mednis/medsbot/internal/storage"
)

func TestParseGlobalSettings(t *testing.T) {
	valid := `{
		"regular_voices": [{"name": "Brian", "value": "Brian"}],
		"extra_voices": [],
		"statistics": true,
		"local_api": false,
		"local_voices": {"glados": "glados"},
		"local_api_url": "http://localhost/{voice}/{text}",
		"public_api_url": "https://api/{voice}?t={text}"
	}`
	got, err := ParseGlobalSettings([]byte(valid))
	if err != nil {
		t.Fatalf("ParseGlobalSettings: %v", err)
	}
	want := storage.TTSGlobalSettings{
		RegularVoices: []config.Voice{{Name: "Brian", Value: "Brian"}},
		ExtraVoices:   []config.Voice{},
		Statistics:    true,
		LocalVoices:   map[string]string{"glados": "glados"},
		LocalAPIURL:   "http://localhost/{voice}/{text}",
		PublicAPIURL:  "https://api/{voice}?t={text}",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("settings (-want +got):\n%s", diff)
	}

	roundTrip, err := ParseGlobalSettings(GlobalSettingsJSON(got))
	if err != nil {
		t.Fatalf("exported settings do not import: %v", err)
	}
	if diff := cmp.Diff(got, roundTrip); diff != "" {
		t.Errorf("export/import changed settings (-want +got):\n%s", diff)
	}
}

func TestParseGlobalSettingsRejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"not json", `{`, "Invalid JSON file."},
		{"missing key", `{"regular_voices": []}`, "Missing required key: extra_voices"},
		{
			"wrong type",
			`{"regular_voices": [], "extra_voices": [], "statistics": "yes"}`,
			"Invalid type for key 'statistics'. Expected bool.",
		},
		{
			"list of strings",
			`{"regular_voices": ["Brian"]}`,
			"Invalid type for key 'regular_voices'. Expected list of dictionaries.",
		},
		{
			"dict expected",
			`{"regular_voices": [], "extra_voices": [], "statistics": true, "local_api": true, "local_voices": []}`,
			"Invalid type for key 'local_voices'. Expected dict.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseGlobalSettings([]byte(tt.in))
			if !errors.Is(err, ErrInvalidSettings) {
				t.Fatalf("err = %v, want ErrInvalidSettings", err)
			}
			if err.Error() != tt.want {
				t.Errorf("message = %q, want %q", err.Error(), tt.want)
			}
		})
	}
}
